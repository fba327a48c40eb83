// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package eventlog

import (
	"io"
	"sync"
	"time"

	"github.com/Thermoquad/dactyl/pkg/sensor"
	"github.com/fxamacker/cbor/v2"
)

var _ sensor.Observer = (*Recorder)(nil)

// Recorder appends every observed output to a writer. Observer methods cannot
// fail, so the first write error is kept and later events are dropped.
type Recorder struct {
	mu    sync.Mutex
	enc   *cbor.Encoder
	now   func() time.Time
	err   error
	count int
}

// NewRecorder records to w using the wall clock for timestamps
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{
		enc: cbor.NewEncoder(w),
		now: time.Now,
	}
}

func (r *Recorder) FingerprintPresent(present bool) {
	r.Record(Event{Kind: KindPresence, Present: present})
}

func (r *Recorder) MatchFound(id, score uint16) {
	r.Record(Event{Kind: KindMatch, MatchID: id, Score: score})
}

func (r *Recorder) StatusChanged(status string) {
	r.Record(Event{Kind: KindStatus, Status: status})
}

// Record writes e, stamping it with the current time when e.Time is zero
func (r *Recorder) Record(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return
	}
	if e.Time.IsZero() {
		e.Time = r.now()
	}
	if err := r.enc.Encode([]interface{}{uint64(e.Kind), e.fields()}); err != nil {
		r.err = err
		return
	}
	r.count++
}

// Count returns the number of records written
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Err returns the write error that stopped recording, if any
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}
