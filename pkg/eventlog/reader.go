// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package eventlog

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Reader decodes records written by a Recorder
type Reader struct {
	dec *cbor.Decoder
}

// NewReader reads records from r
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: cbor.NewDecoder(r)}
}

// Next returns the next event. It returns io.EOF after the last record.
func (r *Reader) Next() (Event, error) {
	var msg []interface{}
	if err := r.dec.Decode(&msg); err != nil {
		if errors.Is(err, io.EOF) {
			return Event{}, io.EOF
		}
		return Event{}, fmt.Errorf("failed to decode record: %w", err)
	}
	return parseRecord(msg)
}

// ReadAll returns every event in r
func ReadAll(r io.Reader) ([]Event, error) {
	reader := NewReader(r)
	var events []Event
	for {
		e, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		events = append(events, e)
	}
}

func parseRecord(msg []interface{}) (Event, error) {
	if len(msg) != 2 {
		return Event{}, fmt.Errorf("expected 2-element array, got %d elements", len(msg))
	}

	kind, ok := msg[0].(uint64)
	if !ok || kind > 255 {
		return Event{}, fmt.Errorf("invalid record kind %v", msg[0])
	}
	e := Event{Kind: Kind(kind)}

	if msg[1] == nil {
		return e, nil
	}
	raw, ok := msg[1].(map[interface{}]interface{})
	if !ok {
		return Event{}, fmt.Errorf("expected map or nil for fields, got %T", msg[1])
	}
	fields := make(map[int]interface{}, len(raw))
	for key, val := range raw {
		switch k := key.(type) {
		case uint64:
			fields[int(k)] = val
		case int64:
			fields[int(k)] = val
		default:
			return Event{}, fmt.Errorf("expected integer field key, got %T", key)
		}
	}

	if ms, ok := fields[keyTime].(uint64); ok {
		e.Time = time.UnixMilli(int64(ms))
	}
	e.Present, _ = fields[keyPresent].(bool)
	if id, ok := fields[keyID].(uint64); ok {
		e.MatchID = uint16(id)
	}
	if score, ok := fields[keyScore].(uint64); ok {
		e.Score = uint16(score)
	}
	e.Status, _ = fields[keyStatus].(string)
	return e, nil
}
