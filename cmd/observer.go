// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/Thermoquad/dactyl/pkg/eventlog"
)

// consoleObserver prints device outputs as event lines
type consoleObserver struct {
	out io.Writer
	now func() time.Time

	last string
}

func newConsoleObserver(out io.Writer) *consoleObserver {
	return &consoleObserver{out: out, now: time.Now}
}

func (o *consoleObserver) print(e eventlog.Event) {
	e.Time = o.now()
	fmt.Fprintln(o.out, e.String())
}

func (o *consoleObserver) FingerprintPresent(present bool) {
	o.print(eventlog.Event{Kind: eventlog.KindPresence, Present: present})
}

func (o *consoleObserver) MatchFound(id, score uint16) {
	o.print(eventlog.Event{Kind: eventlog.KindMatch, MatchID: id, Score: score})
}

func (o *consoleObserver) StatusChanged(status string) {
	o.last = status
	o.print(eventlog.Event{Kind: eventlog.KindStatus, Status: status})
}

// lastStatus returns the most recent status, or "" if none was published
func (o *consoleObserver) lastStatus() string {
	return o.last
}
