// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package eventlog records sensor outputs as a stream of CBOR records.
//
// Each record is a two-element array [kind, fields] where fields is a map
// keyed by small integers, or nil when the record carries no fields:
//
//	0: timestamp (unix milliseconds)
//	1: finger present (bool)
//	2: template id
//	3: match score
//	4: status text
package eventlog

import (
	"fmt"
	"time"
)

// Kind identifies the output a record captures
type Kind uint8

const (
	KindPresence Kind = 0x01
	KindMatch    Kind = 0x02
	KindStatus   Kind = 0x03
)

func (k Kind) String() string {
	switch k {
	case KindPresence:
		return "PRESENCE"
	case KindMatch:
		return "MATCH"
	case KindStatus:
		return "STATUS"
	default:
		return fmt.Sprintf("UNKNOWN(0x%02X)", uint8(k))
	}
}

// Field keys
const (
	keyTime    = 0
	keyPresent = 1
	keyID      = 2
	keyScore   = 3
	keyStatus  = 4
)

// Event is one recorded output
type Event struct {
	Time    time.Time
	Kind    Kind
	Present bool
	MatchID uint16
	Score   uint16
	Status  string
}

func (e Event) String() string {
	ts := e.Time.Format("15:04:05.000")
	switch e.Kind {
	case KindPresence:
		return fmt.Sprintf("[%s] %s present=%t", ts, e.Kind, e.Present)
	case KindMatch:
		return fmt.Sprintf("[%s] %s id=%d score=%d", ts, e.Kind, e.MatchID, e.Score)
	case KindStatus:
		return fmt.Sprintf("[%s] %s %q", ts, e.Kind, e.Status)
	default:
		return fmt.Sprintf("[%s] %s", ts, e.Kind)
	}
}

// fields returns the record map for e
func (e Event) fields() map[int]interface{} {
	m := map[int]interface{}{
		keyTime: uint64(e.Time.UnixMilli()),
	}
	switch e.Kind {
	case KindPresence:
		m[keyPresent] = e.Present
	case KindMatch:
		m[keyID] = uint64(e.MatchID)
		m[keyScore] = uint64(e.Score)
	case KindStatus:
		m[keyStatus] = e.Status
	}
	return m
}
