// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package sensor

import "github.com/rs/zerolog"

// Config configures a Device
type Config struct {
	Transport Transport
	Clock     Clock           // default SystemClock
	Logger    *zerolog.Logger // default discards
	Observer  Observer        // default discards

	// DefaultCapacity is used when the module does not report its library
	// size. Zero means DefaultCapacity.
	DefaultCapacity uint16

	// StrictChecksum rejects responses whose checksum does not match.
	// Otherwise mismatches are logged and counted only.
	StrictChecksum bool

	// ReclaimDeletedIDs lets Delete hand the most recently allocated id back
	// to the allocator. Other deleted ids are only reused after wraparound.
	ReclaimDeletedIDs bool

	// DisableLEDOff keeps the ring light as the module left it after Start.
	DisableLEDOff bool
}

func (c *Config) setDefaults() {
	if c.Clock == nil {
		c.Clock = SystemClock()
	}
	if c.Logger == nil {
		nop := zerolog.Nop()
		c.Logger = &nop
	}
	if c.Observer == nil {
		c.Observer = nopObserver{}
	}
	if c.DefaultCapacity == 0 {
		c.DefaultCapacity = DefaultCapacity
	}
}
