// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package sensor

import (
	"fmt"
	"time"

	"github.com/Thermoquad/dactyl/pkg/zw101"
)

// AutoKind identifies the autonomous routine running on the module
type AutoKind int

const (
	AutoNone AutoKind = iota
	AutoEnroll
	AutoMatch
)

func (k AutoKind) String() string {
	switch k {
	case AutoNone:
		return "none"
	case AutoEnroll:
		return "enroll"
	case AutoMatch:
		return "match"
	default:
		return "unknown"
	}
}

type autoMode struct {
	active   bool
	kind     AutoKind
	deadline time.Time // zero when the mode has no deadline
}

// StartAutoEnroll hands enrollment to the module for at most timeout.
// Tick cancels the mode once the deadline passes.
func (d *Device) StartAutoEnroll(timeout time.Duration) error {
	if d.auto.active {
		return ErrAutoModeActive
	}
	if timeout <= 0 || timeout > MaxAutoEnrollTimeout {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, timeout)
	}

	if err := d.send(zw101.NewAutoEnroll(uint16(timeout.Milliseconds()))); err != nil {
		return err
	}
	d.auto = autoMode{
		active:   true,
		kind:     AutoEnroll,
		deadline: d.clock.Now().Add(timeout),
	}
	d.log.Info().Dur("timeout", timeout).Msg("auto enroll started")
	d.setStatus(StatusAutoEnroll)
	return nil
}

// StartAutoMatch hands matching to the module until cancelled
func (d *Device) StartAutoMatch() error {
	if d.auto.active {
		return ErrAutoModeActive
	}

	p := zw101.NewAutoIdentify(zw101.AutoMatchBuffer, 0, d.capacity, zw101.AutoMatchSecurity)
	if err := d.send(p); err != nil {
		return err
	}
	d.auto = autoMode{active: true, kind: AutoMatch}
	d.log.Info().Uint16("pages", d.capacity).Msg("auto match started")
	d.setStatus(StatusAutoMatch)
	return nil
}

// CancelAutoMode stops a running auto mode. The local state is cleared even
// if the cancel command cannot be written. Without an active mode it does
// nothing.
func (d *Device) CancelAutoMode() error {
	if !d.auto.active {
		return nil
	}

	err := d.send(zw101.NewAutoCancel())
	d.auto = autoMode{}
	d.setStatus(StatusAutoCancelled)
	return err
}

// AutoModeActive reports whether an auto mode is running
func (d *Device) AutoModeActive() bool {
	return d.auto.active
}
