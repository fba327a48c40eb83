// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package sensor

import (
	"context"
	"time"
)

// DefaultTickPeriod is the tick period used when none is configured
const DefaultTickPeriod = 50 * time.Millisecond

// Runner owns a Device on a single goroutine. It ticks the device on a fixed
// period and runs work submitted from other goroutines between ticks.
type Runner struct {
	dev     *Device
	period  time.Duration
	actions chan func(*Device)
}

// NewRunner creates a runner for dev. A non-positive period selects
// DefaultTickPeriod.
func NewRunner(dev *Device, period time.Duration) *Runner {
	if period <= 0 {
		period = DefaultTickPeriod
	}
	return &Runner{
		dev:     dev,
		period:  period,
		actions: make(chan func(*Device), 16),
	}
}

// Run starts the device and drives it until ctx is done
func (r *Runner) Run(ctx context.Context) error {
	if err := r.dev.Start(); err != nil {
		r.dev.log.Warn().Err(err).Msg("library info unavailable, using defaults")
	}

	ticker := time.NewTicker(r.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-r.actions:
			fn(r.dev)
		case <-ticker.C:
			r.dev.Tick()
		}
	}
}

// Do runs fn on the device goroutine and waits for its result
func (r *Runner) Do(ctx context.Context, fn func(*Device) error) error {
	done := make(chan error, 1)
	select {
	case r.actions <- func(d *Device) { done <- fn(d) }:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit queues fn without waiting. It returns false when the queue is full.
func (r *Runner) Submit(fn func(*Device)) bool {
	select {
	case r.actions <- fn:
		return true
	default:
		return false
	}
}
