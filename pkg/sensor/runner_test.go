// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package sensor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func startRunner(t *testing.T, env *testEnv) (*Runner, context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunner(env.dev, time.Millisecond)
	errc := make(chan error, 1)
	go func() { errc <- r.Run(ctx) }()
	return r, cancel, errc
}

func TestRunner_DoRunsOnDeviceGoroutine(t *testing.T) {
	env := newTestEnv(t)
	r, cancel, errc := startRunner(t, env)
	ctx := context.Background()

	require.NoError(t, r.Do(ctx, func(d *Device) error { return d.RegisterFingerprint() }))
	require.ErrorIs(t, r.Do(ctx, func(d *Device) error { return d.RegisterFingerprint() }), ErrEnrollInProgress)
	require.NoError(t, r.Do(ctx, func(d *Device) error { return d.CancelAutoMode() }))

	var snap Snapshot
	require.NoError(t, r.Do(ctx, func(d *Device) error {
		snap = d.Snapshot()
		return nil
	}))
	require.Equal(t, EnrollWaitFinger, snap.EnrollStage)

	cancel()
	require.NoError(t, <-errc)
}

func TestRunner_SubmitIsAsync(t *testing.T) {
	env := newTestEnv(t)
	r, cancel, errc := startRunner(t, env)
	defer func() {
		cancel()
		<-errc
	}()

	done := make(chan uint16, 1)
	require.True(t, r.Submit(func(d *Device) { done <- d.Capacity() }))

	select {
	case c := <-done:
		require.EqualValues(t, DefaultCapacity, c)
	case <-time.After(2 * time.Second):
		t.Fatal("submitted work never ran")
	}
}

func TestRunner_DoAfterCancel(t *testing.T) {
	env := newTestEnv(t)
	r, cancel, errc := startRunner(t, env)
	cancel()
	require.NoError(t, <-errc)

	ctx, stop := context.WithCancel(context.Background())
	stop()
	err := r.Do(ctx, func(*Device) error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunner_SubmitQueueFull(t *testing.T) {
	env := newTestEnv(t)
	r := NewRunner(env.dev, 0)
	require.Equal(t, DefaultTickPeriod, r.period)

	n := 0
	for r.Submit(func(*Device) {}) {
		n++
	}
	require.Equal(t, cap(r.actions), n)
}
