// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package sensor

import "time"

//go:generate go tool mockgen -destination=mock_transport.go -package=sensor . Transport

// Transport is the byte stream to the module. Available and ReadByte must
// not block; Write and Flush may.
type Transport interface {
	Available() bool
	ReadByte() (byte, error)
	Write(p []byte) (int, error)
	Flush() error
}

// Clock supplies monotonic time and the suspension point used while
// polling for response bytes.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

// SystemClock returns the wall clock
func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }
