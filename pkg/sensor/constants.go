// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package sensor drives a ZW101 fingerprint module.
//
// A Device owns the byte transport to one module and runs the search and
// enrollment workflows as state machines that advance one exchange per Tick.
// Every exchange waits at most one bounded response window, so the caller's
// loop is never held for longer than a couple of seconds. A Device must only
// be used from one goroutine; Runner provides that goroutine and accepts
// work from others.
package sensor

import "time"

// DefaultCapacity is the library size assumed until the module reports its own
const DefaultCapacity = 50

// Response windows
const (
	AckTimeout       = 500 * time.Millisecond
	SysParaTimeout   = 2000 * time.Millisecond
	CountTimeout     = 1000 * time.Millisecond
	HandshakeTimeout = 500 * time.Millisecond
	DeleteTimeout    = 1000 * time.Millisecond
	SleepTimeout     = 400 * time.Millisecond
	SearchTimeout    = 500 * time.Millisecond
	IndexTimeout     = 1000 * time.Millisecond
)

// Search cadence
const (
	SearchInterval   = 1000 * time.Millisecond
	SearchRetryDelay = 500 * time.Millisecond
	MaxSearchRetries = 5
	MatchHoldTime    = 3000 * time.Millisecond
)

// Enrollment cadence
const (
	EnrollPollInterval  = 200 * time.Millisecond
	EnrollFingerTimeout = 30 * time.Second
	EnrollRemoveDelay   = 1000 * time.Millisecond
	EnrollSamples       = 5
)

// LEDOffDelay is how long after Start the ring light is switched off
const LEDOffDelay = 500 * time.Millisecond

// MaxAutoEnrollTimeout is the longest timeout the AUTO_ENROLL field can carry
const MaxAutoEnrollTimeout = 65535 * time.Millisecond

const (
	pollInterval    = time.Millisecond
	maxResponseSize = 50

	minCountResponse   = 14
	minSysParaResponse = 28
)

// Feature buffers used by the workflows
const (
	searchBuffer = 1
	storeBuffer  = 1
)

// Status strings published to observers
const (
	StatusModuleOnline  = "Module Online"
	StatusModuleOffline = "Module Offline"
	StatusEnrolling     = "Enrolling..."
	StatusEnrollTimeout = "Enroll Timeout"
	StatusMergeFailed   = "Enroll Failed - Merge"
	StatusStoreFailed   = "Enroll Failed - Store"
	StatusNoValidFinger = "No Valid Fingerprint"
	StatusMatchFound    = "Match Found"
	StatusNoMatch       = "No Match"
	StatusClearing      = "Clearing Library..."
	StatusCleared       = "Library Cleared"
	StatusClearFailed   = "Clear Failed"
	StatusSleep         = "Sleep Mode"
	StatusAutoEnroll    = "Auto Enroll Mode"
	StatusAutoMatch     = "Auto Match Mode"
	StatusAutoCancelled = "Auto Mode Cancelled"
)

const (
	statusEnrollSuccessFmt = "Enroll Success (ID: %d)"
	statusDeletedFmt       = "Deleted ID: %d"
	statusTemplatesFmt     = "Templates: %d"
	statusReadyFmt         = "Ready (Enrolled: %d/%d)"
)
