// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package sensor

import (
	"time"

	"github.com/Thermoquad/dactyl/pkg/zw101"
	"github.com/rs/zerolog"
)

// Device is the session state of one fingerprint module
type Device struct {
	transport      Transport
	clock          Clock
	log            zerolog.Logger
	observer       Observer
	strictChecksum bool
	reclaimDeleted bool
	stats          *zw101.Statistics

	capacity        uint16
	defaultCapacity uint16
	nextID          uint16
	// lastStored is the slot of the latest successful store, valid when hasStored is set
	lastStored      uint16
	hasStored       bool

	search searchCycle
	enroll enrollSession
	auto   autoMode
	match  matchResult

	sleeping      bool
	ledOffPending bool
	disableLEDOff bool
	startedAt     time.Time
	status        string
}

// New creates a Device. No bytes are exchanged until Start or the first Tick.
func New(cfg Config) (*Device, error) {
	if cfg.Transport == nil {
		return nil, ErrNoTransport
	}
	cfg.setDefaults()

	return &Device{
		transport:       cfg.Transport,
		clock:           cfg.Clock,
		log:             cfg.Logger.With().Str("component", "sensor").Logger(),
		observer:        cfg.Observer,
		strictChecksum:  cfg.StrictChecksum,
		reclaimDeleted:  cfg.ReclaimDeletedIDs,
		stats:           zw101.NewStatistics(),
		capacity:        cfg.DefaultCapacity,
		defaultCapacity: cfg.DefaultCapacity,
		disableLEDOff:   cfg.DisableLEDOff,
	}, nil
}

// Start reads the library layout from the module and arms the LED-off
// one-shot. Errors are informational: the Device falls back to the default
// capacity and allocates ids from 0.
func (d *Device) Start() error {
	now := d.clock.Now()
	d.startedAt = now
	d.search.lastAction = now
	d.ledOffPending = !d.disableLEDOff
	return d.loadLibraryInfo()
}

// Tick advances the device by at most one workflow step. It must be called
// periodically; the workflows measure elapsed time rather than ticks.
func (d *Device) Tick() {
	if d.ledOffPending && d.clock.Now().Sub(d.startedAt) > LEDOffDelay {
		d.ledOffPending = false
		if err := d.SetLED(zw101.LEDOff, 0, 0); err != nil {
			d.log.Warn().Err(err).Msg("failed to switch ring light off")
		}
	}

	if d.auto.active && !d.auto.deadline.IsZero() && !d.clock.Now().Before(d.auto.deadline) {
		d.log.Info().Str("mode", d.auto.kind.String()).Msg("auto mode timed out")
		if err := d.CancelAutoMode(); err != nil {
			d.log.Warn().Err(err).Msg("auto mode cancel failed")
		}
	}

	if d.match.found && !d.clock.Now().Before(d.match.expires) {
		d.match.found = false
		d.observer.FingerprintPresent(false)
	}

	if d.enroll.stage != EnrollIdle {
		d.stepEnroll(d.clock.Now())
		return
	}
	if d.auto.active || d.sleeping {
		return
	}
	d.stepSearch(d.clock.Now())
}

// Handshake checks that the module answers
func (d *Device) Handshake() error {
	if _, err := d.query(zw101.NewHandshake(), HandshakeTimeout, zw101.MinResponseSize); err != nil {
		d.setStatus(StatusModuleOffline)
		return err
	}
	d.setStatus(StatusModuleOnline)
	return nil
}

// SetLED drives the ring light. brightness is the duty value for steady modes.
func (d *Device) SetLED(mode zw101.LEDMode, color zw101.LEDColor, brightness uint8) error {
	return d.transact(zw101.NewLEDControl(mode, color, brightness, zw101.LEDDefaultLoops, zw101.LEDDefaultCycle))
}

// EnterSleep puts the module to sleep and suspends searching until
// EnableSearch is called
func (d *Device) EnterSleep() error {
	if _, err := d.query(zw101.NewSleep(), SleepTimeout, zw101.MinResponseSize); err != nil {
		d.log.Warn().Err(err).Msg("sleep command failed")
		return err
	}
	d.sleeping = true
	d.setStatus(StatusSleep)
	return nil
}

// EnableSearch resumes the search cycle after sleep or DisableSearch
func (d *Device) EnableSearch() {
	d.sleeping = false
}

// DisableSearch suspends the search cycle without talking to the module
func (d *Device) DisableSearch() {
	d.sleeping = true
}

// Status returns the last published status
func (d *Device) Status() string {
	return d.status
}

// Stats returns a copy of the exchange statistics
func (d *Device) Stats() zw101.Statistics {
	return *d.stats
}

// Snapshot is a copy of the observable device state
type Snapshot struct {
	Status        string
	FingerPresent bool
	MatchID       uint16
	MatchScore    uint16
	Capacity      uint16
	NextID        uint16
	EnrollStage   EnrollStage
	EnrollSamples int
	SearchStage   SearchStage
	AutoMode      AutoKind
	AutoDeadline  time.Time
	Sleeping      bool
	Stats         zw101.Statistics
}

// Snapshot returns the current device state
func (d *Device) Snapshot() Snapshot {
	s := Snapshot{
		Status:        d.status,
		FingerPresent: d.match.found,
		MatchID:       d.match.id,
		MatchScore:    d.match.score,
		Capacity:      d.capacity,
		NextID:        d.nextID,
		EnrollStage:   d.enroll.stage,
		EnrollSamples: d.enroll.samples,
		SearchStage:   d.search.stage,
		Sleeping:      d.sleeping,
		Stats:         *d.stats,
	}
	if d.auto.active {
		s.AutoMode = d.auto.kind
		s.AutoDeadline = d.auto.deadline
	}
	return s
}

func (d *Device) setStatus(status string) {
	d.status = status
	d.log.Info().Str("status", status).Msg("status")
	d.observer.StatusChanged(status)
}
