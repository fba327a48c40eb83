// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package sensor

import (
	"fmt"
	"time"

	"github.com/Thermoquad/dactyl/pkg/zw101"
)

// EnrollStage is the position in an enrollment session
type EnrollStage int

const (
	EnrollIdle EnrollStage = iota
	EnrollWaitFinger
	EnrollCapturing
	EnrollWaitRemove
	EnrollMerging
	EnrollStoring
)

func (s EnrollStage) String() string {
	switch s {
	case EnrollIdle:
		return "IDLE"
	case EnrollWaitFinger:
		return "WAIT_FINGER"
	case EnrollCapturing:
		return "CAPTURING"
	case EnrollWaitRemove:
		return "WAIT_REMOVE"
	case EnrollMerging:
		return "MERGING"
	case EnrollStoring:
		return "STORING"
	default:
		return "UNKNOWN"
	}
}

type enrollSession struct {
	stage     EnrollStage
	samples   int
	// waitSince is when WAIT_FINGER was last entered; the finger timeout runs from it
	waitSince time.Time
	lastPoll  time.Time
}

// RegisterFingerprint starts an enrollment session. The session advances on
// subsequent ticks and reports its outcome through the status output.
func (d *Device) RegisterFingerprint() error {
	if d.enroll.stage != EnrollIdle {
		return ErrEnrollInProgress
	}

	now := d.clock.Now()
	d.enroll = enrollSession{
		stage:     EnrollWaitFinger,
		waitSince: now,
		lastPoll:  now,
	}
	d.log.Info().Uint16("id", d.nextID).Msg("enrollment started")
	d.setStatus(StatusEnrolling)
	return nil
}

// Enrolling reports whether an enrollment session is active
func (d *Device) Enrolling() bool {
	return d.enroll.stage != EnrollIdle
}

// stepEnroll performs at most one exchange of the enrollment session
func (d *Device) stepEnroll(now time.Time) {
	e := &d.enroll

	switch e.stage {
	case EnrollWaitFinger:
		if now.Sub(e.lastPoll) <= EnrollPollInterval {
			return
		}
		e.lastPoll = now
		if err := d.transact(zw101.NewGetEnrollImage()); err != nil {
			if now.Sub(e.waitSince) > EnrollFingerTimeout {
				d.log.Info().Int("samples", e.samples).Msg("enrollment timed out")
				d.endEnroll(StatusEnrollTimeout)
			}
			return
		}
		e.stage = EnrollCapturing

	case EnrollCapturing:
		buffer := uint8(e.samples + 1)
		if err := d.transact(zw101.NewGenChar(buffer)); err != nil {
			d.log.Debug().Err(err).Uint8("buffer", buffer).Msg("sample rejected")
			d.waitForFinger(now)
			return
		}
		e.samples++
		d.log.Info().Int("sample", e.samples).Int("of", EnrollSamples).Msg("sample captured")
		if e.samples >= EnrollSamples {
			e.stage = EnrollMerging
			return
		}
		e.stage = EnrollWaitRemove
		e.lastPoll = now

	case EnrollWaitRemove:
		if now.Sub(e.lastPoll) > EnrollRemoveDelay {
			d.waitForFinger(now)
		}

	case EnrollMerging:
		if err := d.transact(zw101.NewRegModel()); err != nil {
			d.log.Warn().Err(err).Msg("template merge failed")
			d.endEnroll(StatusMergeFailed)
			return
		}
		e.stage = EnrollStoring

	case EnrollStoring:
		id := d.nextID
		if err := d.transact(zw101.NewStoreChar(storeBuffer, id)); err != nil {
			d.log.Warn().Err(err).Uint16("id", id).Msg("template store failed")
			d.endEnroll(StatusStoreFailed)
			return
		}
		d.recordStore(id)
		d.log.Info().Uint16("id", id).Msg("fingerprint enrolled")
		d.endEnroll(fmt.Sprintf(statusEnrollSuccessFmt, id))

	default:
		d.endEnroll(StatusEnrollTimeout)
	}
}

// waitForFinger enters WAIT_FINGER and re-arms the finger timeout
func (d *Device) waitForFinger(now time.Time) {
	d.enroll.stage = EnrollWaitFinger
	d.enroll.waitSince = now
	d.enroll.lastPoll = now
}

func (d *Device) endEnroll(status string) {
	d.enroll = enrollSession{}
	d.setStatus(status)
}
