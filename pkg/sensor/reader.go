// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package sensor

import (
	"time"

	"github.com/Thermoquad/dactyl/pkg/zw101"
)

// response is the raw capture of one response window
type response []byte

func (r response) confirm() zw101.ConfirmCode {
	if len(r) <= zw101.ConfirmOffset {
		return zw101.ConfirmPacketError
	}
	return zw101.ConfirmCode(r[zw101.ConfirmOffset])
}

// payload returns the confirmation byte and everything after it
func (r response) payload() []byte {
	if len(r) <= zw101.ConfirmOffset {
		return nil
	}
	return r[zw101.ConfirmOffset:]
}

// awaitResponse collects bytes until maxLen bytes or one complete frame have
// arrived, or until timeout passes. Each iteration either consumes one byte
// or suspends for pollInterval. A short capture is a timeout, not an error.
func (d *Device) awaitResponse(maxLen int, timeout time.Duration) response {
	buf := make([]byte, 0, maxLen)
	deadline := d.clock.Now().Add(timeout)

	for len(buf) < maxLen && d.clock.Now().Before(deadline) {
		if !d.transport.Available() {
			d.clock.Sleep(pollInterval)
			continue
		}
		b, err := d.transport.ReadByte()
		if err != nil {
			d.log.Debug().Err(err).Msg("read failed")
			d.clock.Sleep(pollInterval)
			continue
		}
		buf = append(buf, b)
		if n, ok := zw101.FrameSize(buf); ok && len(buf) >= n {
			break
		}
	}
	return buf
}

// discardStale drops bytes left over from earlier exchanges, such as the
// progress frames the module streams while in auto mode
func (d *Device) discardStale() {
	n := 0
	for d.transport.Available() {
		if _, err := d.transport.ReadByte(); err != nil {
			break
		}
		n++
	}
	if n > 0 {
		d.log.Debug().Int("bytes", n).Msg("discarded stale input")
	}
}
