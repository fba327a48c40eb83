// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package sensor

import (
	"fmt"
	"io"
	"time"

	"github.com/Thermoquad/dactyl/pkg/zw101"
)

// send writes one command frame in full and flushes it
func (d *Device) send(p *zw101.Packet) error {
	name := zw101.OpcodeName(p.Opcode())
	d.discardStale()

	frame := zw101.EncodePacket(p)
	n, err := d.transport.Write(frame)
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if n != len(frame) {
		return fmt.Errorf("write %s: %w (%d of %d bytes)", name, io.ErrShortWrite, n, len(frame))
	}
	if err := d.transport.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", name, err)
	}

	d.stats.Update(p, nil, nil)
	d.log.Debug().Str("cmd", name).Hex("frame", frame).Msg("sent")
	return nil
}

// receive reads the reply to opcode. It fails with ErrNoResponse when fewer
// than minLen bytes arrive and with a CommandError when the module reports
// a failure.
func (d *Device) receive(opcode uint8, timeout time.Duration, minLen int) (response, error) {
	name := zw101.OpcodeName(opcode)
	r := d.awaitResponse(maxResponseSize, timeout)
	if len(r) < minLen {
		d.stats.RecordTimeout()
		d.log.Debug().Str("cmd", name).Int("bytes", len(r)).Msg("response timeout")
		return r, fmt.Errorf("%s: %w", name, ErrNoResponse)
	}

	if err := d.checkFrame(r); err != nil {
		return r, fmt.Errorf("%s: %w", name, err)
	}

	d.log.Debug().Str("cmd", name).Hex("frame", r).Msg("received")
	if c := r.confirm(); c != zw101.ConfirmOK {
		return r, &CommandError{Opcode: opcode, Code: c}
	}
	return r, nil
}

// checkFrame validates framing and checksum. Only strict mode turns a bad
// frame into an error; the confirmation byte decides otherwise.
func (d *Device) checkFrame(r response) error {
	p, err := zw101.DecodePacket(r)
	d.stats.Update(p, err, nil)
	if err == nil {
		return nil
	}
	if d.strictChecksum {
		return err
	}
	d.log.Warn().Err(err).Hex("frame", r).Msg("response failed validation")
	return nil
}

// receiveAck reads a plain acknowledge within AckTimeout
func (d *Device) receiveAck(opcode uint8) error {
	_, err := d.receive(opcode, AckTimeout, zw101.MinResponseSize)
	return err
}

// transact sends p and waits for its acknowledge
func (d *Device) transact(p *zw101.Packet) error {
	if err := d.send(p); err != nil {
		return err
	}
	return d.receiveAck(p.Opcode())
}

// query sends p and returns the reply once at least minLen bytes arrived
func (d *Device) query(p *zw101.Packet, timeout time.Duration, minLen int) (response, error) {
	if err := d.send(p); err != nil {
		return nil, err
	}
	return d.receive(p.Opcode(), timeout, minLen)
}
