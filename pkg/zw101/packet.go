// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package zw101

import (
	"encoding/binary"
	"time"
)

// Packet represents a ZW101 protocol packet
type Packet struct {
	address   uint32
	id        uint8
	length    uint16
	payload   []byte // opcode + params for commands, confirmation + fields for acks
	checksum  uint16
	timestamp time.Time
}

// NewPacket creates a packet and computes its length and checksum
func NewPacket(address uint32, id uint8, payload []byte) *Packet {
	length := uint16(len(payload) + ChecksumSize)
	return &Packet{
		address:   address,
		id:        id,
		length:    length,
		payload:   payload,
		checksum:  FrameChecksum(id, length, payload),
		timestamp: time.Now(),
	}
}

// Address returns the packet's device address
func (p *Packet) Address() uint32 {
	return p.address
}

// ID returns the packet identifier
func (p *Packet) ID() uint8 {
	return p.id
}

// Length returns the length field (payload plus checksum)
func (p *Packet) Length() uint16 {
	return p.length
}

// Payload returns the payload bytes without the checksum
func (p *Packet) Payload() []byte {
	return p.payload
}

// Checksum returns the checksum carried by the packet
func (p *Packet) Checksum() uint16 {
	return p.checksum
}

// Timestamp returns the packet's creation or decode time
func (p *Packet) Timestamp() time.Time {
	return p.timestamp
}

// ChecksumValid reports whether the carried checksum matches the contents
func (p *Packet) ChecksumValid() bool {
	return p.checksum == FrameChecksum(p.id, p.length, p.payload)
}

// IsCommand returns true for command packets
func (p *Packet) IsCommand() bool {
	return p.id == PIDCommand
}

// IsAck returns true for acknowledge packets
func (p *Packet) IsAck() bool {
	return p.id == PIDAck
}

// Opcode returns the command opcode, or 0 for an empty payload
func (p *Packet) Opcode() uint8 {
	if len(p.payload) == 0 {
		return 0
	}
	return p.payload[0]
}

// Confirm returns the confirmation code of an acknowledge packet
func (p *Packet) Confirm() ConfirmCode {
	if len(p.payload) == 0 {
		return ConfirmPacketError
	}
	return ConfirmCode(p.payload[0])
}

// Params returns the payload following the opcode or confirmation byte
func (p *Packet) Params() []byte {
	if len(p.payload) <= 1 {
		return nil
	}
	return p.payload[1:]
}

// Field16 reads a big-endian value at offset within Params
func (p *Packet) Field16(offset int) (uint16, bool) {
	return field16(p.Params(), offset)
}

func field16(b []byte, offset int) (uint16, bool) {
	if offset < 0 || len(b) < offset+2 {
		return 0, false
	}
	return binary.BigEndian.Uint16(b[offset:]), true
}
