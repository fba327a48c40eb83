// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package zw101

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Decoder implements a streaming ZW101 frame decoder.
// It resynchronises on the header magic after any framing error.
type Decoder struct {
	state        int
	addressBytes int
	packet       *Packet
	rawBuffer    []byte // Accumulate raw bytes of the current frame
}

// NewDecoder creates a new protocol decoder
func NewDecoder() *Decoder {
	return &Decoder{
		state:     stateHeader1,
		rawBuffer: make([]byte, 0, MaxFrameSize),
	}
}

// Reset resets the decoder state to wait for a header
func (d *Decoder) Reset() {
	d.state = stateHeader1
	d.addressBytes = 0
	d.packet = nil
	d.rawBuffer = d.rawBuffer[:0]
}

// GetRawBytes returns the raw bytes of the frame being decoded
func (d *Decoder) GetRawBytes() []byte {
	return d.rawBuffer
}

// DecodeByte processes a single byte through the decoder state machine
// Returns a completed packet, or nil if the packet is incomplete
// Returns an error if decoding fails
func (d *Decoder) DecodeByte(b byte) (*Packet, error) {
	d.rawBuffer = append(d.rawBuffer, b)

	switch d.state {
	case stateHeader1:
		if b != HeaderHigh {
			d.rawBuffer = d.rawBuffer[:0]
			return nil, nil
		}
		d.state = stateHeader2
		return nil, nil

	case stateHeader2:
		switch b {
		case HeaderLow:
			d.packet = &Packet{}
			d.addressBytes = 0
			d.state = stateAddress
		case HeaderHigh:
			// EF EF 01: the second EF may start the frame
			d.rawBuffer = append(d.rawBuffer[:0], b)
		default:
			d.Reset()
		}
		return nil, nil

	case stateAddress:
		d.packet.address = d.packet.address<<8 | uint32(b)
		d.addressBytes++
		if d.addressBytes >= 4 {
			d.state = stateIdentifier
		}
		return nil, nil

	case stateIdentifier:
		if !validIdentifier(b) {
			d.Reset()
			return nil, fmt.Errorf("%w: 0x%02X", ErrBadIdentifier, b)
		}
		d.packet.id = b
		d.state = stateLength1
		return nil, nil

	case stateLength1:
		d.packet.length = uint16(b) << 8
		d.state = stateLength2
		return nil, nil

	case stateLength2:
		d.packet.length |= uint16(b)
		if d.packet.length < ChecksumSize || d.packet.length > MaxPayloadSize+ChecksumSize {
			length := d.packet.length
			d.Reset()
			return nil, fmt.Errorf("%w: %d (max %d)", ErrBadLength, length, MaxPayloadSize+ChecksumSize)
		}
		payloadLen := int(d.packet.length) - ChecksumSize
		d.packet.payload = make([]byte, 0, payloadLen)
		if payloadLen == 0 {
			d.state = stateChecksum1
		} else {
			d.state = statePayload
		}
		return nil, nil

	case statePayload:
		d.packet.payload = append(d.packet.payload, b)
		if len(d.packet.payload) >= int(d.packet.length)-ChecksumSize {
			d.state = stateChecksum1
		}
		return nil, nil

	case stateChecksum1:
		d.packet.checksum = uint16(b) << 8
		d.state = stateChecksum2
		return nil, nil

	case stateChecksum2:
		packet := d.packet
		packet.checksum |= uint16(b)
		d.Reset()

		if !packet.ChecksumValid() {
			expected := FrameChecksum(packet.id, packet.length, packet.payload)
			return nil, fmt.Errorf("%w: expected 0x%04X, got 0x%04X", ErrChecksumMismatch, expected, packet.checksum)
		}
		packet.timestamp = time.Now()
		return packet, nil

	default:
		d.Reset()
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedState, d.state)
	}
}

// DecodePacket parses the frame at the start of buf. Bytes after the frame
// are ignored. On a checksum mismatch the decoded packet is returned together
// with an error wrapping ErrChecksumMismatch.
func DecodePacket(buf []byte) (*Packet, error) {
	if len(buf) < HeaderSize+ChecksumSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortFrame, len(buf))
	}
	if buf[0] != HeaderHigh || buf[1] != HeaderLow {
		return nil, fmt.Errorf("%w: % X", ErrBadHeader, buf[:2])
	}
	if !validIdentifier(buf[6]) {
		return nil, fmt.Errorf("%w: 0x%02X", ErrBadIdentifier, buf[6])
	}

	length := binary.BigEndian.Uint16(buf[7:9])
	if length < ChecksumSize || length > MaxPayloadSize+ChecksumSize {
		return nil, fmt.Errorf("%w: %d", ErrBadLength, length)
	}
	total := HeaderSize + int(length)
	if len(buf) < total {
		return nil, fmt.Errorf("%w: have %d bytes, frame needs %d", ErrShortFrame, len(buf), total)
	}

	payload := make([]byte, int(length)-ChecksumSize)
	copy(payload, buf[HeaderSize:total-ChecksumSize])

	p := &Packet{
		address:   binary.BigEndian.Uint32(buf[2:6]),
		id:        buf[6],
		length:    length,
		payload:   payload,
		checksum:  binary.BigEndian.Uint16(buf[total-ChecksumSize:]),
		timestamp: time.Now(),
	}
	if !p.ChecksumValid() {
		expected := FrameChecksum(p.id, p.length, p.payload)
		return p, fmt.Errorf("%w: expected 0x%04X, got 0x%04X", ErrChecksumMismatch, expected, p.checksum)
	}
	return p, nil
}

// FrameSize returns the total size of the frame starting at buf once enough
// of its header is present to know it
func FrameSize(buf []byte) (int, bool) {
	if len(buf) < HeaderSize || buf[0] != HeaderHigh || buf[1] != HeaderLow {
		return 0, false
	}
	return HeaderSize + int(binary.BigEndian.Uint16(buf[7:9])), true
}

func validIdentifier(id byte) bool {
	switch id {
	case PIDCommand, PIDData, PIDAck, PIDEndOfData:
		return true
	}
	return false
}
