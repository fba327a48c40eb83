// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package zw101

import "encoding/binary"

// BuildHeader returns the nine header bytes of a command frame addressed to
// the broadcast address. length counts the payload and both checksum bytes.
func BuildHeader(length uint16) []byte {
	return appendHeader(make([]byte, 0, HeaderSize), AddressBroadcast, PIDCommand, length)
}

func appendHeader(dst []byte, address uint32, id uint8, length uint16) []byte {
	dst = append(dst, HeaderHigh, HeaderLow)
	dst = binary.BigEndian.AppendUint32(dst, address)
	dst = append(dst, id)
	return binary.BigEndian.AppendUint16(dst, length)
}

// EncodePacket encodes a Packet to wire format.
// The checksum is recomputed from the packet contents.
func EncodePacket(p *Packet) []byte {
	length := uint16(len(p.payload) + ChecksumSize)
	frame := make([]byte, 0, HeaderSize+len(p.payload)+ChecksumSize)
	frame = appendHeader(frame, p.address, p.id, length)
	frame = append(frame, p.payload...)
	return binary.BigEndian.AppendUint16(frame, FrameChecksum(p.id, length, p.payload))
}

// EncodeCommand creates a complete command frame for opcode and params
func EncodeCommand(opcode uint8, params ...byte) []byte {
	return EncodePacket(NewCommand(opcode, params...))
}
