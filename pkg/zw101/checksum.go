// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package zw101

// Checksum returns the low 16 bits of the byte sum of data
func Checksum(data []byte) uint16 {
	var sum uint16
	for _, b := range data {
		sum += uint16(b)
	}
	return sum
}

// FrameChecksum computes the checksum covering the identifier, both length
// bytes and the payload of a frame
func FrameChecksum(id uint8, length uint16, payload []byte) uint16 {
	sum := uint16(id) + length>>8 + length&0xFF
	return sum + Checksum(payload)
}
