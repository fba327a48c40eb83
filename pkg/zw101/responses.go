// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package zw101

import "encoding/binary"

// Response parsers take an acknowledge payload: the confirmation byte
// followed by the command-specific fields. Trailing bytes are ignored.

// SearchResult is the outcome of a SEARCH or auto identify
type SearchResult struct {
	Page  uint16
	Score uint16
}

// Matched reports whether Page names a slot below capacity
func (r SearchResult) Matched(capacity uint16) bool {
	return r.Page != NoMatchPage && r.Page < capacity
}

// ParseSearchResult extracts the page id and match score
func ParseSearchResult(payload []byte) (SearchResult, bool) {
	page, ok := field16(payload, 1)
	if !ok {
		return SearchResult{}, false
	}
	score, ok := field16(payload, 3)
	if !ok {
		return SearchResult{}, false
	}
	return SearchResult{Page: page, Score: score}, true
}

// SystemParameters is the basic parameter table returned by READ_SYSPARA
type SystemParameters struct {
	StatusRegister uint16
	SystemID       uint16
	LibrarySize    uint16
	SecurityLevel  uint16
	DeviceAddress  uint32
	PacketSize     uint16 // 0..3 meaning 32, 64, 128, 256 bytes
	BaudFactor     uint16 // baud rate in units of 9600
}

// systemParametersSize is the parameter table length after the confirmation byte
const systemParametersSize = 16

// ParseSystemParameters decodes the parameter table
func ParseSystemParameters(payload []byte) (SystemParameters, bool) {
	if len(payload) < 1+systemParametersSize {
		return SystemParameters{}, false
	}
	b := payload[1:]
	return SystemParameters{
		StatusRegister: binary.BigEndian.Uint16(b[0:]),
		SystemID:       binary.BigEndian.Uint16(b[2:]),
		LibrarySize:    binary.BigEndian.Uint16(b[4:]),
		SecurityLevel:  binary.BigEndian.Uint16(b[6:]),
		DeviceAddress:  binary.BigEndian.Uint32(b[8:]),
		PacketSize:     binary.BigEndian.Uint16(b[12:]),
		BaudFactor:     binary.BigEndian.Uint16(b[14:]),
	}, true
}

// PacketBytes returns the data packet size in bytes
func (s SystemParameters) PacketBytes() int {
	if s.PacketSize > 3 {
		return 0
	}
	return 32 << s.PacketSize
}

// BaudRate returns the configured UART speed
func (s SystemParameters) BaudRate() int {
	return int(s.BaudFactor) * 9600
}

// ParseTemplateCount extracts the valid template count
func ParseTemplateCount(payload []byte) (uint16, bool) {
	return field16(payload, 1)
}

// ParseIndexTable returns the occupied template ids described by one index
// table page. Bit i of byte n marks slot page*256 + n*8 + i.
func ParseIndexTable(payload []byte, page uint8) ([]uint16, bool) {
	const tableSize = IndexTableBits / 8
	if len(payload) < 1+tableSize {
		return nil, false
	}
	base := uint16(page) * IndexTableBits
	ids := []uint16{}
	for n, b := range payload[1 : 1+tableSize] {
		for i := 0; i < 8; i++ {
			if b&(1<<i) != 0 {
				ids = append(ids, base+uint16(n*8+i))
			}
		}
	}
	return ids, true
}
