// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package zw101

import (
	"reflect"
	"testing"
)

func TestParseSearchResult(t *testing.T) {
	tests := []struct {
		name     string
		payload  []byte
		want     SearchResult
		ok       bool
		capacity uint16
		matched  bool
	}{
		{"match", []byte{0x00, 0x00, 0x07, 0x00, 0x64}, SearchResult{7, 100}, true, 50, true},
		{"sentinel page", []byte{0x00, 0xFF, 0xFF, 0x00, 0x00}, SearchResult{NoMatchPage, 0}, true, 50, false},
		{"page beyond capacity", []byte{0x00, 0x00, 0x32, 0x00, 0x10}, SearchResult{50, 16}, true, 50, false},
		{"missing score", []byte{0x00, 0x00, 0x07}, SearchResult{}, false, 50, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseSearchResult(tt.payload)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("ParseSearchResult() = %+v, %v; want %+v, %v", got, ok, tt.want, tt.ok)
			}
			if got.Matched(tt.capacity) != tt.matched {
				t.Errorf("Matched(%d) = %v, want %v", tt.capacity, !tt.matched, tt.matched)
			}
		})
	}
}

func TestParseSystemParameters(t *testing.T) {
	payload := []byte{
		0x00,                   // confirm
		0x00, 0x00,             // status register
		0x00, 0x09,             // system id
		0x00, 0x64,             // library size
		0x00, 0x03,             // security level
		0xFF, 0xFF, 0xFF, 0xFF, // address
		0x00, 0x02,             // packet size code
		0x00, 0x06,             // baud factor
	}

	got, ok := ParseSystemParameters(payload)
	if !ok {
		t.Fatal("ParseSystemParameters() rejected a complete table")
	}
	if got.LibrarySize != 100 || got.SecurityLevel != 3 || got.DeviceAddress != AddressBroadcast {
		t.Errorf("ParseSystemParameters() = %+v", got)
	}
	if got.PacketBytes() != 128 {
		t.Errorf("PacketBytes() = %d, want 128", got.PacketBytes())
	}
	if got.BaudRate() != 57600 {
		t.Errorf("BaudRate() = %d, want 57600", got.BaudRate())
	}

	if _, ok := ParseSystemParameters(payload[:10]); ok {
		t.Error("ParseSystemParameters() accepted a truncated table")
	}
}

func TestParseIndexTable(t *testing.T) {
	payload := make([]byte, 1+IndexTableBits/8)
	payload[1] = 0b00000101 // ids 0 and 2
	payload[2] = 0b10000000 // id 15
	payload[32] = 0x01      // id 248

	got, ok := ParseIndexTable(payload, 0)
	if !ok {
		t.Fatal("ParseIndexTable() rejected a complete table")
	}
	if want := []uint16{0, 2, 15, 248}; !reflect.DeepEqual(got, want) {
		t.Errorf("ParseIndexTable() = %v, want %v", got, want)
	}

	got, _ = ParseIndexTable(payload, 1)
	if got[0] != 256 {
		t.Errorf("ParseIndexTable(page 1) first id = %d, want 256", got[0])
	}

	if _, ok := ParseIndexTable(payload[:20], 0); ok {
		t.Error("ParseIndexTable() accepted a truncated table")
	}
}
