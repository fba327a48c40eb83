// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package zw101

import (
	"strings"
	"testing"
)

func TestValidatePacket(t *testing.T) {
	tests := []struct {
		name   string
		packet *Packet
		want   []AnomalyType
	}{
		{"valid gen char", NewGenChar(1), nil},
		{"valid search", NewSearch(1, 0, 50), nil},
		{"valid ack", NewAck(ConfirmNotFound), nil},
		{"gen char buffer zero", NewGenChar(0), []AnomalyType{AnomalyInvalidBuffer}},
		{"unknown opcode", NewCommand(0x7A), []AnomalyType{AnomalyUnknownOpcode}},
		{"missing params", NewCommand(CmdStoreChar, 1), []AnomalyType{AnomalyLengthMismatch}},
		{"unknown confirm", NewAck(ConfirmCode(0x77)), []AnomalyType{AnomalyUnknownConfirm}},
		{"foreign address", NewPacket(0x12345678, PIDCommand, []byte{CmdHandshake}), []AnomalyType{AnomalyAddress}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidatePacket(tt.packet)
			if len(got) != len(tt.want) {
				t.Fatalf("ValidatePacket() = %v, want %d anomalies", got, len(tt.want))
			}
			for i := range got {
				if got[i].Type != tt.want[i] {
					t.Errorf("anomaly %d = %v, want %v", i, got[i].Type, tt.want[i])
				}
			}
		})
	}
}

func TestStatistics_Update(t *testing.T) {
	s := NewStatistics()

	s.Update(NewGetImage(), nil, nil)
	s.Update(NewAck(ConfirmNoFinger), nil, nil)
	s.Update(nil, ErrChecksumMismatch, nil)
	s.Update(nil, ErrBadLength, nil)
	s.Update(NewCommand(0x7A), nil, ValidatePacket(NewCommand(0x7A)))
	s.RecordTimeout()

	if s.TotalFrames != 5 || s.ValidFrames != 2 {
		t.Errorf("TotalFrames, ValidFrames = %d, %d; want 5, 2", s.TotalFrames, s.ValidFrames)
	}
	if s.Commands != 2 || s.Acks != 1 || s.Failures != 1 {
		t.Errorf("Commands, Acks, Failures = %d, %d, %d; want 2, 1, 1", s.Commands, s.Acks, s.Failures)
	}
	if s.ChecksumErrors != 1 || s.DecodeErrors != 1 || s.UnknownOpcodes != 1 || s.Timeouts != 1 {
		t.Errorf("error counters = %+v", s)
	}
	if !strings.Contains(s.String(), "Checksum Errors:") {
		t.Errorf("String() omitted the checksum error line")
	}

	s.Reset()
	if s.TotalFrames != 0 || s.Timeouts != 0 {
		t.Errorf("Reset() left counters set")
	}
}

func TestFormatIDList(t *testing.T) {
	tests := []struct {
		ids  []uint16
		want string
	}{
		{nil, "none"},
		{[]uint16{4}, "4"},
		{[]uint16{0, 1, 2, 5, 7, 8}, "0-2,5,7-8"},
	}

	for _, tt := range tests {
		if got := FormatIDList(tt.ids); got != tt.want {
			t.Errorf("FormatIDList(%v) = %q, want %q", tt.ids, got, tt.want)
		}
	}
}

func TestParseLEDNames(t *testing.T) {
	if m, ok := ParseLEDMode("breathing"); !ok || m != LEDBreathing {
		t.Errorf("ParseLEDMode(breathing) = %v, %v", m, ok)
	}
	if _, ok := ParseLEDMode("strobe"); ok {
		t.Error("ParseLEDMode(strobe) accepted an unknown mode")
	}
	if c, ok := ParseLEDColor("Purple"); !ok || c != LEDPurple {
		t.Errorf("ParseLEDColor(Purple) = %v, %v", c, ok)
	}
}

func TestFormatAck(t *testing.T) {
	out := FormatAck(NewAck(ConfirmOK, 0x00, 0x0C, 0x00, 0x80), CmdSearch)
	if !strings.Contains(out, "Reply to SEARCH: ok") || !strings.Contains(out, "Page: 12, Score: 128") {
		t.Errorf("FormatAck() = %q", out)
	}

	out = FormatAck(NewAck(ConfirmNotFound), CmdSearch)
	if !strings.Contains(out, "no matching template (0x09)") {
		t.Errorf("FormatAck() = %q", out)
	}
}

func TestFormatPacket_Command(t *testing.T) {
	out := FormatPacket(NewStoreChar(1, 9))
	if !strings.Contains(out, "STORE_CHAR (0x06)") || !strings.Contains(out, "Buffer: 1, Page: 9") {
		t.Errorf("FormatPacket() = %q", out)
	}
}
