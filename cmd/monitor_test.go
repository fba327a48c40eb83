// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/Thermoquad/dactyl/pkg/zw101"
	"github.com/stretchr/testify/require"
)

// feedAll runs data through t and collects the events it produces
func feedAll(t *syncTracker, data []byte) []frameEvent {
	var events []frameEvent
	for _, b := range data {
		if ev, ok := t.feed(b); ok {
			events = append(events, ev)
		}
	}
	return events
}

func TestSyncTracker(t *testing.T) {
	tracker := newSyncTracker()

	// Bad identifier before the first frame is only counted
	garbage := []byte{0x00, 0xEF, 0x01, 0xFF, 0xFF, 0xFF, 0xFF, 0x09}
	require.Empty(t, feedAll(tracker, garbage))
	require.Equal(t, 1, tracker.invalidBytes)

	events := feedAll(tracker, zw101.EncodeCommand(zw101.CmdGetImage))
	require.Len(t, events, 1)
	require.True(t, events[0].justSynced)
	require.True(t, events[0].packet.IsCommand())
	require.Empty(t, events[0].validation)

	ack := zw101.EncodePacket(zw101.NewAck(zw101.ConfirmNoFinger))
	events = feedAll(tracker, ack)
	require.Len(t, events, 1)
	require.False(t, events[0].justSynced)
	require.True(t, events[0].packet.IsAck())

	corrupt := bytes.Clone(ack)
	corrupt[len(corrupt)-1] ^= 0xFF
	events = feedAll(tracker, corrupt)
	require.Len(t, events, 1)
	require.ErrorIs(t, events[0].decodeErr, zw101.ErrChecksumMismatch)
}

func TestSyncTracker_ReportsAnomalies(t *testing.T) {
	tracker := newSyncTracker()

	events := feedAll(tracker, zw101.EncodeCommand(zw101.CmdGenChar, 9))
	require.Len(t, events, 1)
	require.Len(t, events[0].validation, 1)
	require.Equal(t, zw101.AnomalyInvalidBuffer, events[0].validation[0].Type)
}

func TestFrameFormatter_PairsAckWithCommand(t *testing.T) {
	f := &frameFormatter{}

	cmd := f.format(zw101.NewGetImage())
	require.Contains(t, cmd, "GET_IMAGE")

	reply := f.format(zw101.NewAck(zw101.ConfirmOK))
	require.Contains(t, reply, "Reply to GET_IMAGE")

	// A second ack has no command to pair with
	orphan := f.format(zw101.NewAck(zw101.ConfirmOK))
	require.NotContains(t, orphan, "Reply to")
	require.Contains(t, orphan, "Confirm:")
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		ms   uint64
		want string
	}{
		{0, "0 seconds"},
		{1000, "1 second"},
		{61_000, "1 minute and 1 second"},
		{3_600_000, "1 hour"},
		{90_061_000, "1 day, 1 hour, 1 minute, and 1 second"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, formatUptime(tt.ms))
	}
}

func TestMonitorModel_TracksExchange(t *testing.T) {
	m := initialModel("Serial: test", 10, false)

	m.trackExchange(zw101.NewValidTemplateNum())
	m.trackExchange(zw101.NewAck(zw101.ConfirmOK, 0x00, 0x07))
	require.True(t, m.lastExchange.hasCount)
	require.EqualValues(t, 7, m.lastExchange.libraryUsed)

	// Library details survive the next command
	m.trackExchange(zw101.NewGetImage())
	require.Equal(t, uint8(zw101.CmdGetImage), m.lastExchange.opcode)
	require.False(t, m.lastExchange.answered)
	require.EqualValues(t, 7, m.lastExchange.libraryUsed)

	m.trackExchange(zw101.NewAck(zw101.ConfirmNoFinger))
	require.True(t, m.lastExchange.answered)
	require.Equal(t, zw101.ConfirmNoFinger, m.lastExchange.confirm)
}

func TestConsoleObserver(t *testing.T) {
	var out bytes.Buffer
	obs := newConsoleObserver(&out)
	obs.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local) }

	require.Empty(t, obs.lastStatus())
	obs.MatchFound(3, 77)
	obs.StatusChanged("Match Found")

	require.Equal(t, "[03:04:05.000] MATCH id=3 score=77\n[03:04:05.000] STATUS \"Match Found\"\n", out.String())
	require.Equal(t, "Match Found", obs.lastStatus())
}
