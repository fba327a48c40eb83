// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package sensor

import (
	"fmt"
	"testing"
	"time"

	"github.com/Thermoquad/dactyl/pkg/zw101"
	"github.com/stretchr/testify/require"
)

func TestStart_LoadsLibraryInfo(t *testing.T) {
	env := newTestEnv(t)
	env.tr.reply(zw101.CmdReadSysPara, sysParaReply(100))
	env.tr.reply(zw101.CmdValidTemplates, countReply(7))

	require.NoError(t, env.dev.Start())

	require.EqualValues(t, 100, env.dev.Capacity())
	require.EqualValues(t, 7, env.dev.NextID())
	require.Equal(t, "Ready (Enrolled: 7/100)", env.obs.lastStatus())
}

func TestStart_Fallbacks(t *testing.T) {
	tests := []struct {
		name         string
		sysPara      []byte
		count        []byte
		wantCapacity uint16
		wantNextID   uint16
		wantErr      bool
	}{
		{"module silent", nil, nil, DefaultCapacity, 0, true},
		{"zero library size", sysParaReply(0), countReply(3), DefaultCapacity, 3, false},
		{"count silent", sysParaReply(80), nil, 80, 0, true},
		{"library full", sysParaReply(20), countReply(20), 20, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			if tt.sysPara != nil {
				env.tr.reply(zw101.CmdReadSysPara, tt.sysPara)
			}
			if tt.count != nil {
				env.tr.reply(zw101.CmdValidTemplates, tt.count)
			}

			err := env.dev.Start()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrNoResponse)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.wantCapacity, env.dev.Capacity())
			require.Equal(t, tt.wantNextID, env.dev.NextID())
		})
	}
}

func TestStart_ConfiguredDefaultCapacity(t *testing.T) {
	env := newTestEnv(t, func(c *Config) { c.DefaultCapacity = 200 })

	require.Error(t, env.dev.Start())
	require.EqualValues(t, 200, env.dev.Capacity())
}

func TestClearLibrary(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		env := newTestEnv(t)
		env.dev.nextID = 12
		env.tr.reply(zw101.CmdEmpty, ack(zw101.ConfirmOK))

		require.NoError(t, env.dev.ClearLibrary())
		require.Equal(t, []string{StatusClearing, StatusCleared}, env.obs.statuses)
		require.Zero(t, env.dev.NextID())
	})

	t.Run("failure", func(t *testing.T) {
		env := newTestEnv(t)
		env.dev.nextID = 12
		env.tr.reply(zw101.CmdEmpty, ack(zw101.ConfirmPacketError))

		err := env.dev.ClearLibrary()
		code, ok := ConfirmCode(err)
		require.True(t, ok)
		require.Equal(t, zw101.ConfirmPacketError, code)
		require.Equal(t, []string{StatusClearing, StatusClearFailed}, env.obs.statuses)
		require.EqualValues(t, 12, env.dev.NextID())
	})
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name       string
		reclaim    bool
		nextID     uint16
		stored     bool
		lastStored uint16
		id         uint16
		wantNextID uint16
	}{
		{"leaves allocator alone", false, 5, true, 4, 4, 5},
		{"older id is not reclaimed", true, 5, true, 4, 2, 5},
		{"latest id is reclaimed", true, 5, true, 4, 4, 4},
		{"latest id before wraparound", true, 0, true, DefaultCapacity - 1, DefaultCapacity - 1, DefaultCapacity - 1},
		{"nothing stored yet", true, 0, false, 0, DefaultCapacity - 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, func(c *Config) { c.ReclaimDeletedIDs = tt.reclaim })
			env.dev.nextID = tt.nextID
			env.dev.hasStored, env.dev.lastStored = tt.stored, tt.lastStored
			env.tr.reply(zw101.CmdDeleteChar, ack(zw101.ConfirmOK))

			require.NoError(t, env.dev.Delete(tt.id))

			sent := env.tr.sentWith(zw101.CmdDeleteChar)
			require.Len(t, sent, 1)
			require.Equal(t, []byte{byte(tt.id >> 8), byte(tt.id), 0x00, 0x01}, sent[0].Params())
			require.Equal(t, tt.wantNextID, env.dev.NextID())
			require.Equal(t, fmt.Sprintf("Deleted ID: %d", tt.id), env.obs.lastStatus())
		})
	}
}

func TestDelete_ReclaimsOnlyStoredSlot(t *testing.T) {
	reclaim := func(c *Config) { c.ReclaimDeletedIDs = true }

	t.Run("after enrollment", func(t *testing.T) {
		env := newTestEnv(t, reclaim)
		env.dev.nextID = 3
		scriptSamples(env.tr, EnrollSamples)
		env.tr.reply(zw101.CmdRegModel, ack(zw101.ConfirmOK))
		env.tr.reply(zw101.CmdStoreChar, ack(zw101.ConfirmOK))
		env.tr.reply(zw101.CmdDeleteChar, ack(zw101.ConfirmOK), ack(zw101.ConfirmOK))

		require.NoError(t, env.dev.RegisterFingerprint())
		runEnrollment(t, env)
		require.EqualValues(t, 4, env.dev.NextID())

		require.NoError(t, env.dev.Delete(3))
		require.EqualValues(t, 3, env.dev.NextID())

		// The reclaimed slot is not tracked any more
		require.NoError(t, env.dev.Delete(2))
		require.EqualValues(t, 3, env.dev.NextID())
	})

	t.Run("after clear", func(t *testing.T) {
		env := newTestEnv(t, reclaim)
		env.dev.nextID = 5
		env.dev.hasStored, env.dev.lastStored = true, 4
		env.tr.reply(zw101.CmdEmpty, ack(zw101.ConfirmOK))
		env.tr.reply(zw101.CmdDeleteChar, ack(zw101.ConfirmOK), ack(zw101.ConfirmOK))

		require.NoError(t, env.dev.ClearLibrary())
		require.NoError(t, env.dev.Delete(DefaultCapacity-1))
		require.Zero(t, env.dev.NextID())
		require.NoError(t, env.dev.Delete(4))
		require.Zero(t, env.dev.NextID())
	})

	t.Run("after start", func(t *testing.T) {
		env := newTestEnv(t, reclaim)
		env.dev.hasStored, env.dev.lastStored = true, 2
		env.tr.reply(zw101.CmdReadSysPara, sysParaReply(50))
		env.tr.reply(zw101.CmdValidTemplates, countReply(0))
		env.tr.reply(zw101.CmdDeleteChar, ack(zw101.ConfirmOK))

		require.NoError(t, env.dev.Start())
		require.NoError(t, env.dev.Delete(49))
		require.Zero(t, env.dev.NextID())
	})
}

func TestDelete_Failure(t *testing.T) {
	env := newTestEnv(t)
	env.tr.reply(zw101.CmdDeleteChar, ack(zw101.ConfirmDeleteFailed))

	err := env.dev.Delete(3)

	code, ok := ConfirmCode(err)
	require.True(t, ok)
	require.Equal(t, zw101.ConfirmDeleteFailed, code)
	require.Empty(t, env.obs.statuses)
}

func TestReadValidTemplateCount(t *testing.T) {
	env := newTestEnv(t)
	env.tr.reply(zw101.CmdValidTemplates, countReply(42))

	count, err := env.dev.ReadValidTemplateCount()

	require.NoError(t, err)
	require.EqualValues(t, 42, count)
	require.Equal(t, "Templates: 42", env.obs.lastStatus())
}

func TestReadValidTemplateCount_ShortReply(t *testing.T) {
	env := newTestEnv(t)
	env.tr.reply(zw101.CmdValidTemplates, ack(zw101.ConfirmOK))

	_, err := env.dev.ReadValidTemplateCount()

	require.ErrorIs(t, err, ErrNoResponse)
	require.Empty(t, env.obs.statuses)
}

func TestReadIndexTable(t *testing.T) {
	env := newTestEnv(t)
	table := make([]byte, zw101.IndexTableBits/8)
	table[0] = 0b0000_0101
	table[1] = 0b0000_0001
	env.tr.reply(zw101.CmdReadIndexTable, ack(zw101.ConfirmOK, table...))

	ids, err := env.dev.ReadIndexTable(0)

	require.NoError(t, err)
	require.Equal(t, []uint16{0, 2, 8}, ids)
	require.Equal(t, []byte{0x00}, env.tr.sentWith(zw101.CmdReadIndexTable)[0].Params())
}

func TestReadIndexTable_ShortTable(t *testing.T) {
	env := newTestEnv(t)
	env.tr.reply(zw101.CmdReadIndexTable, ack(zw101.ConfirmOK, 0xFF))

	_, err := env.dev.ReadIndexTable(0)

	require.ErrorIs(t, err, ErrNoResponse)
}

func TestReadSystemParameters(t *testing.T) {
	env := newTestEnv(t)
	env.tr.reply(zw101.CmdReadSysPara, sysParaReply(300))

	params, err := env.dev.ReadSystemParameters()

	require.NoError(t, err)
	require.EqualValues(t, 300, params.LibrarySize)
	require.EqualValues(t, 3, params.SecurityLevel)
	require.Equal(t, 128, params.PacketBytes())
	require.Equal(t, 57600, params.BaudRate())
}

func TestEnterSleep(t *testing.T) {
	env := newTestEnv(t)
	env.tr.reply(zw101.CmdSleep, ack(zw101.ConfirmOK))

	require.NoError(t, env.dev.EnterSleep())
	require.Equal(t, StatusSleep, env.obs.lastStatus())
	require.True(t, env.dev.Snapshot().Sleeping)

	env.tickUntil(SearchInterval, 5, func() bool { return false })
	require.Len(t, env.tr.sent, 1, "search must stay suspended while asleep")

	env.dev.EnableSearch()
	env.tickUntil(SearchInterval+time.Millisecond, 2, func() bool { return false })
	require.Len(t, env.tr.sentWith(zw101.CmdGetImage), 1)
}

func TestEnterSleep_NoAck(t *testing.T) {
	env := newTestEnv(t)

	require.ErrorIs(t, env.dev.EnterSleep(), ErrNoResponse)
	require.False(t, env.dev.Snapshot().Sleeping)
}
