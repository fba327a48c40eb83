// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package sensor

import (
	"testing"
	"time"

	"github.com/Thermoquad/dactyl/pkg/zw101"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresTransport(t *testing.T) {
	_, err := New(Config{})
	require.ErrorIs(t, err, ErrNoTransport)
}

func TestNew_Defaults(t *testing.T) {
	dev, err := New(Config{Transport: newScriptTransport(t)})
	require.NoError(t, err)

	require.EqualValues(t, DefaultCapacity, dev.Capacity())
	require.Zero(t, dev.NextID())
	require.Empty(t, dev.Status())
	require.Equal(t, EnrollIdle, dev.Snapshot().EnrollStage)
}

func TestTick_LEDOffFiresOnce(t *testing.T) {
	env := newTestEnv(t, func(c *Config) { c.DisableLEDOff = false })
	env.tr.reply(zw101.CmdReadSysPara, sysParaReply(50))
	env.tr.reply(zw101.CmdValidTemplates, countReply(0))
	env.tr.reply(zw101.CmdLEDControl, ack(zw101.ConfirmOK))
	start := env.clock.Now()

	require.NoError(t, env.dev.Start())

	env.clock.now = start.Add(LEDOffDelay)
	env.dev.Tick()
	require.Empty(t, env.tr.sentWith(zw101.CmdLEDControl))

	env.clock.now = start.Add(LEDOffDelay + time.Millisecond)
	env.dev.Tick()
	led := env.tr.sentWith(zw101.CmdLEDControl)
	require.Len(t, led, 1)
	require.Equal(t, byte(zw101.LEDOff), led[0].Params()[0])

	env.tickUntil(time.Second, 5, func() bool { return false })
	require.Len(t, env.tr.sentWith(zw101.CmdLEDControl), 1)
}

func TestTick_LEDOffDisabled(t *testing.T) {
	env := newTestEnv(t)
	require.Error(t, env.dev.Start())

	env.tickUntil(time.Second, 3, func() bool { return false })
	require.Empty(t, env.tr.sentWith(zw101.CmdLEDControl))
}

func TestSetLED(t *testing.T) {
	env := newTestEnv(t)
	env.tr.reply(zw101.CmdLEDControl, ack(zw101.ConfirmOK))

	require.NoError(t, env.dev.SetLED(zw101.LEDBreathing, zw101.LEDBlue, 0x80))

	sent := env.tr.sentWith(zw101.CmdLEDControl)
	require.Len(t, sent, 1)
	require.Equal(t, []byte{0x01, 0x01, 0x80, zw101.LEDDefaultLoops, zw101.LEDDefaultCycle, 0x00}, sent[0].Params())
}

func TestTick_EnrollmentExcludesSearch(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.dev.RegisterFingerprint())

	env.tickUntil(SearchInterval+time.Millisecond, 10, func() bool { return false })

	require.Empty(t, env.tr.sentWith(zw101.CmdGetImage))
	require.NotEmpty(t, env.tr.sentWith(zw101.CmdGetEnrollImage))
	require.Equal(t, SearchIdle, env.dev.Snapshot().SearchStage)
}

func TestSnapshot(t *testing.T) {
	env := newTestEnv(t)
	env.dev.nextID = 4
	require.NoError(t, env.dev.StartAutoEnroll(2*time.Second))

	snap := env.dev.Snapshot()

	require.Equal(t, StatusAutoEnroll, snap.Status)
	require.EqualValues(t, 4, snap.NextID)
	require.Equal(t, AutoEnroll, snap.AutoMode)
	require.Equal(t, env.clock.Now().Add(2*time.Second), snap.AutoDeadline)
	require.EqualValues(t, 1, snap.Stats.Commands)
}

func TestObservers_FanOut(t *testing.T) {
	a, b := &recordingObserver{}, &recordingObserver{}
	obs := Observers{a, b}

	obs.StatusChanged("x")
	obs.FingerprintPresent(true)
	obs.MatchFound(3, 77)

	for _, r := range []*recordingObserver{a, b} {
		require.Equal(t, []string{"x"}, r.statuses)
		require.Equal(t, []bool{true}, r.present)
		require.Equal(t, [][2]uint16{{3, 77}}, r.matches)
	}
}
