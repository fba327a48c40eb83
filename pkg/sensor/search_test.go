// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package sensor

import (
	"testing"
	"time"

	"github.com/Thermoquad/dactyl/pkg/zw101"
	"github.com/stretchr/testify/require"
)

// runSearchCycle drives one cycle from IDLE through DO_SEARCH
func runSearchCycle(t *testing.T, env *testEnv, searchResult []byte) {
	env.tr.reply(zw101.CmdGetImage, ack(zw101.ConfirmOK))
	env.tr.reply(zw101.CmdGenChar, ack(zw101.ConfirmOK))
	env.tr.reply(zw101.CmdSearch, searchResult)

	reached := env.tickUntil(SearchInterval+time.Millisecond, 1, func() bool {
		return env.dev.search.stage == SearchGetImage
	})
	require.True(t, reached, "search never left IDLE")

	env.dev.Tick()
	require.Equal(t, SearchGenChar, env.dev.search.stage)
	env.dev.Tick()
	require.Equal(t, SearchDoSearch, env.dev.search.stage)
	env.dev.Tick()
	require.Equal(t, SearchIdle, env.dev.search.stage)
}

func TestSearch_MatchPublishesAndExpires(t *testing.T) {
	env := newTestEnv(t)

	runSearchCycle(t, env, searchReply(7, 123))
	matchedAt := env.clock.Now()

	require.Equal(t, StatusMatchFound, env.obs.lastStatus())
	require.Equal(t, []bool{true}, env.obs.present)
	require.Equal(t, [][2]uint16{{7, 123}}, env.obs.matches)

	search := env.tr.sentWith(zw101.CmdSearch)
	require.Len(t, search, 1)
	require.Equal(t, []byte{1, 0, 0, 0, DefaultCapacity}, search[0].Params())

	env.clock.Advance(MatchHoldTime - time.Millisecond)
	env.dev.Tick()
	require.Equal(t, []bool{true}, env.obs.present, "cleared before the hold time")

	env.clock.now = matchedAt.Add(MatchHoldTime)
	env.dev.Tick()
	require.Equal(t, []bool{true, false}, env.obs.present)
	require.False(t, env.dev.Snapshot().FingerPresent)
}

func TestSearch_NoMatchOutcomes(t *testing.T) {
	tests := []struct {
		name  string
		reply []byte
	}{
		{"sentinel page", searchReply(zw101.NoMatchPage, 999)},
		{"page beyond capacity", searchReply(DefaultCapacity, 80)},
		{"not found confirmation", ack(zw101.ConfirmNotFound)},
		{"fields missing", ack(zw101.ConfirmOK, 0x00)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			runSearchCycle(t, env, tt.reply)

			require.Equal(t, StatusNoMatch, env.obs.lastStatus())
			require.Empty(t, env.obs.present)
			require.Empty(t, env.obs.matches)
		})
	}
}

func TestSearch_OtherFailuresPublishNothing(t *testing.T) {
	env := newTestEnv(t)

	runSearchCycle(t, env, ack(zw101.ConfirmNoValidImage))

	require.Empty(t, env.obs.statuses)
}

func TestSearch_GetImageFailureWaitsAndRetries(t *testing.T) {
	env := newTestEnv(t)
	env.tr.reply(zw101.CmdGetImage, ack(zw101.ConfirmNoFinger))

	env.tickUntil(SearchInterval+time.Millisecond, 1, func() bool { return true })
	env.dev.Tick()
	require.Equal(t, SearchWaitRetry, env.dev.search.stage)

	env.clock.Advance(SearchRetryDelay / 2)
	env.dev.Tick()
	require.Equal(t, SearchWaitRetry, env.dev.search.stage)

	env.clock.Advance(SearchRetryDelay)
	env.dev.Tick()
	require.Equal(t, SearchGetImage, env.dev.search.stage)
	require.Zero(t, env.dev.search.retries, "image failures do not count as retries")
}

func TestSearch_GenCharRetriesAreBounded(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < MaxSearchRetries+2; i++ {
		env.tr.reply(zw101.CmdGetImage, ack(zw101.ConfirmOK))
		env.tr.reply(zw101.CmdGenChar, ack(zw101.ConfirmImageMessy))
	}

	done := env.tickUntil(600*time.Millisecond, 100, func() bool {
		require.LessOrEqual(t, env.dev.search.retries, MaxSearchRetries)
		return env.obs.lastStatus() == StatusNoValidFinger
	})

	require.True(t, done, "search never gave up")
	require.Len(t, env.tr.sentWith(zw101.CmdGenChar), MaxSearchRetries)
	require.Equal(t, SearchIdle, env.dev.search.stage)
	require.Empty(t, env.tr.sentWith(zw101.CmdSearch))
}

func TestSearch_SuspendedWhileSleepingOrAuto(t *testing.T) {
	env := newTestEnv(t)
	env.dev.DisableSearch()

	env.tickUntil(time.Second, 10, func() bool { return false })
	require.Empty(t, env.tr.sent)

	env.dev.EnableSearch()
	require.NoError(t, env.dev.StartAutoMatch())

	env.tickUntil(time.Second, 10, func() bool { return false })
	require.Len(t, env.tr.sent, 1, "only the auto match command may be written")
	require.Empty(t, env.tr.sentWith(zw101.CmdGetImage))
}
