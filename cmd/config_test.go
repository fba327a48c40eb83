// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dactyl.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func noFlags(string) bool { return false }

func TestApplyConfigFile_Overlay(t *testing.T) {
	path := writeConfig(t, `
port = " /dev/ttyUSB1 "
baud = 115200
tick = "100ms"
default_capacity = 200
strict_checksum = true
reclaim_deleted_ids = true
mqtt_url = "tcp://broker:1883/door"
record = "events.cbor"
log_level = "debug"
`)
	s := defaultSettings()

	require.NoError(t, applyConfigFile(path, &s, noFlags))

	require.Equal(t, "/dev/ttyUSB1", s.Port)
	require.Equal(t, 115200, s.Baud)
	require.Equal(t, 100*time.Millisecond, s.Tick)
	require.EqualValues(t, 200, s.DefaultCapacity)
	require.True(t, s.StrictChecksum)
	require.True(t, s.ReclaimDeletedIDs)
	require.False(t, s.DisableLEDOff)
	require.Equal(t, "tcp://broker:1883/door", s.MQTTURL)
	require.Equal(t, "events.cbor", s.Record)
	require.Equal(t, "debug", s.LogLevel)
}

func TestApplyConfigFile_FlagsWin(t *testing.T) {
	path := writeConfig(t, "baud = 115200\nport = \"/dev/ttyS0\"\n")
	s := defaultSettings()
	s.Baud = 9600

	require.NoError(t, applyConfigFile(path, &s, func(flag string) bool { return flag == "baud" }))

	require.Equal(t, 9600, s.Baud)
	require.Equal(t, "/dev/ttyS0", s.Port)
}

func TestApplyConfigFile_MissingKeysKeepDefaults(t *testing.T) {
	path := writeConfig(t, "username = \"admin\"\n")
	s := defaultSettings()

	require.NoError(t, applyConfigFile(path, &s, noFlags))

	want := defaultSettings()
	want.Username = "admin"
	require.Equal(t, want, s)
}

func TestApplyConfigFile_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "prot = \"/dev/ttyUSB0\"\n"},
		{"bad tick", "tick = \"soon\"\n"},
		{"negative tick", "tick = \"-1s\"\n"},
		{"zero capacity", "default_capacity = 0\n"},
		{"capacity too large", "default_capacity = 70000\n"},
		{"bad syntax", "port = \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := defaultSettings()
			require.Error(t, applyConfigFile(writeConfig(t, tt.body), &s, noFlags))
		})
	}
}

func TestApplyConfigFile_Missing(t *testing.T) {
	s := defaultSettings()
	err := applyConfigFile(filepath.Join(t.TempDir(), "nope.toml"), &s, noFlags)
	require.ErrorContains(t, err, "load config")
}

func TestNewLogger(t *testing.T) {
	_, _, err := newLogger("loud", "", false)
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "dactyl.log")
	log, closer, err := newLogger("warn", path, true)
	require.NoError(t, err)
	require.NotNil(t, closer)

	log.Info().Msg("dropped")
	log.Warn().Msg("kept")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(data), "dropped")
	require.Contains(t, string(data), `"message":"kept"`)
	require.Contains(t, string(data), `"app":"dactyl"`)
}
