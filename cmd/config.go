// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Thermoquad/dactyl/pkg/sensor"
)

// settings are the options shared by every command
type settings struct {
	Port        string
	Baud        int
	URL         string
	Username    string
	NoSSLVerify bool

	Tick              time.Duration
	DefaultCapacity   uint16
	StrictChecksum    bool
	ReclaimDeletedIDs bool
	DisableLEDOff     bool

	MQTTURL string
	Record  string

	LogLevel string
	LogFile  string
}

func defaultSettings() settings {
	return settings{
		Baud:            57600,
		Tick:            sensor.DefaultTickPeriod,
		DefaultCapacity: sensor.DefaultCapacity,
		LogLevel:        "info",
	}
}

// config.toml key mapping to settings
type fileConfig struct {
	Port              string `toml:"port"`
	Baud              int    `toml:"baud"`
	URL               string `toml:"url"`
	Username          string `toml:"username"`
	NoSSLVerify       bool   `toml:"no_ssl_verify"`
	Tick              string `toml:"tick"`
	DefaultCapacity   int    `toml:"default_capacity"`
	StrictChecksum    bool   `toml:"strict_checksum"`
	ReclaimDeletedIDs bool   `toml:"reclaim_deleted_ids"`
	DisableLEDOff     bool   `toml:"disable_led_off"`
	MQTTURL           string `toml:"mqtt_url"`
	Record            string `toml:"record"`
	LogLevel          string `toml:"log_level"`
	LogFile           string `toml:"log_file"`
}

// applyConfigFile overlays the keys defined in the TOML file at path onto s.
// A key is skipped when explicit reports its flag was given on the command line.
func applyConfigFile(path string, s *settings, explicit func(flag string) bool) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	use := func(key, flag string) bool {
		return meta.IsDefined(key) && !explicit(flag)
	}

	if use("port", "port") {
		s.Port = strings.TrimSpace(raw.Port)
	}
	if use("baud", "baud") {
		s.Baud = raw.Baud
	}
	if use("url", "url") {
		s.URL = strings.TrimSpace(raw.URL)
	}
	if use("username", "username") {
		s.Username = strings.TrimSpace(raw.Username)
	}
	if use("no_ssl_verify", "no-ssl-verify") {
		s.NoSSLVerify = raw.NoSSLVerify
	}
	if use("tick", "tick") {
		tick, err := time.ParseDuration(strings.TrimSpace(raw.Tick))
		if err != nil || tick <= 0 {
			return fmt.Errorf("load config: invalid tick %q", raw.Tick)
		}
		s.Tick = tick
	}
	if use("default_capacity", "capacity") {
		if raw.DefaultCapacity <= 0 || raw.DefaultCapacity > 0xFFFF {
			return fmt.Errorf("load config: default_capacity %d out of range", raw.DefaultCapacity)
		}
		s.DefaultCapacity = uint16(raw.DefaultCapacity)
	}
	if use("strict_checksum", "strict-checksum") {
		s.StrictChecksum = raw.StrictChecksum
	}
	if use("reclaim_deleted_ids", "reclaim-deleted-ids") {
		s.ReclaimDeletedIDs = raw.ReclaimDeletedIDs
	}
	if use("disable_led_off", "no-led-off") {
		s.DisableLEDOff = raw.DisableLEDOff
	}
	if use("mqtt_url", "mqtt") {
		s.MQTTURL = strings.TrimSpace(raw.MQTTURL)
	}
	if use("record", "record") {
		s.Record = strings.TrimSpace(raw.Record)
	}
	if use("log_level", "log-level") {
		s.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if use("log_file", "log-file") {
		s.LogFile = strings.TrimSpace(raw.LogFile)
	}
	return nil
}

// sensorConfig builds the engine configuration from s
func (s settings) sensorConfig(t sensor.Transport, obs sensor.Observer) sensor.Config {
	log := logger
	return sensor.Config{
		Transport:         t,
		Logger:            &log,
		Observer:          obs,
		DefaultCapacity:   s.DefaultCapacity,
		StrictChecksum:    s.StrictChecksum,
		ReclaimDeletedIDs: s.ReclaimDeletedIDs,
		DisableLEDOff:     s.DisableLEDOff,
	}
}
