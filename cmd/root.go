// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Effective settings: flag values overlaid on the config file
	opts = defaultSettings()

	configPath string

	logger    = zerolog.Nop()
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "dactyl",
	Short: "ZW101 Fingerprint Sensor Tool",
	Long: `Dactyl - A CLI tool for driving ZW101 optical fingerprint modules over UART.

Runs the module's search and enrollment workflows, manages the template
library, and decodes the serial protocol for diagnostics. Outputs can be
mirrored to MQTT and recorded to a CBOR event log.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 57600]   (--port auto picks a USB adapter)
  WebSocket: --url ws://host/path [--username user]

For WebSocket authentication, the password is read from the DACTYL_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.

Settings may also be read from a TOML file with --config. Flags given on the
command line override the file.`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()

	// Serial connection flags
	pf.StringVarP(&opts.Port, "port", "p", "", "Serial port device, or \"auto\"")
	pf.IntVarP(&opts.Baud, "baud", "b", opts.Baud, "Baud rate (serial only)")

	// WebSocket connection flags
	pf.StringVarP(&opts.URL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	pf.StringVar(&opts.Username, "username", "", "Username for HTTP Basic auth")
	pf.BoolVar(&opts.NoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// Engine flags
	pf.DurationVar(&opts.Tick, "tick", opts.Tick, "Engine tick period")
	pf.Uint16Var(&opts.DefaultCapacity, "capacity", opts.DefaultCapacity, "Library size assumed when the module does not report one")
	pf.BoolVar(&opts.StrictChecksum, "strict-checksum", false, "Reject responses with a bad checksum")
	pf.BoolVar(&opts.ReclaimDeletedIDs, "reclaim-deleted-ids", false, "Reuse the most recent id after it is deleted")
	pf.BoolVar(&opts.DisableLEDOff, "no-led-off", false, "Leave the ring light on after startup")

	// Ambient flags
	pf.StringVar(&configPath, "config", "", "TOML config file")
	pf.StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "Log level (trace, debug, info, warn, error)")
	pf.StringVar(&opts.LogFile, "log-file", "", "Write logs to this file instead of stderr")
}

// setup loads the config file and builds the logger before any command runs
func setup(cmd *cobra.Command, args []string) error {
	if configPath != "" {
		explicit := func(name string) bool {
			f := cmd.Flags().Lookup(name)
			return f != nil && f.Changed
		}
		if err := applyConfigFile(configPath, &opts, explicit); err != nil {
			return err
		}
	}

	log, closer, err := newLogger(opts.LogLevel, opts.LogFile, interactive(cmd))
	if err != nil {
		return err
	}
	logger, logCloser = log, closer
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
