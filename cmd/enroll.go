// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/Thermoquad/dactyl/pkg/sensor"
	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll",
	Short: "Enroll a fingerprint into the next free slot",
	Long: `Run the five-sample enrollment workflow and store the merged template.

Place the finger when prompted and lift it between samples. The template is
stored at the next id allocated by the tool.

Exit codes:
  0 - Template stored
  1 - Enrollment failed, timed out or was interrupted
  2 - Connection error`,
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)
}

// enrollFailures are the statuses that end an unsuccessful session
var enrollFailures = map[string]bool{
	sensor.StatusEnrollTimeout: true,
	sensor.StatusMergeFailed:   true,
	sensor.StatusStoreFailed:   true,
}

func runEnroll(cmd *cobra.Command, args []string) error {
	console := newConsoleObserver(os.Stdout)
	dev, conn, connInfo, err := openDevice(console)
	if err != nil {
		exitConnectionError(err)
	}
	defer conn.Close()

	fmt.Printf("Dactyl - Enroll\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to abort\n\n")

	if err := dev.Start(); err != nil {
		logger.Warn().Err(err).Msg("library info unavailable, using defaults")
	}
	dev.DisableSearch()

	if err := dev.RegisterFingerprint(); err != nil {
		exitFailed("%v", err)
	}
	fmt.Printf("Place finger on the sensor (slot %d)\n", dev.NextID())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if !tickUntil(ctx, dev, func() bool { return !dev.Enrolling() }) {
		exitFailed("enrollment interrupted")
	}

	if status := console.lastStatus(); enrollFailures[status] {
		exitFailed("%s", status)
	}
	return nil
}

// tickUntil ticks dev on the configured period until done reports true.
// Returns false if ctx ended first.
func tickUntil(ctx context.Context, dev *sensor.Device, done func() bool) bool {
	ticker := time.NewTicker(opts.Tick)
	defer ticker.Stop()

	for !done() {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			dev.Tick()
		}
	}
	return true
}
