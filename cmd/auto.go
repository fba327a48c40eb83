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
	"github.com/Thermoquad/dactyl/pkg/zw101"
	"github.com/spf13/cobra"
)

var autoEnrollTimeout time.Duration

var autoEnrollCmd = &cobra.Command{
	Use:   "auto_enroll",
	Short: "Hand enrollment to the module",
	Long: `Start the module's built-in enrollment and wait until the timeout, then
cancel it. The module drives its own ring light and sample sequence.

Exit codes:
  0 - Auto mode ran to its deadline
  1 - The module rejected the command
  2 - Connection error`,
	Args: cobra.NoArgs,
	RunE: runAutoEnroll,
}

var autoMatchCmd = &cobra.Command{
	Use:   "auto_match",
	Short: "Hand searching to the module",
	Long: `Start the module's built-in search across the whole library. It runs
until Ctrl+C, which cancels it.

Exit codes:
  0 - Cancelled by the user
  1 - The module rejected the command
  2 - Connection error`,
	Args: cobra.NoArgs,
	RunE: runAutoMatch,
}

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel a running auto mode",
	Long: `Send AUTO_CANCEL to abort module-driven enrollment or search.

Exit codes:
  0 - Cancel sent
  1 - The write failed
  2 - Connection error`,
	Args: cobra.NoArgs,
	RunE: runCancel,
}

func init() {
	autoEnrollCmd.Flags().DurationVar(&autoEnrollTimeout, "timeout", 10*time.Second, "Time the module may spend enrolling")
	rootCmd.AddCommand(autoEnrollCmd)
	rootCmd.AddCommand(autoMatchCmd)
	rootCmd.AddCommand(cancelCmd)
}

func runAutoEnroll(cmd *cobra.Command, args []string) error {
	return runAutoMode(func(d *sensor.Device) error { return d.StartAutoEnroll(autoEnrollTimeout) })
}

func runAutoMatch(cmd *cobra.Command, args []string) error {
	return runAutoMode(func(d *sensor.Device) error { return d.StartAutoMatch() })
}

// runAutoMode starts an auto mode and ticks until it ends or the user interrupts
func runAutoMode(start func(*sensor.Device) error) error {
	dev, conn, connInfo, err := openDevice(newConsoleObserver(os.Stdout))
	if err != nil {
		exitConnectionError(err)
	}
	defer conn.Close()

	fmt.Printf("Dactyl - Auto Mode\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to cancel\n\n")

	if err := dev.Start(); err != nil {
		logger.Warn().Err(err).Msg("library info unavailable, using defaults")
	}
	if err := start(dev); err != nil {
		exitFailed("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if !tickUntil(ctx, dev, func() bool { return !dev.AutoModeActive() }) {
		if err := dev.CancelAutoMode(); err != nil {
			exitFailed("cancel: %v", err)
		}
	}
	return nil
}

func runCancel(cmd *cobra.Command, args []string) error {
	conn, _, err := OpenConnection()
	if err != nil {
		exitConnectionError(err)
	}
	defer conn.Close()

	// The device does not know about modes started by another process,
	// so send the raw command
	if _, err := conn.Write(zw101.EncodePacket(zw101.NewAutoCancel())); err != nil {
		exitFailed("%v", err)
	}
	fmt.Println(sensor.StatusAutoCancelled)
	return nil
}
