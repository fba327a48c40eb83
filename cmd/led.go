// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"

	"github.com/Thermoquad/dactyl/pkg/zw101"
	"github.com/spf13/cobra"
)

var ledCmd = &cobra.Command{
	Use:   "led <mode> <color> [duty]",
	Short: "Set the ring light",
	Long: `Set the ring light effect.

Modes:  breathing, flashing, on, off, fade_in, fade_out
Colors: none, blue, green, cyan, red, purple, yellow, white
Duty:   brightness 0-255 (default 255)

Exit codes:
  0 - Light set
  1 - The module rejected the command
  2 - Connection error`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runLED,
}

var sleepCmd = &cobra.Command{
	Use:   "sleep",
	Short: "Put the module into low-power sleep",
	Long: `Put the module into low-power sleep. It wakes on the next finger touch
or power cycle.

Exit codes:
  0 - Module asleep
  1 - The module did not acknowledge
  2 - Connection error`,
	Args: cobra.NoArgs,
	RunE: runSleep,
}

func init() {
	rootCmd.AddCommand(ledCmd)
	rootCmd.AddCommand(sleepCmd)
}

func runLED(cmd *cobra.Command, args []string) error {
	mode, color, duty, err := parseLEDArgs(args)
	if err != nil {
		return err
	}

	dev, conn, _, err := openDevice(nil)
	if err != nil {
		exitConnectionError(err)
	}
	defer conn.Close()

	if err := dev.SetLED(mode, color, duty); err != nil {
		exitFailed("%v", err)
	}
	fmt.Printf("LED: %s %s duty=%d\n", zw101.FormatLEDMode(mode), zw101.FormatLEDColor(color), duty)
	return nil
}

func runSleep(cmd *cobra.Command, args []string) error {
	dev, conn, _, err := openDevice(newConsoleObserver(os.Stdout))
	if err != nil {
		exitConnectionError(err)
	}
	defer conn.Close()

	if err := dev.EnterSleep(); err != nil {
		exitFailed("%v", err)
	}
	return nil
}
