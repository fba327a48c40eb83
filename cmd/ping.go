// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	pingCount    int
	pingInterval time.Duration
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Test the link by sending HANDSHAKE commands",
	Long: `Send HANDSHAKE commands to the module and wait for each acknowledge.

This command tests bidirectional communication with the module, through a
direct UART or a WebSocket bridge. Each reply is reported with its round
trip time.

Exit codes:
  0 - All handshakes acknowledged
  1 - One or more handshakes failed or timed out
  2 - Connection error`,
	RunE: runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
	pingCmd.Flags().IntVar(&pingCount, "count", 3, "Number of handshakes to send")
	pingCmd.Flags().DurationVar(&pingInterval, "interval", 100*time.Millisecond, "Delay between handshakes")
}

func runPing(cmd *cobra.Command, args []string) error {
	if pingCount <= 0 {
		return fmt.Errorf("--count must be positive")
	}

	dev, conn, connInfo, err := openDevice(nil)
	if err != nil {
		exitConnectionError(err)
	}
	defer conn.Close()

	fmt.Printf("Dactyl - Handshake Ping\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Count: %d\n\n", pingCount)

	successCount := 0
	var total time.Duration

	for i := 1; i <= pingCount; i++ {
		fmt.Printf("Handshake %d/%d: ", i, pingCount)

		start := time.Now()
		err := dev.Handshake()
		rtt := time.Since(start)
		if err != nil {
			fmt.Printf("FAILED: %v\n", err)
		} else {
			fmt.Printf("OK, rtt=%v\n", rtt.Round(time.Millisecond))
			successCount++
			total += rtt
		}

		if i < pingCount {
			time.Sleep(pingInterval)
		}
	}

	failCount := pingCount - successCount
	fmt.Printf("\n--- Ping statistics ---\n")
	fmt.Printf("%d handshakes sent, %d acknowledged, %.0f%% loss\n",
		pingCount, successCount, float64(failCount)/float64(pingCount)*100)
	if successCount > 0 {
		fmt.Printf("average rtt=%v\n", (total / time.Duration(successCount)).Round(time.Millisecond))
	}

	if failCount > 0 {
		os.Exit(exitFailure)
	}
	return nil
}
