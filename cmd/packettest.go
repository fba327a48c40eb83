// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/Thermoquad/dactyl/pkg/zw101"
	"github.com/spf13/cobra"
)

var packetTestTimeout int

var packetTestCmd = &cobra.Command{
	Use:   "packet_test",
	Short: "Test a UART tap by waiting for a valid ZW101 frame",
	Long: `Wait for a valid ZW101 frame on the connection until timeout.

This command connects to a serial port or WebSocket and waits for any valid
frame without transmitting. It ignores invalid bytes and waits for a complete
frame with a matching checksum.

Exit codes:
  0 - Frame received before timeout
  1 - Timeout reached without receiving a valid frame
  2 - Connection error

Useful for checking the wiring of a passive tap before running raw_log.`,
	RunE: runPacketTest,
}

func init() {
	rootCmd.AddCommand(packetTestCmd)
	packetTestCmd.Flags().IntVar(&packetTestTimeout, "timeout", 10, "Timeout in seconds to wait for a frame")
}

func runPacketTest(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		exitConnectionError(err)
	}
	defer conn.Close()

	fmt.Printf("Dactyl - Packet Test\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n", packetTestTimeout)
	fmt.Printf("Waiting for valid ZW101 frame...\n\n")

	decoder := zw101.NewDecoder()
	packetChan := make(chan *zw101.Packet, 1)
	errChan := make(chan error, 1)

	go func() {
		buf := make([]byte, 128)
		invalidBytes := 0
		for {
			n, err := conn.Read(buf)
			if err != nil {
				errChan <- err
				return
			}

			for i := 0; i < n; i++ {
				packet, decodeErr := decoder.DecodeByte(buf[i])
				if decodeErr != nil {
					invalidBytes++
					continue
				}
				if packet != nil {
					if invalidBytes > 0 {
						fmt.Printf("(skipped %d invalid bytes before sync)\n", invalidBytes)
					}
					packetChan <- packet
					return
				}
			}
		}
	}()

	select {
	case packet := <-packetChan:
		fmt.Printf("SUCCESS: Received valid frame\n")
		fmt.Printf("  Identifier: %s (0x%02X)\n", zw101.FormatIdentifier(packet.ID()), packet.ID())
		if packet.IsCommand() {
			fmt.Printf("  Command: %s\n", zw101.OpcodeName(packet.Opcode()))
		}
		fmt.Printf("  Address: 0x%08X\n", packet.Address())
		fmt.Printf("  Length: %d bytes\n", packet.Length())
		fmt.Printf("  Checksum: 0x%04X\n", packet.Checksum())
		os.Exit(exitOK)

	case err := <-errChan:
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		os.Exit(exitConnection)

	case <-time.After(time.Duration(packetTestTimeout) * time.Second):
		fmt.Fprintf(os.Stderr, "TIMEOUT: No valid frame received within %d seconds\n", packetTestTimeout)
		os.Exit(exitFailure)
	}

	return nil
}
