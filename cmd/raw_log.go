// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Thermoquad/dactyl/pkg/zw101"
	"github.com/spf13/cobra"
)

var rawLogStats time.Duration

var rawLogCmd = &cobra.Command{
	Use:   "raw_log",
	Short: "Display raw packet log in human-readable format",
	Long: `Continuously decode and display ZW101 frames as they arrive.

Connect to a tap on the UART between a host and the module. Each frame is
printed with its timestamp, identifier and decoded fields. Acknowledges are
decoded against the most recent command seen on the line.

Supports both serial and WebSocket connections.

Exit codes:
  0 - Connection closed
  2 - Connection error`,
	RunE: runRawLog,
}

func init() {
	rawLogCmd.Flags().DurationVar(&rawLogStats, "stats", 0, "Print statistics at this interval (0 = never)")
	rootCmd.AddCommand(rawLogCmd)
}

// frameFormatter formats frames, pairing each ack with the command before it
type frameFormatter struct {
	lastOpcode uint8
}

func (f *frameFormatter) format(p *zw101.Packet) string {
	switch {
	case p.IsCommand():
		f.lastOpcode = p.Opcode()
		return zw101.FormatPacket(p)
	case p.IsAck():
		opcode := f.lastOpcode
		f.lastOpcode = 0
		return zw101.FormatAck(p, opcode)
	default:
		return zw101.FormatPacket(p)
	}
}

func runRawLog(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		exitConnectionError(err)
	}
	defer conn.Close()

	fmt.Printf("Dactyl - Raw Packet Log\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	decoder := zw101.NewDecoder()
	formatter := &frameFormatter{}
	stats := zw101.NewStatistics()
	lastStats := time.Now()
	buf := make([]byte, 128)

	for {
		n, err := conn.Read(buf)
		if err != nil {
			if errors.Is(err, ErrConnectionClosed) || errors.Is(err, io.EOF) {
				logger.Info().Msg("connection closed")
				return nil
			}
			logger.Warn().Err(err).Msg("read error")
			continue
		}

		for i := 0; i < n; i++ {
			packet, err := decoder.DecodeByte(buf[i])
			if err != nil {
				stats.Update(nil, err, nil)
				fmt.Printf("[ERROR] %v\n", err)
				continue
			}
			if packet != nil {
				stats.Update(packet, nil, zw101.ValidatePacket(packet))
				fmt.Print(formatter.format(packet))
			}
		}

		if rawLogStats > 0 && time.Since(lastStats) >= rawLogStats {
			fmt.Print(stats.String())
			lastStats = time.Now()
		}
	}
}
