// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Thermoquad/dactyl/pkg/zw101"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	showAll       bool
	statsInterval int
	useTUI        bool
)

var errorDetectionCmd = &cobra.Command{
	Use:   "error_detection",
	Short: "Detect and analyze malformed frames and errors",
	Long: `Track frame errors, malformed data, and failed commands with statistics.

This command passively monitors the UART and detects:
  - Checksum errors and decode failures
  - Unknown opcodes and confirmation codes
  - Commands carrying the wrong number of parameter bytes
  - Failed acknowledges (enroll, search, storage failures)
  - Statistics and trends (frame rate, error rate, success rate)

By default, only errors are displayed. Use --show-all to display valid frames too.

Exit codes:
  0 - Monitor closed
  2 - Connection error`,
	RunE: runErrorDetection,
}

func init() {
	rootCmd.AddCommand(errorDetectionCmd)
	errorDetectionCmd.Flags().BoolVar(&showAll, "show-all", false, "Show all frames (not just errors)")
	errorDetectionCmd.Flags().IntVar(&statsInterval, "stats-interval", 10, "Statistics update interval (seconds)")
	errorDetectionCmd.Flags().BoolVar(&useTUI, "tui", true, "Use terminal UI (false for text mode)")
}

func runErrorDetection(cmd *cobra.Command, args []string) error {
	if statsInterval <= 0 {
		return fmt.Errorf("--stats-interval must be positive")
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		exitConnectionError(err)
	}
	defer conn.Close()

	if useTUI {
		return runTUIMode(conn, connInfo)
	}
	return runTextMode(conn, connInfo)
}

// syncTracker ignores decode errors until the first valid frame
type syncTracker struct {
	decoder      *zw101.Decoder
	synchronized bool
	invalidBytes int
}

// frameEvent is one decoded frame or post-sync decode error
type frameEvent struct {
	packet     *zw101.Packet
	decodeErr  error
	validation []zw101.ValidationError
	justSynced bool
}

func newSyncTracker() *syncTracker {
	return &syncTracker{decoder: zw101.NewDecoder()}
}

// feed decodes b and reports whether it produced an event
func (t *syncTracker) feed(b byte) (frameEvent, bool) {
	packet, decodeErr := t.decoder.DecodeByte(b)
	if decodeErr != nil {
		if !t.synchronized {
			t.invalidBytes++
			return frameEvent{}, false
		}
		return frameEvent{decodeErr: decodeErr}, true
	}
	if packet == nil {
		return frameEvent{}, false
	}

	ev := frameEvent{packet: packet, validation: zw101.ValidatePacket(packet)}
	if !t.synchronized {
		t.synchronized = true
		ev.justSynced = true
	}
	return ev, true
}

// readFrames feeds conn through a syncTracker until the connection closes
func readFrames(conn Connection, tracker *syncTracker, emit func(frameEvent)) {
	buf := make([]byte, 128)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			if errors.Is(err, ErrConnectionClosed) || errors.Is(err, io.EOF) {
				return
			}
			logger.Warn().Err(err).Msg("read error")
			continue
		}
		for i := 0; i < n; i++ {
			if ev, ok := tracker.feed(buf[i]); ok {
				emit(ev)
			}
		}
	}
}

// printDecodeError prints a decode error in highlighted format
func printDecodeError(err error) {
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Printf("[%s] \033[1;31mDECODE ERROR:\033[0m %v\n", timestamp, err)
	fmt.Printf("  >>> DECODE FAILED <<<\n\n")
}

// printFailedAck prints an ack whose confirmation code reports a failure
func printFailedAck(packet *zw101.Packet, opcode uint8) {
	timestamp := packet.Timestamp().Format("15:04:05.000")
	name := "UNKNOWN COMMAND"
	if opcode != 0 {
		name = zw101.OpcodeName(opcode)
	}
	fmt.Printf("[%s] \033[1;33mFAILED:\033[0m %s -> %s (0x%02X)\n\n", timestamp, name, packet.Confirm(), byte(packet.Confirm()))
}

// printValidationErrors prints validation errors for a frame
func printValidationErrors(packet *zw101.Packet, errs []zw101.ValidationError) {
	timestamp := packet.Timestamp().Format("15:04:05.000")

	fmt.Printf("[%s] \033[1;33mVALIDATION ERROR:\033[0m %s\n", timestamp, frameName(packet))
	fmt.Printf("  Checksum: \033[1;32mOK\033[0m\n")

	for i, err := range errs {
		switch err.Type {
		case zw101.AnomalyLengthMismatch:
			fmt.Printf("  Issue %d: \033[1;31m%s\033[0m\n", i+1, err.Message)
			if received, ok := err.Details["length"].(int); ok {
				if expected, ok := err.Details["expected"].(int); ok {
					fmt.Printf("    Length: received=%d, expected=%d\n", received, expected)
				}
			}

		case zw101.AnomalyUnknownOpcode, zw101.AnomalyUnknownConfirm:
			fmt.Printf("  Issue %d: \033[1;31m%s\033[0m\n", i+1, err.Message)

		case zw101.AnomalyInvalidBuffer, zw101.AnomalyAddress:
			fmt.Printf("  Issue %d: \033[1;33m%s\033[0m\n", i+1, err.Message)

		default:
			fmt.Printf("  Issue %d: %s\n", i+1, err.Message)
		}
	}

	fmt.Printf("  Raw: % X\n", zw101.EncodePacket(packet))
	fmt.Printf("  >>> FRAME REJECTED <<<\n\n")
}

// runTUIMode runs error detection in TUI mode
func runTUIMode(conn Connection, connInfo string) error {
	tracker := newSyncTracker()

	m := initialModel(connInfo, statsInterval, showAll)
	p := tea.NewProgram(m)

	go readFrames(conn, tracker, func(ev frameEvent) {
		if ev.justSynced {
			p.Send(syncMsg{invalidBytes: tracker.invalidBytes})
		}
		p.Send(serialDataMsg{
			packet:           ev.packet,
			decodeErr:        ev.decodeErr,
			validationErrors: ev.validation,
		})
	})

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// runTextMode runs error detection in text mode
func runTextMode(conn Connection, connInfo string) error {
	fmt.Printf("Dactyl - Error Detection Mode\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Statistics interval: %d seconds\n", statsInterval)
	if showAll {
		fmt.Printf("Mode: All frames\n")
	} else {
		fmt.Printf("Mode: Errors only\n")
	}
	fmt.Printf("Press Ctrl+C to exit\n\n")

	tracker := newSyncTracker()
	stats := zw101.NewStatistics()
	formatter := &frameFormatter{}

	statsTicker := time.NewTicker(time.Duration(statsInterval) * time.Second)
	defer statsTicker.Stop()

	events := make(chan frameEvent, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		readFrames(conn, tracker, func(ev frameEvent) { events <- ev })
	}()

	for {
		select {
		case ev := <-events:
			if ev.decodeErr != nil {
				stats.Update(nil, ev.decodeErr, nil)
				printDecodeError(ev.decodeErr)
				continue
			}

			if ev.justSynced {
				if tracker.invalidBytes > 0 {
					fmt.Printf("[SYNC] Synchronized after skipping %d invalid bytes\n\n", tracker.invalidBytes)
				} else {
					fmt.Printf("[SYNC] Synchronized\n\n")
				}
			}

			stats.Update(ev.packet, nil, ev.validation)
			opcode := formatter.lastOpcode
			text := formatter.format(ev.packet)

			switch {
			case len(ev.validation) > 0:
				printValidationErrors(ev.packet, ev.validation)
			case ev.packet.IsAck() && ev.packet.Confirm() != zw101.ConfirmOK:
				printFailedAck(ev.packet, opcode)
			case showAll:
				fmt.Print(text)
			}

		case <-statsTicker.C:
			fmt.Println()
			fmt.Print(stats.String())
			fmt.Println()

		case <-done:
			fmt.Println()
			fmt.Print(stats.String())
			return nil
		}
	}
}
