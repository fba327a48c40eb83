// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Thermoquad/dactyl/pkg/eventlog"
	"github.com/spf13/cobra"
)

var (
	eventsKind    string
	eventsSummary bool
)

var eventsCmd = &cobra.Command{
	Use:   "events <file>",
	Short: "Print an event log recorded by run --record",
	Long: `Decode a CBOR event log and print one line per event.

Exit codes:
  0 - Log printed
  1 - The log could not be read or is corrupt`,
	Args: cobra.ExactArgs(1),
	RunE: runEvents,
}

func init() {
	eventsCmd.Flags().StringVar(&eventsKind, "kind", "", "Only print events of this kind (presence, match, status)")
	eventsCmd.Flags().BoolVar(&eventsSummary, "summary", false, "Print per-kind counts after the events")
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, args []string) error {
	var filter eventlog.Kind
	switch eventsKind {
	case "":
	case "presence":
		filter = eventlog.KindPresence
	case "match":
		filter = eventlog.KindMatch
	case "status":
		filter = eventlog.KindStatus
	default:
		return fmt.Errorf("unknown kind %q", eventsKind)
	}

	f, err := os.Open(args[0])
	if err != nil {
		exitFailed("%v", err)
	}
	defer f.Close()

	counts := map[eventlog.Kind]int{}
	r := eventlog.NewReader(f)
	for {
		e, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			exitFailed("%v", err)
		}
		counts[e.Kind]++
		if filter == 0 || e.Kind == filter {
			fmt.Println(e.String())
		}
	}

	if eventsSummary {
		fmt.Printf("\n--- Event summary ---\n")
		for _, k := range []eventlog.Kind{eventlog.KindPresence, eventlog.KindMatch, eventlog.KindStatus} {
			fmt.Printf("%-9s %d\n", k.String()+":", counts[k])
		}
	}
	return nil
}
