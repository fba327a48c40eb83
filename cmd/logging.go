// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// newLogger builds the process logger. Logs go to file when one is given,
// otherwise to stderr. Interactive commands own the terminal, so without a
// file their logs are discarded.
func newLogger(level, file string, interactive bool) (zerolog.Logger, io.Closer, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		var err error
		lvl, err = zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("invalid log level %q", level)
		}
	}

	var (
		out    io.Writer
		closer io.Closer
	)
	switch {
	case file != "":
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out, closer = f, f
	case interactive:
		return zerolog.Nop(), nil, nil
	default:
		out = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}
	}

	l := zerolog.New(out).Level(lvl).With().Timestamp().Str("app", "dactyl").Logger()
	log.Logger = l
	return l, closer, nil
}

// interactive reports whether cmd runs a full-screen TUI
func interactive(cmd *cobra.Command) bool {
	if cmd.Annotations["tui"] == "true" {
		return true
	}
	f := cmd.Flags().Lookup("tui")
	return f != nil && f.Value.String() == "true"
}
