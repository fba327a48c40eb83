// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Thermoquad/dactyl/pkg/sensor"
	"github.com/Thermoquad/dactyl/pkg/zw101"
)

// parseTemplateID parses a library slot id
func parseTemplateID(s string) (uint16, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid template id %q", s)
	}
	return uint16(id), nil
}

// parseLEDArgs parses "<mode> <color> [duty]". Duty defaults to full brightness.
func parseLEDArgs(args []string) (zw101.LEDMode, zw101.LEDColor, uint8, error) {
	if len(args) < 2 || len(args) > 3 {
		return 0, 0, 0, fmt.Errorf("expected <mode> <color> [duty]")
	}

	mode, ok := zw101.ParseLEDMode(args[0])
	if !ok {
		return 0, 0, 0, fmt.Errorf("unknown LED mode %q", args[0])
	}
	color, ok := zw101.ParseLEDColor(args[1])
	if !ok {
		return 0, 0, 0, fmt.Errorf("unknown LED color %q", args[1])
	}

	duty := uint8(0xFF)
	if len(args) == 3 {
		v, err := strconv.ParseUint(args[2], 0, 8)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid duty %q (0-255)", args[2])
		}
		duty = uint8(v)
	}
	return mode, color, duty, nil
}

// parseAutoTimeout parses an auto enroll timeout. Bare numbers are seconds.
func parseAutoTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(n * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q", s)
	}
	return d, nil
}

// readEnrolledIDs reads every index table page covering the library
func readEnrolledIDs(d *sensor.Device) ([]uint16, error) {
	pages := (int(d.Capacity()) + zw101.IndexTableBits - 1) / zw101.IndexTableBits
	var ids []uint16
	for page := 0; page < pages; page++ {
		got, err := d.ReadIndexTable(uint8(page))
		if err != nil {
			return nil, err
		}
		ids = append(ids, got...)
	}
	return ids, nil
}
