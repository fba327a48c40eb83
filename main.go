// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// Dactyl - ZW101 Fingerprint Sensor Tool
//
// A CLI tool for driving ZW101 optical fingerprint modules and decoding
// their serial protocol.

package main

import (
	"os"

	"github.com/Thermoquad/dactyl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
