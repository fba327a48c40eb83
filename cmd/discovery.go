// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"

	"github.com/Thermoquad/dactyl/pkg/sensor"
	"github.com/spf13/cobra"
	"go.bug.st/serial/enumerator"
)

var discoveryAll bool

var discoveryCmd = &cobra.Command{
	Use:   "discovery",
	Short: "Find fingerprint modules on local serial ports",
	Long: `Enumerate serial ports and probe each one with a HANDSHAKE.

Only USB serial adapters are probed unless --all is given. Ports that
answer also report their system parameters.

Examples:
  # Probe every USB adapter at the default baud rate
  dactyl discovery

  # Probe every serial port at 115200 baud
  dactyl discovery --all --baud 115200

Exit codes:
  0 - Discovery successful (at least one module found)
  1 - Discovery failed (no modules answered)
  2 - Ports could not be listed`,
	RunE: runDiscovery,
}

func init() {
	rootCmd.AddCommand(discoveryCmd)
	discoveryCmd.Flags().BoolVar(&discoveryAll, "all", false, "Probe non-USB ports too")
}

// discoveredModule is a port that answered the probe
type discoveredModule struct {
	port     string
	product  string
	capacity uint16
	security uint16
}

func runDiscovery(cmd *cobra.Command, args []string) error {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		exitConnectionError(fmt.Errorf("failed to list serial ports: %w", err))
	}

	fmt.Printf("Dactyl - Module Discovery\n")
	fmt.Printf("Baud: %d\n\n", opts.Baud)

	var found []discoveredModule
	for _, p := range ports {
		if !p.IsUSB && !discoveryAll {
			continue
		}

		label := p.Name
		if p.IsUSB {
			label = fmt.Sprintf("%s (USB %s:%s %s)", p.Name, p.VID, p.PID, p.Product)
		}
		fmt.Printf("Probing %s... ", label)

		mod, err := probePort(p.Name)
		if err != nil {
			fmt.Printf("no module (%v)\n", err)
			continue
		}
		mod.product = p.Product
		fmt.Printf("FOUND, library %d, security %d\n", mod.capacity, mod.security)
		found = append(found, mod)
	}

	fmt.Printf("\n--- Discovery summary ---\n")
	fmt.Printf("Modules found: %d\n", len(found))
	for _, m := range found {
		fmt.Printf("  %s %s\n", m.port, m.product)
	}

	if len(found) == 0 {
		fmt.Printf("No modules answered. Check wiring, power and baud rate.\n")
		os.Exit(exitFailure)
	}
	return nil
}

// probePort opens name and checks for a module answering HANDSHAKE
func probePort(name string) (discoveredModule, error) {
	conn, err := OpenSerialConnection(name, opts.Baud)
	if err != nil {
		return discoveredModule{}, err
	}
	defer conn.Close()

	dev, err := sensor.New(opts.sensorConfig(sensor.NewStreamTransport(conn), nil))
	if err != nil {
		return discoveredModule{}, err
	}
	if err := dev.Handshake(); err != nil {
		return discoveredModule{}, err
	}

	mod := discoveredModule{port: name}
	if params, err := dev.ReadSystemParameters(); err == nil {
		mod.capacity = params.LibrarySize
		mod.security = params.SecurityLevel
	}
	return mod, nil
}
