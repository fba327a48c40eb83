// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/Thermoquad/dactyl/pkg/zw101"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show module parameters and enrolled templates",
	Long: `Handshake with the module and print its system parameters, the number of
stored templates and the occupied library slots.

Exit codes:
  0 - Module answered
  1 - Module did not answer a query
  2 - Connection error`,
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	dev, conn, connInfo, err := openDevice(nil)
	if err != nil {
		exitConnectionError(err)
	}
	defer conn.Close()

	fmt.Printf("Dactyl - Module Info\n")
	fmt.Printf("Connection: %s\n\n", connInfo)

	if err := dev.Handshake(); err != nil {
		exitFailed("handshake: %v", err)
	}

	params, err := dev.ReadSystemParameters()
	if err != nil {
		exitFailed("read system parameters: %v", err)
	}
	fmt.Printf("System Parameters:\n%s\n", zw101.FormatSystemParameters(params))

	// Start also loads capacity and the allocator from the module
	if err := dev.Start(); err != nil {
		exitFailed("read library: %v", err)
	}
	count, err := dev.ReadValidTemplateCount()
	if err != nil {
		exitFailed("read template count: %v", err)
	}
	ids, err := readEnrolledIDs(dev)
	if err != nil {
		exitFailed("read index table: %v", err)
	}

	fmt.Printf("Library:\n")
	fmt.Printf("  Templates:       %d/%d\n", count, dev.Capacity())
	fmt.Printf("  Enrolled IDs:    %s\n", zw101.FormatIDList(ids))
	fmt.Printf("  Next ID:         %d\n", dev.NextID())
	return nil
}
