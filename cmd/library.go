// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Erase every stored template",
	Long: `Erase the module's whole template library.

Exit codes:
  0 - Library cleared
  1 - The module rejected the command or the user declined
  2 - Connection error`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one stored template",
	Long: `Delete the template stored at the given library slot.

Exit codes:
  0 - Template deleted
  1 - The module rejected the command
  2 - Connection error`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	if !clearYes {
		fmt.Fprint(os.Stderr, "Erase all templates? [y/N] ")
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			exitFailed("aborted")
		}
	}

	dev, conn, _, err := openDevice(newConsoleObserver(os.Stdout))
	if err != nil {
		exitConnectionError(err)
	}
	defer conn.Close()

	if err := dev.ClearLibrary(); err != nil {
		exitFailed("%v", err)
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseTemplateID(args[0])
	if err != nil {
		return err
	}

	dev, conn, _, err := openDevice(newConsoleObserver(os.Stdout))
	if err != nil {
		exitConnectionError(err)
	}
	defer conn.Close()

	if err := dev.Delete(id); err != nil {
		exitFailed("%v", err)
	}
	return nil
}
