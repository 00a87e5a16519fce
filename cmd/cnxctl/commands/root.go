// Package commands implements the cnxctl CLI for offline bundle work:
// surveying a bundle's markup, validating that every module parses, and
// dumping one module as JSON.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cnxctl",
	Short: "Inspect and validate CNXML textbook bundles",
	Long: `cnxctl works against an OpenStax-style book bundle on disk
(modules/<id>/index.cnxml plus a collections/ directory).

Usage:
  cnxctl analyze <bundle-path>
  cnxctl validate <bundle-path>
  cnxctl dump <bundle-path> <module-id>`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
