// Package cmd provides the command-line interface of cachesim.
package cmd

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cachesim",
	Short: "cachesim simulates a two-core MESI cache hierarchy.",
	Long: `cachesim replays memory reference traces on two cores, each with ` +
		`split L1 caches and a private L2, sharing an L3 over a snooping ` +
		`bus kept coherent with the MESI protocol.`,
	SilenceUsage: true,
}

// Execute runs the command line and returns the exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		return 1
	}

	return 0
}
