// Package cli wires up the perfgauge commands.
package cli

import (
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// RootCmd is the base command when perfgauge is called without a subcommand.
var RootCmd = &cobra.Command{
	Use:     "perfgauge",
	Short:   "Per-worker resource-usage accounting with a prime-finding demo service",
	Version: version,
	Long: `Perfgauge measures the elapsed time, CPU time, and memory allocation of
units of work and merges per-worker measurements into consistent operation
totals. The serve command runs a demo HTTP service whose workers discover
primes while every step of their work is accounted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command. Called once, from main.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
