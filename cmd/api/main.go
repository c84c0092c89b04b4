package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd runs the API server when no subcommand is given.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lighthouse-api",
		Short:         "Lighthouse account and password service",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runServe,
	}
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newSeedCmd())
	return cmd
}
