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

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "arena-client",
		Short:        "Command line client for the arena server",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newConnectCmd())
	rootCmd.AddCommand(newWatchCmd())

	return rootCmd
}
