package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wmsim",
		Short: "Headless driver for the world morphing simulation",
		Long: `wmsim creates a world session, advances it with fixed time deltas and
reports statistics, JSON grid exports and recorded run history.

Configuration is read from --config (YAML), then WORLDMORPH_* environment
variables, then command-line flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "YAML configuration file")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: error, warn, info, debug, trace")

	rootCmd.AddCommand(
		newRunCmd(),
		newStatsCmd(),
		newExportCmd(),
		newPresetsCmd(),
		newParamsCmd(),
		newSweepCmd(),
		newHistoryCmd(),
	)
	return rootCmd
}
