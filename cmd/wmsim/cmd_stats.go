package main

import (
	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Advance a world quietly and print its statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := newWorld(cmd)
			if err != nil {
				return err
			}
			if err := w.advance(cmd.Context(), 0, nil); err != nil {
				return err
			}
			stats, err := w.session.Statistics()
			if err != nil {
				return err
			}
			return printStatistics(cmd.OutOrStdout(), w.session.Status(), stats, jsonOutput(cmd))
		},
	}
	addWorldFlags(cmd)
	addRunFlags(cmd)
	return cmd
}
