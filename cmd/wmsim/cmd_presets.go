package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"worldmorph/internal/morph"
)

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List parameter presets with their key thresholds",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if jsonOutput(cmd) {
				all := make(map[string]morph.Params)
				for _, p := range morph.Presets() {
					all[string(p)] = p.Params()
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(all)
			}
			fmt.Fprintf(out, "%-14s %10s %8s %8s %8s %8s\n", "preset", "expansion", "storm", "alpha", "beta", "mantle")
			for _, preset := range morph.Presets() {
				p := preset.Params()
				fmt.Fprintf(out, "%-14s %10.1f %8.1f %8.2f %8.2f %8.1f\n",
					preset, p.ExpansionThreshold, p.ThunderstormThreshold, p.AlphaEnergyDemand, p.BetaEnergyDemand, p.MantleEnergyLevel)
			}
			return nil
		},
	}
}
