package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newParamsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Show the resolved parameter set grouped by rule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			p, err := resolveParams(cmd, cfg)
			if err != nil {
				return err
			}
			snap := p.Parameters()
			out := cmd.OutOrStdout()
			if jsonOutput(cmd) {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(snap)
			}
			for _, g := range snap.Groups {
				fmt.Fprintf(out, "%s\n", g.Name)
				for _, param := range g.Params {
					fmt.Fprintf(out, "  %-26s %s\n", param.Key, param.Value)
				}
			}
			return nil
		},
	}
	addWorldFlags(cmd)
	return cmd
}
