package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"worldmorph/internal/history"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect runs recorded with run --history",
	}
	cmd.PersistentFlags().String("db", "", "SQLite history database (defaults to history.path from config)")
	cmd.AddCommand(newHistoryListCmd(), newHistoryShowCmd())
	return cmd
}

func openHistory(cmd *cobra.Command) (*history.Store, error) {
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return nil, err
		}
		path = cfg.History.Path
	}
	if path == "" {
		return nil, fmt.Errorf("no history database: pass --db or set history.path")
	}
	return history.Open(cmd.Context(), path)
}

func newHistoryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Runs(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOutput(cmd) {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded.")
				return nil
			}
			fmt.Fprintf(out, "%4s  %-14s %9s %8s %8s  %s\n", "id", "preset", "size", "seed", "samples", "started")
			for _, r := range runs {
				fmt.Fprintf(out, "%4d  %-14s %9s %8d %8d  %s\n",
					r.ID, r.Preset, fmt.Sprintf("%dx%d", r.Width, r.Height), r.Seed, r.Samples, r.StartedAt.Local().Format(time.DateTime))
			}
			return nil
		},
	}
}

func newHistoryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print the samples of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid run id %q: %w", args[0], err)
			}
			store, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.Run(cmd.Context(), id)
			if err != nil {
				return err
			}
			samples, err := store.Samples(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOutput(cmd) {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Run     history.Run      `json:"run"`
					Samples []history.Sample `json:"samples"`
				}{run, samples})
			}
			fmt.Fprintf(out, "Run %d: %s %dx%d seed %d\n", run.ID, run.Preset, run.Width, run.Height, run.Seed)
			fmt.Fprintf(out, "%8s %9s %7s %7s %7s %7s %9s %9s\n", "cycle", "time", "alpha", "beta", "human", "storms", "mantle", "temp")
			for _, s := range samples {
				fmt.Fprintf(out, "%8d %9.2f %7d %7d %7d %7d %9.2f %9.2f\n",
					s.Cycle, s.TimeStep, s.Stats.AlphaCrystals, s.Stats.BetaCrystals, s.Stats.HumanSettlements,
					s.Stats.ThunderstormCells, s.Stats.AverageMantleEnergy, s.Stats.AverageTemperature)
			}
			return nil
		},
	}
}
