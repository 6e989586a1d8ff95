package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"worldmorph/internal/history"
	"worldmorph/internal/logging"
	"worldmorph/internal/morph"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Advance a world and log sampled statistics",
		Long: `Run initializes a world, advances it --ticks times by --delta seconds and
logs statistics every --every ticks. With --history the samples are recorded
in SQLite; with --trace each sample is appended to a JSONL file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runWorld(ctx, cmd)
		},
	}
	addWorldFlags(cmd)
	addRunFlags(cmd)
	cmd.Flags().Int("every", 0, "sampling interval in ticks")
	cmd.Flags().Int("tps", 0, "pace ticks in real time (0 = as fast as possible)")
	cmd.Flags().String("history", "", "SQLite database recording sampled statistics")
	cmd.Flags().String("trace", "", "JSONL file receiving one record per sample")
	return cmd
}

func runWorld(ctx context.Context, cmd *cobra.Command) error {
	w, err := newWorld(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("every") {
		w.cfg.Run.Every, _ = flags.GetInt("every")
	}
	if flags.Changed("history") {
		w.cfg.History.Path, _ = flags.GetString("history")
	}
	if flags.Changed("trace") {
		w.cfg.Logging.Trace, _ = flags.GetString("trace")
	}
	tps, _ := flags.GetInt("tps")

	trace, err := logging.OpenTrace(w.cfg.Logging.Trace)
	if err != nil {
		return fmt.Errorf("opening trace: %w", err)
	}
	defer trace.Close()

	var (
		store *history.Store
		runID int64
	)
	if w.cfg.History.Path != "" {
		store, err = history.Open(ctx, w.cfg.History.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		runID, err = store.StartRun(ctx, history.RunInfo{
			Preset: w.cfg.Preset,
			Width:  w.cfg.World.Width,
			Height: w.cfg.World.Height,
			Seed:   w.cfg.World.Seed,
			Params: w.params,
		})
		if err != nil {
			return err
		}
		w.logger.Info("recording run", "id", runID, "path", w.cfg.History.Path)
	}

	err = w.advance(ctx, tps, func(st morph.Status) error {
		stats, err := w.session.Statistics()
		if err != nil {
			return err
		}
		w.logger.Info("sample",
			"cycle", st.CycleCount,
			"alpha", stats.AlphaCrystals,
			"beta", stats.BetaCrystals,
			"human", stats.HumanSettlements,
			"storms", stats.ThunderstormCells,
			"mantle", stats.AverageMantleEnergy,
		)
		trace.Log(map[string]any{
			"cycle":      st.CycleCount,
			"time_step":  st.TimeStep,
			"statistics": stats,
		})
		if store != nil {
			return store.Record(ctx, runID, st, stats)
		}
		return nil
	})
	if err != nil {
		return err
	}

	stats, err := w.session.Statistics()
	if err != nil {
		return err
	}
	return printStatistics(cmd.OutOrStdout(), w.session.Status(), stats, jsonOutput(cmd))
}

func printStatistics(out io.Writer, st morph.Status, stats morph.Statistics, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Status     morph.Status     `json:"status"`
			Statistics morph.Statistics `json:"statistics"`
		}{st, stats})
	}
	fmt.Fprintf(out, "World %dx%d after %d ticks (%.3fs)\n", st.Width, st.Height, st.CycleCount, st.TimeStep)
	fmt.Fprintf(out, "  terrain cells      %d / %d\n", stats.TerrainCells, stats.TotalCells)
	fmt.Fprintf(out, "  alpha crystals     %d\n", stats.AlphaCrystals)
	fmt.Fprintf(out, "  beta crystals      %d\n", stats.BetaCrystals)
	fmt.Fprintf(out, "  human settlements  %d\n", stats.HumanSettlements)
	fmt.Fprintf(out, "  thunderstorms      %d\n", stats.ThunderstormCells)
	fmt.Fprintf(out, "  avg mantle energy  %.2f (max %.2f)\n", stats.AverageMantleEnergy, stats.MaxMantleEnergy)
	fmt.Fprintf(out, "  avg temperature    %.2f (max %.2f)\n", stats.AverageTemperature, stats.MaxTemperature)
	fmt.Fprintf(out, "  stored energy      %.2f\n", stats.TotalStoredEnergy)
	fmt.Fprintf(out, "  avg prosperity     %.2f\n", stats.AverageProsperity)
	return nil
}
