package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"worldmorph/internal/logging"
	"worldmorph/internal/morph"
)

type scenario struct {
	preset morph.Preset
	params morph.Params
	seed   int64
}

type scenarioResult struct {
	scenario
	stats morph.Statistics
	score float64
}

// presetRanking aggregates the scenarios of one preset across seeds.
type presetRanking struct {
	Preset     string  `json:"preset"`
	Runs       int     `json:"runs"`
	MeanScore  float64 `json:"mean_score"`
	StdDev     float64 `json:"std_dev"`
	MeanAlpha  float64 `json:"mean_alpha"`
	MeanBeta   float64 `json:"mean_beta"`
	MeanHuman  float64 `json:"mean_human"`
	MeanStorms float64 `json:"mean_storms"`
}

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run every preset concurrently and rank them",
		Long: `Sweep runs each preset for --ticks ticks on --seeds consecutive seeds,
using --workers concurrent sessions, and ranks presets by the mean score
alpha + beta + 4*human.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			sets, _ := cmd.Flags().GetStringArray("set")
			overrides, err := parseOverrides(sets)
			if err != nil {
				return err
			}
			seeds, _ := cmd.Flags().GetInt("seeds")
			workers, _ := cmd.Flags().GetInt("workers")
			if seeds <= 0 {
				seeds = 1
			}
			if workers <= 0 {
				workers = runtime.NumCPU()
			}

			var scenarios []scenario
			for _, preset := range morph.Presets() {
				p := preset.Params()
				if err := p.ApplyOverrides(overrides); err != nil {
					return err
				}
				for i := 0; i < seeds; i++ {
					scenarios = append(scenarios, scenario{preset: preset, params: p, seed: cfg.World.Seed + int64(i)})
				}
			}

			logger := logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
			logger.Info("sweeping presets", "scenarios", len(scenarios), "workers", workers, "ticks", cfg.Run.Ticks)

			start := time.Now()
			results, err := runSweep(cmd.Context(), scenarios, cfg.World.Width, cfg.World.Height, cfg.Run.Ticks, cfg.Run.Delta, workers)
			if err != nil {
				return err
			}
			rankings := rankPresets(results)
			logger.Info("sweep finished", "elapsed", time.Since(start).Round(time.Millisecond))
			return printRankings(cmd.OutOrStdout(), rankings, jsonOutput(cmd))
		},
	}
	cmd.Flags().Int("width", 0, "grid width")
	cmd.Flags().Int("height", 0, "grid height")
	cmd.Flags().Int64("seed", 0, "first terrain seed")
	cmd.Flags().Int("seeds", 3, "seeds evaluated per preset")
	cmd.Flags().Int("workers", runtime.NumCPU(), "concurrent sessions")
	cmd.Flags().StringArray("set", nil, "parameter override applied to every preset (repeatable)")
	addRunFlags(cmd)
	return cmd
}

// runSweep evaluates every scenario on its own single-worker session, at most
// workers at a time. Results keep scenario order.
func runSweep(ctx context.Context, scenarios []scenario, width, height, ticks int, delta float64, workers int) ([]scenarioResult, error) {
	results := make([]scenarioResult, len(scenarios))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, sc := range scenarios {
		g.Go(func() error {
			sess := morph.NewSession(morph.WithSeed(sc.seed), morph.WithWorkers(1))
			if err := sess.Initialize(width, height, sc.params); err != nil {
				return fmt.Errorf("%s seed %d: %w", sc.preset, sc.seed, err)
			}
			for t := 0; t < ticks; t++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := sess.Tick(delta); err != nil {
					return fmt.Errorf("%s seed %d tick %d: %w", sc.preset, sc.seed, t, err)
				}
			}
			stats, err := sess.Statistics()
			if err != nil {
				return err
			}
			results[i] = scenarioResult{scenario: sc, stats: stats, score: score(stats)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func score(s morph.Statistics) float64 {
	return float64(s.AlphaCrystals+s.BetaCrystals) + 4*float64(s.HumanSettlements)
}

// rankPresets groups results by preset and sorts by mean score, best first.
func rankPresets(results []scenarioResult) []presetRanking {
	type series struct{ score, alpha, beta, human, storms []float64 }
	byPreset := map[morph.Preset]*series{}
	var order []morph.Preset
	for _, r := range results {
		s, ok := byPreset[r.preset]
		if !ok {
			s = &series{}
			byPreset[r.preset] = s
			order = append(order, r.preset)
		}
		s.score = append(s.score, r.score)
		s.alpha = append(s.alpha, float64(r.stats.AlphaCrystals))
		s.beta = append(s.beta, float64(r.stats.BetaCrystals))
		s.human = append(s.human, float64(r.stats.HumanSettlements))
		s.storms = append(s.storms, float64(r.stats.ThunderstormCells))
	}

	rankings := make([]presetRanking, 0, len(order))
	for _, preset := range order {
		s := byPreset[preset]
		mean, std := stat.MeanStdDev(s.score, nil)
		if len(s.score) < 2 {
			std = 0
		}
		rankings = append(rankings, presetRanking{
			Preset:     string(preset),
			Runs:       len(s.score),
			MeanScore:  mean,
			StdDev:     std,
			MeanAlpha:  stat.Mean(s.alpha, nil),
			MeanBeta:   stat.Mean(s.beta, nil),
			MeanHuman:  stat.Mean(s.human, nil),
			MeanStorms: stat.Mean(s.storms, nil),
		})
	}
	sort.SliceStable(rankings, func(i, j int) bool { return rankings[i].MeanScore > rankings[j].MeanScore })
	return rankings
}

func printRankings(out io.Writer, rankings []presetRanking, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rankings)
	}
	fmt.Fprintf(out, "%2s  %-14s %10s %8s %8s %8s %8s %8s\n", "#", "preset", "score", "stddev", "alpha", "beta", "human", "storms")
	for i, r := range rankings {
		fmt.Fprintf(out, "%2d) %-14s %10.1f %8.1f %8.1f %8.1f %8.1f %8.1f\n",
			i+1, r.Preset, r.MeanScore, r.StdDev, r.MeanAlpha, r.MeanBeta, r.MeanHuman, r.MeanStorms)
	}
	return nil
}
