package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"worldmorph/internal/config"
	"worldmorph/internal/core"
	"worldmorph/internal/logging"
	"worldmorph/internal/morph"
)

// addWorldFlags registers the flags shared by every command that builds a
// session. Unset flags leave the configuration untouched.
func addWorldFlags(cmd *cobra.Command) {
	cmd.Flags().Int("width", 0, "grid width")
	cmd.Flags().Int("height", 0, "grid height")
	cmd.Flags().String("preset", "", "parameter preset (Default, FastGrowth, SlowEvolution, HighEnergy, Stable)")
	cmd.Flags().Int64("seed", 0, "terrain seed")
	cmd.Flags().Int("workers", 0, "row bands processed in parallel per tick (0 = one per CPU)")
	cmd.Flags().StringArray("set", nil, "parameter override in key=value form (repeatable)")
}

// addRunFlags registers the flags controlling how far a session is advanced.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Int("ticks", 0, "ticks to simulate")
	cmd.Flags().Float64("delta", 0, "seconds per tick")
}

// world bundles what commands need after configuration is resolved.
type world struct {
	cfg     *config.Config
	params  morph.Params
	logger  *slog.Logger
	session *morph.Session
}

// loadConfig resolves defaults -> file -> environment -> flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
	if flags.Lookup("width") != nil {
		if flags.Changed("width") {
			cfg.World.Width, _ = flags.GetInt("width")
		}
		if flags.Changed("height") {
			cfg.World.Height, _ = flags.GetInt("height")
		}
		if flags.Changed("preset") {
			cfg.Preset, _ = flags.GetString("preset")
		}
		if flags.Changed("seed") {
			cfg.World.Seed, _ = flags.GetInt64("seed")
		}
		if flags.Changed("workers") {
			cfg.World.Workers, _ = flags.GetInt("workers")
		}
	}
	if flags.Lookup("ticks") != nil {
		if flags.Changed("ticks") {
			cfg.Run.Ticks, _ = flags.GetInt("ticks")
		}
		if flags.Changed("delta") {
			cfg.Run.Delta, _ = flags.GetFloat64("delta")
		}
	}
	if cfg.Preset != "" {
		preset, err := morph.ParsePreset(cfg.Preset)
		if err != nil {
			return nil, err
		}
		cfg.Preset = string(preset)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveParams applies --set overrides on top of the configured parameters.
func resolveParams(cmd *cobra.Command, cfg *config.Config) (morph.Params, error) {
	p, err := cfg.SimParams()
	if err != nil {
		return morph.Params{}, err
	}
	if cmd.Flags().Lookup("set") == nil {
		return p, nil
	}
	sets, _ := cmd.Flags().GetStringArray("set")
	overrides, err := parseOverrides(sets)
	if err != nil {
		return morph.Params{}, err
	}
	if err := p.ApplyOverrides(overrides); err != nil {
		return morph.Params{}, err
	}
	return p, nil
}

func parseOverrides(sets []string) (map[string]string, error) {
	out := make(map[string]string, len(sets))
	for _, kv := range sets {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("%w: override %q is not key=value", morph.ErrInvalidParameter, kv)
		}
		out[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return out, nil
}

// newWorld loads configuration and returns an initialized session.
func newWorld(cmd *cobra.Command) (*world, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	params, err := resolveParams(cmd, cfg)
	if err != nil {
		return nil, err
	}
	logger := logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
	sess := morph.NewSession(
		morph.WithSeed(cfg.World.Seed),
		morph.WithWorkers(cfg.World.Workers),
		morph.WithLogger(logger),
	)
	if err := sess.Initialize(cfg.World.Width, cfg.World.Height, params); err != nil {
		return nil, err
	}
	return &world{cfg: cfg, params: params, logger: logger, session: sess}, nil
}

// advance ticks the session cfg.Run.Ticks times. onSample is called every
// cfg.Run.Every ticks and after the last one. A positive tps paces the loop
// in real time.
func (w *world) advance(ctx context.Context, tps int, onSample func(morph.Status) error) error {
	var pace *core.FixedStep
	if tps > 0 {
		pace = core.NewFixedStep(tps)
	}
	every := w.cfg.Run.Every
	for i := 1; i <= w.cfg.Run.Ticks; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if pace != nil {
			pace.Wait()
		}
		if err := w.session.Tick(w.cfg.Run.Delta); err != nil {
			return fmt.Errorf("tick %d: %w", i, err)
		}
		last := i == w.cfg.Run.Ticks
		if onSample != nil && (last || (every > 0 && i%every == 0)) {
			if err := onSample(w.session.Status()); err != nil {
				return err
			}
		}
	}
	return nil
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

// openOutput returns the command's stdout for "" and "-", otherwise a new file.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
