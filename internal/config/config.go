// Package config provides configuration loading for the simulator.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"worldmorph/internal/morph"
)

// Config contains all simulator settings.
type Config struct {
	// World sizes and seeds the grid.
	World WorldConfig `json:"world" yaml:"world"`

	// Preset names the base parameter set. Params overrides are applied on top.
	Preset string `json:"preset" yaml:"preset"`

	// Params maps parameter keys (for example "expansion_threshold") to values.
	Params map[string]float64 `json:"params,omitempty" yaml:"params,omitempty"`

	// Run controls how drivers advance the session.
	Run RunConfig `json:"run" yaml:"run"`

	// Logging contains settings for operational logging and tick traces.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// History configures the statistics recorder.
	History HistoryConfig `json:"history" yaml:"history"`
}

// WorldConfig describes the grid a session is initialized with.
type WorldConfig struct {
	Width  int   `json:"width" yaml:"width"`
	Height int   `json:"height" yaml:"height"`
	Seed   int64 `json:"seed" yaml:"seed"`

	// Workers bounds the row bands processed in parallel per tick.
	// Zero means one per CPU.
	Workers int `json:"workers,omitempty" yaml:"workers,omitempty"`
}

// RunConfig drives a batch or interactive run.
type RunConfig struct {
	Ticks int     `json:"ticks" yaml:"ticks"`
	Delta float64 `json:"delta" yaml:"delta"`

	// TPS paces the interactive viewer.
	TPS int `json:"tps" yaml:"tps"`

	// Every is the sampling interval, in ticks, for logs and history.
	Every int `json:"every" yaml:"every"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	Level string `json:"level" yaml:"level"`

	// Trace, when set, receives one JSONL record per sampled tick.
	Trace string `json:"trace,omitempty" yaml:"trace,omitempty"`
}

// HistoryConfig points at the SQLite statistics database.
type HistoryConfig struct {
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		World: WorldConfig{
			Width:  128,
			Height: 128,
			Seed:   morph.DefaultSeed,
		},
		Preset: string(morph.PresetDefault),
		Run: RunConfig{
			Ticks: 600,
			Delta: morph.ReferenceStep,
			TPS:   60,
			Every: 60,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load returns the defaults, overlaid with the YAML file at path when path
// is non-empty, then with environment variables.
// Order: defaults -> file -> environment
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("%w: world %dx%d", morph.ErrInvalidDimensions, c.World.Width, c.World.Height)
	}
	if c.World.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative, got %d", morph.ErrInvalidParameter, c.World.Workers)
	}
	if c.Run.Ticks < 0 {
		return fmt.Errorf("%w: ticks must be non-negative, got %d", morph.ErrInvalidParameter, c.Run.Ticks)
	}
	if !(c.Run.Delta >= 0) {
		return fmt.Errorf("%w: delta must be non-negative, got %v", morph.ErrInvalidParameter, c.Run.Delta)
	}
	if c.Run.Every < 0 {
		return fmt.Errorf("%w: every must be non-negative, got %d", morph.ErrInvalidParameter, c.Run.Every)
	}
	_, err := c.SimParams()
	return err
}

// SimParams resolves the preset and applies the parameter overrides in key
// order. The result is validated.
func (c *Config) SimParams() (morph.Params, error) {
	name := c.Preset
	if name == "" {
		name = string(morph.PresetDefault)
	}
	p, err := morph.PresetParams(name)
	if err != nil {
		return morph.Params{}, err
	}

	keys := make([]string, 0, len(c.Params))
	for k := range c.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !p.SetFloatParameter(k, c.Params[k]) {
			return morph.Params{}, fmt.Errorf("%w: %s=%v", morph.ErrInvalidParameter, k, c.Params[k])
		}
	}
	if err := p.Validate(); err != nil {
		return morph.Params{}, err
	}
	return p, nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("WORLDMORPH_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("WORLDMORPH_PRESET"); v != "" {
		cfg.Preset = v
	}

	if v := os.Getenv("WORLDMORPH_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parsing WORLDMORPH_SEED: %w", err)
		}
		cfg.World.Seed = seed
	}

	if v := os.Getenv("WORLDMORPH_HISTORY"); v != "" {
		cfg.History.Path = v
	}
	return nil
}
