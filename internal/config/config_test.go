package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worldmorph/internal/morph"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "worldmorph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 128, cfg.World.Width)
	assert.Equal(t, 128, cfg.World.Height)
	assert.Equal(t, int64(morph.DefaultSeed), cfg.World.Seed)
	assert.Equal(t, "Default", cfg.Preset)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.InDelta(t, morph.ReferenceStep, cfg.Run.Delta, 1e-12)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
world:
  width: 64
  height: 32
  seed: 99
preset: fast_growth
params:
  expansion_threshold: 70
  starvation_ticks: 9
run:
  ticks: 50
  every: 5
logging:
  level: debug
history:
  path: runs.db
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.World.Width)
	assert.Equal(t, 32, cfg.World.Height)
	assert.Equal(t, int64(99), cfg.World.Seed)
	assert.Equal(t, 50, cfg.Run.Ticks)
	assert.Equal(t, 60, cfg.Run.TPS, "unset keys keep their defaults")
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "runs.db", cfg.History.Path)

	p, err := cfg.SimParams()
	require.NoError(t, err)
	assert.Equal(t, 70.0, p.ExpansionThreshold)
	assert.Equal(t, 9, p.StarvationTicks)
	assert.Equal(t, morph.PresetFastGrowth.Params().BetaEnergyDemand, p.BetaEnergyDemand)
}

func TestLoadFromFile_Errors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := writeConfig(t, "world: [not, a, map")
	_, err = LoadFromFile(path)
	assert.Error(t, err)
}

func TestSimParamsRejectsBadOverrides(t *testing.T) {
	tests := []struct {
		name   string
		preset string
		params map[string]float64
		want   error
	}{
		{"unknown preset", "Turbo", nil, morph.ErrUnknownPreset},
		{"unknown key", "Default", map[string]float64{"gravity": 1}, morph.ErrInvalidParameter},
		{"negative value", "Default", map[string]float64{"diffusion_rate": -0.5}, morph.ErrInvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Preset = tt.preset
			cfg.Params = tt.params
			_, err := cfg.SimParams()
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.World.Width = 0
	assert.ErrorIs(t, cfg.Validate(), morph.ErrInvalidDimensions)

	cfg = Default()
	cfg.Run.Ticks = -1
	assert.ErrorIs(t, cfg.Validate(), morph.ErrInvalidParameter)

	cfg = Default()
	cfg.World.Workers = -2
	assert.ErrorIs(t, cfg.Validate(), morph.ErrInvalidParameter)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
preset: Stable
world:
  seed: 5
logging:
  level: info
`)
	t.Setenv("WORLDMORPH_PRESET", "HighEnergy")
	t.Setenv("WORLDMORPH_SEED", "77")
	t.Setenv("WORLDMORPH_LOG_LEVEL", "trace")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "HighEnergy", cfg.Preset)
	assert.Equal(t, int64(77), cfg.World.Seed)
	assert.Equal(t, "trace", cfg.Logging.Level)
}

func TestLoad_BadSeedEnv(t *testing.T) {
	t.Setenv("WORLDMORPH_SEED", "not-a-number")
	_, err := Load("")
	assert.Error(t, err)
}
