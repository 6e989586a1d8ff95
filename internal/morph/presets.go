package morph

import (
	"fmt"
	"strings"
)

// Preset names a fixed parameter set.
type Preset string

const (
	PresetDefault       Preset = "Default"
	PresetFastGrowth    Preset = "FastGrowth"
	PresetSlowEvolution Preset = "SlowEvolution"
	PresetHighEnergy    Preset = "HighEnergy"
	PresetStable        Preset = "Stable"
)

var presetOrder = []Preset{
	PresetDefault,
	PresetFastGrowth,
	PresetSlowEvolution,
	PresetHighEnergy,
	PresetStable,
}

// Presets lists the known presets in their canonical order.
func Presets() []Preset {
	out := make([]Preset, len(presetOrder))
	copy(out, presetOrder)
	return out
}

// ParsePreset resolves a preset name case-insensitively. Underscores and
// dashes are ignored so "fast_growth" and "FAST-GROWTH" both match.
func ParsePreset(name string) (Preset, error) {
	norm := strings.NewReplacer("_", "", "-", "", " ", "").Replace(name)
	for _, p := range presetOrder {
		if strings.EqualFold(string(p), norm) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}

// PresetParams returns the parameter set for the named preset.
func PresetParams(name string) (Params, error) {
	preset, err := ParsePreset(name)
	if err != nil {
		return Params{}, err
	}
	return preset.Params(), nil
}

// Params returns the preset's parameter values. Unknown presets yield the
// defaults.
func (p Preset) Params() Params {
	params := DefaultParams()
	switch p {
	case PresetFastGrowth:
		params.ExpansionThreshold = 80
		params.AlphaEnergyDemand = 1.0
		params.BetaEnergyDemand = 1.5
		params.MantleEnergyLevel = 120
		params.EdgeGenerationEnergy = 6
	case PresetSlowEvolution:
		params.ExpansionThreshold = 180
		params.AlphaEnergyDemand = 2.5
		params.BetaEnergyDemand = 3.0
		params.MantleEnergyLevel = 80
		params.EdgeGenerationEnergy = 2
		params.MantleTimeScale = 0.001
	case PresetHighEnergy:
		params.MantleEnergyLevel = 150
		params.ThunderstormThreshold = 10
		params.ThunderstormEnergy = 20
		params.EdgeGenerationEnergy = 8
		params.MaxCrystalEnergy = 120
	case PresetStable:
		params.ExpansionThreshold = 150
		params.ShrinkThreshold = 3
		params.AlphaEnergyDemand = 2.0
		params.BetaEnergyDemand = 2.5
		params.ThunderstormThreshold = 25
		params.DiffusionRate = 0.08
	}
	return params
}
