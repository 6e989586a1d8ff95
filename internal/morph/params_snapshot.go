package morph

import (
	"strconv"

	"worldmorph/internal/core"
)

var parameterGroups = []struct {
	name string
	keys []string
}{
	{name: "Expansion", keys: []string{"expansion_threshold", "shrink_threshold", "seed_crystal_energy", "nucleation_chance", "starvation_ticks"}},
	{name: "Weather", keys: []string{"thunderstorm_threshold", "thunderstorm_energy"}},
	{name: "Demand", keys: []string{"alpha_energy_demand", "beta_energy_demand", "human_energy_demand", "absorption_rate", "max_crystal_energy"}},
	{name: "Mantle", keys: []string{"mantle_energy_level", "edge_generation_energy", "mantle_time_scale", "diffusion_rate"}},
	{name: "Thermal", keys: []string{"thermal_conductivity", "thermal_relaxation", "ambient_temperature", "heat_per_energy"}},
	{name: "Settlement", keys: []string{"settlement_age", "settlement_energy", "settlement_cluster_size"}},
}

// Parameters returns the grouped snapshot of every tunable.
func (p Params) Parameters() core.ParameterSnapshot {
	byKey := make(map[string]core.Parameter)
	for _, f := range p.floatFields() {
		byKey[f.key] = floatParam(f.key, f.label, *f.ptr)
	}
	for _, f := range p.intFields() {
		byKey[f.key] = intParam(f.key, f.label, *f.ptr)
	}

	groups := make([]core.ParameterGroup, 0, len(parameterGroups))
	for _, g := range parameterGroups {
		group := core.ParameterGroup{Name: g.name}
		for _, k := range g.keys {
			group.Params = append(group.Params, byKey[k])
		}
		groups = append(groups, group)
	}
	return core.ParameterSnapshot{Groups: groups}
}

// ParameterControls lists the HUD-adjustable thresholds.
func (p Params) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{Key: "expansion_threshold", Label: "Expansion", Type: core.ParamTypeFloat, Step: 5, Min: 0, HasMin: true},
		{Key: "thunderstorm_threshold", Label: "Storm", Type: core.ParamTypeFloat, Step: 1, Min: 0, HasMin: true},
		{Key: "alpha_energy_demand", Label: "Alpha demand", Type: core.ParamTypeFloat, Step: 0.1, Min: 0, HasMin: true},
		{Key: "beta_energy_demand", Label: "Beta demand", Type: core.ParamTypeFloat, Step: 0.1, Min: 0, HasMin: true},
		{Key: "diffusion_rate", Label: "Diffusion", Type: core.ParamTypeFloat, Step: 0.01, Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "nucleation_chance", Label: "Nucleation", Type: core.ParamTypeFloat, Step: 0.001, Min: 0, Max: 1, HasMin: true, HasMax: true},
	}
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.Itoa(value),
	}
}

func floatParam(key, label string, value float64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeFloat,
		Value: strconv.FormatFloat(value, 'f', -1, 64),
	}
}
