package morph

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ReferenceStep is the frame duration the per-frame rates in Params are
// expressed against. A tick of deltaTime advances every rate by
// deltaTime/ReferenceStep frames.
const ReferenceStep = 1.0 / 60.0

// Params holds tunable thresholds and rates for the world morphing rules.
type Params struct {
	ExpansionThreshold    float64 `json:"expansion_threshold" yaml:"expansion_threshold"`
	ShrinkThreshold       float64 `json:"shrink_threshold" yaml:"shrink_threshold"`
	ThunderstormThreshold float64 `json:"thunderstorm_threshold" yaml:"thunderstorm_threshold"`
	ThunderstormEnergy    float64 `json:"thunderstorm_energy" yaml:"thunderstorm_energy"`

	AlphaEnergyDemand float64 `json:"alpha_energy_demand" yaml:"alpha_energy_demand"`
	BetaEnergyDemand  float64 `json:"beta_energy_demand" yaml:"beta_energy_demand"`
	HumanEnergyDemand float64 `json:"human_energy_demand" yaml:"human_energy_demand"`

	MantleEnergyLevel    float64 `json:"mantle_energy_level" yaml:"mantle_energy_level"`
	EdgeGenerationEnergy float64 `json:"edge_generation_energy" yaml:"edge_generation_energy"`
	MantleTimeScale      float64 `json:"mantle_time_scale" yaml:"mantle_time_scale"`
	DiffusionRate        float64 `json:"diffusion_rate" yaml:"diffusion_rate"`

	ThermalConductivity float64 `json:"thermal_conductivity" yaml:"thermal_conductivity"`
	ThermalRelaxation   float64 `json:"thermal_relaxation" yaml:"thermal_relaxation"`
	AmbientTemperature  float64 `json:"ambient_temperature" yaml:"ambient_temperature"`
	HeatPerEnergy       float64 `json:"heat_per_energy" yaml:"heat_per_energy"`

	MaxCrystalEnergy  float64 `json:"max_crystal_energy" yaml:"max_crystal_energy"`
	AbsorptionRate    float64 `json:"absorption_rate" yaml:"absorption_rate"`
	SeedCrystalEnergy float64 `json:"seed_crystal_energy" yaml:"seed_crystal_energy"`
	NucleationChance  float64 `json:"nucleation_chance" yaml:"nucleation_chance"`
	StarvationTicks   int     `json:"starvation_ticks" yaml:"starvation_ticks"`

	SettlementAge         int     `json:"settlement_age" yaml:"settlement_age"`
	SettlementEnergy      float64 `json:"settlement_energy" yaml:"settlement_energy"`
	SettlementClusterSize int     `json:"settlement_cluster_size" yaml:"settlement_cluster_size"`
}

// Tick counters are stored as uint32; settlements starve after
// humanStarvationFactor times the crystal limit.
const (
	MaxStarvationTicks = math.MaxUint32 / humanStarvationFactor
	MaxSettlementAge   = math.MaxInt32
)

// DefaultParams returns the standard rule set.
func DefaultParams() Params {
	return Params{
		ExpansionThreshold:    120,
		ShrinkThreshold:       5,
		ThunderstormThreshold: 15,
		ThunderstormEnergy:    15,

		AlphaEnergyDemand: 1.5,
		BetaEnergyDemand:  2.0,
		HumanEnergyDemand: 3.0,

		MantleEnergyLevel:    100,
		EdgeGenerationEnergy: 4,
		MantleTimeScale:      0.01,
		DiffusionRate:        0.1,

		ThermalConductivity: 0.15,
		ThermalRelaxation:   0.05,
		AmbientTemperature:  -30,
		HeatPerEnergy:       0.45,

		MaxCrystalEnergy:  100,
		AbsorptionRate:    2.5,
		SeedCrystalEnergy: 10,
		NucleationChance:  0.002,
		StarvationTicks:   30,

		SettlementAge:         200,
		SettlementEnergy:      60,
		SettlementClusterSize: 5,
	}
}

// CustomParams returns the default rule set with the three headline
// thresholds replaced.
func CustomParams(expansion, thunderstorm, alphaDemand float64) (Params, error) {
	p := DefaultParams()
	p.ExpansionThreshold = expansion
	p.ThunderstormThreshold = thunderstorm
	p.AlphaEnergyDemand = alphaDemand
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Validate rejects negative or non-finite thresholds and rates.
func (p Params) Validate() error {
	for _, f := range p.floatFields() {
		v := *f.ptr
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidParameter, f.key)
		}
		if v < 0 && !f.signed {
			return fmt.Errorf("%w: %s must be >= 0, got %g", ErrInvalidParameter, f.key, v)
		}
	}
	if p.StarvationTicks < 1 || p.StarvationTicks > MaxStarvationTicks {
		return fmt.Errorf("%w: starvation_ticks must be in [1,%d], got %d", ErrInvalidParameter, MaxStarvationTicks, p.StarvationTicks)
	}
	if p.SettlementAge < 0 || p.SettlementAge > MaxSettlementAge {
		return fmt.Errorf("%w: settlement_age must be in [0,%d], got %d", ErrInvalidParameter, MaxSettlementAge, p.SettlementAge)
	}
	if p.SettlementClusterSize < 0 || p.SettlementClusterSize > 8 {
		return fmt.Errorf("%w: settlement_cluster_size must be in [0,8], got %d", ErrInvalidParameter, p.SettlementClusterSize)
	}
	if p.NucleationChance > 1 {
		return fmt.Errorf("%w: nucleation_chance must be <= 1, got %g", ErrInvalidParameter, p.NucleationChance)
	}
	return nil
}

// EnergyDemand returns the per-frame upkeep for the given occupant.
func (p Params) EnergyDemand(c CrystalType) float64 {
	switch c {
	case CrystalAlpha:
		return p.AlphaEnergyDemand
	case CrystalBeta:
		return p.BetaEnergyDemand
	case CrystalHuman:
		return p.HumanEnergyDemand
	default:
		return 0
	}
}

type floatField struct {
	key    string
	label  string
	ptr    *float64
	signed bool
}

func (p *Params) floatFields() []floatField {
	return []floatField{
		{key: "expansion_threshold", label: "Expansion threshold", ptr: &p.ExpansionThreshold},
		{key: "shrink_threshold", label: "Shrink threshold", ptr: &p.ShrinkThreshold},
		{key: "thunderstorm_threshold", label: "Thunderstorm threshold", ptr: &p.ThunderstormThreshold},
		{key: "thunderstorm_energy", label: "Thunderstorm energy", ptr: &p.ThunderstormEnergy},
		{key: "alpha_energy_demand", label: "Alpha energy demand", ptr: &p.AlphaEnergyDemand},
		{key: "beta_energy_demand", label: "Beta energy demand", ptr: &p.BetaEnergyDemand},
		{key: "human_energy_demand", label: "Human energy demand", ptr: &p.HumanEnergyDemand},
		{key: "mantle_energy_level", label: "Mantle energy level", ptr: &p.MantleEnergyLevel},
		{key: "edge_generation_energy", label: "Edge generation energy", ptr: &p.EdgeGenerationEnergy},
		{key: "mantle_time_scale", label: "Mantle time scale", ptr: &p.MantleTimeScale},
		{key: "diffusion_rate", label: "Diffusion rate", ptr: &p.DiffusionRate},
		{key: "thermal_conductivity", label: "Thermal conductivity", ptr: &p.ThermalConductivity},
		{key: "thermal_relaxation", label: "Thermal relaxation", ptr: &p.ThermalRelaxation},
		{key: "ambient_temperature", label: "Ambient temperature", ptr: &p.AmbientTemperature, signed: true},
		{key: "heat_per_energy", label: "Heat per energy", ptr: &p.HeatPerEnergy},
		{key: "max_crystal_energy", label: "Max crystal energy", ptr: &p.MaxCrystalEnergy},
		{key: "absorption_rate", label: "Absorption rate", ptr: &p.AbsorptionRate},
		{key: "seed_crystal_energy", label: "Seed crystal energy", ptr: &p.SeedCrystalEnergy},
		{key: "nucleation_chance", label: "Nucleation chance", ptr: &p.NucleationChance},
		{key: "settlement_energy", label: "Settlement energy", ptr: &p.SettlementEnergy},
	}
}

type intField struct {
	key   string
	label string
	ptr   *int
}

func (p *Params) intFields() []intField {
	return []intField{
		{key: "starvation_ticks", label: "Starvation ticks", ptr: &p.StarvationTicks},
		{key: "settlement_age", label: "Settlement age", ptr: &p.SettlementAge},
		{key: "settlement_cluster_size", label: "Settlement cluster size", ptr: &p.SettlementClusterSize},
	}
}

// SetFloatParameter updates the parameter identified by key. Integer-valued
// parameters are rounded. It reports false for unknown keys.
func (p *Params) SetFloatParameter(key string, value float64) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, f := range p.floatFields() {
		if f.key == key {
			*f.ptr = value
			return true
		}
	}
	for _, f := range p.intFields() {
		if f.key == key {
			*f.ptr = int(math.Round(value))
			return true
		}
	}
	return false
}

// ApplyOverrides applies key=value string overrides, returning an error for
// unknown keys or unparsable values. The result is validated.
func (p *Params) ApplyOverrides(overrides map[string]string) error {
	for k, v := range overrides {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalidParameter, k, v, err)
		}
		if !p.SetFloatParameter(k, parsed) {
			return fmt.Errorf("%w: unknown key %q", ErrInvalidParameter, k)
		}
	}
	return p.Validate()
}
