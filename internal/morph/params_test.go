package morph

import (
	"errors"
	"testing"
)

func TestPresetsDifferFromEachOther(t *testing.T) {
	fast, err := PresetParams("FastGrowth")
	if err != nil {
		t.Fatal(err)
	}
	stable, err := PresetParams("Stable")
	if err != nil {
		t.Fatal(err)
	}
	def := DefaultParams()
	if fast.ExpansionThreshold == stable.ExpansionThreshold {
		t.Fatal("FastGrowth and Stable should use different expansion thresholds")
	}
	if fast.ExpansionThreshold == def.ExpansionThreshold || stable.ExpansionThreshold == def.ExpansionThreshold {
		t.Fatal("presets should differ from the default expansion threshold")
	}
}

func TestPresetLookup(t *testing.T) {
	tests := []struct {
		name string
		want Preset
		err  error
	}{
		{name: "Default", want: PresetDefault},
		{name: "slowevolution", want: PresetSlowEvolution},
		{name: "high_energy", want: PresetHighEnergy},
		{name: "FAST-GROWTH", want: PresetFastGrowth},
		{name: "Chaos", err: ErrUnknownPreset},
		{name: "", err: ErrUnknownPreset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePreset(tt.name)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("err = %v, want %v", err, tt.err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("preset = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEveryPresetValidates(t *testing.T) {
	for _, p := range Presets() {
		if err := p.Params().Validate(); err != nil {
			t.Fatalf("%s: %v", p, err)
		}
	}
	if PresetDefault.Params() != DefaultParams() {
		t.Fatal("Default preset must equal DefaultParams")
	}
	if got := PresetSlowEvolution.Params().MantleTimeScale; got != 0.001 {
		t.Fatalf("SlowEvolution mantle time scale = %f", got)
	}
}

func TestCustomParams(t *testing.T) {
	p, err := CustomParams(90, 12, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	if p.ExpansionThreshold != 90 || p.ThunderstormThreshold != 12 || p.AlphaEnergyDemand != 1.0 {
		t.Fatalf("custom params not applied: %+v", p)
	}
	if p.BetaEnergyDemand != DefaultParams().BetaEnergyDemand {
		t.Fatal("unrelated params should keep their defaults")
	}

	for _, args := range [][3]float64{{-1, 10, 1}, {100, -1, 1}, {100, 10, -0.5}} {
		if _, err := CustomParams(args[0], args[1], args[2]); !errors.Is(err, ErrInvalidParameter) {
			t.Fatalf("CustomParams%v err = %v, want ErrInvalidParameter", args, err)
		}
	}
}

func TestAmbientTemperatureMayBeNegative(t *testing.T) {
	p := DefaultParams()
	p.AmbientTemperature = -80
	if err := p.Validate(); err != nil {
		t.Fatalf("negative ambient temperature should validate: %v", err)
	}
}

func TestApplyOverrides(t *testing.T) {
	p := DefaultParams()
	err := p.ApplyOverrides(map[string]string{
		"expansion_threshold": "95",
		"starvation_ticks":    "12.4",
	})
	if err != nil {
		t.Fatal(err)
	}
	if p.ExpansionThreshold != 95 || p.StarvationTicks != 12 {
		t.Fatalf("overrides not applied: %+v", p)
	}

	if err := p.ApplyOverrides(map[string]string{"bogus": "1"}); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("unknown key err = %v", err)
	}
	if err := p.ApplyOverrides(map[string]string{"diffusion_rate": "fast"}); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("unparsable value err = %v", err)
	}
}

func TestParametersSnapshotCoversEveryKey(t *testing.T) {
	p := DefaultParams()
	snap := p.Parameters()
	seen := 0
	for _, g := range snap.Groups {
		for _, param := range g.Params {
			if param.Key == "" {
				t.Fatalf("group %s has an unnamed parameter", g.Name)
			}
			seen++
		}
	}
	if want := len(p.floatFields()) + len(p.intFields()); seen != want {
		t.Fatalf("snapshot lists %d params, want %d", seen, want)
	}
	got, ok := snap.Lookup("expansion_threshold")
	if !ok || got.Value != "120" {
		t.Fatalf("expansion_threshold = %+v", got)
	}
	for _, ctrl := range p.ParameterControls() {
		if _, ok := snap.Lookup(ctrl.Key); !ok {
			t.Fatalf("control %s has no snapshot entry", ctrl.Key)
		}
	}
}

func TestValidateCapsTickCounters(t *testing.T) {
	p := DefaultParams()
	p.StarvationTicks = MaxStarvationTicks
	p.SettlementAge = MaxSettlementAge
	if err := p.Validate(); err != nil {
		t.Fatalf("limits themselves should validate: %v", err)
	}
	p.StarvationTicks = MaxStarvationTicks + 1
	if err := p.Validate(); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("starvation_ticks above cap err = %v", err)
	}
}
