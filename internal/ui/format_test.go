package ui

import (
	"strings"
	"testing"

	"worldmorph/internal/core"
	"worldmorph/internal/morph"
)

func TestFormatFloatPrecision(t *testing.T) {
	tests := []struct {
		step float64
		want string
	}{
		{5, "1.2"},
		{0.05, "1.23"},
		{0.005, "1.235"},
		{0.0005, "1.2346"},
	}
	for _, tt := range tests {
		got := formatFloat(core.ParameterControl{Step: tt.step}, 1.23456)
		if got != tt.want {
			t.Errorf("step %v: got %q, want %q", tt.step, got, tt.want)
		}
	}
}

func TestStepControlClamps(t *testing.T) {
	ctrl := core.ParameterControl{Step: 0.25, Min: 0, Max: 1, HasMin: true, HasMax: true}
	if v, ok := stepControl(ctrl, 0.5, 1); !ok || v != 0.75 {
		t.Errorf("step up = %v, %v", v, ok)
	}
	if v, ok := stepControl(ctrl, 0.9, 1); !ok || v != 1 {
		t.Errorf("step past max = %v, %v", v, ok)
	}
	if _, ok := stepControl(ctrl, 0, -1); ok {
		t.Error("stepping below min should be refused")
	}
}

func TestStatLines(t *testing.T) {
	lines := StatLines(
		morph.Status{Initialized: true, CycleCount: 42, TimeStep: 0.7},
		morph.Statistics{AlphaCrystals: 3, BetaCrystals: 5, HumanSettlements: 1},
	)
	joined := strings.Join(lines, "\n")
	for _, want := range []string{"cycle 42", "alpha 3  beta 5", "human 1", "time 0.70s"} {
		if !strings.Contains(joined, want) {
			t.Errorf("stat lines missing %q:\n%s", want, joined)
		}
	}
}
