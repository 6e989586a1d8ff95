package ui

import (
	"worldmorph/internal/core"
	"worldmorph/internal/morph"
)

// World is the session surface the HUD and overlay read from.
type World interface {
	Size() core.Size
	Status() morph.Status
	Params() morph.Params
	Statistics() (morph.Statistics, error)
	HeatmapData(kind morph.HeatmapKind) ([]float64, error)
	core.FloatParameterSetter
}

// StatLines formats the live counters shown under the HUD controls.
func StatLines(st morph.Status, stats morph.Statistics) []string {
	return []string{
		"cycle " + itoa(int(st.CycleCount)),
		"time " + ftoa(st.TimeStep, 2) + "s",
		"alpha " + itoa(stats.AlphaCrystals) + "  beta " + itoa(stats.BetaCrystals),
		"human " + itoa(stats.HumanSettlements),
		"storms " + itoa(stats.ThunderstormCells),
		"mantle " + ftoa(stats.AverageMantleEnergy, 1),
		"temp " + ftoa(stats.AverageTemperature, 1),
	}
}
