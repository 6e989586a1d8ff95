package morph

import (
	"math"

	"worldmorph/internal/core"
)

const (
	islandRadius    = 0.42
	seedCrystalArea = 400
)

// seedTerrain lays out an island of existing cells around the grid centre,
// charges it with mantle energy, and drops a handful of Alpha and Beta seed
// crystals. The layout depends only on the grid size, params, and seed.
func seedTerrain(g *Grid, p Params, seed int64) {
	size := g.Size()
	w, h := size.W, size.H
	cells := g.cells()
	rng := core.NewRNG(seed)

	cx := float64(w-1) / 2
	cy := float64(h-1) / 2
	rx := math.Max(float64(w)*islandRadius, 0.5)
	ry := math.Max(float64(h)*islandRadius, 0.5)

	phase3 := rng.Float64() * 2 * math.Pi
	phase5 := rng.Float64() * 2 * math.Pi
	centre := g.g.Index(int(math.Round(cx)), int(math.Round(cy)))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			dx := (float64(x) - cx) / rx
			dy := (float64(y) - cy) / ry
			dist := math.Hypot(dx, dy)
			angle := math.Atan2(dy, dx)
			shore := 1 + 0.18*math.Sin(3*angle+phase3) + 0.1*math.Sin(5*angle+phase5)

			jitter := rng.Float64() - 0.5
			if dist > shore && idx != centre {
				cells[idx] = Cell{}
				continue
			}
			falloff := 1 - math.Min(dist/shore, 1)
			energy := p.MantleEnergyLevel * (0.7 + 0.3*falloff + 0.2*jitter)
			if energy < 0 {
				energy = 0
			}
			cells[idx] = Cell{
				Exists:       true,
				MantleEnergy: energy,
				Temperature:  p.AmbientTemperature + p.HeatPerEnergy*energy,
			}
		}
	}

	seedCrystals(cells, p, rng)
}

func seedCrystals(cells []Cell, p Params, rng *core.RNG) {
	var terrain []int
	for i, c := range cells {
		if c.Exists {
			terrain = append(terrain, i)
		}
	}
	if len(terrain) == 0 {
		return
	}
	want := len(cells) / seedCrystalArea
	if want < 2 {
		want = 2
	}
	if want > len(terrain) {
		want = len(terrain)
	}

	kind := CrystalAlpha
	placed := 0
	for attempts := 0; placed < want && attempts < want*20; attempts++ {
		idx := terrain[rng.IntN(len(terrain))]
		if cells[idx].Crystal.Occupied() {
			continue
		}
		cells[idx].Crystal = kind
		cells[idx].StoredEnergy = p.MaxCrystalEnergy / 2
		placed++
		if kind == CrystalAlpha {
			kind = CrystalBeta
		} else {
			kind = CrystalAlpha
		}
	}
}
