package morph

import (
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"worldmorph/internal/core"
)

// maxNeighborWeight caps the per-neighbour weight of the explicit 4-neighbour
// exchange so a cell's update stays a convex combination of itself and its
// neighbours, whatever the delta time.
const maxNeighborWeight = 0.25

// humanStarvationFactor stretches the starvation limit for settlements.
const humanStarvationFactor = 4

var vonNeumann = [4][2]int{{0, -1}, {-1, 0}, {1, 0}, {0, 1}}

var moore = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// stepper computes one generation from prev into next. Every rule reads
// neighbour state from prev only, so the order cells or row bands are
// visited in never shows up in the result.
type stepper struct {
	p     Params
	s     float64
	seed  int64
	cycle uint64
	w, h  int
	prev  []Cell
	next  []Cell
}

// advance runs one tick from prev into next using up to workers row bands.
// On error next holds a partial generation and must be discarded.
func advance(prev, next *Grid, p Params, deltaTime float64, seed int64, cycle uint64, workers int) error {
	size := prev.Size()
	st := &stepper{
		p:     p,
		s:     deltaTime / ReferenceStep,
		seed:  seed,
		cycle: cycle,
		w:     size.W,
		h:     size.H,
		prev:  prev.cells(),
		next:  next.cells(),
	}

	if workers < 1 {
		workers = 1
	}
	if workers > st.h {
		workers = st.h
	}
	band := (st.h + workers - 1) / workers

	var g errgroup.Group
	for y0 := 0; y0 < st.h; y0 += band {
		y1 := min(y0+band, st.h)
		g.Go(func() error { return st.rows(y0, y1) })
	}
	return g.Wait()
}

func (st *stepper) rows(y0, y1 int) error {
	for y := y0; y < y1; y++ {
		for x := 0; x < st.w; x++ {
			idx := y*st.w + x
			c := st.prev[idx]
			if !c.Exists {
				st.next[idx] = c
				continue
			}
			n := st.cell(x, y, c)
			if !finiteCell(n) {
				return fmt.Errorf("%w: cell (%d,%d) at cycle %d", ErrNumericalInstability, x, y, st.cycle)
			}
			st.next[idx] = n
		}
	}
	return nil
}

func (st *stepper) neighbor(x, y int, d [2]int) (Cell, bool) {
	nx, ny := x+d[0], y+d[1]
	if nx < 0 || ny < 0 || nx >= st.w || ny >= st.h {
		return Cell{}, false
	}
	n := st.prev[ny*st.w+nx]
	return n, n.Exists
}

func (st *stepper) cell(x, y int, c Cell) Cell {
	p := st.p
	n := c

	n.MantleEnergy = st.diffuseMantle(x, y, c)
	n.Temperature = st.diffuseHeat(x, y, c, n.MantleEnergy)
	n.Thunderstorm = n.Temperature > p.ThunderstormThreshold ||
		n.MantleEnergy-p.MantleEnergyLevel > p.ThunderstormThreshold

	if c.Crystal == CrystalEmpty {
		st.grow(x, y, c, &n)
		return n
	}

	st.consume(&n)
	if n.Crystal.IsCrystal() {
		st.settle(x, y, c, &n)
	}
	return n
}

// diffuseMantle exchanges energy with existing 4-neighbours, relaxes toward
// the mantle level, and feeds terrain edges.
func (st *stepper) diffuseMantle(x, y int, c Cell) float64 {
	p := st.p
	k := math.Min(p.DiffusionRate*st.s, maxNeighborWeight)

	e := c.MantleEnergy
	var flux float64
	edge := false
	for _, d := range vonNeumann {
		nb, ok := st.neighbor(x, y, d)
		if !ok {
			edge = true
			continue
		}
		flux += nb.MantleEnergy - c.MantleEnergy
	}
	e += k * flux
	e += (p.MantleEnergyLevel - e) * math.Min(p.MantleTimeScale*st.s, 1)
	if edge {
		e += p.EdgeGenerationEnergy * p.MantleTimeScale * st.s
	}
	return math.Max(e, 0)
}

// diffuseHeat is a damped diffusion of temperature pulled toward the
// equilibrium implied by the cell's mantle energy. Relaxation takes its share
// of the weight first; conduction gets what is left, so 4k + relax <= 1 and
// the result never leaves the range of the cell, its neighbours and the
// equilibrium.
func (st *stepper) diffuseHeat(x, y int, c Cell, mantle float64) float64 {
	p := st.p
	relax := math.Min(p.ThermalRelaxation*st.s, 1)
	k := math.Min(p.ThermalConductivity*st.s, math.Min(maxNeighborWeight, (1-relax)/4))

	var flux float64
	for _, d := range vonNeumann {
		nb, ok := st.neighbor(x, y, d)
		if !ok {
			continue
		}
		flux += nb.Temperature - c.Temperature
	}
	equilibrium := p.AmbientTemperature + p.HeatPerEnergy*mantle
	return c.Temperature + k*flux + relax*(equilibrium-c.Temperature)
}

// grow turns an Empty cell into Alpha or Beta when adjacent crystals push
// enough energy into it, or when a storm nucleates a fresh crystal.
func (st *stepper) grow(x, y int, c Cell, n *Cell) {
	p := st.p

	var support [CrystalHuman + 1]float64
	var count [CrystalHuman + 1]int
	for _, d := range moore {
		nb, ok := st.neighbor(x, y, d)
		if !ok || !nb.Crystal.IsCrystal() {
			continue
		}
		support[nb.Crystal] += nb.StoredEnergy
		count[nb.Crystal]++
	}

	chosen := CrystalEmpty
	for _, kind := range [...]CrystalType{CrystalAlpha, CrystalBeta} {
		if count[kind] == 0 {
			continue
		}
		pressure := c.MantleEnergy + support[kind]/4
		if pressure <= p.ExpansionThreshold {
			continue
		}
		// Strictly greater keeps Alpha on an exact tie.
		if chosen == CrystalEmpty || support[kind] > support[chosen] {
			chosen = kind
		}
	}

	if chosen == CrystalEmpty && n.Thunderstorm && p.NucleationChance > 0 &&
		n.MantleEnergy > p.ExpansionThreshold/2 {
		idx := uint64(y*st.w + x)
		if core.HashUnit(st.seed, st.cycle, idx) < p.NucleationChance*st.s {
			chosen = CrystalAlpha
			if core.Hash64(st.seed, st.cycle, idx)&1 == 1 {
				chosen = CrystalBeta
			}
		}
	}

	if chosen == CrystalEmpty {
		return
	}
	seed := math.Min(p.SeedCrystalEnergy, n.MantleEnergy)
	n.MantleEnergy -= seed
	n.clearOccupant()
	n.Crystal = chosen
	n.StoredEnergy = seed
}

// consume draws mantle energy into the occupant, charges it under storms,
// pays upkeep, and reverts occupants that starved for too long.
func (st *stepper) consume(n *Cell) {
	p := st.p

	intake := math.Min(n.MantleEnergy, p.AbsorptionRate*st.s)
	n.MantleEnergy -= intake
	stored := n.StoredEnergy + intake
	if n.Thunderstorm {
		stored += p.ThunderstormEnergy * st.s
	}
	stored -= p.EnergyDemand(n.Crystal) * st.s
	stored = math.Max(0, math.Min(stored, p.MaxCrystalEnergy))
	n.StoredEnergy = stored

	if stored < p.ShrinkThreshold {
		n.Starvation++
	} else {
		n.Starvation = 0
	}

	limit := uint64(p.StarvationTicks)
	if n.Crystal == CrystalHuman {
		limit *= humanStarvationFactor
	}
	if uint64(n.Starvation) >= limit {
		n.clearOccupant()
		return
	}

	if n.Age < math.MaxUint32 {
		n.Age++
	}
	if n.Crystal == CrystalHuman {
		prosperity := n.Prosperity + (stored-p.ShrinkThreshold)*0.01*st.s
		n.Prosperity = math.Max(0, math.Min(prosperity, maxProsperity))
	}
}

// settle promotes an aged, well-fed crystal inside an aged cluster to a
// Human settlement.
func (st *stepper) settle(x, y int, c Cell, n *Cell) {
	p := st.p
	if uint64(c.Age) < uint64(p.SettlementAge) || n.StoredEnergy < p.SettlementEnergy {
		return
	}
	minAge := uint64(p.SettlementAge / 2)
	cluster := 0
	for _, d := range moore {
		nb, ok := st.neighbor(x, y, d)
		if ok && nb.Crystal.Occupied() && uint64(nb.Age) >= minAge {
			cluster++
		}
	}
	if cluster < p.SettlementClusterSize {
		return
	}
	prosperity := math.Min(n.StoredEnergy-p.SettlementEnergy, maxProsperity)
	stored := n.StoredEnergy
	n.clearOccupant()
	n.Crystal = CrystalHuman
	n.StoredEnergy = stored
	n.Prosperity = prosperity
}

func finiteCell(c Cell) bool {
	for _, v := range [...]float64{c.MantleEnergy, c.Temperature, c.StoredEnergy, c.Prosperity} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
