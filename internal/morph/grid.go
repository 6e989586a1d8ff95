package morph

import (
	"fmt"
	"math"

	"worldmorph/internal/core"
)

// Grid is the dense store of cells for one generation.
type Grid struct {
	g *core.Grid[Cell]
}

// MaxCells bounds the number of cells in one grid. A session keeps two.
const MaxCells = 1 << 24

// NewGrid allocates a grid of missing cells.
func NewGrid(w, h int) (*Grid, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, w, h)
	}
	if w > MaxCells/h {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d cells", ErrInvalidDimensions, w, h, MaxCells)
	}
	return &Grid{g: core.NewGrid[Cell](w, h)}, nil
}

// Size reports the grid dimensions.
func (g *Grid) Size() core.Size { return core.Size{W: g.g.W, H: g.g.H} }

// Get returns the cell at (x, y).
func (g *Grid) Get(x, y int) (Cell, error) {
	c, ok := g.g.At(x, y)
	if !ok {
		return Cell{}, g.outOfBounds(x, y)
	}
	return c, nil
}

// Set stores c at (x, y). Missing cells are normalized so they never carry
// crystal, stored energy, or weather state.
func (g *Grid) Set(x, y int, c Cell) error {
	if !c.Crystal.Valid() {
		return fmt.Errorf("%w: crystal type %d", ErrInvalidParameter, c.Crystal)
	}
	for _, v := range [...]float64{c.MantleEnergy, c.Temperature, c.StoredEnergy, c.Prosperity} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite value at (%d,%d)", ErrInvalidParameter, x, y)
		}
	}
	if c.MantleEnergy < 0 || c.StoredEnergy < 0 {
		return fmt.Errorf("%w: negative energy at (%d,%d)", ErrInvalidParameter, x, y)
	}
	if !g.g.Set(x, y, c.normalized()) {
		return g.outOfBounds(x, y)
	}
	return nil
}

// Clone returns an independent copy of the grid.
func (g *Grid) Clone() *Grid { return &Grid{g: g.g.Clone()} }

func (g *Grid) cells() []Cell { return g.g.Cells() }

func (g *Grid) outOfBounds(x, y int) error {
	return fmt.Errorf("%w: (%d,%d) outside %dx%d", ErrOutOfBounds, x, y, g.g.W, g.g.H)
}
