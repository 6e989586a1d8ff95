package morph

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Normalization ranges used by HeatmapData.
const (
	maxHeatmapEnergy = 100.0
	minHeatmapTemp   = -50.0
	maxHeatmapTemp   = 50.0
	maxProsperity    = 100.0
)

// Statistics aggregates the grid over existing cells.
type Statistics struct {
	TotalCells          int     `json:"total_cells"`
	TerrainCells        int     `json:"terrain_cells"`
	AlphaCrystals       int     `json:"alpha_crystals"`
	BetaCrystals        int     `json:"beta_crystals"`
	HumanSettlements    int     `json:"human_settlements"`
	ThunderstormCells   int     `json:"thunderstorm_cells"`
	AverageMantleEnergy float64 `json:"average_mantle_energy"`
	AverageTemperature  float64 `json:"average_temperature"`
	MaxMantleEnergy     float64 `json:"max_mantle_energy"`
	MaxTemperature      float64 `json:"max_temperature"`
	TotalStoredEnergy   float64 `json:"total_stored_energy"`
	AverageProsperity   float64 `json:"average_prosperity"`
}

// HeatmapKind selects the field HeatmapData extracts.
type HeatmapKind int

const (
	HeatmapMantleEnergy HeatmapKind = iota
	HeatmapTemperature
	HeatmapCrystalDensity
	HeatmapHumanDensity
	HeatmapStoredEnergy
	HeatmapThunderstorm
)

var heatmapNames = [...]string{"MantleEnergy", "Temperature", "CrystalDensity", "HumanDensity", "StoredEnergy", "Thunderstorm"}

func (k HeatmapKind) String() string {
	if k >= 0 && int(k) < len(heatmapNames) {
		return heatmapNames[k]
	}
	return fmt.Sprintf("HeatmapKind(%d)", int(k))
}

// HeatmapKinds lists every supported heatmap field.
func HeatmapKinds() []HeatmapKind {
	kinds := make([]HeatmapKind, len(heatmapNames))
	for i := range kinds {
		kinds[i] = HeatmapKind(i)
	}
	return kinds
}

// ParseHeatmapKind resolves a case-insensitive heatmap name; underscores and
// dashes are ignored.
func ParseHeatmapKind(name string) (HeatmapKind, error) {
	norm := strings.NewReplacer("_", "", "-", "").Replace(name)
	for i, n := range heatmapNames {
		if strings.EqualFold(n, norm) {
			return HeatmapKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: heatmap kind %q", ErrInvalidParameter, name)
}

// CellAt returns a copy of the cell at (x, y).
func (s *Session) CellAt(x, y int) (Cell, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cur == nil {
		return Cell{}, ErrNotInitialized
	}
	return s.cur.Get(x, y)
}

// Region copies the w×h block whose top-left corner is (x, y) in row-major
// order. Blocks reaching outside the grid are rejected rather than clipped.
func (s *Session) Region(x, y, w, h int) ([]Cell, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: region %dx%d", ErrInvalidDimensions, w, h)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cur == nil {
		return nil, ErrNotInitialized
	}
	size := s.cur.Size()
	if x < 0 || y < 0 || x >= size.W || y >= size.H || w > size.W-x || h > size.H-y {
		return nil, fmt.Errorf("%w: region (%d,%d)+%dx%d outside %dx%d", ErrOutOfBounds, x, y, w, h, size.W, size.H)
	}
	cells := s.cur.cells()
	out := make([]Cell, 0, w*h)
	for row := y; row < y+h; row++ {
		start := row*size.W + x
		out = append(out, cells[start:start+w]...)
	}
	return out, nil
}

// Snapshot copies the whole grid in row-major order.
func (s *Session) Snapshot() ([]Cell, error) {
	size := s.Size()
	if size.W == 0 {
		return nil, ErrNotInitialized
	}
	return s.Region(0, 0, size.W, size.H)
}

// Statistics aggregates counts and averages over existing cells. Averages
// over zero existing cells are 0.
func (s *Session) Statistics() (Statistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cur == nil {
		return Statistics{}, ErrNotInitialized
	}
	return computeStatistics(s.cur.cells()), nil
}

func computeStatistics(cells []Cell) Statistics {
	stats := Statistics{TotalCells: len(cells)}
	mantle := make([]float64, 0, len(cells))
	temps := make([]float64, 0, len(cells))
	var prosperity []float64

	for _, c := range cells {
		if !c.Exists {
			continue
		}
		stats.TerrainCells++
		mantle = append(mantle, c.MantleEnergy)
		temps = append(temps, c.Temperature)
		stats.TotalStoredEnergy += c.StoredEnergy
		switch c.Crystal {
		case CrystalAlpha:
			stats.AlphaCrystals++
		case CrystalBeta:
			stats.BetaCrystals++
		case CrystalHuman:
			stats.HumanSettlements++
			prosperity = append(prosperity, c.Prosperity)
		}
		if c.Thunderstorm {
			stats.ThunderstormCells++
		}
	}

	if n := float64(len(mantle)); n > 0 {
		stats.AverageMantleEnergy = floats.Sum(mantle) / n
		stats.AverageTemperature = floats.Sum(temps) / n
		stats.MaxMantleEnergy = floats.Max(mantle)
		stats.MaxTemperature = floats.Max(temps)
	}
	if len(prosperity) > 0 {
		stats.AverageProsperity = floats.Sum(prosperity) / float64(len(prosperity))
	}
	return stats
}

// HeatmapData returns one normalized value in [0, 1] per cell for the
// requested field, row-major. Missing cells read as 0.
func (s *Session) HeatmapData(kind HeatmapKind) ([]float64, error) {
	if kind < 0 || int(kind) >= len(heatmapNames) {
		return nil, fmt.Errorf("%w: heatmap kind %d", ErrInvalidParameter, int(kind))
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cur == nil {
		return nil, ErrNotInitialized
	}
	cells := s.cur.cells()
	maxStored := s.params.MaxCrystalEnergy

	out := make([]float64, len(cells))
	for i, c := range cells {
		if !c.Exists {
			continue
		}
		var v float64
		switch kind {
		case HeatmapMantleEnergy:
			v = c.MantleEnergy / maxHeatmapEnergy
		case HeatmapTemperature:
			v = (c.Temperature - minHeatmapTemp) / (maxHeatmapTemp - minHeatmapTemp)
		case HeatmapCrystalDensity:
			if c.Crystal.Occupied() {
				v = 1
			}
		case HeatmapHumanDensity:
			v = c.Prosperity / maxProsperity
		case HeatmapStoredEnergy:
			if maxStored > 0 {
				v = c.StoredEnergy / maxStored
			}
		case HeatmapThunderstorm:
			if c.Thunderstorm {
				v = 1
			}
		}
		out[i] = clamp01(v)
	}
	return out, nil
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(v, 1))
}
