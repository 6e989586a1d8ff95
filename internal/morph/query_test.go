package morph

import (
	"errors"
	"math"
	"testing"
)

func TestRegionMatchesPointQueries(t *testing.T) {
	s := NewSession()
	if err := s.Initialize(80, 80, DefaultParams()); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if err := s.Tick(0.016); err != nil {
			t.Fatal(err)
		}
	}
	region, err := s.Region(20, 20, 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(region) != 100 {
		t.Fatalf("region has %d cells, want 100", len(region))
	}
	i := 0
	for y := 20; y < 30; y++ {
		for x := 20; x < 30; x++ {
			c, err := s.CellAt(x, y)
			if err != nil {
				t.Fatal(err)
			}
			if region[i] != c {
				t.Fatalf("region[%d] != CellAt(%d,%d)", i, x, y)
			}
			i++
		}
	}
}

func TestOutOfBoundsQueries(t *testing.T) {
	s := NewSession()
	if err := s.Initialize(10, 6, DefaultParams()); err != nil {
		t.Fatal(err)
	}
	points := [][2]int{{-1, 0}, {0, -1}, {10, 0}, {0, 6}, {10, 6}, {-5, 20}}
	for _, pt := range points {
		if _, err := s.CellAt(pt[0], pt[1]); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("CellAt%v err = %v", pt, err)
		}
		if err := s.SetCellAt(pt[0], pt[1], Cell{}); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("SetCellAt%v err = %v", pt, err)
		}
	}

	regions := [][4]int{
		{-1, 0, 2, 2}, {9, 0, 2, 1}, {0, 5, 1, 2}, {0, 0, 11, 6},
		{1, 0, math.MaxInt, 1}, {0, 1, 1, math.MaxInt}, {10, 0, 1, 1}, {math.MaxInt, 0, 1, 1},
	}
	for _, r := range regions {
		if _, err := s.Region(r[0], r[1], r[2], r[3]); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("Region%v err = %v", r, err)
		}
	}
	if _, err := s.Region(0, 0, 0, 3); !errors.Is(err, ErrInvalidDimensions) {
		t.Fatalf("empty region err = %v", err)
	}
	if cells, err := s.Region(0, 0, 10, 6); err != nil || len(cells) != 60 {
		t.Fatalf("full region: %d cells, err %v", len(cells), err)
	}
}

func TestQueriesBeforeInitialize(t *testing.T) {
	s := NewSession()
	if _, err := s.CellAt(0, 0); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("CellAt err = %v", err)
	}
	if _, err := s.Statistics(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("Statistics err = %v", err)
	}
	if _, err := s.HeatmapData(HeatmapTemperature); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("HeatmapData err = %v", err)
	}
	if _, err := s.Snapshot(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("Snapshot err = %v", err)
	}
}

func TestSetCellAtNormalizesMissingCells(t *testing.T) {
	s := NewSession()
	if err := s.Initialize(4, 4, DefaultParams()); err != nil {
		t.Fatal(err)
	}
	err := s.SetCellAt(1, 1, Cell{Exists: false, Crystal: CrystalHuman, StoredEnergy: 40, Thunderstorm: true})
	if err != nil {
		t.Fatal(err)
	}
	c, _ := s.CellAt(1, 1)
	if c.Crystal != CrystalEmpty || c.StoredEnergy != 0 || c.Thunderstorm {
		t.Fatalf("missing cell kept occupant state: %+v", c)
	}
	if err := s.SetCellAt(1, 1, Cell{Exists: true, Crystal: CrystalType(9)}); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("invalid crystal err = %v", err)
	}
	for _, bad := range []Cell{
		{Exists: true, MantleEnergy: math.NaN()},
		{Exists: true, Temperature: math.Inf(1)},
		{Exists: true, Crystal: CrystalAlpha, StoredEnergy: math.Inf(-1)},
	} {
		if err := s.SetCellAt(2, 2, bad); !errors.Is(err, ErrInvalidParameter) {
			t.Fatalf("SetCellAt(%+v) err = %v", bad, err)
		}
	}
	if err := s.Tick(ReferenceStep); err != nil {
		t.Fatalf("tick after rejected writes: %v", err)
	}
}

func TestStatisticsOverAllMissingGrid(t *testing.T) {
	s := NewSession()
	if err := s.Initialize(6, 5, DefaultParams()); err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 5; y++ {
		for x := 0; x < 6; x++ {
			if err := s.SetCellAt(x, y, Cell{}); err != nil {
				t.Fatal(err)
			}
		}
	}
	stats, err := s.Statistics()
	if err != nil {
		t.Fatal(err)
	}
	want := Statistics{TotalCells: 30}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}
}

func TestStatisticsCountsExistingCellsOnly(t *testing.T) {
	cells := []Cell{
		{Exists: true, MantleEnergy: 10, Temperature: -10, Crystal: CrystalAlpha, StoredEnergy: 5},
		{Exists: true, MantleEnergy: 30, Temperature: 30, Crystal: CrystalBeta, Thunderstorm: true},
		{Exists: true, MantleEnergy: 20, Temperature: 10, Crystal: CrystalHuman, Prosperity: 40},
		{MantleEnergy: 999, Temperature: 999},
	}
	stats := computeStatistics(cells)
	if stats.TotalCells != 4 || stats.TerrainCells != 3 {
		t.Fatalf("cell counts = %d/%d", stats.TotalCells, stats.TerrainCells)
	}
	if stats.AlphaCrystals != 1 || stats.BetaCrystals != 1 || stats.HumanSettlements != 1 || stats.ThunderstormCells != 1 {
		t.Fatalf("occupant counts wrong: %+v", stats)
	}
	if math.Abs(stats.AverageMantleEnergy-20) > 1e-9 || math.Abs(stats.AverageTemperature-10) > 1e-9 {
		t.Fatalf("averages = %f/%f", stats.AverageMantleEnergy, stats.AverageTemperature)
	}
	if stats.MaxMantleEnergy != 30 || stats.MaxTemperature != 30 {
		t.Fatalf("maxima = %f/%f", stats.MaxMantleEnergy, stats.MaxTemperature)
	}
	if stats.AverageProsperity != 40 || stats.TotalStoredEnergy != 5 {
		t.Fatalf("prosperity/stored = %f/%f", stats.AverageProsperity, stats.TotalStoredEnergy)
	}
}

func TestHeatmapData(t *testing.T) {
	s := NewSession()
	if err := s.Initialize(12, 9, DefaultParams()); err != nil {
		t.Fatal(err)
	}
	cells, _ := s.Snapshot()
	for _, kind := range HeatmapKinds() {
		values, err := s.HeatmapData(kind)
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if len(values) != 12*9 {
			t.Fatalf("%s: %d values", kind, len(values))
		}
		for i, v := range values {
			if v < 0 || v > 1 {
				t.Fatalf("%s[%d] = %f outside [0,1]", kind, i, v)
			}
			if !cells[i].Exists && v != 0 {
				t.Fatalf("%s[%d] missing cell reads %f", kind, i, v)
			}
		}
	}

	if err := s.SetCellAt(0, 0, Cell{Exists: true, MantleEnergy: 50, Temperature: 0}); err != nil {
		t.Fatal(err)
	}
	mantle, _ := s.HeatmapData(HeatmapMantleEnergy)
	temp, _ := s.HeatmapData(HeatmapTemperature)
	if mantle[0] != 0.5 || temp[0] != 0.5 {
		t.Fatalf("normalized (0,0) = %f/%f, want 0.5/0.5", mantle[0], temp[0])
	}
	if _, err := s.HeatmapData(HeatmapKind(42)); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("unknown kind err = %v", err)
	}
}

func TestParseHeatmapKind(t *testing.T) {
	for _, kind := range HeatmapKinds() {
		got, err := ParseHeatmapKind(kind.String())
		if err != nil || got != kind {
			t.Fatalf("ParseHeatmapKind(%q) = %v, %v", kind.String(), got, err)
		}
	}
	if got, err := ParseHeatmapKind("mantle_energy"); err != nil || got != HeatmapMantleEnergy {
		t.Fatalf("snake case lookup = %v, %v", got, err)
	}
	if _, err := ParseHeatmapKind("pressure"); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("unknown kind err = %v", err)
	}
}
