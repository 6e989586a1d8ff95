// Package export renders a session into the JSON grid document consumed by
// external plotting tools.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"worldmorph/internal/morph"
)

// Values written for cells without terrain.
const (
	MissingMantle      = 0.0
	MissingTemperature = -100.0
)

// Source is the query surface an export reads from.
type Source interface {
	Status() morph.Status
	Region(x, y, w, h int) ([]morph.Cell, error)
}

// Document is the exported grid. Matrices are indexed [y][x].
type Document struct {
	Width        int         `json:"width"`
	Height       int         `json:"height"`
	MantleEnergy [][]float64 `json:"mantle_energy"`
	Temperature  [][]float64 `json:"temperature"`
	CrystalType  [][]int     `json:"crystal_type"`
	Exists       [][]int     `json:"exists"`
	Thunderstorm [][]int     `json:"thunderstorm"`
	TimeStep     float64     `json:"time_step"`
	CycleCount   uint64      `json:"cycle_count"`
}

// Build reads the whole grid from src one row at a time.
func Build(src Source) (*Document, error) {
	st := src.Status()
	if !st.Initialized {
		return nil, morph.ErrNotInitialized
	}
	doc := &Document{
		Width:        st.Width,
		Height:       st.Height,
		MantleEnergy: make([][]float64, st.Height),
		Temperature:  make([][]float64, st.Height),
		CrystalType:  make([][]int, st.Height),
		Exists:       make([][]int, st.Height),
		Thunderstorm: make([][]int, st.Height),
		TimeStep:     st.TimeStep,
		CycleCount:   st.CycleCount,
	}
	for y := 0; y < st.Height; y++ {
		row, err := src.Region(0, y, st.Width, 1)
		if err != nil {
			return nil, fmt.Errorf("export row %d: %w", y, err)
		}
		doc.MantleEnergy[y] = make([]float64, st.Width)
		doc.Temperature[y] = make([]float64, st.Width)
		doc.CrystalType[y] = make([]int, st.Width)
		doc.Exists[y] = make([]int, st.Width)
		doc.Thunderstorm[y] = make([]int, st.Width)
		for x, c := range row {
			doc.CrystalType[y][x] = c.ExportCode()
			if !c.Exists {
				doc.MantleEnergy[y][x] = MissingMantle
				doc.Temperature[y][x] = MissingTemperature
				continue
			}
			doc.MantleEnergy[y][x] = c.MantleEnergy
			doc.Temperature[y][x] = c.Temperature
			doc.Exists[y][x] = 1
			if c.Thunderstorm {
				doc.Thunderstorm[y][x] = 1
			}
		}
	}
	return doc, nil
}

// Write encodes the document as JSON.
func (d *Document) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	return enc.Encode(d)
}

// Read decodes a document and checks its matrices against the declared size.
func Read(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding export: %w", err)
	}
	if err := doc.check(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *Document) check() error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("%w: export %dx%d", morph.ErrInvalidDimensions, d.Width, d.Height)
	}
	rows := map[string]int{
		"mantle_energy": len(d.MantleEnergy),
		"temperature":   len(d.Temperature),
		"crystal_type":  len(d.CrystalType),
		"exists":        len(d.Exists),
		"thunderstorm":  len(d.Thunderstorm),
	}
	for name, n := range rows {
		if n != d.Height {
			return fmt.Errorf("%w: %s has %d rows, want %d", morph.ErrInvalidDimensions, name, n, d.Height)
		}
	}
	for y := 0; y < d.Height; y++ {
		if len(d.MantleEnergy[y]) != d.Width || len(d.Temperature[y]) != d.Width ||
			len(d.CrystalType[y]) != d.Width || len(d.Exists[y]) != d.Width || len(d.Thunderstorm[y]) != d.Width {
			return fmt.Errorf("%w: row %d width mismatch", morph.ErrInvalidDimensions, y)
		}
		for x := 0; x < d.Width; x++ {
			if code := d.CrystalType[y][x]; code < -1 || code > int(morph.CrystalHuman) {
				return fmt.Errorf("%w: crystal_type %d at (%d,%d)", morph.ErrInvalidParameter, code, x, y)
			}
			if !isFlag(d.Exists[y][x]) || !isFlag(d.Thunderstorm[y][x]) {
				return fmt.Errorf("%w: exists/thunderstorm at (%d,%d) must be 0 or 1", morph.ErrInvalidParameter, x, y)
			}
			if d.Exists[y][x] == 1 && d.CrystalType[y][x] == -1 {
				return fmt.Errorf("%w: terrain cell (%d,%d) has crystal_type -1", morph.ErrInvalidParameter, x, y)
			}
		}
	}
	return nil
}

func isFlag(v int) bool { return v == 0 || v == 1 }

// Cells rebuilds the row-major cell list the document was built from. Only
// fields carried by the export are restored.
func (d *Document) Cells() []morph.Cell {
	out := make([]morph.Cell, 0, d.Width*d.Height)
	for y := 0; y < d.Height; y++ {
		for x := 0; x < d.Width; x++ {
			if d.Exists[y][x] == 0 {
				out = append(out, morph.Cell{})
				continue
			}
			out = append(out, morph.Cell{
				Exists:       true,
				MantleEnergy: d.MantleEnergy[y][x],
				Temperature:  d.Temperature[y][x],
				Crystal:      morph.CrystalType(d.CrystalType[y][x]),
				Thunderstorm: d.Thunderstorm[y][x] == 1,
			})
		}
	}
	return out
}
