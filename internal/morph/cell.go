package morph

import "fmt"

// CrystalType classifies the material or settlement occupying a cell.
type CrystalType uint8

const (
	CrystalEmpty CrystalType = iota
	CrystalAlpha
	CrystalBeta
	CrystalHuman
)

var crystalNames = [...]string{"Empty", "Alpha", "Beta", "Human"}

func (c CrystalType) String() string {
	if int(c) < len(crystalNames) {
		return crystalNames[c]
	}
	return fmt.Sprintf("CrystalType(%d)", uint8(c))
}

// Valid reports whether c is one of the declared crystal types.
func (c CrystalType) Valid() bool { return c <= CrystalHuman }

// IsCrystal reports whether c is a growing crystal (Alpha or Beta).
func (c CrystalType) IsCrystal() bool { return c == CrystalAlpha || c == CrystalBeta }

// Occupied reports whether the cell holds anything at all.
func (c CrystalType) Occupied() bool { return c != CrystalEmpty }

// Cell is the full physical and settlement state of one grid location.
type Cell struct {
	Exists       bool        `json:"exists"`
	MantleEnergy float64     `json:"mantle_energy"`
	Temperature  float64     `json:"temperature"`
	Crystal      CrystalType `json:"crystal_type"`
	StoredEnergy float64     `json:"stored_energy"`
	Thunderstorm bool        `json:"thunderstorm"`

	// Age counts the ticks the current occupant has existed and Starvation
	// the consecutive ticks it spent below the shrink threshold.
	Age        uint32  `json:"age"`
	Starvation uint32  `json:"starvation"`
	Prosperity float64 `json:"prosperity"`
}

// ExportCode maps the cell onto the export encoding: -1 for missing terrain,
// otherwise the crystal ordinal.
func (c Cell) ExportCode() int {
	if !c.Exists {
		return -1
	}
	return int(c.Crystal)
}

// normalized returns c with the invariants of a missing cell enforced.
func (c Cell) normalized() Cell {
	if c.Exists {
		return c
	}
	return Cell{MantleEnergy: c.MantleEnergy, Temperature: c.Temperature}
}

func (c *Cell) clearOccupant() {
	c.Crystal = CrystalEmpty
	c.StoredEnergy = 0
	c.Age = 0
	c.Starvation = 0
	c.Prosperity = 0
}
