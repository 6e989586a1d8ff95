package render

import (
	"image/color"
	"math"

	"worldmorph/internal/morph"
)

// Stop is one color stop of a Ramp.
type Stop struct {
	T     float64
	Color color.RGBA
}

// Ramp maps [0, 1] onto colors by interpolating between ordered stops.
type Ramp []Stop

// At returns the color for t, clamped to [0, 1].
func (r Ramp) At(t float64) color.RGBA {
	if len(r) == 0 {
		return color.RGBA{}
	}
	t = clamp01(t)
	if t <= r[0].T {
		return r[0].Color
	}
	for i := 1; i < len(r); i++ {
		curr := r[i]
		if t <= curr.T {
			prev := r[i-1]
			span := curr.T - prev.T
			var local float64
			if span > 0 {
				local = (t - prev.T) / span
			}
			return lerpRGBA(prev.Color, curr.Color, local)
		}
	}
	return r[len(r)-1].Color
}

// Ocean is drawn for cells without terrain.
var Ocean = color.RGBA{R: 18, G: 38, B: 72, A: 255}

var (
	// EnergyRamp runs from cold basalt through magma orange to white heat.
	EnergyRamp = Ramp{
		{0.0, color.RGBA{R: 24, G: 20, B: 28, A: 255}},
		{0.4, color.RGBA{R: 120, G: 40, B: 30, A: 255}},
		{0.75, color.RGBA{R: 235, G: 130, B: 40, A: 255}},
		{1.0, color.RGBA{R: 255, G: 240, B: 200, A: 255}},
	}
	// ThermalRamp is a diverging blue to red ramp centred on 0.5.
	ThermalRamp = Ramp{
		{0.0, color.RGBA{R: 40, G: 70, B: 170, A: 255}},
		{0.5, color.RGBA{R: 235, G: 235, B: 225, A: 255}},
		{1.0, color.RGBA{R: 190, G: 35, B: 35, A: 255}},
	}
	// DensityRamp suits presence and fill-level fields.
	DensityRamp = Ramp{
		{0.0, color.RGBA{R: 30, G: 34, B: 30, A: 255}},
		{0.5, color.RGBA{R: 70, G: 150, B: 110, A: 255}},
		{1.0, color.RGBA{R: 210, G: 250, B: 170, A: 255}},
	}
)

// RampFor picks the display ramp for a heatmap field.
func RampFor(kind morph.HeatmapKind) Ramp {
	switch kind {
	case morph.HeatmapMantleEnergy, morph.HeatmapStoredEnergy:
		return EnergyRamp
	case morph.HeatmapTemperature:
		return ThermalRamp
	default:
		return DensityRamp
	}
}

// CrystalPalette is indexed by morph.CrystalType.
var CrystalPalette = [...]color.RGBA{
	morph.CrystalEmpty: {R: 96, G: 84, B: 70, A: 255},
	morph.CrystalAlpha: {R: 90, G: 200, B: 230, A: 255},
	morph.CrystalBeta:  {R: 200, G: 90, B: 220, A: 255},
	morph.CrystalHuman: {R: 250, G: 210, B: 80, A: 255},
}

// FillCrystalRGBA paints the crystal classification of cells into buf.
// Empty ground is shaded by mantle energy so the island stays readable.
func FillCrystalRGBA(buf []byte, cells []morph.Cell) {
	for i, c := range cells {
		col := Ocean
		if c.Exists {
			col = CrystalPalette[c.Crystal]
			if c.Crystal == morph.CrystalEmpty {
				col = lerpRGBA(col, EnergyRamp.At(1), 0.35*clamp01(c.MantleEnergy/200))
			}
		}
		putRGBA(buf, i, col)
	}
}

// FillHeatmapRGBA paints normalized values through ramp. When cells is
// non-nil, cells without terrain are painted as Ocean.
func FillHeatmapRGBA(buf []byte, values []float64, cells []morph.Cell, ramp Ramp) {
	for i, v := range values {
		if cells != nil && i < len(cells) && !cells[i].Exists {
			putRGBA(buf, i, Ocean)
			continue
		}
		putRGBA(buf, i, ramp.At(v))
	}
}

// FillMaskRGBA converts a [0, 1] mask into translucent tinted pixels for
// overlays. Zero intensity is fully transparent.
func FillMaskRGBA(buf []byte, mask []float64, tint color.RGBA) {
	const (
		maxAlpha      = 140.0
		glowBase      = 0.35
		glowRange     = 0.65
		intensityBias = 0.75
	)
	for i, m := range mask {
		intensity := clamp01(m)
		if intensity == 0 {
			putRGBA(buf, i, color.RGBA{})
			continue
		}
		glow := glowBase + glowRange*math.Sqrt(intensity)
		putRGBA(buf, i, color.RGBA{
			R: scaleColorComponent(tint.R, glow),
			G: scaleColorComponent(tint.G, glow),
			B: scaleColorComponent(tint.B, glow),
			A: uint8(math.Round(maxAlpha * math.Pow(intensity, intensityBias))),
		})
	}
}

func putRGBA(buf []byte, i int, col color.RGBA) {
	base := i * 4
	buf[base+0] = col.R
	buf[base+1] = col.G
	buf[base+2] = col.B
	buf[base+3] = col.A
}

func lerpRGBA(a, b color.RGBA, t float64) color.RGBA {
	t = clamp01(t)
	return color.RGBA{
		R: lerpComponent(a.R, b.R, t),
		G: lerpComponent(a.G, b.G, t),
		B: lerpComponent(a.B, b.B, t),
		A: lerpComponent(a.A, b.A, t),
	}
}

func lerpComponent(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

func scaleColorComponent(value uint8, factor float64) uint8 {
	scaled := math.Round(float64(value) * factor)
	if scaled < 0 {
		return 0
	}
	if scaled > 255 {
		return 255
	}
	return uint8(scaled)
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
