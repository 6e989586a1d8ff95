//go:build ebiten

package ui

import (
	"image/color"

	"worldmorph/internal/morph"
	"worldmorph/internal/render"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Overlay draws optional thunderstorm and settlement masks on top of the base
// view.
type Overlay struct {
	world      World
	scale      int
	showStorms bool
	showHumans bool
	maskImg    *ebiten.Image
	maskBuf    []byte
}

// NewOverlay constructs a new overlay instance.
func NewOverlay(world World, scale int) *Overlay {
	return &Overlay{world: world, scale: scale, showStorms: true}
}

// Update toggles masks from the keyboard.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		o.showStorms = !o.showStorms
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		o.showHumans = !o.showHumans
	}
}

// Draw renders the enabled masks onto screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	size := o.world.Size()
	total := size.Area()
	if total <= 0 {
		return
	}
	if o.maskImg == nil || o.maskImg.Bounds().Dx() != size.W || o.maskImg.Bounds().Dy() != size.H {
		o.maskImg = ebiten.NewImage(size.W, size.H)
		o.maskBuf = make([]byte, 4*total)
	}
	if o.showStorms {
		o.drawMask(screen, morph.HeatmapThunderstorm, color.RGBA{R: 64, G: 164, B: 223})
	}
	if o.showHumans {
		o.drawMask(screen, morph.HeatmapHumanDensity, color.RGBA{R: 255, G: 220, B: 120})
	}
}

func (o *Overlay) drawMask(screen *ebiten.Image, kind morph.HeatmapKind, tint color.RGBA) {
	mask, err := o.world.HeatmapData(kind)
	if err != nil || len(mask)*4 != len(o.maskBuf) {
		return
	}
	render.FillMaskRGBA(o.maskBuf, mask, tint)
	o.maskImg.WritePixels(o.maskBuf)
	op := &ebiten.DrawImageOptions{}
	scale := o.scale
	if scale <= 0 {
		scale = 1
	}
	op.GeoM.Scale(float64(scale), float64(scale))
	screen.DrawImage(o.maskImg, op)
}
