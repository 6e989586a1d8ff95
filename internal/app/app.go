//go:build ebiten

package app

import (
	"log/slog"

	"worldmorph/internal/core"
	"worldmorph/internal/morph"
	"worldmorph/internal/render"
	"worldmorph/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// view selects what the base layer shows: crystals or one heatmap.
type view struct {
	crystals bool
	kind     morph.HeatmapKind
}

// Game adapts a world session to the ebiten.Game interface.
type Game struct {
	world   *morph.Session
	painter *render.GridPainter
	overlay *ui.Overlay
	hud     *ui.HUD
	step    *core.FixedStep
	logger  *slog.Logger

	view     view
	scale    int
	hudWidth int
	paused   bool
	tickOnce bool
}

// New constructs a Game for an initialized session.
func New(world *morph.Session, scale, hudWidth, tps int, logger *slog.Logger) *Game {
	size := world.Size()
	return &Game{
		world:    world,
		painter:  render.NewGridPainter(size.W, size.H),
		overlay:  ui.NewOverlay(world, scale),
		hud:      ui.NewHUD(world, hudWidth),
		step:     core.NewFixedStep(tps),
		logger:   logger,
		view:     view{crystals: true},
		scale:    scale,
		hudWidth: hudWidth,
	}
}

// Update handles per-frame logic and advances the simulation.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := g.world.Reset(); err != nil {
			g.logger.Warn("reset failed", "err", err)
		}
	}
	g.handleViewKeys()

	g.overlay.Update()
	g.hud.Update(g.viewWidth())

	if !g.paused || g.tickOnce {
		g.tickOnce = false
		if err := g.world.Tick(g.step.DeltaSeconds()); err != nil {
			g.logger.Error("tick failed", "err", err)
			g.paused = true
		}
	}
	return nil
}

func (g *Game) handleViewKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit0) {
		g.view = view{crystals: true}
	}
	keys := []ebiten.Key{ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4, ebiten.KeyDigit5, ebiten.KeyDigit6}
	for i, kind := range morph.HeatmapKinds() {
		if i < len(keys) && inpututil.IsKeyJustPressed(keys[i]) {
			g.view = view{kind: kind}
		}
	}
}

// Draw renders the current world state.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.view.crystals {
		cells, err := g.world.Snapshot()
		if err != nil {
			return
		}
		render.FillCrystalRGBA(g.painter.Pixels(), cells)
	} else {
		values, err := g.world.HeatmapData(g.view.kind)
		if err != nil {
			return
		}
		cells, _ := g.world.Snapshot()
		render.FillHeatmapRGBA(g.painter.Pixels(), values, cells, render.RampFor(g.view.kind))
	}
	g.painter.Blit(screen, g.scale)
	g.overlay.Draw(screen)
	g.hud.Draw(screen, g.viewWidth(), g.scale)
}

func (g *Game) viewWidth() int { return g.world.Size().W * g.scale }

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := g.world.Size()
	return s.W*g.scale + g.hudWidth, s.H * g.scale
}
