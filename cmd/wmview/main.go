//go:build ebiten

package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"worldmorph/internal/app"
	"worldmorph/internal/config"
	"worldmorph/internal/logging"
	"worldmorph/internal/morph"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	flags := app.NewFlags()
	flags.Bind(flag.CommandLine)
	flag.Parse()

	cfg, err := config.Load(flags.Config)
	if err != nil {
		log.Fatal(err)
	}
	applyFlags(cfg, flags)
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	params, err := cfg.SimParams()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.NewLogger(cfg.Logging.Level, os.Stderr)
	world := morph.NewSession(
		morph.WithSeed(cfg.World.Seed),
		morph.WithWorkers(cfg.World.Workers),
		morph.WithLogger(logger),
	)
	if err := world.Initialize(cfg.World.Width, cfg.World.Height, params); err != nil {
		log.Fatal(err)
	}

	game := app.New(world, flags.Scale, flags.HUD, cfg.Run.TPS, logger)

	ebiten.SetWindowTitle("worldmorph - " + cfg.Preset)
	ebiten.SetTPS(cfg.Run.TPS)
	ebiten.SetWindowSize(cfg.World.Width*flags.Scale+flags.HUD, cfg.World.Height*flags.Scale)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}

func applyFlags(cfg *config.Config, f *app.Flags) {
	if f.Preset != "" {
		cfg.Preset = f.Preset
	}
	if f.Width > 0 {
		cfg.World.Width = f.Width
	}
	if f.Height > 0 {
		cfg.World.Height = f.Height
	}
	if f.TPS > 0 {
		cfg.Run.TPS = f.TPS
	}
	if f.Seed != 0 {
		cfg.World.Seed = f.Seed
	}
}
