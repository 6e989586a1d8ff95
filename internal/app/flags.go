package app

import "flag"

// Flags represents the command-line parameters of the viewer. Zero values
// fall back to the loaded configuration.
type Flags struct {
	Config string
	Preset string
	Width  int
	Height int
	Scale  int
	TPS    int
	Seed   int64
	HUD    int
}

// NewFlags returns Flags populated with viewer defaults.
func NewFlags() *Flags {
	return &Flags{Scale: 4, HUD: 240}
}

// Bind attaches the flags to the provided FlagSet.
func (f *Flags) Bind(fs *flag.FlagSet) {
	fs.StringVar(&f.Config, "config", f.Config, "YAML configuration file")
	fs.StringVar(&f.Preset, "preset", f.Preset, "parameter preset")
	fs.IntVar(&f.Width, "width", f.Width, "grid width")
	fs.IntVar(&f.Height, "height", f.Height, "grid height")
	fs.IntVar(&f.Scale, "scale", f.Scale, "pixel scale multiplier")
	fs.IntVar(&f.TPS, "tps", f.TPS, "ticks per second")
	fs.Int64Var(&f.Seed, "seed", f.Seed, "terrain seed")
	fs.IntVar(&f.HUD, "hud", f.HUD, "HUD panel width in pixels, 0 hides it")
}
