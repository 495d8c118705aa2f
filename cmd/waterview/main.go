// Command waterview opens an interactive window on the simulation: the
// cursor drops disturbances onto the surface and the shaded field fills the
// window. Left button raises ripples, right button carves troughs.
package main

import (
	"flag"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/shifatmasud/watersim/internal/render"
	"github.com/shifatmasud/watersim/internal/render/scenes/depth"
	"github.com/shifatmasud/watersim/internal/render/scenes/shaded"
	"github.com/shifatmasud/watersim/internal/sim"
)

// frameImage adapts the engine output to an RGBA pixel buffer ebiten can
// upload directly.
type frameImage struct {
	pix []byte
}

func (f *frameImage) Write(buf []render.Color) error {
	for i := range buf {
		f.pix[i*4+0] = clamp255(buf[i].R)
		f.pix[i*4+1] = clamp255(buf[i].G)
		f.pix[i*4+2] = clamp255(buf[i].B)
		f.pix[i*4+3] = 0xff
	}
	return nil
}

type game struct {
	sim      *sim.Simulation
	eng      *render.Engine
	frame    *frameImage
	size     int
	radius   float64
	strength float64
}

func (g *game) Update() error {
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		g.drop(g.strength)
	} else if ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
		g.drop(-g.strength)
	}
	return g.eng.RenderOnce(-1)
}

func (g *game) drop(strength float64) {
	x, y := ebiten.CursorPosition()
	if x < 0 || y < 0 || x >= g.size || y >= g.size {
		return
	}
	u := (float64(x) + 0.5) / float64(g.size)
	v := (float64(y) + 0.5) / float64(g.size)
	if err := g.sim.QueueDrop(u, v, g.radius, strength); err != nil {
		log.Warn().Err(err).Msg("drop rejected")
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.WritePixels(g.frame.pix)
}

func (g *game) Layout(_, _ int) (int, int) { return g.size, g.size }

func main() {
	var (
		size     = flag.Int("size", 256, "grid edge length in texels")
		scale    = flag.Int("scale", 3, "window pixels per texel")
		scene    = flag.String("scene", "shaded", "scene: shaded or depth")
		preset   = flag.String("preset", "Noon", "scene preset")
		radius   = flag.Float64("radius", 0.03, "drop radius")
		strength = flag.Float64("strength", 0.8, "drop strength")
	)
	flag.Parse()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	s, err := sim.New(sim.Config{Size: *size})
	if err != nil {
		log.Fatal().Err(err).Msg("create simulation")
	}
	defer s.Close()

	reg := render.NewRegistry()
	reg.Register(shaded.New("shaded"))
	reg.Register(depth.New("depth"))
	active, ok := reg.Get(*scene)
	if !ok {
		log.Fatal().Str("scene", *scene).Msg("unknown scene")
	}

	frame := &frameImage{pix: make([]byte, *size**size*4)}
	u := &render.Uniforms{TimeScale: 1, Params: map[string]float64{}, Bools: map[string]bool{}}
	eng, err := render.NewEngine(s, frame, active, u)
	if err != nil {
		log.Fatal().Err(err).Msg("create engine")
	}
	if *preset != "" {
		active.ApplyPreset(*preset, u)
	}

	g := &game{
		sim:      s,
		eng:      eng,
		frame:    frame,
		size:     *size,
		radius:   *radius,
		strength: *strength,
	}
	ebiten.SetWindowSize(*size**scale, *size**scale)
	ebiten.SetWindowTitle("waterview")
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal().Err(err).Msg("run")
	}
}

func clamp255(x float32) byte {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 255
	}
	return byte(x * 255.0)
}
