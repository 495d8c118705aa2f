// Package depth maps the raw height field to a color ramp, useful for
// inspecting wave propagation without lighting.
package depth

import (
	"math"

	"github.com/shifatmasud/watersim/internal/render"
	"github.com/shifatmasud/watersim/internal/sim"
)

type Scene struct {
	name string
}

func New(name string) *Scene { return &Scene{name: name} }

func (s *Scene) Name() string { return s.name }

func (s *Scene) Presets() []string { return []string{"Blueprint", "Thermal"} }

func (s *Scene) ApplyPreset(p string, u *render.Uniforms) {
	if u == nil {
		return
	}
	if u.Params == nil {
		u.Params = map[string]float64{}
	}
	switch p {
	case "Blueprint":
		u.Params["Thermal"] = 0
		u.Params["HeightScale"] = 1.5
	case "Thermal":
		u.Params["Thermal"] = 1
		u.Params["HeightScale"] = 1.5
	}
}

func (s *Scene) Render(dst []render.Color, f *sim.Field, _ float64, u *render.Uniforms) {
	n := f.Size()
	if len(dst) < n*n {
		return
	}
	scale := 1.5
	thermal := false
	if u != nil && u.Params != nil {
		if v, ok := u.Params["HeightScale"]; ok && v > 0 {
			scale = v
		}
		thermal = u.Params["Thermal"] > 0.5
	}

	i := 0
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			// 0.5 is the rest surface; crests brighten, troughs darken.
			t := clamp01(0.5 + float64(f.At(x, y).Height)*scale*0.5)
			if thermal {
				// blue -> green -> red
				dst[i] = render.Color{
					R: float32(clamp01(2*t - 1)),
					G: float32(1 - math.Abs(2*t-1)),
					B: float32(clamp01(1 - 2*t)),
				}
			} else {
				dst[i] = render.Color{
					R: float32(t * t * 0.4),
					G: float32(t * 0.6),
					B: float32(0.35 + t*0.65),
				}
			}
			i++
		}
	}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
