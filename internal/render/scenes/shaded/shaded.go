// Package shaded lights the displaced water surface with a single
// directional light, reconstructing the vertical normal component from the
// two packed by the simulation.
package shaded

import (
	"math"

	"github.com/shifatmasud/watersim/internal/render"
	"github.com/shifatmasud/watersim/internal/sim"
)

type Scene struct {
	name, preset string
}

func New(name string) *Scene { return &Scene{name: name, preset: "Noon"} }

func (s *Scene) Name() string { return s.name }

func (s *Scene) Presets() []string { return []string{"Noon", "Sunset", "Moonlight"} }

func (s *Scene) ApplyPreset(p string, u *render.Uniforms) {
	s.preset = p
	if u == nil {
		return
	}
	if u.Params == nil {
		u.Params = map[string]float64{}
	}
	switch p {
	case "Noon":
		u.LightDir = render.Vec3{X: 0.3, Y: 1.0, Z: 0.2}
		assign(u, map[string]float64{
			"WaterHue": 0.55, "Ambient": 0.25, "SpecPower": 48, "SpecGain": 0.8,
			"HeightGain": 0.6, "BaseIntensity": 1.0,
		})
	case "Sunset":
		u.LightDir = render.Vec3{X: 0.8, Y: 0.35, Z: 0.1}
		assign(u, map[string]float64{
			"WaterHue": 0.58, "Ambient": 0.18, "SpecPower": 24, "SpecGain": 1.1,
			"HeightGain": 0.7, "BaseIntensity": 0.9,
		})
	case "Moonlight":
		u.LightDir = render.Vec3{X: -0.2, Y: 0.8, Z: -0.4}
		assign(u, map[string]float64{
			"WaterHue": 0.62, "Ambient": 0.08, "SpecPower": 64, "SpecGain": 0.5,
			"HeightGain": 0.4, "BaseIntensity": 0.45,
		})
	}
}

func (s *Scene) Render(dst []render.Color, f *sim.Field, _ float64, u *render.Uniforms) {
	n := f.Size()
	if len(dst) < n*n {
		return
	}

	hue := pget(u, "WaterHue", 0.55)
	ambient := pget(u, "Ambient", 0.25)
	specPow := pget(u, "SpecPower", 48)
	specGain := pget(u, "SpecGain", 0.8)
	hGain := pget(u, "HeightGain", 0.6)
	baseI := pget(u, "BaseIntensity", 1.0)

	lx, ly, lz := normalize(u)

	baseR, baseG, baseB := hsv(hue, 0.8, 0.85)
	i := 0
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			tx := f.At(x, y)
			nx := float64(tx.NormalX)
			nz := float64(tx.NormalZ)
			ny := math.Sqrt(math.Max(0, 1-nx*nx-nz*nz))

			lambert := math.Max(0, nx*lx+ny*ly+nz*lz)
			spec := specGain * math.Pow(lambert, specPow)
			lift := clamp(float64(tx.Height)*hGain, -0.4, 0.6)

			shade := ambient + (1-ambient)*lambert
			r := (baseR*shade + baseR*lift + spec) * baseI
			g := (baseG*shade + baseG*lift + spec) * baseI
			b := (baseB*shade + baseB*lift*0.6 + spec) * baseI
			dst[i] = render.Color{R: float32(clamp(r, 0, 4)), G: float32(clamp(g, 0, 4)), B: float32(clamp(b, 0, 4))}
			i++
		}
	}
}

func normalize(u *render.Uniforms) (float64, float64, float64) {
	l := render.Vec3{X: 0.3, Y: 1.0, Z: 0.2}
	if u != nil && (u.LightDir != render.Vec3{}) {
		l = u.LightDir
	}
	m := math.Sqrt(l.X*l.X + l.Y*l.Y + l.Z*l.Z)
	return l.X / m, l.Y / m, l.Z / m
}

func assign(u *render.Uniforms, kv map[string]float64) {
	for k, v := range kv {
		u.Params[k] = v
	}
}

func pget(u *render.Uniforms, key string, def float64) float64 {
	if u == nil || u.Params == nil {
		return def
	}
	if v, ok := u.Params[key]; ok {
		return v
	}
	return def
}

func clamp(x, a, b float64) float64 {
	if x < a {
		return a
	}
	if x > b {
		return b
	}
	return x
}

func hsv(h, s, v float64) (float64, float64, float64) {
	h = h - math.Floor(h)
	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)
	switch i % 6 {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}
