package render

import "math"

// PostPipeline groups post stages; all are optional.
type PostPipeline struct {
	ToneMap func([]Color, *Uniforms)
}

// FilmicToneMap applies exposure in EV, an approximate ACES curve, and
// output gamma. Reads from uniforms.Params:
//   - "ExposureEV" (default 0)
//   - "OutputGamma" (default 2.2)
func FilmicToneMap(buf []Color, u *Uniforms) {
	exposureEV := 0.0
	gamma := 2.2
	if u != nil && u.Params != nil {
		if v, ok := u.Params["ExposureEV"]; ok {
			exposureEV = v
		}
		if g, ok := u.Params["OutputGamma"]; ok && g > 0 {
			gamma = g
		}
	}
	exposure := float32(math.Pow(2.0, exposureEV))

	for i := range buf {
		r := acesApprox(buf[i].R * exposure)
		g := acesApprox(buf[i].G * exposure)
		b := acesApprox(buf[i].B * exposure)

		if gamma != 1.0 {
			ig := 1.0 / gamma
			r = powf(r, ig)
			g = powf(g, ig)
			b = powf(b, ig)
		}

		buf[i].R = clamp01(r)
		buf[i].G = clamp01(g)
		buf[i].B = clamp01(b)
	}
}

// DefaultToneMap points at FilmicToneMap for convenience.
func DefaultToneMap(buf []Color, u *Uniforms) { FilmicToneMap(buf, u) }

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func powf(x float32, p float64) float32 {
	return float32(math.Pow(float64(x), p))
}

// Approximate ACES filmic curve (Narkowicz 2015).
func acesApprox(x float32) float32 {
	a := float32(2.51)
	b := float32(0.03)
	c := float32(2.43)
	d := float32(0.59)
	e := float32(0.14)
	return clamp01((x * (a*x + b)) / (x*(c*x+d) + e))
}
