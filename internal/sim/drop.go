package sim

import "math"

// Drop is a transient disturbance request in normalized UV space. Negative
// strength carves a trough instead of raising a crest.
type Drop struct {
	CenterU  float64 `json:"u"`
	CenterV  float64 `json:"v"`
	Radius   float64 `json:"radius"`
	Strength float64 `json:"strength"`
}

// falloff returns the raised-cosine profile for a texel at distance dist
// from the drop center: zero at and beyond the radius, 1 at the center,
// C1-continuous at the rim so no hard ring shows up in the surface.
func (d Drop) falloff(dist float64) float64 {
	t := 1.0 - dist/d.Radius
	if t <= 0 {
		return 0
	}
	return 0.5 - math.Cos(t*math.Pi)*0.5
}

// injectTexel adds the drop's contribution to a single texel at (u, v).
// Velocity and normal channels pass through untouched.
func injectTexel(t Texel, u, v float64, d Drop) Texel {
	du := u - d.CenterU
	dv := v - d.CenterV
	dist := math.Sqrt(du*du + dv*dv)
	t.Height += float32(d.falloff(dist) * d.Strength)
	return t
}

// inject applies one drop as a full-grid pass from b.read into b.write.
// The caller swaps afterward.
func (s *Simulation) inject(d Drop) {
	src := s.buf.read
	dst := s.buf.write
	n := src.size
	inv := 1.0 / float64(n)
	s.forEachRow(func(y int) {
		v := (float64(y) + 0.5) * inv
		row := dst.texels[y*n : (y+1)*n]
		for x := 0; x < n; x++ {
			u := (float64(x) + 0.5) * inv
			row[x] = injectTexel(src.texels[y*n+x], u, v, d)
		}
	})
}
