package sim

// Default solver constants. Stiffness scales how strongly a texel is pulled
// toward its neighborhood average (wave speed); damping is the per-step
// velocity retention factor that makes ripples die out. The pair has to stay
// in a jointly stable regime with the grid resolution; no CFL check is done.
const (
	DefaultStiffness = 2.0
	DefaultDamping   = 0.995
)

// integrateTexel advances one texel by one step of the damped wave update.
// avg is the mean height of the four axis neighbors in the previous
// snapshot. Normal channels pass through stale; the normal pass follows.
func integrateTexel(t Texel, avg, stiffness, damping float32) Texel {
	t.Velocity = (t.Velocity + (avg-t.Height)*stiffness) * damping
	t.Height += t.Velocity
	return t
}

// step runs one integration pass from b.read into b.write. Neighbor samples
// clamp to the grid edge. The caller swaps afterward.
func (s *Simulation) step(stiff, damp float32) {
	src := s.buf.read
	dst := s.buf.write
	n := src.size
	s.forEachRow(func(y int) {
		up := clampi(y-1, 0, n-1) * n
		down := clampi(y+1, 0, n-1) * n
		base := y * n
		for x := 0; x < n; x++ {
			l := clampi(x-1, 0, n-1)
			r := clampi(x+1, 0, n-1)
			avg := (src.texels[base+l].Height +
				src.texels[base+r].Height +
				src.texels[up+x].Height +
				src.texels[down+x].Height) * 0.25
			dst.texels[base+x] = integrateTexel(src.texels[base+x], avg, stiff, damp)
		}
	})
}
