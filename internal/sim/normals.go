package sim

import "math"

// normalTexel derives the packed surface normal from one-sided height
// gradients dhx, dhy sampled delta apart. The two tangents
// (delta, dhx, 0) and (0, dhy, delta) span the surface; their cross
// product, oriented upward and normalized, is the normal. Only x and z are
// stored; y is reconstructible as sqrt(1 - x^2 - z^2).
func normalTexel(t Texel, dhx, dhy, delta float32) Texel {
	nx := float64(-dhx * delta)
	ny := float64(delta * delta)
	nz := float64(-delta * dhy)
	inv := 1.0 / math.Sqrt(nx*nx+ny*ny+nz*nz)
	t.NormalX = float32(nx * inv)
	t.NormalZ = float32(nz * inv)
	return t
}

// updateNormals runs the normal-estimation pass from b.read into b.write.
// It must follow the integration swap within the same frame so normals
// match the just-updated heights. Height and velocity pass through.
func (s *Simulation) updateNormals() {
	src := s.buf.read
	dst := s.buf.write
	n := src.size
	delta := float32(1.0 / float64(n))
	s.forEachRow(func(y int) {
		base := y * n
		down := clampi(y+1, 0, n-1) * n
		for x := 0; x < n; x++ {
			r := clampi(x+1, 0, n-1)
			h := src.texels[base+x].Height
			dhx := src.texels[base+r].Height - h
			dhy := src.texels[down+x].Height - h
			dst.texels[base+x] = normalTexel(src.texels[base+x], dhx, dhy, delta)
		}
	})
}
