package sim

// Texel is one cell of the simulation grid. Height and Velocity hold the
// wave state; NormalX/NormalZ hold two components of the packed surface
// normal. The consumer reconstructs NormalY as sqrt(1 - x^2 - z^2).
type Texel struct {
	Height   float32
	Velocity float32
	NormalX  float32
	NormalZ  float32
}

// Field is a square grid of texels. Consumers receive it read-only; every
// mutation goes through a full-grid pass on the owning Simulation.
type Field struct {
	size   int
	texels []Texel
}

func newField(size int) *Field {
	return &Field{size: size, texels: make([]Texel, size*size)}
}

// Size returns the grid edge length in texels.
func (f *Field) Size() int { return f.size }

// At returns the texel at (x, y) with clamp-to-edge boundary handling, the
// same policy applied to neighbor samples inside the solver passes.
func (f *Field) At(x, y int) Texel {
	return f.texels[f.idx(clampi(x, 0, f.size-1), clampi(y, 0, f.size-1))]
}

func (f *Field) idx(x, y int) int { return y*f.size + x }

// bufferPair double-buffers the field. Every pass reads the full previous
// snapshot from read and writes a disjoint output into write; swap exchanges
// the roles in O(1). In-place updates would let freshly written neighbors
// leak into later stencil reads, so no pass ever mutates read.
type bufferPair struct {
	read  *Field
	write *Field
}

func newBufferPair(size int) *bufferPair {
	return &bufferPair{read: newField(size), write: newField(size)}
}

func (b *bufferPair) swap() {
	b.read, b.write = b.write, b.read
}

func clampi(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
