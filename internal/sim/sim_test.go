package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// captureConsumer records the most recent finalized field.
type captureConsumer struct {
	frames int
	last   *Field
}

func (c *captureConsumer) FrameReady(f *Field) {
	c.frames++
	c.last = f
}

func newTestSim(t *testing.T, size int) (*Simulation, *captureConsumer) {
	t.Helper()
	s, err := New(Config{Size: size})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	c := &captureConsumer{}
	s.Attach(c)
	return s, c
}

// energy sums h^2 + v^2 over the whole grid.
func energy(f *Field) float64 {
	var e float64
	for _, tx := range f.texels {
		e += float64(tx.Height)*float64(tx.Height) + float64(tx.Velocity)*float64(tx.Velocity)
	}
	return e
}

func TestZeroFieldIsFixedPoint(t *testing.T) {
	s, c := newTestSim(t, 32)
	for i := 0; i < 10; i++ {
		if err := s.AdvanceFrame(); err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
	}
	for i, tx := range c.last.texels {
		if tx.Height != 0 || tx.Velocity != 0 {
			t.Fatalf("texel %d drifted from zero: %#v", i, tx)
		}
	}
}

func TestInjectionLocality(t *testing.T) {
	s, _ := newTestSim(t, 64)
	d := Drop{CenterU: 0.5, CenterV: 0.5, Radius: 0.1, Strength: 1}
	s.inject(d)
	s.buf.swap()

	n := s.Field().Size()
	hit := false
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			u := (float64(x) + 0.5) / float64(n)
			v := (float64(y) + 0.5) / float64(n)
			dist := math.Hypot(u-0.5, v-0.5)
			h := s.Field().At(x, y).Height
			if dist >= d.Radius {
				if h != 0 {
					t.Fatalf("texel (%d,%d) at dist %.3f outside radius has height %g", x, y, dist, h)
				}
			} else if h > 0 {
				hit = true
			}
		}
	}
	if !hit {
		t.Fatal("no texel inside the radius was raised")
	}
}

func TestSingleDropOnSmallGrid(t *testing.T) {
	// 4x4 grid, one drop at the center: the four texels nearest (0.5,0.5)
	// end the frame positive and <= strength, texels outside the radius
	// that have no raised neighbor stay exactly zero.
	s, c := newTestSim(t, 4)
	if err := s.QueueDrop(0.5, 0.5, 0.3, 1.0); err != nil {
		t.Fatalf("queue: %v", err)
	}
	if err := s.AdvanceFrame(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	for _, xy := range [][2]int{{1, 1}, {1, 2}, {2, 1}, {2, 2}} {
		h := c.last.At(xy[0], xy[1]).Height
		if h <= 0 || h > 1 {
			t.Fatalf("center texel %v height %g outside (0,1]", xy, h)
		}
	}
	for _, xy := range [][2]int{{0, 0}, {3, 0}, {0, 3}, {3, 3}} {
		if h := c.last.At(xy[0], xy[1]).Height; h != 0 {
			t.Fatalf("corner texel %v moved on frame one: %g", xy, h)
		}
	}
}

func TestEnergyDecays(t *testing.T) {
	s, _ := newTestSim(t, 64)
	s.inject(Drop{CenterU: 0.5, CenterV: 0.5, Radius: 0.05, Strength: 2})
	s.buf.swap()
	e0 := energy(s.Field())
	if e0 <= 0 {
		t.Fatal("injection added no energy")
	}

	c := &captureConsumer{}
	s.Attach(c)
	var e100, e500 float64
	for i := 1; i <= 2000; i++ {
		if err := s.AdvanceFrame(); err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
		switch i {
		case 100:
			e100 = energy(c.last)
		case 500:
			e500 = energy(c.last)
		}
	}
	eEnd := energy(c.last)

	if e500 >= e100 {
		t.Fatalf("energy not decaying: e100=%g e500=%g", e100, e500)
	}
	if eEnd >= 0.01*e0 {
		t.Fatalf("residual energy %g not below 1%% of %g", eEnd, e0)
	}
}

func TestNormalsStayUnitLength(t *testing.T) {
	s, c := newTestSim(t, 32)
	_ = s.QueueDrop(0.3, 0.7, 0.2, 3.0)
	_ = s.QueueDrop(0.8, 0.2, 0.1, -2.0)
	for i := 0; i < 20; i++ {
		if err := s.AdvanceFrame(); err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
	}
	for i, tx := range c.last.texels {
		m := float64(tx.NormalX)*float64(tx.NormalX) + float64(tx.NormalZ)*float64(tx.NormalZ)
		if m > 1+1e-6 {
			t.Fatalf("texel %d packed normal magnitude %g exceeds 1", i, m)
		}
	}
}

func TestFlatSurfaceNormalsPointUp(t *testing.T) {
	s, c := newTestSim(t, 8)
	if err := s.AdvanceFrame(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	for i, tx := range c.last.texels {
		if tx.NormalX != 0 || tx.NormalZ != 0 {
			t.Fatalf("texel %d normal (%g,%g) not straight up on a flat field", i, tx.NormalX, tx.NormalZ)
		}
	}
}

func TestDeterministicAcrossRuns(t *testing.T) {
	run := func(workers int) *Field {
		s, err := New(Config{Size: 48, Workers: workers})
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		c := &captureConsumer{}
		s.Attach(c)
		_ = s.QueueDrop(0.25, 0.25, 0.15, 1.5)
		for i := 0; i < 50; i++ {
			if i == 10 {
				_ = s.QueueDrop(0.7, 0.6, 0.1, -1.0)
			}
			if err := s.AdvanceFrame(); err != nil {
				t.Fatalf("advance %d: %v", i, err)
			}
		}
		return c.last
	}
	a := run(1)
	b := run(4)
	for i := range a.texels {
		if a.texels[i] != b.texels[i] {
			t.Fatalf("texel %d differs between runs: %#v vs %#v", i, a.texels[i], b.texels[i])
		}
	}
}

func TestDropValidation(t *testing.T) {
	s, c := newTestSim(t, 16)
	assert.ErrorIs(t, s.QueueDrop(0.5, 0.5, 0, 1), ErrInvalidDrop)
	assert.ErrorIs(t, s.QueueDrop(0.5, 0.5, -0.1, 1), ErrInvalidDrop)

	// The rejected drops left nothing queued.
	if err := s.AdvanceFrame(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	assert.Zero(t, energy(c.last), "rejected drops must not touch the grid")
}

func TestAdvanceRequiresConsumer(t *testing.T) {
	s, err := New(Config{Size: 16})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_ = s.QueueDrop(0.5, 0.5, 0.2, 1)
	assert.ErrorIs(t, s.AdvanceFrame(), ErrNoConsumer)
	assert.Zero(t, energy(s.Field()), "failed advance must leave grids untouched")

	// Attaching afterwards recovers the same queued drop.
	c := &captureConsumer{}
	s.Attach(c)
	if err := s.AdvanceFrame(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	assert.Positive(t, energy(c.last))
}

func TestClosedSimulationRejectsUse(t *testing.T) {
	s, _ := newTestSim(t, 16)
	s.Close()
	assert.ErrorIs(t, s.QueueDrop(0.5, 0.5, 0.2, 1), ErrClosed)
	assert.ErrorIs(t, s.AdvanceFrame(), ErrClosed)
}

func TestConfigBounds(t *testing.T) {
	if _, err := New(Config{Size: 1}); err == nil {
		t.Fatal("expected error for degenerate grid size")
	}
	s, err := New(Config{})
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	assert.Equal(t, 256, s.Field().Size())
}
