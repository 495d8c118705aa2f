// Package sim implements a damped wave simulation on a square height field.
// The surface state lives in a double-buffered texel grid; disturbances are
// injected as radial drops, integrated with a 4-neighbor wave update, and
// finished with a normal-estimation pass so a renderer can light the
// displaced surface. It is a qualitative ripple approximation, not a fluid
// dynamics model.
package sim

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
)

var (
	// ErrInvalidDrop rejects drop requests with a non-positive radius
	// before anything is written to the grid.
	ErrInvalidDrop = errors.New("sim: drop radius must be positive")

	// ErrNoConsumer reports an AdvanceFrame call before any frame
	// consumer was attached. The grids are left unchanged.
	ErrNoConsumer = errors.New("sim: no frame consumer attached")

	// ErrClosed reports use of a simulation whose grids were released.
	ErrClosed = errors.New("sim: simulation closed")
)

// Consumer receives the finalized field once per frame, after all passes of
// that frame have run. The reference is only valid until the next
// AdvanceFrame call; the grid behind it changes identity on every swap.
type Consumer interface {
	FrameReady(f *Field)
}

// Config selects the grid resolution and solver constants. Zero values fall
// back to the defaults (256 texels, stiffness 2.0, damping 0.995).
type Config struct {
	Size      int
	Stiffness float64
	Damping   float64
	Workers   int
}

// Simulation owns the buffer pair and sequences the per-frame passes:
// pending injections, one integration step, one normal pass, in that order.
// All passes run on the goroutine calling AdvanceFrame; only the drop queue
// is safe to feed from other goroutines.
type Simulation struct {
	buf       *bufferPair
	stiffness float32
	damping   float32
	workers   int

	mu       sync.Mutex
	pending  []Drop
	consumer Consumer
	closed   bool
}

// New allocates a simulation with two zeroed size x size grids.
func New(cfg Config) (*Simulation, error) {
	if cfg.Size == 0 {
		cfg.Size = 256
	}
	if cfg.Size < 2 {
		return nil, fmt.Errorf("sim: grid size %d too small", cfg.Size)
	}
	if cfg.Stiffness == 0 {
		cfg.Stiffness = DefaultStiffness
	}
	if cfg.Damping == 0 {
		cfg.Damping = DefaultDamping
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return &Simulation{
		buf:       newBufferPair(cfg.Size),
		stiffness: float32(cfg.Stiffness),
		damping:   float32(cfg.Damping),
		workers:   cfg.Workers,
	}, nil
}

// Attach registers the consumer that receives each finished frame.
func (s *Simulation) Attach(c Consumer) {
	s.mu.Lock()
	s.consumer = c
	s.mu.Unlock()
}

// QueueDrop validates a disturbance and queues it for the next frame.
// CenterU/V are in [0,1] UV space; strength may be negative.
func (s *Simulation) QueueDrop(centerU, centerV, radius, strength float64) error {
	if radius <= 0 {
		return ErrInvalidDrop
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.pending = append(s.pending, Drop{
		CenterU:  centerU,
		CenterV:  centerV,
		Radius:   radius,
		Strength: strength,
	})
	return nil
}

// AdvanceFrame runs one frame: every queued drop as its own inject pass,
// exactly one integration step, exactly one normal pass, each followed by a
// buffer swap, then hands the read grid to the attached consumer. The
// ordering is a correctness requirement: injecting after stepping would lag
// visual feedback a frame, and normals computed before the step would shade
// last frame's geometry.
func (s *Simulation) AdvanceFrame() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	c := s.consumer
	if c == nil {
		// Queued drops stay pending for the next valid frame.
		s.mu.Unlock()
		return ErrNoConsumer
	}
	drops := s.pending
	s.pending = nil
	stiff, damp := s.stiffness, s.damping
	s.mu.Unlock()
	for _, d := range drops {
		s.inject(d)
		s.buf.swap()
	}
	s.step(stiff, damp)
	s.buf.swap()
	s.updateNormals()
	s.buf.swap()

	c.FrameReady(s.buf.read)
	return nil
}

// Field returns the most recently finalized grid, read-only by contract.
// Valid until the next AdvanceFrame call.
func (s *Simulation) Field() *Field { return s.buf.read }

// SetStiffness tunes the wave propagation factor between frames.
func (s *Simulation) SetStiffness(v float64) {
	s.mu.Lock()
	s.stiffness = float32(v)
	s.mu.Unlock()
}

// SetDamping tunes the per-step velocity retention between frames.
func (s *Simulation) SetDamping(v float64) {
	s.mu.Lock()
	s.damping = float32(v)
	s.mu.Unlock()
}

// Close releases both grids. Further use returns ErrClosed.
func (s *Simulation) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.buf = nil
	s.pending = nil
}

// forEachRow fans fn out over the row range across the worker count. Every
// pass writes disjoint rows of the write buffer from an immutable read
// snapshot, so static chunking is race-free and deterministic.
func (s *Simulation) forEachRow(fn func(y int)) {
	n := s.buf.read.size
	workers := s.workers
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for y := 0; y < n; y++ {
			fn(y)
		}
		return
	}
	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for y := lo; y < hi; y++ {
				fn(y)
			}
		}(start, end)
	}
	wg.Wait()
}
