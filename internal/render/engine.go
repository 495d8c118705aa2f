package render

import (
	"errors"
	"time"

	"github.com/shifatmasud/watersim/internal/sim"
)

// Engine drives the simulation one frame at a time and shades the resulting
// field with the active Scene, optionally crossfading toward an armed next
// scene, then applies post-processing and writes to the output.
type Engine struct {
	Sim *sim.Simulation
	Out Output

	// active + next scene and uniforms
	SActive Scene
	SNext   Scene
	UActive *Uniforms
	UNext   *Uniforms

	// framebuffers
	BufA  []Color // active
	BufB  []Color // next (during crossfade)
	Mixed []Color // mixed + post

	field *sim.Field

	// crossfade
	alpha  float64
	fading bool

	t0   time.Time
	post PostPipeline

	// metrics (last durations in ms)
	Last struct {
		SimMS    float64
		RenderMS float64
		TotalMS  float64
	}
}

// NewEngine wires the engine as the simulation's frame consumer and
// allocates framebuffers matching the grid.
func NewEngine(s *sim.Simulation, out Output, sc Scene, u *Uniforms) (*Engine, error) {
	if s == nil {
		return nil, errors.New("render: nil simulation")
	}
	n := s.Field().Size()
	e := &Engine{
		Sim:     s,
		Out:     out,
		SActive: sc,
		UActive: u,
		BufA:    make([]Color, n*n),
		BufB:    make([]Color, n*n),
		Mixed:   make([]Color, n*n),
		t0:      time.Now(),
		post:    PostPipeline{ToneMap: DefaultToneMap},
	}
	s.Attach(e)
	return e, nil
}

// FrameReady implements sim.Consumer.
func (e *Engine) FrameReady(f *sim.Field) { e.field = f }

// Now returns seconds since engine start scaled by TimeScale.
func (e *Engine) Now() float64 {
	scale := 1.0
	if e.UActive != nil && e.UActive.TimeScale != 0 {
		scale = e.UActive.TimeScale
	}
	return time.Since(e.t0).Seconds() * scale
}

// RenderOnce advances the simulation by one frame and renders it at
// absolute time t (seconds). If t < 0, it uses Engine.Now().
func (e *Engine) RenderOnce(t float64) error {
	if t < 0 {
		t = e.Now()
	}
	start := time.Now()

	if err := e.Sim.AdvanceFrame(); err != nil {
		return err
	}
	e.Last.SimMS = float64(time.Since(start).Microseconds()) / 1000.0

	renderStart := time.Now()
	if e.SActive != nil {
		e.SActive.Render(e.BufA, e.field, t, e.UActive)
	}
	if e.fading && e.SNext != nil {
		e.SNext.Render(e.BufB, e.field, t, e.UNext)
		Mix(e.Mixed, e.BufA, e.BufB, e.alpha)
	} else {
		copy(e.Mixed, e.BufA)
	}

	if e.post.ToneMap != nil {
		e.post.ToneMap(e.Mixed, e.UActive)
	}
	e.Last.RenderMS = float64(time.Since(renderStart).Microseconds()) / 1000.0

	if e.Out != nil {
		if err := e.Out.Write(e.Mixed); err != nil {
			return err
		}
	}
	e.Last.TotalMS = float64(time.Since(start).Microseconds()) / 1000.0
	return nil
}

// SetPost replaces the post pipeline.
func (e *Engine) SetPost(p PostPipeline) { e.post = p }

// SetScene makes the named scene active immediately. If preset != "",
// ApplyPreset is called with the active uniforms.
func (e *Engine) SetScene(name, preset string, reg *Registry) error {
	if reg == nil {
		return errors.New("render: registry is nil")
	}
	sc, ok := reg.Get(name)
	if !ok {
		return errors.New("render: scene not found: " + name)
	}
	e.SActive = sc
	if preset != "" {
		sc.ApplyPreset(preset, e.UActive)
	}
	e.fading = false
	e.alpha = 0
	return nil
}

// ArmNext prepares the named scene for a crossfade.
func (e *Engine) ArmNext(name, preset string, reg *Registry) error {
	if reg == nil {
		return errors.New("render: registry is nil")
	}
	sc, ok := reg.Get(name)
	if !ok {
		return errors.New("render: scene not found: " + name)
	}
	e.SNext = sc
	if e.UNext == nil {
		e.UNext = cloneUniforms(e.UActive)
	}
	if preset != "" {
		sc.ApplyPreset(preset, e.UNext)
	}
	e.fading = true
	return nil
}

// SetCrossfade sets the mix alpha in [0,1]; 1 promotes the armed scene.
func (e *Engine) SetCrossfade(alpha float64) {
	switch {
	case alpha <= 0:
		e.alpha = 0
		e.fading = false
	case alpha >= 1:
		e.alpha = 1
		e.fading = false
		if e.SNext != nil {
			e.SActive = e.SNext
			e.UActive = e.UNext
		}
		e.SNext = nil
	default:
		e.alpha = alpha
		e.fading = true
	}
}

// SetParam updates the active uniforms.
func (e *Engine) SetParam(name string, v float64) {
	if e.UActive == nil {
		return
	}
	if e.UActive.Params == nil {
		e.UActive.Params = map[string]float64{}
	}
	e.UActive.Params[name] = v
}

// SetBool updates the active uniforms.
func (e *Engine) SetBool(name string, b bool) {
	if e.UActive == nil {
		return
	}
	if e.UActive.Bools == nil {
		e.UActive.Bools = map[string]bool{}
	}
	e.UActive.Bools[name] = b
}

func cloneUniforms(u *Uniforms) *Uniforms {
	if u == nil {
		return &Uniforms{Params: map[string]float64{}, Bools: map[string]bool{}}
	}
	out := &Uniforms{
		TimeScale: u.TimeScale,
		LightDir:  u.LightDir,
		Params:    map[string]float64{},
		Bools:     map[string]bool{},
	}
	for k, v := range u.Params {
		out.Params[k] = v
	}
	for k, v := range u.Bools {
		out.Bools[k] = v
	}
	return out
}
