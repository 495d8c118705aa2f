package render

import "github.com/shifatmasud/watersim/internal/sim"

type Vec3 struct{ X, Y, Z float64 }

type Color struct{ R, G, B float32 }

// Uniforms carries the shared shading parameters handed to every scene.
type Uniforms struct {
	TimeScale float64
	LightDir  Vec3
	Params    map[string]float64
	Bools     map[string]bool
}

// Scene shades a finalized height field into a framebuffer. dst is laid out
// row-major, one color per texel, and must not retain the field past the
// call; the grid identity changes every frame.
type Scene interface {
	Name() string
	Presets() []string
	ApplyPreset(name string, u *Uniforms)
	Render(dst []Color, f *sim.Field, t float64, u *Uniforms)
}

// Output abstracts the frame sink (websocket broadcast, window surface,
// discard for headless runs).
type Output interface {
	Write([]Color) error
}

// Registry maps scene names to implementations.
type Registry struct{ m map[string]Scene }

func NewRegistry() *Registry { return &Registry{m: map[string]Scene{}} }

func (r *Registry) Register(sc Scene) {
	if sc == nil {
		return
	}
	r.m[sc.Name()] = sc
}

func (r *Registry) Get(name string) (Scene, bool) { sc, ok := r.m[name]; return sc, ok }

func (r *Registry) List() []string {
	out := make([]string, 0, len(r.m))
	for k := range r.m {
		out = append(out, k)
	}
	return out
}
