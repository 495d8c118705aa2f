package ws

import (
	"testing"

	"github.com/shifatmasud/watersim/internal/render"
	"github.com/shifatmasud/watersim/internal/render/scenes/depth"
	"github.com/shifatmasud/watersim/internal/sim"
)

func newTestState(t *testing.T) *State {
	t.Helper()
	s, err := sim.New(sim.Config{Size: 8})
	if err != nil {
		t.Fatalf("sim: %v", err)
	}
	reg := render.NewRegistry()
	sc := depth.New("depth")
	reg.Register(sc)

	st := NewState(s, reg, 30, 0.2, 1.0)
	u := &render.Uniforms{TimeScale: 1, Params: map[string]float64{}, Bools: map[string]bool{}}
	eng, err := render.NewEngine(s, st, sc, u)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	st.Eng = eng
	st.Sim = s
	return st
}

func TestControlDropReachesSimulation(t *testing.T) {
	st := newTestState(t)
	st.applyControl(controlMsg{Drop: &sim.Drop{CenterU: 0.5, CenterV: 0.5}})

	if err := st.Eng.RenderOnce(0); err != nil {
		t.Fatalf("render: %v", err)
	}
	f := st.Sim.Field()
	var raised bool
	for y := 0; y < f.Size(); y++ {
		for x := 0; x < f.Size(); x++ {
			if f.At(x, y).Height > 0 {
				raised = true
			}
		}
	}
	if !raised {
		t.Fatal("drop control message did not disturb the field")
	}
}

func TestControlInvalidDropIsRejectedCleanly(t *testing.T) {
	st := newTestState(t)
	st.applyControl(controlMsg{Drop: &sim.Drop{CenterU: 0.5, CenterV: 0.5, Radius: -1}})

	if err := st.Eng.RenderOnce(0); err != nil {
		t.Fatalf("render: %v", err)
	}
	f := st.Sim.Field()
	for y := 0; y < f.Size(); y++ {
		for x := 0; x < f.Size(); x++ {
			if f.At(x, y).Height != 0 {
				t.Fatal("rejected drop mutated the field")
			}
		}
	}
}

func TestFrameBroadcastPacksFrame(t *testing.T) {
	st := newTestState(t)
	if err := st.Eng.RenderOnce(0); err != nil {
		t.Fatalf("render: %v", err)
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	if st.frameID != 1 {
		t.Fatalf("expected frame id 1, got %d", st.frameID)
	}
	if len(st.rgb) != 8*8*3 {
		t.Fatalf("rgb buffer wrong size: %d", len(st.rgb))
	}
	// The depth scene maps the rest surface to a non-black blue tone.
	if st.rgb[2] == 0 {
		t.Fatal("expected non-black frame bytes")
	}
}

func TestControlUnknownSceneKeepsRunning(t *testing.T) {
	st := newTestState(t)
	st.applyControl(controlMsg{Scene: "nope"})
	if err := st.Eng.RenderOnce(0); err != nil {
		t.Fatalf("render after bad scene: %v", err)
	}
}
