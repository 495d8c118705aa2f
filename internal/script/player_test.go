package script

import (
	"fmt"
	"testing"
)

func TestEnvelopeEval(t *testing.T) {
	env := Envelope{Keys: []Keyframe{
		{T: 0, V: 0, Ease: "linear"},
		{T: 10, V: 10, Ease: "linear"},
	}}
	if v := env.Eval(-1); v != 0 {
		t.Fatalf("expected 0 before start, got %v", v)
	}
	if v := env.Eval(5); v != 5 {
		t.Fatalf("expected 5 at t=5, got %v", v)
	}
	if v := env.Eval(11); v != 10 {
		t.Fatalf("expected 10 after end, got %v", v)
	}
}

func TestEnvelopeEasingEndpoints(t *testing.T) {
	for _, ease := range []string{"linear", "smooth", "cubic"} {
		env := Envelope{Keys: []Keyframe{
			{T: 0, V: 2, Ease: ease},
			{T: 4, V: 6},
		}}
		if v := env.Eval(0); v != 2 {
			t.Fatalf("%s: start %v", ease, v)
		}
		if v := env.Eval(4); v != 6 {
			t.Fatalf("%s: end %v", ease, v)
		}
		mid := env.Eval(2)
		if mid <= 2 || mid >= 6 {
			t.Fatalf("%s: midpoint %v outside (2,6)", ease, mid)
		}
	}
}

func TestPlayerFiresEventsInOrder(t *testing.T) {
	var log []string
	p := NewPlayer(Hooks{
		QueueDrop: func(u, v, r, s float64) { log = append(log, fmt.Sprintf("drop %.1f,%.1f", u, v)) },
		SetScene:  func(name, preset string) { log = append(log, "scene "+name+"/"+preset) },
	})
	prog := Program{
		Version:   "ripple.v1",
		DurationS: 5,
		Cues:      []SceneCue{{T: 0, Scene: "shaded", Preset: "Noon"}},
		Events: []Event{
			{T: 1, U: 0.2, V: 0.2, Radius: 0.1, Strength: 1},
			{T: 2.5, U: 0.8, V: 0.8, Radius: 0.1, Strength: -1},
		},
	}
	if err := p.Load(prog); err != nil {
		t.Fatalf("load: %v", err)
	}
	p.Start()
	for i := 0; i < 60; i++ {
		p.Tick(0.1)
	}
	want := []string{"scene shaded/Noon", "drop 0.2,0.2", "drop 0.8,0.8"}
	if len(log) != len(want) {
		t.Fatalf("unexpected log: %#v", log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("log[%d] = %q, want %q", i, log[i], want[i])
		}
	}
	if p.State != Idle {
		t.Fatalf("player should be idle after program end, state=%s", p.State)
	}
}

func TestPlayerLoopRefires(t *testing.T) {
	drops := 0
	p := NewPlayer(Hooks{QueueDrop: func(u, v, r, s float64) { drops++ }})
	prog := Program{
		Loop:      true,
		DurationS: 1,
		Events:    []Event{{T: 0.5, U: 0.5, V: 0.5, Radius: 0.1, Strength: 1}},
	}
	if err := p.Load(prog); err != nil {
		t.Fatalf("load: %v", err)
	}
	p.Start()
	for i := 0; i < 30; i++ {
		p.Tick(0.1) // 3 seconds, three passes over the event
	}
	if drops != 3 {
		t.Fatalf("expected 3 drops across loops, got %d", drops)
	}
	if p.State != Running {
		t.Fatalf("looping player stopped: %s", p.State)
	}
}

func TestPlayerParamAutomation(t *testing.T) {
	var last float64
	p := NewPlayer(Hooks{SetParam: func(name string, v float64) {
		if name == "Damping" {
			last = v
		}
	}})
	prog := Program{
		DurationS: 2,
		Params: map[string]Envelope{
			"Damping": {Keys: []Keyframe{{T: 0, V: 0.995}, {T: 2, V: 0.9}}},
		},
	}
	if err := p.Load(prog); err != nil {
		t.Fatalf("load: %v", err)
	}
	p.Start()
	p.Tick(1)
	if last >= 0.995 || last <= 0.9 {
		t.Fatalf("midpoint automation value %v out of range", last)
	}
}

func TestPlayerSeekSkipsWithoutFiring(t *testing.T) {
	drops := 0
	p := NewPlayer(Hooks{QueueDrop: func(u, v, r, s float64) { drops++ }})
	prog := Program{
		DurationS: 10,
		Events: []Event{
			{T: 1, U: 0.1, V: 0.1, Radius: 0.1, Strength: 1},
			{T: 5, U: 0.9, V: 0.9, Radius: 0.1, Strength: 1},
		},
	}
	if err := p.Load(prog); err != nil {
		t.Fatalf("load: %v", err)
	}
	p.Start()
	p.Seek(4)
	p.Tick(1.5) // crosses only the T=5 event
	if drops != 1 {
		t.Fatalf("expected only the post-seek event, got %d drops", drops)
	}
}

func TestLoadRejectsEmptyProgram(t *testing.T) {
	p := NewPlayer(Hooks{})
	if err := p.Load(Program{}); err == nil {
		t.Fatal("expected error for empty program")
	}
}
