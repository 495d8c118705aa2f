// Package script replays scripted disturbance programs: timed drops, scene
// cues, and eased parameter automation, so a run is reproducible without an
// interactive pointer source.
package script

// Keyframe represents a value at time T (seconds) with an easing function
// that applies to the segment starting at this keyframe.
type Keyframe struct {
	T    float64 `json:"t"`
	V    float64 `json:"v"`
	Ease string  `json:"ease,omitempty"` // "linear","smooth","cubic"
}

// Envelope is a sorted list of keyframes; Eval(t) interpolates a value.
type Envelope struct {
	Keys []Keyframe `json:"keys"`
}

// Event is one scripted disturbance: at time T a drop lands at (U, V).
type Event struct {
	T        float64 `json:"t"`
	U        float64 `json:"u"`
	V        float64 `json:"v"`
	Radius   float64 `json:"radius"`
	Strength float64 `json:"strength"`
}

// SceneCue switches the active scene at time T.
type SceneCue struct {
	T      float64 `json:"t"`
	Scene  string  `json:"scene"`
	Preset string  `json:"preset,omitempty"`
}

// Program is a full scripted session. Events and Cues must be sorted by T
// ascending; Params envelopes are evaluated every tick.
type Program struct {
	Version   string              `json:"version"` // e.g. "ripple.v1"
	Loop      bool                `json:"loop,omitempty"`
	DurationS float64             `json:"durationS"`
	Events    []Event             `json:"events"`
	Cues      []SceneCue          `json:"cues,omitempty"`
	Params    map[string]Envelope `json:"params,omitempty"`
}

// PlayerState enumerates player states.
type PlayerState string

const (
	Idle    PlayerState = "idle"
	Running PlayerState = "running"
	Paused  PlayerState = "paused"
)

// Hooks are dependency-injected callbacks into the simulation and engine.
type Hooks struct {
	QueueDrop func(u, v, radius, strength float64)
	SetParam  func(name string, v float64)
	SetScene  func(name, preset string)
}
