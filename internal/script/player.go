package script

import "errors"

// Player owns one Program timeline and emits hooks as the clock crosses
// events and cues. Tick is driven by the caller at the frame rate, so a
// scripted run is exactly as deterministic as the simulation itself.
type Player struct {
	State PlayerState

	prog    Program
	nowS    float64
	nextEvt int
	nextCue int

	hooks Hooks
}

// NewPlayer constructs a Player with the provided hooks.
func NewPlayer(h Hooks) *Player {
	return &Player{State: Idle, hooks: h}
}

// Load replaces the current program and resets the clock.
func (p *Player) Load(prog Program) error {
	if len(prog.Events) == 0 && len(prog.Cues) == 0 && len(prog.Params) == 0 {
		return errors.New("script: program is empty")
	}
	if prog.DurationS <= 0 {
		prog.DurationS = tailTime(prog)
	}
	if prog.DurationS <= 0 {
		return errors.New("script: program has no duration")
	}
	p.prog = prog
	p.rewind()
	p.State = Idle
	return nil
}

// Start moves to Running and fires any cue at t=0.
func (p *Player) Start() {
	if p.State == Running {
		return
	}
	if p.State == Idle {
		p.rewind()
	}
	p.State = Running
	p.fireUpTo(0)
}

func (p *Player) Pause() { p.State = Paused }

func (p *Player) Resume() {
	if p.State == Paused {
		p.State = Running
	}
}

// Stop stops and resets to the start.
func (p *Player) Stop() {
	p.State = Idle
	p.rewind()
}

// Seek jumps to absolute program time t without firing skipped events.
func (p *Player) Seek(t float64) {
	if t < 0 {
		t = 0
	}
	if t >= p.prog.DurationS {
		t = p.prog.DurationS
	}
	p.nowS = t
	p.nextEvt = 0
	for p.nextEvt < len(p.prog.Events) && p.prog.Events[p.nextEvt].T < t {
		p.nextEvt++
	}
	p.nextCue = 0
	for p.nextCue < len(p.prog.Cues) && p.prog.Cues[p.nextCue].T < t {
		p.nextCue++
	}
}

// Tick advances the player by dt seconds, firing crossed events and cues
// and re-evaluating parameter envelopes.
func (p *Player) Tick(dt float64) {
	if p.State != Running || dt <= 0 {
		return
	}
	p.nowS += dt
	p.fireUpTo(p.nowS)

	for name, env := range p.prog.Params {
		if p.hooks.SetParam != nil {
			p.hooks.SetParam(name, env.Eval(p.nowS))
		}
	}

	if p.nowS >= p.prog.DurationS {
		if p.prog.Loop {
			p.nowS -= p.prog.DurationS
			p.nextEvt = 0
			p.nextCue = 0
			p.fireUpTo(p.nowS)
			return
		}
		p.State = Idle
	}
}

func (p *Player) rewind() {
	p.nowS = 0
	p.nextEvt = 0
	p.nextCue = 0
}

func (p *Player) fireUpTo(t float64) {
	for p.nextCue < len(p.prog.Cues) && p.prog.Cues[p.nextCue].T <= t {
		c := p.prog.Cues[p.nextCue]
		if p.hooks.SetScene != nil {
			p.hooks.SetScene(c.Scene, c.Preset)
		}
		p.nextCue++
	}
	for p.nextEvt < len(p.prog.Events) && p.prog.Events[p.nextEvt].T <= t {
		e := p.prog.Events[p.nextEvt]
		if p.hooks.QueueDrop != nil {
			p.hooks.QueueDrop(e.U, e.V, e.Radius, e.Strength)
		}
		p.nextEvt++
	}
}

func tailTime(prog Program) float64 {
	var last float64
	if n := len(prog.Events); n > 0 && prog.Events[n-1].T > last {
		last = prog.Events[n-1].T
	}
	if n := len(prog.Cues); n > 0 && prog.Cues[n-1].T > last {
		last = prog.Cues[n-1].T
	}
	for _, env := range prog.Params {
		if n := len(env.Keys); n > 0 && env.Keys[n-1].T > last {
			last = env.Keys[n-1].T
		}
	}
	return last
}
