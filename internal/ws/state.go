// Package ws exposes the simulation over websockets: a frame channel
// broadcasting rendered frames, a control channel accepting drop requests
// and parameter changes, and a diagnostics channel. Pointer coordinates
// arriving on the control channel are expected already projected into the
// grid's [0,1]x[0,1] UV space.
package ws

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	diag "github.com/shifatmasud/watersim/internal/diagnostics"
	"github.com/shifatmasud/watersim/internal/render"
	"github.com/shifatmasud/watersim/internal/sim"
)

// State owns the frame loop and the connected clients. It doubles as the
// engine's render.Output: every rendered frame is packed to RGB bytes and
// broadcast to the frame clients.
type State struct {
	mu           sync.RWMutex
	Sim          *sim.Simulation
	Eng          *render.Engine
	Reg          *render.Registry
	FPS          int
	DropRadius   float64
	DropStrength float64

	size        int
	rgb         []byte
	frameID     uint64
	startTime   time.Time
	clients     map[*websocket.Conn]bool
	diagClients map[*websocket.Conn]bool
}

func NewState(s *sim.Simulation, reg *render.Registry, fps int, dropRadius, dropStrength float64) *State {
	n := s.Field().Size()
	return &State{
		Sim:          s,
		Reg:          reg,
		FPS:          fps,
		DropRadius:   dropRadius,
		DropStrength: dropStrength,
		size:         n,
		rgb:          make([]byte, n*n*3),
		startTime:    time.Now(),
		clients:      map[*websocket.Conn]bool{},
		diagClients:  map[*websocket.Conn]bool{},
	}
}

// Write implements render.Output.
func (s *State) Write(buf []render.Color) error {
	s.mu.Lock()
	for i := range buf {
		s.rgb[i*3+0] = clamp255(buf[i].R)
		s.rgb[i*3+1] = clamp255(buf[i].G)
		s.rgb[i*3+2] = clamp255(buf[i].B)
	}
	s.frameID++
	id := s.frameID
	frame := append([]byte{}, s.rgb...)
	s.mu.Unlock()

	s.broadcastFrame(id, frame)
	return nil
}

// RunLoop steps the engine at the configured FPS until ctx is canceled.
func (s *State) RunLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second / time.Duration(maxi(1, s.FPS)))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Eng.RenderOnce(-1); err != nil {
				if errors.Is(err, sim.ErrClosed) {
					return
				}
				log.Error().Err(err).Msg("render frame")
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 8192,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandleFramesWS subscribes a client to the rendered frame stream.
func (s *State) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()
	s.sendTopology(conn)

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// HandleDiagWS subscribes a client to diagnostics.
func (s *State) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.diagClients[conn] = true
	s.mu.Unlock()
	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.diagClients, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// controlMsg is one client control message; fields are optional and
// independent.
type controlMsg struct {
	Drop  *sim.Drop `json:"drop,omitempty"`
	Param *struct {
		Name  string  `json:"name"`
		Value float64 `json:"value"`
	} `json:"param,omitempty"`
	Scene  string `json:"scene,omitempty"`
	Preset string `json:"preset,omitempty"`
}

// HandleControlWS reads control messages until the client disconnects.
func (s *State) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg controlMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			s.pushDiag(diag.Diagnostic{
				Severity: diag.Warn, Code: "CONTROL.PARSE", Summary: "Malformed control message",
				Detail: err.Error(),
			})
			continue
		}
		s.applyControl(msg)
	}
}

func (s *State) applyControl(msg controlMsg) {
	if msg.Drop != nil {
		d := *msg.Drop
		if d.Radius == 0 {
			d.Radius = s.DropRadius
		}
		if d.Strength == 0 {
			d.Strength = s.DropStrength
		}
		if err := s.Sim.QueueDrop(d.CenterU, d.CenterV, d.Radius, d.Strength); err != nil {
			s.pushDiag(diag.Diagnostic{
				Severity: diag.Warn, Code: "DROP.INVALID", Summary: "Drop rejected",
				Detail:   err.Error(),
				Evidence: map[string]any{"u": d.CenterU, "v": d.CenterV, "radius": d.Radius},
			})
		}
	}
	if msg.Param != nil {
		switch msg.Param.Name {
		case "Damping":
			s.Sim.SetDamping(msg.Param.Value)
		case "Stiffness":
			s.Sim.SetStiffness(msg.Param.Value)
		default:
			s.Eng.SetParam(msg.Param.Name, msg.Param.Value)
		}
	}
	if msg.Scene != "" {
		if err := s.Eng.SetScene(msg.Scene, msg.Preset, s.Reg); err != nil {
			s.pushDiag(diag.Diagnostic{
				Severity: diag.Warn, Code: "SCENE.UNKNOWN", Summary: "Scene not found",
				Evidence: map[string]any{"scene": msg.Scene},
			})
		}
	}
}

// HandleHealth reports loop and session stats as JSON.
func (s *State) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resp := map[string]any{
		"frame_id": s.frameID,
		"uptime_s": time.Since(s.startTime).Seconds(),
		"size":     s.size,
		"fps":      s.FPS,
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *State) sendTopology(conn *websocket.Conn) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	top := map[string]any{
		"size":   s.size,
		"fps":    s.FPS,
		"scenes": s.Reg.List(),
	}
	b, _ := json.Marshal(top)
	_ = conn.WriteMessage(websocket.TextMessage, b)
}

func (s *State) broadcastFrame(id uint64, rgb []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.clients) == 0 {
		return
	}
	type frame struct {
		T       int64  `json:"t"`
		FrameID uint64 `json:"frame_id"`
		RGB     string `json:"rgb"`
	}
	b, _ := json.Marshal(frame{
		T:       time.Now().UnixNano(),
		FrameID: id,
		RGB:     base64.StdEncoding.EncodeToString(rgb),
	})
	for c := range s.clients {
		c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("write frame")
		}
	}
}

func (s *State) pushDiag(d diag.Diagnostic) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, _ := json.Marshal(d)
	for c := range s.diagClients {
		c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		_ = c.WriteMessage(websocket.TextMessage, b)
	}
}

func clamp255(x float32) byte {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 255
	}
	return byte(x * 255.0)
}

func maxi(a, b int) int {
	if a > b {
		return a
	}
	return b
}
