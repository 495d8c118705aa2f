// Command watersim runs the water-surface simulation behind a websocket
// server: clients stream rendered frames and post pointer drops already
// projected into the grid's UV space.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/shifatmasud/watersim/internal/config"
	"github.com/shifatmasud/watersim/internal/render"
	"github.com/shifatmasud/watersim/internal/render/scenes/depth"
	"github.com/shifatmasud/watersim/internal/render/scenes/shaded"
	"github.com/shifatmasud/watersim/internal/sim"
	"github.com/shifatmasud/watersim/internal/ws"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config (optional)")
		addr       = flag.String("addr", "", "listen address override")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("load config")
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	s, err := sim.New(sim.Config{
		Size:      cfg.Sim.Size,
		Stiffness: cfg.Sim.Stiffness,
		Damping:   cfg.Sim.Damping,
		Workers:   cfg.Sim.Workers,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("create simulation")
	}
	defer s.Close()

	reg := render.NewRegistry()
	reg.Register(shaded.New("shaded"))
	reg.Register(depth.New("depth"))
	active, ok := reg.Get(cfg.Scene)
	if !ok {
		log.Fatal().Str("scene", cfg.Scene).Msg("unknown scene")
	}

	st := ws.NewState(s, reg, cfg.FPS, cfg.Drop.Radius, cfg.Drop.Strength)
	u := &render.Uniforms{TimeScale: 1, Params: map[string]float64{}, Bools: map[string]bool{}}
	eng, err := render.NewEngine(s, st, active, u)
	if err != nil {
		log.Fatal().Err(err).Msg("create engine")
	}
	if cfg.Preset != "" {
		active.ApplyPreset(cfg.Preset, u)
	}
	st.Eng = eng

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go st.RunLoop(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/frames", st.HandleFramesWS)
	mux.HandleFunc("/ws/control", st.HandleControlWS)
	mux.HandleFunc("/ws/diag", st.HandleDiagWS)
	mux.HandleFunc("/healthz", st.HandleHealth)

	log.Info().
		Str("addr", cfg.Server.Addr).
		Int("size", cfg.Sim.Size).
		Int("fps", cfg.FPS).
		Str("scene", cfg.Scene).
		Msg("watersim listening")
	if err := http.ListenAndServe(cfg.Server.Addr, mux); err != nil {
		log.Fatal().Err(err).Msg("http server")
	}
}
