package main

import (
	"context"
	"flag"
	"net/http"

	"go.uber.org/zap"

	"github.com/milk9111/grapple-server/grapple"
	"github.com/milk9111/grapple-server/rules"
	"github.com/milk9111/grapple-server/server"
	"github.com/milk9111/grapple-server/tuning"
	"github.com/milk9111/grapple-server/world"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	configPath := flag.String("config", "", "tuning YAML file (defaults when empty)")
	arenaPath := flag.String("arena", "", "arena YAML file")
	rulesPath := flag.String("rules", "", "tengo target-filter script")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logger := newLogger(*debug)
	defer func() { _ = logger.Sync() }()
	log := logger.Sugar()

	cfg := tuning.Default()
	if *configPath != "" {
		loaded, err := tuning.Load(*configPath)
		if err != nil {
			log.Fatalw("load tuning", "error", err)
		}
		cfg = loaded
	}

	w := world.New()
	arena := defaultArena()
	if *arenaPath != "" {
		loaded, err := world.LoadArena(*arenaPath)
		if err != nil {
			log.Fatalw("load arena", "error", err)
		}
		arena = loaded
	}
	if err := w.Build(arena); err != nil {
		log.Fatalw("build arena", "error", err)
	}

	engine := grapple.NewEngine(w, cfg, log)
	if *rulesPath != "" {
		filter, err := rules.LoadFilter(*rulesPath)
		if err != nil {
			log.Fatalw("load rules", "error", err)
		}
		engine.SetTargetFilter(filter)
	}

	hub := server.NewHub(w, engine, arena.Spawn.Vector(), log)

	if *configPath != "" {
		watchTuning(hub, *configPath, log)
	}

	go hub.Run(context.Background(), cfg.TickRate)

	http.HandleFunc("/ws", hub.HandleWS)
	log.Infow("listening", "addr", *addr, "tick_rate", cfg.TickRate)
	if err := http.ListenAndServe(*addr, nil); err != nil {
		log.Fatalw("serve", "error", err)
	}
}

func newLogger(debug bool) *zap.Logger {
	if debug {
		logger, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		return logger
	}
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	return logger
}

func watchTuning(hub *server.Hub, path string, log *zap.SugaredLogger) {
	watcher, err := tuning.NewWatcher(path)
	if err != nil {
		log.Warnw("tuning watcher unavailable", "error", err)
		return
	}
	go func() {
		for {
			select {
			case name, ok := <-watcher.Events:
				if !ok {
					return
				}
				cfg, err := tuning.Load(name)
				if err != nil {
					log.Warnw("tuning reload failed", "file", name, "error", err)
					continue
				}
				hub.SetConfig(cfg)
				log.Infow("tuning reloaded", "file", name)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warnw("tuning watcher error", "error", err)
			}
		}
	}()
}

// defaultArena is a small test arena: a floor, two grapple walls, a ceiling,
// and one non-grappleable panel.
func defaultArena() world.ArenaSpec {
	return world.ArenaSpec{
		Spawn: world.Vec{X: 0, Y: 0},
		Surfaces: []world.SurfaceSpec{
			{Box: &world.BoxSpec{X: 0, Y: 120, Width: 800, Height: 20}},
			{Box: &world.BoxSpec{X: -400, Y: -100, Width: 20, Height: 500}},
			{Box: &world.BoxSpec{X: 400, Y: -100, Width: 20, Height: 500}},
			{Box: &world.BoxSpec{X: 0, Y: -300, Width: 800, Height: 20}},
			{Box: &world.BoxSpec{X: 0, Y: -120, Width: 120, Height: 20}, Tags: []string{"nograpple"}},
		},
	}
}
