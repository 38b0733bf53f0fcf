// Command hamletd serves the simulation over HTTP and WebSocket.
package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/talgya/hamlet/internal/api"
	"github.com/talgya/hamlet/internal/engine"
	"github.com/talgya/hamlet/internal/journal"
	"github.com/talgya/hamlet/internal/llm"
	"github.com/talgya/hamlet/internal/planner"
	"github.com/talgya/hamlet/internal/world"
)

func main() {
	dataDir := flag.String("data", "data", "world data directory")
	configPath := flag.String("config", "config/llm.json", "LLM config path")
	journalPath := flag.String("journal", "data/hamlet.db", "run journal path (empty disables)")
	port := flag.Int("port", 8080, "HTTP port")
	seed := flag.Int64("seed", 1, "engine PRNG seed")
	playerID := flag.String("player", "", "agent id controlled by the player")
	autoplay := flag.Duration("autoplay", 0, "run an NPC round this often (0 disables)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	w, err := world.Load(*dataDir)
	if err != nil {
		slog.Error("failed to load world", "error", err)
		os.Exit(1)
	}
	slog.Info("world loaded",
		"agents", len(w.Agents),
		"locations", len(w.LocationsStatic),
		"items", len(w.Items),
	)

	cfg := llm.LoadConfig(*configPath)
	client := llm.NewClient(cfg)

	var db *journal.DB
	if *journalPath != "" {
		db, err = journal.Open(*journalPath)
		if err != nil {
			slog.Error("failed to open journal", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		client.SetTracer(db)
		slog.Info("journal opened", "path", *journalPath)
	}

	opts := engine.Options{
		PlayerID:             *playerID,
		Seed:                 *seed,
		PerceptionBufferSize: cfg.Memory.PerceptionBufferSize,
		Planner:              planner.New(client, cfg.Memory.RetrievalTopK),
	}
	if db != nil {
		opts.Journal = db
	}
	eng := engine.New(w, opts)

	editorKey := os.Getenv("HAMLET_EDITOR_KEY")
	if editorKey == "" {
		slog.Warn("HAMLET_EDITOR_KEY not set, editor endpoints disabled")
	}

	server := &api.Server{Eng: eng, EditorKey: editorKey}
	server.Start(*port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if *autoplay > 0 {
		ticker := time.NewTicker(*autoplay)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				server.StepRound()
			case sig := <-sigCh:
				slog.Info("received signal, shutting down", "signal", sig)
				saveSnapshot(db, eng)
				return
			}
		}
	}

	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)
	saveSnapshot(db, eng)
}

func saveSnapshot(db *journal.DB, eng *engine.Engine) {
	if db == nil {
		return
	}
	if err := db.SaveSnapshot(eng.Tick(), eng.World); err != nil {
		slog.Error("final snapshot failed", "error", err)
	}
}
