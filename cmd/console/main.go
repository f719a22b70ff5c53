package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/narrative-engine/internal/config"
	"github.com/jwebster45206/narrative-engine/internal/logger"
	"github.com/jwebster45206/narrative-engine/internal/storage"
	"github.com/jwebster45206/narrative-engine/pkg/corpus"
	"github.com/jwebster45206/narrative-engine/pkg/engine"
	"github.com/jwebster45206/narrative-engine/pkg/state"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Logs would corrupt the terminal UI, so they go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if path := os.Getenv("CONSOLE_LOG_FILE"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			_ = f.Close() // Ignore error in defer
		}()
		logOut = f
	}
	log := logger.SetupWriter(cfg, logOut)

	loader := corpus.NewLoader(cfg.DataDir, log)
	stories, err := loader.ListStories()
	if err != nil || len(stories) == 0 {
		fmt.Fprintf(os.Stderr, "Failed to list stories in %s: %v\n", cfg.DataDir, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng, closeStorage := newEngine(ctx, cfg, loader, log)
	defer closeStorage()
	eng.StartSweeper(ctx, cfg.SweepInterval, cfg.SessionMaxAge)

	p := tea.NewProgram(NewConsoleUI(ctx, eng, log, stories, os.Getenv("CONSOLE_SESSION_ID")),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

// newEngine wires the engine, adding Redis persistence when REDIS_URL is set.
func newEngine(ctx context.Context, cfg *config.Config, loader *corpus.Loader, log *slog.Logger) (*engine.Engine, func()) {
	opts := []engine.Option{
		engine.WithDefaults(cfg.DefaultLocation, cfg.StartingBeat),
		engine.WithMaxResults(cfg.MaxResults),
		engine.WithExhaustionScenes(cfg.ExhaustionScenes),
	}
	closer := func() {}

	if cfg.RedisURL != "" {
		rs, err := storage.NewRedisStorage(cfg.RedisURL, cfg.SnapshotTTL, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to configure Redis: %v\n", err)
			os.Exit(1)
		}
		if err := rs.WaitForConnection(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Could not connect to Redis. Please ensure it is running.\nTry: docker-compose up -d redis\n")
			os.Exit(1)
		}
		opts = append(opts, engine.WithSnapshots(rs), engine.WithEventQueue(rs))
		closer = func() {
			_ = rs.Close() // Ignore error on shutdown
		}
	}

	store := state.NewStore(state.WithLogger(log))
	return engine.New(corpus.NewCache(loader, log), store, log, opts...), closer
}
