package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/drifter/internal/ai"
	"github.com/udisondev/drifter/internal/config"
	"github.com/udisondev/drifter/internal/db"
	"github.com/udisondev/drifter/internal/observer"
	"github.com/udisondev/drifter/internal/spawn"
	"github.com/udisondev/drifter/internal/world"
)

const (
	ConfigPath = "config/drifter.yaml"

	shutdownTimeout = 5 * time.Second
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("DRIFTER_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	ai.EnableDebugLogging(logLevel == slog.LevelDebug)

	slog.Info("drifter server starting",
		"config", cfgPath,
		"log_level", cfg.LogLevel,
		"tick", cfg.TickInterval)

	scenario, err := spawn.LoadScenario(cfg.ScenarioPath)
	if err != nil {
		return fmt.Errorf("loading scenario: %w", err)
	}

	// Event journal
	var (
		journal *db.Journal
		history observer.HistorySource
	)
	if cfg.Journal.Enabled {
		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")

		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		journal = db.NewJournal(database.Pool(), cfg.Journal)
		history = journal
	}

	opts := world.DefaultOptions()
	opts.CellSize = cfg.CellSize
	w := world.New(opts)

	aiMgr := ai.NewTickManager(cfg.TickInterval, cfg.MaxTickDelta, 1024)
	spawnMgr := spawn.NewManager(w, aiMgr, cfg.Drifter)
	if err := spawnMgr.SpawnAll(scenario); err != nil {
		return fmt.Errorf("spawning scenario %q: %w", scenario.Name, err)
	}

	hub := observer.NewHub(observer.Config{
		SendQueueSize:    cfg.SendQueueSize,
		WriteTimeout:     cfg.WriteTimeout,
		SnapshotInterval: cfg.TickInterval * time.Duration(cfg.SnapshotInterval),
	}, aiMgr, w, aiMgr)

	aiMgr.SetBeforeTick(spawnMgr.BeforeTick)
	aiMgr.SetAfterTick(spawnMgr.AfterTick)
	aiMgr.SetEventSink(func(events []ai.Event) {
		spawnMgr.HandleEvents(events)
		if journal != nil {
			journal.Record(events)
		}
		hub.Publish(events)
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := aiMgr.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("AI tick manager: %w", err)
		}
		return nil
	})

	if journal != nil {
		g.Go(func() error {
			if err := journal.Run(gctx); err != nil {
				return fmt.Errorf("event journal: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		if err := hub.Run(gctx); err != nil {
			return fmt.Errorf("observer hub: %w", err)
		}
		return nil
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           observer.NewHandler(hub, history),
		ReadHeaderTimeout: 5 * time.Second,
	}
	g.Go(func() error {
		slog.Info("starting observer server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("observer server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	slog.Info("drifter server running",
		"scenario", scenario.Name,
		"agents", aiMgr.Count(),
		"targets", w.TargetCount())

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("drifter server stopped", "ticks", aiMgr.Ticks())
	return nil
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
