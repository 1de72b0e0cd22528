package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/p-n-ai/pai-tos/internal/app"
	"github.com/p-n-ai/pai-tos/internal/assessment"
	"github.com/p-n-ai/pai-tos/internal/platform/cache"
	"github.com/p-n-ai/pai-tos/internal/platform/config"
	"github.com/p-n-ai/pai-tos/internal/platform/logging"
	"github.com/p-n-ai/pai-tos/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logging.New(cfg.Log, os.Stdout))

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	handler, cleanup, err := setup(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// setup wires the MELC bank, the assessment store and the HTTP handler. The
// returned cleanup closes any connections that were opened; on error they are
// already closed.
func setup(ctx context.Context, cfg *config.Config) (http.Handler, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	checks := map[string]server.HealthChecker{}

	builder, err := app.NewBuilder(cfg.Allocation)
	if err != nil {
		return nil, nil, err
	}

	source, db, err := app.OpenSource(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	var events assessment.EventLogger = assessment.NopEventLogger{}
	if db != nil {
		closers = append(closers, db.Close)
		checks["database"] = db

		pgEvents := assessment.NewPostgresEventLogger(db.Pool)
		if err := pgEvents.Migrate(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
		events = pgEvents
	}

	var store assessment.Store = assessment.NewMemoryStore(cfg.SessionTTL())
	if cfg.Cache.URL != "" {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() { c.Close() })
		checks["cache"] = c

		store, err = assessment.NewRedisStore(c, cfg.SessionTTL())
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		slog.Info("storing assessments in cache", "ttl", cfg.SessionTTL())
	}

	srv, err := server.New(server.Config{
		Source:       source,
		Builder:      builder,
		Store:        store,
		Events:       events,
		DefaultItems: cfg.Allocation.DefaultItems,
		MinItems:     cfg.Allocation.MinItems,
		MaxItems:     cfg.Allocation.MaxItems,
		Checks:       checks,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return srv.Handler(), cleanup, nil
}
