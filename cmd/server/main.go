// Package main is the entrypoint for the GigSight API server.
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

	"github.com/joho/godotenv"

	"github.com/gigsight/gigsight/internal/ai"
	"github.com/gigsight/gigsight/internal/analysis"
	"github.com/gigsight/gigsight/internal/answer"
	"github.com/gigsight/gigsight/internal/api"
	"github.com/gigsight/gigsight/internal/api/handler"
	mw "github.com/gigsight/gigsight/internal/api/middleware"
	"github.com/gigsight/gigsight/internal/api/response"
	"github.com/gigsight/gigsight/internal/cache"
	"github.com/gigsight/gigsight/internal/config"
	"github.com/gigsight/gigsight/internal/dataset"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config — fail fast on invalid config
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "ai_provider", cfg.AI.Provider, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Load the dataset — immutable for the process lifetime
	store, err := dataset.LoadFile(ctx, cfg.Dataset.Path)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	defer store.Close()
	slog.Info("dataset loaded", "path", cfg.Dataset.Path, "rows", store.RowCount())

	// 3. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 4. Create the classifier
	classifier, err := ai.NewProvider(cfg.AI)
	if err != nil {
		return fmt.Errorf("create classifier: %w", err)
	}
	slog.Info("classifier initialized", "provider", classifier.Name())

	// 5. Build the analysis registry over the loaded dataset and the service
	registry := analysis.NewRegistry(store)
	svc := answer.NewService(classifier, registry, redisCache, cfg.AI.ClassifyTimeout)

	// 6. Build router with dependencies
	rateLimit := mw.NewRateLimit(redisCache, cfg.Server.RequestsPerMin)

	deps := api.Dependencies{
		RateLimit: rateLimit,

		HealthHandler:       healthHandler(store, redisCache),
		AskHandler:          handler.NewAskHandler(svc),
		ListAnalysesHandler: handler.NewListAnalysesHandler(svc),
		RunAnalysisHandler:  handler.NewRunAnalysisHandler(svc),
	}

	router := api.NewRouter(deps)

	// 7. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// healthHandler checks dataset and cache availability.
func healthHandler(store *dataset.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"dataset": "ok",
			"cache":   "ok",
		}

		if err := store.Ping(r.Context()); err != nil {
			checks["dataset"] = "degraded"
		}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		degraded := checks["dataset"] != "ok" || checks["cache"] != "ok"
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"rows":     store.RowCount(),
			"services": checks,
		})
	}
}
