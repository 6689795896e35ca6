// Package main is the entry point for the BabySteps API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pkordes/babysteps/backend/internal/config"
	"github.com/pkordes/babysteps/backend/internal/handler"
	"github.com/pkordes/babysteps/backend/internal/kv"
	"github.com/pkordes/babysteps/backend/internal/middleware"
	"github.com/pkordes/babysteps/backend/internal/service"
	"github.com/pkordes/babysteps/backend/internal/store"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Storage ----------------------------------------------------------
	// Open verifies the backend is reachable (and migrates Postgres)
	// before accepting traffic.
	openCtx, cancelOpen := context.WithTimeout(context.Background(), 30*time.Second)
	backend, closeBackend, err := kv.Open(openCtx, cfg.KV())
	cancelOpen()
	if err != nil {
		slog.Error("failed to open storage", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	defer closeBackend()
	slog.Info("storage ready", "driver", cfg.StorageDriver)

	storeOpts := []store.Option{
		store.WithLatency(cfg.Latency()),
		store.WithLogger(logger),
	}
	milestones := store.OpenMilestones(context.Background(), backend, storeOpts...)
	tips := store.OpenTips(context.Background(), backend, storeOpts...)

	// babystepsctl writes to the same backend; poll so reads reflect its
	// changes without waiting for the next request that mutates.
	syncCtx, stopSync := context.WithCancel(context.Background())
	defer stopSync()
	if cfg.SyncInterval > 0 {
		go syncStores(syncCtx, cfg.SyncInterval, milestones, tips)
	}

	now := func() time.Time { return time.Now().UTC() }
	srv := handler.NewServer(
		service.NewMilestoneService(milestones, now),
		service.NewTipService(tips, milestones),
		service.NewRecommendationService(milestones, now),
		service.NewExportService(milestones, tips),
		now,
	)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer → CORS → MaxBodySize.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP, which the
	// write rate limiter keys on.
	// SlogLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	writeLimit := middleware.NewRateLimiter(cfg.RateLimitInterval, cfg.RateLimitBurst)
	r.Mount("/", srv.Routes(writeLimit))

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	// WriteTimeout leaves room for the simulated store latency.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// syncStores re-reads both collections from the backend every interval
// until ctx is cancelled.
func syncStores(ctx context.Context, interval time.Duration, milestones *store.Milestones, tips *store.Tips) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if milestones.Sync(ctx) {
				slog.Info("picked up external milestone changes")
			}
			if tips.Sync(ctx) {
				slog.Info("picked up external tip changes")
			}
		}
	}
}
