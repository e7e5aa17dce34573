// Package main is the entry point for the trip planner API server.
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
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/birdplan/backend/internal/config"
	"github.com/birdplan/backend/internal/coverage"
	"github.com/birdplan/backend/internal/handler"
	"github.com/birdplan/backend/internal/itinerary"
	"github.com/birdplan/backend/internal/middleware"
	"github.com/birdplan/backend/internal/repo"
	"github.com/birdplan/backend/internal/routing"
	"github.com/birdplan/backend/internal/service"
	"github.com/birdplan/backend/migrations"
)

func main() {
	// A missing .env is normal in containers; real env vars win either way.
	_ = godotenv.Load()

	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if cfg.MigrateOnStart {
		sqlDB := stdlib.OpenDBFromPool(pool)
		applied, err := migrations.Up(context.Background(), sqlDB)
		sqlDB.Close()
		if err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}
		slog.Info("migrations applied", "count", applied)
	}

	// --- Routing ----------------------------------------------------------
	// provider -> rate limit + breaker -> persistent cache
	router, err := newRouter(cfg, logger, pool)
	if err != nil {
		slog.Error("failed to configure routing", "error", err)
		os.Exit(1)
	}

	// --- Services ---------------------------------------------------------
	trips := repo.NewTripRepo(pool)
	targets := repo.NewTargetRepo(pool)
	policy := coverage.Policy{
		TopN:            cfg.CoverageTopN,
		MinPercent:      cfg.CriticalMinPercent,
		MinObservations: cfg.CriticalMinObservations,
	}

	srv := handler.NewServer(
		service.NewTripService(trips, targets),
		service.NewItineraryService(trips, itinerary.NewResolver(router, logger, cfg.RoutingConcurrency), cfg.RoutingTimeout, logger),
		service.NewTargetService(trips, targets, policy),
		logger,
	)

	// --- Router -----------------------------------------------------------
	// Middleware order: RequestID → RealIP → Logger → Recoverer → CORS → body limit.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger, cfg.RoutingTimeout/2))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	srv.Routes(r)

	// --- HTTP Server ------------------------------------------------------
	// WriteTimeout leaves room for a full day recomputation.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RoutingTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

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

// newRouter picks the travel-time provider and wraps it. Without an
// openrouteservice key the great-circle estimator is used, which needs no
// breaker. Cache entries are keyed by provider, so estimates made before a
// key was configured are never served as real routes.
func newRouter(cfg config.Config, logger *slog.Logger, pool *pgxpool.Pool) (routing.Router, error) {
	var (
		provider routing.Router
		name     string
	)
	if cfg.ORSAPIKey == "" {
		slog.Warn("ORS_API_KEY not set, using straight-line travel estimates")
		provider, name = routing.NewStraightLineRouter(), routing.ProviderStraightLine
	} else {
		ors, err := routing.NewORSRouter(cfg.ORSAPIKey, cfg.ORSBaseURL, logger)
		if err != nil {
			return nil, err
		}
		provider = routing.NewGuardedRouter(ors, routing.BreakerSettings{
			Name:       routing.ProviderORS,
			RatePerSec: cfg.RoutingRatePerSec,
			Burst:      cfg.RoutingBurst,
		}, logger)
		name = routing.ProviderORS
	}
	cached, err := routing.NewCachedRouter(provider, name, repo.NewRouteCache(pool), logger)
	if err != nil {
		return nil, err
	}
	return cached, nil
}
