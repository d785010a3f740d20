// Steam Shame - Game Library Shame Analytics
// Copyright 2026 DrawedC
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/DrawedC/steam-shame

// Package main is the entry point for the Steam Shame server.
//
// Steam Shame analyzes public Steam game libraries and reports on the pile of
// shame: unplayed purchases, abandoned games, genre buying habits versus
// playing habits, badges, estimated library cost, and a friends leaderboard.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered defaults, optional YAML file, environment
//     variables (Koanf v2)
//  2. Caches: in-memory TTL caches for Web API and storefront responses
//  3. Steam clients: the Web API client (circuit breaker, retry) and the
//     storefront client (paced worker pool)
//  4. Services: shame analyzer, affinity sampler, value estimator,
//     leaderboard aggregator
//  5. HTTP server: Chi router with health probes, Prometheus metrics, and
//     the /api/v1 endpoints
//
// # Configuration
//
// STEAM_API_KEY is the only required setting. Everything else has defaults
// and can be overridden via config.yaml or STEAMSHAME_-prefixed environment
// variables (STEAMSHAME_SERVER__PORT=9000 sets server.port).
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: it stops accepting
// new connections, waits up to 10 seconds for in-flight requests, then closes
// the caches.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DrawedC/steam-shame/internal/affinity"
	"github.com/DrawedC/steam-shame/internal/api"
	"github.com/DrawedC/steam-shame/internal/cache"
	"github.com/DrawedC/steam-shame/internal/config"
	"github.com/DrawedC/steam-shame/internal/leaderboard"
	"github.com/DrawedC/steam-shame/internal/logging"
	"github.com/DrawedC/steam-shame/internal/shame"
	"github.com/DrawedC/steam-shame/internal/steam"
	"github.com/DrawedC/steam-shame/internal/value"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.Load()
	if err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			fmt.Fprintln(os.Stderr, "Steam Web API key not configured.")
			fmt.Fprintln(os.Stderr, "Get one at https://steamcommunity.com/dev/apikey and set STEAM_API_KEY.")
			os.Exit(1)
		}
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Msg("Starting Steam Shame")

	// Web API and storefront responses have very different lifetimes, so each
	// client gets its own cache.
	apiCache := cache.New(cfg.Steam.OwnedGamesTTL)
	defer apiCache.Close()
	storeCache := cache.New(cfg.Steam.StoreTTL)
	defer storeCache.Close()

	client := steam.NewClient(cfg.Steam, apiCache)
	store := steam.NewStoreClient(cfg.Steam, storeCache)

	analyzer := shame.NewAnalyzer(cfg.Scoring)
	sampler := affinity.NewSampler(store, cfg.Affinity, cfg.Scoring)
	estimator := value.NewEstimator(store)
	aggregator := leaderboard.NewAggregator(client, analyzer, cfg.Leaderboard, cfg.Scoring.ScoreCap)

	handlers := api.NewHandlers(client, analyzer, sampler, estimator, aggregator)
	middleware := api.NewMiddleware(cfg.Security)
	health := api.NewHealthHandler(version)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(handlers, middleware, health),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server failed")
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed, forcing close")
		_ = server.Close()
	}

	logging.Info().Msg("Application stopped gracefully")
}
