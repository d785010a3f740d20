// Steam Shame - Game Library Shame Analytics
// Copyright 2026 DrawedC
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/DrawedC/steam-shame

package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter assembles the HTTP mux. Health endpoints get a permissive rate
// limit for monitoring pollers; the API group carries CORS and the standard
// per-IP limit.
func NewRouter(h *Handlers, mw *Middleware, health *HealthHandler) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(RequestID())
	r.Use(chimiddleware.Recoverer)
	r.Use(Metrics())
	r.Use(RequestLogging())

	r.Group(func(r chi.Router) {
		r.Use(mw.RateLimitHealth())
		r.Get("/health", health.Health)
		r.Get("/health/live", health.Health)
		r.Get("/health/ready", health.Ready)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.CORS())
		r.Use(mw.RateLimit())

		r.Post("/resolve", h.Resolve)
		r.Get("/analyze/{steamID}", h.Analyze)
		r.Get("/affinity/{steamID}", h.Affinity)
		r.Get("/value/{steamID}", h.Value)
		r.Get("/leaderboard/{steamID}", h.Leaderboard)
	})

	return r
}
