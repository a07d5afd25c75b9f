// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bookfuse/bookfuse/internal/config"
)

// Router wires handlers into the chi mux with the shared middleware
// stack.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router for the given handler set. Middleware
// settings are derived from the server config.
func NewRouter(handler *Handler, cfg *config.Config) *Router {
	mwConfig := DefaultChiMiddlewareConfig()
	if cfg != nil {
		mwConfig = ChiMiddlewareConfig{
			CORSOrigins:       cfg.Server.CORSOrigins,
			RateLimitRequests: cfg.Server.RateLimitReqs,
			RateLimitWindow:   cfg.Server.RateLimitWindow,
			RateLimitDisabled: cfg.Server.RateLimitDisabled,
			Environment:       cfg.Server.Environment,
		}
	}
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(mwConfig),
	}
}

// SetupChi builds the full route table.
//
// Route groups:
//   - /api/v1/health: generous rate limit, no metrics, polled by
//     orchestrators
//   - /api/v1: standard rate limit plus request metrics
//   - /metrics: Prometheus scrape endpoint, ungrouped
func (rt *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(
		RequestIDWithLogging(),
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		rt.chiMiddleware.CORS(),
	)

	// Registered before the route groups so mounted subrouters inherit
	// the JSON error envelopes.
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "The requested resource was not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed for this endpoint", nil)
	})

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(rt.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())

		r.Get("/", rt.handler.Health)
		r.Get("/live", rt.handler.HealthLive)
		r.Get("/ready", rt.handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(MetricsMiddleware())

		r.Get("/search", rt.handler.Search)
		r.Get("/autocomplete", rt.handler.Autocomplete)
		r.Get("/catalog/stats", rt.handler.CatalogStats)
		r.Get("/books/{bookID}", rt.handler.BookByID)
		r.Get("/books/{bookID}/recommendations", rt.handler.Recommendations)
		r.Get("/activity/recent", rt.handler.ActivityRecent)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
