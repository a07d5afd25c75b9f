// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

package api

import (
	"context"
	"time"

	"github.com/bookfuse/bookfuse/internal/activity"
	"github.com/bookfuse/bookfuse/internal/catalog"
	"github.com/bookfuse/bookfuse/internal/config"
	"github.com/bookfuse/bookfuse/internal/recommend"
	"github.com/bookfuse/bookfuse/internal/search"
)

// CatalogStore is the database surface the handlers need.
//
// Satisfied by *database.DB. Keeping it an interface lets handler tests run
// without a live DuckDB connection.
type CatalogStore interface {
	Ping(ctx context.Context) error
	IsFTSAvailable() bool
	IsRapidFuzzAvailable() bool
	IsSQLiteAvailable() bool
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across multiple files:
//   - handlers.go: Handler struct, constructor, optional-dependency setters
//   - handlers_helpers.go: Shared response and parameter helpers
//   - handlers_search.go: Search and autocomplete endpoints
//   - handlers_books.go: Book lookup and recommendation endpoints
//   - handlers_activity.go: Activity feed and catalog stats endpoints
//   - handlers_health.go: Health and readiness endpoints
//   - handler_events.go: Query event publishing
type Handler struct {
	db         CatalogStore
	catalog    *catalog.Catalog
	resolver   *search.Resolver
	titleIndex *search.TitleIndex
	engine     *recommend.Engine
	config     *config.Config
	publisher  QueryEventPublisher // optional, set via SetEventPublisher
	feed       *activity.Feed      // optional, set via SetActivityFeed
	startTime  time.Time
	version    string
}

// NewHandler creates an API handler over the loaded catalog and its derived
// services. Optional components (event publishing, the activity feed) are
// attached afterwards with the Set* methods.
func NewHandler(db CatalogStore, cat *catalog.Catalog, resolver *search.Resolver, titleIndex *search.TitleIndex, engine *recommend.Engine, cfg *config.Config, version string) *Handler {
	return &Handler{
		db:         db,
		catalog:    cat,
		resolver:   resolver,
		titleIndex: titleIndex,
		engine:     engine,
		config:     cfg,
		startTime:  time.Now(),
		version:    version,
	}
}

// SetEventPublisher attaches the query event publisher. When unset, handlers
// skip publishing. Should be called once during startup.
func (h *Handler) SetEventPublisher(publisher QueryEventPublisher) {
	h.publisher = publisher
}

// SetActivityFeed attaches the recent-activity feed read by the activity
// endpoint. When unset, the endpoint reports the feature as disabled.
// Should be called once during startup.
func (h *Handler) SetActivityFeed(feed *activity.Feed) {
	h.feed = feed
}
