// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

package api

import (
	"net/http"
	"time"

	"github.com/bookfuse/bookfuse/internal/catalog"
	"github.com/bookfuse/bookfuse/internal/events"
	"github.com/bookfuse/bookfuse/internal/models"
	"github.com/bookfuse/bookfuse/internal/recommend"
)

// defaultActivityLimit bounds the activity listing when no limit is given.
const defaultActivityLimit = 20

// ActivityResponse lists recent query events, newest first.
type ActivityResponse struct {
	Events        []*events.QueryEvent `json:"events"`
	Count         int                  `json:"count"`
	TotalRecorded uint64               `json:"total_recorded"`
}

// CatalogStatsResponse aggregates catalog and engine counters for
// dashboards.
type CatalogStatsResponse struct {
	Catalog            catalog.Stats   `json:"catalog"`
	Fusion             recommend.Stats `json:"fusion"`
	FusionCacheEntries int             `json:"fusion_cache_entries"`
	TitleIndexEntries  int             `json:"title_index_entries"`
}

// ActivityRecent returns the most recent query events from the in-memory
// feed, newest first.
//
// Method: GET
// Path: /api/v1/activity/recent?limit={limit}
//
// Response:
//   - 200: Recent events
//   - 400: limit is not an integer
//   - 503: Activity feed is disabled
func (h *Handler) ActivityRecent(w http.ResponseWriter, r *http.Request) {
	if h.feed == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_ERROR", "Activity feed is not enabled", nil)
		return
	}

	limit, ok := parseOptionalInt(r, "limit")
	if !ok {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be an integer", nil)
		return
	}
	if limit <= 0 {
		limit = defaultActivityLimit
	}

	recent := h.feed.Recent(limit)

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: ActivityResponse{
			Events:        recent,
			Count:         len(recent),
			TotalRecorded: h.feed.Total(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// CatalogStats returns catalog size and fusion engine counters.
//
// Method: GET
// Path: /api/v1/catalog/stats
//
// Response:
//   - 200: Statistics snapshot
//   - 503: Catalog not loaded
func (h *Handler) CatalogStats(w http.ResponseWriter, r *http.Request) {
	if !h.requireCatalog(w) {
		return
	}

	response := CatalogStatsResponse{
		Catalog: h.catalog.Stats(),
	}
	if h.engine != nil {
		response.Fusion = h.engine.Stats()
		response.FusionCacheEntries = h.engine.CacheLen()
	}
	if h.titleIndex != nil {
		response.TitleIndexEntries = h.titleIndex.Size()
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   response,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
