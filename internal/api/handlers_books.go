// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bookfuse/bookfuse/internal/catalog"
	"github.com/bookfuse/bookfuse/internal/config"
	"github.com/bookfuse/bookfuse/internal/events"
	"github.com/bookfuse/bookfuse/internal/metrics"
	"github.com/bookfuse/bookfuse/internal/models"
	"github.com/bookfuse/bookfuse/internal/recommend"
)

// BookResponse is the catalog view of a single book. Neighbor lists are
// summarized as counts; their contents only surface through recommendations.
type BookResponse struct {
	ID                 int64   `json:"id"`
	Title              string  `json:"title"`
	AverageRating      float64 `json:"average_rating"`
	RatingsCount       int64   `json:"ratings_count"`
	DescNeighborCount  int     `json:"desc_neighbor_count"`
	ShelfNeighborCount int     `json:"shelf_neighbor_count"`
}

// RecommendationsResponse contains fused recommendations for a book. Reason
// is set only when Items is empty, distinguishing "no neighbors" outcomes
// from errors.
type RecommendationsResponse struct {
	BookID int64            `json:"book_id"`
	Title  string           `json:"title"`
	Items  []recommend.Item `json:"items"`
	Count  int              `json:"count"`
	Reason string           `json:"reason,omitempty"`
}

// BookByID returns catalog metadata for one book.
//
// Method: GET
// Path: /api/v1/books/{bookID}
//
// Response:
//   - 200: Book metadata
//   - 400: bookID is not a positive integer
//   - 404: bookID is not in the catalog
func (h *Handler) BookByID(w http.ResponseWriter, r *http.Request) {
	if !h.requireCatalog(w) {
		return
	}

	id, err := parsePathID(chi.URLParam(r, "bookID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "bookID must be a positive integer", nil)
		return
	}

	book, err := h.catalog.ByID(id)
	if err != nil {
		if errors.Is(err, catalog.ErrBookNotFound) {
			respondError(w, http.StatusNotFound, "BOOK_NOT_FOUND", fmt.Sprintf("Book %d is not in the catalog", id), nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "SERVICE_ERROR", "Book lookup failed", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: BookResponse{
			ID:                 book.ID,
			Title:              book.Title,
			AverageRating:      book.AverageRating,
			RatingsCount:       book.RatingsCount,
			DescNeighborCount:  len(book.DescNeighbors),
			ShelfNeighborCount: len(book.ShelfNeighbors),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// Recommendations fuses a book's precomputed neighbor lists into up to k
// recommendations, description tier first.
//
// Method: GET
// Path: /api/v1/books/{bookID}/recommendations?k={limit}
//
// Response:
//   - 200: Fused items, or an empty list with a reason
//   - 400: bookID is not a positive integer, or k is not an integer
//   - 404: bookID is not in the catalog
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	if !h.requireCatalog(w) {
		return
	}

	start := time.Now()

	id, err := parsePathID(chi.URLParam(r, "bookID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "bookID must be a positive integer", nil)
		return
	}

	k, ok := parseOptionalInt(r, "k")
	if !ok {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "k must be an integer", nil)
		return
	}

	result, err := h.engine.Fuse(r.Context(), id, k)
	if err != nil {
		if errors.Is(err, catalog.ErrBookNotFound) {
			metrics.RecordFusion("not_found", 0, time.Since(start))
			respondError(w, http.StatusNotFound, "BOOK_NOT_FOUND", fmt.Sprintf("Book %d is not in the catalog", id), nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "SERVICE_ERROR", "Recommendation fusion failed", err)
		return
	}

	elapsed := time.Since(start)
	metrics.RecordFusion(fusionOutcome(result, k, &h.config.Recommend), len(result.Items), elapsed)

	event := events.NewQueryEvent(events.KindRecommend)
	event.BookID = id
	event.K = k
	event.Results = len(result.Items)
	event.LatencyMS = elapsed.Milliseconds()
	h.publishQueryEvent(r.Context(), event)

	items := result.Items
	if items == nil {
		items = []recommend.Item{}
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: RecommendationsResponse{
			BookID: result.BookID,
			Title:  result.Title,
			Items:  items,
			Count:  len(items),
			Reason: result.Reason,
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: elapsed.Milliseconds(),
			Cached:      result.Cached,
		},
	})
}

// fusionOutcome classifies a fusion result for metrics. The requested k is
// clamped with the same bounds the engine applies so "partial" means the
// neighbor lists genuinely ran short.
func fusionOutcome(result *recommend.Result, k int, cfg *config.RecommendConfig) string {
	switch {
	case len(result.Items) == 0:
		return "empty"
	case len(result.Items) < effectiveK(k, cfg):
		return "partial"
	default:
		return "filled"
	}
}

func effectiveK(k int, cfg *config.RecommendConfig) int {
	switch {
	case k <= 0:
		return cfg.DefaultK
	case k > cfg.MaxK:
		return cfg.MaxK
	default:
		return k
	}
}
