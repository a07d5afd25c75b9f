// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/bookfuse/bookfuse/internal/events"
	"github.com/bookfuse/bookfuse/internal/metrics"
	"github.com/bookfuse/bookfuse/internal/models"
	"github.com/bookfuse/bookfuse/internal/search"
)

// noMatchesReason is returned with an empty 200 response so clients can tell
// "nothing matched" apart from transport failures.
const noMatchesReason = "no catalog titles matched the query"

// defaultAutocompleteLimit bounds suggestion lists when no limit is given.
const defaultAutocompleteLimit = 10

type searchRequest struct {
	Query string `validate:"notblank,max=200"`
}

// SearchResponse contains resolved title matches and the strategy that
// produced them.
type SearchResponse struct {
	Query     string           `json:"query"`
	Matches   []search.Match   `json:"matches"`
	Count     int              `json:"count"`
	MatchType search.MatchType `json:"match_type"`
	Reason    string           `json:"reason,omitempty"`
}

// AutocompleteResponse contains prefix suggestions ordered by popularity.
type AutocompleteResponse struct {
	Query       string              `json:"query"`
	Suggestions []search.Suggestion `json:"suggestions"`
	Count       int                 `json:"count"`
}

// Search resolves a free-text query to ranked catalog titles, trying an
// exact phrase match first and falling back to fuzzy matching.
//
// Method: GET
// Path: /api/v1/search?q={query}&k={limit}
//
// Response:
//   - 200: Matches (possibly empty with a reason), ordered per match type
//   - 400: Missing/blank q, or non-integer k
//   - 500: Resolution failed
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	if !h.requireCatalog(w) {
		return
	}

	start := time.Now()
	query := r.URL.Query().Get("q")

	if apiErr := validateRequest(&searchRequest{Query: query}); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	k, ok := parseOptionalInt(r, "k")
	if !ok {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "k must be an integer", nil)
		return
	}

	result, err := h.resolver.Resolve(r.Context(), query, k)
	if err != nil {
		if errors.Is(err, search.ErrEmptyQuery) {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Query parameter 'q' must not be blank", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "SEARCH_ERROR", "Search failed", err)
		return
	}

	response := SearchResponse{
		Query:     query,
		Matches:   result.Matches,
		Count:     len(result.Matches),
		MatchType: result.MatchType,
	}
	if result.MatchType == search.MatchNone {
		response.Reason = noMatchesReason
	}
	if response.Matches == nil {
		response.Matches = []search.Match{}
	}

	elapsed := time.Since(start)
	metrics.RecordSearch(string(result.MatchType), len(result.Matches), elapsed)

	event := events.NewQueryEvent(events.KindSearch)
	event.Query = query
	event.K = k
	event.Results = len(result.Matches)
	event.MatchType = string(result.MatchType)
	event.LatencyMS = elapsed.Milliseconds()
	h.publishQueryEvent(r.Context(), event)

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   response,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: elapsed.Milliseconds(),
		},
	})
}

// Autocomplete suggests catalog titles matching a case-insensitive prefix,
// most-rated first. Suggestions come from the in-memory title index, so this
// endpoint never touches the database.
//
// Method: GET
// Path: /api/v1/autocomplete?q={prefix}&limit={limit}
//
// Response:
//   - 200: Suggestions (possibly empty)
//   - 400: Missing/blank q, or non-integer limit
func (h *Handler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	if h.titleIndex == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_ERROR", "Title index not available", nil)
		return
	}

	start := time.Now()
	query := r.URL.Query().Get("q")

	if apiErr := validateRequest(&searchRequest{Query: query}); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	limit, ok := parseOptionalInt(r, "limit")
	if !ok {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be an integer", nil)
		return
	}
	if limit <= 0 {
		limit = defaultAutocompleteLimit
	}
	if limit > h.config.Search.MaxLimit {
		limit = h.config.Search.MaxLimit
	}

	suggestions := h.titleIndex.Suggest(query, limit)
	if suggestions == nil {
		suggestions = []search.Suggestion{}
	}

	elapsed := time.Since(start)
	metrics.RecordAutocomplete()

	event := events.NewQueryEvent(events.KindAutocomplete)
	event.Query = query
	event.K = limit
	event.Results = len(suggestions)
	event.LatencyMS = elapsed.Milliseconds()
	h.publishQueryEvent(r.Context(), event)

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: AutocompleteResponse{
			Query:       query,
			Suggestions: suggestions,
			Count:       len(suggestions),
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: elapsed.Milliseconds(),
		},
	})
}
