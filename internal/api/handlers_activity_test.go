// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/bookfuse/bookfuse/internal/activity"
	"github.com/bookfuse/bookfuse/internal/events"
)

// seedFeed records n search events with event ids "evt-1".."evt-n".
func seedFeed(feed *activity.Feed, n int) {
	for i := 1; i <= n; i++ {
		event := events.NewQueryEvent(events.KindSearch)
		event.EventID = "evt-" + strconv.Itoa(i)
		event.Query = "q"
		feed.Record(event)
	}
}

// =============================================================================
// ActivityRecent
// =============================================================================

func TestActivityRecent(t *testing.T) {
	t.Parallel()

	fx := newHandlerFixture(t)
	feed := activity.NewFeed(16)
	seedFeed(feed, 3)
	fx.handler.SetActivityFeed(feed)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/activity/recent", nil)
	w := httptest.NewRecorder()

	fx.handler.ActivityRecent(w, req)

	assertStatusCode(t, w.Code, http.StatusOK, "ActivityRecent")
	response := decodeAPIResponse(t, w, "ActivityRecent")
	assertResponseSuccess(t, response, "ActivityRecent")

	data := assertMapData(t, response, "ActivityRecent")
	if data["count"] != float64(3) {
		t.Errorf("count = %v, want 3", data["count"])
	}
	if data["total_recorded"] != float64(3) {
		t.Errorf("total_recorded = %v, want 3", data["total_recorded"])
	}

	evts, ok := data["events"].([]interface{})
	if !ok || len(evts) != 3 {
		t.Fatalf("events = %v, want 3 entries", data["events"])
	}
	first, ok := evts[0].(map[string]interface{})
	if !ok {
		t.Fatal("first event is not an object")
	}
	if first["event_id"] != "evt-3" {
		t.Errorf("first event id = %v, want evt-3 (newest first)", first["event_id"])
	}
}

func TestActivityRecentLimit(t *testing.T) {
	t.Parallel()

	fx := newHandlerFixture(t)
	feed := activity.NewFeed(16)
	seedFeed(feed, 5)
	fx.handler.SetActivityFeed(feed)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/activity/recent?limit=2", nil)
	w := httptest.NewRecorder()

	fx.handler.ActivityRecent(w, req)

	assertStatusCode(t, w.Code, http.StatusOK, "ActivityRecent_Limit")
	data := assertMapData(t, decodeAPIResponse(t, w, "ActivityRecent_Limit"), "ActivityRecent_Limit")
	if data["count"] != float64(2) {
		t.Errorf("count = %v, want 2", data["count"])
	}
	if data["total_recorded"] != float64(5) {
		t.Errorf("total_recorded = %v, want 5", data["total_recorded"])
	}
}

func TestActivityRecentInvalidLimit(t *testing.T) {
	t.Parallel()

	fx := newHandlerFixture(t)
	fx.handler.SetActivityFeed(activity.NewFeed(16))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/activity/recent?limit=many", nil)
	w := httptest.NewRecorder()

	fx.handler.ActivityRecent(w, req)

	assertStatusCode(t, w.Code, http.StatusBadRequest, "ActivityRecent_InvalidLimit")
	assertErrorCode(t, decodeAPIResponse(t, w, "ActivityRecent_InvalidLimit"), "VALIDATION_ERROR", "ActivityRecent_InvalidLimit")
}

func TestActivityRecentDisabled(t *testing.T) {
	t.Parallel()

	fx := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/activity/recent", nil)
	w := httptest.NewRecorder()

	fx.handler.ActivityRecent(w, req)

	assertStatusCode(t, w.Code, http.StatusServiceUnavailable, "ActivityRecent_Disabled")
	assertErrorCode(t, decodeAPIResponse(t, w, "ActivityRecent_Disabled"), "SERVICE_ERROR", "ActivityRecent_Disabled")
}

// =============================================================================
// CatalogStats
// =============================================================================

func TestCatalogStats(t *testing.T) {
	t.Parallel()

	fx := newHandlerFixture(t)

	// One fusion request so the engine counters are non-zero.
	if _, err := fx.handler.engine.Fuse(context.Background(), 1, 3); err != nil {
		t.Fatalf("warming engine: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/stats", nil)
	w := httptest.NewRecorder()

	fx.handler.CatalogStats(w, req)

	assertStatusCode(t, w.Code, http.StatusOK, "CatalogStats")
	response := decodeAPIResponse(t, w, "CatalogStats")
	assertResponseSuccess(t, response, "CatalogStats")

	data := assertMapData(t, response, "CatalogStats")

	cat, ok := data["catalog"].(map[string]interface{})
	if !ok {
		t.Fatal("catalog stats missing")
	}
	if cat["books"] != float64(6) {
		t.Errorf("catalog books = %v, want 6", cat["books"])
	}

	fusion, ok := data["fusion"].(map[string]interface{})
	if !ok {
		t.Fatal("fusion stats missing")
	}
	if fusion["requests"] != float64(1) {
		t.Errorf("fusion requests = %v, want 1", fusion["requests"])
	}

	if data["title_index_entries"] != float64(6) {
		t.Errorf("title_index_entries = %v, want 6", data["title_index_entries"])
	}
	if data["fusion_cache_entries"] != float64(1) {
		t.Errorf("fusion_cache_entries = %v, want 1", data["fusion_cache_entries"])
	}
}

func TestCatalogStatsUnavailable(t *testing.T) {
	t.Parallel()

	h := NewHandler(&fakeCatalogStore{}, nil, nil, nil, nil, testConfig(), "test")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/stats", nil)
	w := httptest.NewRecorder()

	h.CatalogStats(w, req)

	assertStatusCode(t, w.Code, http.StatusServiceUnavailable, "CatalogStats_Unavailable")
}
