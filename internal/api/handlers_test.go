// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

package api

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/bookfuse/bookfuse/internal/catalog"
	"github.com/bookfuse/bookfuse/internal/config"
	"github.com/bookfuse/bookfuse/internal/database"
	"github.com/bookfuse/bookfuse/internal/events"
	"github.com/bookfuse/bookfuse/internal/models"
	"github.com/bookfuse/bookfuse/internal/recommend"
	"github.com/bookfuse/bookfuse/internal/search"
)

// =============================================================================
// Shared fakes
// =============================================================================

// memSource feeds the catalog loader from a slice.
type memSource struct {
	rows []catalog.Row
}

func (s memSource) StreamBooks(_ context.Context, fn func(catalog.Row) error) error {
	for _, row := range s.rows {
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}

// fakeTitleStore stands in for the database in resolver-backed handlers.
type fakeTitleStore struct {
	phraseHits []database.TitleHit
	phraseErr  error
	fuzzyHits  []database.TitleHit
	fuzzyErr   error
	rapidfuzz  bool
}

func (s *fakeTitleStore) SearchTitlesByPhrase(_ context.Context, _ string, _ int) ([]database.TitleHit, error) {
	if s.phraseErr != nil {
		return nil, s.phraseErr
	}
	return s.phraseHits, nil
}

func (s *fakeTitleStore) SearchTitlesFuzzy(_ context.Context, _ string, _ int, _ float64) ([]database.TitleHit, error) {
	if s.fuzzyErr != nil {
		return nil, s.fuzzyErr
	}
	return s.fuzzyHits, nil
}

func (s *fakeTitleStore) IsRapidFuzzAvailable() bool {
	return s.rapidfuzz
}

// fakeCatalogStore stands in for the database in health and stats handlers.
type fakeCatalogStore struct {
	pingErr   error
	fts       bool
	rapidfuzz bool
	sqlite    bool
}

func (s *fakeCatalogStore) Ping(context.Context) error { return s.pingErr }
func (s *fakeCatalogStore) IsFTSAvailable() bool       { return s.fts }
func (s *fakeCatalogStore) IsRapidFuzzAvailable() bool { return s.rapidfuzz }
func (s *fakeCatalogStore) IsSQLiteAvailable() bool    { return s.sqlite }

// capturingPublisher records published query events. Handlers publish from a
// goroutine, so access is locked and tests poll via waitForEvent.
type capturingPublisher struct {
	mu     sync.Mutex
	events []*events.QueryEvent
	err    error
}

func (p *capturingPublisher) Publish(_ context.Context, event *events.QueryEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) snapshot() []*events.QueryEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*events.QueryEvent, len(p.events))
	copy(out, p.events)
	return out
}

// waitForEvent polls until the publisher holds an event of the given kind.
func waitForEvent(t *testing.T, p *capturingPublisher, kind string) *events.QueryEvent {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, e := range p.snapshot() {
			if e.Kind == kind {
				return e
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no %q event published within deadline", kind)
	return nil
}

// =============================================================================
// Fixture
// =============================================================================

// testCatalogRows is a small catalog with known neighbor structure:
// book 1's shelf list starts with a dangling id to exercise silent skipping,
// and book 6 has no neighbors at all.
func testCatalogRows() []catalog.Row {
	return []catalog.Row{
		{ID: 1, Title: "The Silent Sea", AverageRating: 4.2, RatingsCount: 5000,
			DescNeighbors: "[2, 3]", ShelfNeighbors: "[99, 3, 4, 5]"},
		{ID: 2, Title: "Silent Spring", AverageRating: 4.5, RatingsCount: 12000},
		{ID: 3, Title: "The Sea of Tranquility", AverageRating: 4.0, RatingsCount: 8000},
		{ID: 4, Title: "Deep Water", AverageRating: 3.8, RatingsCount: 3000},
		{ID: 5, Title: "Harbor Lights", AverageRating: 4.1, RatingsCount: 900},
		{ID: 6, Title: "Quiet Harbor", AverageRating: 3.9, RatingsCount: 150},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            2665,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			Environment:     "test",
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Search: config.SearchConfig{
			DefaultLimit: 5,
			MaxLimit:     50,
			MinScore:     40,
			Scorer:       "combined",
		},
		Recommend: config.RecommendConfig{
			DefaultK:  5,
			MaxK:      50,
			CacheSize: 16,
			CacheTTL:  time.Minute,
		},
		Activity: config.ActivityConfig{
			Enabled:    true,
			BufferSize: 64,
		},
	}
}

type handlerFixture struct {
	handler *Handler
	store   *fakeTitleStore
	db      *fakeCatalogStore
	cfg     *config.Config
	catalog *catalog.Catalog
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	cat, err := catalog.Load(context.Background(), memSource{rows: testCatalogRows()})
	if err != nil {
		t.Fatalf("loading test catalog: %v", err)
	}

	cfg := testConfig()
	store := &fakeTitleStore{}
	resolver, err := search.NewResolver(store, cat, &cfg.Search)
	if err != nil {
		t.Fatalf("building resolver: %v", err)
	}

	db := &fakeCatalogStore{fts: true, rapidfuzz: true, sqlite: true}
	engine := recommend.NewEngine(cat, &cfg.Recommend)
	titleIndex := search.BuildTitleIndex(cat)

	return &handlerFixture{
		handler: NewHandler(db, cat, resolver, titleIndex, engine, cfg, "test"),
		store:   store,
		db:      db,
		cfg:     cfg,
		catalog: cat,
	}
}

// =============================================================================
// Assertion helpers
// =============================================================================

func assertStatusCode(t *testing.T, got, want int, testName string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: expected status %d, got %d", testName, want, got)
	}
}

func decodeAPIResponse(t *testing.T, w *httptest.ResponseRecorder, testName string) *models.APIResponse {
	t.Helper()
	var response models.APIResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("%s: failed to decode response: %v", testName, err)
	}
	return &response
}

func assertResponseSuccess(t *testing.T, response *models.APIResponse, testName string) {
	t.Helper()
	if response.Status != "success" {
		t.Errorf("%s: expected status 'success', got '%s'", testName, response.Status)
	}
}

func assertErrorCode(t *testing.T, response *models.APIResponse, code, testName string) {
	t.Helper()
	if response.Status != "error" {
		t.Errorf("%s: expected status 'error', got '%s'", testName, response.Status)
	}
	if response.Error == nil {
		t.Fatalf("%s: expected error payload", testName)
	}
	if response.Error.Code != code {
		t.Errorf("%s: expected error code %q, got %q", testName, code, response.Error.Code)
	}
}

func assertMapData(t *testing.T, response *models.APIResponse, testName string) map[string]interface{} {
	t.Helper()
	data, ok := response.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("%s: response data is not a map", testName)
	}
	return data
}
