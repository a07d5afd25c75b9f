// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bookfuse/bookfuse/internal/catalog"
	"github.com/bookfuse/bookfuse/internal/config"
)

type fakeSource struct {
	rows []catalog.Row
}

func (s *fakeSource) StreamBooks(_ context.Context, fn func(catalog.Row) error) error {
	for _, row := range s.rows {
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}

// fusionCatalog covers every merge behavior: tier priority, cross-tier and
// in-tier duplicates, self references, dangling ids (999 and 888 resolve to
// nothing), shelf-only books, and books with no neighbors at all.
func fusionCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	src := &fakeSource{rows: []catalog.Row{
		{ID: 100, Title: "Dune", AverageRating: 4.25, RatingsCount: 820000,
			DescNeighbors: `["200", "300"]`, ShelfNeighbors: `["300", "400", "500"]`},
		{ID: 200, Title: "Dune Messiah", AverageRating: 3.89, RatingsCount: 210000,
			DescNeighbors: `["100"]`, ShelfNeighbors: `["300"]`},
		{ID: 300, Title: "Children of Dune", AverageRating: 3.92, RatingsCount: 150000,
			DescNeighbors: `[]`, ShelfNeighbors: `[]`},
		{ID: 400, Title: "God Emperor of Dune", AverageRating: 3.87, RatingsCount: 95000,
			DescNeighbors: `[]`, ShelfNeighbors: `[]`},
		{ID: 500, Title: "Heretics of Dune", AverageRating: 3.88, RatingsCount: 65000,
			DescNeighbors: `[]`, ShelfNeighbors: `[]`},
		{ID: 600, Title: "Foundation", AverageRating: 4.17, RatingsCount: 450000,
			DescNeighbors: `[]`, ShelfNeighbors: `["100", "200"]`},
		{ID: 700, Title: "Hyperion", AverageRating: 4.23, RatingsCount: 230000,
			DescNeighbors: `["999", "200", "300"]`, ShelfNeighbors: `["888", "400"]`},
		{ID: 800, Title: "Obscure Debut", AverageRating: 3.5, RatingsCount: 120,
			DescNeighbors: `[]`, ShelfNeighbors: `[]`},
		{ID: 900, Title: "Ghost Edition", AverageRating: 3.0, RatingsCount: 45,
			DescNeighbors: `["999"]`, ShelfNeighbors: `["888", "900"]`},
		{ID: 1000, Title: "The Hobbit", AverageRating: 4.28, RatingsCount: 3100000,
			DescNeighbors: `["100", "200", "300", "400", "500", "600"]`, ShelfNeighbors: `["700", "800"]`},
		{ID: 1100, Title: "Self Refer", AverageRating: 2.9, RatingsCount: 33,
			DescNeighbors: `["1100", "200"]`, ShelfNeighbors: `["1100", "300"]`},
		{ID: 1200, Title: "Echo Chamber", AverageRating: 3.1, RatingsCount: 77,
			DescNeighbors: `["200", "200", "300"]`, ShelfNeighbors: `[]`},
	}}

	cat, err := catalog.Load(context.Background(), src)
	if err != nil {
		t.Fatalf("catalog.Load() error: %v", err)
	}
	return cat
}

func engineConfig() *config.RecommendConfig {
	return &config.RecommendConfig{
		DefaultK:  5,
		MaxK:      10,
		CacheSize: 0,
		CacheTTL:  time.Minute,
	}
}

func newTestEngine(t *testing.T, cfg *config.RecommendConfig) *Engine {
	t.Helper()
	if cfg == nil {
		cfg = engineConfig()
	}
	return NewEngine(fusionCatalog(t), cfg)
}

// assertItems checks ids and sources in order.
func assertItems(t *testing.T, items []Item, want []Item) {
	t.Helper()
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d", len(items), len(want))
	}
	for i := range want {
		if items[i].ID != want[i].ID {
			t.Errorf("items[%d].ID = %d, want %d", i, items[i].ID, want[i].ID)
		}
		if items[i].Source != want[i].Source {
			t.Errorf("items[%d].Source = %v, want %v", i, items[i].Source, want[i].Source)
		}
	}
}

func TestFuseTierPriority(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)

	// Description neighbors [200 300], shelf neighbors [300 400 500]:
	// both description slots fill first, 300 is deduplicated on the shelf
	// pass, and 400 takes the last slot.
	res, err := e.Fuse(context.Background(), 100, 3)
	if err != nil {
		t.Fatalf("Fuse() error: %v", err)
	}

	assertItems(t, res.Items, []Item{
		{ID: 200, Source: SourceDescription},
		{ID: 300, Source: SourceDescription},
		{ID: 400, Source: SourcePopularShelves},
	})
	if res.Reason != "" {
		t.Errorf("Reason = %q, want empty", res.Reason)
	}
	if res.BookID != 100 || res.Title != "Dune" {
		t.Errorf("result header = (%d, %q), want (100, \"Dune\")", res.BookID, res.Title)
	}
}

func TestFuseStopsAtK(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)

	res, err := e.Fuse(context.Background(), 1000, 3)
	if err != nil {
		t.Fatalf("Fuse() error: %v", err)
	}

	assertItems(t, res.Items, []Item{
		{ID: 100, Source: SourceDescription},
		{ID: 200, Source: SourceDescription},
		{ID: 300, Source: SourceDescription},
	})
}

func TestFusePartialFillIsNotAnError(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)

	// Book 200 has one description neighbor and one shelf neighbor; asking
	// for five returns the two that exist.
	res, err := e.Fuse(context.Background(), 200, 5)
	if err != nil {
		t.Fatalf("Fuse() error: %v", err)
	}

	assertItems(t, res.Items, []Item{
		{ID: 100, Source: SourceDescription},
		{ID: 300, Source: SourcePopularShelves},
	})
	if res.Reason != "" {
		t.Errorf("Reason = %q, want empty for partial fill", res.Reason)
	}
}

func TestFuseShelfOnly(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)

	res, err := e.Fuse(context.Background(), 600, 5)
	if err != nil {
		t.Fatalf("Fuse() error: %v", err)
	}

	assertItems(t, res.Items, []Item{
		{ID: 100, Source: SourcePopularShelves},
		{ID: 200, Source: SourcePopularShelves},
	})
}

func TestFuseSkipsDanglingWithoutConsumingSlots(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)

	// Book 700's description list starts with dangling id 999. With k=2
	// both slots must still fill from the resolvable remainder.
	res, err := e.Fuse(context.Background(), 700, 2)
	if err != nil {
		t.Fatalf("Fuse() error: %v", err)
	}

	assertItems(t, res.Items, []Item{
		{ID: 200, Source: SourceDescription},
		{ID: 300, Source: SourceDescription},
	})
}

func TestFuseSkipsDanglingAcrossTiers(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)

	res, err := e.Fuse(context.Background(), 700, 5)
	if err != nil {
		t.Fatalf("Fuse() error: %v", err)
	}

	assertItems(t, res.Items, []Item{
		{ID: 200, Source: SourceDescription},
		{ID: 300, Source: SourceDescription},
		{ID: 400, Source: SourcePopularShelves},
	})
}

func TestFuseExcludesSelf(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)

	res, err := e.Fuse(context.Background(), 1100, 5)
	if err != nil {
		t.Fatalf("Fuse() error: %v", err)
	}

	for _, item := range res.Items {
		if item.ID == 1100 {
			t.Error("book recommended itself")
		}
	}
	assertItems(t, res.Items, []Item{
		{ID: 200, Source: SourceDescription},
		{ID: 300, Source: SourcePopularShelves},
	})
}

func TestFuseDeduplicatesWithinTier(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)

	res, err := e.Fuse(context.Background(), 1200, 5)
	if err != nil {
		t.Fatalf("Fuse() error: %v", err)
	}

	assertItems(t, res.Items, []Item{
		{ID: 200, Source: SourceDescription},
		{ID: 300, Source: SourceDescription},
	})
}

func TestFuseUnknownBook(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)

	_, err := e.Fuse(context.Background(), 424242, 5)
	if !errors.Is(err, catalog.ErrBookNotFound) {
		t.Errorf("Fuse() error = %v, want ErrBookNotFound", err)
	}
}

func TestFuseEmptyReasons(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)
	ctx := context.Background()

	res, err := e.Fuse(ctx, 800, 5)
	if err != nil {
		t.Fatalf("Fuse() error: %v", err)
	}
	if len(res.Items) != 0 {
		t.Errorf("got %d items, want 0", len(res.Items))
	}
	if res.Reason != ReasonNoNeighbors {
		t.Errorf("Reason = %q, want %q", res.Reason, ReasonNoNeighbors)
	}

	// Book 900 has neighbor lists, but they hold only dangling ids and
	// its own id.
	res, err = e.Fuse(ctx, 900, 5)
	if err != nil {
		t.Fatalf("Fuse() error: %v", err)
	}
	if len(res.Items) != 0 {
		t.Errorf("got %d items, want 0", len(res.Items))
	}
	if res.Reason != ReasonNoneResolvable {
		t.Errorf("Reason = %q, want %q", res.Reason, ReasonNoneResolvable)
	}
}

func TestFuseClampsK(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)
	ctx := context.Background()

	// k=0 takes the default of 5.
	res, err := e.Fuse(ctx, 1000, 0)
	if err != nil {
		t.Fatalf("Fuse() error: %v", err)
	}
	if len(res.Items) != 5 {
		t.Errorf("Fuse(k=0) returned %d items, want default 5", len(res.Items))
	}

	// k above the ceiling clamps to 10; book 1000 has 8 resolvable
	// neighbors, so all 8 come back.
	res, err = e.Fuse(ctx, 1000, 99)
	if err != nil {
		t.Fatalf("Fuse() error: %v", err)
	}
	if len(res.Items) != 8 {
		t.Errorf("Fuse(k=99) returned %d items, want 8", len(res.Items))
	}
}

func TestFuseHydratesMetadataInFillOrder(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)

	res, err := e.Fuse(context.Background(), 100, 3)
	if err != nil {
		t.Fatalf("Fuse() error: %v", err)
	}

	first := res.Items[0]
	if first.Title != "Dune Messiah" {
		t.Errorf("Items[0].Title = %q, want %q", first.Title, "Dune Messiah")
	}
	if first.AverageRating != 3.89 {
		t.Errorf("Items[0].AverageRating = %v, want 3.89", first.AverageRating)
	}
	if first.RatingsCount != 210000 {
		t.Errorf("Items[0].RatingsCount = %d, want 210000", first.RatingsCount)
	}
}

func TestFuseDeterministic(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)
	ctx := context.Background()

	first, err := e.Fuse(ctx, 100, 5)
	if err != nil {
		t.Fatalf("Fuse() error: %v", err)
	}
	second, err := e.Fuse(ctx, 100, 5)
	if err != nil {
		t.Fatalf("Fuse() second call error: %v", err)
	}

	if len(first.Items) != len(second.Items) {
		t.Fatalf("item counts differ: %d vs %d", len(first.Items), len(second.Items))
	}
	for i := range first.Items {
		if first.Items[i] != second.Items[i] {
			t.Errorf("Items[%d] differ: %+v vs %+v", i, first.Items[i], second.Items[i])
		}
	}
}

func TestFuseCaching(t *testing.T) {
	t.Parallel()

	cfg := engineConfig()
	cfg.CacheSize = 8
	e := newTestEngine(t, cfg)
	ctx := context.Background()

	first, err := e.Fuse(ctx, 100, 3)
	if err != nil {
		t.Fatalf("Fuse() error: %v", err)
	}
	if first.Cached {
		t.Error("first request reported Cached = true")
	}
	second, err := e.Fuse(ctx, 100, 3)
	if err != nil {
		t.Fatalf("Fuse() second call error: %v", err)
	}
	if !second.Cached {
		t.Error("second identical request was not served from the cache")
	}
	if len(second.Items) != len(first.Items) {
		t.Errorf("cached result has %d items, want %d", len(second.Items), len(first.Items))
	}

	// A different k is a different cache entry, not a truncation.
	third, err := e.Fuse(ctx, 100, 5)
	if err != nil {
		t.Fatalf("Fuse() with different k error: %v", err)
	}
	if third.Cached {
		t.Error("request with different k was served a cached entry")
	}

	stats := e.Stats()
	if stats.Requests != 3 {
		t.Errorf("Stats().Requests = %d, want 3", stats.Requests)
	}
	if stats.CacheHits != 1 {
		t.Errorf("Stats().CacheHits = %d, want 1", stats.CacheHits)
	}
	if stats.CacheMisses != 2 {
		t.Errorf("Stats().CacheMisses = %d, want 2", stats.CacheMisses)
	}
	if e.CacheLen() != 2 {
		t.Errorf("CacheLen() = %d, want 2", e.CacheLen())
	}
}

func TestFuseCacheDisabled(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)
	ctx := context.Background()

	if _, err := e.Fuse(ctx, 100, 3); err != nil {
		t.Fatalf("Fuse() error: %v", err)
	}
	if _, err := e.Fuse(ctx, 100, 3); err != nil {
		t.Fatalf("Fuse() second call error: %v", err)
	}

	stats := e.Stats()
	if stats.CacheHits != 0 || stats.CacheMisses != 0 {
		t.Errorf("cache counters moved with caching disabled: hits=%d misses=%d",
			stats.CacheHits, stats.CacheMisses)
	}
	if e.CacheLen() != 0 {
		t.Errorf("CacheLen() = %d with caching disabled, want 0", e.CacheLen())
	}
}
