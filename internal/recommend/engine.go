// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

package recommend

import (
	"context"
	"sync/atomic"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/bookfuse/bookfuse/internal/catalog"
	"github.com/bookfuse/bookfuse/internal/config"
	"github.com/bookfuse/bookfuse/internal/logging"
	"github.com/bookfuse/bookfuse/internal/metrics"
)

// cacheKey identifies one fusion result. k participates because a (book, 3)
// result is not a prefix-safe truncation of a (book, 10) result: the shelf
// tier only runs when the description tier leaves slots open.
type cacheKey struct {
	bookID int64
	k      int
}

// Engine fuses precomputed neighbor lists into recommendation lists.
// Fusion is deterministic: the same book and k always produce the same
// items in the same order. Safe for concurrent use.
type Engine struct {
	catalog *catalog.Catalog
	cfg     *config.RecommendConfig

	cache *expirable.LRU[cacheKey, *Result]

	requestCount atomic.Int64
	cacheHits    atomic.Int64
	cacheMisses  atomic.Int64
}

// NewEngine creates a fusion engine over a loaded catalog. A CacheSize of
// zero disables result caching.
func NewEngine(cat *catalog.Catalog, cfg *config.RecommendConfig) *Engine {
	e := &Engine{
		catalog: cat,
		cfg:     cfg,
	}
	if cfg.CacheSize > 0 {
		e.cache = expirable.NewLRU[cacheKey, *Result](cfg.CacheSize, nil, cfg.CacheTTL)
	}
	return e
}

// Fuse returns up to k recommendations for bookID. Description neighbors
// have strict priority: shelf neighbors are consulted only for slots the
// description tier could not fill. Returns catalog.ErrBookNotFound when
// bookID is not in the catalog; an empty result with a Reason when the book
// exists but nothing can be recommended.
func (e *Engine) Fuse(ctx context.Context, bookID int64, k int) (*Result, error) {
	e.requestCount.Add(1)
	k = e.clampK(k)

	key := cacheKey{bookID: bookID, k: k}
	if e.cache != nil {
		if res, ok := e.cache.Get(key); ok {
			e.cacheHits.Add(1)
			metrics.RecordFusionCache(true)
			// Cached entries are shared between requests; the Cached mark
			// goes on a copy so the stored value stays pristine.
			served := *res
			served.Cached = true
			return &served, nil
		}
		e.cacheMisses.Add(1)
		metrics.RecordFusionCache(false)
	}

	book, err := e.catalog.ByID(bookID)
	if err != nil {
		return nil, err
	}

	res := e.fuse(ctx, book, k)
	if e.cache != nil {
		e.cache.Add(key, res)
	}
	return res, nil
}

// fuse runs the two-tier greedy fill and hydrates picks in fill order
func (e *Engine) fuse(ctx context.Context, book *catalog.Book, k int) *Result {
	// Seeded with the source book so it can never recommend itself, even
	// when a precomputed list contains its own id.
	seen := make(map[int64]struct{}, k+1)
	seen[book.ID] = struct{}{}

	items := make([]Item, 0, k)
	dangling := 0

	fill := func(ids []int64, src Source) {
		for _, id := range ids {
			if len(items) == k {
				return
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}

			neighbor, err := e.catalog.ByID(id)
			if err != nil {
				// Precomputed lists can reference books dropped from the
				// catalog; they must not consume an output slot.
				dangling++
				continue
			}
			items = append(items, Item{
				ID:            neighbor.ID,
				Title:         neighbor.Title,
				AverageRating: neighbor.AverageRating,
				RatingsCount:  neighbor.RatingsCount,
				Source:        src,
			})
		}
	}

	fill(book.DescNeighbors, SourceDescription)
	if len(items) < k {
		fill(book.ShelfNeighbors, SourcePopularShelves)
	}

	if dangling > 0 {
		logging.Ctx(ctx).Debug().
			Int64("book_id", book.ID).
			Int("dangling", dangling).
			Msg("Skipped neighbor ids missing from catalog")
	}

	reason := ""
	if len(items) == 0 {
		if len(book.DescNeighbors) == 0 && len(book.ShelfNeighbors) == 0 {
			reason = ReasonNoNeighbors
		} else {
			reason = ReasonNoneResolvable
		}
	}

	return &Result{
		BookID: book.ID,
		Title:  book.Title,
		Items:  items,
		Reason: reason,
	}
}

// clampK applies the configured default and ceiling to a requested k
func (e *Engine) clampK(k int) int {
	if k <= 0 {
		return e.cfg.DefaultK
	}
	if k > e.cfg.MaxK {
		return e.cfg.MaxK
	}
	return k
}

// Stats returns a snapshot of the engine counters
func (e *Engine) Stats() Stats {
	return Stats{
		Requests:    e.requestCount.Load(),
		CacheHits:   e.cacheHits.Load(),
		CacheMisses: e.cacheMisses.Load(),
	}
}

// CacheLen returns the number of cached results, zero when caching is
// disabled
func (e *Engine) CacheLen() int {
	if e.cache == nil {
		return 0
	}
	return e.cache.Len()
}
