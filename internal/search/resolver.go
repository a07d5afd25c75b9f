// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bookfuse/bookfuse/internal/catalog"
	"github.com/bookfuse/bookfuse/internal/config"
	"github.com/bookfuse/bookfuse/internal/database"
	"github.com/bookfuse/bookfuse/internal/fuzzy"
	"github.com/bookfuse/bookfuse/internal/logging"
)

// ErrEmptyQuery is returned when a search query is empty or whitespace
var ErrEmptyQuery = errors.New("search query is empty")

// MatchType identifies which strategy produced a result set
type MatchType string

const (
	// MatchPhrase means titles contained the query as a literal substring.
	MatchPhrase MatchType = "phrase"
	// MatchFuzzy means titles were selected by similarity scoring.
	MatchFuzzy MatchType = "fuzzy"
	// MatchNone means neither strategy found anything.
	MatchNone MatchType = "none"
)

// Match is one resolved title
type Match struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	AverageRating float64 `json:"average_rating"`
	RatingsCount  int64   `json:"ratings_count"`
	// Score is the 0-100 similarity for fuzzy matches, omitted for phrase
	// matches.
	Score float64 `json:"score,omitempty"`
}

// Result carries resolved matches and the strategy that produced them
type Result struct {
	Matches   []Match   `json:"matches"`
	MatchType MatchType `json:"match_type"`
}

// TitleStore is the database surface the resolver needs
type TitleStore interface {
	SearchTitlesByPhrase(ctx context.Context, query string, limit int) ([]database.TitleHit, error)
	SearchTitlesFuzzy(ctx context.Context, query string, k int, minScore float64) ([]database.TitleHit, error)
	IsRapidFuzzAvailable() bool
}

// Resolver turns free-text queries into catalog matches. Phrase containment
// is tried first; only when it finds nothing does fuzzy matching run.
// Within either strategy, results are ordered by ratings count descending,
// so the best-known edition of a title surfaces first.
type Resolver struct {
	store   TitleStore
	catalog *catalog.Catalog
	scorer  fuzzy.Scorer
	cfg     *config.SearchConfig
}

// NewResolver builds a resolver over the given store and catalog.
// The fuzzy scorer is selected by cfg.Scorer; an unknown name is a
// construction error.
func NewResolver(store TitleStore, cat *catalog.Catalog, cfg *config.SearchConfig) (*Resolver, error) {
	scorer, err := fuzzy.ForName(cfg.Scorer)
	if err != nil {
		return nil, fmt.Errorf("configuring resolver: %w", err)
	}
	return &Resolver{
		store:   store,
		catalog: cat,
		scorer:  scorer,
		cfg:     cfg,
	}, nil
}

// Resolve finds up to k catalog entries for query. An empty result is not an
// error; the caller reports MatchNone to the client. k is clamped to the
// configured limits, with non-positive values taking the default.
func (r *Resolver) Resolve(ctx context.Context, query string, k int) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	k = r.clampLimit(k)

	hits, err := r.store.SearchTitlesByPhrase(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("phrase search: %w", err)
	}
	if len(hits) > 0 {
		return &Result{MatchType: MatchPhrase, Matches: hitsToMatches(hits)}, nil
	}

	return r.resolveFuzzy(ctx, query, k)
}

// resolveFuzzy runs the fuzzy fallback, preferring database-side scoring and
// degrading to the in-process scorer when the extension is missing or errors
// mid-flight.
func (r *Resolver) resolveFuzzy(ctx context.Context, query string, k int) (*Result, error) {
	if r.store.IsRapidFuzzAvailable() {
		hits, err := r.store.SearchTitlesFuzzy(ctx, query, k, r.cfg.MinScore)
		if err == nil {
			if len(hits) == 0 {
				return &Result{MatchType: MatchNone}, nil
			}
			return &Result{MatchType: MatchFuzzy, Matches: hitsToMatches(hits)}, nil
		}
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("query", query).
			Msg("Database fuzzy search failed, falling back to in-process scoring")
	}

	corpus := r.catalog.TitleCorpus()
	entries := r.catalog.Titles()

	top := fuzzy.ExtractTopN(query, corpus, k, r.scorer, r.cfg.MinScore)
	if len(top) == 0 {
		return &Result{MatchType: MatchNone}, nil
	}

	matches := make([]Match, 0, len(top))
	for _, m := range top {
		entry := entries[m.Index]
		book, err := r.catalog.ByID(entry.ID)
		if err != nil {
			continue
		}
		matches = append(matches, Match{
			ID:            book.ID,
			Title:         book.Title,
			AverageRating: book.AverageRating,
			RatingsCount:  book.RatingsCount,
			Score:         m.Score,
		})
	}

	// Similarity decided which titles qualify; popularity orders the
	// survivors.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].RatingsCount != matches[j].RatingsCount {
			return matches[i].RatingsCount > matches[j].RatingsCount
		}
		return matches[i].ID < matches[j].ID
	})

	return &Result{MatchType: MatchFuzzy, Matches: matches}, nil
}

// clampLimit applies the configured default and ceiling to a requested k
func (r *Resolver) clampLimit(k int) int {
	if k <= 0 {
		return r.cfg.DefaultLimit
	}
	if k > r.cfg.MaxLimit {
		return r.cfg.MaxLimit
	}
	return k
}

func hitsToMatches(hits []database.TitleHit) []Match {
	matches := make([]Match, len(hits))
	for i, h := range hits {
		matches[i] = Match{
			ID:            h.ID,
			Title:         h.Title,
			AverageRating: h.AverageRating,
			RatingsCount:  h.RatingsCount,
			Score:         h.Score,
		}
	}
	return matches
}
