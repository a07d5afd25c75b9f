// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

package fuzzy

import (
	"fmt"
	"sort"
)

// Scorer measures the similarity of two strings on a 0..100 scale.
// Implementations must be safe for concurrent use; all shipped scorers are
// stateless.
type Scorer interface {
	// Score returns the similarity of a and b in [0, 100].
	Score(a, b string) float64
	// Name reports the scorer's configuration name.
	Name() string
}

// Match is one corpus entry selected by ExtractTopN.
type Match struct {
	// Value is the corpus entry in its original (unnormalized) form.
	Value string
	// Index is the entry's position in the corpus.
	Index int
	// Score is the similarity to the query in [0, 100].
	Score float64
}

// DefaultMinScore is the similarity floor below which a corpus entry is not
// considered a match at all.
const DefaultMinScore = 40.0

// ExtractTopN scores query against every corpus entry and returns the best
// n matches with Score >= minScore, ordered by score descending. Equal
// scores keep corpus order, so results are deterministic for a fixed
// corpus. Returns nil when nothing clears the floor.
func ExtractTopN(query string, corpus []string, n int, scorer Scorer, minScore float64) []Match {
	if n <= 0 || len(corpus) == 0 {
		return nil
	}
	if scorer == nil {
		scorer = CombinedScorer{}
	}

	// Normalize is idempotent, so pre-normalizing the query once is safe
	// even though Score normalizes both arguments again.
	nq := Normalize(query)

	matches := make([]Match, 0, n)
	for i, entry := range corpus {
		score := scorer.Score(nq, entry)
		if score < minScore {
			continue
		}
		matches = append(matches, Match{Value: entry, Index: i, Score: score})
	}
	if len(matches) == 0 {
		return nil
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > n {
		matches = matches[:n]
	}
	return matches
}

// ForName resolves a configuration name to a Scorer.
func ForName(name string) (Scorer, error) {
	switch name {
	case "", "combined":
		return CombinedScorer{}, nil
	case "ratio":
		return RatioScorer{}, nil
	case "token_set":
		return TokenSetScorer{}, nil
	default:
		return nil, fmt.Errorf("unknown fuzzy scorer %q", name)
	}
}
