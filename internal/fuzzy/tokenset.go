// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

package fuzzy

import "strings"

// TokenSetScorer scores two strings by comparing their deduplicated token
// sets, ignoring word order and repetition. A query whose tokens are a
// subset of the title's tokens scores 100, which makes this scorer forgiving
// of partial titles ("dune messiah" vs "dune messiah: the dune chronicles").
type TokenSetScorer struct{}

// Name reports the scorer's configuration name.
func (TokenSetScorer) Name() string { return "token_set" }

// Score returns the token set similarity of a and b after normalization.
func (TokenSetScorer) Score(a, b string) float64 {
	ta := tokenSet(Normalize(a))
	tb := tokenSet(Normalize(b))

	if len(ta) == 0 && len(tb) == 0 {
		return 100
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	inter, restA, restB := partitionTokens(ta, tb)

	// One side fully contained in the other.
	if len(inter) > 0 && (len(restA) == 0 || len(restB) == 0) {
		return 100
	}

	sect := strings.Join(inter, " ")
	joinedA := joinSections(sect, restA)
	joinedB := joinSections(sect, restB)

	best := indelRatio(sect, joinedA)
	if r := indelRatio(sect, joinedB); r > best {
		best = r
	}
	if r := indelRatio(joinedA, joinedB); r > best {
		best = r
	}
	return best
}

// partitionTokens splits two sorted token sets into their intersection and
// the per-side remainders, preserving sorted order.
func partitionTokens(a, b []string) (inter, restA, restB []string) {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			inter = append(inter, a[i])
			i++
			j++
		case a[i] < b[j]:
			restA = append(restA, a[i])
			i++
		default:
			restB = append(restB, b[j])
			j++
		}
	}
	restA = append(restA, a[i:]...)
	restB = append(restB, b[j:]...)
	return inter, restA, restB
}

// joinSections concatenates the shared-token section with a remainder.
func joinSections(sect string, rest []string) string {
	if len(rest) == 0 {
		return sect
	}
	if sect == "" {
		return strings.Join(rest, " ")
	}
	return sect + " " + strings.Join(rest, " ")
}

// CombinedScorer takes the maximum of the indel ratio and the token set
// ratio, matching the scoring used by the database-side fuzzy path so both
// paths rank candidates consistently.
type CombinedScorer struct{}

// Name reports the scorer's configuration name.
func (CombinedScorer) Name() string { return "combined" }

// Score returns the higher of the two underlying similarity scores.
func (CombinedScorer) Score(a, b string) float64 {
	ratio := (RatioScorer{}).Score(a, b)
	tokens := (TokenSetScorer{}).Score(a, b)
	if tokens > ratio {
		return tokens
	}
	return ratio
}
