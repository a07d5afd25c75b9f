// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

package fuzzy

// RatioScorer scores two strings by normalized indel similarity: the
// fraction of characters preserved under the cheapest insert/delete
// transcript between them, scaled to 0..100. Identical strings score 100,
// disjoint strings score 0. Order sensitive.
type RatioScorer struct{}

// Name reports the scorer's configuration name.
func (RatioScorer) Name() string { return "ratio" }

// Score returns the indel similarity of a and b after normalization.
func (RatioScorer) Score(a, b string) float64 {
	return indelRatio(Normalize(a), Normalize(b))
}

// indelRatio computes the normalized indel similarity of two
// already-normalized strings.
//
// The indel distance is len(a) + len(b) - 2*LCS(a, b); the similarity is
// 1 - dist/(len(a)+len(b)), which simplifies to 2*LCS/(len(a)+len(b)).
func indelRatio(a, b string) float64 {
	if a == b {
		return 100
	}

	ra := []rune(a)
	rb := []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	return 200 * float64(lcsLength(ra, rb)) / float64(total)
}

// lcsLength returns the length of the longest common subsequence of a and b
// using a two-row dynamic program.
func lcsLength(a, b []rune) int {
	if len(b) > len(a) {
		a, b = b, a
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
