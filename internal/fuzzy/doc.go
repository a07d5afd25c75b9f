// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

// Package fuzzy provides approximate string matching for the title
// resolver's fallback phase.
//
// Matching is a pluggable capability expressed by the Scorer interface:
// score two strings' similarity on a 0..100 scale. Three implementations
// ship with the package:
//
//   - RatioScorer: normalized indel (insert/delete) similarity over the
//     whole string, order sensitive.
//   - TokenSetScorer: order-insensitive comparison of deduplicated token
//     sets; robust to word reordering and partial titles.
//   - CombinedScorer: max of both, the default for title matching.
//
// ExtractTopN ranks a corpus against a query and returns the best N
// entries, mirroring the extraction step the resolver runs over the full
// catalog title list when phrase search comes up empty.
//
// All scoring happens on NFKC-normalized, case-folded text with
// non-alphanumeric runs reduced to single spaces, so visually equivalent
// titles compare equal and punctuation differences never split a match.
package fuzzy
