// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

// Package search resolves free-text queries to catalog entries.
//
// Resolution is two-stage. A phrase pass looks for titles containing the
// query as a literal substring and orders hits by ratings count, so the
// best-known matching edition comes first. Only when the phrase pass finds
// nothing does the fuzzy pass run: similarity scoring selects the k closest
// titles above a floor, and that subset is then reordered by ratings count.
// A query that survives neither pass is a valid empty result, not an error.
//
// Fuzzy scoring prefers the database-side rapidfuzz extension and falls
// back to the in-process scorers from the fuzzy package, which implement
// the same ratio semantics.
//
// The package also provides TitleIndex, a prefix tree over catalog titles
// backing the autocomplete endpoint.
package search
