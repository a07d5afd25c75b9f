// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

// Package catalog holds the in-memory book catalog.
//
// The catalog is loaded once at startup from a Source (the DuckDB store in
// production, a fake in tests) and is immutable afterwards, so all accessors
// are safe for concurrent use without locking. Each book carries two
// precomputed neighbor lists, by description similarity and by shared
// popular shelves, produced by an offline pipeline and stored as JSON
// columns. Those columns are decoded exactly once here; query paths only
// ever touch native []int64 slices.
//
// Besides the id-keyed lookup map, the catalog keeps an ordered (id, title)
// slice and a parallel title-only slice. The title slice is the corpus the
// fuzzy resolver scores against; indices returned by fuzzy matching map back
// through the entry slice to book ids.
package catalog
