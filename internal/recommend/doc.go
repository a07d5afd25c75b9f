// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

// Package recommend fuses precomputed neighbor lists into recommendation
// responses.
//
// Every catalog book carries two neighbor lists computed offline: one from
// description-text similarity, one from shelf co-occurrence. The engine
// merges them with strict tier priority. Description neighbors are taken
// first, in list order; shelf neighbors only fill whatever slots remain.
// A seen set primed with the source book keeps the output duplicate-free
// and stops a book from recommending itself. Ids that no longer resolve to
// catalog entries are skipped without consuming a slot, so a request for k
// items returns exactly k whenever enough distinct resolvable neighbors
// exist.
//
// Results are hydrated with full book metadata in fill order and cached in
// an expiring LRU keyed by (book, k). An unknown book id surfaces as
// catalog.ErrBookNotFound; a known book with nothing to recommend yields an
// empty result with a Reason, which is not an error.
package recommend
