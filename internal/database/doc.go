// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

// Package database wraps the embedded DuckDB store holding the book catalog.
//
// The store is populated once, by an offline pipeline export (imported from
// SQLite via the sqlite_scanner extension) or by the built-in sample
// catalog, and is read-only afterwards. Query traffic is small and fixed:
// phrase search over titles, optional database-side fuzzy scoring, and the
// full catalog stream consumed at startup by the catalog package.
//
// Three DuckDB extensions are used when available, each with a graceful
// fallback:
//
//   - fts: BM25 title index backing phrase search; falls back to an ILIKE
//     scan.
//   - rapidfuzz (community): database-side fuzzy candidate scoring; falls
//     back to in-process scoring by the fuzzy package.
//   - sqlite_scanner: one-time catalog import from a SQLite export; required
//     only when an import path is configured.
//
// Extension availability is probed at startup and exposed through
// IsFTSAvailable, IsRapidFuzzAvailable, and IsSQLiteAvailable.
package database
