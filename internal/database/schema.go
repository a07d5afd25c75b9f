// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/bookfuse/bookfuse/internal/logging"
)

// createTables creates the catalog schema.
//
// Neighbor lists are stored as JSON-encoded arrays of book ids in VARCHAR
// columns, exactly as the precompute pipeline exports them. They are decoded
// once at catalog load, never queried relationally.
func (db *DB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS books (
		book_id BIGINT PRIMARY KEY,
		title VARCHAR NOT NULL,
		average_rating DOUBLE NOT NULL DEFAULT 0.0,
		ratings_count BIGINT NOT NULL DEFAULT 0,
		desc_neighbors VARCHAR NOT NULL DEFAULT '[]',
		shelf_neighbors VARCHAR NOT NULL DEFAULT '[]'
	);`

	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to create books table: %w", err)
	}
	return nil
}

// createIndexes creates secondary indexes used by the search paths
func (db *DB) createIndexes() error {
	indexes := []string{
		// Phrase and fuzzy results are ordered by popularity.
		"CREATE INDEX IF NOT EXISTS idx_books_ratings_count ON books(ratings_count DESC);",
	}

	for _, idx := range indexes {
		if _, err := db.conn.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// RebuildTitleIndex rebuilds the full-text index over book titles.
// Must be called after any bulk load; the FTS index does not track table
// mutations. No-op when the fts extension is unavailable.
func (db *DB) RebuildTitleIndex(ctx context.Context) error {
	if !db.ftsAvailable {
		logging.Debug().Msg("Skipping title index rebuild, fts extension unavailable")
		return nil
	}

	start := time.Now()
	_, err := db.conn.ExecContext(ctx,
		"PRAGMA create_fts_index('books', 'book_id', 'title', overwrite := 1);")
	if err != nil {
		return fmt.Errorf("failed to build title index: %w", err)
	}

	// Cached statement plans may reference the dropped index generation.
	db.invalidateStmtCache()

	logging.Info().
		Dur("elapsed", time.Since(start)).
		Msg("Rebuilt full-text title index")
	return nil
}
