// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bookfuse/bookfuse/internal/logging"
)

// importAttachAlias names the attached SQLite database during import
const importAttachAlias = "src_catalog"

// ImportFromSQLite copies the books table from a SQLite catalog export into
// DuckDB and returns the number of rows imported. Existing rows with the
// same book_id are replaced, so re-running an import is safe.
//
// Source rows with a NULL book_id or title are skipped; NULL ratings and
// neighbor columns are normalized to zero values so catalog load never sees
// SQL NULLs.
func (db *DB) ImportFromSQLite(ctx context.Context, path string) (int64, error) {
	if !db.sqliteAvailable {
		return 0, fmt.Errorf("sqlite_scanner extension not loaded")
	}

	start := time.Now()

	// ATTACH does not accept bound parameters, so the path is inlined with
	// single quotes doubled. The path comes from configuration, not request
	// input.
	escapedPath := strings.ReplaceAll(path, "'", "''")
	attachStmt := fmt.Sprintf("ATTACH '%s' AS %s (TYPE sqlite);", escapedPath, importAttachAlias)
	if _, err := db.conn.ExecContext(ctx, attachStmt); err != nil {
		return 0, fmt.Errorf("failed to attach catalog export %s: %w", path, err)
	}
	defer func() {
		detachStmt := fmt.Sprintf("DETACH %s;", importAttachAlias)
		if _, err := db.conn.Exec(detachStmt); err != nil {
			logging.Warn().Err(err).Msg("Failed to detach catalog export")
		}
	}()

	insertStmt := fmt.Sprintf(`
		INSERT OR REPLACE INTO books
		SELECT CAST(book_id AS BIGINT),
		       CAST(title AS VARCHAR),
		       COALESCE(CAST(average_rating AS DOUBLE), 0.0),
		       COALESCE(CAST(ratings_count AS BIGINT), 0),
		       COALESCE(CAST(desc_neighbors AS VARCHAR), '[]'),
		       COALESCE(CAST(shelf_neighbors AS VARCHAR), '[]')
		FROM %s.books
		WHERE book_id IS NOT NULL AND title IS NOT NULL`, importAttachAlias)

	res, err := db.conn.ExecContext(ctx, insertStmt)
	if err != nil {
		return 0, fmt.Errorf("failed to import catalog rows: %w", err)
	}

	imported, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read import row count: %w", err)
	}

	logging.Info().
		Int64("rows", imported).
		Str("source", path).
		Dur("elapsed", time.Since(start)).
		Msg("Imported catalog from SQLite export")
	return imported, nil
}
