// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bookfuse/bookfuse/internal/catalog"
	"github.com/bookfuse/bookfuse/internal/logging"
	"github.com/bookfuse/bookfuse/internal/metrics"
)

// StreamBooks iterates every catalog row in book_id order, invoking fn per
// row. It implements catalog.Source. Iteration stops at the first fn error.
func (db *DB) StreamBooks(ctx context.Context, fn func(catalog.Row) error) (err error) {
	defer func(start time.Time) {
		metrics.RecordDBQuery("stream_books", time.Since(start), err)
	}(time.Now())

	rows, err := db.conn.QueryContext(ctx, `
		SELECT book_id, title, average_rating, ratings_count,
		       COALESCE(desc_neighbors, '[]'),
		       COALESCE(shelf_neighbors, '[]')
		FROM books
		ORDER BY book_id`)
	if err != nil {
		return fmt.Errorf("failed to query books: %w", err)
	}
	defer closeWithLog(rows, "book rows")

	for rows.Next() {
		var row catalog.Row
		if err := rows.Scan(&row.ID, &row.Title, &row.AverageRating,
			&row.RatingsCount, &row.DescNeighbors, &row.ShelfNeighbors); err != nil {
			return fmt.Errorf("failed to scan book row: %w", err)
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return rows.Err()
}

// CountBooks returns the number of catalog rows
func (db *DB) CountBooks(ctx context.Context) (int64, error) {
	var count int64
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM books").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return count, nil
}

// InsertBooks bulk inserts catalog rows in a single transaction.
// Used by the sample seeder; the SQLite import path bypasses this and
// copies rows inside DuckDB.
func (db *DB) InsertBooks(ctx context.Context, batch []catalog.Row) (err error) {
	if len(batch) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				logging.Warn().Err(rbErr).Msg("Failed to roll back book insert")
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO books (book_id, title, average_rating, ratings_count,
		                   desc_neighbors, shelf_neighbors)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare book insert: %w", err)
	}
	defer closeWithLog(stmt, "insert statement")

	for _, row := range batch {
		if _, err = stmt.ExecContext(ctx, row.ID, row.Title, row.AverageRating,
			row.RatingsCount, row.DescNeighbors, row.ShelfNeighbors); err != nil {
			return fmt.Errorf("failed to insert book %d: %w", row.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit book insert: %w", err)
	}
	return nil
}
