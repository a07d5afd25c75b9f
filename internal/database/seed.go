// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

package database

import (
	"context"
	"fmt"

	"github.com/bookfuse/bookfuse/internal/catalog"
	"github.com/bookfuse/bookfuse/internal/logging"
)

// SeedSampleCatalog inserts a small built-in catalog when the books table is
// empty, so a fresh checkout serves real responses without a catalog export.
// Returns the number of rows seeded, zero when the table already has data.
func (db *DB) SeedSampleCatalog(ctx context.Context) (int, error) {
	count, err := db.CountBooks(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		logging.Debug().Int64("books", count).Msg("Catalog already populated, skipping sample seed")
		return 0, nil
	}

	rows := sampleCatalog()
	if err := db.InsertBooks(ctx, rows); err != nil {
		return 0, fmt.Errorf("failed to seed sample catalog: %w", err)
	}

	logging.Info().Int("rows", len(rows)).Msg("Seeded sample catalog")
	return len(rows), nil
}

// sampleCatalog returns an interlinked set of well-known titles. Every
// neighbor id resolves to another sample row and no book lists itself.
// Neighbor lists use the JSON string-id form the precompute pipeline emits.
func sampleCatalog() []catalog.Row {
	return []catalog.Row{
		{ID: 1, Title: "Dune", AverageRating: 4.25, RatingsCount: 820000,
			DescNeighbors: `["2", "3", "9"]`, ShelfNeighbors: `["8", "9", "7", "2"]`},
		{ID: 2, Title: "Dune Messiah", AverageRating: 3.89, RatingsCount: 210000,
			DescNeighbors: `["1", "3"]`, ShelfNeighbors: `["3", "1", "9"]`},
		{ID: 3, Title: "Children of Dune", AverageRating: 3.92, RatingsCount: 150000,
			DescNeighbors: `["2", "1"]`, ShelfNeighbors: `["2", "1"]`},
		{ID: 4, Title: "The Hobbit", AverageRating: 4.28, RatingsCount: 3100000,
			DescNeighbors: `["5"]`, ShelfNeighbors: `["5", "6", "11"]`},
		{ID: 5, Title: "The Fellowship of the Ring", AverageRating: 4.38, RatingsCount: 2500000,
			DescNeighbors: `["4"]`, ShelfNeighbors: `["4", "6"]`},
		{ID: 6, Title: "The Name of the Wind", AverageRating: 4.52, RatingsCount: 900000,
			DescNeighbors: `["11", "4"]`, ShelfNeighbors: `["4", "5", "11"]`},
		{ID: 7, Title: "Ender's Game", AverageRating: 4.30, RatingsCount: 1200000,
			DescNeighbors: `["8", "9"]`, ShelfNeighbors: `["8", "1", "9"]`},
		{ID: 8, Title: "Foundation", AverageRating: 4.17, RatingsCount: 450000,
			DescNeighbors: `["9", "7"]`, ShelfNeighbors: `["1", "7", "9", "12"]`},
		{ID: 9, Title: "Hyperion", AverageRating: 4.23, RatingsCount: 230000,
			DescNeighbors: `["8", "1"]`, ShelfNeighbors: `["7", "8", "10"]`},
		{ID: 10, Title: "The Left Hand of Darkness", AverageRating: 4.06, RatingsCount: 120000,
			DescNeighbors: `["12", "11"]`, ShelfNeighbors: `["12", "9", "11"]`},
		{ID: 11, Title: "A Wizard of Earthsea", AverageRating: 4.01, RatingsCount: 110000,
			DescNeighbors: `["10", "6"]`, ShelfNeighbors: `["4", "6", "10"]`},
		{ID: 12, Title: "The Dispossessed", AverageRating: 4.19, RatingsCount: 90000,
			DescNeighbors: `["10"]`, ShelfNeighbors: `["10", "8"]`},
	}
}
