// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

package catalog

import "context"

// Book is one immutable catalog record. Neighbor lists are ordered
// most-similar first and are decoded from their stored JSON form exactly
// once, at catalog load time.
type Book struct {
	ID            int64
	Title         string
	AverageRating float64
	RatingsCount  int64

	// DescNeighbors are ids of books with similar descriptions.
	DescNeighbors []int64
	// ShelfNeighbors are ids of books sharing popular shelves.
	ShelfNeighbors []int64
}

// TitleEntry pairs a book id with its title. The catalog keeps these in
// load order as the corpus for fuzzy title matching.
type TitleEntry struct {
	ID    int64
	Title string
}

// Row is one raw catalog row as read from storage, before the neighbor
// JSON columns are decoded.
type Row struct {
	ID             int64
	Title          string
	AverageRating  float64
	RatingsCount   int64
	DescNeighbors  string // JSON array of book ids
	ShelfNeighbors string // JSON array of book ids
}

// Source streams raw catalog rows. Load consumes a Source once at startup;
// implementations stop early and return the callback's error if it is
// non-nil.
type Source interface {
	StreamBooks(ctx context.Context, fn func(Row) error) error
}
