// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookfuse/bookfuse/internal/logging"
)

var (
	// ErrBookNotFound is returned when a book id is absent from the catalog.
	ErrBookNotFound = errors.New("book not found in catalog")

	// ErrEmptyCatalog is returned by Load when the source yields no books.
	ErrEmptyCatalog = errors.New("catalog contains no books")
)

// Catalog is the immutable in-memory book catalog. All methods are safe for
// concurrent use once Load has returned.
type Catalog struct {
	byID    map[int64]*Book
	entries []TitleEntry // load order, parallel to titles
	titles  []string
	stats   Stats
}

// Stats summarizes the loaded catalog.
type Stats struct {
	Books      int       `json:"books"`
	DescEdges  int       `json:"desc_neighbor_edges"`
	ShelfEdges int       `json:"shelf_neighbor_edges"`
	LoadedAt   time.Time `json:"loaded_at"`
}

// Load builds the catalog by streaming every row from src and decoding the
// neighbor JSON columns. Rows with an unparseable neighbor column keep an
// empty list for that tier; duplicate ids keep the first row seen. Load
// fails if the source errors or yields no books, which callers treat as the
// catalog being unavailable.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	log := logging.Ctx(ctx)
	start := time.Now()

	c := &Catalog{byID: make(map[int64]*Book, 4096)}

	err := src.StreamBooks(ctx, func(row Row) error {
		if _, dup := c.byID[row.ID]; dup {
			log.Warn().Int64("book_id", row.ID).Msg("Duplicate book id in catalog source, keeping first")
			return nil
		}

		book := &Book{
			ID:            row.ID,
			Title:         row.Title,
			AverageRating: row.AverageRating,
			RatingsCount:  row.RatingsCount,
		}
		book.DescNeighbors = c.decodeTier(log, row.ID, "description", row.DescNeighbors)
		book.ShelfNeighbors = c.decodeTier(log, row.ID, "shelves", row.ShelfNeighbors)

		c.byID[row.ID] = book
		c.entries = append(c.entries, TitleEntry{ID: row.ID, Title: row.Title})
		c.titles = append(c.titles, row.Title)
		c.stats.DescEdges += len(book.DescNeighbors)
		c.stats.ShelfEdges += len(book.ShelfNeighbors)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("streaming catalog rows: %w", err)
	}
	if len(c.byID) == 0 {
		return nil, ErrEmptyCatalog
	}

	c.stats.Books = len(c.byID)
	c.stats.LoadedAt = time.Now().UTC()

	log.Info().
		Int("books", c.stats.Books).
		Int("desc_edges", c.stats.DescEdges).
		Int("shelf_edges", c.stats.ShelfEdges).
		Dur("elapsed", time.Since(start)).
		Msg("Catalog loaded")

	return c, nil
}

// decodeTier decodes one neighbor column, logging problems without failing
// the load.
func (c *Catalog) decodeTier(log *zerolog.Logger, bookID int64, tier, raw string) []int64 {
	ids, skipped, err := decodeNeighborIDs(raw)
	if err != nil {
		log.Warn().
			Int64("book_id", bookID).
			Str("tier", tier).
			Err(err).
			Msg("Unparseable neighbor column, treating tier as empty")
		return nil
	}
	if skipped > 0 {
		log.Debug().
			Int64("book_id", bookID).
			Str("tier", tier).
			Int("skipped", skipped).
			Msg("Dropped unparseable neighbor ids")
	}
	return ids
}

// ByID returns the book with the given id, or ErrBookNotFound.
func (c *Catalog) ByID(id int64) (*Book, error) {
	book, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrBookNotFound, id)
	}
	return book, nil
}

// Has reports whether a book id exists in the catalog.
func (c *Catalog) Has(id int64) bool {
	_, ok := c.byID[id]
	return ok
}

// Titles returns the catalog's (id, title) entries in load order. The
// returned slice is shared; callers must not modify it.
func (c *Catalog) Titles() []TitleEntry {
	return c.entries
}

// TitleCorpus returns the title strings parallel to Titles, in the same
// order. The returned slice is shared; callers must not modify it.
func (c *Catalog) TitleCorpus() []string {
	return c.titles
}

// Len returns the number of books in the catalog.
func (c *Catalog) Len() int {
	return len(c.byID)
}

// Stats returns summary statistics captured at load time.
func (c *Catalog) Stats() Stats {
	return c.stats
}
