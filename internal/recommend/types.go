// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

package recommend

// Source identifies which neighbor tier contributed a recommendation
type Source int

const (
	// SourceDescription marks neighbors from description-similarity lists.
	SourceDescription Source = iota
	// SourcePopularShelves marks neighbors from shelf co-occurrence lists.
	SourcePopularShelves
)

// String returns the wire name of the source
func (s Source) String() string {
	switch s {
	case SourceDescription:
		return "description"
	case SourcePopularShelves:
		return "popular_shelves"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the source as its wire name
func (s Source) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Item is one recommended book, tagged with the tier that produced it
type Item struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	AverageRating float64 `json:"average_rating"`
	RatingsCount  int64   `json:"ratings_count"`
	Source        Source  `json:"source"`
}

// Reasons reported when a fusion result is empty. An empty result is a
// valid answer, not an error.
const (
	// ReasonNoNeighbors means the source book has no precomputed neighbor
	// lists at all.
	ReasonNoNeighbors = "book has no precomputed neighbors"
	// ReasonNoneResolvable means neighbor lists exist but every id was a
	// duplicate, the book itself, or missing from the catalog.
	ReasonNoneResolvable = "no precomputed neighbors resolve to catalog entries"
)

// Result is a fused recommendation list for one source book
type Result struct {
	BookID int64  `json:"book_id"`
	Title  string `json:"title"`
	Items  []Item `json:"items"`
	// Reason explains an empty Items list; empty otherwise.
	Reason string `json:"reason,omitempty"`
	// Cached marks a result served from the fusion cache. It rides the
	// response envelope's metadata rather than the payload.
	Cached bool `json:"-"`
}

// Stats is a point-in-time snapshot of engine counters
type Stats struct {
	Requests    int64 `json:"requests"`
	CacheHits   int64 `json:"cache_hits"`
	CacheMisses int64 `json:"cache_misses"`
}
