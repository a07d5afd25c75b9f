// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/bookfuse/bookfuse/internal/metrics"
)

// TitleHit is one catalog row returned by a title search. Score is the
// 0-100 similarity for fuzzy hits and zero for phrase hits.
type TitleHit struct {
	ID            int64
	Title         string
	AverageRating float64
	RatingsCount  int64
	Score         float64
}

// phraseSearchFTS prunes candidates with the full-text index, then keeps only
// titles containing the query as a literal substring. match_bm25 cannot be
// referenced in the WHERE clause of the same SELECT, hence the CTE.
//
// conjunctive := 1 requires every query term to match, so the index pass
// never admits a row the contains() refinement would have to scan the whole
// table to find.
const phraseSearchFTS = `
	WITH ranked AS (
		SELECT book_id, title, average_rating, ratings_count,
		       fts_main_books.match_bm25(book_id, ?, conjunctive := 1) AS relevance
		FROM books
	)
	SELECT book_id, title, average_rating, ratings_count
	FROM ranked
	WHERE relevance IS NOT NULL
	  AND contains(lower(title), lower(?))
	ORDER BY ratings_count DESC, book_id
	LIMIT ?`

// phraseSearchLike is the fallback when the fts extension is unavailable,
// and the only path for queries with no indexable word characters.
const phraseSearchLike = `
	SELECT book_id, title, average_rating, ratings_count
	FROM books
	WHERE title ILIKE ? ESCAPE '\'
	ORDER BY ratings_count DESC, book_id
	LIMIT ?`

// fuzzySearchRapidFuzz scores every title against the query, keeps the k
// most similar above the floor, then reorders that subset by popularity.
// The two ORDER BY passes are intentional: similarity decides which titles
// qualify, popularity decides how the survivors rank.
const fuzzySearchRapidFuzz = `
	WITH scored AS (
		SELECT book_id, title, average_rating, ratings_count,
		       GREATEST(
		           rapidfuzz_ratio(lower(title), lower(?)),
		           rapidfuzz_token_set_ratio(lower(title), lower(?))
		       ) AS score
		FROM books
	),
	top_matches AS (
		SELECT book_id, title, average_rating, ratings_count, score
		FROM scored
		WHERE score >= ?
		ORDER BY score DESC, book_id
		LIMIT ?
	)
	SELECT book_id, title, average_rating, ratings_count, score
	FROM top_matches
	ORDER BY ratings_count DESC, book_id`

// SearchTitlesByPhrase returns books whose title contains the query as a
// literal substring, most-rated first. Special characters in the query match
// literally. Returns an empty slice when nothing matches.
func (db *DB) SearchTitlesByPhrase(ctx context.Context, query string, limit int) (hits []TitleHit, err error) {
	if limit <= 0 {
		return nil, nil
	}

	// The FTS tokenizer drops punctuation, so a query with no word
	// characters can only be answered by the literal path.
	if !db.ftsAvailable || !hasWordCharacters(query) {
		return db.searchTitlesLike(ctx, query, limit)
	}

	defer func(start time.Time) {
		metrics.RecordDBQuery("phrase_search", time.Since(start), err)
	}(time.Now())

	stmt, err := db.getStmt(ctx, phraseSearchFTS)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, query, query, limit)
	if err != nil {
		return nil, fmt.Errorf("phrase search failed: %w", err)
	}
	defer closeWithLog(rows, "phrase search rows")

	return scanTitleHits(rows)
}

// searchTitlesLike is the ILIKE phrase path. The query is escaped so LIKE
// metacharacters match literally.
func (db *DB) searchTitlesLike(ctx context.Context, query string, limit int) (hits []TitleHit, err error) {
	defer func(start time.Time) {
		metrics.RecordDBQuery("substring_search", time.Since(start), err)
	}(time.Now())

	stmt, err := db.getStmt(ctx, phraseSearchLike)
	if err != nil {
		return nil, err
	}

	pattern := "%" + escapeLike(query) + "%"
	rows, err := stmt.QueryContext(ctx, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("substring search failed: %w", err)
	}
	defer closeWithLog(rows, "substring search rows")

	return scanTitleHits(rows)
}

// SearchTitlesFuzzy returns the k titles most similar to the query, reordered
// by popularity, using database-side rapidfuzz scoring. Callers must check
// IsRapidFuzzAvailable first; the in-process scorer covers the fallback.
func (db *DB) SearchTitlesFuzzy(ctx context.Context, query string, k int, minScore float64) (hits []TitleHit, err error) {
	if k <= 0 {
		return nil, nil
	}
	if !db.rapidfuzzAvailable {
		return nil, fmt.Errorf("rapidfuzz extension not loaded")
	}

	defer func(start time.Time) {
		metrics.RecordDBQuery("fuzzy_search", time.Since(start), err)
	}(time.Now())

	stmt, err := db.getStmt(ctx, fuzzySearchRapidFuzz)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, query, query, minScore, k)
	if err != nil {
		return nil, fmt.Errorf("fuzzy search failed: %w", err)
	}
	defer closeWithLog(rows, "fuzzy search rows")

	return scanScoredTitleHits(rows)
}

// scanTitleHits drains a result set of (book_id, title, average_rating,
// ratings_count) rows
func scanTitleHits(rows *sql.Rows) ([]TitleHit, error) {
	var hits []TitleHit
	for rows.Next() {
		var h TitleHit
		if err := rows.Scan(&h.ID, &h.Title, &h.AverageRating, &h.RatingsCount); err != nil {
			return nil, fmt.Errorf("failed to scan search hit: %w", err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search iteration failed: %w", err)
	}
	return hits, nil
}

// scanScoredTitleHits drains a result set carrying a trailing score column
func scanScoredTitleHits(rows *sql.Rows) ([]TitleHit, error) {
	var hits []TitleHit
	for rows.Next() {
		var h TitleHit
		if err := rows.Scan(&h.ID, &h.Title, &h.AverageRating, &h.RatingsCount, &h.Score); err != nil {
			return nil, fmt.Errorf("failed to scan scored hit: %w", err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scored search iteration failed: %w", err)
	}
	return hits, nil
}

// escapeLike escapes LIKE metacharacters so user input matches literally
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

// hasWordCharacters reports whether s contains at least one letter or digit
func hasWordCharacters(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
