// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

package search

import (
	"sort"
	"strings"
	"sync"

	"github.com/bookfuse/bookfuse/internal/catalog"
)

// Suggestion is one autocomplete candidate
type Suggestion struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	RatingsCount int64  `json:"ratings_count"`
}

// suggestionNode is one rune of the title index. A non-nil entry marks a
// complete title ending at this node.
type suggestionNode struct {
	children map[rune]*suggestionNode
	entry    *Suggestion
}

func newSuggestionNode() *suggestionNode {
	return &suggestionNode{children: make(map[rune]*suggestionNode)}
}

// TitleIndex is a prefix tree over catalog titles for autocomplete.
// Lookups run in O(m) for a prefix of m runes plus the size of the matched
// subtree. Matching is case-insensitive; stored titles keep their original
// casing. Safe for concurrent use.
type TitleIndex struct {
	mu   sync.RWMutex
	root *suggestionNode
	size int
}

// NewTitleIndex creates an empty title index
func NewTitleIndex() *TitleIndex {
	return &TitleIndex{root: newSuggestionNode()}
}

// BuildTitleIndex populates a title index from a loaded catalog
func BuildTitleIndex(cat *catalog.Catalog) *TitleIndex {
	idx := NewTitleIndex()
	for _, entry := range cat.Titles() {
		book, err := cat.ByID(entry.ID)
		if err != nil {
			continue
		}
		idx.Insert(book.ID, book.Title, book.RatingsCount)
	}
	return idx
}

// Insert adds a title to the index. When two books share a title up to
// case, the more rated one owns the suggestion slot.
func (idx *TitleIndex) Insert(id int64, title string, ratingsCount int64) {
	if title == "" {
		return
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	node := idx.root
	for _, ch := range strings.ToLower(title) {
		child := node.children[ch]
		if child == nil {
			child = newSuggestionNode()
			node.children[ch] = child
		}
		node = child
	}

	if node.entry == nil {
		node.entry = &Suggestion{ID: id, Title: title, RatingsCount: ratingsCount}
		idx.size++
		return
	}
	if ratingsCount > node.entry.RatingsCount {
		node.entry = &Suggestion{ID: id, Title: title, RatingsCount: ratingsCount}
	}
}

// Suggest returns up to limit titles starting with prefix, most rated first.
// An empty prefix returns nil rather than the whole catalog.
func (idx *TitleIndex) Suggest(prefix string, limit int) []Suggestion {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" || limit <= 0 {
		return nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	node := idx.root
	for _, ch := range strings.ToLower(prefix) {
		node = node.children[ch]
		if node == nil {
			return nil
		}
	}

	var results []Suggestion
	collectSuggestions(node, &results)

	sort.Slice(results, func(i, j int) bool {
		if results[i].RatingsCount != results[j].RatingsCount {
			return results[i].RatingsCount > results[j].RatingsCount
		}
		if results[i].Title != results[j].Title {
			return results[i].Title < results[j].Title
		}
		return results[i].ID < results[j].ID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Size returns the number of distinct titles in the index
func (idx *TitleIndex) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.size
}

func collectSuggestions(node *suggestionNode, results *[]Suggestion) {
	if node == nil {
		return
	}
	if node.entry != nil {
		*results = append(*results, *node.entry)
	}
	for _, child := range node.children {
		collectSuggestions(child, results)
	}
}
