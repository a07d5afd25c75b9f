// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

package events

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// SchemaVersion is the current query event schema version.
// Increment on breaking changes to QueryEvent.
const SchemaVersion = 1

// TopicQueryEvents is the bus topic all query events are published to
const TopicQueryEvents = "bookfuse.query.events"

// Query event kinds.
const (
	KindSearch       = "search"
	KindAutocomplete = "autocomplete"
	KindRecommend    = "recommend"
)

// QueryEvent records one served request for the activity feed.
// Fields are kind-specific: Query and MatchType apply to search and
// autocomplete, BookID to recommendations.
type QueryEvent struct {
	SchemaVersion int       `json:"schema_version,omitempty"`
	EventID       string    `json:"event_id"`
	RequestID     string    `json:"request_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`

	Kind      string `json:"kind"`
	Query     string `json:"query,omitempty"`
	BookID    int64  `json:"book_id,omitempty"`
	K         int    `json:"k,omitempty"`
	Results   int    `json:"results"`
	MatchType string `json:"match_type,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

// NewQueryEvent creates an event with a unique ID, UTC timestamp, and the
// current schema version
func NewQueryEvent(kind string) *QueryEvent {
	return &QueryEvent{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.New().String(),
		Timestamp:     time.Now().UTC(),
		Kind:          kind,
	}
}

// Validate checks required fields
func (e *QueryEvent) Validate() error {
	if e.EventID == "" {
		return fmt.Errorf("query event missing event_id")
	}
	switch e.Kind {
	case KindSearch, KindAutocomplete:
		if e.Query == "" {
			return fmt.Errorf("%s event missing query", e.Kind)
		}
	case KindRecommend:
		if e.BookID == 0 {
			return fmt.Errorf("recommend event missing book_id")
		}
	default:
		return fmt.Errorf("unknown query event kind %q", e.Kind)
	}
	return nil
}

// Serialize marshals an event to its wire form
func Serialize(e *QueryEvent) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("serialize query event: %w", err)
	}
	return data, nil
}

// Deserialize unmarshals an event from its wire form
func Deserialize(data []byte) (*QueryEvent, error) {
	var e QueryEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("deserialize query event: %w", err)
	}
	if e.SchemaVersion == 0 {
		e.SchemaVersion = SchemaVersion
	}
	return &e, nil
}
