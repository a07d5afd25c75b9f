// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

package events

import (
	"testing"
	"time"
)

func TestNewQueryEvent(t *testing.T) {
	t.Parallel()

	e := NewQueryEvent(KindSearch)

	if e.EventID == "" {
		t.Error("EventID is empty")
	}
	if e.Kind != KindSearch {
		t.Errorf("Kind = %q, want %q", e.Kind, KindSearch)
	}
	if e.SchemaVersion != SchemaVersion {
		t.Errorf("SchemaVersion = %d, want %d", e.SchemaVersion, SchemaVersion)
	}
	if e.Timestamp.IsZero() {
		t.Error("Timestamp is zero")
	}
	if e.Timestamp.Location() != time.UTC {
		t.Errorf("Timestamp location = %v, want UTC", e.Timestamp.Location())
	}
}

func TestQueryEventValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*QueryEvent)
		wantErr bool
	}{
		{
			name:   "valid search",
			mutate: func(e *QueryEvent) { e.Kind = KindSearch; e.Query = "dune" },
		},
		{
			name:   "valid autocomplete",
			mutate: func(e *QueryEvent) { e.Kind = KindAutocomplete; e.Query = "dun" },
		},
		{
			name:   "valid recommend",
			mutate: func(e *QueryEvent) { e.Kind = KindRecommend; e.BookID = 100 },
		},
		{
			name:    "search without query",
			mutate:  func(e *QueryEvent) { e.Kind = KindSearch },
			wantErr: true,
		},
		{
			name:    "recommend without book id",
			mutate:  func(e *QueryEvent) { e.Kind = KindRecommend },
			wantErr: true,
		},
		{
			name:    "unknown kind",
			mutate:  func(e *QueryEvent) { e.Kind = "browse"; e.Query = "x" },
			wantErr: true,
		},
		{
			name: "missing event id",
			mutate: func(e *QueryEvent) {
				e.Kind = KindSearch
				e.Query = "dune"
				e.EventID = ""
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := NewQueryEvent("")
			tt.mutate(e)
			err := e.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	t.Parallel()

	e := NewQueryEvent(KindRecommend)
	e.RequestID = "req-42"
	e.BookID = 100
	e.K = 5
	e.Results = 3
	e.LatencyMS = 12

	data, err := Serialize(e)
	if err != nil {
		t.Fatalf("Serialize() error: %v", err)
	}

	got, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize() error: %v", err)
	}

	if got.EventID != e.EventID {
		t.Errorf("EventID = %q, want %q", got.EventID, e.EventID)
	}
	if got.Kind != KindRecommend || got.BookID != 100 || got.K != 5 || got.Results != 3 {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if got.RequestID != "req-42" {
		t.Errorf("RequestID = %q, want %q", got.RequestID, "req-42")
	}
}

func TestDeserializeDefaultsSchemaVersion(t *testing.T) {
	t.Parallel()

	payload := []byte(`{"event_id":"abc","kind":"search","query":"dune","results":1,"latency_ms":3,"timestamp":"2026-08-25T10:00:00Z"}`)

	got, err := Deserialize(payload)
	if err != nil {
		t.Fatalf("Deserialize() error: %v", err)
	}
	if got.SchemaVersion != SchemaVersion {
		t.Errorf("SchemaVersion = %d, want default %d", got.SchemaVersion, SchemaVersion)
	}
}

func TestDeserializeInvalidPayload(t *testing.T) {
	t.Parallel()

	if _, err := Deserialize([]byte(`{not json`)); err == nil {
		t.Error("Deserialize() with invalid payload = nil, want error")
	}
}
