// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

package activity

import (
	"sync"

	"github.com/bookfuse/bookfuse/internal/events"
)

// DefaultCapacity bounds the feed when no capacity is configured.
const DefaultCapacity = 256

// Feed is a fixed-capacity ring buffer of the most recent query events.
// Once full, each new event overwrites the oldest one.
//
// Complexity:
//   - Record: O(1)
//   - Recent: O(n) where n = min(limit, capacity)
//   - Memory: O(capacity)
type Feed struct {
	mu    sync.RWMutex
	buf   []*events.QueryEvent
	next  int // next write position
	size  int // live entries, grows to len(buf) and stays there
	total uint64
}

// NewFeed creates a feed holding at most capacity events.
func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Feed{buf: make([]*events.QueryEvent, capacity)}
}

// Record appends an event, evicting the oldest entry when the feed is full.
// Nil events are ignored.
func (f *Feed) Record(event *events.QueryEvent) {
	if event == nil {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.buf[f.next] = event
	f.next = (f.next + 1) % len(f.buf)
	if f.size < len(f.buf) {
		f.size++
	}
	f.total++
}

// Recent returns up to limit events, newest first. A limit of zero or
// anything above the live entry count returns everything retained.
func (f *Feed) Recent(limit int) []*events.QueryEvent {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if limit <= 0 || limit > f.size {
		limit = f.size
	}

	out := make([]*events.QueryEvent, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (f.next - 1 - i + len(f.buf)) % len(f.buf)
		out = append(out, f.buf[idx])
	}
	return out
}

// Len returns the number of events currently retained.
func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.size
}

// Total returns the lifetime count of recorded events, including evicted ones.
func (f *Feed) Total() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.total
}

// Capacity returns the maximum number of retained events.
func (f *Feed) Capacity() int {
	return len(f.buf)
}
