// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

// Package activity maintains an in-memory feed of recent query events.
//
// The HTTP handlers publish one event per search, autocomplete, or
// recommendation request onto the event bus. This package's Service
// subscribes to that topic and records each event into a fixed-capacity
// ring buffer (Feed), which the API exposes for a lightweight "what are
// people looking up" view without touching the database.
//
// The feed is bounded and lossy: once capacity is reached, the
// oldest events are overwritten. Consumers needing durable history should
// subscribe to the bus directly instead.
package activity
