// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

// Package events defines query events and the in-process bus that carries
// them.
//
// Handlers publish a QueryEvent after serving each search, autocomplete, or
// recommendation request. The activity feed subscribes and keeps the most
// recent events in memory. The bus is a Watermill gochannel, so swapping in
// a broker-backed transport later only changes the Bus constructor, not the
// producers or consumers.
package events
