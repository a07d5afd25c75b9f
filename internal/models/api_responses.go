// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

// Package models holds the wire types shared across the HTTP surface.
package models

import (
	"time"
)

// APIResponse is the standardized response wrapper used by all HTTP
// endpoints. Both successful and error responses share this shape, with
// metadata for observability.
//
// Status field values:
//   - "success": Request completed, see Data
//   - "error": Request failed, see Error
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"matches": [...], "match_type": "phrase"},
//	  "metadata": {"timestamp": "2026-08-25T12:00:00Z", "query_time_ms": 4}
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {"code": "BOOK_NOT_FOUND", "message": "Book 42 is not in the catalog"},
//	  "metadata": {"timestamp": "2026-08-25T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries per-response observability fields. QueryTimeMS is the
// server-side handling time in milliseconds; Cached marks responses served
// from the fusion cache.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError is the structured error payload.
//
// Error codes used by this service:
//   - VALIDATION_ERROR: Invalid query or path parameters
//   - BOOK_NOT_FOUND: The requested book id is not in the catalog
//   - NOT_FOUND: No route matches the request path
//   - METHOD_NOT_ALLOWED: Route exists but not for this HTTP method
//   - SEARCH_ERROR: Title resolution failed
//   - DATABASE_ERROR: Catalog store query failed
//   - SERVICE_ERROR: A required component is unavailable
//   - RATE_LIMIT_EXCEEDED: Too many requests from this client
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
