// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

/*
Package api provides the HTTP REST API layer for Bookfuse.

It exposes title search, autocomplete, book lookup, recommendation
fusion, catalog statistics and the recent-activity feed behind a chi
router with a shared middleware stack.

Key Components:

  - Router: route configuration and middleware stack integration
  - Handler: request handlers for all endpoints
  - Response formatting: standardized JSON envelopes with metadata
  - Error handling: consistent error payloads with appropriate HTTP
    status codes
  - Rate limiting: per-IP limits via httprate, with a generous tier for
    health probes
  - CORS: cross-origin support for browser frontends

Endpoints:

 1. Health (/api/v1/health):
    liveness, readiness and a service info summary

 2. Query (/api/v1):
    /search, /autocomplete, /books/{bookID}, /books/{bookID}/recommendations

 3. Introspection (/api/v1):
    /catalog/stats, /activity/recent

 4. Prometheus (/metrics):
    scrape endpoint, outside the versioned API prefix

Usage Example:

	handler := api.NewHandler(db, cat, resolver, titleIndex, engine, cfg, version)
	handler.SetEventPublisher(bus)
	handler.SetActivityFeed(feed)

	router := api.NewRouter(handler, cfg)
	http.ListenAndServe(":2665", router.SetupChi())

Thread Safety:

All handlers are safe for concurrent requests. Shared resources (the
catalog snapshot, fusion engine cache, activity feed) carry their own
synchronization.
*/
package api
