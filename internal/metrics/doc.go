// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

/*
Package metrics provides Prometheus metrics collection and export.

Collectors are registered once at init via promauto and exposed at the
/metrics endpoint in Prometheus text format:

	curl http://localhost:2665/metrics

# Available Metrics

HTTP:
  - bookfuse_http_requests_total (counter): method, endpoint, status_code
  - bookfuse_http_request_duration_seconds (histogram): method, endpoint
  - bookfuse_http_active_requests (gauge)
  - bookfuse_http_rate_limit_hits_total (counter): endpoint

Search:
  - bookfuse_search_total (counter): match_type = phrase|fuzzy|none
  - bookfuse_search_duration_seconds (histogram)
  - bookfuse_search_results (histogram)
  - bookfuse_autocomplete_total (counter)

Fusion:
  - bookfuse_fusion_total (counter): outcome = filled|partial|empty|not_found
  - bookfuse_fusion_items (histogram)
  - bookfuse_fusion_duration_seconds (histogram)
  - bookfuse_fusion_cache_total (counter): result = hit|miss

Catalog, events, database, and system gauges round out the set; see
metrics.go for the full list.

# Usage

Call sites use the Record* helpers so instrumentation stays one line:

	start := time.Now()
	result, err := resolver.Resolve(ctx, query, k)
	metrics.RecordSearch(string(result.MatchType), len(result.Matches), time.Since(start))

Handlers record HTTP metrics through the router middleware rather than
individually.
*/
package metrics
