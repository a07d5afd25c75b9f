// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookfuse_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookfuse_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bookfuse_http_active_requests",
			Help: "Current number of in-flight HTTP requests",
		},
	)

	HTTPRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookfuse_http_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Search Metrics
	SearchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookfuse_search_total",
			Help: "Total number of title searches by how they resolved",
		},
		[]string{"match_type"}, // "phrase", "fuzzy", "none"
	)

	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bookfuse_search_duration_seconds",
			Help:    "Duration of title resolution in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	SearchResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bookfuse_search_results",
			Help:    "Number of matches returned per search",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
		},
	)

	AutocompleteTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookfuse_autocomplete_total",
			Help: "Total number of autocomplete requests",
		},
	)

	// Fusion Metrics
	FusionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookfuse_fusion_total",
			Help: "Total number of recommendation fusions by outcome",
		},
		[]string{"outcome"}, // "filled", "partial", "empty", "not_found"
	)

	FusionItems = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bookfuse_fusion_items",
			Help:    "Number of recommendations returned per fusion",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
		},
	)

	FusionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bookfuse_fusion_duration_seconds",
			Help:    "Duration of recommendation fusion in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	FusionCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookfuse_fusion_cache_total",
			Help: "Fusion result cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss"
	)

	// Catalog Metrics
	CatalogBooks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bookfuse_catalog_books",
			Help: "Number of books in the in-memory catalog snapshot",
		},
	)

	CatalogLoadDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bookfuse_catalog_load_duration_seconds",
			Help: "Duration of the last catalog snapshot load in seconds",
		},
	)

	// Activity / Event Metrics
	ActivityEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookfuse_activity_events_total",
			Help: "Total number of query events published to the bus",
		},
		[]string{"kind"}, // "search", "autocomplete", "recommend"
	)

	EventPublishErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookfuse_event_publish_errors_total",
			Help: "Total number of query events that failed to publish",
		},
	)

	ActivityFeedEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bookfuse_activity_feed_entries",
			Help: "Current number of events retained in the activity feed",
		},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookfuse_db_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "phrase_search", "substring_search", "fuzzy_search", "stream_books"
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookfuse_db_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "error_type"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bookfuse_app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bookfuse_app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordHTTPRequest records one completed HTTP request.
func RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		HTTPActiveRequests.Inc()
	} else {
		HTTPActiveRequests.Dec()
	}
}

// RecordRateLimitHit records a request rejected by the rate limiter.
func RecordRateLimitHit(endpoint string) {
	HTTPRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordSearch records one title resolution.
func RecordSearch(matchType string, results int, duration time.Duration) {
	SearchTotal.WithLabelValues(matchType).Inc()
	SearchResults.Observe(float64(results))
	SearchDuration.Observe(duration.Seconds())
}

// RecordAutocomplete records one autocomplete request.
func RecordAutocomplete() {
	AutocompleteTotal.Inc()
}

// RecordFusion records one recommendation fusion.
func RecordFusion(outcome string, items int, duration time.Duration) {
	FusionTotal.WithLabelValues(outcome).Inc()
	FusionItems.Observe(float64(items))
	FusionDuration.Observe(duration.Seconds())
}

// RecordFusionCache records one fusion cache lookup.
func RecordFusionCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	FusionCacheTotal.WithLabelValues(result).Inc()
}

// RecordCatalogLoad records a completed catalog snapshot load.
func RecordCatalogLoad(books int64, duration time.Duration) {
	CatalogBooks.Set(float64(books))
	CatalogLoadDuration.Set(duration.Seconds())
}

// RecordEventPublished records a query event accepted by the bus.
func RecordEventPublished(kind string) {
	ActivityEventsTotal.WithLabelValues(kind).Inc()
}

// RecordEventPublishError records a query event the bus rejected.
func RecordEventPublishError() {
	EventPublishErrors.Inc()
}

// SetActivityFeedEntries updates the retained feed entry gauge.
func SetActivityFeedEntries(n int) {
	ActivityFeedEntries.Set(float64(n))
}

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages to keep label cardinality sane
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, errorType).Inc()
	}
}

// SetAppInfo publishes the build version alongside the Go runtime version.
func SetAppInfo(version string) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
}

// SetUptime updates the uptime gauge from the process start time.
func SetUptime(start time.Time) {
	AppUptime.Set(time.Since(start).Seconds())
}
