// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

/*
Operational reference for the Bookfuse server binary.

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest priority wins):

	Priority: Environment variables > Config file (config.yaml) > Defaults

Core environment variables:

	# Server
	HTTP_HOST=0.0.0.0            # Listen address
	HTTP_PORT=2665               # HTTP server port
	HTTP_TIMEOUT=30s             # Read/write timeout per request
	HTTP_SHUTDOWN_TIMEOUT=15s    # Grace period for in-flight requests
	ENVIRONMENT=development      # development or production
	CORS_ORIGINS=*               # Comma-separated list of allowed origins
	RATE_LIMIT_REQUESTS=100      # Requests per window per client IP
	RATE_LIMIT_WINDOW=1m
	DISABLE_RATE_LIMIT=false

	# Database
	DUCKDB_PATH=/data/bookfuse.duckdb
	DUCKDB_MAX_MEMORY=2GB
	DUCKDB_THREADS=0             # 0 = all cores
	CATALOG_IMPORT_PATH=         # SQLite export to import when the table is empty
	SEED_SAMPLE_CATALOG=false    # Seed the built-in sample catalog instead

	# Search
	SEARCH_DEFAULT_LIMIT=5
	SEARCH_MAX_LIMIT=50
	SEARCH_MIN_SCORE=40          # Fuzzy match cutoff, 0-100
	SEARCH_SCORER=combined       # combined, ratio, or token_set

	# Recommendations
	RECOMMEND_DEFAULT_K=5
	RECOMMEND_MAX_K=50
	RECOMMEND_CACHE_SIZE=1024
	RECOMMEND_CACHE_TTL=5m

	# Activity feed
	ACTIVITY_ENABLED=true
	ACTIVITY_BUFFER_SIZE=256

	# Logging
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console
	LOG_CALLER=false

# Usage Examples

First run, importing a catalog export produced by the data pipeline:

	export DUCKDB_PATH=/data/bookfuse.duckdb
	export CATALOG_IMPORT_PATH=/data/books.sqlite
	./bookfuse

Development with the built-in sample catalog:

	export SEED_SAMPLE_CATALOG=true
	export LOG_FORMAT=console
	go run ./cmd/server

Docker:

	docker run -d \
	  -v bookfuse-data:/data \
	  -e CATALOG_IMPORT_PATH=/data/books.sqlite \
	  -p 2665:2665 \
	  ghcr.io/bookfuse/bookfuse

# Endpoints

	GET /api/v1/health                        Service info and extension availability
	GET /api/v1/health/live                   Liveness probe
	GET /api/v1/health/ready                  Readiness probe (database + catalog)
	GET /api/v1/search?q=<title>&k=<n>        Title search with fuzzy fallback
	GET /api/v1/autocomplete?q=<prefix>       Prefix suggestions
	GET /api/v1/books/{bookID}                Book metadata
	GET /api/v1/books/{bookID}/recommendations?k=<n>
	GET /api/v1/catalog/stats                 Catalog and fusion engine counters
	GET /api/v1/activity/recent?limit=<n>     Recent query events
	GET /metrics                              Prometheus metrics

# Port 2665

The default port 2665 spells BOOK on a telephone keypad.
*/
package main
