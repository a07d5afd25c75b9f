// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML config file, and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting
//
// Configuration Categories:
//
//  1. Catalog:
//     - Database: DuckDB configuration (path, memory, import source)
//
//  2. Serving:
//     - Server: HTTP server configuration (port, host, timeouts, CORS,
//       rate limiting)
//     - Search: Title resolution limits and fuzzy scoring
//     - Recommend: Neighbor fusion limits and result caching
//     - Activity: Query activity feed buffering
//
//  3. Observability:
//     - Logging: Log levels and output formats
//
// Example - Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	// cfg.Database.Path, cfg.Server.Port, etc. are now populated
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access
// from multiple goroutines.
type Config struct {
	Database  DatabaseConfig  `koanf:"database"`
	Server    ServerConfig    `koanf:"server"`
	Search    SearchConfig    `koanf:"search"`
	Recommend RecommendConfig `koanf:"recommend"`
	Activity  ActivityConfig  `koanf:"activity"`
	Logging   LoggingConfig   `koanf:"logging"`

	// ConfigFileUsed is the YAML file the loader found, empty when the
	// configuration came from defaults and environment alone. Callers use
	// it to watch for file changes.
	ConfigFileUsed string `koanf:"-"`
}

// DatabaseConfig holds DuckDB settings for the book catalog.
//
// The catalog can be populated three ways, checked in order at startup:
// an existing books table in the database file, a one-time import from a
// SQLite catalog export (ImportPath), or a small built-in sample catalog
// (SeedSample) for demos and development.
//
// Environment Variables:
//   - DUCKDB_PATH: Database file path (default: /data/bookfuse.duckdb)
//   - DUCKDB_MAX_MEMORY: DuckDB memory limit (default: 2GB)
//   - DUCKDB_THREADS: DuckDB thread count, 0 = all cores (default: 0)
//   - CATALOG_IMPORT_PATH: SQLite catalog file to import on first start
//   - SEED_SAMPLE_CATALOG: Seed the built-in sample catalog (default: false)
type DatabaseConfig struct {
	Path       string `koanf:"path"`
	MaxMemory  string `koanf:"max_memory"`
	Threads    int    `koanf:"threads"`     // 0 = use all available cores
	ImportPath string `koanf:"import_path"` // Optional SQLite catalog to import when the books table is empty
	SeedSample bool   `koanf:"seed_sample"` // Seed a small built-in catalog when no other source is configured
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_HOST: Listen address (default: 0.0.0.0)
//   - HTTP_PORT: Listen port (default: 2665)
//   - HTTP_TIMEOUT: Read/write timeout (default: 30s)
//   - HTTP_SHUTDOWN_TIMEOUT: Graceful shutdown deadline (default: 15s)
//   - ENVIRONMENT: Deployment environment, development or production
//   - CORS_ORIGINS: Comma-separated allowed origins (default: *)
//   - RATE_LIMIT_REQUESTS: Requests allowed per window (default: 100)
//   - RATE_LIMIT_WINDOW: Rate limit window (default: 1m)
//   - DISABLE_RATE_LIMIT: Disable rate limiting entirely (default: false)
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port"`
	Timeout           time.Duration `koanf:"timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	Environment       string        `koanf:"environment"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// SearchConfig holds title resolution settings.
//
// Environment Variables:
//   - SEARCH_DEFAULT_LIMIT: Results returned when no limit is given (default: 5)
//   - SEARCH_MAX_LIMIT: Hard cap on requested result count (default: 50)
//   - SEARCH_MIN_SCORE: Fuzzy similarity floor, 0-100 (default: 40)
//   - SEARCH_SCORER: Fuzzy scorer: combined, ratio, or token_set (default: combined)
type SearchConfig struct {
	DefaultLimit int     `koanf:"default_limit"`
	MaxLimit     int     `koanf:"max_limit"`
	MinScore     float64 `koanf:"min_score"`
	Scorer       string  `koanf:"scorer"`
}

// RecommendConfig holds neighbor fusion settings.
//
// Environment Variables:
//   - RECOMMEND_DEFAULT_K: Recommendations returned when k is not given (default: 5)
//   - RECOMMEND_MAX_K: Hard cap on requested recommendation count (default: 50)
//   - RECOMMEND_CACHE_SIZE: Fusion result cache entries, 0 disables (default: 1024)
//   - RECOMMEND_CACHE_TTL: Fusion result cache entry lifetime (default: 5m)
type RecommendConfig struct {
	DefaultK  int           `koanf:"default_k"`
	MaxK      int           `koanf:"max_k"`
	CacheSize int           `koanf:"cache_size"` // 0 disables the fusion cache
	CacheTTL  time.Duration `koanf:"cache_ttl"`
}

// ActivityConfig holds query activity feed settings. The feed records
// recent search and recommendation queries in memory for the activity API.
//
// Environment Variables:
//   - ACTIVITY_ENABLED: Enable the activity feed (default: true)
//   - ACTIVITY_BUFFER_SIZE: Events retained in memory (default: 256)
type ActivityConfig struct {
	Enabled    bool `koanf:"enabled"`
	BufferSize int  `koanf:"buffer_size"`
}

// LoggingConfig holds log output settings.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error, fatal, panic, disabled (default: info)
//   - LOG_FORMAT: json or console (default: json)
//   - LOG_CALLER: Include caller file:line in log events (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Addr returns the host:port string the HTTP server binds to.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsProduction reports whether the server runs in production mode.
// Production mode tightens validation of permissive settings.
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}
