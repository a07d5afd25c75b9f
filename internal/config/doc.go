// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

// Package config provides layered configuration management for Bookfuse
// using Koanf v2.
//
// # Loading Order
//
// Configuration is assembled from three layers, later layers overriding
// earlier ones:
//
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML config file (config.yaml, or CONFIG_PATH)
//  3. Environment variables
//
// # Config File Discovery
//
// The config file is searched in these locations, first match wins:
//
//	$CONFIG_PATH
//	./config.yaml
//	./config.yml
//	/etc/bookfuse/config.yaml
//	/etc/bookfuse/config.yml
//
// # Environment Variables
//
// Flat environment variable names map onto the nested config structure
// through an explicit allowlist; unknown variables are ignored. The most
// commonly used:
//
//	DUCKDB_PATH             database.path
//	CATALOG_IMPORT_PATH     database.import_path
//	SEED_SAMPLE_CATALOG     database.seed_sample
//	HTTP_HOST, HTTP_PORT    server.host, server.port
//	CORS_ORIGINS            server.cors_origins (comma-separated)
//	SEARCH_SCORER           search.scorer
//	RECOMMEND_CACHE_SIZE    recommend.cache_size
//	ACTIVITY_ENABLED        activity.enabled
//	LOG_LEVEL, LOG_FORMAT   logging.level, logging.format
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to load configuration")
//	}
//
// Load validates the assembled configuration and fails fast on malformed
// values, so a *Config in hand is always internally consistent.
//
// # Hot Reload
//
// WatchConfigFile re-invokes a callback whenever the config file changes.
// Only settings that are safe to change at runtime (currently the log
// level) should be applied from the callback.
package config
