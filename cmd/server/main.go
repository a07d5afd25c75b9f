// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

// Package main is the entry point for the Bookfuse server.
//
// Bookfuse serves book title search and precomputed content-based
// recommendations over a REST API. Book metadata and neighbor lists live in
// DuckDB; at startup the whole catalog is loaded into an immutable in-memory
// snapshot that search and fusion read without locking.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. Logging: zerolog with JSON or console output
//  3. Database: DuckDB with the fts, rapidfuzz and sqlite extensions
//  4. Catalog: populate the books table if empty, then load the in-memory snapshot
//  5. Query engines: title resolver, autocomplete index, fusion engine
//  6. Activity feed: Watermill event bus plus the in-memory feed consumer
//  7. Supervisor tree: Suture v4 process supervision
//  8. HTTP server: Chi router with middleware stack
//
// A missing or unreadable catalog is fatal: the process exits rather than
// serve a search API with nothing to search.
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (HTTP_SHUTDOWN_TIMEOUT)
//   - Stops the activity feed consumer and closes the event bus
//   - Closes the database
//   - Reports any services that failed to stop
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bookfuse/bookfuse/internal/activity"
	"github.com/bookfuse/bookfuse/internal/api"
	"github.com/bookfuse/bookfuse/internal/catalog"
	"github.com/bookfuse/bookfuse/internal/config"
	"github.com/bookfuse/bookfuse/internal/database"
	"github.com/bookfuse/bookfuse/internal/events"
	"github.com/bookfuse/bookfuse/internal/logging"
	"github.com/bookfuse/bookfuse/internal/metrics"
	"github.com/bookfuse/bookfuse/internal/recommend"
	"github.com/bookfuse/bookfuse/internal/search"
	"github.com/bookfuse/bookfuse/internal/supervisor"
	"github.com/bookfuse/bookfuse/internal/supervisor/services"
)

// version is overridden at build time:
//
//	go build -ldflags "-X main.version=v1.2.0" ./cmd/server
var version = "dev"

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Str("environment", cfg.Server.Environment).
		Msg("Starting Bookfuse")

	// Log level follows config file edits at runtime. Everything else
	// requires a restart.
	if cfg.ConfigFileUsed != "" {
		if err := config.WatchConfigFile(cfg.ConfigFileUsed, reloadLogLevel); err != nil {
			logging.Warn().Err(err).Str("path", cfg.ConfigFileUsed).Msg("Config file watching unavailable")
		}
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().
		Bool("fts", db.IsFTSAvailable()).
		Bool("rapidfuzz", db.IsRapidFuzzAvailable()).
		Bool("sqlite", db.IsSQLiteAvailable()).
		Msg("Database initialized")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := populateCatalog(ctx, db, cfg); err != nil {
		// Close database before fatal exit (Fatal skips deferred calls)
		if closeErr := db.Close(); closeErr != nil {
			logging.Error().Err(closeErr).Msg("Error closing database")
		}
		logging.Fatal().Err(err).Msg("Failed to populate catalog")
	}

	// Load the catalog snapshot. Fatal on error: every endpoint except the
	// liveness probe depends on it.
	loadStart := time.Now()
	cat, err := catalog.Load(ctx, db)
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error().Err(closeErr).Msg("Error closing database")
		}
		logging.Fatal().Err(err).Msg("Failed to load catalog")
	}
	metrics.RecordCatalogLoad(int64(cat.Len()), time.Since(loadStart))

	resolver, err := search.NewResolver(db, cat, &cfg.Search)
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error().Err(closeErr).Msg("Error closing database")
		}
		logging.Fatal().Err(err).Msg("Failed to create title resolver")
	}
	titleIndex := search.BuildTitleIndex(cat)
	engine := recommend.NewEngine(cat, &cfg.Recommend)
	logging.Info().
		Int("title_index_entries", titleIndex.Size()).
		Str("scorer", cfg.Search.Scorer).
		Int("default_k", cfg.Recommend.DefaultK).
		Msg("Query engines ready")

	// Activity feed: the handlers publish query events to the bus, the feed
	// consumer records them for the recent-activity endpoint.
	var (
		bus         *events.Bus
		feed        *activity.Feed
		activitySvc *activity.Service
	)
	if cfg.Activity.Enabled {
		bus = events.NewBus(cfg.Activity.BufferSize)
		feed = activity.NewFeed(cfg.Activity.BufferSize)
		activitySvc = activity.NewService(bus, feed)
		logging.Info().Int("buffer_size", cfg.Activity.BufferSize).Msg("Activity feed enabled")
	} else {
		logging.Info().Msg("Activity feed disabled (ACTIVITY_ENABLED=false)")
	}

	handler := api.NewHandler(db, cat, resolver, titleIndex, engine, cfg, version)
	if bus != nil {
		handler.SetEventPublisher(bus)
		handler.SetActivityFeed(feed)
	}

	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Create structured logger for supervisor using our slog adapter
	// This bridges zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(slogLogger, treeCfg)

	if activitySvc != nil {
		tree.AddMessagingService(activitySvc)
		logging.Info().Msg("Activity feed consumer added to supervisor tree")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	metrics.SetAppInfo(version)

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	if bus != nil {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}

	logging.Info().Msg("Bookfuse stopped gracefully")
}

// reloadLogLevel re-reads the configuration after a config file change and
// applies the log level. A reload that fails validation keeps the running
// configuration.
func reloadLogLevel() {
	reloaded, err := config.Load()
	if err != nil {
		logging.Error().Err(err).Msg("Config reload failed, keeping active configuration")
		return
	}

	previous := logging.GetLevel()
	logging.SetLevelString(reloaded.Logging.Level)
	if current := logging.GetLevel(); current != previous {
		logging.Info().
			Str("previous", previous.String()).
			Str("current", current.String()).
			Msg("Log level changed by config reload")
	}
}

// populateCatalog ensures the books table holds rows before the in-memory
// snapshot is loaded. Sources are checked in order: an already populated
// table, a one-time import from a SQLite catalog export, the built-in
// sample catalog. The FTS title index is rebuilt after either import path.
func populateCatalog(ctx context.Context, db *database.DB, cfg *config.Config) error {
	count, err := db.CountBooks(ctx)
	if err != nil {
		return fmt.Errorf("counting books: %w", err)
	}
	if count > 0 {
		logging.Info().Int64("books", count).Msg("Catalog table already populated")
		return nil
	}

	switch {
	case cfg.Database.ImportPath != "":
		imported, err := db.ImportFromSQLite(ctx, cfg.Database.ImportPath)
		if err != nil {
			return fmt.Errorf("importing from %s: %w", cfg.Database.ImportPath, err)
		}
		logging.Info().
			Int64("books", imported).
			Str("source", cfg.Database.ImportPath).
			Msg("Catalog imported from SQLite export")
	case cfg.Database.SeedSample:
		seeded, err := db.SeedSampleCatalog(ctx)
		if err != nil {
			return fmt.Errorf("seeding sample catalog: %w", err)
		}
		logging.Info().Int("books", seeded).Msg("Sample catalog seeded (SEED_SAMPLE_CATALOG=true)")
	default:
		return errors.New("books table is empty and no catalog source is configured " +
			"(set CATALOG_IMPORT_PATH or SEED_SAMPLE_CATALOG=true)")
	}

	if err := db.RebuildTitleIndex(ctx); err != nil {
		// Phrase search falls back to LIKE matching without the index.
		logging.Warn().Err(err).Msg("Failed to build full-text title index")
	}
	return nil
}
