// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

package database

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/bookfuse/bookfuse/internal/logging"
)

// duckdbVersion is the DuckDB release bundled by the driver. Used to locate
// locally cached extension binaries under ~/.duckdb/extensions.
const duckdbVersion = "v1.4.3"

// defaultExtensionTimeout bounds each extension INSTALL/LOAD statement.
// Override with DUCKDB_EXTENSION_TIMEOUT (a Go duration string).
const defaultExtensionTimeout = 30 * time.Second

// extensionSpec describes one DuckDB extension and what to do when it
// cannot be loaded.
type extensionSpec struct {
	// Name is the extension name used in INSTALL/LOAD statements.
	Name string

	// Community marks extensions served from the community repository
	// rather than the core repository.
	Community bool

	// Required aborts startup when the extension cannot be loaded.
	// Optional extensions degrade to a fallback path instead.
	Required bool

	// Verify probes the loaded extension; nil means the loaded flag in
	// duckdb_extensions() is sufficient.
	Verify func(db *DB) error

	// Availability points at the DB flag to clear when the extension is
	// not usable.
	Availability func(db *DB) *bool

	// Warning is logged when an optional extension is unavailable.
	Warning string
}

// retryConfig controls retry behavior for extension downloads
type retryConfig struct {
	MaxRetries  int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	BackoffMult float64
}

// extensionRetryConfig retries transient download failures. Extension
// installs hit the network, so timeouts and 503s are expected occasionally.
var extensionRetryConfig = retryConfig{
	MaxRetries:  3,
	BaseDelay:   2 * time.Second,
	MaxDelay:    30 * time.Second,
	BackoffMult: 2.0,
}

// extensionSpecs returns the extensions this service uses, in load order.
//
//   - fts powers phrase search over titles; without it phrase queries fall
//     back to substring matching.
//   - sqlite_scanner powers catalog import from SQLite exports; it is only
//     required when an import path is configured.
//   - rapidfuzz (community) powers database-side fuzzy scoring; without it
//     fuzzy fallback scoring runs in-process.
func (db *DB) extensionSpecs() []extensionSpec {
	return []extensionSpec{
		{
			Name:         "fts",
			Availability: func(d *DB) *bool { return &d.ftsAvailable },
			Warning:      "Full-text title search unavailable, phrase queries will use substring matching",
		},
		{
			Name:         "sqlite_scanner",
			Required:     db.cfg.ImportPath != "",
			Availability: func(d *DB) *bool { return &d.sqliteAvailable },
			Warning:      "SQLite catalog import unavailable",
		},
		{
			Name:         "rapidfuzz",
			Community:    true,
			Verify:       (*DB).verifyRapidFuzz,
			Availability: func(d *DB) *bool { return &d.rapidfuzzAvailable },
			Warning:      "Database-side fuzzy scoring unavailable, falling back to in-process scoring",
		},
	}
}

// installExtensions loads all extensions, honoring Required semantics.
// Optional extensions that fail clear their availability flag and log a
// warning; required extensions that fail abort startup.
func (db *DB) installExtensions() error {
	db.configureExtensionRepository()

	for _, spec := range db.extensionSpecs() {
		if err := db.installExtension(spec); err != nil {
			if spec.Required {
				return fmt.Errorf("required extension %s: %w", spec.Name, err)
			}
			*spec.Availability(db) = false
			logging.Warn().
				Err(err).
				Str("extension", spec.Name).
				Msg(spec.Warning)
		}
	}
	return nil
}

// configureExtensionRepository pins the core extension repository explicitly
// so installs are not affected by inherited session settings.
func (db *DB) configureExtensionRepository() {
	err := db.execWithHardTimeout(
		"SET custom_extension_repository = 'https://extensions.duckdb.org';",
		10*time.Second,
	)
	if err != nil {
		logging.Debug().Err(err).Msg("Failed to set extension repository, using driver default")
	}
}

// installExtension runs the INSTALL/LOAD/verify chain for one extension
func (db *DB) installExtension(spec extensionSpec) error {
	// Community extensions need a network fetch on first use. CI runners
	// are often network restricted, so skip unless a cached binary exists.
	if spec.Community && os.Getenv("CI") != "" && !isExtensionInstalledLocally(spec.Name) {
		return fmt.Errorf("skipping community extension %s in CI without local cache", spec.Name)
	}

	loaded, err := db.isExtensionLoaded(spec.Name)
	if err != nil {
		logging.Debug().Err(err).Str("extension", spec.Name).Msg("Failed to query extension state")
	}

	timeout := getExtensionTimeout()

	if !loaded {
		installStmt := fmt.Sprintf("INSTALL %s;", spec.Name)
		if spec.Community {
			installStmt = fmt.Sprintf("INSTALL %s FROM community;", spec.Name)
		}

		if err := db.execWithRetry(installStmt, timeout, extensionRetryConfig); err != nil {
			return fmt.Errorf("install failed: %w", err)
		}

		loadStmt := fmt.Sprintf("LOAD %s;", spec.Name)
		if err := db.execWithHardTimeout(loadStmt, timeout); err != nil {
			// A stale cached binary from a previous DuckDB version can
			// fail to load. Force a fresh install once and retry.
			forceStmt := fmt.Sprintf("FORCE INSTALL %s;", spec.Name)
			if spec.Community {
				forceStmt = fmt.Sprintf("FORCE INSTALL %s FROM community;", spec.Name)
			}
			logging.Warn().
				Err(err).
				Str("extension", spec.Name).
				Msg("Extension load failed, forcing reinstall")

			if err := db.execWithRetry(forceStmt, timeout, extensionRetryConfig); err != nil {
				return fmt.Errorf("force install failed: %w", err)
			}
			if err := db.execWithHardTimeout(loadStmt, timeout); err != nil {
				return fmt.Errorf("load failed after reinstall: %w", err)
			}
		}
	}

	if spec.Verify != nil {
		if err := spec.Verify(db); err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
	} else {
		loaded, err := db.isExtensionLoaded(spec.Name)
		if err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
		if !loaded {
			return fmt.Errorf("extension reports not loaded after install")
		}
	}

	logging.Debug().Str("extension", spec.Name).Msg("Extension loaded")
	return nil
}

// verifyRapidFuzz probes the rapidfuzz extension with a known-answer query
func (db *DB) verifyRapidFuzz() error {
	var score float64
	err := db.queryRowWithHardTimeout("SELECT rapidfuzz_ratio('book', 'book');", 10*time.Second, &score)
	if err != nil {
		return err
	}
	if score < 99.0 {
		return fmt.Errorf("rapidfuzz probe returned unexpected score %.1f", score)
	}
	return nil
}

// isExtensionLoaded checks the loaded flag in duckdb_extensions().
// Extension names come from the static spec table, never user input, so
// string interpolation here is safe.
func (db *DB) isExtensionLoaded(name string) (bool, error) {
	var loaded bool
	query := fmt.Sprintf("SELECT loaded FROM duckdb_extensions() WHERE extension_name = '%s';", name)
	err := db.queryRowWithHardTimeout(query, 10*time.Second, &loaded)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return loaded, nil
}

// isExtensionInstalledLocally checks for a cached extension binary in the
// DuckDB extension directory for the current platform
func isExtensionInstalledLocally(name string) bool {
	home, err := os.UserHomeDir()
	if err != nil {
		return false
	}
	platform := runtime.GOOS + "_" + runtime.GOARCH
	path := filepath.Join(home, ".duckdb", "extensions", duckdbVersion, platform, name+".duckdb_extension")
	_, err = os.Stat(path)
	return err == nil
}

// getExtensionTimeout returns the per-statement timeout for extension
// INSTALL/LOAD operations, configurable via DUCKDB_EXTENSION_TIMEOUT
func getExtensionTimeout() time.Duration {
	raw := os.Getenv("DUCKDB_EXTENSION_TIMEOUT")
	if raw == "" {
		return defaultExtensionTimeout
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		logging.Warn().
			Str("value", raw).
			Dur("default", defaultExtensionTimeout).
			Msg("Invalid DUCKDB_EXTENSION_TIMEOUT, using default")
		return defaultExtensionTimeout
	}
	return d
}

// execWithHardTimeout runs a statement with a wall-clock timeout enforced by
// goroutine abandonment. DuckDB's CGO layer does not observe context
// cancellation mid-statement, so ExecContext alone cannot bound INSTALL
// statements that hang on network I/O.
func (db *DB) execWithHardTimeout(query string, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		_, err := db.conn.Exec(query)
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("statement timed out after %s", timeout)
	}
}

// queryRowWithHardTimeout runs a single-row query with a wall-clock timeout,
// scanning into dest. Same goroutine-abandonment scheme as
// execWithHardTimeout.
func (db *DB) queryRowWithHardTimeout(query string, timeout time.Duration, dest ...interface{}) error {
	done := make(chan error, 1)
	go func() {
		done <- db.conn.QueryRow(query).Scan(dest...)
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("query timed out after %s", timeout)
	}
}

// execWithRetry runs a statement with exponential backoff on transient
// failures. Non-retryable errors return immediately.
func (db *DB) execWithRetry(query string, timeout time.Duration, cfg retryConfig) error {
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(float64(cfg.BaseDelay) * math.Pow(cfg.BackoffMult, float64(attempt-1)))
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
			logging.Debug().
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("Retrying extension statement")
			time.Sleep(delay)
		}

		lastErr = db.execWithHardTimeout(query, timeout)
		if lastErr == nil {
			return nil
		}
		if !isRetryableExtensionError(lastErr) {
			return lastErr
		}
	}
	return fmt.Errorf("exhausted %d retries: %w", cfg.MaxRetries, lastErr)
}

// isRetryableExtensionError matches transient network failures worth
// retrying. Anything else (missing extension, version mismatch) fails fast.
func isRetryableExtensionError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"timed out", "timeout", "connection refused", "503", "temporary failure"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
