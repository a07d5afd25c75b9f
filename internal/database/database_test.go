// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/bookfuse/bookfuse/internal/config"
)

// newTestDB opens an in-memory DuckDB with the catalog schema and no
// extensions, so tests exercise the fallback paths deterministically and
// never touch the network.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	conn, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}

	db := &DB{
		conn:      conn,
		cfg:       &config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB"},
		stmtCache: make(map[string]*sql.Stmt),
	}
	db.configureConnectionPool()

	if err := db.createTables(); err != nil {
		closeQuietly(conn)
		t.Fatalf("failed to create tables: %v", err)
	}
	if err := db.createIndexes(); err != nil {
		closeQuietly(conn)
		t.Fatalf("failed to create indexes: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})
	return db
}

func TestBuildConnString(t *testing.T) {
	t.Parallel()

	got := buildConnString("/data/bookfuse.duckdb", 4, "2GB")
	want := "/data/bookfuse.duckdb?access_mode=read_write&threads=4&max_memory=2GB&autoinstall_known_extensions=false&autoload_known_extensions=false"
	if got != want {
		t.Errorf("buildConnString() = %q, want %q", got, want)
	}
}

func TestPing(t *testing.T) {
	db := newTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Ping(ctx); err != nil {
		t.Errorf("Ping() = %v, want nil", err)
	}
}

func TestPingNilConnection(t *testing.T) {
	t.Parallel()

	db := &DB{}
	if err := db.Ping(context.Background()); err == nil {
		t.Error("Ping() with nil connection = nil, want error")
	}
}

func TestCheckpoint(t *testing.T) {
	db := newTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Checkpoint(ctx); err != nil {
		t.Errorf("Checkpoint() = %v, want nil", err)
	}
}

func TestGetStmtCachesStatements(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first, err := db.getStmt(ctx, "SELECT 1")
	if err != nil {
		t.Fatalf("getStmt() error: %v", err)
	}
	second, err := db.getStmt(ctx, "SELECT 1")
	if err != nil {
		t.Fatalf("getStmt() second call error: %v", err)
	}
	if first != second {
		t.Error("getStmt() returned a new statement for a cached query")
	}

	db.invalidateStmtCache()

	third, err := db.getStmt(ctx, "SELECT 1")
	if err != nil {
		t.Fatalf("getStmt() after invalidation error: %v", err)
	}
	if third == first {
		t.Error("getStmt() returned a stale statement after cache invalidation")
	}
}

func TestAvailabilityGettersDefaultFalseInTests(t *testing.T) {
	db := newTestDB(t)

	if db.IsFTSAvailable() {
		t.Error("IsFTSAvailable() = true for test database without extensions")
	}
	if db.IsSQLiteAvailable() {
		t.Error("IsSQLiteAvailable() = true for test database without extensions")
	}
	if db.IsRapidFuzzAvailable() {
		t.Error("IsRapidFuzzAvailable() = true for test database without extensions")
	}
}
