// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

package api

import (
	"net/http"
	"time"

	"github.com/bookfuse/bookfuse/internal/metrics"
	"github.com/bookfuse/bookfuse/internal/models"
)

// Health returns service information, catalog size and the availability
// of optional database extensions.
//
// Method: GET
// Path: /api/v1/health
//
// Response:
//   - 200: Service information
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	metrics.SetUptime(h.startTime)
	data := map[string]interface{}{
		"service":        "bookfuse",
		"version":        h.version,
		"uptime_seconds": time.Since(h.startTime).Seconds(),
	}
	if h.catalog != nil {
		data["catalog_books"] = h.catalog.Len()
	}
	if h.db != nil {
		data["fts_available"] = h.db.IsFTSAvailable()
		data["rapidfuzz_available"] = h.db.IsRapidFuzzAvailable()
		data["sqlite_import_available"] = h.db.IsSQLiteAvailable()
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthLive reports process liveness. It never checks dependencies, so
// orchestrators only restart the process when the HTTP loop itself is
// wedged.
//
// Method: GET
// Path: /api/v1/health/live
//
// Response:
//   - 200: Process is alive
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"alive":          true,
			"uptime_seconds": time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthReady reports whether the service can answer queries: the
// database must respond to a ping and the catalog must hold at least one
// book.
//
// Method: GET
// Path: /api/v1/health/ready
//
// Response:
//   - 200: Ready to serve
//   - 503: A dependency is not ready
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	dbConnected := false
	if h.db != nil {
		dbConnected = h.db.Ping(r.Context()) == nil
	}
	catalogLoaded := h.catalog != nil && h.catalog.Len() > 0
	ready := dbConnected && catalogLoaded

	status := "success"
	httpStatus := http.StatusOK
	if !ready {
		status = "error"
		httpStatus = http.StatusServiceUnavailable
	}

	respondJSON(w, httpStatus, &models.APIResponse{
		Status: status,
		Data: map[string]interface{}{
			"database_connected": dbConnected,
			"catalog_loaded":     catalogLoaded,
			"ready_to_serve":     ready,
			"uptime_seconds":     time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
