// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

package database

import (
	"io"

	"github.com/bookfuse/bookfuse/internal/logging"
)

// closeWithLog closes an io.Closer and logs failures at warn level.
// Used for resources whose close errors matter but should not abort the
// surrounding operation (prepared statements, result sets).
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().
			Err(err).
			Str("resource_type", resourceType).
			Msg("Failed to close resource")
	}
}

// closeQuietly closes an io.Closer and discards any error.
// Used during error cleanup paths where the original error is what matters.
func closeQuietly(closer io.Closer) {
	if closer == nil {
		return
	}
	_ = closer.Close()
}
