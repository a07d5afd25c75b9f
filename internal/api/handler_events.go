// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

package api

import (
	"context"

	"github.com/bookfuse/bookfuse/internal/events"
	"github.com/bookfuse/bookfuse/internal/logging"
	"github.com/bookfuse/bookfuse/internal/metrics"
)

// QueryEventPublisher is the publishing surface handlers use to announce
// completed queries. Satisfied by *events.Bus.
type QueryEventPublisher interface {
	Publish(ctx context.Context, event *events.QueryEvent) error
}

// publishQueryEvent publishes a query event if a publisher is configured.
//
// Publishing runs asynchronously so a slow or saturated bus never blocks the
// response. Errors are logged and counted but otherwise dropped, since the
// activity feed is best effort.
func (h *Handler) publishQueryEvent(ctx context.Context, event *events.QueryEvent) {
	if h.publisher == nil {
		return
	}

	event.RequestID = logging.RequestIDFromContext(ctx)

	go func() {
		if err := h.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
			metrics.RecordEventPublishError()
			logging.Warn().Err(err).Str("kind", event.Kind).Msg("Failed to publish query event")
			return
		}
		metrics.RecordEventPublished(event.Kind)
	}()
}
