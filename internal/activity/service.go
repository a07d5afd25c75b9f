// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

package activity

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/bookfuse/bookfuse/internal/events"
	"github.com/bookfuse/bookfuse/internal/logging"
	"github.com/bookfuse/bookfuse/internal/metrics"
)

// EventSource is the subscription surface the feed consumer needs.
//
// Satisfied by *events.Bus. Keeping it an interface lets tests feed the
// service from a hand-built channel.
type EventSource interface {
	Subscribe(ctx context.Context) (<-chan *message.Message, error)
}

// Service consumes query events from the bus and records them in a Feed.
//
// It implements suture.Service so the supervisor restarts it if the
// subscription loop fails.
type Service struct {
	source EventSource
	feed   *Feed
	logger zerolog.Logger
	name   string
}

// NewService creates a feed consumer reading from source.
func NewService(source EventSource, feed *Feed) *Service {
	return &Service{
		source: source,
		feed:   feed,
		logger: logging.WithComponent("activity"),
		name:   "activity-feed",
	}
}

// Serve implements suture.Service.
//
// It subscribes to the query event topic and records every decodable
// event until the context is canceled. Malformed payloads are acked and
// dropped so they are not redelivered.
func (s *Service) Serve(ctx context.Context) error {
	messages, err := s.source.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribing to query events: %w", err)
	}

	s.logger.Debug().Msg("Activity feed consuming query events")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			event, derr := events.Deserialize(msg.Payload)
			if derr != nil {
				s.logger.Warn().
					Err(derr).
					Str("message_uuid", msg.UUID).
					Msg("Dropping malformed query event")
				msg.Ack()
				continue
			}
			s.feed.Record(event)
			metrics.SetActivityFeedEntries(s.feed.Len())
			msg.Ack()
		}
	}
}

// String implements fmt.Stringer for supervisor log messages.
func (s *Service) String() string {
	return s.name
}
