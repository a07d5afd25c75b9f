// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

/*
Package supervisor provides the suture-based supervision tree that keeps
Bookfuse's long-running components alive.

The tree has a root supervisor with two child layers:

	bookfuse (root)
	├── messaging-layer: activity feed consumer
	└── api-layer:       HTTP server

Services are restarted on failure with exponential backoff once the
failure threshold is exceeded. Layer boundaries isolate failures: a
crash-looping consumer backs off inside the messaging layer while the
API layer keeps serving.

Usage:

	tree := supervisor.NewTree(logger, supervisor.DefaultTreeConfig())
	tree.AddMessagingService(activitySvc)
	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}

Supervised services implement suture.Service: a Serve(ctx) method that
blocks until failure or cancellation, plus fmt.Stringer for log
identification.
*/
package supervisor
