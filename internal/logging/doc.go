// Bookfuse - Book Search and Recommendation Fusion Service
// Copyright 2026 The Bookfuse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookfuse/bookfuse

// Package logging provides centralized zerolog-based structured logging
// for Bookfuse.
//
// The package exposes a global logger configured once at startup and a set
// of package-level event starters so call sites stay one line:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("component", "catalog").Int("books", n).Msg("Catalog loaded")
//
// Request-scoped values (request id, correlation id) ride the context and
// are attached automatically by the Ctx helpers:
//
//	logging.Ctx(r.Context()).Info().Str("query", q).Msg("Search served")
//
// An slog adapter bridges zerolog to libraries that require *slog.Logger,
// notably sutureslog (supervision events) and watermill (activity bus):
//
//	slogger := logging.NewSlogLogger()
//
// Always terminate event chains with .Msg() or .Send(); an unterminated
// chain emits nothing.
package logging
