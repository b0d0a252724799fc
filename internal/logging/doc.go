// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

// Package logging provides centralized zerolog-based logging for Octoscope.
//
// All components log through the global logger configured here. JSON output
// is the default for production; console output is available for development.
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Msg("Server starting")
//	logging.Error().Err(err).Msg("Operation failed")
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
//
// # Bridges
//
// Two adapters route third-party logging through the same stream: a
// watermill.LoggerAdapter for broker internals and a slog.Handler for
// the supervision tree's event hook.
package logging
