// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

// Package config loads and validates Octoscope configuration.
//
// Configuration is layered via Koanf v2 (highest priority wins):
//
//  1. Built-in defaults
//  2. Optional YAML config file (CONFIG_PATH or the default search paths)
//  3. Environment variables
//
// Environment variables map onto config paths by section prefix:
//
//	GITHUB_POLL_INTERVAL  -> github.poll_interval
//	NATS_DUPLICATE_WINDOW -> nats.duplicate_window
//	DATABASE_PATH         -> database.path
//
// Validation combines struct tags (go-playground/validator) with
// cross-field checks, such as keeping the producer's dedup window at
// least as long as the stream's duplicate window.
package config
