// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/octoscope/octoscope/internal/logging"
)

// validate is the shared validator instance. Struct tags carry the
// per-field rules; cross-field invariants live in Validate below.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks per-field rules and cross-field invariants.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return fmt.Errorf("field %s failed rule %q", f.Namespace(), f.Tag())
		}
		return err
	}

	// The dedup window and the log's retention must not diverge: ids must
	// stay remembered at least as long as the stream can redeliver them.
	// Divergence is clamped up rather than rejected.
	if c.Dedup.Window < c.NATS.DuplicateWindow {
		logging.Warn().
			Dur("dedup_window", c.Dedup.Window).
			Dur("duplicate_window", c.NATS.DuplicateWindow).
			Msg("dedup window shorter than stream duplicate window, clamping up")
		c.Dedup.Window = c.NATS.DuplicateWindow
	}

	if c.NATS.EmbeddedServer && c.NATS.StoreDir == "" {
		return fmt.Errorf("nats.store_dir is required when the embedded server is enabled")
	}

	return nil
}
