// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

package enrich

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter is a global token gate for outbound geocoding calls.
// Callers suspend in Wait until their turn; admission is FIFO enough that
// no caller starves under sustained load. The bound is per process: with
// scale-out each consumer enforces its own local limit, an accepted
// constraint of the design.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter creates a limiter admitting ratePerSec acquisitions per
// second with no burst beyond a single token.
func NewLimiter(ratePerSec float64) *Limiter {
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), 1),
	}
}

// Wait blocks until a token is available or the context is canceled.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
