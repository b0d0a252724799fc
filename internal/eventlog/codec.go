// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

package eventlog

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/octoscope/octoscope/internal/models"
)

// Codec handles event encoding/decoding for log messages.
type Codec struct{}

// NewCodec creates a new codec.
func NewCodec() *Codec {
	return &Codec{}
}

// Marshal converts a raw event to JSON bytes.
func (c *Codec) Marshal(event *models.RawEvent) ([]byte, error) {
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}

	return data, nil
}

// Unmarshal converts JSON bytes back into a raw event.
func (c *Codec) Unmarshal(data []byte) (*models.RawEvent, error) {
	var event models.RawEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}

	return &event, nil
}
