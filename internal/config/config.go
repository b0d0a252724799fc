// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

package config

import "time"

// Config is the root configuration for the Octoscope server.
type Config struct {
	GitHub   GitHubConfig   `koanf:"github"`
	NATS     NATSConfig     `koanf:"nats"`
	Dedup    DedupConfig    `koanf:"dedup"`
	Enrich   EnrichConfig   `koanf:"enrich"`
	Database DatabaseConfig `koanf:"database"`
	Rollup   RollupConfig   `koanf:"rollup"`
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// GitHubConfig configures the upstream event feed poller.
type GitHubConfig struct {
	// APIURL is the base URL of the GitHub API.
	APIURL string `koanf:"api_url" validate:"required,url"`

	// Token is an optional bearer token. Absence only lowers the upstream
	// rate-limit ceiling; it is never fatal.
	Token string `koanf:"token"`

	PollInterval   time.Duration `koanf:"poll_interval" validate:"gt=0"`
	MaxPages       int           `koanf:"max_pages" validate:"gte=1,lte=10"`
	PerPage        int           `koanf:"per_page" validate:"gte=1,lte=100"`
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"gt=0"`
}

// NATSConfig configures the JetStream log.
type NATSConfig struct {
	URL            string `koanf:"url" validate:"required"`
	EmbeddedServer bool   `koanf:"embedded_server"`
	StoreDir       string `koanf:"store_dir"`

	StreamName      string        `koanf:"stream_name" validate:"required"`
	Subject         string        `koanf:"subject" validate:"required"`
	MaxAge          time.Duration `koanf:"max_age" validate:"gt=0"`
	MaxBytes        int64         `koanf:"max_bytes" validate:"gt=0"`
	DuplicateWindow time.Duration `koanf:"duplicate_window" validate:"gte=0"`

	DurableName string        `koanf:"durable_name" validate:"required"`
	QueueGroup  string        `koanf:"queue_group" validate:"required"`
	MaxDeliver  int           `koanf:"max_deliver" validate:"gte=1"`
	AckWait     time.Duration `koanf:"ack_wait" validate:"gt=0"`

	MaxReconnects  int           `koanf:"max_reconnects"`
	ReconnectWait  time.Duration `koanf:"reconnect_wait"`
	PublishRetries int           `koanf:"publish_retries" validate:"gte=1,lte=10"`
}

// DedupConfig configures the producer-side dedup window.
type DedupConfig struct {
	// Window is the retention horizon for seen event IDs. Keep it at or
	// above the stream's duplicate window so replay behavior after a
	// consumer restart stays predictable.
	Window        time.Duration `koanf:"window" validate:"gt=0"`
	SweepInterval time.Duration `koanf:"sweep_interval" validate:"gt=0"`
}

// EnrichConfig configures the enrichment consumer.
type EnrichConfig struct {
	Workers int `koanf:"workers" validate:"gte=1,lte=64"`

	ProfileAPIURL string `koanf:"profile_api_url" validate:"required,url"`
	GeocodeAPIURL string `koanf:"geocode_api_url" validate:"required,url"`

	// GeocodeRatePerSec bounds outbound geocoding calls process-wide.
	// Nominatim policy is 1 request per second.
	GeocodeRatePerSec float64 `koanf:"geocode_rate_per_sec" validate:"gt=0"`

	ProfileTTL    time.Duration `koanf:"profile_ttl" validate:"gt=0"`
	GeocodeTTL    time.Duration `koanf:"geocode_ttl" validate:"gt=0"`
	NegativeTTL   time.Duration `koanf:"negative_ttl" validate:"gt=0"`
	LookupTimeout time.Duration `koanf:"lookup_timeout" validate:"gt=0"`

	// PersistRetries bounds sink write attempts within one delivery.
	PersistRetries int           `koanf:"persist_retries" validate:"gte=1,lte=10"`
	PersistBackoff time.Duration `koanf:"persist_backoff" validate:"gt=0"`
}

// DatabaseConfig configures the DuckDB storage sink.
type DatabaseConfig struct {
	Path      string `koanf:"path" validate:"required"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads" validate:"gte=0"`
}

// RollupConfig configures the periodic rollup refresh.
type RollupConfig struct {
	Enabled         bool          `koanf:"enabled"`
	RefreshInterval time.Duration `koanf:"refresh_interval" validate:"gt=0"`
}

// ServerConfig configures the operational HTTP listener.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port" validate:"gte=1,lte=65535"`
}

// LoggingConfig configures zerolog output.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all sensible default values.
// Defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			APIURL:         "https://api.github.com",
			Token:          "",
			PollInterval:   10 * time.Second,
			MaxPages:       3,
			PerPage:        30,
			RequestTimeout: 10 * time.Second,
		},
		NATS: NATSConfig{
			URL:             "nats://127.0.0.1:4222",
			EmbeddedServer:  true,
			StoreDir:        "/data/nats/jetstream",
			StreamName:      "GITHUB_EVENTS",
			Subject:         "github.events.raw",
			MaxAge:          48 * time.Hour,
			MaxBytes:        512 << 20, // 512MB
			DuplicateWindow: 2 * time.Minute,
			DurableName:     "github-events-enricher",
			QueueGroup:      "enrichers",
			MaxDeliver:      5,
			AckWait:         60 * time.Second,
			MaxReconnects:   -1,
			ReconnectWait:   2 * time.Second,
			PublishRetries:  5,
		},
		Dedup: DedupConfig{
			Window:        48 * time.Hour,
			SweepInterval: 5 * time.Minute,
		},
		Enrich: EnrichConfig{
			Workers:           4,
			ProfileAPIURL:     "https://api.github.com",
			GeocodeAPIURL:     "https://nominatim.openstreetmap.org/search",
			GeocodeRatePerSec: 1.0,
			ProfileTTL:        24 * time.Hour,
			GeocodeTTL:        7 * 24 * time.Hour,
			NegativeTTL:       15 * time.Minute,
			LookupTimeout:     8 * time.Second,
			PersistRetries:    3,
			PersistBackoff:    500 * time.Millisecond,
		},
		Database: DatabaseConfig{
			Path:      "/data/octoscope.duckdb",
			MaxMemory: "2GB",
			Threads:   0, // 0 = use runtime.NumCPU()
		},
		Rollup: RollupConfig{
			Enabled:         true,
			RefreshInterval: 5 * time.Minute,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 9187,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}
