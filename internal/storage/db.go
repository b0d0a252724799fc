// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/octoscope/octoscope/internal/config"
	"github.com/octoscope/octoscope/internal/logging"
)

const defaultQueryTimeout = 30 * time.Second

// DB wraps the DuckDB connection and provides data access methods.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig
}

// Open creates the DuckDB connection and initializes the schema.
func Open(cfg *config.DatabaseConfig) (*DB, error) {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	// Ensure the parent directory exists for file-backed databases.
	if cfg.Path != ":memory:" {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	// Disable auto-install/auto-load to prevent hangs in restricted
	// network environments.
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, threads, cfg.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn, cfg: cfg}

	if err := db.configurePool(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to configure connection pool: %w", err)
	}

	if err := db.initSchema(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Int("threads", threads).
		Str("max_memory", cfg.MaxMemory).
		Msg("Database opened")

	return db, nil
}

// configurePool tunes the database/sql pool. DuckDB is embedded, so a
// small pool avoids writer contention without starving readers.
func (db *DB) configurePool() error {
	db.conn.SetMaxOpenConns(4)
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), defaultQueryTimeout)
	defer cancel()
	return db.conn.PingContext(ctx)
}

// initSchema creates the events and rollup tables if they do not exist.
func (db *DB) initSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultQueryTimeout)
	defer cancel()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS events (
			time TIMESTAMP NOT NULL,
			event_id VARCHAR NOT NULL,
			event_type VARCHAR NOT NULL,
			actor VARCHAR NOT NULL,
			repo VARCHAR NOT NULL,
			detail VARCHAR,
			location VARCHAR,
			country VARCHAR,
			country_code VARCHAR,
			timezone VARCHAR,
			latitude DOUBLE,
			longitude DOUBLE,
			company VARCHAR,
			public_repos INTEGER,
			payload JSON,
			PRIMARY KEY (time, event_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_type ON events (event_type)`,
		`CREATE INDEX IF NOT EXISTS idx_events_actor ON events (actor)`,
		`CREATE TABLE IF NOT EXISTS events_hourly (
			bucket TIMESTAMP NOT NULL,
			event_type VARCHAR NOT NULL,
			event_count BIGINT NOT NULL,
			actor_count BIGINT NOT NULL,
			refreshed_at TIMESTAMP NOT NULL,
			PRIMARY KEY (bucket, event_type)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}

// Conn returns the underlying SQL connection for health checks.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Ping verifies the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close shuts down the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// ensureContext attaches the default timeout when the caller passed a
// context without a deadline.
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

func closeQuietly(conn *sql.DB) {
	if err := conn.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close database connection")
	}
}
