// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package journal records plan-generation provenance in BadgerDB.
//
// The journal is an append-only audit trail answering "which path
// generated this plan, and why did the provider path fall back". It is
// strictly best-effort: journal failures are logged by callers and never
// surface to the planner or its clients.
//
// BadgerDB gives embedded, low-latency storage with no extra process.
// License: BadgerDB is Apache 2.0 licensed (github.com/dgraph-io/badger).
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// keyPrefix namespaces journal entries inside the Badger keyspace.
const keyPrefix = "plan:"

// Event is one recorded plan generation.
//
// # Fields
//
//   - ID: UUID v4, assigned on append.
//   - ConcernID: The concern the plan was generated for.
//   - Provenance: "deterministic-fallback" or "llm:<model>".
//   - Model: Model identifier when a provider was attempted, else empty.
//   - FallbackReason: Why the delegated path fell back, empty on the
//     deterministic-only path or on provider success.
//   - DurationMs: End-to-end plan latency in milliseconds.
//   - CreatedAt: Append time (UTC).
type Event struct {
	ID             string    `json:"id"`
	ConcernID      string    `json:"concern_id"`
	Provenance     string    `json:"provenance"`
	Model          string    `json:"model,omitempty"`
	FallbackReason string    `json:"fallback_reason,omitempty"`
	DurationMs     int64     `json:"duration_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

// Journal is the provenance journal contract.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use.
type Journal interface {
	// Append records one event. The event's ID and CreatedAt are
	// assigned here if unset.
	Append(ctx context.Context, event Event) error

	// Recent returns up to n events, newest first.
	Recent(ctx context.Context, n int) ([]Event, error)

	// Close releases the underlying database.
	Close() error
}

// Config holds configuration for the Badger-backed journal.
type Config struct {
	// Path is the directory for BadgerDB files.
	// Ignored when InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	// Useful for testing.
	InMemory bool

	// Logger receives BadgerDB's internal log output.
	// If nil, BadgerDB's internal logging is disabled.
	Logger *slog.Logger
}

// InMemoryConfig returns configuration for tests: no disk I/O, quiet logs.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerJournal implements Journal on BadgerDB.
type badgerJournal struct {
	db *badger.DB
}

var _ Journal = (*badgerJournal)(nil)

// New opens (or creates) a journal per the given config.
//
// # Outputs
//
//   - Journal: Ready-to-use journal.
//   - error: Non-nil if the directory or database cannot be opened.
func New(cfg Config) (Journal, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, fmt.Errorf("journal path is required for persistent mode")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.Path+"/"), 0755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	return &badgerJournal{db: db}, nil
}

// Append records one event.
//
// Keys are "plan:<unix-nanos>:<id>", so lexicographic order is append
// order and a reverse iteration yields newest-first.
func (j *badgerJournal) Append(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal journal event: %w", err)
	}
	key := fmt.Sprintf("%s%020d:%s", keyPrefix, event.CreatedAt.UnixNano(), event.ID)

	err = j.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("failed to append journal event: %w", err)
	}
	return nil
}

// Recent returns up to n events, newest first.
func (j *badgerJournal) Recent(ctx context.Context, n int) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return []Event{}, nil
	}

	events := make([]Event, 0, n)
	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration needs a seek key past every real key in the
		// prefix range; 0xff sorts after the digit/colon bytes used here.
		seek := append([]byte(keyPrefix), 0xff)
		for it.Seek(seek); it.ValidForPrefix([]byte(keyPrefix)) && len(events) < n; it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var event Event
				if err := json.Unmarshal(val, &event); err != nil {
					return fmt.Errorf("failed to unmarshal journal event: %w", err)
				}
				events = append(events, event)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	return events, nil
}

// Close releases the underlying database.
func (j *badgerJournal) Close() error {
	return j.db.Close()
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
