// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package storage defines the entity store contract for the copilot service.
//
// The store persists two aggregates: the Decision aggregate (decision,
// constraints, assumptions, outcome) and the Premortem aggregate (user,
// concern, mitigation actions). Parent entities own their children: deleting
// a parent removes its children in the same transaction. There are no
// storage-engine cascade triggers; ownership is explicit in the
// implementation.
//
// The production implementation lives in the sqlite subpackage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/AleutianAI/DecisionCopilot/services/copilot/datatypes"
)

// ErrNotFound is returned when a referenced entity does not exist.
//
// Implementations wrap this sentinel so callers can test with errors.Is
// and map it to a 404 at the HTTP boundary. A missing row is never
// reported as (nil, nil).
var ErrNotFound = errors.New("not found")

// Store is the persistence contract for all copilot entities.
//
// # Description
//
// Store abstracts the durable entity store so the planner, sweeper, and
// handlers can be tested against an in-memory SQLite instance. Every write
// method is atomic: it either applies fully or leaves the store unchanged.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use.
//
// # Error Contract
//
//   - Missing entities: error wrapping ErrNotFound.
//   - Everything else: a wrapped driver error (a StoreFailure to callers).
type Store interface {
	// CreateDecision persists a decision together with its constraints.
	//
	// The decision and its constraint rows are written in one transaction.
	// IDs must be assigned by the caller before the call.
	CreateDecision(ctx context.Context, decision *datatypes.Decision) error

	// GetDecision loads a decision with its constraints, assumptions
	// (insertion order), and outcome. Returns ErrNotFound if absent.
	GetDecision(ctx context.Context, id string) (*datatypes.Decision, error)

	// ListDecisions returns a summary row per decision, newest first.
	ListDecisions(ctx context.Context) ([]datatypes.DecisionSummary, error)

	// DeleteDecision removes a decision and all its children in one
	// transaction. Returns ErrNotFound if the decision does not exist.
	DeleteDecision(ctx context.Context, id string) error

	// AddAssumptions appends assumptions to a decision, preserving the
	// order of texts. The whole batch commits or none of it does.
	// Returns ErrNotFound if the decision does not exist.
	AddAssumptions(ctx context.Context, decisionID string, texts []string) ([]datatypes.Assumption, error)

	// UpsertOutcome records the outcome for a decision. A second call
	// replaces the text of the first; the outcome row id is stable.
	// Returns ErrNotFound if the decision does not exist.
	UpsertOutcome(ctx context.Context, decisionID, text string) (*datatypes.Outcome, error)

	// GetOrCreateUserByEmail resolves a user by exact (case-sensitive)
	// email match, creating one with the supplied name if absent. The
	// name is not overwritten on reuse.
	GetOrCreateUserByEmail(ctx context.Context, email, name string) (*datatypes.User, error)

	// CreateConcern persists a premortem concern row. Actions are
	// persisted separately via InsertActions so a generation failure
	// still leaves the concern queryable.
	CreateConcern(ctx context.Context, concern *datatypes.PremortemConcern) error

	// GetConcern loads a concern with its actions in generation order.
	// Returns ErrNotFound if absent (including after a retention purge).
	GetConcern(ctx context.Context, id string) (*datatypes.PremortemConcern, error)

	// InsertActions persists a batch of actions as children of a concern
	// in one transaction: all rows become visible or none do.
	// Returns ErrNotFound if the concern does not exist.
	InsertActions(ctx context.Context, concernID string, actions []datatypes.MitigationAction) error

	// DeleteConcernsOlderThan removes every concern created strictly
	// before cutoff, together with its actions, in one transaction.
	// Returns the number of concerns removed.
	DeleteConcernsOlderThan(ctx context.Context, cutoff time.Time) (int, error)

	// Ping verifies the underlying store is reachable.
	Ping(ctx context.Context) error

	// Close releases the store's resources.
	Close() error
}
