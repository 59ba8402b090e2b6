// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package sqlite implements the storage.Store interface on SQLite.
//
// The database is opened in WAL mode with foreign keys enforced. Foreign
// keys guard referential integrity, but cascading deletes are explicit:
// child rows are deleted in the same transaction as their parent so the
// ownership semantics are visible in this package rather than hidden in
// schema triggers.
//
// Timestamps are stored as Unix milliseconds (UTC). Email uniqueness uses
// SQLite's default BINARY collation, which is case-sensitive by
// construction.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/AleutianAI/DecisionCopilot/services/copilot/datatypes"
	"github.com/AleutianAI/DecisionCopilot/services/copilot/storage"
)

// schema creates all tables on first open. CREATE TABLE IF NOT EXISTS keeps
// reopening an existing database safe.
const schema = `
CREATE TABLE IF NOT EXISTS decisions (
	id         TEXT PRIMARY KEY,
	date       TEXT NOT NULL,
	title      TEXT NOT NULL,
	context    TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS decision_constraints (
	id          TEXT PRIMARY KEY,
	decision_id TEXT NOT NULL REFERENCES decisions(id),
	position    INTEGER NOT NULL,
	text        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS assumptions (
	id          TEXT PRIMARY KEY,
	decision_id TEXT NOT NULL REFERENCES decisions(id),
	position    INTEGER NOT NULL,
	text        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS outcomes (
	id          TEXT PRIMARY KEY,
	decision_id TEXT NOT NULL UNIQUE REFERENCES decisions(id),
	text        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL UNIQUE,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS premortem_concerns (
	id               TEXT PRIMARY KEY,
	user_id          TEXT NOT NULL REFERENCES users(id),
	initiative_name  TEXT NOT NULL,
	concern_text     TEXT NOT NULL,
	observed_signals TEXT NOT NULL DEFAULT '',
	severity         TEXT NOT NULL,
	impact_level     TEXT NOT NULL,
	created_at       INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_concerns_created_at
	ON premortem_concerns(created_at);

CREATE TABLE IF NOT EXISTS mitigation_actions (
	id                TEXT PRIMARY KEY,
	concern_id        TEXT NOT NULL REFERENCES premortem_concerns(id),
	position          INTEGER NOT NULL,
	title             TEXT NOT NULL,
	description       TEXT NOT NULL,
	owner_role        TEXT NOT NULL,
	due_in_days       INTEGER NOT NULL,
	impact_score      INTEGER NOT NULL,
	effort_score      INTEGER NOT NULL,
	confidence_score  INTEGER NOT NULL,
	leading_indicator TEXT NOT NULL
);
`

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// Compile-time interface compliance.
var _ storage.Store = (*SQLiteStore)(nil)

// New opens (or creates) a SQLite database at path and initializes the schema.
//
// # Description
//
// The parent directory is created if missing. The database is opened with
// WAL journaling for better concurrency and with foreign key enforcement
// on. Pass ":memory:" for an ephemeral test store.
//
// # Inputs
//
//   - path: Database file path, or ":memory:" for an in-memory store.
//
// # Outputs
//
//   - *SQLiteStore: Ready-to-use store.
//   - error: Non-nil if the directory, connection, or schema setup fails.
func New(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// An in-memory database exists per connection; cap the pool at one
	// connection so every query sees the same schema.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// =============================================================================
// Transaction Helper
// =============================================================================

// withImmediateTx runs fn inside a BEGIN IMMEDIATE transaction.
//
// # Description
//
// IMMEDIATE acquires a RESERVED lock up front, serializing concurrent
// writers instead of failing mid-transaction. database/sql's BeginTx only
// issues DEFERRED transactions with the sqlite3 driver, so the transaction
// control statements are executed directly on a dedicated connection.
//
// If fn returns an error the transaction is rolled back and nothing is
// visible; otherwise it is committed. ROLLBACK uses a background context
// so cleanup happens even when ctx is already canceled.
func (s *SQLiteStore) withImmediateTx(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return fmt.Errorf("failed to begin immediate transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_, _ = conn.ExecContext(context.Background(), "ROLLBACK")
		}
	}()

	if err := fn(conn); err != nil {
		return err
	}

	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}

// =============================================================================
// Decision Aggregate
// =============================================================================

// CreateDecision persists a decision and its constraints in one transaction.
func (s *SQLiteStore) CreateDecision(ctx context.Context, decision *datatypes.Decision) error {
	now := time.Now().UnixMilli()
	return s.withImmediateTx(ctx, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx,
			`INSERT INTO decisions (id, date, title, context, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			decision.ID, decision.Date, decision.Title, decision.Context, now)
		if err != nil {
			return fmt.Errorf("failed to insert decision: %w", err)
		}

		for i, c := range decision.Constraints {
			_, err := conn.ExecContext(ctx,
				`INSERT INTO decision_constraints (id, decision_id, position, text)
				 VALUES (?, ?, ?, ?)`,
				c.ID, decision.ID, i, c.Text)
			if err != nil {
				return fmt.Errorf("failed to insert constraint: %w", err)
			}
		}
		return nil
	})
}

// GetDecision loads a decision with all its children.
func (s *SQLiteStore) GetDecision(ctx context.Context, id string) (*datatypes.Decision, error) {
	decision := &datatypes.Decision{
		Constraints: []datatypes.DecisionConstraint{},
		Assumptions: []datatypes.Assumption{},
	}

	err := s.db.QueryRowContext(ctx,
		`SELECT id, date, title, context FROM decisions WHERE id = ?`, id).
		Scan(&decision.ID, &decision.Date, &decision.Title, &decision.Context)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("decision %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query decision: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text FROM decision_constraints
		 WHERE decision_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query constraints: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c datatypes.DecisionConstraint
		if err := rows.Scan(&c.ID, &c.Text); err != nil {
			return nil, fmt.Errorf("failed to scan constraint: %w", err)
		}
		decision.Constraints = append(decision.Constraints, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate constraints: %w", err)
	}

	arows, err := s.db.QueryContext(ctx,
		`SELECT id, text FROM assumptions
		 WHERE decision_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query assumptions: %w", err)
	}
	defer arows.Close()
	for arows.Next() {
		var a datatypes.Assumption
		if err := arows.Scan(&a.ID, &a.Text); err != nil {
			return nil, fmt.Errorf("failed to scan assumption: %w", err)
		}
		decision.Assumptions = append(decision.Assumptions, a)
	}
	if err := arows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assumptions: %w", err)
	}

	var outcome datatypes.Outcome
	err = s.db.QueryRowContext(ctx,
		`SELECT id, text FROM outcomes WHERE decision_id = ?`, id).
		Scan(&outcome.ID, &outcome.Text)
	switch {
	case err == sql.ErrNoRows:
		// No outcome yet; leave nil.
	case err != nil:
		return nil, fmt.Errorf("failed to query outcome: %w", err)
	default:
		decision.Outcome = &outcome
	}

	return decision, nil
}

// ListDecisions returns decision summaries, newest first.
func (s *SQLiteStore) ListDecisions(ctx context.Context) ([]datatypes.DecisionSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.id, d.date, d.title,
			(SELECT COUNT(*) FROM decision_constraints c WHERE c.decision_id = d.id),
			(SELECT COUNT(*) FROM assumptions a WHERE a.decision_id = d.id),
			EXISTS (SELECT 1 FROM outcomes o WHERE o.decision_id = d.id)
		 FROM decisions d
		 ORDER BY d.created_at DESC, d.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	summaries := []datatypes.DecisionSummary{}
	for rows.Next() {
		var sum datatypes.DecisionSummary
		if err := rows.Scan(&sum.ID, &sum.Date, &sum.Title,
			&sum.ConstraintCount, &sum.AssumptionCount, &sum.HasOutcome); err != nil {
			return nil, fmt.Errorf("failed to scan decision summary: %w", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate decisions: %w", err)
	}
	return summaries, nil
}

// DeleteDecision removes a decision and all children in one transaction.
func (s *SQLiteStore) DeleteDecision(ctx context.Context, id string) error {
	return s.withImmediateTx(ctx, func(conn *sql.Conn) error {
		// Children first so the foreign keys stay satisfied throughout.
		if _, err := conn.ExecContext(ctx,
			`DELETE FROM decision_constraints WHERE decision_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete constraints: %w", err)
		}
		if _, err := conn.ExecContext(ctx,
			`DELETE FROM assumptions WHERE decision_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete assumptions: %w", err)
		}
		if _, err := conn.ExecContext(ctx,
			`DELETE FROM outcomes WHERE decision_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete outcome: %w", err)
		}

		res, err := conn.ExecContext(ctx,
			`DELETE FROM decisions WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete decision: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("decision %s: %w", id, storage.ErrNotFound)
		}
		return nil
	})
}

// AddAssumptions appends assumptions to a decision in input order.
func (s *SQLiteStore) AddAssumptions(ctx context.Context, decisionID string, texts []string) ([]datatypes.Assumption, error) {
	created := make([]datatypes.Assumption, 0, len(texts))

	err := s.withImmediateTx(ctx, func(conn *sql.Conn) error {
		var exists int
		err := conn.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM decisions WHERE id = ?`, decisionID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check decision: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("decision %s: %w", decisionID, storage.ErrNotFound)
		}

		// Continue positions after any existing assumptions so insertion
		// order is preserved across calls.
		var next int
		err = conn.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(position)+1, 0) FROM assumptions WHERE decision_id = ?`,
			decisionID).Scan(&next)
		if err != nil {
			return fmt.Errorf("failed to read assumption position: %w", err)
		}

		for i, text := range texts {
			a := datatypes.Assumption{ID: datatypes.NewID(), Text: text}
			_, err := conn.ExecContext(ctx,
				`INSERT INTO assumptions (id, decision_id, position, text)
				 VALUES (?, ?, ?, ?)`,
				a.ID, decisionID, next+i, a.Text)
			if err != nil {
				return fmt.Errorf("failed to insert assumption: %w", err)
			}
			created = append(created, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpsertOutcome creates or fully replaces the outcome for a decision.
//
// The replace path is an UPDATE, so the outcome row id never changes once
// assigned. ON CONFLICT keys on the unique decision_id column.
func (s *SQLiteStore) UpsertOutcome(ctx context.Context, decisionID, text string) (*datatypes.Outcome, error) {
	outcome := &datatypes.Outcome{}

	err := s.withImmediateTx(ctx, func(conn *sql.Conn) error {
		var exists int
		err := conn.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM decisions WHERE id = ?`, decisionID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check decision: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("decision %s: %w", decisionID, storage.ErrNotFound)
		}

		_, err = conn.ExecContext(ctx,
			`INSERT INTO outcomes (id, decision_id, text) VALUES (?, ?, ?)
			 ON CONFLICT(decision_id) DO UPDATE SET text = excluded.text`,
			datatypes.NewID(), decisionID, text)
		if err != nil {
			return fmt.Errorf("failed to upsert outcome: %w", err)
		}

		err = conn.QueryRowContext(ctx,
			`SELECT id, text FROM outcomes WHERE decision_id = ?`, decisionID).
			Scan(&outcome.ID, &outcome.Text)
		if err != nil {
			return fmt.Errorf("failed to read back outcome: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// =============================================================================
// Premortem Aggregate
// =============================================================================

// GetOrCreateUserByEmail resolves a user by exact email, creating if absent.
func (s *SQLiteStore) GetOrCreateUserByEmail(ctx context.Context, email, name string) (*datatypes.User, error) {
	user := &datatypes.User{}

	err := s.withImmediateTx(ctx, func(conn *sql.Conn) error {
		var createdMs int64
		err := conn.QueryRowContext(ctx,
			`SELECT id, name, email, created_at FROM users WHERE email = ?`, email).
			Scan(&user.ID, &user.Name, &user.Email, &createdMs)
		if err == nil {
			user.CreatedAt = time.UnixMilli(createdMs).UTC()
			return nil
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("failed to query user: %w", err)
		}

		user.ID = datatypes.NewID()
		user.Name = name
		user.Email = email
		user.CreatedAt = time.Now().UTC()
		_, err = conn.ExecContext(ctx,
			`INSERT INTO users (id, name, email, created_at) VALUES (?, ?, ?, ?)`,
			user.ID, user.Name, user.Email, user.CreatedAt.UnixMilli())
		if err != nil {
			return fmt.Errorf("failed to insert user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateConcern persists a premortem concern row.
func (s *SQLiteStore) CreateConcern(ctx context.Context, concern *datatypes.PremortemConcern) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO premortem_concerns
		 (id, user_id, initiative_name, concern_text, observed_signals,
		  severity, impact_level, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		concern.ID, concern.UserID, concern.InitiativeName, concern.ConcernText,
		concern.ObservedSignals, concern.Severity, concern.ImpactLevel,
		concern.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert concern: %w", err)
	}
	return nil
}

// GetConcern loads a concern with its actions in generation order.
func (s *SQLiteStore) GetConcern(ctx context.Context, id string) (*datatypes.PremortemConcern, error) {
	concern := &datatypes.PremortemConcern{Actions: []datatypes.MitigationAction{}}

	var createdMs int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, initiative_name, concern_text, observed_signals,
		        severity, impact_level, created_at
		 FROM premortem_concerns WHERE id = ?`, id).
		Scan(&concern.ID, &concern.UserID, &concern.InitiativeName,
			&concern.ConcernText, &concern.ObservedSignals,
			&concern.Severity, &concern.ImpactLevel, &createdMs)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("concern %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query concern: %w", err)
	}
	concern.CreatedAt = time.UnixMilli(createdMs).UTC()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, concern_id, title, description, owner_role, due_in_days,
		        impact_score, effort_score, confidence_score, leading_indicator
		 FROM mitigation_actions WHERE concern_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a datatypes.MitigationAction
		if err := rows.Scan(&a.ID, &a.ConcernID, &a.Title, &a.Description,
			&a.OwnerRole, &a.DueInDays, &a.ImpactScore, &a.EffortScore,
			&a.ConfidenceScore, &a.LeadingIndicator); err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}
		concern.Actions = append(concern.Actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate actions: %w", err)
	}

	return concern, nil
}

// InsertActions writes an action batch in one all-or-nothing transaction.
func (s *SQLiteStore) InsertActions(ctx context.Context, concernID string, actions []datatypes.MitigationAction) error {
	return s.withImmediateTx(ctx, func(conn *sql.Conn) error {
		var exists int
		err := conn.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM premortem_concerns WHERE id = ?`, concernID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check concern: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("concern %s: %w", concernID, storage.ErrNotFound)
		}

		for i, a := range actions {
			_, err := conn.ExecContext(ctx,
				`INSERT INTO mitigation_actions
				 (id, concern_id, position, title, description, owner_role,
				  due_in_days, impact_score, effort_score, confidence_score,
				  leading_indicator)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				a.ID, concernID, i, a.Title, a.Description, a.OwnerRole,
				a.DueInDays, a.ImpactScore, a.EffortScore, a.ConfidenceScore,
				a.LeadingIndicator)
			if err != nil {
				return fmt.Errorf("failed to insert action: %w", err)
			}
		}
		return nil
	})
}

// DeleteConcernsOlderThan purges concerns created strictly before cutoff.
func (s *SQLiteStore) DeleteConcernsOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	cutoffMs := cutoff.UnixMilli()
	var deleted int

	err := s.withImmediateTx(ctx, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx,
			`DELETE FROM mitigation_actions WHERE concern_id IN
			 (SELECT id FROM premortem_concerns WHERE created_at < ?)`, cutoffMs)
		if err != nil {
			return fmt.Errorf("failed to delete expired actions: %w", err)
		}

		res, err := conn.ExecContext(ctx,
			`DELETE FROM premortem_concerns WHERE created_at < ?`, cutoffMs)
		if err != nil {
			return fmt.Errorf("failed to delete expired concerns: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		deleted = int(affected)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// =============================================================================
// Lifecycle
// =============================================================================

// Ping verifies the database connection is alive.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
