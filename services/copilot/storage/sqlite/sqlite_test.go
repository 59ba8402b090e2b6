// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/DecisionCopilot/services/copilot/datatypes"
	"github.com/AleutianAI/DecisionCopilot/services/copilot/storage"
)

// newTestStore creates an in-memory store that is torn down with the test.
func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// newTestDecision builds a decision with one constraint, not yet persisted.
func newTestDecision() *datatypes.Decision {
	return &datatypes.Decision{
		ID:      datatypes.NewID(),
		Date:    "2025-06-01",
		Title:   "Launch onboarding survey",
		Context: "We need better insight into activation drop-off during onboarding.",
		Constraints: []datatypes.DecisionConstraint{
			{ID: datatypes.NewID(), Text: "Budget limited"},
		},
	}
}

// newTestConcern builds a concern owned by the given user.
func newTestConcern(userID string, createdAt time.Time) *datatypes.PremortemConcern {
	return &datatypes.PremortemConcern{
		ID:             datatypes.NewID(),
		UserID:         userID,
		InitiativeName: "Q3 checkout revamp",
		ConcernText:    "The new flow may confuse returning customers.",
		Severity:       "high",
		ImpactLevel:    "medium",
		CreatedAt:      createdAt,
	}
}

func TestCreateAndGetDecision(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	decision := newTestDecision()
	require.NoError(t, store.CreateDecision(ctx, decision))

	got, err := store.GetDecision(ctx, decision.ID)
	require.NoError(t, err)
	assert.Equal(t, decision.Title, got.Title)
	assert.Equal(t, decision.Date, got.Date)
	require.Len(t, got.Constraints, 1)
	assert.Equal(t, "Budget limited", got.Constraints[0].Text)
	assert.Empty(t, got.Assumptions)
	assert.Nil(t, got.Outcome)
}

func TestGetDecision_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetDecision(context.Background(), "missing-id")
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAddAssumptions_PreservesOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	decision := newTestDecision()
	require.NoError(t, store.CreateDecision(ctx, decision))

	first, err := store.AddAssumptions(ctx, decision.ID, []string{"alpha", "beta"})
	require.NoError(t, err)
	require.Len(t, first, 2)

	// A second batch continues after the first.
	_, err = store.AddAssumptions(ctx, decision.ID, []string{"gamma"})
	require.NoError(t, err)

	got, err := store.GetDecision(ctx, decision.ID)
	require.NoError(t, err)
	require.Len(t, got.Assumptions, 3)
	assert.Equal(t, "alpha", got.Assumptions[0].Text)
	assert.Equal(t, "beta", got.Assumptions[1].Text)
	assert.Equal(t, "gamma", got.Assumptions[2].Text)
}

func TestAddAssumptions_MissingDecision(t *testing.T) {
	store := newTestStore(t)

	_, err := store.AddAssumptions(context.Background(), "missing", []string{"x"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpsertOutcome_ReplaceKeepsRowIdentity(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	decision := newTestDecision()
	require.NoError(t, store.CreateDecision(ctx, decision))

	created, err := store.UpsertOutcome(ctx, decision.ID, "first outcome")
	require.NoError(t, err)
	assert.Equal(t, "first outcome", created.Text)

	replaced, err := store.UpsertOutcome(ctx, decision.ID, "revised outcome")
	require.NoError(t, err)
	assert.Equal(t, "revised outcome", replaced.Text)
	assert.Equal(t, created.ID, replaced.ID, "replace must keep the outcome row id")

	// Still exactly one outcome row.
	got, err := store.GetDecision(ctx, decision.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Outcome)
	assert.Equal(t, "revised outcome", got.Outcome.Text)
}

func TestUpsertOutcome_MissingDecision(t *testing.T) {
	store := newTestStore(t)

	_, err := store.UpsertOutcome(context.Background(), "missing", "text")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteDecision_CascadesToChildren(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	decision := newTestDecision()
	require.NoError(t, store.CreateDecision(ctx, decision))
	_, err := store.AddAssumptions(ctx, decision.ID, []string{"a", "b"})
	require.NoError(t, err)
	_, err = store.UpsertOutcome(ctx, decision.ID, "done")
	require.NoError(t, err)

	require.NoError(t, store.DeleteDecision(ctx, decision.ID))

	_, err = store.GetDecision(ctx, decision.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// No orphaned child rows survive the delete.
	var count int
	row := store.db.QueryRow(
		`SELECT (SELECT COUNT(*) FROM decision_constraints) +
		        (SELECT COUNT(*) FROM assumptions) +
		        (SELECT COUNT(*) FROM outcomes)`)
	require.NoError(t, row.Scan(&count))
	assert.Zero(t, count)
}

func TestDeleteDecision_NotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.DeleteDecision(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListDecisions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	decision := newTestDecision()
	require.NoError(t, store.CreateDecision(ctx, decision))
	_, err := store.AddAssumptions(ctx, decision.ID, []string{"a"})
	require.NoError(t, err)

	summaries, err := store.ListDecisions(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, decision.ID, summaries[0].ID)
	assert.Equal(t, 1, summaries[0].ConstraintCount)
	assert.Equal(t, 1, summaries[0].AssumptionCount)
	assert.False(t, summaries[0].HasOutcome)
}

func TestGetOrCreateUserByEmail(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.GetOrCreateUserByEmail(ctx, "pm@example.com", "Jordan")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Jordan", created.Name)

	// Same email resolves the same user; the stored name is kept.
	again, err := store.GetOrCreateUserByEmail(ctx, "pm@example.com", "Someone Else")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, "Jordan", again.Name)
}

func TestGetOrCreateUserByEmail_CaseSensitive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	lower, err := store.GetOrCreateUserByEmail(ctx, "pm@example.com", "Jordan")
	require.NoError(t, err)
	upper, err := store.GetOrCreateUserByEmail(ctx, "PM@example.com", "Jordan")
	require.NoError(t, err)

	assert.NotEqual(t, lower.ID, upper.ID, "email match must be case-sensitive")
}

func TestConcernAndActions_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user, err := store.GetOrCreateUserByEmail(ctx, "pm@example.com", "Jordan")
	require.NoError(t, err)

	concern := newTestConcern(user.ID, time.Now().UTC())
	require.NoError(t, store.CreateConcern(ctx, concern))

	actions := []datatypes.MitigationAction{
		{ID: datatypes.NewID(), ConcernID: concern.ID, Title: "first",
			Description: "d1", OwnerRole: "Product Manager", DueInDays: 5,
			ImpactScore: 7, EffortScore: 3, ConfidenceScore: 8,
			LeadingIndicator: "signal one"},
		{ID: datatypes.NewID(), ConcernID: concern.ID, Title: "second",
			Description: "d2", OwnerRole: "Engineering Lead", DueInDays: 14,
			ImpactScore: 8, EffortScore: 5, ConfidenceScore: 7,
			LeadingIndicator: "signal two"},
	}
	require.NoError(t, store.InsertActions(ctx, concern.ID, actions))

	got, err := store.GetConcern(ctx, concern.ID)
	require.NoError(t, err)
	assert.Equal(t, concern.InitiativeName, got.InitiativeName)
	require.Len(t, got.Actions, 2)
	assert.Equal(t, "first", got.Actions[0].Title)
	assert.Equal(t, "second", got.Actions[1].Title)
}

func TestInsertActions_MissingConcern(t *testing.T) {
	store := newTestStore(t)

	err := store.InsertActions(context.Background(), "missing",
		[]datatypes.MitigationAction{{ID: datatypes.NewID(), Title: "t"}})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteConcernsOlderThan(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user, err := store.GetOrCreateUserByEmail(ctx, "pm@example.com", "Jordan")
	require.NoError(t, err)

	now := time.Now().UTC()
	old := newTestConcern(user.ID, now.AddDate(0, 0, -90))
	fresh := newTestConcern(user.ID, now)
	require.NoError(t, store.CreateConcern(ctx, old))
	require.NoError(t, store.CreateConcern(ctx, fresh))
	require.NoError(t, store.InsertActions(ctx, old.ID, []datatypes.MitigationAction{
		{ID: datatypes.NewID(), ConcernID: old.ID, Title: "stale",
			Description: "d", OwnerRole: "r", DueInDays: 5,
			ImpactScore: 5, EffortScore: 3, ConfidenceScore: 6,
			LeadingIndicator: "l"},
	}))

	deleted, err := store.DeleteConcernsOlderThan(ctx, now.AddDate(0, 0, -60))
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, err = store.GetConcern(ctx, old.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// The expired concern's actions are gone with it.
	var orphans int
	row := store.db.QueryRow(`SELECT COUNT(*) FROM mitigation_actions WHERE concern_id = ?`, old.ID)
	require.NoError(t, row.Scan(&orphans))
	assert.Zero(t, orphans)

	// The fresh concern is untouched.
	_, err = store.GetConcern(ctx, fresh.ID)
	assert.NoError(t, err)
}

func TestPing(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}
