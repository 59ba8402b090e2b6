// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package planner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AleutianAI/DecisionCopilot/services/copilot/datatypes"
	"github.com/AleutianAI/DecisionCopilot/services/copilot/journal"
	"github.com/AleutianAI/DecisionCopilot/services/copilot/observability"
	"github.com/AleutianAI/DecisionCopilot/services/copilot/retention"
	"github.com/AleutianAI/DecisionCopilot/services/copilot/storage"
)

// Planner orchestrates a premortem plan request end to end: retention
// sweep, user resolution, concern persistence, action generation with
// fallback, and action persistence.
type Planner struct {
	store         storage.Store
	sweeper       *retention.Sweeper
	clock         retention.ClockChecker
	delegated     ActionGenerator
	deterministic ActionGenerator
	journal       journal.Journal
}

// NewPlanner wires a planner.
//
// # Inputs
//
//   - store: Entity store.
//   - sweeper: Retention sweeper, run before each new concern.
//   - clock: Guarded clock supplying concern timestamps.
//   - delegated: Provider-backed generator; nil when no backend is
//     configured, which routes every request to the deterministic path.
//   - jrnl: Provenance journal; nil disables journaling.
func NewPlanner(
	store storage.Store,
	sweeper *retention.Sweeper,
	clock retention.ClockChecker,
	delegated ActionGenerator,
	jrnl journal.Journal,
) *Planner {
	return &Planner{
		store:         store,
		sweeper:       sweeper,
		clock:         clock,
		delegated:     delegated,
		deterministic: NewDeterministicGenerator(),
		journal:       jrnl,
	}
}

// Plan accepts a validated request and produces a persisted mitigation
// plan.
//
// # Description
//
// Steps, in order: run the retention sweep, resolve or create the user
// by exact email, persist the concern, generate actions (delegated path
// first when configured, deterministic on any delegated failure),
// normalize, persist the batch, and record provenance. The concern row
// is written before generation, so a store failure during action
// persistence leaves a queryable concern without actions.
//
// # Inputs
//
//   - ctx: Request context.
//   - req: Plan request; caller must have run EnsureDefaults and
//     Validate.
//
// # Outputs
//
//   - *datatypes.PremortemPlan: Actions in generation order plus the
//     provenance tag and horizon.
//   - error: Non-nil on clock, sweep, or store failure. Provider
//     failures never surface here; they fall back.
func (p *Planner) Plan(ctx context.Context, req datatypes.CreatePlanRequest) (*datatypes.PremortemPlan, error) {
	started := time.Now()

	now, err := p.clock.Now()
	if err != nil {
		return nil, fmt.Errorf("plan rejected: %w", err)
	}
	if _, err := p.sweeper.Sweep(ctx, now); err != nil {
		return nil, err
	}

	user, err := p.store.GetOrCreateUserByEmail(ctx, req.UserEmail, req.UserName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	concern := datatypes.PremortemConcern{
		ID:              datatypes.NewID(),
		UserID:          user.ID,
		InitiativeName:  req.InitiativeName,
		ConcernText:     req.ConcernText,
		ObservedSignals: req.ObservedSignals,
		Severity:        req.Severity,
		ImpactLevel:     req.ImpactLevel,
		CreatedAt:       now.UTC(),
	}
	if err := p.store.CreateConcern(ctx, &concern); err != nil {
		return nil, fmt.Errorf("failed to persist concern: %w", err)
	}

	actionCount := actionCountFor(concern.Severity, concern.ImpactLevel)
	result, fallbackReason := p.generate(ctx, concern, actionCount)

	actions := make([]datatypes.MitigationAction, 0, len(result.Actions))
	for _, candidate := range result.Actions {
		clampAction(&candidate)
		actions = append(actions, datatypes.MitigationAction{
			ID:               datatypes.NewID(),
			ConcernID:        concern.ID,
			Title:            candidate.Title,
			Description:      candidate.Description,
			OwnerRole:        candidate.OwnerRole,
			DueInDays:        candidate.DueInDays,
			ImpactScore:      candidate.ImpactScore,
			EffortScore:      candidate.EffortScore,
			ConfidenceScore:  candidate.ConfidenceScore,
			LeadingIndicator: candidate.LeadingIndicator,
		})
	}
	if err := p.store.InsertActions(ctx, concern.ID, actions); err != nil {
		return nil, fmt.Errorf("failed to persist actions: %w", err)
	}

	duration := time.Since(started)
	observability.RecordPlan(result.Provenance, duration)
	p.appendJournal(ctx, concern.ID, result.Provenance, fallbackReason, duration)

	return &datatypes.PremortemPlan{
		ConcernID:     concern.ID,
		GeneratedWith: result.Provenance,
		HorizonDays:   HorizonDays,
		Actions:       actions,
	}, nil
}

// generate runs the delegated path when configured and applies the
// fallback. Returns the successful result plus the delegated failure
// reason when a fallback happened ("" otherwise).
func (p *Planner) generate(ctx context.Context, concern datatypes.PremortemConcern, actionCount int) (Result, string) {
	if p.delegated == nil {
		return p.deterministic.Generate(ctx, concern, actionCount), ""
	}

	result := p.delegated.Generate(ctx, concern, actionCount)
	if !result.Failed() {
		return result, ""
	}

	observability.RecordProviderFailure("generation")
	slog.Warn("delegated plan generation failed, using deterministic fallback",
		"concern_id", concern.ID,
		"reason", result.FailureReason,
	)
	return p.deterministic.Generate(ctx, concern, actionCount), result.FailureReason
}

// appendJournal records the provenance event. Best-effort: a journal
// failure is logged and swallowed.
func (p *Planner) appendJournal(ctx context.Context, concernID, provenance, fallbackReason string, duration time.Duration) {
	if p.journal == nil {
		return
	}
	model := ""
	if strings.HasPrefix(provenance, "llm:") {
		model = strings.TrimPrefix(provenance, "llm:")
	}
	err := p.journal.Append(ctx, journal.Event{
		ConcernID:      concernID,
		Provenance:     provenance,
		Model:          model,
		FallbackReason: fallbackReason,
		DurationMs:     duration.Milliseconds(),
	})
	if err != nil {
		slog.Warn("failed to append provenance event", "concern_id", concernID, "error", err)
	}
}
