// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes provides data structures for the copilot service.
//
// This file contains the persisted domain entities. Request and response
// types for the HTTP surface live in decision.go and premortem.go.
package datatypes

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Decision Aggregate
// =============================================================================

// Decision is a recorded product decision.
//
// # Description
//
// A Decision owns its Constraints, Assumptions, and at most one Outcome.
// Deleting a Decision removes all three child sets in the same transaction;
// ownership is enforced by the store, not by database cascade triggers.
//
// # Fields
//
//   - ID: UUID v4, generated server-side.
//   - Date: Calendar date of the decision in YYYY-MM-DD form.
//   - Title: Short human-readable title.
//   - Context: Free-text background for the decision.
//   - Constraints: Ordered constraint list (creation order).
//   - Assumptions: Ordered assumption list (creation order).
//   - Outcome: The observed outcome, nil until one is recorded.
type Decision struct {
	ID          string               `json:"id"`
	Date        string               `json:"date"`
	Title       string               `json:"title"`
	Context     string               `json:"context"`
	Constraints []DecisionConstraint `json:"constraints"`
	Assumptions []Assumption         `json:"assumptions"`
	Outcome     *Outcome             `json:"outcome"`
}

// DecisionConstraint is a single constraint attached to a Decision.
//
// Named DecisionConstraint rather than Constraint to avoid reading like a
// database keyword at call sites.
type DecisionConstraint struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Assumption is a belief recorded against a Decision, later checked
// against the Outcome by the reflection engine.
type Assumption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Outcome is the observed real-world result of a Decision.
//
// At most one Outcome exists per Decision. Recording a second outcome
// replaces the text of the first; the row identity is stable.
type Outcome struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// =============================================================================
// Premortem Aggregate
// =============================================================================

// User is a lightweight account record keyed by email.
//
// Users are created lazily on first concern submission. Email matching is
// exact: "A@x.com" and "a@x.com" are distinct users.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// PremortemConcern is a logged worry about an initiative.
//
// # Description
//
// A concern owns its MitigationActions and cascade-deletes them. CreatedAt
// drives the 60-day retention horizon: concerns strictly older than the
// horizon are purged together with their actions.
//
// # Fields
//
//   - ID: UUID v4, generated server-side.
//   - UserID: Owning user.
//   - InitiativeName: The initiative the concern is about.
//   - ConcernText: The worry itself.
//   - ObservedSignals: Optional supporting evidence; empty when not supplied.
//   - Severity: One of "low", "medium", "high".
//   - ImpactLevel: One of "low", "medium", "high".
//   - CreatedAt: Submission time (UTC); retention key.
//   - Actions: Ordered mitigation actions (generation order).
type PremortemConcern struct {
	ID              string             `json:"id"`
	UserID          string             `json:"user_id"`
	InitiativeName  string             `json:"initiative_name"`
	ConcernText     string             `json:"concern_text"`
	ObservedSignals string             `json:"observed_signals,omitempty"`
	Severity        string             `json:"severity"`
	ImpactLevel     string             `json:"impact_level"`
	CreatedAt       time.Time          `json:"created_at"`
	Actions         []MitigationAction `json:"actions,omitempty"`
}

// MitigationAction is a concrete, time-boxed step that mitigates a concern.
//
// Scores are always in range after planner normalization regardless of
// whether the action came from the deterministic generator or a provider:
// DueInDays in [1,14], each score in [1,10].
type MitigationAction struct {
	ID               string `json:"id"`
	ConcernID        string `json:"concern_id"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	OwnerRole        string `json:"owner_role"`
	DueInDays        int    `json:"due_in_days"`
	ImpactScore      int    `json:"impact_score"`
	EffortScore      int    `json:"effort_score"`
	ConfidenceScore  int    `json:"confidence_score"`
	LeadingIndicator string `json:"leading_indicator"`
}

// =============================================================================
// Shared Helpers
// =============================================================================

// generateUUID returns a new UUID v4 string for entity and event IDs.
func generateUUID() string {
	return uuid.New().String()
}

// NewID returns a fresh entity identifier.
//
// Exposed so the storage and planner layers mint IDs the same way the
// request types do.
func NewID() string {
	return generateUUID()
}
