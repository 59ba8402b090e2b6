// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// This file contains request and response types for the decision
// endpoints. Premortem types live in premortem.go; persisted entities in
// entities.go.
package datatypes

import (
	"github.com/go-playground/validator/v10"
)

// =============================================================================
// Shared Validator Instance
// =============================================================================

// copilotValidate is the validator instance for copilot datatypes.
// Initialized in init() with custom validators (see premortem.go).
var copilotValidate *validator.Validate

func init() {
	copilotValidate = validator.New()

	// "level" keeps severity/impact inside the closed low/medium/high set.
	_ = copilotValidate.RegisterValidation("level", validateLevelField)
}

// =============================================================================
// Decision Request Types
// =============================================================================

// CreateDecisionRequest is the body for POST /v1/decisions.
//
// # Fields
//
//   - Date: Calendar date in YYYY-MM-DD form. Required.
//   - Title: Short title, 1-200 characters. Required.
//   - Context: Free-text background. Required.
//   - Constraints: Optional constraint texts, stored in the given order.
//
// # Validation
//
// Uses go-playground/validator:
//   - Date: required, must parse as 2006-01-02
//   - Title: required, max 200 characters
//   - Context: required
//   - Constraints: each element non-empty
type CreateDecisionRequest struct {
	Date        string   `json:"date" validate:"required,datetime=2006-01-02"`
	Title       string   `json:"title" validate:"required,max=200"`
	Context     string   `json:"context" validate:"required"`
	Constraints []string `json:"constraints" validate:"dive,required"`
}

// Validate validates the CreateDecisionRequest fields.
//
// Call after binding the JSON body and before touching the store.
func (r *CreateDecisionRequest) Validate() error {
	return copilotValidate.Struct(r)
}

// ToDecision converts the request into a Decision entity with fresh IDs.
func (r *CreateDecisionRequest) ToDecision() *Decision {
	decision := &Decision{
		ID:          NewID(),
		Date:        r.Date,
		Title:       r.Title,
		Context:     r.Context,
		Constraints: make([]DecisionConstraint, 0, len(r.Constraints)),
		Assumptions: []Assumption{},
	}
	for _, text := range r.Constraints {
		decision.Constraints = append(decision.Constraints, DecisionConstraint{
			ID:   NewID(),
			Text: text,
		})
	}
	return decision
}

// AddAssumptionsRequest is the body for POST /v1/decisions/:id/assumptions.
type AddAssumptionsRequest struct {
	Texts []string `json:"texts" validate:"required,min=1,dive,required"`
}

// Validate validates the AddAssumptionsRequest fields.
func (r *AddAssumptionsRequest) Validate() error {
	return copilotValidate.Struct(r)
}

// UpsertOutcomeRequest is the body for PUT /v1/decisions/:id/outcome.
type UpsertOutcomeRequest struct {
	Text string `json:"text" validate:"required"`
}

// Validate validates the UpsertOutcomeRequest fields.
func (r *UpsertOutcomeRequest) Validate() error {
	return copilotValidate.Struct(r)
}

// =============================================================================
// Decision Response Types
// =============================================================================

// DecisionSummary is one row of the decision index listing.
type DecisionSummary struct {
	ID              string `json:"id"`
	Date            string `json:"date"`
	Title           string `json:"title"`
	ConstraintCount int    `json:"constraint_count"`
	AssumptionCount int    `json:"assumption_count"`
	HasOutcome      bool   `json:"has_outcome"`
}
