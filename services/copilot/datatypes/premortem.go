// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// This file contains request and response types for the premortem
// endpoints.
package datatypes

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/AleutianAI/DecisionCopilot/pkg/validation"
)

// validateLevelField adapts pkg/validation's closed-set check to a
// validator/v10 tag. Registered as "level" in decision.go's init().
func validateLevelField(fl validator.FieldLevel) bool {
	return validation.ValidateLevel(fl.Field().String()) == nil
}

// =============================================================================
// Premortem Request Types
// =============================================================================

// CreatePlanRequest is the body for POST /v1/premortem/plans.
//
// # Description
//
// Logs a premortem concern and requests a mitigation plan for it. All
// validation happens before any persistence: an invalid request creates
// no user and no concern row.
//
// # Fields
//
//   - UserEmail: Required, well-formed email. Case-sensitive storage key.
//   - UserName: Required. Used only when the user does not exist yet.
//   - InitiativeName: Required, at least 3 characters.
//   - ConcernText: Required, at least 10 characters.
//   - ObservedSignals: Optional supporting evidence.
//   - Severity: Required, one of "low", "medium", "high".
//   - ImpactLevel: Required, one of "low", "medium", "high".
//
// # Validation
//
// Uses go-playground/validator plus the custom "level" validator backed
// by pkg/validation.
type CreatePlanRequest struct {
	UserEmail       string `json:"user_email" validate:"required,email"`
	UserName        string `json:"user_name" validate:"required"`
	InitiativeName  string `json:"initiative_name" validate:"required,min=3"`
	ConcernText     string `json:"concern_text" validate:"required,min=10"`
	ObservedSignals string `json:"observed_signals"`
	Severity        string `json:"severity" validate:"required,level"`
	ImpactLevel     string `json:"impact_level" validate:"required,level"`
}

// Validate validates the CreatePlanRequest fields.
//
// Call after EnsureDefaults and before any store mutation.
func (r *CreatePlanRequest) Validate() error {
	return copilotValidate.Struct(r)
}

// EnsureDefaults normalizes whitespace and level casing.
//
// Severity and impact are lowercased so "High" passes the closed-set
// check; the stored value is always the normalized form.
func (r *CreatePlanRequest) EnsureDefaults() {
	r.UserEmail = strings.TrimSpace(r.UserEmail)
	r.UserName = strings.TrimSpace(r.UserName)
	r.InitiativeName = strings.TrimSpace(r.InitiativeName)
	r.Severity = strings.ToLower(strings.TrimSpace(r.Severity))
	r.ImpactLevel = strings.ToLower(strings.TrimSpace(r.ImpactLevel))
}

// =============================================================================
// Premortem Response Types
// =============================================================================

// PremortemPlan is the response for POST /v1/premortem/plans.
//
// # Fields
//
//   - ConcernID: The persisted concern this plan belongs to.
//   - GeneratedWith: Provenance tag, "deterministic-fallback" or
//     "llm:<model-identifier>".
//   - HorizonDays: The fixed mitigation horizon (14 days).
//   - Actions: The persisted actions in generation order.
type PremortemPlan struct {
	ConcernID     string             `json:"concern_id"`
	GeneratedWith string             `json:"generated_with"`
	HorizonDays   int                `json:"horizon_days"`
	Actions       []MitigationAction `json:"actions"`
}
