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

	"github.com/AleutianAI/DecisionCopilot/services/copilot/datatypes"
)

// severityWeight and impactWeight feed the deterministic score model.
// Unknown levels fall back to the "low" weight; request validation
// keeps them out of the service path, but the generator stays total.
var (
	severityWeight = map[string]int{"low": 1, "medium": 2, "high": 3}
	impactWeight   = map[string]int{"low": 2, "medium": 3, "high": 5}
)

// DeterministicGenerator synthesizes mitigation actions from the
// concern's severity and impact level alone. Same concern in, same
// plan out; no I/O, no randomness.
type DeterministicGenerator struct{}

var _ ActionGenerator = (*DeterministicGenerator)(nil)

// NewDeterministicGenerator returns the scoring-path generator.
func NewDeterministicGenerator() *DeterministicGenerator {
	return &DeterministicGenerator{}
}

// Generate synthesizes actionCount actions for the concern.
//
// # Description
//
// Scores derive from two weight tables:
//
//	impactBase     = min(10, severityWeight + impactWeight + 2)
//	confidenceBase = 8 (high severity) | 7 (medium) | 6 (otherwise)
//
// The first action is a short validation sweep due in 5 days; the
// second, emitted only for two-action plans, is a mitigation experiment
// spanning the full 14-day horizon with one point less confidence and
// one more impact.
func (g *DeterministicGenerator) Generate(_ context.Context, concern datatypes.PremortemConcern, actionCount int) Result {
	sw, ok := severityWeight[concern.Severity]
	if !ok {
		sw = severityWeight["low"]
	}
	iw, ok := impactWeight[concern.ImpactLevel]
	if !ok {
		iw = impactWeight["low"]
	}

	impactBase := sw + iw + 2
	if impactBase > maxScore {
		impactBase = maxScore
	}

	var confidenceBase int
	switch concern.Severity {
	case "high":
		confidenceBase = 8
	case "medium":
		confidenceBase = 7
	default:
		confidenceBase = 6
	}

	actions := []CandidateAction{
		{
			Title: fmt.Sprintf("Run a validation sweep on %s", concern.InitiativeName),
			Description: fmt.Sprintf(
				"Interview the people closest to %q and collect hard evidence for or against the concern: %s",
				concern.InitiativeName, concern.ConcernText),
			OwnerRole:        "Product Manager",
			DueInDays:        5,
			EffortScore:      3,
			ConfidenceScore:  confidenceBase,
			ImpactScore:      impactBase,
			LeadingIndicator: "Documented evidence confirming or refuting the concern within one week",
		},
	}

	if actionCount >= 2 {
		confidence := confidenceBase - 1
		if confidence < 5 {
			confidence = 5
		}
		impact := impactBase + 1
		if impact > maxScore {
			impact = maxScore
		}
		actions = append(actions, CandidateAction{
			Title: fmt.Sprintf("Run a mitigation experiment for %s", concern.InitiativeName),
			Description: fmt.Sprintf(
				"Design and ship a scoped experiment that directly reduces the risk behind: %s. Review results against the observed signals before widening scope.",
				concern.ConcernText),
			OwnerRole:        "Engineering Lead",
			DueInDays:        HorizonDays,
			EffortScore:      5,
			ConfidenceScore:  confidence,
			ImpactScore:      impact,
			LeadingIndicator: "Experiment shipped and its risk metric moving in the right direction",
		})
	}

	if actionCount < len(actions) {
		actions = actions[:actionCount]
	}

	return Result{
		Actions:    actions,
		Provenance: ProvenanceDeterministic,
	}
}
