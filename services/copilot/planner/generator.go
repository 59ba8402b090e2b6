// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package planner turns a premortem concern into one or two concrete
// mitigation actions.
//
// Generation runs on two paths: a delegated provider path when an LLM
// backend is configured, and a deterministic scoring path that serves
// both as the no-provider default and as the fallback for every
// provider failure. A request never fails because the provider did;
// the deterministic path always produces a valid plan.
package planner

import (
	"context"
	"strings"

	"github.com/AleutianAI/DecisionCopilot/services/copilot/datatypes"
)

const (
	// ProvenanceDeterministic labels plans produced by the scoring path.
	ProvenanceDeterministic = "deterministic-fallback"

	// HorizonDays is the fixed planning horizon reported with every plan.
	HorizonDays = 14

	minDueInDays = 1
	maxDueInDays = HorizonDays

	minScore = 1
	maxScore = 10
)

// CandidateAction is a generated action before persistence.
//
// Scores are on a 1..10 scale and DueInDays lies within the planning
// horizon once clampAction has run; candidates coming off the delegated
// path are normalized before use.
type CandidateAction struct {
	Title            string
	Description      string
	OwnerRole        string
	DueInDays        int
	EffortScore      int
	ConfidenceScore  int
	ImpactScore      int
	LeadingIndicator string
}

// Result is the outcome of one generation attempt.
type Result struct {
	Actions    []CandidateAction
	Provenance string

	// FailureReason is set when the attempt failed and the caller
	// should fall back. Empty on success.
	FailureReason string
}

// Failed reports whether this attempt produced no usable plan.
func (r Result) Failed() bool {
	return r.FailureReason != ""
}

// ActionGenerator produces mitigation actions for a concern.
//
// A failed attempt is reported through Result.FailureReason, not a Go
// error: failures here mean "fall back", never "abort the request".
type ActionGenerator interface {
	Generate(ctx context.Context, concern datatypes.PremortemConcern, actionCount int) Result
}

// actionCountFor returns the number of actions the plan must contain:
// two when either level is high, one otherwise.
func actionCountFor(severity, impactLevel string) int {
	if severity == "high" || impactLevel == "high" {
		return 2
	}
	return 1
}

// clampInt bounds v to [lo, hi].
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampAction normalizes a candidate in place: scores to 1..10, due
// dates into the planning horizon, text fields trimmed.
func clampAction(a *CandidateAction) {
	a.Title = strings.TrimSpace(a.Title)
	a.Description = strings.TrimSpace(a.Description)
	a.OwnerRole = strings.TrimSpace(a.OwnerRole)
	a.LeadingIndicator = strings.TrimSpace(a.LeadingIndicator)
	a.DueInDays = clampInt(a.DueInDays, minDueInDays, maxDueInDays)
	a.EffortScore = clampInt(a.EffortScore, minScore, maxScore)
	a.ConfidenceScore = clampInt(a.ConfidenceScore, minScore, maxScore)
	a.ImpactScore = clampInt(a.ImpactScore, minScore, maxScore)
}
