// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package reflection compares a decision's assumptions against its outcome.
//
// The engine is a pure function over supplied data: no storage access, no
// state. An assumption is classified "held" when its normalized text occurs
// as a contiguous substring of the normalized outcome text, otherwise it is
// "contradicted". Normalization is trim plus lowercase on both sides.
//
// This is a deliberately narrow heuristic, not a semantic evaluator. It is
// kept literal so results are cheap, deterministic, and explainable.
package reflection

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/DecisionCopilot/services/copilot/datatypes"
)

// Fixed summary messages for the two degenerate cases.
const (
	summaryNoOutcome     = "No outcome recorded yet. Add an outcome to compare assumptions."
	summaryNoAssumptions = "Outcome recorded, but no assumptions were logged."
)

// AssumptionResult is the per-assumption classification.
type AssumptionResult struct {
	// Assumption is the original (un-normalized) assumption text.
	Assumption string `json:"assumption"`

	// Held is true when the normalized assumption appears in the
	// normalized outcome.
	Held bool `json:"held"`
}

// Report is the full comparison between an outcome and the assumptions.
//
// # Fields
//
//   - Outcome: The recorded outcome text, nil when none exists yet.
//   - Assumptions: Per-assumption results in the input (insertion) order.
//   - HeldTrue: Texts of assumptions that held, in input order.
//   - Contradicted: Texts of assumptions that did not hold, in input order.
//   - Summary: Exactly one of three fixed forms depending on whether an
//     outcome exists and how many assumptions were logged.
//
// HeldTrue and Contradicted are always computed, even without an outcome;
// the Summary alone distinguishes "no outcome yet" from a contradicting
// outcome.
type Report struct {
	Outcome      *string            `json:"outcome"`
	Assumptions  []AssumptionResult `json:"assumptions"`
	HeldTrue     []string           `json:"held_true"`
	Contradicted []string           `json:"contradicted"`
	Summary      string             `json:"summary"`
}

// Verdict categorizes the report for metrics: "no_outcome",
// "no_assumptions", or "compared".
func (r Report) Verdict() string {
	switch r.Summary {
	case summaryNoOutcome:
		return "no_outcome"
	case summaryNoAssumptions:
		return "no_assumptions"
	default:
		return "compared"
	}
}

// normalize trims surrounding whitespace and lowercases text so case and
// padding never affect classification.
func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Reflect classifies each assumption against the outcome.
//
// # Description
//
// For every assumption, the normalized assumption is checked for contiguous
// containment in the normalized outcome. With no outcome the containment
// check runs against the empty string, so every assumption lands in
// Contradicted; the summary then directs the user to record an outcome
// instead of claiming contradiction.
//
// # Inputs
//
//   - assumptions: Assumptions in insertion order. May be empty.
//   - outcome: The recorded outcome, or nil if none exists yet.
//
// # Outputs
//
//   - Report: Classifications, held/contradicted lists, and summary.
//     Output order always matches input order.
//
// # Examples
//
//	report := reflection.Reflect(decision.Assumptions, decision.Outcome)
//	fmt.Println(report.Summary) // "1 assumptions held, 1 were contradicted."
func Reflect(assumptions []datatypes.Assumption, outcome *datatypes.Outcome) Report {
	outcomeText := ""
	if outcome != nil {
		outcomeText = outcome.Text
	}
	outcomeNormalized := normalize(outcomeText)

	report := Report{
		Assumptions:  make([]AssumptionResult, 0, len(assumptions)),
		HeldTrue:     []string{},
		Contradicted: []string{},
	}
	if outcome != nil {
		report.Outcome = &outcome.Text
	}

	for _, assumption := range assumptions {
		normalized := normalize(assumption.Text)
		held := normalized != "" && strings.Contains(outcomeNormalized, normalized)

		report.Assumptions = append(report.Assumptions, AssumptionResult{
			Assumption: assumption.Text,
			Held:       held,
		})
		if held {
			report.HeldTrue = append(report.HeldTrue, assumption.Text)
		} else {
			report.Contradicted = append(report.Contradicted, assumption.Text)
		}
	}

	switch {
	case outcome == nil:
		report.Summary = summaryNoOutcome
	case len(assumptions) == 0:
		report.Summary = summaryNoAssumptions
	default:
		report.Summary = fmt.Sprintf("%d assumptions held, %d were contradicted.",
			len(report.HeldTrue), len(report.Contradicted))
	}

	return report
}
