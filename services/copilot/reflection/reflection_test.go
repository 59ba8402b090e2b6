// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package reflection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/DecisionCopilot/services/copilot/datatypes"
)

func assumptionsOf(texts ...string) []datatypes.Assumption {
	out := make([]datatypes.Assumption, len(texts))
	for i, text := range texts {
		out[i] = datatypes.Assumption{ID: datatypes.NewID(), Text: text}
	}
	return out
}

func outcomeOf(text string) *datatypes.Outcome {
	return &datatypes.Outcome{ID: datatypes.NewID(), Text: text}
}

// TestReflect_OnboardingSurveyScenario is the canonical scenario: one
// assumption contained in the outcome, one not.
func TestReflect_OnboardingSurveyScenario(t *testing.T) {
	assumptions := assumptionsOf(
		"Users are willing to answer a 3-question survey",
		"Survey completion will increase activation rate",
	)
	outcome := outcomeOf(
		"Users are willing to answer a 3-question survey, but activation rate stayed flat.")

	report := Reflect(assumptions, outcome)

	require.Len(t, report.Assumptions, 2)
	assert.True(t, report.Assumptions[0].Held)
	assert.False(t, report.Assumptions[1].Held)
	assert.Equal(t, []string{"Users are willing to answer a 3-question survey"}, report.HeldTrue)
	assert.Equal(t, []string{"Survey completion will increase activation rate"}, report.Contradicted)
	assert.Equal(t, "1 assumptions held, 1 were contradicted.", report.Summary)
}

func TestReflect_CaseAndWhitespaceInsensitive(t *testing.T) {
	tests := []struct {
		name       string
		assumption string
		outcome    string
		wantHeld   bool
	}{
		{"exact match", "simpler tiers increase trial conversion",
			"Simpler tiers increase trial conversion and reduce custom quote requests.", true},
		{"uppercase assumption", "SIMPLER TIERS INCREASE TRIAL CONVERSION",
			"simpler tiers increase trial conversion", true},
		{"padded assumption", "   simpler tiers increase trial conversion   ",
			"Simpler tiers increase trial conversion.", true},
		{"padded outcome", "simpler tiers",
			"   SIMPLER TIERS   ", true},
		{"not contained", "sales team will need fewer custom quotes",
			"Simpler tiers increase trial conversion.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Reflect(assumptionsOf(tt.assumption), outcomeOf(tt.outcome))
			require.Len(t, report.Assumptions, 1)
			assert.Equal(t, tt.wantHeld, report.Assumptions[0].Held)
		})
	}
}

// TestReflect_EmptyAssumptionNeverHeld covers the non-empty guard: an
// empty string is a substring of everything, but must not count as held.
func TestReflect_EmptyAssumptionNeverHeld(t *testing.T) {
	report := Reflect(assumptionsOf("", "   "), outcomeOf("anything at all"))

	require.Len(t, report.Assumptions, 2)
	assert.False(t, report.Assumptions[0].Held)
	assert.False(t, report.Assumptions[1].Held)
	assert.Len(t, report.Contradicted, 2)
}

func TestReflect_NoOutcome(t *testing.T) {
	report := Reflect(assumptionsOf("anything"), nil)

	assert.Nil(t, report.Outcome)
	assert.Equal(t,
		"No outcome recorded yet. Add an outcome to compare assumptions.",
		report.Summary)

	// Lists are still computed for consistency.
	assert.Empty(t, report.HeldTrue)
	assert.Equal(t, []string{"anything"}, report.Contradicted)
}

func TestReflect_OutcomeWithoutAssumptions(t *testing.T) {
	report := Reflect(nil, outcomeOf("shipped on time"))

	assert.Equal(t, "Outcome recorded, but no assumptions were logged.", report.Summary)
	assert.Empty(t, report.Assumptions)
	assert.Empty(t, report.HeldTrue)
	assert.Empty(t, report.Contradicted)
}

// TestReflect_PreservesInputOrder verifies output order matches the
// insertion order of the assumptions.
func TestReflect_PreservesInputOrder(t *testing.T) {
	assumptions := assumptionsOf("charlie", "alpha", "bravo")
	report := Reflect(assumptions, outcomeOf("alpha and bravo happened"))

	require.Len(t, report.Assumptions, 3)
	assert.Equal(t, "charlie", report.Assumptions[0].Assumption)
	assert.Equal(t, "alpha", report.Assumptions[1].Assumption)
	assert.Equal(t, "bravo", report.Assumptions[2].Assumption)
	assert.Equal(t, []string{"alpha", "bravo"}, report.HeldTrue)
	assert.Equal(t, []string{"charlie"}, report.Contradicted)
	assert.Equal(t, "2 assumptions held, 1 were contradicted.", report.Summary)
}
