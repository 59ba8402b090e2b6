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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/DecisionCopilot/services/copilot/datatypes"
)

func testConcern(severity, impactLevel string) datatypes.PremortemConcern {
	return datatypes.PremortemConcern{
		ID:             "concern-1",
		UserID:         "user-1",
		InitiativeName: "Checkout redesign",
		ConcernText:    "The new flow may confuse returning customers.",
		Severity:       severity,
		ImpactLevel:    impactLevel,
	}
}

func TestActionCountPolicy(t *testing.T) {
	tests := []struct {
		severity    string
		impactLevel string
		want        int
	}{
		{"low", "low", 1},
		{"medium", "medium", 1},
		{"high", "low", 2},
		{"low", "high", 2},
		{"high", "high", 2},
	}
	for _, tt := range tests {
		got := actionCountFor(tt.severity, tt.impactLevel)
		assert.Equal(t, tt.want, got, "severity=%s impact=%s", tt.severity, tt.impactLevel)
	}
}

func TestDeterministic_ScoreGrid(t *testing.T) {
	gen := NewDeterministicGenerator()
	ctx := context.Background()

	tests := []struct {
		name           string
		severity       string
		impactLevel    string
		count          int
		wantImpact     int
		wantConfidence int
	}{
		{"low-low", "low", "low", 1, 5, 6},
		{"medium-medium", "medium", "medium", 1, 7, 7},
		{"high-low", "high", "low", 2, 7, 8},
		{"high-high", "high", "high", 2, 10, 8},
		{"low-high", "low", "high", 2, 8, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := gen.Generate(ctx, testConcern(tt.severity, tt.impactLevel), tt.count)
			require.False(t, result.Failed())
			require.Len(t, result.Actions, tt.count)
			assert.Equal(t, ProvenanceDeterministic, result.Provenance)

			first := result.Actions[0]
			assert.Equal(t, tt.wantImpact, first.ImpactScore)
			assert.Equal(t, tt.wantConfidence, first.ConfidenceScore)
			assert.Equal(t, 5, first.DueInDays)
			assert.Equal(t, 3, first.EffortScore)
			assert.Equal(t, "Product Manager", first.OwnerRole)

			if tt.count == 2 {
				second := result.Actions[1]
				wantSecondConfidence := tt.wantConfidence - 1
				if wantSecondConfidence < 5 {
					wantSecondConfidence = 5
				}
				wantSecondImpact := tt.wantImpact + 1
				if wantSecondImpact > 10 {
					wantSecondImpact = 10
				}
				assert.Equal(t, wantSecondImpact, second.ImpactScore)
				assert.Equal(t, wantSecondConfidence, second.ConfidenceScore)
				assert.Equal(t, HorizonDays, second.DueInDays)
				assert.Equal(t, 5, second.EffortScore)
				assert.Equal(t, "Engineering Lead", second.OwnerRole)
			}
		})
	}
}

func TestDeterministic_Reproducible(t *testing.T) {
	gen := NewDeterministicGenerator()
	concern := testConcern("high", "medium")

	first := gen.Generate(context.Background(), concern, 2)
	second := gen.Generate(context.Background(), concern, 2)
	assert.Equal(t, first, second)
}

func TestDeterministic_AllActionsComplete(t *testing.T) {
	gen := NewDeterministicGenerator()
	result := gen.Generate(context.Background(), testConcern("high", "high"), 2)

	for _, a := range result.Actions {
		assert.NotEmpty(t, a.Title)
		assert.NotEmpty(t, a.Description)
		assert.NotEmpty(t, a.OwnerRole)
		assert.NotEmpty(t, a.LeadingIndicator)
		assert.GreaterOrEqual(t, a.DueInDays, minDueInDays)
		assert.LessOrEqual(t, a.DueInDays, maxDueInDays)
		for _, score := range []int{a.EffortScore, a.ConfidenceScore, a.ImpactScore} {
			assert.GreaterOrEqual(t, score, minScore)
			assert.LessOrEqual(t, score, maxScore)
		}
	}
}

func TestClampAction(t *testing.T) {
	a := CandidateAction{
		Title:            "  Do the thing  ",
		Description:      "desc",
		OwnerRole:        "PM",
		DueInDays:        30,
		EffortScore:      0,
		ConfidenceScore:  15,
		ImpactScore:      -3,
		LeadingIndicator: "signal",
	}
	clampAction(&a)

	assert.Equal(t, "Do the thing", a.Title)
	assert.Equal(t, 14, a.DueInDays)
	assert.Equal(t, 1, a.EffortScore)
	assert.Equal(t, 10, a.ConfidenceScore)
	assert.Equal(t, 1, a.ImpactScore)
}
