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
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/AleutianAI/DecisionCopilot/services/copilot/datatypes"
	"github.com/AleutianAI/DecisionCopilot/services/llm"
)

// defaultProviderTimeout bounds a single provider call. One attempt,
// no retries: any failure sends the request to the deterministic path.
const defaultProviderTimeout = 20 * time.Second

// DelegatedGenerator asks a configured LLM provider for the plan.
//
// Every failure mode (transport error, timeout, unparseable output,
// empty action list, missing required field) is reported as a failed
// Result so the caller falls back; this generator never aborts a
// request.
type DelegatedGenerator struct {
	client  llm.LLMClient
	timeout time.Duration
}

var _ ActionGenerator = (*DelegatedGenerator)(nil)

// NewDelegatedGenerator wraps an LLM client as an ActionGenerator.
// A zero timeout selects the default.
func NewDelegatedGenerator(client llm.LLMClient, timeout time.Duration) *DelegatedGenerator {
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}
	return &DelegatedGenerator{client: client, timeout: timeout}
}

// providerAction mirrors one element of the provider's required output
// schema. Numeric fields are pointers so an absent field (fallback) is
// distinguishable from an out-of-range zero (clamped to the minimum).
type providerAction struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	OwnerRole        string `json:"owner_role"`
	DueInDays        *int   `json:"due_in_days"`
	EffortScore      *int   `json:"effort_score"`
	ConfidenceScore  *int   `json:"confidence_score"`
	ImpactScore      *int   `json:"impact_score"`
	LeadingIndicator string `json:"leading_indicator"`
}

// missingField reports which required field the provider omitted, or
// "" when all are present.
func (a providerAction) missingField() string {
	switch {
	case strings.TrimSpace(a.Title) == "":
		return "title"
	case strings.TrimSpace(a.Description) == "":
		return "description"
	case strings.TrimSpace(a.OwnerRole) == "":
		return "owner_role"
	case a.DueInDays == nil:
		return "due_in_days"
	case a.EffortScore == nil:
		return "effort_score"
	case a.ConfidenceScore == nil:
		return "confidence_score"
	case a.ImpactScore == nil:
		return "impact_score"
	case strings.TrimSpace(a.LeadingIndicator) == "":
		return "leading_indicator"
	}
	return ""
}

type providerPlan struct {
	Actions []providerAction `json:"actions"`
}

// Generate makes a single bounded call to the provider and validates
// the structured response.
func (g *DelegatedGenerator) Generate(ctx context.Context, concern datatypes.PremortemConcern, actionCount int) Result {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	raw, err := g.client.Generate(callCtx, buildPlanPrompt(concern, actionCount), llm.GenerationParams{})
	if err != nil {
		return Result{FailureReason: fmt.Sprintf("provider call failed: %v", err)}
	}

	plan, reason := parseProviderPlan(raw)
	if reason != "" {
		return Result{FailureReason: reason}
	}

	actions := make([]CandidateAction, 0, len(plan.Actions))
	for i, pa := range plan.Actions {
		if field := pa.missingField(); field != "" {
			return Result{FailureReason: fmt.Sprintf("provider action %d missing required field %q", i, field)}
		}
		actions = append(actions, CandidateAction{
			Title:            pa.Title,
			Description:      pa.Description,
			OwnerRole:        pa.OwnerRole,
			DueInDays:        *pa.DueInDays,
			EffortScore:      *pa.EffortScore,
			ConfidenceScore:  *pa.ConfidenceScore,
			ImpactScore:      *pa.ImpactScore,
			LeadingIndicator: pa.LeadingIndicator,
		})
	}

	if len(actions) > 2 {
		actions = actions[:2]
	}
	if len(actions) > actionCount {
		actions = actions[:actionCount]
	}
	if len(actions) < actionCount {
		return Result{FailureReason: fmt.Sprintf("provider returned %d actions, plan requires %d", len(actions), actionCount)}
	}

	return Result{
		Actions:    actions,
		Provenance: "llm:" + g.client.Model(),
	}
}

// parseProviderPlan extracts the JSON plan from raw provider output.
// Providers occasionally wrap JSON in prose or code fences; anything
// that still fails to parse is a fallback, not an error.
func parseProviderPlan(raw string) (providerPlan, string) {
	text := strings.TrimSpace(raw)
	if start := strings.Index(text, "{"); start > 0 {
		text = text[start:]
	}
	if end := strings.LastIndex(text, "}"); end >= 0 && end < len(text)-1 {
		text = text[:end+1]
	}

	var plan providerPlan
	if err := json.Unmarshal([]byte(text), &plan); err != nil {
		return providerPlan{}, fmt.Sprintf("provider returned invalid JSON: %v", err)
	}
	if len(plan.Actions) == 0 {
		return providerPlan{}, "provider returned an empty action list"
	}
	return plan, ""
}

// buildPlanPrompt renders the structured prompt: concern fields, the
// exact output schema, and hard instruction constraints.
func buildPlanPrompt(concern datatypes.PremortemConcern, actionCount int) string {
	var b strings.Builder
	b.WriteString("You are a risk-mitigation planner. Given a premortem concern, produce concrete mitigation actions.\n\n")
	b.WriteString("Concern:\n")
	fmt.Fprintf(&b, "- initiative: %s\n", concern.InitiativeName)
	fmt.Fprintf(&b, "- concern: %s\n", concern.ConcernText)
	if concern.ObservedSignals != "" {
		fmt.Fprintf(&b, "- observed signals: %s\n", concern.ObservedSignals)
	}
	fmt.Fprintf(&b, "- severity: %s\n", concern.Severity)
	fmt.Fprintf(&b, "- impact level: %s\n\n", concern.ImpactLevel)
	fmt.Fprintf(&b, "Return exactly %d action(s) as strict JSON, no prose, no code fences:\n", actionCount)
	b.WriteString(`{"actions":[{"title":"...","description":"...","owner_role":"...",` +
		`"due_in_days":1,"effort_score":1,"confidence_score":1,"impact_score":1,` +
		`"leading_indicator":"..."}]}` + "\n\n")
	b.WriteString("Constraints: due_in_days is an integer 1-14; effort_score, confidence_score ")
	b.WriteString("and impact_score are integers 1-10; every field is required and non-empty.\n")
	return b.String()
}
