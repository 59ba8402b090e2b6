// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/DecisionCopilot/services/copilot/datatypes"
	"github.com/AleutianAI/DecisionCopilot/services/copilot/storage"
	"github.com/AleutianAI/DecisionCopilot/services/copilot/storage/sqlite"
)

// =============================================================================
// Test Setup
// =============================================================================

func init() {
	// Set Gin to test mode to reduce noise in test output
	gin.SetMode(gin.TestMode)
}

func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// newDecisionRouter wires the decision routes the way routes.SetupRoutes
// does, without pulling the full service graph into the test.
func newDecisionRouter(store storage.Store) *gin.Engine {
	router := gin.New()
	router.POST("/v1/decisions", HandleCreateDecision(store))
	router.GET("/v1/decisions", HandleListDecisions(store))
	router.GET("/v1/decisions/:id", HandleGetDecision(store))
	router.DELETE("/v1/decisions/:id", HandleDeleteDecision(store))
	router.POST("/v1/decisions/:id/assumptions", HandleAddAssumptions(store))
	router.PUT("/v1/decisions/:id/outcome", HandleUpsertOutcome(store))
	router.GET("/v1/decisions/:id/reflection", HandleGetReflection(store))
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createTestDecision(t *testing.T, router *gin.Engine) datatypes.Decision {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/v1/decisions", gin.H{
		"date":        "2025-05-01",
		"title":       "Launch onboarding survey",
		"context":     "We want early signal on activation friction.",
		"constraints": []string{"Budget limited"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var decision datatypes.Decision
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decision))
	return decision
}

// =============================================================================
// Decision CRUD
// =============================================================================

func TestCreateDecision(t *testing.T) {
	router := newDecisionRouter(newTestStore(t))
	decision := createTestDecision(t, router)

	assert.NotEmpty(t, decision.ID)
	assert.Equal(t, "Launch onboarding survey", decision.Title)
	require.Len(t, decision.Constraints, 1)
	assert.Equal(t, "Budget limited", decision.Constraints[0].Text)
	assert.Empty(t, decision.Assumptions)
	assert.Nil(t, decision.Outcome)
}

func TestCreateDecision_Validation(t *testing.T) {
	router := newDecisionRouter(newTestStore(t))

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing title", gin.H{"date": "2025-05-01", "context": "ctx"}},
		{"bad date", gin.H{"date": "05/01/2025", "title": "t", "context": "ctx"}},
		{"missing context", gin.H{"date": "2025-05-01", "title": "t"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/v1/decisions", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestListDecisions(t *testing.T) {
	router := newDecisionRouter(newTestStore(t))
	createTestDecision(t, router)

	w := doJSON(t, router, http.MethodGet, "/v1/decisions", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Decisions []datatypes.DecisionSummary `json:"decisions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Decisions, 1)
	assert.Equal(t, 1, resp.Decisions[0].ConstraintCount)
}

func TestDeleteDecision(t *testing.T) {
	router := newDecisionRouter(newTestStore(t))
	decision := createTestDecision(t, router)

	w := doJSON(t, router, http.MethodDelete, "/v1/decisions/"+decision.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/v1/decisions/"+decision.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnknownDecisionIs404(t *testing.T) {
	router := newDecisionRouter(newTestStore(t))

	paths := []struct {
		method string
		path   string
		body   gin.H
	}{
		{http.MethodGet, "/v1/decisions/nope", nil},
		{http.MethodDelete, "/v1/decisions/nope", nil},
		{http.MethodPost, "/v1/decisions/nope/assumptions", gin.H{"texts": []string{"a"}}},
		{http.MethodPut, "/v1/decisions/nope/outcome", gin.H{"text": "done"}},
		{http.MethodGet, "/v1/decisions/nope/reflection", nil},
	}
	for _, tt := range paths {
		w := doJSON(t, router, tt.method, tt.path, tt.body)
		assert.Equal(t, http.StatusNotFound, w.Code, "%s %s", tt.method, tt.path)
	}
}

// =============================================================================
// Assumptions, Outcome, Reflection
// =============================================================================

func TestAddAssumptionsAndReflect(t *testing.T) {
	router := newDecisionRouter(newTestStore(t))
	decision := createTestDecision(t, router)

	w := doJSON(t, router, http.MethodPost, "/v1/decisions/"+decision.ID+"/assumptions", gin.H{
		"texts": []string{
			"Users are willing to answer a 3-question survey",
			"Survey completion will increase activation rate",
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodPut, "/v1/decisions/"+decision.ID+"/outcome", gin.H{
		"text": "Users are willing to answer a 3-question survey, but activation rate stayed flat.",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/v1/decisions/"+decision.ID+"/reflection", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var report struct {
		HeldTrue     []string `json:"held_true"`
		Contradicted []string `json:"contradicted"`
		Summary      string   `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Len(t, report.HeldTrue, 1)
	assert.Len(t, report.Contradicted, 1)
	assert.Equal(t, "1 assumptions held, 1 were contradicted.", report.Summary)
}

func TestReflectionWithoutOutcome(t *testing.T) {
	router := newDecisionRouter(newTestStore(t))
	decision := createTestDecision(t, router)

	w := doJSON(t, router, http.MethodGet, "/v1/decisions/"+decision.ID+"/reflection", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No outcome recorded yet.")
}

func TestUpsertOutcomeReplaces(t *testing.T) {
	router := newDecisionRouter(newTestStore(t))
	decision := createTestDecision(t, router)

	w := doJSON(t, router, http.MethodPut, "/v1/decisions/"+decision.ID+"/outcome", gin.H{"text": "first"})
	require.Equal(t, http.StatusOK, w.Code)
	var first datatypes.Outcome
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))

	w = doJSON(t, router, http.MethodPut, "/v1/decisions/"+decision.ID+"/outcome", gin.H{"text": "second"})
	require.Equal(t, http.StatusOK, w.Code)
	var second datatypes.Outcome
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))

	assert.Equal(t, first.ID, second.ID, "outcome row id is stable across replaces")
	assert.Equal(t, "second", second.Text)
}

func TestAddAssumptions_EmptyListRejected(t *testing.T) {
	router := newDecisionRouter(newTestStore(t))
	decision := createTestDecision(t, router)

	w := doJSON(t, router, http.MethodPost, "/v1/decisions/"+decision.ID+"/assumptions", gin.H{
		"texts": []string{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
