// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers contains the gin HTTP handlers for the copilot API.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/DecisionCopilot/services/copilot/datatypes"
	"github.com/AleutianAI/DecisionCopilot/services/copilot/observability"
	"github.com/AleutianAI/DecisionCopilot/services/copilot/reflection"
	"github.com/AleutianAI/DecisionCopilot/services/copilot/storage"
)

var decisionTracer = otel.Tracer("copilot.handlers.decisions")

// HandleCreateDecision creates a decision with its constraints.
//
// POST /v1/decisions
func HandleCreateDecision(store storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := decisionTracer.Start(c.Request.Context(), "HandleCreateDecision")
		defer span.End()

		var req datatypes.CreateDecisionRequest
		if err := c.BindJSON(&req); err != nil {
			slog.Error("Failed to parse the create-decision request", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		decision := req.ToDecision()
		if err := store.CreateDecision(ctx, decision); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to persist decision", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create decision"})
			return
		}
		c.JSON(http.StatusCreated, decision)
	}
}

// HandleListDecisions lists decision summaries, newest first.
//
// GET /v1/decisions
func HandleListDecisions(store storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := decisionTracer.Start(c.Request.Context(), "HandleListDecisions")
		defer span.End()

		summaries, err := store.ListDecisions(ctx)
		if err != nil {
			span.RecordError(err)
			slog.Error("Failed to list decisions", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list decisions"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"decisions": summaries})
	}
}

// HandleGetDecision returns one decision with constraints, assumptions,
// and outcome.
//
// GET /v1/decisions/:id
func HandleGetDecision(store storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := decisionTracer.Start(c.Request.Context(), "HandleGetDecision")
		defer span.End()

		decision, err := store.GetDecision(ctx, c.Param("id"))
		if err != nil {
			respondStoreError(c, span, err, "decision")
			return
		}
		c.JSON(http.StatusOK, decision)
	}
}

// HandleDeleteDecision deletes a decision and all its children.
//
// DELETE /v1/decisions/:id
func HandleDeleteDecision(store storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := decisionTracer.Start(c.Request.Context(), "HandleDeleteDecision")
		defer span.End()

		if err := store.DeleteDecision(ctx, c.Param("id")); err != nil {
			respondStoreError(c, span, err, "decision")
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// HandleAddAssumptions appends assumptions to a decision.
//
// POST /v1/decisions/:id/assumptions
func HandleAddAssumptions(store storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := decisionTracer.Start(c.Request.Context(), "HandleAddAssumptions")
		defer span.End()

		var req datatypes.AddAssumptionsRequest
		if err := c.BindJSON(&req); err != nil {
			slog.Error("Failed to parse the add-assumptions request", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		assumptions, err := store.AddAssumptions(ctx, c.Param("id"), req.Texts)
		if err != nil {
			respondStoreError(c, span, err, "decision")
			return
		}
		c.JSON(http.StatusCreated, gin.H{"assumptions": assumptions})
	}
}

// HandleUpsertOutcome creates or replaces the decision's outcome.
//
// PUT /v1/decisions/:id/outcome
func HandleUpsertOutcome(store storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := decisionTracer.Start(c.Request.Context(), "HandleUpsertOutcome")
		defer span.End()

		var req datatypes.UpsertOutcomeRequest
		if err := c.BindJSON(&req); err != nil {
			slog.Error("Failed to parse the upsert-outcome request", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		outcome, err := store.UpsertOutcome(ctx, c.Param("id"), req.Text)
		if err != nil {
			respondStoreError(c, span, err, "decision")
			return
		}
		c.JSON(http.StatusOK, outcome)
	}
}

// HandleGetReflection compares a decision's assumptions against its
// recorded outcome.
//
// GET /v1/decisions/:id/reflection
func HandleGetReflection(store storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := decisionTracer.Start(c.Request.Context(), "HandleGetReflection")
		defer span.End()

		decision, err := store.GetDecision(ctx, c.Param("id"))
		if err != nil {
			respondStoreError(c, span, err, "decision")
			return
		}

		report := reflection.Reflect(decision.Assumptions, decision.Outcome)
		observability.RecordReflection(report.Verdict())
		c.JSON(http.StatusOK, report)
	}
}
