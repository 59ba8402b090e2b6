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
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/DecisionCopilot/services/copilot/datatypes"
	"github.com/AleutianAI/DecisionCopilot/services/copilot/planner"
	"github.com/AleutianAI/DecisionCopilot/services/copilot/storage"
)

var premortemTracer = otel.Tracer("copilot.handlers.premortem")

// HandleCreatePlan accepts a premortem concern and returns the
// generated mitigation plan.
//
// POST /v1/premortem/plans
//
// Validation failures are rejected before any store mutation: no user
// row and no concern row exist for a 400 response.
func HandleCreatePlan(p *planner.Planner) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := premortemTracer.Start(c.Request.Context(), "HandleCreatePlan")
		defer span.End()

		var req datatypes.CreatePlanRequest
		if err := c.BindJSON(&req); err != nil {
			slog.Error("Failed to parse the premortem plan request", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		req.EnsureDefaults()
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		plan, err := p.Plan(ctx, req)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Plan generation failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate plan"})
			return
		}
		c.JSON(http.StatusCreated, plan)
	}
}

// HandleGetConcern returns a concern with its actions.
//
// GET /v1/premortem/concerns/:id
//
// A concern purged by the retention sweep is indistinguishable from one
// that never existed: both are 404.
func HandleGetConcern(store storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := premortemTracer.Start(c.Request.Context(), "HandleGetConcern")
		defer span.End()

		concern, err := store.GetConcern(ctx, c.Param("id"))
		if err != nil {
			respondStoreError(c, span, err, "concern")
			return
		}
		c.JSON(http.StatusOK, concern)
	}
}
