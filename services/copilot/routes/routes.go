// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AleutianAI/DecisionCopilot/services/copilot/handlers"
	"github.com/AleutianAI/DecisionCopilot/services/copilot/journal"
	"github.com/AleutianAI/DecisionCopilot/services/copilot/planner"
	"github.com/AleutianAI/DecisionCopilot/services/copilot/storage"
)

// SetupRoutes registers the full copilot API surface.
func SetupRoutes(router *gin.Engine, store storage.Store, p *planner.Planner,
	jrnl journal.Journal, version string) {

	router.GET("/health", handlers.HandleHealth(store, version))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version 1 group
	v1 := router.Group("/v1")
	{
		decisions := v1.Group("/decisions")
		{
			decisions.POST("", handlers.HandleCreateDecision(store))
			decisions.GET("", handlers.HandleListDecisions(store))
			decisions.GET("/:id", handlers.HandleGetDecision(store))
			decisions.DELETE("/:id", handlers.HandleDeleteDecision(store))
			decisions.POST("/:id/assumptions", handlers.HandleAddAssumptions(store))
			decisions.PUT("/:id/outcome", handlers.HandleUpsertOutcome(store))
			decisions.GET("/:id/reflection", handlers.HandleGetReflection(store))
		}

		premortem := v1.Group("/premortem")
		{
			premortem.POST("/plans", handlers.HandleCreatePlan(p))
			premortem.GET("/concerns/:id", handlers.HandleGetConcern(store))
		}

		v1.GET("/provenance/recent", handlers.HandleRecentProvenance(jrnl))
	}
}
