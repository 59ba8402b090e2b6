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
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/DecisionCopilot/services/copilot/journal"
)

// defaultProvenanceLimit caps the journal read when no limit is given.
const defaultProvenanceLimit = 20

// maxProvenanceLimit is the hard ceiling for a single read.
const maxProvenanceLimit = 200

// HandleRecentProvenance returns recent plan-generation events, newest
// first.
//
// GET /v1/provenance/recent?limit=n
func HandleRecentProvenance(jrnl journal.Journal) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := defaultProvenanceLimit
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
				return
			}
			limit = parsed
		}
		if limit > maxProvenanceLimit {
			limit = maxProvenanceLimit
		}

		events, err := jrnl.Recent(c.Request.Context(), limit)
		if err != nil {
			slog.Error("Failed to read the provenance journal", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read provenance"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"events": events})
	}
}
