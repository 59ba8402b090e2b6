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
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/DecisionCopilot/services/copilot/storage"
)

// respondStoreError maps a store error onto the HTTP response: a
// missing entity becomes 404, everything else 500. The entity name
// feeds the 404 message ("decision not found").
func respondStoreError(c *gin.Context, span trace.Span, err error, entity string) {
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": entity + " not found"})
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	slog.Error("Store operation failed", "entity", entity, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
