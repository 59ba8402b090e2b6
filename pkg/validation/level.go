// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation utilities for security-critical operations.
//
// This package contains validators for user-provided inputs that are used in
// database queries and prompt construction. Using these validators prevents
// injection attacks and keeps enumerated fields inside their closed sets.
package validation

import (
	"fmt"
	"strings"
)

// Level values accepted for premortem severity and impact fields.
const (
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

// allowedLevels is the closed set of severity/impact levels.
// Anything outside this set is rejected before it reaches storage or a prompt.
var allowedLevels = map[string]struct{}{
	LevelLow:    {},
	LevelMedium: {},
	LevelHigh:   {},
}

// ValidateLevel validates a severity or impact level.
//
// Valid levels:
//   - "low"
//   - "medium"
//   - "high"
//
// The check is exact: callers that accept mixed-case input should normalize
// with SanitizeLevel first.
//
// Returns an error if the level is invalid.
//
// Example:
//
//	if err := validation.ValidateLevel(severity); err != nil {
//	    return nil, fmt.Errorf("invalid severity: %w", err)
//	}
//	// Safe to use in a query or prompt
func ValidateLevel(level string) error {
	if level == "" {
		return fmt.Errorf("level cannot be empty")
	}

	if _, ok := allowedLevels[level]; !ok {
		return fmt.Errorf("invalid level: %q (must be one of low, medium, high)", level)
	}

	return nil
}

// ValidateLevels validates multiple severity/impact levels.
// Returns an error listing all invalid levels if any fail validation.
func ValidateLevels(levels []string) error {
	var invalid []string
	for _, l := range levels {
		if err := ValidateLevel(l); err != nil {
			invalid = append(invalid, l)
		}
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid levels: %v", invalid)
	}
	return nil
}

// SanitizeLevel normalizes and validates a severity/impact level.
// Returns the lowercase level if valid, or an error if invalid.
//
// Use this when you need both validation and normalization:
//
//	safeLevel, err := validation.SanitizeLevel(userInput)
//	if err != nil {
//	    return err
//	}
//	// safeLevel is lowercase and validated
func SanitizeLevel(level string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(level))
	if err := ValidateLevel(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}

// IsHigh reports whether a level, after normalization, is "high".
// Unrecognized values are never high.
func IsHigh(level string) bool {
	return strings.ToLower(strings.TrimSpace(level)) == LevelHigh
}
