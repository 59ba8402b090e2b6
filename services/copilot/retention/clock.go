// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package retention purges premortem concerns past the retention horizon.
//
// The sweep is deliberately not a background timer: it runs at defined
// lifecycle points (process startup and before each new concern is
// accepted) so a long-idle deployment self-heals its stored state before
// serving new writes, and the "sweep before use" ordering is guaranteed.
package retention

import (
	"fmt"
	"sync"
	"time"
)

// ClockChecker supplies the current time after a sanity check.
//
// # Description
//
// Retention deletes data based on wall-clock age. If the system clock is
// set to the future, concerns are purged prematurely (data loss); set to
// the past, they never expire. The checker validates the clock against
// configured bounds before any time-sensitive operation uses it.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use.
type ClockChecker interface {
	// Now returns the current time if the clock passes the sanity check.
	//
	// # Outputs
	//
	//   - time.Time: Current time in UTC.
	//   - error: Non-nil if the clock appears invalid; callers must not
	//     run retention deletes in that case.
	Now() (time.Time, error)
}

// ClockConfig bounds the acceptable system time.
//
// # Fields
//
//   - MinValidTime: Earliest acceptable time.
//   - MaxValidTime: Latest acceptable time.
type ClockConfig struct {
	MinValidTime time.Time
	MaxValidTime time.Time
}

// DefaultClockConfig returns bounds suitable for production use:
// 2025-01-01 through 2035-12-31.
func DefaultClockConfig() ClockConfig {
	return ClockConfig{
		MinValidTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		MaxValidTime: time.Date(2035, 12, 31, 23, 59, 59, 0, time.UTC),
	}
}

// clockChecker implements ClockChecker with bounds validation.
type clockChecker struct {
	config ClockConfig
	mu     sync.Mutex
}

// NewClockChecker creates a clock checker with default bounds.
func NewClockChecker() ClockChecker {
	return NewClockCheckerWithConfig(DefaultClockConfig())
}

// NewClockCheckerWithConfig creates a clock checker with custom bounds.
func NewClockCheckerWithConfig(config ClockConfig) ClockChecker {
	return &clockChecker{config: config}
}

// Now validates the system clock and returns the current UTC time.
func (c *clockChecker) Now() (time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UTC()

	if now.Before(c.config.MinValidTime) {
		return time.Time{}, fmt.Errorf(
			"clock sanity: time %v is before minimum valid time %v (possible clock set to past)",
			now.Format(time.RFC3339), c.config.MinValidTime.Format(time.RFC3339))
	}
	if now.After(c.config.MaxValidTime) {
		return time.Time{}, fmt.Errorf(
			"clock sanity: time %v is after maximum valid time %v (possible clock set to future)",
			now.Format(time.RFC3339), c.config.MaxValidTime.Format(time.RFC3339))
	}

	return now, nil
}

// =============================================================================
// Fixed Clock (for testing)
// =============================================================================

// fixedClock always reports the same instant and never fails.
type fixedClock struct {
	now time.Time
}

// NewFixedClock returns a ClockChecker pinned to the given instant.
//
// Use in tests where sweep boundaries depend on an exact "now".
func NewFixedClock(now time.Time) ClockChecker {
	return &fixedClock{now: now.UTC()}
}

// Now returns the pinned instant.
func (f *fixedClock) Now() (time.Time, error) {
	return f.now, nil
}
