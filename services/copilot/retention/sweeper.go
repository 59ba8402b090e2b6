// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AleutianAI/DecisionCopilot/services/copilot/observability"
	"github.com/AleutianAI/DecisionCopilot/services/copilot/storage"
)

// RetentionDays is the retention horizon: concerns strictly older than
// this many days are purged.
const RetentionDays = 60

// Sweeper deletes premortem concerns past the retention horizon.
//
// # Description
//
// Each sweep deletes every concern whose creation timestamp is strictly
// older than now minus RetentionDays, together with its actions, in one
// transaction. The sweep is idempotent: a second call with the same clock
// value deletes nothing.
//
// # Thread Safety
//
// Safe for concurrent use; all state lives in the store.
type Sweeper struct {
	store storage.Store
	clock ClockChecker
}

// NewSweeper creates a sweeper over the given store.
//
// # Inputs
//
//   - store: Entity store holding the concerns.
//   - clock: Guarded clock for the service-path sweep. Pass
//     NewClockChecker() in production; a fixed clock in tests.
func NewSweeper(store storage.Store, clock ClockChecker) *Sweeper {
	return &Sweeper{store: store, clock: clock}
}

// Sweep deletes concerns created strictly before now − RetentionDays.
//
// # Inputs
//
//   - ctx: Request context.
//   - now: The reference instant for the horizon computation.
//
// # Outputs
//
//   - int: Number of concerns deleted.
//   - error: Non-nil on store failure; in that case nothing was deleted
//     (the delete is transactional).
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.AddDate(0, 0, -RetentionDays)

	deleted, err := s.store.DeleteConcernsOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("retention sweep failed: %w", err)
	}

	observability.RecordSweep(deleted)
	if deleted > 0 {
		slog.Info("retention sweep purged expired concerns",
			"deleted", deleted,
			"cutoff", cutoff.Format(time.RFC3339),
		)
	}
	return deleted, nil
}

// SweepNow runs Sweep against the guarded clock.
//
// # Description
//
// This is the entry point used at process startup and before each new
// concern is accepted. A failed clock sanity check aborts the sweep
// rather than risking a premature purge.
func (s *Sweeper) SweepNow(ctx context.Context) (int, error) {
	now, err := s.clock.Now()
	if err != nil {
		return 0, fmt.Errorf("retention sweep aborted: %w", err)
	}
	return s.Sweep(ctx, now)
}
