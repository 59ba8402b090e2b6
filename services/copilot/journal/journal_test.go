// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package journal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJournal(t *testing.T) Journal {
	t.Helper()
	j, err := New(InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestAppendAssignsIDAndTimestamp(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	err := j.Append(ctx, Event{
		ConcernID:  "concern-1",
		Provenance: "deterministic-fallback",
		DurationMs: 12,
	})
	require.NoError(t, err)

	events, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.NotEmpty(t, events[0].ID)
	assert.False(t, events[0].CreatedAt.IsZero())
	assert.Equal(t, "concern-1", events[0].ConcernID)
}

func TestRecentReturnsNewestFirst(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		err := j.Append(ctx, Event{
			ID:         string(rune('a' + i)),
			ConcernID:  "concern-1",
			Provenance: "llm:gpt-4o-mini",
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	events, err := j.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "e", events[0].ID)
	assert.Equal(t, "d", events[1].ID)
	assert.Equal(t, "c", events[2].ID)
}

func TestRecentBounds(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	events, err := j.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, events)

	require.NoError(t, j.Append(ctx, Event{ConcernID: "c1", Provenance: "deterministic-fallback"}))

	events, err = j.Recent(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestEventRoundTripPreservesFallbackReason(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.Append(ctx, Event{
		ConcernID:      "c1",
		Provenance:     "deterministic-fallback",
		Model:          "gpt-4o-mini",
		FallbackReason: "provider returned invalid JSON",
		DurationMs:     250,
	}))

	events, err := j.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "provider returned invalid JSON", events[0].FallbackReason)
	assert.Equal(t, "gpt-4o-mini", events[0].Model)
	assert.Equal(t, int64(250), events[0].DurationMs)
}
