// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/DecisionCopilot/cmd/copilot/config"
	"github.com/AleutianAI/DecisionCopilot/services/copilot/retention"
	"github.com/AleutianAI/DecisionCopilot/services/copilot/storage/sqlite"
)

// runSweep runs one retention sweep against the configured store and
// prints how many concerns were purged.
func runSweep(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := sqlite.New(cfg.Storage.Path)
	if err != nil {
		log.Fatalf("Failed to open entity store: %v", err)
	}
	defer func() { _ = store.Close() }()

	sweeper := retention.NewSweeper(store, retention.NewClockChecker())
	deleted, err := sweeper.SweepNow(context.Background())
	if err != nil {
		log.Fatalf("Retention sweep failed: %v", err)
	}

	fmt.Printf("Retention sweep complete: %d concern(s) deleted (horizon %d days)\n",
		deleted, retention.RetentionDays)
}
