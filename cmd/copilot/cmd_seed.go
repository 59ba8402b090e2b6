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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/DecisionCopilot/cmd/copilot/config"
	"github.com/AleutianAI/DecisionCopilot/services/copilot/datatypes"
	"github.com/AleutianAI/DecisionCopilot/services/copilot/reflection"
	"github.com/AleutianAI/DecisionCopilot/services/copilot/storage"
	"github.com/AleutianAI/DecisionCopilot/services/copilot/storage/sqlite"
)

// seedDecision is one demo scenario: a decision with its assumptions
// and the eventually observed outcome.
type seedDecision struct {
	title       string
	context     string
	constraints []string
	assumptions []string
	outcome     string
}

// seedData are the demo scenarios: one decision whose assumptions split
// held/contradicted, one where both held.
var seedData = []seedDecision{
	{
		title:       "Launch onboarding survey",
		context:     "We need better insight into activation drop-off during onboarding.",
		constraints: []string{"Budget limited"},
		assumptions: []string{
			"Users are willing to answer a 3-question survey",
			"Survey completion will increase activation rate",
		},
		outcome: "Users are willing to answer a 3-question survey, but activation rate stayed flat.",
	},
	{
		title:       "Reduce pricing tiers",
		context:     "We suspect too many tiers are confusing prospects.",
		constraints: []string{"Budget limited"},
		assumptions: []string{
			"Simpler tiers increase trial conversion",
			"Sales team will need fewer custom quotes",
		},
		outcome: "Simpler tiers increase trial conversion and reduce custom quote requests.",
	},
}

// runSeed populates the sample scenarios, either directly into the
// local database or through a running server when --url is given, and
// prints each decision's reflection.
func runSeed(cmd *cobra.Command, args []string) {
	if seedURL != "" {
		if err := seedViaServer(seedURL); err != nil {
			log.Fatalf("Failed to seed via server: %v", err)
		}
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	store, err := sqlite.New(cfg.Storage.Path)
	if err != nil {
		log.Fatalf("Failed to open entity store: %v", err)
	}
	defer func() { _ = store.Close() }()

	if err := seedStore(context.Background(), store); err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}
}

// seedStore writes the scenarios straight into the store.
func seedStore(ctx context.Context, store storage.Store) error {
	today := time.Now().Format("2006-01-02")

	for _, seed := range seedData {
		req := datatypes.CreateDecisionRequest{
			Date:        today,
			Title:       seed.title,
			Context:     seed.context,
			Constraints: seed.constraints,
		}
		decision := req.ToDecision()
		if err := store.CreateDecision(ctx, decision); err != nil {
			return fmt.Errorf("create decision %q: %w", seed.title, err)
		}

		assumptions, err := store.AddAssumptions(ctx, decision.ID, seed.assumptions)
		if err != nil {
			return fmt.Errorf("add assumptions to %q: %w", seed.title, err)
		}
		outcome, err := store.UpsertOutcome(ctx, decision.ID, seed.outcome)
		if err != nil {
			return fmt.Errorf("record outcome for %q: %w", seed.title, err)
		}

		report := reflection.Reflect(assumptions, outcome)
		fmt.Printf("Seeded %q (%s): %s\n", seed.title, decision.ID, report.Summary)
	}
	return nil
}

// seedViaServer replays the scenarios through the HTTP API, exercising
// the same surface clients use.
func seedViaServer(baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	today := time.Now().Format("2006-01-02")

	for _, seed := range seedData {
		var decision datatypes.Decision
		err := postJSON(client, baseURL+"/v1/decisions", map[string]any{
			"date":        today,
			"title":       seed.title,
			"context":     seed.context,
			"constraints": seed.constraints,
		}, &decision)
		if err != nil {
			return fmt.Errorf("create decision %q: %w", seed.title, err)
		}

		err = postJSON(client, baseURL+"/v1/decisions/"+decision.ID+"/assumptions",
			map[string]any{"texts": seed.assumptions}, nil)
		if err != nil {
			return fmt.Errorf("add assumptions to %q: %w", seed.title, err)
		}

		req, err := http.NewRequest(http.MethodPut,
			baseURL+"/v1/decisions/"+decision.ID+"/outcome",
			bytes.NewReader(mustJSON(map[string]any{"text": seed.outcome})))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("record outcome for %q: %w", seed.title, err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("record outcome for %q: unexpected status %d", seed.title, resp.StatusCode)
		}

		var report reflection.Report
		getResp, err := client.Get(baseURL + "/v1/decisions/" + decision.ID + "/reflection")
		if err != nil {
			return fmt.Errorf("fetch reflection for %q: %w", seed.title, err)
		}
		err = json.NewDecoder(getResp.Body).Decode(&report)
		_ = getResp.Body.Close()
		if err != nil {
			return fmt.Errorf("decode reflection for %q: %w", seed.title, err)
		}
		fmt.Printf("Seeded %q (%s): %s\n", seed.title, decision.ID, report.Summary)
	}
	return nil
}

func postJSON(client *http.Client, url string, body map[string]any, out any) error {
	resp, err := client.Post(url, "application/json", bytes.NewReader(mustJSON(body)))
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func mustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
