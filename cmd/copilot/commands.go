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
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	configPath string
	seedURL    string

	rootCmd = &cobra.Command{
		Use:   "copilot",
		Short: "A decision copilot: log decisions, reflect on outcomes, premortem your risks",
		Long: `Copilot records product decisions with their assumptions and outcomes,
compares assumptions against what actually happened, and turns premortem
concerns into concrete mitigation plans.`,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the copilot HTTP server",
		Run:   runServe, // Defined in cmd_serve.go
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Populate sample decisions, assumptions, and outcomes for a local demo",
		Run:   runSeed, // Defined in cmd_seed.go
	}

	sweepCmd = &cobra.Command{
		Use:   "sweep",
		Short: "Run a one-shot retention sweep and print the deleted count",
		Run:   runSweep, // Defined in cmd_sweep.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to the config file (default copilot.yaml, created on first run)")
	seedCmd.Flags().StringVar(&seedURL, "url", "",
		"Seed through a running server instead of the local database (e.g. http://127.0.0.1:12310)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(sweepCmd)
}
