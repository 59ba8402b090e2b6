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
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/DecisionCopilot/cmd/copilot/config"
	"github.com/AleutianAI/DecisionCopilot/pkg/logging"
	"github.com/AleutianAI/DecisionCopilot/services/copilot"
)

// runServe loads configuration, initializes logging, and runs the
// HTTP server until it stops.
func runServe(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.Logging.Level),
		Service: "copilot",
		JSON:    true,
	})
	defer func() { _ = logger.Close() }()
	slog.SetDefault(logger.Slog())

	svcCfg := copilot.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		DBPath:       cfg.Storage.Path,
		JournalPath:  cfg.Journal.Path,
		LLMBackend:   cfg.ModelBackend.Type,
		OTelEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	slog.Info("Starting copilot",
		"host", svcCfg.Host,
		"port", svcCfg.Port,
		"db_path", svcCfg.DBPath,
		"model_backend", svcCfg.LLMBackend,
	)

	svc, err := copilot.New(svcCfg, nil)
	if err != nil {
		log.Fatalf("Failed to create copilot service: %v", err)
	}

	if err := svc.Run(); err != nil {
		log.Fatalf("Copilot server error: %v", err)
	}
}
