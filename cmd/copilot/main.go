// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command copilot runs the decision-copilot service and its admin tools.
//
// # Subcommands
//
//   - serve: start the HTTP server
//   - seed: populate sample decisions for local demos
//   - sweep: run a one-shot retention sweep
//
// # Environment Variables
//
//   - COPILOT_HOST / COPILOT_PORT: HTTP listen address
//   - COPILOT_DB_PATH: SQLite database path
//   - COPILOT_JOURNAL_PATH: BadgerDB provenance journal directory
//   - MODEL_BACKEND: mitigation provider - openai, claude, ollama (optional)
//   - OPENAI_API_KEY / ANTHROPIC_API_KEY / OLLAMA_BASE_URL: provider access
//   - COPILOT_LOG_LEVEL: debug, info, warn, error
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OpenTelemetry collector (optional)
//
// # Usage
//
//	# Build
//	go build -o copilot ./cmd/copilot
//
//	# Run
//	./copilot serve
package main

import (
	"log"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}
