// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the copilot CLI configuration.
//
// Configuration comes from a YAML file (created with defaults on first
// run) with environment-variable overrides applied on top, so container
// deployments can run without a config file at all.
package config

// CopilotConfig is the root configuration document.
type CopilotConfig struct {
	// Server: HTTP listen address
	Server ServerConfig `yaml:"server"`

	// Storage: SQLite entity store location
	Storage StorageConfig `yaml:"storage"`

	// Journal: BadgerDB provenance journal location
	Journal JournalConfig `yaml:"journal"`

	// ModelBackend: optional mitigation-generation provider
	ModelBackend BackendConfig `yaml:"model_backend"`

	// Logging: structured log verbosity
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	Host string `yaml:"host"` // e.g. 0.0.0.0
	Port int    `yaml:"port"` // e.g. 12310
}

type StorageConfig struct {
	Path string `yaml:"path"` // SQLite database file
}

type JournalConfig struct {
	Path string `yaml:"path"` // BadgerDB directory
}

type BackendConfig struct {
	// Type can be "openai", "claude", "anthropic", or "ollama".
	// Empty means no provider: plans take the deterministic path.
	Type    string `yaml:"type"`
	BaseURL string `yaml:"base_url,omitempty"`
	Model   string `yaml:"model,omitempty"`
}

type LoggingConfig struct {
	// Level can be "debug", "info", "warn", "error".
	Level string `yaml:"level"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() CopilotConfig {
	return CopilotConfig{
		Server:  ServerConfig{Host: "0.0.0.0", Port: 12310},
		Storage: StorageConfig{Path: "copilot.db"},
		Journal: JournalConfig{Path: "copilot-journal"},
		Logging: LoggingConfig{Level: "info"},
	}
}
