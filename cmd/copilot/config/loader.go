// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file location used when none is given.
const DefaultPath = "copilot.yaml"

// Load reads the config file at path, creating it with defaults on
// first run, then applies environment overrides.
//
// # Inputs
//
//   - path: Config file location; empty uses DefaultPath.
//
// # Outputs
//
//   - CopilotConfig: Merged file + environment configuration.
//   - error: Non-nil if the file cannot be created, read, or parsed.
func Load(path string) (CopilotConfig, error) {
	if path == "" {
		path = DefaultPath
	}

	// create it if it doesn't exist
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Printf("First run detected, creating the config at %s\n", path)
		if err := createDefault(path); err != nil {
			return CopilotConfig{}, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return CopilotConfig{}, fmt.Errorf("failed to read the config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return CopilotConfig{}, fmt.Errorf("failed to parse the config file: %w", err)
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// applyEnvOverrides layers environment variables over the file values.
//
// Recognized variables: COPILOT_HOST, COPILOT_PORT, COPILOT_DB_PATH,
// COPILOT_JOURNAL_PATH, MODEL_BACKEND, COPILOT_LOG_LEVEL.
func applyEnvOverrides(cfg *CopilotConfig) {
	if v := os.Getenv("COPILOT_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("COPILOT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("COPILOT_DB_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("COPILOT_JOURNAL_PATH"); v != "" {
		cfg.Journal.Path = v
	}
	if v := os.Getenv("MODEL_BACKEND"); v != "" {
		cfg.ModelBackend.Type = v
	}
	if v := os.Getenv("COPILOT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
