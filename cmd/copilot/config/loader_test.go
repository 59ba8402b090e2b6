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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_CreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "copilot.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 12310, cfg.Server.Port)
	assert.Equal(t, "copilot.db", cfg.Storage.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.FileExists(t, path)

	// Second load reads the created file.
	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoad_ParsesFileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "copilot.yaml")
	content := `
server:
  host: 127.0.0.1
  port: 9000
storage:
  path: /data/copilot.db
model_backend:
  type: ollama
  model: llama3.1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "/data/copilot.db", cfg.Storage.Path)
	assert.Equal(t, "ollama", cfg.ModelBackend.Type)
	// Unset sections keep their defaults.
	assert.Equal(t, "copilot-journal", cfg.Journal.Path)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "copilot.yaml")
	t.Setenv("COPILOT_PORT", "8123")
	t.Setenv("MODEL_BACKEND", "openai")
	t.Setenv("COPILOT_DB_PATH", "/tmp/override.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8123, cfg.Server.Port)
	assert.Equal(t, "openai", cfg.ModelBackend.Type)
	assert.Equal(t, "/tmp/override.db", cfg.Storage.Path)
}

func TestLoad_RejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "copilot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0644))

	_, err := Load(path)
	require.Error(t, err)
}
