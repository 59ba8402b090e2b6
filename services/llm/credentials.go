// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// This file implements guarded storage for provider API keys. Keys are
// sealed into a memguard enclave at load time so they never sit in plain
// process memory between requests, and are opened only for the duration
// of building a provider request.
package llm

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/awnumar/memguard"
)

// Credential holds a provider API key in an encrypted memguard enclave.
//
// # Description
//
// The key is read once from an environment variable or a mounted secret
// file and sealed immediately. Expose decrypts it into an mlocked buffer
// for the duration of one callback, wiping the buffer afterwards.
//
// # Thread Safety
//
// Safe for concurrent use; memguard enclaves support concurrent Open.
type Credential struct {
	enclave *memguard.Enclave
}

// LoadCredential reads an API key from the environment or a secret file.
//
// # Description
//
// The environment variable takes precedence. If it is unset, the secret
// file (e.g. a Podman/Kubernetes mounted secret) is tried. The plaintext
// copy read from the source is wiped once the enclave owns the key.
//
// # Inputs
//
//   - envVar: Environment variable name, e.g. "OPENAI_API_KEY".
//   - secretPath: Fallback secret file path, e.g. "/run/secrets/openai_api_key".
//
// # Outputs
//
//   - *Credential: Sealed credential.
//   - error: ErrNotConfigured (wrapped) when neither source has a key.
func LoadCredential(envVar, secretPath string) (*Credential, error) {
	key := os.Getenv(envVar)
	if key == "" && secretPath != "" {
		if content, err := os.ReadFile(secretPath); err == nil {
			key = strings.TrimSpace(string(content))
			slog.Info("Read API key from mounted secret", "path", secretPath)
		}
	}
	if key == "" {
		return nil, fmt.Errorf("%s not set and no secret at %s: %w",
			envVar, secretPath, ErrNotConfigured)
	}

	// NewEnclave wipes the source slice after sealing.
	enclave := memguard.NewEnclave([]byte(key))
	return &Credential{enclave: enclave}, nil
}

// Expose decrypts the key for the duration of fn.
//
// # Description
//
// The key lives in an mlocked, canary-guarded buffer while fn runs and is
// destroyed before Expose returns, regardless of fn's outcome. fn must not
// retain the string beyond its own scope.
//
// # Inputs
//
//   - fn: Callback receiving the plaintext key.
//
// # Outputs
//
//   - error: The open error or fn's error.
func (c *Credential) Expose(fn func(key string) error) error {
	buf, err := c.enclave.Open()
	if err != nil {
		return fmt.Errorf("failed to open credential enclave: %w", err)
	}
	defer buf.Destroy()

	return fn(buf.String())
}

// PurgeCredentials wipes all memguard-managed session memory.
//
// Call during shutdown after the last provider request has completed.
func PurgeCredentials() {
	memguard.Purge()
}
