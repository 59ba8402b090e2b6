// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package llm provides clients for external text-generation providers.
//
// Supported backends: OpenAI (chat completions), Anthropic (messages API),
// and Ollama (local /api/generate). Backend selection is configuration,
// not logic: NewClient maps a backend name to a client, and a missing
// credential surfaces as ErrNotConfigured so the caller can take its
// deterministic path.
//
// All clients share a client-side rate limiter and honor the caller's
// context deadline, so a request never outlives the timeout the caller
// chose.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// ErrNotConfigured indicates the requested backend has no usable
// configuration (unknown name or missing credential). Callers treat this
// as "no provider available", not as a failure.
var ErrNotConfigured = errors.New("llm backend not configured")

// GenerationParams carries optional sampling parameters for a generation
// call. Nil pointer fields mean "use the provider default".
type GenerationParams struct {
	Temperature *float32 `json:"temperature"`
	TopK        *int     `json:"top_k"`
	TopP        *float32 `json:"top_p"`
	MaxTokens   *int     `json:"max_tokens"`
	Stop        []string `json:"stop"`
}

// LLMClient is the standard interface for any text-generation backend.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use.
type LLMClient interface {
	// Generate produces a completion for the prompt.
	//
	// The call honors ctx cancellation and deadline. Errors are wrapped
	// provider errors; callers decide whether to fall back.
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)

	// Model returns the model identifier in use, e.g. "gpt-4o-mini".
	// It feeds the provenance tag of delegated generations.
	Model() string
}

// providerLimiter bounds the client-side request rate against external
// providers, shared across all clients in the process.
var providerLimiter = rate.NewLimiter(rate.Every(200*time.Millisecond), 3)

// waitForSlot blocks until the shared rate limiter admits a request or
// the context expires.
func waitForSlot(ctx context.Context) error {
	if err := providerLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}
	return nil
}

// NewClient creates the client for the named backend.
//
// # Description
//
// Valid backends: "openai", "claude"/"anthropic", "ollama". An empty or
// unknown backend, or one whose credential is missing, returns
// ErrNotConfigured (wrapped); callers use errors.Is to distinguish
// "no provider" from a real construction failure.
//
// # Inputs
//
//   - backend: Backend name from configuration (MODEL_BACKEND).
//
// # Outputs
//
//   - LLMClient: Ready-to-use client.
//   - error: ErrNotConfigured or a wrapped construction error.
func NewClient(backend string) (LLMClient, error) {
	switch backend {
	case "openai":
		slog.Info("Using OpenAI LLM backend")
		return NewOpenAIClient()
	case "claude", "anthropic":
		slog.Info("Using Anthropic (Claude) LLM backend")
		return NewAnthropicClient()
	case "ollama":
		slog.Info("Using Ollama LLM backend")
		return NewOllamaClient()
	case "":
		return nil, fmt.Errorf("no backend selected: %w", ErrNotConfigured)
	default:
		return nil, fmt.Errorf("unknown backend %q: %w", backend, ErrNotConfigured)
	}
}
