// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_UnknownOrEmptyBackend(t *testing.T) {
	_, err := NewClient("")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewClient("mainframe")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNewClient_MissingCredentialIsNotConfigured(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := NewClient("openai")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestLoadCredential_FromEnv(t *testing.T) {
	t.Setenv("TEST_API_KEY", "sk-test-123")

	credential, err := LoadCredential("TEST_API_KEY", "")
	require.NoError(t, err)

	var seen string
	require.NoError(t, credential.Expose(func(key string) error {
		seen = key
		return nil
	}))
	assert.Equal(t, "sk-test-123", seen)
}

func TestLoadCredential_Missing(t *testing.T) {
	t.Setenv("TEST_API_KEY", "")

	_, err := LoadCredential("TEST_API_KEY", "/nonexistent/secret")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestOllamaGenerate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)

		var req ollamaGenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "json", req.Format)
		assert.False(t, req.Stream)

		_ = json.NewEncoder(w).Encode(ollamaGenerateResponse{
			Model:    req.Model,
			Response: `{"actions":[]}`,
			Done:     true,
		})
	}))
	defer server.Close()

	client := &OllamaClient{
		httpClient: server.Client(),
		baseURL:    server.URL,
		model:      "llama3.1",
	}

	out, err := client.Generate(context.Background(), "prompt", GenerationParams{})
	require.NoError(t, err)
	assert.Equal(t, `{"actions":[]}`, out)
	assert.Equal(t, "llama3.1", client.Model())
}

func TestOllamaGenerate_Non200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	client := &OllamaClient{
		httpClient: server.Client(),
		baseURL:    server.URL,
		model:      "llama3.1",
	}

	_, err := client.Generate(context.Background(), "prompt", GenerationParams{})
	require.Error(t, err)
}

func TestOllamaGenerate_HonorsContextTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(250 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: "late"})
	}))
	defer server.Close()

	client := &OllamaClient{
		httpClient: server.Client(),
		baseURL:    server.URL,
		model:      "llama3.1",
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Generate(ctx, "prompt", GenerationParams{})
	require.Error(t, err)
}

func TestAnthropicGenerate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sk-ant-test", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicAPIVersion, r.Header.Get("anthropic-version"))

		_ = json.NewEncoder(w).Encode(anthropicResponse{
			Type: "message",
			Role: "assistant",
			Content: []anthropicContent{
				{Type: "text", Text: "hello"},
			},
		})
	}))
	defer server.Close()

	t.Setenv("ANTHROPIC_TEST_KEY", "sk-ant-test")
	credential, err := LoadCredential("ANTHROPIC_TEST_KEY", "")
	require.NoError(t, err)

	client := &AnthropicClient{
		httpClient: server.Client(),
		credential: credential,
		baseURL:    server.URL,
		model:      "claude-3-5-sonnet-20240620",
	}

	out, err := client.Generate(context.Background(), "prompt", GenerationParams{})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestAnthropicGenerate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`))
	}))
	defer server.Close()

	t.Setenv("ANTHROPIC_TEST_KEY", "sk-ant-test")
	credential, err := LoadCredential("ANTHROPIC_TEST_KEY", "")
	require.NoError(t, err)

	client := &AnthropicClient{
		httpClient: server.Client(),
		credential: credential,
		baseURL:    server.URL,
		model:      "claude-3-5-sonnet-20240620",
	}

	_, err = client.Generate(context.Background(), "prompt", GenerationParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}
