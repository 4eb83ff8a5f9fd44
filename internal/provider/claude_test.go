package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redink-ai/redink/internal/models"
)

func TestClaudeClient_GenerateChatCompletion(t *testing.T) {
	var gotKey, gotVersion string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model": "claude-3-opus-20240229",
			"content": []map[string]any{
				{"type": "text", "text": "claude says "},
				{"type": "text", "text": "hello"},
			},
			"usage": map[string]int{"input_tokens": 10, "output_tokens": 5},
		})
	}))
	defer server.Close()

	client, err := New(models.ProviderClaude, Credential{
		APIKey:  "anthropic-key",
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	messages := []Message{
		TextMessage(RoleSystem, "be helpful"),
		TextMessage(RoleUser, "hi"),
	}
	result, err := client.GenerateChatCompletion(context.Background(), messages, "claude-3-opus-20240229", 500, 0.7)
	if err != nil {
		t.Fatalf("GenerateChatCompletion: %v", err)
	}

	if result.Text != "claude says hello" {
		t.Fatalf("expected concatenated text blocks, got %q", result.Text)
	}
	if result.Usage.TotalTokens != 15 {
		t.Fatalf("expected 15 total tokens, got %d", result.Usage.TotalTokens)
	}
	if gotKey != "anthropic-key" {
		t.Fatalf("expected x-api-key header, got %q", gotKey)
	}
	if gotVersion != claudeDefaultAPIVersion {
		t.Fatalf("expected default anthropic-version, got %q", gotVersion)
	}

	var wire struct {
		System   string `json:"system"`
		Messages []struct {
			Role string `json:"role"`
		} `json:"messages"`
	}
	if errUnmarshal := json.Unmarshal(gotBody, &wire); errUnmarshal != nil {
		t.Fatalf("decode outbound request: %v", errUnmarshal)
	}
	if wire.System != "be helpful" {
		t.Fatalf("expected system prompt lifted to top level, got %q", wire.System)
	}
	if len(wire.Messages) != 1 || wire.Messages[0].Role != RoleUser {
		t.Fatalf("expected single user message, got %+v", wire.Messages)
	}
}
