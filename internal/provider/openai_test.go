package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redink-ai/redink/internal/models"
)

func chatmlReply(t *testing.T, w http.ResponseWriter, text string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"model": "gpt-4o-2024",
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": text}},
		},
		"usage": map[string]int{"prompt_tokens": 12, "completion_tokens": 34, "total_tokens": 46},
	}); err != nil {
		t.Fatalf("encode reply: %v", err)
	}
}

func TestOpenAIClient_GenerateChatCompletion(t *testing.T) {
	var gotAuth string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		chatmlReply(t, w, "generated text")
	}))
	defer server.Close()

	client, err := New(models.ProviderOpenAI, Credential{
		APIKey:  "sk-test",
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	messages := []Message{
		TextMessage(RoleSystem, "you are a copywriter"),
		{Role: RoleUser, Parts: []ContentPart{
			{Type: PartText, Text: "write something"},
			{Type: PartImageURL, ImageURL: "https://example.com/a.jpg"},
		}},
	}
	result, err := client.GenerateChatCompletion(context.Background(), messages, "gpt-4o", 800, 0.7)
	if err != nil {
		t.Fatalf("GenerateChatCompletion: %v", err)
	}

	if result.Text != "generated text" {
		t.Fatalf("expected text, got %q", result.Text)
	}
	if result.Usage.TotalTokens != 46 {
		t.Fatalf("expected 46 total tokens, got %d", result.Usage.TotalTokens)
	}
	if result.Model != "gpt-4o-2024" {
		t.Fatalf("expected server-reported model, got %q", result.Model)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("expected bearer auth, got %q", gotAuth)
	}
	if len(result.RawRequest) == 0 || len(result.RawResponse) == 0 {
		t.Fatal("expected raw payloads to be captured")
	}

	var wire struct {
		Messages []struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		} `json:"messages"`
	}
	if errUnmarshal := json.Unmarshal(gotBody, &wire); errUnmarshal != nil {
		t.Fatalf("decode outbound request: %v", errUnmarshal)
	}
	if len(wire.Messages) != 2 {
		t.Fatalf("expected 2 wire messages, got %d", len(wire.Messages))
	}
	var parts []map[string]any
	if errUnmarshal := json.Unmarshal(wire.Messages[1].Content, &parts); errUnmarshal != nil {
		t.Fatalf("expected part list for multi-modal message: %v", errUnmarshal)
	}
	if len(parts) != 2 || parts[1]["type"] != "image_url" {
		t.Fatalf("unexpected multi-modal parts: %v", parts)
	}
}

func TestOpenAIClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		chatmlReply(t, w, "recovered")
	}))
	defer server.Close()

	client, err := New(models.ProviderOpenAI, Credential{
		APIKey:     "sk-test",
		BaseURL:    server.URL,
		Timeout:    5 * time.Second,
		MaxRetries: 3,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := client.GenerateChatCompletion(context.Background(), []Message{TextMessage(RoleUser, "hi")}, "gpt-4o", 100, 0.5)
	if err != nil {
		t.Fatalf("GenerateChatCompletion: %v", err)
	}
	if result.Text != "recovered" {
		t.Fatalf("expected recovered text, got %q", result.Text)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestOpenAIClient_ClientErrorFailsFast(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer server.Close()

	client, err := New(models.ProviderOpenAI, Credential{
		APIKey:     "sk-bad",
		BaseURL:    server.URL,
		Timeout:    5 * time.Second,
		MaxRetries: 3,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = client.GenerateChatCompletion(context.Background(), []Message{TextMessage(RoleUser, "hi")}, "gpt-4o", 100, 0.5)
	var invErr *InvocationError
	if !errors.As(err, &invErr) {
		t.Fatalf("expected InvocationError, got %v", err)
	}
	if invErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", invErr.StatusCode)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single attempt for 4xx, got %d", calls.Load())
	}
}
