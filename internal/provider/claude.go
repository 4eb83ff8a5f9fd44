package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/redink-ai/redink/internal/models"
)

const (
	claudeDefaultBaseURL    = "https://api.anthropic.com"
	claudeDefaultAPIVersion = "2023-06-01"
)

// claudeClient talks to the Anthropic messages API (api_key shape, x-api-key header).
type claudeClient struct {
	cred       Credential
	url        string
	headers    map[string]string
	httpClient *http.Client
}

func newClaudeClient(cred Credential) (Client, error) {
	base := cred.BaseURL
	if base == "" {
		base = claudeDefaultBaseURL
	}
	version := cred.APIVersion
	if version == "" {
		version = claudeDefaultAPIVersion
	}
	return &claudeClient{
		cred: cred,
		url:  strings.TrimRight(base, "/") + "/v1/messages",
		headers: map[string]string{
			"x-api-key":         cred.APIKey,
			"anthropic-version": version,
		},
		httpClient: newHTTPClient(cred.Timeout),
	}, nil
}

// claudeMessage is the Anthropic wire message. Content is always a block list.
type claudeMessage struct {
	Role    string         `json:"role"`
	Content []claudeBlock  `json:"content"`
}

type claudeBlock struct {
	Type   string             `json:"type"`
	Text   string             `json:"text,omitempty"`
	Source *claudeImageSource `json:"source,omitempty"`
}

type claudeImageSource struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// claudeResponse is the reply subset we consume.
type claudeResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// GenerateChatCompletion implements Client. The system message is lifted into
// Anthropic's top-level system field; remaining messages become block lists.
func (c *claudeClient) GenerateChatCompletion(ctx context.Context, messages []Message, model string, maxTokens int, temperature float64) (*CompletionResult, error) {
	var system string
	wire := make([]claudeMessage, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == RoleSystem {
			system = msg.Text
			continue
		}
		blocks := make([]claudeBlock, 0, len(msg.Parts)+1)
		if len(msg.Parts) == 0 {
			blocks = append(blocks, claudeBlock{Type: "text", Text: msg.Text})
		} else {
			for _, part := range msg.Parts {
				switch part.Type {
				case PartImageURL:
					blocks = append(blocks, claudeBlock{Type: "image", Source: &claudeImageSource{Type: "url", URL: part.ImageURL}})
				default:
					blocks = append(blocks, claudeBlock{Type: "text", Text: part.Text})
				}
			}
		}
		wire = append(wire, claudeMessage{Role: msg.Role, Content: blocks})
	}

	reqBody := map[string]any{
		"model":       model,
		"messages":    wire,
		"max_tokens":  maxTokens,
		"temperature": temperature,
	}
	if system != "" {
		reqBody["system"] = system
	}
	payload, errMarshal := json.Marshal(reqBody)
	if errMarshal != nil {
		return nil, invocationErr(models.ProviderClaude, errMarshal)
	}

	status, body, errPost := postJSON(ctx, c.httpClient, c.url, c.headers, payload, c.cred.MaxRetries)
	if errPost != nil {
		return nil, invocationErr(models.ProviderClaude, errPost)
	}
	if status < 200 || status >= 300 {
		return nil, vendorErr(models.ProviderClaude, status, body)
	}

	var reply claudeResponse
	if errUnmarshal := json.Unmarshal(body, &reply); errUnmarshal != nil {
		return nil, invocationErr(models.ProviderClaude, fmt.Errorf("decode response: %w", errUnmarshal))
	}

	var text strings.Builder
	for _, block := range reply.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, &InvocationError{Provider: models.ProviderClaude, StatusCode: status, Message: "response contains no text content"}
	}

	resolvedModel := reply.Model
	if resolvedModel == "" {
		resolvedModel = model
	}
	return &CompletionResult{
		Text: text.String(),
		Usage: Usage{
			PromptTokens:     reply.Usage.InputTokens,
			CompletionTokens: reply.Usage.OutputTokens,
			TotalTokens:      reply.Usage.InputTokens + reply.Usage.OutputTokens,
		},
		Model:       resolvedModel,
		RawRequest:  payload,
		RawResponse: body,
	}, nil
}
