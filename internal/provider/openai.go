package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/redink-ai/redink/internal/models"
)

const openAIDefaultBaseURL = "https://api.openai.com/v1"

// chatmlMessage is the OpenAI-compatible wire message. Content is a string
// for plain text and a part list for multi-modal bodies.
type chatmlMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatmlPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *chatmlImageURL `json:"image_url,omitempty"`
}

type chatmlImageURL struct {
	URL string `json:"url"`
}

// encodeChatML converts vendor-neutral messages to the OpenAI wire shape.
func encodeChatML(messages []Message) []chatmlMessage {
	out := make([]chatmlMessage, 0, len(messages))
	for _, msg := range messages {
		if len(msg.Parts) == 0 {
			out = append(out, chatmlMessage{Role: msg.Role, Content: msg.Text})
			continue
		}
		parts := make([]chatmlPart, 0, len(msg.Parts))
		for _, part := range msg.Parts {
			switch part.Type {
			case PartImageURL:
				parts = append(parts, chatmlPart{Type: "image_url", ImageURL: &chatmlImageURL{URL: part.ImageURL}})
			default:
				parts = append(parts, chatmlPart{Type: "text", Text: part.Text})
			}
		}
		out = append(out, chatmlMessage{Role: msg.Role, Content: parts})
	}
	return out
}

// chatmlResponse is the OpenAI-compatible completion reply subset we consume.
type chatmlResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

// openAIClient talks to the OpenAI chat completions API (api_key shape).
type openAIClient struct {
	chatmlClient
}

func newOpenAIClient(cred Credential) (Client, error) {
	base := cred.BaseURL
	if base == "" {
		base = openAIDefaultBaseURL
	}
	return &openAIClient{chatmlClient{
		providerType: models.ProviderOpenAI,
		cred:         cred,
		url:          base + "/chat/completions",
		headers:      map[string]string{"Authorization": "Bearer " + cred.APIKey},
		httpClient:   newHTTPClient(cred.Timeout),
	}}, nil
}

// chatmlClient implements the OpenAI-compatible request/response cycle shared
// by OpenAI and Volcano.
type chatmlClient struct {
	providerType string
	cred         Credential
	url          string
	headers      map[string]string
	httpClient   *http.Client
}

// GenerateChatCompletion implements Client.
func (c *chatmlClient) GenerateChatCompletion(ctx context.Context, messages []Message, model string, maxTokens int, temperature float64) (*CompletionResult, error) {
	reqBody := map[string]any{
		"model":       model,
		"messages":    encodeChatML(messages),
		"max_tokens":  maxTokens,
		"temperature": temperature,
	}
	payload, errMarshal := json.Marshal(reqBody)
	if errMarshal != nil {
		return nil, invocationErr(c.providerType, errMarshal)
	}

	status, body, errPost := postJSON(ctx, c.httpClient, c.url, c.headers, payload, c.cred.MaxRetries)
	if errPost != nil {
		return nil, invocationErr(c.providerType, errPost)
	}
	if status < 200 || status >= 300 {
		return nil, vendorErr(c.providerType, status, body)
	}

	var reply chatmlResponse
	if errUnmarshal := json.Unmarshal(body, &reply); errUnmarshal != nil {
		return nil, invocationErr(c.providerType, fmt.Errorf("decode response: %w", errUnmarshal))
	}
	if len(reply.Choices) == 0 {
		return nil, &InvocationError{Provider: c.providerType, StatusCode: status, Message: "response contains no choices"}
	}

	resolvedModel := reply.Model
	if resolvedModel == "" {
		resolvedModel = model
	}
	return &CompletionResult{
		Text:        reply.Choices[0].Message.Content,
		Usage:       reply.Usage,
		Model:       resolvedModel,
		RawRequest:  payload,
		RawResponse: body,
	}, nil
}
