// Package provider abstracts third-party LLM vendors behind a single
// chat-completion capability. Concrete clients own their vendor's wire
// format; callers see vendor-neutral messages and a normalized result.
package provider

import "context"

// Message roles used across all vendors.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Content part types for multi-modal messages.
const (
	PartText     = "text"
	PartImageURL = "image_url"
)

// ContentPart is one element of a multi-modal message body.
type ContentPart struct {
	Type     string // PartText or PartImageURL.
	Text     string // Text body when Type is PartText.
	ImageURL string // Image location when Type is PartImageURL.
}

// Message is a vendor-neutral chat message. Parts is nil for plain text
// messages; when set, Text is ignored and Parts carries the ordered body.
type Message struct {
	Role  string
	Text  string
	Parts []ContentPart
}

// TextMessage builds a plain text message.
func TextMessage(role, text string) Message {
	return Message{Role: role, Text: text}
}

// Usage reports token consumption for one completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompletionResult is the normalized outcome of a chat completion call.
// RawRequest and RawResponse hold the exact vendor payloads for audit.
type CompletionResult struct {
	Text        string
	Usage       Usage
	Model       string
	RawRequest  []byte
	RawResponse []byte
}

// Client is implemented by each concrete vendor client.
type Client interface {
	// GenerateChatCompletion sends the messages to the vendor and returns a
	// normalized result. Transport and vendor-side failures are returned as
	// *InvocationError; the call is bounded by the credential's timeout and
	// retry budget.
	GenerateChatCompletion(ctx context.Context, messages []Message, model string, maxTokens int, temperature float64) (*CompletionResult, error)
}
