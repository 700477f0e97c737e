package providers

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when no usable provider is selected.
var ErrNotConfigured = errors.New("no LLM provider configured")

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Attachment is binary content sent alongside a message. Providers that
// cannot carry it inline drop it.
type Attachment struct {
	MIMEType string
	Name     string
	Data     []byte
}

type Message struct {
	Role        string       `json:"role"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"-"`
}

type UsageInfo struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type LLMResponse struct {
	Content      string     `json:"content"`
	FinishReason string     `json:"finish_reason"`
	Usage        *UsageInfo `json:"usage,omitempty"`
}

// OptionJSONResponse asks the model to answer with a single JSON object.
const OptionJSONResponse = "json_response"

// LLMProvider sends a conversation to a hosted model. options accepts
// "max_tokens", "temperature" and OptionJSONResponse.
type LLMProvider interface {
	Chat(ctx context.Context, messages []Message, model string, options map[string]interface{}) (*LLMResponse, error)
	GetDefaultModel() string
}

// AttachmentCapable is implemented by providers that forward Message
// attachments to the model instead of dropping them.
type AttachmentCapable interface {
	SupportsAttachments() bool
}

// SupportsAttachments reports whether p forwards binary attachments.
func SupportsAttachments(p LLMProvider) bool {
	ac, ok := p.(AttachmentCapable)
	return ok && ac.SupportsAttachments()
}
