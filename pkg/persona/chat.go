package persona

import (
	"context"
	"fmt"
	"strings"

	"github.com/dotsetgreg/personagen/pkg/providers"
)

// ProviderResponder role-plays a persona through an LLM provider: the system
// prompt comes first, then the prior turns, then the new message.
type ProviderResponder struct {
	provider providers.LLMProvider
	model    string
	options  map[string]interface{}
}

func NewProviderResponder(provider providers.LLMProvider, model string, temperature float64, maxTokens int) *ProviderResponder {
	opts := map[string]interface{}{}
	if temperature > 0 {
		opts["temperature"] = temperature
	}
	if maxTokens > 0 {
		opts["max_tokens"] = maxTokens
	}
	return &ProviderResponder{provider: provider, model: strings.TrimSpace(model), options: opts}
}

func (r *ProviderResponder) Respond(ctx context.Context, req Request) (string, error) {
	if r == nil || r.provider == nil {
		return "", providers.ErrNotConfigured
	}
	var p Persona
	if req.Persona != nil {
		p = *req.Persona
	}
	history := req.History
	if history == nil {
		history = p.ConversationHistory
	}

	messages := make([]providers.Message, 0, len(history)+2)
	messages = append(messages, providers.Message{Role: providers.RoleSystem, Content: SystemPrompt(p, req.FullText)})
	for _, t := range history {
		role := providers.RoleAssistant
		if t.Role == RoleUser {
			role = providers.RoleUser
		}
		messages = append(messages, providers.Message{Role: role, Content: t.Content})
	}
	messages = append(messages, providers.Message{Role: providers.RoleUser, Content: req.Message})

	resp, err := r.provider.Chat(ctx, messages, r.model, r.options)
	if err != nil {
		return "", fmt.Errorf("persona chat: %w", err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Content, nil
}
