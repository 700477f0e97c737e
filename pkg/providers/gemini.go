package providers

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/dotsetgreg/personagen/pkg/config"
)

const defaultGeminiModel = "gemini-1.5-flash"

func init() {
	RegisterFactory(ProviderGemini, newGeminiProviderFromConfig, validateGeminiConfig, geminiCredentialStatus)
}

// geminiProvider talks to the Gemini API through the genai SDK. Unlike the
// chat-completions providers it sends message attachments inline, which is
// what lets extraction read a PDF directly.
type geminiProvider struct {
	client       *genai.Client
	defaultModel string
}

func validateGeminiConfig(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if strings.TrimSpace(cfg.Providers.Gemini.APIKey) == "" {
		return fmt.Errorf("Gemini API key is required (set providers.gemini.api_key or PERSONAGEN_PROVIDERS_GEMINI_API_KEY)")
	}
	src := ConfigKey(cfg.Providers.Gemini.APIKey, "providers.gemini.api_key")
	if _, err := src.Key(context.Background()); err != nil {
		return err
	}
	return nil
}

func geminiCredentialStatus(cfg *config.Config) (bool, string) {
	if validateGeminiConfig(cfg) != nil {
		return false, ""
	}
	return true, authModeAPIKey
}

func newGeminiProviderFromConfig(cfg *config.Config) (LLMProvider, error) {
	if err := validateGeminiConfig(cfg); err != nil {
		return nil, err
	}
	cc := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.Providers.Gemini.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if base := cfg.GetGeminiAPIBase(); base != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: base + "/"}
	}
	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	model := strings.TrimSpace(cfg.Providers.Gemini.Model)
	if model == "" {
		model = defaultGeminiModel
	}
	return &geminiProvider{client: client, defaultModel: model}, nil
}

func (p *geminiProvider) Chat(ctx context.Context, messages []Message, model string, options map[string]interface{}) (*LLMResponse, error) {
	if p == nil || p.client == nil {
		return nil, fmt.Errorf("provider not initialized")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = p.GetDefaultModel()
	}

	contents, system := toGeminiContents(messages)
	if len(contents) == 0 {
		return nil, fmt.Errorf("gemini request has no content")
	}

	gc := &genai.GenerateContentConfig{}
	if system != "" {
		gc.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if temperature, ok := optionAsFloat(options, "temperature"); ok {
		gc.Temperature = genai.Ptr(float32(temperature))
	}
	if maxTokens, ok := optionAsInt(options, "max_tokens"); ok {
		gc.MaxOutputTokens = int32(maxTokens)
	}
	if optionAsBool(options, OptionJSONResponse) {
		gc.ResponseMIMEType = "application/json"
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, contents, gc)
	if err != nil {
		return nil, fmt.Errorf("gemini API request failed: %s", augmentProviderError(ProviderGemini, err.Error()))
	}

	out := &LLMResponse{Content: resp.Text()}
	if len(resp.Candidates) > 0 {
		out.FinishReason = strings.ToLower(string(resp.Candidates[0].FinishReason))
	}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = &UsageInfo{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	return out, nil
}

func (p *geminiProvider) SupportsAttachments() bool { return true }

func (p *geminiProvider) GetDefaultModel() string {
	if p == nil {
		return ""
	}
	return p.defaultModel
}

// toGeminiContents maps chat roles onto Gemini's user/model turns. System
// messages are folded into a single system instruction.
func toGeminiContents(messages []Message) ([]*genai.Content, string) {
	var system []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			if s := strings.TrimSpace(m.Content); s != "" {
				system = append(system, s)
			}
			continue
		}
		role := genai.Role(genai.RoleUser)
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		parts := make([]*genai.Part, 0, 1+len(m.Attachments))
		if strings.TrimSpace(m.Content) != "" {
			parts = append(parts, genai.NewPartFromText(m.Content))
		}
		for _, a := range m.Attachments {
			if len(a.Data) == 0 {
				continue
			}
			parts = append(parts, genai.NewPartFromBytes(a.Data, a.MIMEType))
		}
		if len(parts) == 0 {
			continue
		}
		contents = append(contents, genai.NewContentFromParts(parts, role))
	}
	return contents, strings.Join(system, "\n\n")
}
