package providers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dotsetgreg/personagen/pkg/config"
)

func TestCreateProvider_OpenRouter(t *testing.T) {
	var seenAuth string
	var seenPath string
	var seenTitle string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenAuth = r.Header.Get("Authorization")
		seenPath = r.URL.Path
		seenTitle = r.Header.Get("X-Title")
		var req map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if got := req["model"]; got != defaultOpenRouterModel {
			t.Errorf("expected default model %q, got %v", defaultOpenRouterModel, got)
		}
		if _, ok := req["tools"]; ok {
			t.Errorf("did not expect tools in request")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	cfg := config.DefaultConfig()
	cfg.Providers.Active = ProviderOpenRouter
	cfg.Providers.OpenRouter.APIKey = "or-key"
	cfg.Providers.OpenRouter.APIBase = server.URL

	provider, err := CreateProvider(cfg)
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}
	resp, err := provider.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, "", nil)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if resp.Content != "ok" {
		t.Fatalf("expected response content ok, got %q", resp.Content)
	}
	if seenAuth != "Bearer or-key" {
		t.Fatalf("expected openrouter auth bearer, got %q", seenAuth)
	}
	if seenPath != "/chat/completions" {
		t.Fatalf("expected /chat/completions path, got %q", seenPath)
	}
	if seenTitle != "PersonaGen" {
		t.Fatalf("expected X-Title header, got %q", seenTitle)
	}
}

func TestCreateProvider_OpenAI_WithAPIKeyAndOptions(t *testing.T) {
	var seenAuth string
	var seenOrg string
	var seenBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenAuth = r.Header.Get("Authorization")
		seenOrg = r.Header.Get("OpenAI-Organization")
		if err := json.NewDecoder(r.Body).Decode(&seenBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"content": [{"type":"text","text":"Hello, "},{"type":"text","text":"friend"}]}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 3, "total_tokens": 15}
		}`))
	}))
	defer server.Close()

	cfg := config.DefaultConfig()
	cfg.Providers.Active = ProviderOpenAI
	cfg.Providers.OpenAI.APIKey = "sk-openai"
	cfg.Providers.OpenAI.APIBase = server.URL
	cfg.Providers.OpenAI.Organization = "org_123"

	provider, err := CreateProvider(cfg)
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}

	messages := []Message{
		{Role: RoleSystem, Content: "You are now acting as Ada."},
		{Role: RoleUser, Content: "hello", Attachments: []Attachment{{MIMEType: "application/pdf", Data: []byte("%PDF")}}},
	}
	resp, err := provider.Chat(context.Background(), messages, "gpt-4o", map[string]interface{}{"max_tokens": 128, "temperature": 0.3})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if resp.Content != "Hello, friend" {
		t.Fatalf("expected flattened content, got %q", resp.Content)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 15 {
		t.Fatalf("expected usage total 15, got %+v", resp.Usage)
	}
	if seenAuth != "Bearer sk-openai" {
		t.Fatalf("expected openai auth bearer with api key, got %q", seenAuth)
	}
	if seenOrg != "org_123" {
		t.Fatalf("expected OpenAI-Organization header, got %q", seenOrg)
	}
	if got := seenBody["model"]; got != "gpt-4o" {
		t.Fatalf("expected model override gpt-4o, got %v", got)
	}
	if got := seenBody["max_tokens"]; got != float64(128) {
		t.Fatalf("expected max_tokens 128, got %v", got)
	}
	msgs, _ := seenBody["messages"].([]interface{})
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	second, _ := msgs[1].(map[string]interface{})
	if _, ok := second["Attachments"]; ok {
		t.Fatalf("attachments must not be serialized for chat completions")
	}
}

func TestCreateProvider_OpenAI_UsesAPIKeyFile(t *testing.T) {
	var seenAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	keyFile := filepath.Join(t.TempDir(), "key.txt")
	if err := os.WriteFile(keyFile, []byte("sk-from-file"), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Providers.Active = ProviderOpenAI
	cfg.Providers.OpenAI.APIBase = server.URL
	cfg.Providers.OpenAI.APIKeyFile = keyFile

	provider, err := CreateProvider(cfg)
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}
	if _, err := provider.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hello"}}, "", nil); err != nil {
		t.Fatalf("chat: %v", err)
	}
	if seenAuth != "Bearer sk-from-file" {
		t.Fatalf("expected bearer from key file, got %q", seenAuth)
	}
}

func TestResolveOpenAIAuthConfig_RejectsMultipleCredentialSources(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "key.txt")
	if err := os.WriteFile(keyFile, []byte("from-file"), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Providers.Active = ProviderOpenAI
	cfg.Providers.OpenAI.APIKey = "inline"
	cfg.Providers.OpenAI.APIKeyFile = keyFile

	mode, source, err := resolveOpenAIAuthConfig(cfg)
	if err == nil {
		t.Fatalf("expected multi-credential configuration error")
	}
	if mode != "" || source != "" {
		t.Fatalf("expected empty mode/source on error, got mode=%q source=%q", mode, source)
	}
	if want := "multiple OpenAI credential sources configured"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error containing %q, got %v", want, err)
	}
}

func TestChatCompletions_SurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
	}))
	defer server.Close()

	cfg := config.DefaultConfig()
	cfg.Providers.Active = ProviderOpenAI
	cfg.Providers.OpenAI.APIKey = "sk-bad"
	cfg.Providers.OpenAI.APIBase = server.URL

	provider, err := CreateProvider(cfg)
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}
	_, err = provider.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hello"}}, "", nil)
	if err == nil {
		t.Fatalf("expected API error")
	}
	if !strings.Contains(err.Error(), "status=401") || !strings.Contains(err.Error(), "Platform API key") {
		t.Fatalf("expected status and hint in error, got %v", err)
	}
}

func TestChatCompletions_JSONResponseFormat(t *testing.T) {
	var seenBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&seenBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"name\":\"Ada\"}"}}]}`))
	}))
	defer server.Close()

	cfg := config.DefaultConfig()
	cfg.Providers.Active = ProviderOpenRouter
	cfg.Providers.OpenRouter.APIKey = "or-key"
	cfg.Providers.OpenRouter.APIBase = server.URL

	provider, err := CreateProvider(cfg)
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}
	resp, err := provider.Chat(context.Background(), []Message{{Role: RoleUser, Content: "extract"}}, "", map[string]interface{}{OptionJSONResponse: true})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if resp.Content != `{"name":"Ada"}` {
		t.Fatalf("unexpected content %q", resp.Content)
	}
	format, _ := seenBody["response_format"].(map[string]interface{})
	if format["type"] != "json_object" {
		t.Fatalf("expected json_object response_format, got %v", seenBody["response_format"])
	}

	seenBody = nil
	if _, err := provider.Chat(context.Background(), []Message{{Role: RoleUser, Content: "chat"}}, "", nil); err != nil {
		t.Fatalf("chat: %v", err)
	}
	if _, ok := seenBody["response_format"]; ok {
		t.Fatalf("response_format must only be sent on request")
	}
}

func TestCreateProvider_Gemini(t *testing.T) {
	var seenPath string
	var seenBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenPath = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		seenBody = string(data)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "{\"name\":\"Ada\"}"}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 10, "candidatesTokenCount": 4, "totalTokenCount": 14}
		}`))
	}))
	defer server.Close()

	cfg := config.DefaultConfig()
	cfg.Providers.Active = ProviderGemini
	cfg.Providers.Gemini.APIKey = "gm-key"
	cfg.Providers.Gemini.APIBase = server.URL
	cfg.Providers.Gemini.Model = "gemini-test"

	provider, err := CreateProvider(cfg)
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}
	if provider.GetDefaultModel() != "gemini-test" {
		t.Fatalf("expected configured default model, got %q", provider.GetDefaultModel())
	}

	messages := []Message{
		{Role: RoleSystem, Content: "Return JSON."},
		{Role: RoleUser, Content: "Analyze this", Attachments: []Attachment{{MIMEType: "application/pdf", Data: []byte("%PDF-1.4")}}},
	}
	resp, err := provider.Chat(context.Background(), messages, "", map[string]interface{}{"temperature": 0.2})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if resp.Content != `{"name":"Ada"}` {
		t.Fatalf("unexpected content %q", resp.Content)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 14 {
		t.Fatalf("expected usage total 14, got %+v", resp.Usage)
	}
	if !strings.Contains(seenPath, "gemini-test:generateContent") {
		t.Fatalf("expected generateContent path for model, got %q", seenPath)
	}
	if !strings.Contains(seenBody, "application/pdf") {
		t.Fatalf("expected inline pdf attachment in body, got %s", seenBody)
	}
	if !strings.Contains(seenBody, "Return JSON.") {
		t.Fatalf("expected system instruction in body, got %s", seenBody)
	}
}

func TestToGeminiContents_MapsRoles(t *testing.T) {
	contents, system := toGeminiContents([]Message{
		{Role: RoleSystem, Content: "one"},
		{Role: RoleSystem, Content: "two"},
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
		{Role: RoleUser, Content: "   "},
	})
	if system != "one\n\ntwo" {
		t.Fatalf("unexpected system instruction %q", system)
	}
	if len(contents) != 2 {
		t.Fatalf("expected 2 contents, got %d", len(contents))
	}
	if contents[0].Role != "user" || contents[1].Role != "model" {
		t.Fatalf("unexpected roles %q, %q", contents[0].Role, contents[1].Role)
	}
}

func TestValidateProviderConfig_GeminiRequiresKey(t *testing.T) {
	cfg := config.DefaultConfig()
	if err := ValidateProviderConfig(cfg); err == nil {
		t.Fatalf("expected missing gemini key error")
	}
	cfg.Providers.Gemini.APIKey = "<GEMINI_API_KEY>"
	if err := ValidateProviderConfig(cfg); err == nil {
		t.Fatalf("expected placeholder gemini key error")
	}
}

func TestCreateProvider_None(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Providers.Active = ProviderNone
	if _, err := CreateProvider(cfg); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestCreateProvider_UnsupportedProvider(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Providers.Active = "does-not-exist"

	if _, err := CreateProvider(cfg); err == nil {
		t.Fatalf("expected unsupported provider error")
	}
}

func TestProviderCredentialStatus(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Providers.Active = ProviderOpenRouter
	name, configured, _, err := ProviderCredentialStatus(cfg)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if name != ProviderOpenRouter || configured {
		t.Fatalf("expected unconfigured openrouter, got name=%q configured=%v", name, configured)
	}
	cfg.Providers.OpenRouter.APIKey = "or-key"
	_, configured, mode, err := ProviderCredentialStatus(cfg)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !configured || mode != authModeAPIKey {
		t.Fatalf("expected configured api_key, got configured=%v mode=%q", configured, mode)
	}
}

func TestSupportedProviders(t *testing.T) {
	got := strings.Join(SupportedProviders(), ",")
	if got != "gemini,openai,openrouter" {
		t.Fatalf("unexpected providers %q", got)
	}
}

func TestRegisterFactory_InvalidRegistrationDoesNotPanic(t *testing.T) {
	factoryMu.RLock()
	origFactories := make(map[string]providerFactory, len(factories))
	for k, v := range factories {
		origFactories[k] = v
	}
	origErr := registrationErr
	factoryMu.RUnlock()

	defer func() {
		factoryMu.Lock()
		factories = origFactories
		registrationErr = origErr
		factoryMu.Unlock()
	}()

	didPanic := false
	func() {
		defer func() {
			if recover() != nil {
				didPanic = true
			}
		}()
		RegisterFactory("", nil, nil, nil)
	}()
	if didPanic {
		t.Fatalf("RegisterFactory should not panic on invalid registration")
	}

	cfg := config.DefaultConfig()
	cfg.Providers.Gemini.APIKey = "gm-key"
	if _, err := CreateProvider(cfg); err == nil {
		t.Fatalf("expected provider creation to fail after invalid registration")
	}
}
