package providers

import (
	"fmt"
	"strings"

	"github.com/dotsetgreg/personagen/pkg/config"
)

const (
	defaultOpenAIAPIBase = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
)

func init() {
	RegisterFactory(ProviderOpenAI, newOpenAIProviderFromConfig, validateOpenAIConfig, openAICredentialStatus)
}

func validateOpenAIConfig(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	mode, source, err := resolveOpenAIAuthConfig(cfg)
	if err != nil {
		return err
	}
	if err := validateTokenFileSource(mode, source, "OpenAI"); err != nil {
		return err
	}
	return nil
}

func openAICredentialStatus(cfg *config.Config) (bool, string) {
	if cfg == nil {
		return false, ""
	}
	mode, _, err := resolveOpenAIAuthConfig(cfg)
	if err != nil {
		return false, ""
	}
	switch mode {
	case credentialModeAPIKey:
		return true, authModeAPIKey
	case credentialModeKeyFile:
		return true, mode
	default:
		return false, ""
	}
}

func newOpenAIProviderFromConfig(cfg *config.Config) (LLMProvider, error) {
	if err := validateOpenAIConfig(cfg); err != nil {
		return nil, err
	}
	auth, err := resolveOpenAIAuthStrategy(cfg)
	if err != nil {
		return nil, err
	}

	apiBase := strings.TrimSpace(cfg.Providers.OpenAI.APIBase)
	if apiBase == "" {
		apiBase = defaultOpenAIAPIBase
	}
	model := strings.TrimSpace(cfg.Providers.OpenAI.Model)
	if model == "" {
		model = defaultOpenAIModel
	}
	extraHeaders := map[string]string{}
	if org := strings.TrimSpace(cfg.Providers.OpenAI.Organization); org != "" {
		extraHeaders["OpenAI-Organization"] = org
	}

	return newChatCompletionsProvider(
		ProviderOpenAI,
		apiBase,
		model,
		strings.TrimSpace(cfg.Providers.OpenAI.Proxy),
		auth,
		extraHeaders,
	)
}

func resolveOpenAIAuthStrategy(cfg *config.Config) (AuthStrategy, error) {
	mode, source, err := resolveOpenAIAuthConfig(cfg)
	if err != nil {
		return nil, err
	}
	switch mode {
	case credentialModeAPIKey:
		return NewAPIKeyAuth(ConfigKey(source, "providers.openai.api_key")), nil
	case credentialModeKeyFile:
		return NewAPIKeyAuth(KeyFile(source, "providers.openai.api_key_file")), nil
	default:
		return nil, fmt.Errorf("unsupported OpenAI auth mode %q", mode)
	}
}

func resolveOpenAIAuthConfig(cfg *config.Config) (mode string, source string, err error) {
	if cfg == nil {
		return "", "", fmt.Errorf("config is required")
	}

	candidates := make([]credentialCandidate, 0, 2)
	if apiKey := strings.TrimSpace(cfg.Providers.OpenAI.APIKey); apiKey != "" {
		candidates = append(candidates, credentialCandidate{
			mode:   credentialModeAPIKey,
			source: apiKey,
			field:  "providers.openai.api_key",
		})
	}
	if keyFile := strings.TrimSpace(cfg.Providers.OpenAI.APIKeyFile); keyFile != "" {
		candidates = append(candidates, credentialCandidate{
			mode:   credentialModeKeyFile,
			source: keyFile,
			field:  "providers.openai.api_key_file",
		})
	}

	return selectSingleCredential(
		candidates,
		"OpenAI credentials are required (set providers.openai.api_key or providers.openai.api_key_file)",
		"multiple OpenAI credential sources configured",
	)
}
