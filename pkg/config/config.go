package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/caarlos0/env/v11"
)

// FlexibleStringSlice is a []string that also accepts a single JSON string or
// numbers, so allow_origins can be written as "*" or ["http://a", "http://b"].
type FlexibleStringSlice []string

func (f *FlexibleStringSlice) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if strings.TrimSpace(single) == "" {
			*f = FlexibleStringSlice{}
			return nil
		}
		*f = FlexibleStringSlice{single}
		return nil
	}

	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		*f = ss
		return nil
	}

	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	result := make([]string, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case string:
			result = append(result, val)
		case float64:
			result = append(result, fmt.Sprintf("%.0f", val))
		default:
			result = append(result, fmt.Sprintf("%v", val))
		}
	}
	*f = result
	return nil
}

type Config struct {
	Server    ServerConfig    `json:"server"`
	Providers ProvidersConfig `json:"providers"`
	Persona   PersonaConfig   `json:"persona"`
	Store     StoreConfig     `json:"store"`
	Speech    SpeechConfig    `json:"speech"`
	Logging   LoggingConfig   `json:"logging"`
	mu        sync.RWMutex
}

type ServerConfig struct {
	Host         string              `json:"host" env:"PERSONAGEN_SERVER_HOST"`
	Port         int                 `json:"port" env:"PERSONAGEN_SERVER_PORT"`
	UploadDir    string              `json:"upload_dir" env:"PERSONAGEN_SERVER_UPLOAD_DIR"`
	MaxUploadMB  int                 `json:"max_upload_mb" env:"PERSONAGEN_SERVER_MAX_UPLOAD_MB"`
	MaxPDFPages  int                 `json:"max_pdf_pages" env:"PERSONAGEN_SERVER_MAX_PDF_PAGES"`
	AllowOrigins FlexibleStringSlice `json:"allow_origins" env:"PERSONAGEN_SERVER_ALLOW_ORIGINS"`
}

type ProvidersConfig struct {
	Active     string         `json:"active" env:"PERSONAGEN_PROVIDERS_ACTIVE"`
	Gemini     GeminiConfig   `json:"gemini"`
	OpenRouter ProviderConfig `json:"openrouter"`
	OpenAI     OpenAIConfig   `json:"openai"`
}

type GeminiConfig struct {
	APIKey  string `json:"api_key" env:"PERSONAGEN_PROVIDERS_GEMINI_API_KEY"`
	APIBase string `json:"api_base,omitempty" env:"PERSONAGEN_PROVIDERS_GEMINI_API_BASE"`
	Model   string `json:"model" env:"PERSONAGEN_PROVIDERS_GEMINI_MODEL"`
}

type ProviderConfig struct {
	APIKey  string `json:"api_key" env:"PERSONAGEN_PROVIDERS_OPENROUTER_API_KEY"`
	APIBase string `json:"api_base" env:"PERSONAGEN_PROVIDERS_OPENROUTER_API_BASE"`
	Model   string `json:"model" env:"PERSONAGEN_PROVIDERS_OPENROUTER_MODEL"`
	Proxy   string `json:"proxy,omitempty" env:"PERSONAGEN_PROVIDERS_OPENROUTER_PROXY"`
}

type OpenAIConfig struct {
	APIKey       string `json:"api_key" env:"PERSONAGEN_PROVIDERS_OPENAI_API_KEY"`
	APIKeyFile   string `json:"api_key_file,omitempty" env:"PERSONAGEN_PROVIDERS_OPENAI_API_KEY_FILE"`
	APIBase      string `json:"api_base" env:"PERSONAGEN_PROVIDERS_OPENAI_API_BASE"`
	Model        string `json:"model" env:"PERSONAGEN_PROVIDERS_OPENAI_MODEL"`
	Organization string `json:"organization,omitempty" env:"PERSONAGEN_PROVIDERS_OPENAI_ORGANIZATION"`
	Proxy        string `json:"proxy,omitempty" env:"PERSONAGEN_PROVIDERS_OPENAI_PROXY"`
}

type PersonaConfig struct {
	Extractor             string  `json:"extractor" env:"PERSONAGEN_PERSONA_EXTRACTOR"` // auto | llm | heuristic
	ChatModel             string  `json:"chat_model" env:"PERSONAGEN_PERSONA_CHAT_MODEL"`
	Temperature           float64 `json:"temperature" env:"PERSONAGEN_PERSONA_TEMPERATURE"`
	MaxTokens             int     `json:"max_tokens" env:"PERSONAGEN_PERSONA_MAX_TOKENS"`
	HistoryLimit          int     `json:"history_limit" env:"PERSONAGEN_PERSONA_HISTORY_LIMIT"`
	ExtractTimeoutSeconds int     `json:"extract_timeout_seconds" env:"PERSONAGEN_PERSONA_EXTRACT_TIMEOUT_SECONDS"`
	EmptyCheck            string  `json:"empty_check" env:"PERSONAGEN_PERSONA_EMPTY_CHECK"` // strict | legacy
	Jitter                bool    `json:"jitter" env:"PERSONAGEN_PERSONA_JITTER"`
}

type StoreConfig struct {
	Driver            string `json:"driver" env:"PERSONAGEN_STORE_DRIVER"` // sqlite | memory
	Path              string `json:"path" env:"PERSONAGEN_STORE_PATH"`
	SessionTTLMinutes int    `json:"session_ttl_minutes" env:"PERSONAGEN_STORE_SESSION_TTL_MINUTES"`
	// PurgeSchedule is a cron expression for removing expired sessions.
	// Empty falls back to a fixed interval derived from the TTL.
	PurgeSchedule string `json:"purge_schedule" env:"PERSONAGEN_STORE_PURGE_SCHEDULE"`
}

type SpeechConfig struct {
	Enabled      bool   `json:"enabled" env:"PERSONAGEN_SPEECH_ENABLED"`
	APIKey       string `json:"api_key" env:"PERSONAGEN_SPEECH_API_KEY"`
	APIBase      string `json:"api_base" env:"PERSONAGEN_SPEECH_API_BASE"`
	Model        string `json:"model" env:"PERSONAGEN_SPEECH_MODEL"`
	DefaultVoice string `json:"default_voice" env:"PERSONAGEN_SPEECH_DEFAULT_VOICE"`
}

type LoggingConfig struct {
	Mode  string `json:"mode" env:"PERSONAGEN_LOGGING_MODE"`
	Level string `json:"level" env:"PERSONAGEN_LOGGING_LEVEL"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         5000,
			UploadDir:    "~/.personagen/uploads",
			MaxUploadMB:  10,
			MaxPDFPages:  200,
			AllowOrigins: FlexibleStringSlice{"*"},
		},
		Providers: ProvidersConfig{
			Active: "gemini",
			Gemini: GeminiConfig{
				Model: "gemini-1.5-flash",
			},
			OpenRouter: ProviderConfig{},
			OpenAI:     OpenAIConfig{},
		},
		Persona: PersonaConfig{
			Extractor:             "auto",
			Temperature:           0.7,
			MaxTokens:             2048,
			HistoryLimit:          20,
			ExtractTimeoutSeconds: 90,
			EmptyCheck:            "strict",
			Jitter:                true,
		},
		Store: StoreConfig{
			Driver:            "sqlite",
			Path:              "~/.personagen/sessions.db",
			SessionTTLMinutes: 24 * 60,
			PurgeSchedule:     "*/10 * * * *",
		},
		Speech: SpeechConfig{
			Enabled:      false,
			APIBase:      "https://api.openai.com/v1",
			Model:        "tts-1",
			DefaultVoice: "alloy",
		},
		Logging: LoggingConfig{
			Mode:  "development",
			Level: "info",
		},
	}
}

func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("apply environment overrides: %w", err)
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

func (c *Config) ListenAddr() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) UploadDirPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return expandHome(c.Server.UploadDir)
}

func (c *Config) StorePath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return expandHome(c.Store.Path)
}

// MaxUploadBytes returns the upload limit in bytes, never less than 1 MiB.
func (c *Config) MaxUploadBytes() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	mb := c.Server.MaxUploadMB
	if mb <= 0 {
		mb = 1
	}
	return int64(mb) << 20
}

func (c *Config) HistoryLimit() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.Persona.HistoryLimit <= 0 {
		return 20
	}
	return c.Persona.HistoryLimit
}

func (c *Config) GetGeminiAPIBase() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return strings.TrimRight(strings.TrimSpace(c.Providers.Gemini.APIBase), "/")
}

func (c *Config) GetOpenRouterAPIBase() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.Providers.OpenRouter.APIBase != "" {
		return c.Providers.OpenRouter.APIBase
	}
	return "https://openrouter.ai/api/v1"
}

func expandHome(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, _ := os.UserHomeDir()
		if len(path) > 1 && path[1] == '/' {
			return home + path[1:]
		}
		return home
	}
	return path
}
