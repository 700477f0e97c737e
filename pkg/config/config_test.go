package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// TestDefaultConfig_Server verifies relay defaults
func TestDefaultConfig_Server(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Host != "0.0.0.0" {
		t.Error("Server host should have default value")
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("Server port = %d, want 5000", cfg.Server.Port)
	}
	if len(cfg.Server.AllowOrigins) != 1 || cfg.Server.AllowOrigins[0] != "*" {
		t.Errorf("AllowOrigins = %v, want [*]", cfg.Server.AllowOrigins)
	}
}

// TestDefaultConfig_Persona verifies persona defaults
func TestDefaultConfig_Persona(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Persona.HistoryLimit != 20 {
		t.Errorf("HistoryLimit = %d, want 20", cfg.Persona.HistoryLimit)
	}
	if cfg.Persona.Extractor != "auto" {
		t.Errorf("Extractor = %q, want auto", cfg.Persona.Extractor)
	}
	if cfg.Persona.EmptyCheck != "strict" {
		t.Errorf("EmptyCheck = %q, want strict", cfg.Persona.EmptyCheck)
	}
	if cfg.Persona.Temperature == 0 {
		t.Error("Temperature should have default value")
	}
}

// TestDefaultConfig_Providers verifies credentials are empty by default
func TestDefaultConfig_Providers(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Providers.Gemini.APIKey != "" {
		t.Error("Gemini API key should be empty by default")
	}
	if cfg.Providers.OpenRouter.APIKey != "" {
		t.Error("OpenRouter API key should be empty by default")
	}
	if cfg.Providers.OpenAI.APIKey != "" {
		t.Error("OpenAI API key should be empty by default")
	}
	if cfg.Providers.Gemini.Model == "" {
		t.Error("Gemini model should have default value")
	}
}

func TestHistoryLimitFallsBackToTwenty(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Persona.HistoryLimit = 0
	if got := cfg.HistoryLimit(); got != 20 {
		t.Fatalf("HistoryLimit() = %d, want 20", got)
	}
}

func TestMaxUploadBytes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.MaxUploadMB = 3
	if got := cfg.MaxUploadBytes(); got != 3<<20 {
		t.Fatalf("MaxUploadBytes() = %d", got)
	}
	cfg.Server.MaxUploadMB = 0
	if got := cfg.MaxUploadBytes(); got != 1<<20 {
		t.Fatalf("MaxUploadBytes() with zero = %d", got)
	}
}

func TestSaveConfig_FilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file permission bits are not enforced on Windows")
	}

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.json")

	cfg := DefaultConfig()
	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}

	perm := info.Mode().Perm()
	if perm != 0600 {
		t.Errorf("config file has permission %04o, want 0600", perm)
	}
}

func TestLoadConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := DefaultConfig()
	cfg.Server.Port = 6123
	cfg.Persona.EmptyCheck = "legacy"
	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Server.Port != 6123 {
		t.Fatalf("port = %d, want 6123", loaded.Server.Port)
	}
	if loaded.Persona.EmptyCheck != "legacy" {
		t.Fatalf("empty_check = %q, want legacy", loaded.Persona.EmptyCheck)
	}
}

func TestLoadConfig_AllowOriginsAcceptsSingleString(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"server":{"allow_origins":"http://localhost:3000"}}`), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if len(cfg.Server.AllowOrigins) != 1 || cfg.Server.AllowOrigins[0] != "http://localhost:3000" {
		t.Fatalf("AllowOrigins = %v", cfg.Server.AllowOrigins)
	}
	if cfg.Server.Port != 5000 {
		t.Fatalf("unset fields should keep defaults, port = %d", cfg.Server.Port)
	}
}

func TestLoadConfig_RejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"server":`), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadConfig_EnvOverridesWithoutFile(t *testing.T) {
	t.Setenv("PERSONAGEN_PROVIDERS_GEMINI_MODEL", "gemini-env")
	t.Setenv("PERSONAGEN_SERVER_PORT", "7001")
	path := filepath.Join(t.TempDir(), "missing-config.json")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if got := cfg.Providers.Gemini.Model; got != "gemini-env" {
		t.Fatalf("expected env override model, got %q", got)
	}
	if got := cfg.Server.Port; got != 7001 {
		t.Fatalf("expected env override port, got %d", got)
	}
}

func TestLoadConfig_ProviderEnvOverrides(t *testing.T) {
	t.Setenv("PERSONAGEN_PROVIDERS_ACTIVE", "openai")
	t.Setenv("PERSONAGEN_PROVIDERS_OPENAI_API_KEY", "sk-openai")
	t.Setenv("PERSONAGEN_STORE_DRIVER", "memory")
	t.Setenv("PERSONAGEN_STORE_PURGE_SCHEDULE", "0 3 * * *")
	path := filepath.Join(t.TempDir(), "missing-config.json")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if got := cfg.Providers.Active; got != "openai" {
		t.Fatalf("expected provider openai, got %q", got)
	}
	if got := cfg.Providers.OpenAI.APIKey; got != "sk-openai" {
		t.Fatalf("expected openai api key from env, got %q", got)
	}
	if got := cfg.Store.Driver; got != "memory" {
		t.Fatalf("expected memory store driver, got %q", got)
	}
	if got := cfg.Store.PurgeSchedule; got != "0 3 * * *" {
		t.Fatalf("expected purge schedule from env, got %q", got)
	}
}

func TestDefaultConfig_PurgeSchedule(t *testing.T) {
	if got := DefaultConfig().Store.PurgeSchedule; got != "*/10 * * * *" {
		t.Fatalf("default purge schedule = %q", got)
	}
}
