package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dotsetgreg/personagen/pkg/config"
	"github.com/dotsetgreg/personagen/pkg/heuristics"
	"github.com/dotsetgreg/personagen/pkg/logger"
	"github.com/dotsetgreg/personagen/pkg/persona"
	"github.com/dotsetgreg/personagen/pkg/providers"
	"github.com/dotsetgreg/personagen/pkg/speech"
)

var (
	version   = "dev"
	gitCommit string
	buildTime string
	goVersion string
)

const appName = "personagen"

// formatVersion returns the version string with optional git commit
func formatVersion() string {
	v := version
	if gitCommit != "" {
		v += fmt.Sprintf(" (git: %s)", gitCommit)
	}
	return v
}

// formatBuildInfo returns build time and go version info
func formatBuildInfo() (build string, goVer string) {
	if buildTime != "" {
		build = buildTime
	}
	goVer = goVersion
	if goVer == "" {
		goVer = runtime.Version()
	}
	return
}

func printVersion() {
	fmt.Printf("%s %s\n", appName, formatVersion())
	build, goVer := formatBuildInfo()
	if build != "" {
		fmt.Printf("  Build: %s\n", build)
	}
	if goVer != "" {
		fmt.Printf("  Go: %s\n", goVer)
	}
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not load .env: %v\n", err)
	}
	if err := executeCLI(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Sync()
}

func getConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".personagen", "config.json")
}

// loadConfig reads the config at path (the default path when empty) and
// configures the logger from it.
func loadConfig(path string) (*config.Config, error) {
	if strings.TrimSpace(path) == "" {
		path = getConfigPath()
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.Logging.Mode)
	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	return cfg, nil
}

// app holds the collaborators shared by serve, analyze and chat.
type app struct {
	cfg      *config.Config
	provider providers.LLMProvider
	builder  *persona.Builder
	remote   persona.ChatResponder
	speech   speech.Synthesizer
	jitter   heuristics.Jitter
}

func newApp(cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, jitter: heuristics.NoJitter}
	if cfg.Persona.Jitter {
		a.jitter = heuristics.NewRandomJitter(time.Now().UnixNano())
	}

	mode := strings.ToLower(strings.TrimSpace(cfg.Persona.Extractor))
	if mode != "heuristic" {
		provider, err := providers.CreateProvider(cfg)
		switch {
		case err == nil:
			a.provider = provider
		case mode == "llm":
			return nil, fmt.Errorf("extractor %q needs a provider: %w", mode, err)
		case errors.Is(err, providers.ErrNotConfigured):
			logger.InfoCF("cli", "No LLM provider configured, using heuristics only", nil)
		default:
			logger.WarnCF("cli", "LLM provider unavailable, using heuristics only", map[string]interface{}{
				"provider": providers.ActiveProviderName(cfg),
				"error":    err.Error(),
			})
		}
	}

	extractors, err := selectExtractors(mode, a.provider, cfg, a.jitter)
	if err != nil {
		return nil, err
	}
	opts := []persona.BuilderOption{
		persona.WithJitter(a.jitter),
		persona.WithEmptinessRule(persona.ParseEmptinessRule(cfg.Persona.EmptyCheck)),
	}
	if secs := cfg.Persona.ExtractTimeoutSeconds; secs > 0 {
		opts = append(opts, persona.WithExtractTimeout(time.Duration(secs)*time.Second))
	}
	a.builder = persona.NewBuilder(extractors, opts...)

	if a.provider != nil {
		a.remote = persona.NewProviderResponder(a.provider, cfg.Persona.ChatModel, cfg.Persona.Temperature, cfg.Persona.MaxTokens)
	}

	synth, err := newSynthesizer(cfg)
	if err != nil {
		return nil, err
	}
	a.speech = synth
	return a, nil
}

func selectExtractors(mode string, provider providers.LLMProvider, cfg *config.Config, j heuristics.Jitter) ([]persona.Extractor, error) {
	var llm persona.Extractor
	if provider != nil {
		llm = persona.NewLLMExtractor(provider, "", cfg.Persona.Temperature, cfg.Persona.MaxTokens)
	}
	analysis := persona.AnalysisExtractor{Jitter: j}

	switch mode {
	case "", "auto":
		if llm == nil {
			return []persona.Extractor{analysis}, nil
		}
		return []persona.Extractor{llm, analysis}, nil
	case "llm":
		if llm == nil {
			return nil, fmt.Errorf("extractor %q needs a configured provider", mode)
		}
		return []persona.Extractor{llm}, nil
	case "heuristic":
		return []persona.Extractor{analysis}, nil
	default:
		return nil, fmt.Errorf("unknown persona extractor %q (want auto, llm or heuristic)", mode)
	}
}

func newSynthesizer(cfg *config.Config) (speech.Synthesizer, error) {
	if !cfg.Speech.Enabled {
		return speech.Disabled{}, nil
	}
	key := strings.TrimSpace(cfg.Speech.APIKey)
	label := "speech.api_key"
	if key == "" {
		key = strings.TrimSpace(cfg.Providers.OpenAI.APIKey)
		label = "providers.openai.api_key"
	}
	if key == "" {
		return nil, fmt.Errorf("speech is enabled but no API key is set (speech.api_key or providers.openai.api_key)")
	}
	client, err := speech.NewClient(speech.Options{
		APIBase:      cfg.Speech.APIBase,
		Model:        cfg.Speech.Model,
		DefaultVoice: cfg.Speech.DefaultVoice,
		Auth:         providers.NewBearerTokenAuth(providers.ConfigKey(key, label)),
	})
	if err != nil {
		return nil, fmt.Errorf("create speech client: %w", err)
	}
	return client, nil
}
