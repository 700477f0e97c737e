// Package speech turns persona replies into audio through an OpenAI-compatible
// text-to-speech endpoint.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dotsetgreg/personagen/pkg/providers"
)

const (
	DefaultAPIBase = "https://api.openai.com/v1"
	DefaultModel   = "tts-1"
	DefaultVoice   = "alloy"

	// MaxInputChars is the upstream limit on a single utterance.
	MaxInputChars = 4096
)

var (
	ErrDisabled   = errors.New("speech synthesis is disabled")
	ErrEmptyInput = errors.New("nothing to synthesize")
)

// Audio is one synthesized utterance.
type Audio struct {
	Data        []byte
	ContentType string
	Voice       string
}

// Synthesizer produces audio for a piece of text.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) (*Audio, error)
}

type Options struct {
	APIBase      string
	Model        string
	DefaultVoice string
	Auth         providers.AuthStrategy
	HTTPClient   *http.Client
}

// Client calls POST {base}/audio/speech.
type Client struct {
	apiBase      string
	model        string
	defaultVoice string
	auth         providers.AuthStrategy
	httpClient   *http.Client
}

func NewClient(opts Options) (*Client, error) {
	if opts.Auth == nil {
		return nil, fmt.Errorf("speech client requires an auth strategy")
	}
	base := strings.TrimRight(strings.TrimSpace(opts.APIBase), "/")
	if base == "" {
		base = DefaultAPIBase
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	voice := strings.TrimSpace(opts.DefaultVoice)
	if voice == "" {
		voice = DefaultVoice
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{apiBase: base, model: model, defaultVoice: voice, auth: opts.Auth, httpClient: client}, nil
}

func (c *Client) Synthesize(ctx context.Context, text, voice string) (*Audio, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}
	if r := []rune(text); len(r) > MaxInputChars {
		text = string(r[:MaxInputChars])
	}
	voice = strings.TrimSpace(voice)
	if voice == "" {
		voice = c.defaultVoice
	}

	body, err := json.Marshal(map[string]interface{}{
		"model":           c.model,
		"input":           text,
		"voice":           voice,
		"response_format": "mp3",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal speech request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/audio/speech", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create speech request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if err := c.auth.Apply(ctx, req); err != nil {
		return nil, fmt.Errorf("apply speech auth: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send speech request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read speech response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("speech request failed: status=%d error=%s", resp.StatusCode, providers.ExtractAPIError(data))
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("speech response was empty")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	return &Audio{Data: data, ContentType: contentType, Voice: voice}, nil
}

// Disabled is the Synthesizer used when speech is turned off.
type Disabled struct{}

func (Disabled) Synthesize(context.Context, string, string) (*Audio, error) {
	return nil, ErrDisabled
}

var nationalityVoices = []struct {
	keyword string
	voice   string
}{
	{"indian", "echo"},
	{"british", "fable"},
	{"english", "fable"},
	{"south african", "onyx"},
	{"african", "onyx"},
	{"american", "alloy"},
}

// VoiceFor picks a voice that suits a persona's nationality, or fallback.
func VoiceFor(nationality, fallback string) string {
	n := strings.ToLower(nationality)
	for _, entry := range nationalityVoices {
		if strings.Contains(n, entry.keyword) {
			return entry.voice
		}
	}
	if fallback == "" {
		return DefaultVoice
	}
	return fallback
}
