package speech

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dotsetgreg/personagen/pkg/providers"
)

func TestClientSynthesize(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/speech" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Fatalf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3audio"))
	}))
	defer server.Close()

	c, err := NewClient(Options{
		APIBase: server.URL + "/v1/",
		Auth:    providers.NewBearerTokenAuth(providers.ConfigKey("sk-test", "test")),
	})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	audio, err := c.Synthesize(context.Background(), "  Hello there  ", "")
	if err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}
	if string(audio.Data) != "ID3audio" || audio.ContentType != "audio/mpeg" || audio.Voice != DefaultVoice {
		t.Fatalf("unexpected audio %+v", audio)
	}
	if got["input"] != "Hello there" || got["model"] != DefaultModel || got["voice"] != DefaultVoice {
		t.Fatalf("unexpected request body %v", got)
	}
}

func TestClientSynthesizeErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	c, err := NewClient(Options{APIBase: server.URL, Auth: providers.NewBearerTokenAuth(providers.ConfigKey("k", "test"))})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	if _, err := c.Synthesize(context.Background(), " ", "nova"); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	_, err = c.Synthesize(context.Background(), "hi", "nova")
	if err == nil || !strings.Contains(err.Error(), "status=429") || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("expected upstream error, got %v", err)
	}

	if _, err := NewClient(Options{}); err == nil {
		t.Fatalf("expected error without auth")
	}
	if _, err := (Disabled{}).Synthesize(context.Background(), "hi", ""); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}

func TestVoiceFor(t *testing.T) {
	tests := map[string]string{
		"Indian":        "echo",
		"South African": "onyx",
		"British":       "fable",
		"German-Swiss":  "shimmer",
		"":              "shimmer",
	}
	for nationality, want := range tests {
		if got := VoiceFor(nationality, "shimmer"); got != want {
			t.Fatalf("VoiceFor(%q) = %q, want %q", nationality, got, want)
		}
	}
	if got := VoiceFor("", ""); got != DefaultVoice {
		t.Fatalf("expected default voice, got %q", got)
	}
}
