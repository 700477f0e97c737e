package providers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const (
	authModeAPIKey      = "api_key"
	authModeBearerToken = "bearer_token"
)

// KeySource yields the API key behind one credential setting.
type KeySource interface {
	Key(ctx context.Context) (string, error)
	// Origin names the setting the key comes from, e.g. providers.gemini.api_key.
	Origin() string
}

type configKey struct {
	value  string
	origin string
}

// ConfigKey wraps a key set inline in the config file or its env override.
func ConfigKey(value, origin string) KeySource {
	return configKey{value: strings.TrimSpace(value), origin: strings.TrimSpace(origin)}
}

func (k configKey) Key(context.Context) (string, error) {
	if err := checkKey(k.value, k.Origin()); err != nil {
		return "", err
	}
	return k.value, nil
}

func (k configKey) Origin() string {
	return valueOrDefault(k.origin, "api_key")
}

type fileKey struct {
	path   string
	origin string
}

// KeyFile reads the key from path on every request so rotated keys apply
// without a restart.
func KeyFile(path, origin string) KeySource {
	return fileKey{path: strings.TrimSpace(path), origin: strings.TrimSpace(origin)}
}

func (k fileKey) Key(context.Context) (string, error) {
	path := expandHome(k.path)
	if path == "" {
		return "", fmt.Errorf("%s: key file path is empty", k.Origin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%s: read key file: %w", k.Origin(), err)
	}
	key := strings.TrimSpace(string(data))
	if err := checkKey(key, k.Origin()+" ("+path+")"); err != nil {
		return "", err
	}
	return key, nil
}

func (k fileKey) Origin() string {
	return valueOrDefault(k.origin, "api_key_file")
}

// keyPrefixes recognizes the published key formats. sk-or- must come before sk-.
var keyPrefixes = []struct {
	prefix   string
	provider string
}{
	{"sk-or-", ProviderOpenRouter},
	{"AIza", ProviderGemini},
	{"sk-", ProviderOpenAI},
}

// checkKey rejects keys that cannot authenticate: blank values, unfilled
// template values such as "<GEMINI_API_KEY>" or "${OPENAI_API_KEY}", and keys
// whose format belongs to a different provider than the setting they sit in.
func checkKey(key, origin string) error {
	switch {
	case key == "":
		return fmt.Errorf("%s is empty", origin)
	case strings.HasPrefix(key, "<") && strings.HasSuffix(key, ">"),
		strings.HasPrefix(key, "${") && strings.HasSuffix(key, "}"),
		strings.HasPrefix(key, "$") && !strings.ContainsAny(key[1:], "$ "):
		return fmt.Errorf("%s looks like an unfilled placeholder", origin)
	case strings.ContainsAny(key, " \t\r\n"):
		return fmt.Errorf("%s contains whitespace", origin)
	}

	want := keyOwner(origin)
	if want == "" {
		return nil
	}
	for _, p := range keyPrefixes {
		if strings.HasPrefix(key, p.prefix) {
			if p.provider != want {
				return fmt.Errorf("%s holds a key in %s format", origin, p.provider)
			}
			return nil
		}
	}
	return nil
}

// keyOwner maps a setting name onto the provider whose key it must hold.
// Speech calls the OpenAI audio API.
func keyOwner(origin string) string {
	if strings.HasPrefix(origin, "speech.") {
		return ProviderOpenAI
	}
	rest, ok := strings.CutPrefix(origin, "providers.")
	if !ok {
		return ""
	}
	name, _, _ := strings.Cut(rest, ".")
	switch name {
	case ProviderGemini, ProviderOpenRouter, ProviderOpenAI:
		return name
	}
	return ""
}

// AuthStrategy applies request auth for provider HTTP calls.
type AuthStrategy interface {
	Mode() string
	Apply(ctx context.Context, req *http.Request) error
}

type bearerAuth struct {
	mode string
	key  KeySource
}

// NewAPIKeyAuth sends a provider API key as a bearer token, which is how the
// chat-completions APIs accept it.
func NewAPIKeyAuth(key KeySource) AuthStrategy {
	return bearerAuth{mode: authModeAPIKey, key: key}
}

func NewBearerTokenAuth(key KeySource) AuthStrategy {
	return bearerAuth{mode: authModeBearerToken, key: key}
}

func (a bearerAuth) Mode() string {
	return a.mode
}

func (a bearerAuth) Apply(ctx context.Context, req *http.Request) error {
	if a.key == nil {
		return fmt.Errorf("no API key source configured")
	}
	key, err := a.key.Key(ctx)
	if err != nil {
		return fmt.Errorf("resolve API key: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+key)
	return nil
}

func valueOrDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func expandHome(path string) string {
	rest, ok := strings.CutPrefix(strings.TrimSpace(path), "~")
	if !ok || (rest != "" && rest[0] != '/') {
		return strings.TrimSpace(path)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return strings.TrimSpace(path)
	}
	return filepath.Join(home, rest)
}
