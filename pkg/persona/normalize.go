package persona

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dotsetgreg/personagen/pkg/heuristics"
)

// Defaults applied to list-shaped or missing color schemes.
const (
	DefaultPrimaryColor   = "#007bff"
	DefaultSecondaryColor = "#FFD700"
	DefaultAccentColor    = "#FFA500"
)

var (
	fenceOpen  = regexp.MustCompile("^```[a-zA-Z]*\\s*")
	fenceClose = regexp.MustCompile("```\\s*$")
)

// ParseModelOutput turns raw model text into a loosely typed persona object.
// Surrounding markdown code fences are removed; the remainder must be a JSON
// object.
func ParseModelOutput(text string) (map[string]any, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil, ErrEmptyResponse
	}
	s = fenceOpen.ReplaceAllString(s, "")
	s = strings.TrimSpace(fenceClose.ReplaceAllString(s, ""))
	if s == "" {
		return nil, ErrEmptyResponse
	}
	if !strings.HasPrefix(s, "{") {
		return nil, fmt.Errorf("%w: starts with %q", ErrNotJSON, preview(s, 40))
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJSON, err)
	}
	return out, nil
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// NormalizeMap coerces a loosely typed persona object into the structural
// shape every consumer relies on. It never fails and is idempotent. Fields it
// does not know about are carried through untouched.
func NormalizeMap(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw)+12)
	for k, v := range raw {
		out[k] = v
	}

	out["speakingStyle"] = normalizeSpeakingStyle(out["speakingStyle"])
	out["responsePatterns"] = normalizeResponsePatterns(out["responsePatterns"])
	out["colorScheme"] = normalizeColorScheme(out["colorScheme"])

	for _, key := range []string{"name", "title", "era", "nationality", "lifePhilosophy"} {
		out[key] = coerceString(out[key])
	}
	for _, key := range []string{"traits", "knowledgeDomains"} {
		out[key] = coerceObjectList(out[key])
	}
	out["coreBeliefs"] = coerceStringList(out["coreBeliefs"])
	if av, ok := out["avatar"].(map[string]any); ok {
		out["avatar"] = av
	} else {
		out["avatar"] = nil
	}
	return out
}

func normalizeSpeakingStyle(v any) map[string]any {
	ss := map[string]any{}
	if m, ok := v.(map[string]any); ok {
		for k, val := range m {
			ss[k] = val
		}
	}
	ss["tone"] = coerceString(ss["tone"])
	for _, key := range []string{"greetings", "expressions", "vocabulary"} {
		ss[key] = coerceStringList(ss[key])
	}
	if g, _ := ss["greetings"].([]any); len(g) == 0 {
		ss["greetings"] = []any{"Hello"}
	}
	return ss
}

func normalizeResponsePatterns(v any) map[string]any {
	entries := map[string]any{}
	switch rp := v.(type) {
	case map[string]any:
		for k, e := range rp {
			entries[k] = e
		}
	case []any:
		for i, e := range rp {
			entries[strconv.Itoa(i)] = e
		}
	}
	for k, e := range entries {
		pattern := map[string]any{}
		if m, ok := e.(map[string]any); ok {
			for mk, mv := range m {
				pattern[mk] = mv
			}
		} else {
			pattern["responses"] = e
		}
		pattern["responses"] = coerceStringList(pattern["responses"])
		pattern["emotion"] = coerceString(pattern["emotion"])
		pattern["context"] = coerceString(pattern["context"])
		entries[k] = pattern
	}
	return entries
}

// normalizeColorScheme maps a list positionally onto primary, secondary and
// accent with a default per missing slot and substitutes the default triple
// when the scheme is absent. Any other shape, a map included, is kept as is.
func normalizeColorScheme(v any) any {
	switch c := v.(type) {
	case nil:
		return map[string]any{
			"primary":   DefaultPrimaryColor,
			"secondary": DefaultSecondaryColor,
			"accent":    DefaultAccentColor,
		}
	case []any:
		cs := map[string]any{}
		for i, key := range []string{"primary", "secondary", "accent"} {
			s := ""
			if i < len(c) {
				s = coerceString(c[i])
			}
			if strings.TrimSpace(s) == "" {
				s = defaultColors[key]
			}
			cs[key] = s
		}
		return cs
	case map[string]any:
		cs := make(map[string]any, len(c))
		for k, val := range c {
			cs[k] = val
		}
		return cs
	default:
		return v
	}
}

var defaultColors = map[string]string{
	"primary":   DefaultPrimaryColor,
	"secondary": DefaultSecondaryColor,
	"accent":    DefaultAccentColor,
}

// colorSchemeOf reads the typed scheme out of a normalized value. The typed
// persona always carries three colors, so blank or missing slots take the
// defaults here even though the map form keeps them as sent.
func colorSchemeOf(v any) ColorScheme {
	cs, _ := v.(map[string]any)
	pick := func(key string) string {
		if s := strings.TrimSpace(coerceString(cs[key])); s != "" {
			return s
		}
		return defaultColors[key]
	}
	return ColorScheme{Primary: pick("primary"), Secondary: pick("secondary"), Accent: pick("accent")}
}

// coerceStringList applies the list coercion rule: null becomes an empty
// list, a string becomes a one element list and anything else is stringified.
func coerceStringList(v any) []any {
	switch val := v.(type) {
	case nil:
		return []any{}
	case string:
		return []any{val}
	case []string:
		out := make([]any, 0, len(val))
		for _, s := range val {
			out = append(out, s)
		}
		return out
	case []any:
		out := make([]any, 0, len(val))
		for _, item := range val {
			if item == nil {
				continue
			}
			out = append(out, stringify(item))
		}
		return out
	default:
		return []any{stringify(val)}
	}
}

func coerceObjectList(v any) []any {
	list, ok := v.([]any)
	if !ok {
		if m, isMap := v.(map[string]any); isMap {
			return []any{m}
		}
		return []any{}
	}
	out := make([]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return stringify(val)
	}
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool, int, int64:
		return fmt.Sprint(val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
}

// Normalize coerces raw into a typed Persona. Scores are rounded and clamped
// to [0, 100]; mistyped fields fall back to their zero values.
func Normalize(raw map[string]any) Persona {
	m := NormalizeMap(raw)
	p := Persona{
		Name:           strings.TrimSpace(m["name"].(string)),
		Title:          m["title"].(string),
		Era:            m["era"].(string),
		Nationality:    m["nationality"].(string),
		LifePhilosophy: m["lifePhilosophy"].(string),
		CoreBeliefs:    toStrings(m["coreBeliefs"]),
	}

	for _, item := range m["traits"].([]any) {
		t := item.(map[string]any)
		p.Traits = append(p.Traits, Trait{
			Name:        coerceString(t["name"]),
			Value:       coerceScore(t["value"]),
			Description: coerceString(t["description"]),
			Color:       coerceString(t["color"]),
		})
	}
	if p.Traits == nil {
		p.Traits = []Trait{}
	}

	ss := m["speakingStyle"].(map[string]any)
	p.SpeakingStyle = SpeakingStyle{
		Tone:        ss["tone"].(string),
		Vocabulary:  toStrings(ss["vocabulary"]),
		Expressions: toStrings(ss["expressions"]),
		Greetings:   toStrings(ss["greetings"]),
	}

	for _, item := range m["knowledgeDomains"].([]any) {
		d := item.(map[string]any)
		p.KnowledgeDomains = append(p.KnowledgeDomains, KnowledgeDomain{
			Domain:    coerceString(d["domain"]),
			Expertise: coerceScore(d["expertise"]),
			KeyTopics: toStrings(coerceStringList(d["keyTopics"])),
		})
	}
	if p.KnowledgeDomains == nil {
		p.KnowledgeDomains = []KnowledgeDomain{}
	}

	p.ResponsePatterns = map[string]ResponsePattern{}
	rp := m["responsePatterns"].(map[string]any)
	keys := make([]string, 0, len(rp))
	for k := range rp {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		e := rp[k].(map[string]any)
		p.ResponsePatterns[k] = ResponsePattern{
			Responses: toStrings(e["responses"]),
			Emotion:   e["emotion"].(string),
			Context:   e["context"].(string),
		}
	}

	p.ColorScheme = colorSchemeOf(m["colorScheme"])

	if av, ok := m["avatar"].(map[string]any); ok {
		p.Avatar = &Avatar{Style: coerceString(av["style"]), Background: coerceString(av["background"])}
	}

	if da, ok := m["documentAnalysis"].(map[string]any); ok {
		if data, err := json.Marshal(da); err == nil {
			var a heuristics.Analysis
			if json.Unmarshal(data, &a) == nil {
				p.DocumentAnalysis = &a
			}
		}
	}

	if hist, ok := m["conversationHistory"].([]any); ok {
		for _, item := range hist {
			if t, ok := item.(map[string]any); ok {
				p.ConversationHistory = append(p.ConversationHistory, Turn{
					Role:    coerceString(t["role"]),
					Content: coerceString(t["content"]),
				})
			}
		}
	}
	return p
}

func toStrings(v any) []string {
	list, _ := v.([]any)
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, coerceString(item))
	}
	return out
}

func coerceScore(v any) int {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case int:
		f = float64(val)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(val), "%"), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	// Clamp before converting: int() of a huge float is undefined.
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f >= 100 {
		return 100
	}
	return int(math.Round(f))
}
