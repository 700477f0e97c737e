// Package persona builds, normalizes and role-plays biographical personas.
package persona

import (
	"encoding/json"

	"github.com/dotsetgreg/personagen/pkg/heuristics"
)

// Persona is the structured profile of a person that drives chat responses.
type Persona struct {
	Name                string                     `json:"name"`
	Title               string                     `json:"title"`
	Era                 string                     `json:"era"`
	Nationality         string                     `json:"nationality"`
	Traits              []Trait                    `json:"traits"`
	SpeakingStyle       SpeakingStyle              `json:"speakingStyle"`
	KnowledgeDomains    []KnowledgeDomain          `json:"knowledgeDomains"`
	CoreBeliefs         []string                   `json:"coreBeliefs"`
	LifePhilosophy      string                     `json:"lifePhilosophy"`
	ResponsePatterns    map[string]ResponsePattern `json:"responsePatterns"`
	ColorScheme         ColorScheme                `json:"colorScheme"`
	Avatar              *Avatar                    `json:"avatar"`
	DocumentAnalysis    *heuristics.Analysis       `json:"documentAnalysis,omitempty"`
	ConversationHistory []Turn                     `json:"conversationHistory,omitempty"`
}

type Trait struct {
	Name        string `json:"name"`
	Value       int    `json:"value"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

type SpeakingStyle struct {
	Tone        string   `json:"tone"`
	Vocabulary  []string `json:"vocabulary"`
	Expressions []string `json:"expressions"`
	Greetings   []string `json:"greetings"`
}

type KnowledgeDomain struct {
	Domain    string   `json:"domain"`
	Expertise int      `json:"expertise"`
	KeyTopics []string `json:"keyTopics"`
}

type ResponsePattern struct {
	Responses []string `json:"responses"`
	Emotion   string   `json:"emotion"`
	Context   string   `json:"context"`
}

type ColorScheme struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
}

type Avatar struct {
	Style      string `json:"style"`
	Background string `json:"background"`
}

// Turn is one entry of a conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultHistoryLimit bounds ConversationHistory.
const DefaultHistoryLimit = 20

// Clone returns a deep copy of p.
func (p Persona) Clone() Persona {
	data, err := json.Marshal(p)
	if err != nil {
		return p
	}
	var out Persona
	if err := json.Unmarshal(data, &out); err != nil {
		return p
	}
	return out
}

// AppendHistory adds turns and drops the oldest entries beyond limit.
func (p *Persona) AppendHistory(limit int, turns ...Turn) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	p.ConversationHistory = append(p.ConversationHistory, turns...)
	if n := len(p.ConversationHistory); n > limit {
		trimmed := make([]Turn, limit)
		copy(trimmed, p.ConversationHistory[n-limit:])
		p.ConversationHistory = trimmed
	}
}

// ToMap converts p into its loosely typed JSON form.
func (p Persona) ToMap() map[string]any {
	data, err := json.Marshal(p)
	if err != nil {
		return map[string]any{}
	}
	out := map[string]any{}
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]any{}
	}
	return out
}
