package persona

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dotsetgreg/personagen/pkg/heuristics"
	"github.com/dotsetgreg/personagen/pkg/logger"
)

// Reply modes.
const (
	ModeRemote   = "remote"
	ModeAnalysis = "analysis"
	ModePattern  = "pattern"
)

const (
	defaultWisdom     = "Every experience teaches us something valuable"
	defaultPhrase     = "I believe"
	defaultGreeting   = "Hello"
	defaultPatternKey = "general"
)

// Request is one user turn addressed to a persona.
type Request struct {
	Persona *Persona
	Message string
	// History overrides Persona.ConversationHistory as the context sent to a
	// remote responder.
	History  []Turn
	FullText string
}

type Reply struct {
	Response  string `json:"response"`
	Emotion   string `json:"emotion"`
	Reasoning string `json:"reasoning,omitempty"`
	Mode      string `json:"mode"`
}

// ChatResponder produces a reply with a hosted model.
type ChatResponder interface {
	Respond(ctx context.Context, req Request) (string, error)
}

// Generator answers user messages in character. A remote responder is tried
// first when set; local analysis and pattern modes never fail.
type Generator struct {
	remote       ChatResponder
	jitter       heuristics.Jitter
	historyLimit int
}

func NewGenerator(remote ChatResponder, j heuristics.Jitter, historyLimit int) *Generator {
	if j == nil {
		j = heuristics.NoJitter
	}
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Generator{remote: remote, jitter: j, historyLimit: historyLimit}
}

// Respond produces a reply for req. Remote and analysis replies are appended
// to the persona's conversation history.
func (g *Generator) Respond(ctx context.Context, req Request) Reply {
	p := req.Persona
	if p == nil {
		empty := Persona{}
		p = &empty
	}

	if g.remote != nil {
		text, err := g.remote.Respond(ctx, req)
		text = strings.TrimSpace(text)
		if err == nil && text != "" {
			g.record(p, req.Message, text)
			return Reply{Response: text, Emotion: "thoughtful", Mode: ModeRemote}
		}
		if err != nil {
			logger.WarnCF("persona", "Remote reply failed, answering locally", map[string]interface{}{
				"persona": p.Name,
				"error":   err.Error(),
			})
		}
	}

	if p.DocumentAnalysis != nil {
		r := analysisReply(p.DocumentAnalysis, req.Message)
		g.record(p, req.Message, r.Response)
		return r
	}
	return g.patternReply(p, req.Message)
}

func (g *Generator) record(p *Persona, message, reply string) {
	p.AppendHistory(g.historyLimit,
		Turn{Role: RoleUser, Content: message},
		Turn{Role: RoleAssistant, Content: reply},
	)
}

func containsAnyWord(lower string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func firstOr(items []string, fallback string) string {
	if len(items) > 0 && strings.TrimSpace(items[0]) != "" {
		return items[0]
	}
	return fallback
}

func analysisReply(a *heuristics.Analysis, message string) Reply {
	lower := strings.ToLower(message)
	vocab := a.CommunicationStyle.Vocabulary
	phrase := firstOr(vocab.CommonPhrases, defaultPhrase)
	greeting := firstOr(vocab.CulturalExpressions, defaultGreeting)
	wisdom := firstOr(a.KnowledgeBase.ExperientialWisdom, defaultWisdom)

	var response string
	if domain, ok := matchedDomain(a.KnowledgeBase.PrimaryExpertise, lower); ok {
		response = fmt.Sprintf("%s, in my experience with %s, I've learned that through %s, "+
			"the importance of dedication and continuous learning becomes clear. "+
			"Each challenge we face is an opportunity to grow and contribute meaningfully. %s.",
			phrase, strings.ToLower(domain.Domain),
			firstOr(domain.Achievements, "my work in this field"), wisdom)
	} else if containsAnyWord(lower, "life", "purpose", "meaning") {
		response = fmt.Sprintf("%s that %s. In my journey, I've discovered that %s. "+
			"This perspective shapes how I approach both challenges and opportunities in life.",
			phrase, firstOr(a.KnowledgeBase.PhilosophicalViews, "Life is about continuous learning and growth"), wisdom)
	} else if containsAnyWord(lower, "learn", "education", "knowledge") {
		response = fmt.Sprintf("%s, education and continuous learning are fundamental to human growth. "+
			"What specific area interests you most? I find that %s.", phrase, wisdom)
	} else {
		trait := "approaching challenges with curiosity and determination"
		if traits := a.PersonalityProfile.CoreTraits; len(traits) > 0 && traits[0].Manifestation != "" {
			trait = strings.ToLower(traits[0].Manifestation)
		}
		response = fmt.Sprintf("%s! That's a thoughtful question. Based on my experience, I believe that %s is essential. %s.",
			greeting, trait, wisdom)
	}

	cog := a.PersonalityProfile.CognitiveStyle
	return Reply{
		Response: response,
		Emotion:  analysisEmotion(a.PersonalityProfile.EmotionalProfile.DominantEmotions, lower),
		Reasoning: fmt.Sprintf("Based on my %s approach and %s, I consider multiple perspectives "+
			"and draw from personal experience when responding.",
			strings.ToLower(cog.ThinkingPattern), strings.ToLower(cog.DecisionMaking)),
		Mode: ModeAnalysis,
	}
}

func matchedDomain(domains []heuristics.DomainSignal, lower string) (heuristics.DomainSignal, bool) {
	for _, d := range domains {
		for _, topic := range d.KeyTopics {
			t := strings.ToLower(strings.TrimSpace(topic))
			if t != "" && strings.Contains(lower, t) {
				return d, true
			}
		}
	}
	return heuristics.DomainSignal{}, false
}

func analysisEmotion(dominant []string, lower string) string {
	has := func(e string) bool {
		for _, d := range dominant {
			if d == e {
				return true
			}
		}
		return false
	}
	switch {
	case containsAnyWord(lower, "challenge", "difficult"):
		if has("determined") {
			return "determined"
		}
		return "thoughtful"
	case containsAnyWord(lower, "dream", "future"):
		if has("optimistic") {
			return "inspiring"
		}
		return "encouraging"
	case containsAnyWord(lower, "learn", "knowledge"):
		return "enthusiastic"
	default:
		return firstOr(dominant, "thoughtful")
	}
}

func (g *Generator) patternReply(p *Persona, message string) Reply {
	lower := strings.ToLower(message)

	if key, rp, ok := matchPattern(p.ResponsePatterns, lower); ok {
		emotion := rp.Emotion
		if emotion == "" {
			emotion = "thoughtful"
		}
		logger.DebugCF("persona", "Response pattern matched", map[string]interface{}{"pattern": key})
		return Reply{
			Response:  heuristics.Pick(g.jitter, rp.Responses, ""),
			Emotion:   emotion,
			Reasoning: rp.Context,
			Mode:      ModePattern,
		}
	}

	style := p.SpeakingStyle
	switch {
	case containsAnyWord(lower, "dream", "goal", "aspiration"):
		return Reply{
			Response: fmt.Sprintf("%s, dreams and aspirations are what drive us forward. What dreams are you nurturing? Remember, %s",
				firstOr(style.Greetings, "My friend"), p.LifePhilosophy),
			Emotion: "encouraging",
			Mode:    ModePattern,
		}
	case containsAnyWord(lower, "learn", "education", "knowledge"):
		return Reply{
			Response: fmt.Sprintf("%s, learning is one of life's greatest gifts. What are you passionate about learning? %s.",
				firstOr(style.Expressions, defaultPhrase), firstOr(p.CoreBeliefs, defaultWisdom)),
			Emotion: "enthusiastic",
			Mode:    ModePattern,
		}
	case containsAnyWord(lower, "challenge", "difficult", "problem"):
		second := "In my experience"
		if len(style.Expressions) > 1 && strings.TrimSpace(style.Expressions[1]) != "" {
			second = style.Expressions[1]
		}
		return Reply{
			Response: fmt.Sprintf("Challenges are opportunities in disguise. %s, facing difficulties with courage and determination often leads to our greatest growth. %s",
				second, p.LifePhilosophy),
			Emotion: "encouraging",
			Mode:    ModePattern,
		}
	}

	greeting := heuristics.Pick(g.jitter, style.Greetings, defaultGreeting)
	expression := heuristics.Pick(g.jitter, style.Expressions, defaultPhrase)
	return Reply{
		Response: fmt.Sprintf("%s! %s, that's a thoughtful question. Based on my experiences, I believe that "+
			"approaching each situation with curiosity and openness leads to meaningful insights. %s",
			greeting, expression, p.LifePhilosophy),
		Emotion: "thoughtful",
		Mode:    ModePattern,
	}
}

// matchPattern returns the first specific pattern, in key order, whose key
// occurs in lower, falling back to the general entry. Patterns without
// responses never match.
func matchPattern(patterns map[string]ResponsePattern, lower string) (string, ResponsePattern, bool) {
	keys := make([]string, 0, len(patterns))
	for k := range patterns {
		if k != defaultPatternKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		rp := patterns[k]
		needle := strings.ToLower(strings.TrimSpace(k))
		if needle == "" || len(rp.Responses) == 0 {
			continue
		}
		if strings.Contains(lower, needle) {
			return k, rp, true
		}
	}
	if rp, ok := patterns[defaultPatternKey]; ok && len(rp.Responses) > 0 {
		return defaultPatternKey, rp, true
	}
	return "", ResponsePattern{}, false
}
