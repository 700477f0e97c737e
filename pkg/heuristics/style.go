package heuristics

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Vocabulary returns five characteristic words for the document's field.
func Vocabulary(text string) []string {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "science", "research"):
		return []string{"research", "discovery", "analysis", "innovation", "methodology"}
	case containsAny(lower, "business", "entrepreneur"):
		return []string{"strategy", "growth", "innovation", "leadership", "vision"}
	case containsAny(lower, "art", "creative"):
		return []string{"creativity", "inspiration", "expression", "beauty", "vision"}
	case containsAny(lower, "education", "teaching"):
		return []string{"learning", "knowledge", "wisdom", "growth", "development"}
	default:
		return []string{"experience", "understanding", "perspective", "insight", "growth"}
	}
}

// SpecializedTerms collects the terms of every field the document touches.
func SpecializedTerms(text string) []string {
	lower := strings.ToLower(text)
	var terms []string
	if containsAny(lower, "science", "research", "experiment", "technology") {
		terms = append(terms, "scientific method", "research", "analysis", "discovery", "innovation")
	}
	if containsAny(lower, "business", "company", "market", "strategy") {
		terms = append(terms, "strategy", "leadership", "innovation", "growth", "vision")
	}
	if containsAny(lower, "art", "creative", "design", "music") {
		terms = append(terms, "creativity", "inspiration", "expression", "beauty", "artistic vision")
	}
	if containsAny(lower, "teach", "education", "student", "learn") {
		terms = append(terms, "learning", "knowledge", "wisdom", "growth", "mentorship")
	}
	if containsAny(lower, "philosophy", "spiritual", "meaning", "purpose") {
		terms = append(terms, "wisdom", "purpose", "meaning", "truth", "enlightenment")
	}
	if len(terms) == 0 {
		return []string{"experience", "understanding", "perspective", "insight", "growth"}
	}
	return dedupe(terms)
}

var (
	expressionPatterns = []string{
		"i believe", "in my experience", "i think", "i feel", "i learned",
		"what i found", "my understanding", "i discovered", "i realized",
	}
	commonPhrasePatterns = []string{
		"i believe", "in my experience", "let me tell you", "you see", "i think",
		"it seems to me", "from my perspective", "i have learned", "i discovered",
		"what i found", "my understanding", "i realize", "i came to understand",
	}
	DefaultExpressions = []string{"I believe", "In my view", "From my perspective", "I've learned that"}
)

func titledPhrases(text string, patterns []string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			out = append(out, titleCase(p))
		}
	}
	if len(out) == 0 {
		return append([]string(nil), DefaultExpressions...)
	}
	return dedupe(out)
}

// Expressions returns the title-cased first-person phrases present in text.
func Expressions(text string) []string {
	return titledPhrases(text, expressionPatterns)
}

// CommonPhrases is the wider phrase list used by document analysis.
func CommonPhrases(text string) []string {
	return titledPhrases(text, commonPhrasePatterns)
}

type culture struct {
	name      string
	keywords  []string
	greetings []string
}

// cultures is in priority order; the first match wins.
var cultures = []culture{
	{"Indian", []string{"namaste", "indian", "india", "dharma"}, []string{"Namaste", "My friend", "Dear friend"}},
	{"American", []string{"american", "america", "usa"}, []string{"Hello there", "Good to meet you", "Hey there"}},
	{"British", []string{"british", "england", "uk"}, []string{"Good day", "Pleased to meet you", "How do you do"}},
	{"African", []string{"african", "africa", "ubuntu"}, []string{"Ubuntu", "My brother", "My sister"}},
}

var (
	DefaultGreetings = []string{"Hello", "Good to meet you", "Welcome", "Greetings"}
	PersonaGreetings = []string{"Hello", "Good to meet you", "Welcome", "I'm pleased to speak with you"}
)

// Greetings returns culture-specific greetings inferred from keywords.
func Greetings(text string) []string {
	lower := strings.ToLower(text)
	for _, c := range cultures {
		if containsAny(lower, c.keywords...) {
			return append([]string(nil), c.greetings...)
		}
	}
	return append([]string(nil), DefaultGreetings...)
}

var nationalities = []struct {
	name     string
	keywords []string
}{
	{"Indian", []string{"indian", "india"}},
	{"American", []string{"american", "america", "usa"}},
	{"British", []string{"british", "england", "uk"}},
	{"European", []string{"european", "europe"}},
	{"African", []string{"african", "africa"}},
	{"Asian", []string{"asian", "asia"}},
}

const DefaultNationality = "Global Citizen"

// Nationality infers a nationality label from keywords.
func Nationality(text string) string {
	lower := strings.ToLower(text)
	for _, n := range nationalities {
		if containsAny(lower, n.keywords...) {
			return n.name
		}
	}
	return DefaultNationality
}

var culturalBackgrounds = []struct {
	name     string
	keywords []string
}{
	{"Indian", []string{"indian", "india", "namaste", "dharma", "karma", "sanskrit"}},
	{"American", []string{"american", "america", "usa", "united states"}},
	{"British", []string{"british", "england", "uk", "britain"}},
	{"European", []string{"european", "europe", "european union"}},
	{"African", []string{"african", "africa", "ubuntu"}},
	{"Asian", []string{"asian", "asia", "eastern"}},
	{"Middle Eastern", []string{"middle east", "arab", "persian"}},
}

// CulturalBackground is the broader variant of Nationality used by document
// analysis. It returns "Unknown" when nothing matches.
func CulturalBackground(text string) string {
	lower := strings.ToLower(text)
	for _, c := range culturalBackgrounds {
		if containsAny(lower, c.keywords...) {
			return c.name
		}
	}
	return "Unknown"
}

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

const DefaultEra = "Contemporary"

// Era infers the subject's era from century keywords, then from the earliest
// four digit year mentioned.
func Era(text string) string {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "19th century", "1800s"):
		return "19th Century"
	case containsAny(lower, "20th century", "1900s"):
		return "20th Century"
	case containsAny(lower, "21st century", "2000s", "modern"):
		return "21st Century"
	}
	var years []int
	for _, y := range yearPattern.FindAllString(text, -1) {
		if n, err := strconv.Atoi(y); err == nil {
			years = append(years, n)
		}
	}
	if len(years) == 0 {
		return DefaultEra
	}
	sort.Ints(years)
	if years[0] < 2000 {
		return "20th Century"
	}
	return "21st Century"
}

// CommunicationTone classifies the emotional register of text.
func CommunicationTone(text string) string {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "passion", "excit", "enthus", "love"):
		return "passionate and energetic"
	case containsAny(lower, "calm", "peace", "serene", "quiet"):
		return "calm and peaceful"
	case containsAny(lower, "inspire", "motivate", "encourage"):
		return "inspiring and motivational"
	case containsAny(lower, "wise", "thoughtful", "reflect"):
		return "wise and reflective"
	default:
		return "thoughtful and measured"
	}
}

// Formality derives formality and vocabulary complexity from average
// sentence length in words.
func Formality(text string) (formality, complexity string) {
	sents := sentences(text, 5)
	if len(sents) == 0 {
		return "moderately formal", "accessible"
	}
	words := 0
	for _, s := range sents {
		words += len(strings.Fields(s))
	}
	avg := float64(words) / float64(len(sents))
	switch {
	case avg > 25:
		return "formal", "complex and detailed"
	case avg < 12:
		return "informal", "simple and direct"
	default:
		return "moderately formal", "accessible"
	}
}

// EmotionalProfile summarizes the subject's emotional register.
type EmotionalProfile struct {
	DominantEmotions []string `json:"dominantEmotions"`
	EmotionalRange   int      `json:"emotionalRange"`
	EmpathyLevel     int      `json:"empathyLevel"`
	StressResponse   string   `json:"stressResponse"`
}

var emotionRules = []struct {
	emotion  string
	keywords []string
}{
	{"optimistic", []string{"optimist", "positive", "hope", "bright"}},
	{"compassionate", []string{"compassion", "empathy", "care", "love"}},
	{"determined", []string{"determined", "focused", "driven", "persistent"}},
	{"curious", []string{"curious", "wonder", "explore", "question"}},
	{"peaceful", []string{"calm", "peaceful", "serene", "balanced"}},
}

// AnalyzeEmotions builds the emotional profile. Range and empathy use j.
func AnalyzeEmotions(text string, j Jitter) EmotionalProfile {
	j = jitterOrNone(j)
	lower := strings.ToLower(text)
	var emotions []string
	for _, r := range emotionRules {
		if containsAny(lower, r.keywords...) {
			emotions = append(emotions, r.emotion)
		}
	}
	if len(emotions) == 0 {
		emotions = []string{"thoughtful", "balanced", "genuine"}
	}
	return EmotionalProfile{
		DominantEmotions: emotions,
		EmotionalRange:   75 + j.Intn(25),
		EmpathyLevel:     80 + j.Intn(20),
		StressResponse:   "Approaches challenges with calm determination and strategic thinking",
	}
}

// CognitiveStyle describes how the subject reasons.
type CognitiveStyle struct {
	ThinkingPattern string `json:"thinkingPattern"`
	DecisionMaking  string `json:"decisionMaking"`
	ProblemSolving  string `json:"problemSolving"`
	LearningStyle   string `json:"learningStyle"`
}

func AnalyzeCognition(text string) CognitiveStyle {
	lower := strings.ToLower(text)
	cs := CognitiveStyle{
		ThinkingPattern: "analytical and systematic",
		DecisionMaking:  "careful consideration of options",
		ProblemSolving:  "methodical approach to challenges",
		LearningStyle:   "continuous learning through experience, reflection, and interaction with others",
	}
	switch {
	case containsAny(lower, "creative", "innovative", "artistic", "imagination"):
		cs.ThinkingPattern = "creative and innovative"
		cs.ProblemSolving = "creative problem-solving with unique perspectives"
	case containsAny(lower, "logical", "rational", "systematic", "analytical"):
		cs.ThinkingPattern = "logical and systematic"
		cs.DecisionMaking = "data-driven decision making with careful analysis"
	case containsAny(lower, "intuitive", "instinct", "feeling", "sense"):
		cs.ThinkingPattern = "intuitive and insightful"
		cs.DecisionMaking = "intuition-guided with emotional intelligence"
	}
	return cs
}
