package heuristics

import "strings"

// Analysis is the structured reading of a biographical document. It backs the
// analysis mode of response generation.
type Analysis struct {
	MainCharacter      MainCharacter               `json:"mainCharacter"`
	PersonalityProfile PersonalityProfile          `json:"personalityProfile"`
	CommunicationStyle CommunicationStyle          `json:"communicationStyle"`
	KnowledgeBase      KnowledgeBase               `json:"knowledgeBase"`
	LifeContext        LifeContext                 `json:"lifeContext"`
	ResponsePatterns   map[string]AnalysisPattern `json:"responsePatterns"`
}

type MainCharacter struct {
	Name     string   `json:"name"`
	FullName string   `json:"fullName"`
	Titles   []string `json:"titles"`
	Aliases  []string `json:"aliases"`
}

type PersonalityProfile struct {
	CoreTraits       []TraitSignal    `json:"coreTraits"`
	EmotionalProfile EmotionalProfile `json:"emotionalProfile"`
	CognitiveStyle   CognitiveStyle   `json:"cognitiveStyle"`
}

type CommunicationStyle struct {
	Tone       string          `json:"tone"`
	Formality  string          `json:"formality"`
	Vocabulary VocabularyStyle `json:"vocabulary"`
}

type VocabularyStyle struct {
	Complexity          string   `json:"complexity"`
	SpecializedTerms    []string `json:"specializedTerms"`
	CommonPhrases       []string `json:"commonPhrases"`
	CulturalExpressions []string `json:"culturalExpressions"`
}

type KnowledgeBase struct {
	PrimaryExpertise   []DomainSignal `json:"primaryExpertise"`
	ExperientialWisdom []string       `json:"experientialWisdom"`
	PhilosophicalViews []string       `json:"philosophicalViews"`
}

type LifeContext struct {
	Era                string `json:"era"`
	CulturalBackground string `json:"culturalBackground"`
}

type AnalysisPattern struct {
	TypicalResponses []string `json:"typicalResponses"`
	Reasoning        string   `json:"reasoning"`
	EmotionalTone    string   `json:"emotionalTone"`
	Examples         []string `json:"examples"`
}

// Analyze reads text into an Analysis. The only non-determinism is in padded
// trait strengths and the emotional range, both drawn from j.
func Analyze(text string, j Jitter) *Analysis {
	fullName := FrequentName(text)
	if fullName == "" {
		for _, m := range selfIntroPattern.FindAllStringSubmatch(text, -1) {
			if n := trimStopWords(m[1]); n != "" {
				fullName = n
				break
			}
		}
	}
	if len(fullName) < 3 {
		fullName = GenericName(text)
	}

	formality, complexity := Formality(text)
	traits := AnalysisTraits(text, j)

	return &Analysis{
		MainCharacter: MainCharacter{
			Name:     strings.Fields(fullName)[0],
			FullName: fullName,
			Titles:   ExtractTitles(text),
			Aliases:  ExtractAliases(text, fullName),
		},
		PersonalityProfile: PersonalityProfile{
			CoreTraits:       traits,
			EmotionalProfile: AnalyzeEmotions(text, j),
			CognitiveStyle:   AnalyzeCognition(text),
		},
		CommunicationStyle: CommunicationStyle{
			Tone:      CommunicationTone(text),
			Formality: formality,
			Vocabulary: VocabularyStyle{
				Complexity:          complexity,
				SpecializedTerms:    SpecializedTerms(text),
				CommonPhrases:       CommonPhrases(text),
				CulturalExpressions: Greetings(text),
			},
		},
		KnowledgeBase: KnowledgeBase{
			PrimaryExpertise:   DetectDomains(text),
			ExperientialWisdom: ExtractWisdom(text),
			PhilosophicalViews: ExtractPhilosophicalViews(text),
		},
		LifeContext: LifeContext{
			Era:                Era(text),
			CulturalBackground: CulturalBackground(text),
		},
		ResponsePatterns: analysisPatterns(traits),
	}
}

func analysisPatterns(traits []TraitSignal) map[string]AnalysisPattern {
	patterns := map[string]AnalysisPattern{
		"general": {
			TypicalResponses: []string{
				"That's a thoughtful question. Let me share my perspective based on my experiences...",
				"I believe that every situation offers us an opportunity to learn and grow.",
				"In my journey, I've found that approaching challenges with curiosity often leads to meaningful insights.",
			},
			Reasoning:     "Draws from personal experience and wisdom gained through life",
			EmotionalTone: "thoughtful",
			Examples:      []string{"Reflective conversations", "Sharing life insights", "Mentoring discussions"},
		},
	}
	if hasTraitPrefix(traits, "Intellectual", "Wisdom") {
		patterns["learning"] = AnalysisPattern{
			TypicalResponses: []string{
				"Learning is truly a lifelong journey. What aspect interests you most?",
				"Knowledge becomes wisdom when we apply it with compassion and understanding.",
				"Every question opens a door to new understanding and growth.",
			},
			Reasoning:     "Values continuous learning and intellectual growth",
			EmotionalTone: "encouraging",
			Examples:      []string{"Educational discussions", "Mentoring conversations", "Knowledge sharing"},
		}
	}
	if hasTraitPrefix(traits, "Leadership") {
		patterns["leadership"] = AnalysisPattern{
			TypicalResponses: []string{
				"True leadership is about serving others and inspiring them to reach their full potential.",
				"The best leaders listen more than they speak and learn from everyone they meet.",
				"Leadership isn't about being in charge, but about taking care of those in your charge.",
			},
			Reasoning:     "Believes in servant leadership and empowering others",
			EmotionalTone: "inspiring",
			Examples:      []string{"Leadership discussions", "Team guidance", "Mentoring leaders"},
		}
	}
	if hasTraitPrefix(traits, "Innovation", "Creative") {
		patterns["innovation"] = AnalysisPattern{
			TypicalResponses: []string{
				"Innovation comes from seeing possibilities where others see problems.",
				"Creativity flourishes when we combine curiosity with courage to try new approaches.",
				"The best solutions often emerge when we think beyond conventional boundaries.",
			},
			Reasoning:     "Values creative thinking and innovative problem-solving",
			EmotionalTone: "enthusiastic",
			Examples:      []string{"Creative discussions", "Problem-solving sessions", "Innovation workshops"},
		}
	}
	return patterns
}

func hasTraitPrefix(traits []TraitSignal, needles ...string) bool {
	for _, t := range traits {
		for _, n := range needles {
			if strings.Contains(t.Name, n) {
				return true
			}
		}
	}
	return false
}
