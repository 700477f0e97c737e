package persona

import (
	"strings"

	"github.com/dotsetgreg/personagen/pkg/heuristics"
)

const (
	contentTone           = "Thoughtful and authentic"
	contentExpertise      = 85
	defaultLifePhilosophy = "Life is a journey of learning and growth"
)

var generalResponses = []string{
	"That's a thoughtful question. Based on my experience...",
	"I believe that every situation offers us an opportunity to learn.",
	"In my journey, I've found that approaching challenges with curiosity leads to growth.",
}

// FromText assembles a complete persona from document text using keyword
// heuristics only. Padded trait strengths are the sole input drawn from j.
func FromText(text string, j heuristics.Jitter) Persona {
	name := heuristics.ExtractName(text)
	domain := heuristics.PrimaryDomain(text)

	signals := heuristics.PersonaTraits(text, j)
	traits := make([]Trait, 0, len(signals))
	for _, s := range signals {
		traits = append(traits, Trait{
			Name:        s.Name,
			Value:       s.Strength,
			Description: s.Manifestation,
			Color:       heuristics.TraitColor(s.Name),
		})
	}

	return Persona{
		Name:        name,
		Title:       domain + " Expert & Thought Leader",
		Era:         heuristics.Era(text),
		Nationality: heuristics.Nationality(text),
		Traits:      traits,
		SpeakingStyle: SpeakingStyle{
			Tone:        contentTone,
			Vocabulary:  heuristics.Vocabulary(text),
			Expressions: heuristics.Expressions(text),
			Greetings:   append([]string(nil), heuristics.PersonaGreetings...),
		},
		KnowledgeDomains: []KnowledgeDomain{{
			Domain:    domain,
			Expertise: contentExpertise,
			KeyTopics: heuristics.KeyTopics(text, domain),
		}},
		CoreBeliefs:    heuristics.ExtractBeliefs(text),
		LifePhilosophy: heuristics.ExtractPhilosophy(text),
		ResponsePatterns: map[string]ResponsePattern{
			"general": {
				Responses: append([]string(nil), generalResponses...),
				Emotion:   "thoughtful",
				Context:   "General conversation and reflection",
			},
		},
		ColorScheme: SchemeForName(name),
		Avatar:      &Avatar{Style: "authentic", Background: "primary"},
	}
}

// FromAnalysis converts a document analysis into a persona that keeps the
// analysis attached for analysis-mode replies.
func FromAnalysis(a *heuristics.Analysis) Persona {
	if a == nil {
		return FromText("", heuristics.NoJitter)
	}
	mc := a.MainCharacter
	title := "Individual"
	if len(mc.Titles) > 0 {
		title = strings.Join(mc.Titles, ", ")
	}

	traits := make([]Trait, 0, len(a.PersonalityProfile.CoreTraits))
	for _, s := range a.PersonalityProfile.CoreTraits {
		traits = append(traits, Trait{
			Name:        s.Name,
			Value:       s.Strength,
			Description: s.Manifestation,
			Color:       heuristics.TraitColor(s.Name),
		})
	}

	domains := make([]KnowledgeDomain, 0, len(a.KnowledgeBase.PrimaryExpertise))
	for _, d := range a.KnowledgeBase.PrimaryExpertise {
		domains = append(domains, KnowledgeDomain{
			Domain:    d.Domain,
			Expertise: d.Level,
			KeyTopics: append([]string(nil), d.KeyTopics...),
		})
	}

	patterns := make(map[string]ResponsePattern, len(a.ResponsePatterns))
	for key, p := range a.ResponsePatterns {
		patterns[key] = ResponsePattern{
			Responses: append([]string(nil), p.TypicalResponses...),
			Emotion:   p.EmotionalTone,
			Context:   p.Reasoning,
		}
	}

	philosophy := defaultLifePhilosophy
	if len(a.KnowledgeBase.ExperientialWisdom) > 0 {
		philosophy = a.KnowledgeBase.ExperientialWisdom[0]
	}

	greetings := append([]string(nil), a.CommunicationStyle.Vocabulary.CulturalExpressions...)
	if len(greetings) == 0 {
		greetings = []string{"Hello"}
	}

	scheme := SchemeForName(mc.Name)
	analysis := *a
	return Persona{
		Name:        mc.FullName,
		Title:       title,
		Era:         a.LifeContext.Era,
		Nationality: a.LifeContext.CulturalBackground,
		Traits:      traits,
		SpeakingStyle: SpeakingStyle{
			Tone:        a.CommunicationStyle.Tone,
			Vocabulary:  append([]string(nil), a.CommunicationStyle.Vocabulary.SpecializedTerms...),
			Expressions: append([]string(nil), a.CommunicationStyle.Vocabulary.CommonPhrases...),
			Greetings:   greetings,
		},
		KnowledgeDomains: domains,
		CoreBeliefs:      append([]string(nil), a.KnowledgeBase.PhilosophicalViews...),
		LifePhilosophy:   philosophy,
		ResponsePatterns: patterns,
		ColorScheme:      scheme,
		Avatar:           &Avatar{Style: "intellectual", Background: scheme.Primary},
		DocumentAnalysis: &analysis,
	}
}
