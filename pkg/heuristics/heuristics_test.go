package heuristics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractName(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"self introduction", "I am Maria Silva, a physician.", "Maria Silva"},
		{"my name is", "Hello there. My name is Kofi Mensah and I farm cocoa.", "Kofi Mensah"},
		{"frequent full name", "Ada Lovelace wrote notes. Later Ada Lovelace met Babbage. The notes mattered.", "Ada Lovelace"},
		{"frequent single name", "Everyone knew Rumi. Rumi wrote poems at dawn.", "Rumi"},
		{"business fallback", "i started a small business and later grew it into a company.", "Business Leader"},
		{"research fallback", "a life devoted to research and careful discovery.", "Dr. Research Innovator"},
		{"default", "", DefaultGenericName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractName(tt.text))
		})
	}
}

func TestFrequentNameIgnoresStopWords(t *testing.T) {
	text := "The river was wide. The river was deep. Monday came. Monday went."
	assert.Equal(t, "", FrequentName(text))
}

func TestExtractTitlesAndAliases(t *testing.T) {
	text := "Dr. Asha Rao, a professor and researcher, was known as Ashi to her students."
	titles := ExtractTitles(text)
	assert.Contains(t, titles, "Dr")
	assert.Contains(t, titles, "Professor")
	assert.Contains(t, titles, "Researcher")
	assert.Equal(t, []string{"Individual"}, ExtractTitles("nothing here"))

	aliases := ExtractAliases(text, "Asha Rao")
	assert.Equal(t, []string{"Asha", "Ashi"}, aliases)
}

func TestDetectTraitsLeadershipScore(t *testing.T) {
	text := strings.Repeat("We lead and manage the team to inspire others. ", 3)
	traits := DetectTraits(text)
	require.NotEmpty(t, traits)
	assert.Equal(t, "Leadership", traits[0].Name)
	assert.GreaterOrEqual(t, traits[0].Strength, 70)
	assert.LessOrEqual(t, traits[0].Strength, 95)
	assert.NotEmpty(t, traits[0].Evidence)
}

func TestDetectTraitsStrengthFormula(t *testing.T) {
	// "challenge" twice exceeds the Determination threshold of one.
	traits := DetectTraits("Each challenge shaped me. Another challenge came.")
	require.Len(t, traits, 1)
	assert.Equal(t, "Determination", traits[0].Name)
	assert.Equal(t, 85, traits[0].Strength)
}

func TestPersonaTraitsPadsToFour(t *testing.T) {
	traits := PersonaTraits("Nothing notable happens here.", NoJitter)
	require.Len(t, traits, 4)
	names := []string{traits[0].Name, traits[1].Name, traits[2].Name, traits[3].Name}
	assert.Equal(t, []string{"Authenticity", "Thoughtfulness", "Resilience", "Integrity"}, names)
	assert.Equal(t, 80, traits[0].Strength)
	assert.Equal(t, 85, traits[3].Strength)
	for _, tr := range traits {
		assert.GreaterOrEqual(t, tr.Strength, 0)
		assert.LessOrEqual(t, tr.Strength, 100)
	}
}

func TestPersonaTraitsJitterStaysInRange(t *testing.T) {
	j := NewRandomJitter(7)
	for i := 0; i < 50; i++ {
		for _, tr := range PersonaTraits("", j) {
			assert.GreaterOrEqual(t, tr.Strength, 75)
			assert.LessOrEqual(t, tr.Strength, 100)
		}
	}
}

func TestPersonaTraitsTruncatesToFour(t *testing.T) {
	text := strings.Repeat("lead team vision. learn study research question. help care support. create new original. challenge overcome. wisdom insight experience. ", 2)
	traits := PersonaTraits(text, NoJitter)
	require.Len(t, traits, 4)
	assert.Equal(t, "Leadership", traits[0].Name)
	assert.Equal(t, "Intellectual Curiosity", traits[1].Name)

	assert.Len(t, AnalysisTraits(text, NoJitter), 5)
}

func TestDetectDomains(t *testing.T) {
	text := "My research in physics and chemistry led to a discovery in the laboratory."
	domains := DetectDomains(text)
	require.NotEmpty(t, domains)
	assert.Equal(t, "Science & Research", domains[0].Domain)
	assert.Equal(t, 90, domains[0].Level)
	assert.NotEmpty(t, domains[0].Achievements)

	fallback := DetectDomains("a quiet life by the sea")
	require.Len(t, fallback, 1)
	assert.Equal(t, DefaultDomain, fallback[0].Domain)
	assert.Equal(t, 80, fallback[0].Level)
}

func TestPrimaryDomainPriority(t *testing.T) {
	assert.Equal(t, "Science & Research", PrimaryDomain("research in a business setting"))
	assert.Equal(t, "Business & Leadership", PrimaryDomain("I built a company"))
	assert.Equal(t, "Healthcare & Medicine", PrimaryDomain("a doctor in a small town"))
	assert.Equal(t, DefaultDomain, PrimaryDomain("we started the day early"))
}

func TestKeyTopicsBackfillAndCap(t *testing.T) {
	topics := KeyTopics("physics", "Science & Research")
	assert.Equal(t, []string{"Physics", "Personal Development", "Critical Thinking"}, topics)

	all := KeyTopics("physics chemistry biology research experiment", "Science & Research")
	assert.Len(t, all, 5)

	def := KeyTopics("", DefaultDomain)
	assert.Equal(t, []string{"Personal Growth", "Life Lessons", "Human Nature", "Relationships"}, def)
}

func TestKeyTopicsWithoutTopicTableUseDefaults(t *testing.T) {
	generic := []string{"Personal Growth", "Life Lessons", "Human Nature", "Relationships"}
	for _, domain := range []string{"Arts & Creativity", "Education & Mentorship", "Healthcare & Medicine", "Philosophy & Wisdom"} {
		got := KeyTopics("music painting teach student patient surgery ethics truth", domain)
		assert.Equal(t, generic, got, domain)
	}
}

func TestExtractBeliefsAndPhilosophy(t *testing.T) {
	text := "I believe that kindness is stronger than fear. Life is a long walk toward the light. I think that every child deserves school."
	beliefs := ExtractBeliefs(text)
	assert.Equal(t, []string{
		"I believe that kindness is stronger than fear",
		"I think that every child deserves school",
	}, beliefs)
	assert.Equal(t, "Life is a long walk toward the light", ExtractPhilosophy(text))

	assert.Equal(t, DefaultBeliefs, ExtractBeliefs("short."))
	assert.Equal(t, DefaultPhilosophy, ExtractPhilosophy("nothing to see"))
	assert.Equal(t, "the meaning of work is service", ExtractPhilosophy("I asked about the meaning of work is service."))
}

func TestExtractWisdomCapsAtFive(t *testing.T) {
	text := strings.Repeat("I learned that patience beats talent every time. ", 7)
	assert.Len(t, ExtractWisdom(text), 5)
	assert.Equal(t, DefaultWisdom, ExtractWisdom(""))
}

func TestStyleHelpers(t *testing.T) {
	assert.Equal(t, []string{"Namaste", "My friend", "Dear friend"}, Greetings("born in India"))
	assert.Equal(t, DefaultGreetings, Greetings("born somewhere"))
	assert.Equal(t, "Indian", Nationality("an Indian scientist"))
	assert.Equal(t, DefaultNationality, Nationality("from nowhere"))
	assert.Equal(t, []string{"I Believe", "I Learned"}, Expressions("I believe it. I learned it."))
	assert.Equal(t, DefaultExpressions, Expressions(""))
	assert.Equal(t, "20th Century", Era("born in 1931 in Rameswaram"))
	assert.Equal(t, "19th Century", Era("a 19th century reformer"))
	assert.Equal(t, DefaultEra, Era("no dates"))
	assert.Equal(t, "research", Vocabulary("science")[0])
}

func TestAnalyze(t *testing.T) {
	text := "Grace Hopper wrote compilers. Grace Hopper taught the navy to program. " +
		"I learned that the most dangerous phrase is we have always done it this way. " +
		"She would lead the team and inspire them to explore new ideas and create new systems."
	a := Analyze(text, NoJitter)
	require.NotNil(t, a)
	assert.Equal(t, "Grace Hopper", a.MainCharacter.FullName)
	assert.Equal(t, "Grace", a.MainCharacter.Name)
	assert.GreaterOrEqual(t, len(a.PersonalityProfile.CoreTraits), 4)
	assert.NotEmpty(t, a.KnowledgeBase.PrimaryExpertise)
	assert.Contains(t, a.ResponsePatterns, "general")
	assert.Contains(t, a.ResponsePatterns, "leadership")
	assert.Equal(t, 75, a.PersonalityProfile.EmotionalProfile.EmotionalRange)
}

func TestAnalyzeEmptyDocument(t *testing.T) {
	a := Analyze("", NoJitter)
	assert.Equal(t, DefaultGenericName, a.MainCharacter.FullName)
	assert.Len(t, a.PersonalityProfile.CoreTraits, 4)
	assert.Equal(t, []string{"thoughtful", "balanced", "genuine"}, a.PersonalityProfile.EmotionalProfile.DominantEmotions)
}

func TestPick(t *testing.T) {
	assert.Equal(t, "x", Pick(NoJitter, nil, "x"))
	assert.Equal(t, "a", Pick(nil, []string{"a", "b"}, "x"))
}
