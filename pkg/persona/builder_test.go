package persona

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotsetgreg/personagen/pkg/heuristics"
	"github.com/dotsetgreg/personagen/pkg/providers"
)

type stubExtractor struct {
	name  string
	raw   map[string]any
	err   error
	block bool
	calls int
	seen  Document
}

func (s *stubExtractor) Name() string { return s.name }

func (s *stubExtractor) Extract(ctx context.Context, doc Document) (map[string]any, error) {
	s.calls++
	s.seen = doc
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.raw, s.err
}

type stubProvider struct {
	content     string
	err         error
	attachments bool
	messages    []providers.Message
	model       string
}

func (s *stubProvider) Chat(_ context.Context, messages []providers.Message, model string, _ map[string]interface{}) (*providers.LLMResponse, error) {
	s.messages = messages
	s.model = model
	if s.err != nil {
		return nil, s.err
	}
	return &providers.LLMResponse{Content: s.content}, nil
}

func (s *stubProvider) GetDefaultModel() string { return "stub" }

func (s *stubProvider) SupportsAttachments() bool { return s.attachments }

func TestBuildEmptyDocumentWithoutExtractors(t *testing.T) {
	res, err := NewBuilder(nil).Build(context.Background(), Input{Kind: KindDocument, Text: ""})
	require.NoError(t, err)
	assert.Equal(t, SourceHeuristic, res.Source)
	assert.False(t, IsPlaceholderName(res.Persona.Name))
	assert.Equal(t, heuristics.DefaultGenericName, res.Persona.Name)
	assert.Len(t, res.Persona.Traits, 4)
	for _, tr := range res.Persona.Traits {
		assert.GreaterOrEqual(t, tr.Value, 0)
		assert.LessOrEqual(t, tr.Value, 100)
	}
	assert.Equal(t, SchemeForName(res.Persona.Name), res.Persona.ColorScheme)
}

func TestBuildEmptyDocumentWithAnalysisExtractor(t *testing.T) {
	b := NewBuilder([]Extractor{AnalysisExtractor{Jitter: heuristics.NoJitter}})
	res, err := b.Build(context.Background(), Input{Kind: KindDocument})
	require.NoError(t, err)
	assert.Equal(t, "analysis", res.Source)
	assert.False(t, IsPlaceholderName(res.Persona.Name))
	assert.Len(t, res.Persona.Traits, 4)
	require.NotNil(t, res.Persona.DocumentAnalysis)
}

func TestBuildFallsBackWhenExtractorFails(t *testing.T) {
	failing := &stubExtractor{name: "llm", err: errors.New("upstream 503")}
	res, err := NewBuilder([]Extractor{failing}).Build(context.Background(), Input{
		Kind: KindDocument,
		Text: "My name is Maria Silva. Maria Silva grew up teaching children to read.",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, SourceHeuristic, res.Source)
	assert.Equal(t, "Maria Silva", res.Persona.Name)
	require.Len(t, res.Fallback, 1)
	assert.Contains(t, res.Fallback[0], "upstream 503")
}

func TestBuildFallsBackOnEmptyPersona(t *testing.T) {
	empty := &stubExtractor{name: "llm", raw: map[string]any{"name": "Unknown", "traits": []any{}}}
	res, err := NewBuilder([]Extractor{empty}).Build(context.Background(), Input{Text: "A quiet life."})
	require.NoError(t, err)
	assert.Equal(t, SourceHeuristic, res.Source)
	require.Len(t, res.Fallback, 1)
	assert.Contains(t, res.Fallback[0], "empty")
}

func TestBuildChainStopsAtFirstUsablePersona(t *testing.T) {
	first := &stubExtractor{name: "llm", err: errors.New("boom")}
	second := &stubExtractor{name: "analysis", raw: map[string]any{
		"name":   "Grace Hopper",
		"traits": []any{map[string]any{"name": "Innovation", "value": 90.0}},
	}}
	third := &stubExtractor{name: "never"}
	res, err := NewBuilder([]Extractor{first, nil, second, third}).Build(context.Background(), Input{Text: "text"})
	require.NoError(t, err)
	assert.Equal(t, "analysis", res.Source)
	assert.Equal(t, "Grace Hopper", res.Persona.Name)
	assert.Equal(t, 0, third.calls)
}

func TestBuildRechecksPlaceholderName(t *testing.T) {
	raw := map[string]any{
		"name":   "Unknown",
		"traits": []any{map[string]any{"name": "Resilience", "value": 88.0}},
	}
	text := "My name is Maria Silva. Maria Silva grew up by the sea."

	res, err := NewBuilder([]Extractor{&stubExtractor{name: "llm", raw: raw}}).Build(context.Background(), Input{Text: text})
	require.NoError(t, err)
	assert.Equal(t, "llm", res.Source)
	assert.Equal(t, "Maria Silva", res.Persona.Name)
	require.Len(t, res.Persona.Traits, 1)

	legacy := NewBuilder([]Extractor{&stubExtractor{name: "llm", raw: raw}}, WithEmptinessRule(EmptyLegacy))
	res, err = legacy.Build(context.Background(), Input{Text: text})
	require.NoError(t, err)
	assert.Equal(t, SourceHeuristic, res.Source)
	assert.Len(t, res.Persona.Traits, 4)
}

func TestBuildReplacesShortAndUnknownPersonNames(t *testing.T) {
	text := "My name is Maria Silva. Maria Silva grew up by the sea."
	for _, name := range []string{"Unknown Person", "M", "Ms"} {
		raw := map[string]any{
			"name":   name,
			"traits": []any{map[string]any{"name": "Resilience", "value": 88.0}},
		}
		res, err := NewBuilder([]Extractor{&stubExtractor{name: "llm", raw: raw}}).Build(context.Background(), Input{Text: text})
		require.NoError(t, err)
		assert.Equal(t, "llm", res.Source, name)
		assert.Equal(t, "Maria Silva", res.Persona.Name, name)
	}
}

func TestBuildExtractTimeout(t *testing.T) {
	slow := &stubExtractor{name: "llm", block: true}
	b := NewBuilder([]Extractor{slow}, WithExtractTimeout(10*time.Millisecond))
	res, err := b.Build(context.Background(), Input{Text: "A teacher who loved students."})
	require.NoError(t, err)
	assert.Equal(t, SourceHeuristic, res.Source)
	require.Len(t, res.Fallback, 1)
	assert.Contains(t, res.Fallback[0], "deadline")
}

func TestBuildSample(t *testing.T) {
	b := NewBuilder(nil)
	res, err := b.Build(context.Background(), Input{Kind: KindSample, SampleID: " Kalam "})
	require.NoError(t, err)
	assert.Equal(t, SourceSample, res.Source)
	assert.Equal(t, "Dr. A.P.J. Abdul Kalam", res.Persona.Name)

	_, err = b.Build(context.Background(), Input{Kind: KindSample, SampleID: "turing"})
	assert.ErrorIs(t, err, ErrUnknownSample)

	_, err = b.Build(context.Background(), Input{Kind: "video"})
	assert.Error(t, err)
}

func TestSamples(t *testing.T) {
	assert.Equal(t, []string{"einstein", "gandhi", "jobs", "kalam", "mandela"}, SampleIDs())
	for _, id := range SampleIDs() {
		p, err := Sample(id)
		require.NoError(t, err)
		assert.False(t, IsEmpty(p, EmptyLegacy), id)
		assert.NotEmpty(t, p.SpeakingStyle.Greetings, id)
		assert.NotEmpty(t, p.ResponsePatterns, id)
		require.NotNil(t, p.Avatar, id)
	}

	p, err := Sample("einstein")
	require.NoError(t, err)
	p.Name = "changed"
	p.Traits[0].Value = 1
	again, err := Sample("einstein")
	require.NoError(t, err)
	assert.Equal(t, "Albert Einstein", again.Name)
	assert.Equal(t, 99, again.Traits[0].Value)
}

func TestFromText(t *testing.T) {
	p := FromText("", heuristics.NoJitter)
	assert.Equal(t, heuristics.DefaultGenericName, p.Name)
	assert.Len(t, p.Traits, 4)
	require.Len(t, p.KnowledgeDomains, 1)
	assert.Equal(t, heuristics.DefaultDomain, p.KnowledgeDomains[0].Domain)
	assert.Equal(t, 85, p.KnowledgeDomains[0].Expertise)
	assert.Equal(t, heuristics.DefaultDomain+" Expert & Thought Leader", p.Title)
	assert.Equal(t, heuristics.PersonaGreetings, p.SpeakingStyle.Greetings)
	assert.Contains(t, p.ResponsePatterns, "general")
	for _, tr := range p.Traits {
		assert.Equal(t, heuristics.TraitColor(tr.Name), tr.Color)
	}
}

func TestFromAnalysis(t *testing.T) {
	a := &heuristics.Analysis{
		MainCharacter: heuristics.MainCharacter{Name: "Grace", FullName: "Grace Hopper", Titles: []string{"Admiral", "Dr."}},
		KnowledgeBase: heuristics.KnowledgeBase{
			PrimaryExpertise: []heuristics.DomainSignal{{Domain: "Technology & Innovation", Level: 88, KeyTopics: []string{"Compilers"}}},
		},
		ResponsePatterns: map[string]heuristics.AnalysisPattern{
			"general": {TypicalResponses: []string{"Ships are safe in harbor."}, EmotionalTone: "bold", Reasoning: "experience"},
		},
	}
	p := FromAnalysis(a)
	assert.Equal(t, "Grace Hopper", p.Name)
	assert.Equal(t, "Admiral, Dr.", p.Title)
	assert.Equal(t, defaultLifePhilosophy, p.LifePhilosophy)
	assert.Equal(t, []string{"Hello"}, p.SpeakingStyle.Greetings)
	assert.Equal(t, SchemeForName("Grace"), p.ColorScheme)
	require.Len(t, p.KnowledgeDomains, 1)
	assert.Equal(t, 88, p.KnowledgeDomains[0].Expertise)
	assert.Equal(t, "bold", p.ResponsePatterns["general"].Emotion)
	require.NotNil(t, p.DocumentAnalysis)
	assert.Equal(t, "Grace Hopper", p.DocumentAnalysis.MainCharacter.FullName)

	untitled := FromAnalysis(&heuristics.Analysis{MainCharacter: heuristics.MainCharacter{Name: "X", FullName: "X Y"}})
	assert.Equal(t, "Individual", untitled.Title)
}

func TestLLMExtractorAttachesPDF(t *testing.T) {
	prov := &stubProvider{content: "```json\n{\"name\":\"Ada Lovelace\"}\n```", attachments: true}
	e := NewLLMExtractor(prov, "model-x", 0.2, 512)
	raw, err := e.Extract(context.Background(), Document{Text: "ignored", PDF: []byte("%PDF-1.4"), Filename: "ada.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", raw["name"])
	assert.Equal(t, "model-x", prov.model)
	require.Len(t, prov.messages, 1)
	msg := prov.messages[0]
	assert.Equal(t, ExtractionPrompt, msg.Content)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "application/pdf", msg.Attachments[0].MIMEType)
	assert.Equal(t, "ada.pdf", msg.Attachments[0].Name)
}

func TestLLMExtractorInlinesTextWithoutAttachmentSupport(t *testing.T) {
	prov := &stubProvider{content: `{"name":"Ada Lovelace"}`}
	e := NewLLMExtractor(prov, "", 0, 0)
	_, err := e.Extract(context.Background(), Document{Text: "Ada wrote the notes.", PDF: []byte("%PDF-1.4")})
	require.NoError(t, err)
	msg := prov.messages[0]
	assert.Empty(t, msg.Attachments)
	assert.True(t, strings.HasSuffix(msg.Content, "\n\nAda wrote the notes."))
	assert.Contains(t, msg.Content, "Analyze the following autobiography/biography")

	_, err = e.Extract(context.Background(), Document{PDF: []byte("%PDF-1.4")})
	assert.ErrorIs(t, err, ErrNoDocument)
}

func TestLLMExtractorErrors(t *testing.T) {
	_, err := NewLLMExtractor(nil, "", 0, 0).Extract(context.Background(), Document{Text: "x"})
	assert.ErrorIs(t, err, providers.ErrNotConfigured)

	_, err = NewLLMExtractor(&stubProvider{content: "sure!"}, "", 0, 0).Extract(context.Background(), Document{Text: "x"})
	assert.ErrorIs(t, err, ErrNotJSON)

	_, err = NewLLMExtractor(&stubProvider{err: errors.New("quota")}, "", 0, 0).Extract(context.Background(), Document{Text: "x"})
	assert.ErrorContains(t, err, "quota")

	_, err = NewLLMExtractor(&stubProvider{}, "", 0, 0).Extract(context.Background(), Document{})
	assert.ErrorIs(t, err, ErrNoDocument)
}
