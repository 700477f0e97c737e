package persona

import (
	"context"
	"fmt"
	"strings"

	"github.com/dotsetgreg/personagen/pkg/heuristics"
	"github.com/dotsetgreg/personagen/pkg/providers"
)

// Document is the source material for a persona. PDF may be empty when only
// text is available.
type Document struct {
	Text     string
	PDF      []byte
	Filename string
}

func (d Document) empty() bool {
	return len(d.PDF) == 0 && strings.TrimSpace(d.Text) == ""
}

// Extractor turns a document into a raw, not yet normalized persona object.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, doc Document) (map[string]any, error)
}

// LLMExtractor asks a hosted model for the persona JSON. The PDF is attached
// when the provider forwards attachments; otherwise the extracted text is
// inlined after the prompt.
type LLMExtractor struct {
	provider providers.LLMProvider
	model    string
	options  map[string]interface{}
}

func NewLLMExtractor(provider providers.LLMProvider, model string, temperature float64, maxTokens int) *LLMExtractor {
	opts := map[string]interface{}{providers.OptionJSONResponse: true}
	if temperature > 0 {
		opts["temperature"] = temperature
	}
	if maxTokens > 0 {
		opts["max_tokens"] = maxTokens
	}
	return &LLMExtractor{provider: provider, model: strings.TrimSpace(model), options: opts}
}

func (e *LLMExtractor) Name() string { return "llm" }

func (e *LLMExtractor) Extract(ctx context.Context, doc Document) (map[string]any, error) {
	if e == nil || e.provider == nil {
		return nil, providers.ErrNotConfigured
	}
	if doc.empty() {
		return nil, ErrNoDocument
	}

	msg := providers.Message{Role: providers.RoleUser, Content: ExtractionPrompt}
	attach := len(doc.PDF) > 0 && providers.SupportsAttachments(e.provider)
	if attach {
		msg.Attachments = []providers.Attachment{{
			MIMEType: "application/pdf",
			Name:     doc.Filename,
			Data:     doc.PDF,
		}}
	} else {
		text := strings.TrimSpace(doc.Text)
		if text == "" {
			return nil, fmt.Errorf("%w: provider cannot read PDF attachments and no text was extracted", ErrNoDocument)
		}
		msg.Content = strings.Replace(ExtractionPrompt, "the attached PDF", "the following", 1) + "\n\n" + text
	}

	resp, err := e.provider.Chat(ctx, []providers.Message{msg}, e.model, e.options)
	if err != nil {
		return nil, fmt.Errorf("extract persona: %w", err)
	}
	if resp == nil {
		return nil, ErrEmptyResponse
	}
	return ParseModelOutput(resp.Content)
}

// AnalysisExtractor reads the document locally with keyword heuristics and
// keeps the full analysis attached to the result.
type AnalysisExtractor struct {
	Jitter heuristics.Jitter
}

func (e AnalysisExtractor) Name() string { return "analysis" }

func (e AnalysisExtractor) Extract(_ context.Context, doc Document) (map[string]any, error) {
	return FromAnalysis(heuristics.Analyze(doc.Text, e.Jitter)).ToMap(), nil
}
