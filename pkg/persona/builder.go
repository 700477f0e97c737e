package persona

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dotsetgreg/personagen/pkg/heuristics"
	"github.com/dotsetgreg/personagen/pkg/logger"
)

// InputKind selects how Build produces a persona.
type InputKind string

const (
	KindSample   InputKind = "sample"
	KindDocument InputKind = "document"
)

// Source values reported in Result.
const (
	SourceSample    = "sample"
	SourceHeuristic = "heuristic"
)

type Input struct {
	Kind     InputKind
	SampleID string
	Text     string
	PDF      []byte
	Filename string
}

// Result carries the built persona and where it came from. Fallback holds
// the reasons earlier strategies were skipped, if any.
type Result struct {
	Persona  Persona
	Source   string
	Fallback []string
}

// Builder runs the extractor chain for documents and falls back to the
// text heuristics when every extractor fails or yields an empty persona.
type Builder struct {
	extractors []Extractor
	jitter     heuristics.Jitter
	rule       EmptinessRule
	timeout    time.Duration
}

type BuilderOption func(*Builder)

func WithJitter(j heuristics.Jitter) BuilderOption {
	return func(b *Builder) { b.jitter = j }
}

func WithEmptinessRule(r EmptinessRule) BuilderOption {
	return func(b *Builder) { b.rule = r }
}

// WithExtractTimeout bounds each extractor call. Zero means no bound.
func WithExtractTimeout(d time.Duration) BuilderOption {
	return func(b *Builder) { b.timeout = d }
}

// NewBuilder returns a builder that tries extractors in order. Nil entries
// are ignored.
func NewBuilder(extractors []Extractor, opts ...BuilderOption) *Builder {
	b := &Builder{jitter: heuristics.NoJitter, rule: EmptyStrict}
	for _, e := range extractors {
		if e != nil {
			b.extractors = append(b.extractors, e)
		}
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build produces a persona. Only sample lookups can fail; document builds
// always yield a usable persona.
func (b *Builder) Build(ctx context.Context, in Input) (Result, error) {
	switch in.Kind {
	case KindSample:
		p, err := Sample(strings.ToLower(strings.TrimSpace(in.SampleID)))
		if err != nil {
			return Result{}, err
		}
		return Result{Persona: p, Source: SourceSample}, nil
	case KindDocument, "":
		return b.buildDocument(ctx, Document{Text: in.Text, PDF: in.PDF, Filename: in.Filename}), nil
	default:
		return Result{}, fmt.Errorf("unsupported input kind %q", in.Kind)
	}
}

func (b *Builder) buildDocument(ctx context.Context, doc Document) Result {
	var res Result
	for _, e := range b.extractors {
		p, err := b.tryExtractor(ctx, e, doc)
		if err != nil {
			res.Fallback = append(res.Fallback, fmt.Sprintf("%s: %v", e.Name(), err))
			logger.WarnCF("persona", "Extractor failed, trying next strategy", map[string]interface{}{
				"extractor": e.Name(),
				"error":     err.Error(),
			})
			continue
		}
		res.Persona = p
		res.Source = e.Name()
		break
	}

	if res.Source == "" {
		res.Persona = FromText(doc.Text, b.jitter)
		res.Source = SourceHeuristic
	}

	if IsPlaceholderName(res.Persona.Name) {
		res.Persona.Name = heuristics.ExtractName(doc.Text)
	}

	logger.InfoCF("persona", "Persona built", map[string]interface{}{
		"name":      res.Persona.Name,
		"source":    res.Source,
		"traits":    len(res.Persona.Traits),
		"fallbacks": len(res.Fallback),
	})
	return res
}

func (b *Builder) tryExtractor(ctx context.Context, e Extractor, doc Document) (Persona, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	raw, err := e.Extract(ctx, doc)
	if err != nil {
		return Persona{}, err
	}
	p := Normalize(raw)
	if IsEmpty(p, b.rule) {
		return Persona{}, fmt.Errorf("extracted persona is empty")
	}
	return p, nil
}
