// Package pdftext pulls plain text out of uploaded PDF documents.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	DefaultMaxPages     = 200
	DefaultMaxTextBytes = 2 * 1024 * 1024
)

var (
	ErrEmptyInput   = errors.New("pdf is empty")
	ErrNoPages      = errors.New("pdf has no pages")
	ErrTooManyPages = errors.New("pdf has too many pages")
)

// Limits bounds the work done for one document. Zero values use the defaults.
type Limits struct {
	MaxPages     int
	MaxTextBytes int
}

type Document struct {
	Text      string
	Pages     int
	WordCount int
	// Truncated is set when Text was cut at MaxTextBytes.
	Truncated bool
	// SkippedPages lists 1-based pages whose text could not be decoded.
	SkippedPages []int
}

func (l Limits) withDefaults() Limits {
	if l.MaxPages <= 0 {
		l.MaxPages = DefaultMaxPages
	}
	if l.MaxTextBytes <= 0 {
		l.MaxTextBytes = DefaultMaxTextBytes
	}
	return l
}

// Extract reads data with the default limits.
func Extract(data []byte) (*Document, error) {
	return ExtractWithLimits(data, Limits{})
}

// ExtractWithLimits returns the concatenated plain text of every page. Pages
// that fail to decode are skipped rather than failing the document.
func ExtractWithLimits(data []byte, limits Limits) (doc *Document, err error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	limits = limits.withDefaults()

	// The reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("open pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	total := r.NumPage()
	if total == 0 {
		return nil, ErrNoPages
	}
	if total > limits.MaxPages {
		return nil, fmt.Errorf("%w: %d pages, max %d", ErrTooManyPages, total, limits.MaxPages)
	}

	doc = &Document{Pages: total}
	var b strings.Builder
	for i := 1; i <= total; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, perr := pageText(page)
		if perr != nil {
			doc.SkippedPages = append(doc.SkippedPages, i)
			continue
		}
		cleaned := Clean(text)
		if cleaned == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(cleaned)
		doc.WordCount += len(strings.Fields(cleaned))
		if b.Len() >= limits.MaxTextBytes {
			doc.Truncated = true
			break
		}
	}

	text := b.String()
	if len(text) > limits.MaxTextBytes {
		text = truncateUTF8(text, limits.MaxTextBytes)
		doc.Truncated = true
	}
	doc.Text = text
	return doc, nil
}

func pageText(p pdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decode page: %v", r)
		}
	}()
	return p.GetPlainText(nil)
}

// Clean removes NUL bytes, collapses whitespace inside each line and drops
// blank lines.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		if f := strings.Join(strings.Fields(line), " "); f != "" {
			out = append(out, f)
		}
	}
	return strings.Join(out, "\n")
}

func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func utf8RuneStart(b byte) bool { return b&0xC0 != 0x80 }
