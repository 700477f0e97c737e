package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// buildPDF writes a minimal PDF with one Helvetica text line per page and a
// correct cross-reference table.
func buildPDF(pages ...string) []byte {
	var objects []string
	kids := make([]string, 0, len(pages))
	// 1 catalog, 2 pages, 3 font, then a page and content object per page.
	for i := range pages {
		kids = append(kids, fmt.Sprintf("%d 0 R", 4+2*i))
	}
	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	)
	for i, text := range pages {
		content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestExtractReadsEveryPage(t *testing.T) {
	doc, err := Extract(buildPDF("My name is Maria Silva", "Maria Silva grew up by the sea"))
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if doc.Pages != 2 {
		t.Fatalf("expected 2 pages, got %d", doc.Pages)
	}
	if !strings.Contains(doc.Text, "Maria Silva") || !strings.Contains(doc.Text, "sea") {
		t.Fatalf("unexpected text %q", doc.Text)
	}
	if doc.WordCount == 0 {
		t.Fatalf("expected a word count")
	}
	if doc.Truncated {
		t.Fatalf("did not expect truncation")
	}
}

func TestExtractPageLimit(t *testing.T) {
	_, err := ExtractWithLimits(buildPDF("one", "two", "three"), Limits{MaxPages: 2})
	if !errors.Is(err, ErrTooManyPages) {
		t.Fatalf("expected ErrTooManyPages, got %v", err)
	}
}

func TestExtractTextLimit(t *testing.T) {
	doc, err := ExtractWithLimits(buildPDF("aaaaaaaaaaaaaaaaaaaa", "bbbbbbbbbbbbbbbbbbbb"), Limits{MaxTextBytes: 10})
	if err != nil {
		t.Fatalf("ExtractWithLimits() error: %v", err)
	}
	if !doc.Truncated || len(doc.Text) > 10 {
		t.Fatalf("expected truncated text, got %q (truncated=%v)", doc.Text, doc.Truncated)
	}
}

func TestExtractRejectsBadInput(t *testing.T) {
	if _, err := Extract(nil); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if _, err := Extract([]byte("this is not a pdf at all")); err == nil {
		t.Fatalf("expected error for non-pdf input")
	}
}

func TestClean(t *testing.T) {
	got := Clean("  Hello \x00 \t world \n\n\r\n   second   line  \n")
	if got != "Hello world\nsecond line" {
		t.Fatalf("unexpected cleaned text %q", got)
	}
}

func TestTruncateUTF8KeepsRunesWhole(t *testing.T) {
	got := truncateUTF8("héllo", 2)
	if got != "h" {
		t.Fatalf("expected rune-safe cut, got %q", got)
	}
}
