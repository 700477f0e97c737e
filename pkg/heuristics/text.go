package heuristics

import (
	"regexp"
	"strings"
	"unicode"
)

var sentenceBoundary = regexp.MustCompile(`[.!?]+`)

// countKeywords sums the non-overlapping occurrences of every keyword in lower.
// Matching is substring based, so "lead" also counts "leader".
func countKeywords(lower string, keywords []string) int {
	total := 0
	for _, k := range keywords {
		if k == "" {
			continue
		}
		total += strings.Count(lower, k)
	}
	return total
}

func containsAny(lower string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// sentences splits text on runs of . ! ? and keeps trimmed fragments longer
// than minLen characters.
func sentences(text string, minLen int) []string {
	parts := sentenceBoundary.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if len(p) > minLen {
			out = append(out, p)
		}
	}
	return out
}

// titleCase upper-cases the first letter of every space separated word.
func titleCase(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}

func limit(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
