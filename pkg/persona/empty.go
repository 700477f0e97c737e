package persona

import (
	"strings"
	"unicode/utf8"
)

// EmptinessRule selects how IsEmpty combines the name and content checks.
type EmptinessRule int

const (
	// EmptyStrict treats a persona as empty only when its name is a
	// placeholder and it has neither traits nor knowledge domains.
	EmptyStrict EmptinessRule = iota
	// EmptyLegacy treats any placeholder name as empty, and also a real name
	// with neither traits nor knowledge domains.
	EmptyLegacy
)

// ParseEmptinessRule maps a config value onto a rule. Unknown values are strict.
func ParseEmptinessRule(s string) EmptinessRule {
	if strings.EqualFold(strings.TrimSpace(s), "legacy") {
		return EmptyLegacy
	}
	return EmptyStrict
}

var placeholderNames = map[string]struct{}{
	"":                   {},
	"Unknown":            {},
	"Unknown Individual": {},
	"Unknown Persona":    {},
	"Unknown Person":     {},
}

// minNameRunes is the shortest name accepted as a real identity.
const minNameRunes = 3

// IsPlaceholderName reports whether name is blank, too short to identify
// anyone, or a generic placeholder.
func IsPlaceholderName(name string) bool {
	trimmed := strings.TrimSpace(name)
	if utf8.RuneCountInString(trimmed) < minNameRunes {
		return true
	}
	_, ok := placeholderNames[trimmed]
	return ok
}

// IsEmpty reports whether p carries no usable identity under rule.
func IsEmpty(p Persona, rule EmptinessRule) bool {
	placeholder := IsPlaceholderName(p.Name)
	noContent := len(p.Traits) == 0 && len(p.KnowledgeDomains) == 0
	if rule == EmptyLegacy {
		return placeholder || noContent
	}
	return placeholder && noContent
}
