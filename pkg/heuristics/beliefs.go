package heuristics

import (
	"regexp"
	"strings"
)

var (
	beliefPatterns = []string{
		"i believe that", "i think that", "i feel that", "my belief is",
		"what i believe", "i am convinced", "i hold that",
	}
	wisdomPatterns = []string{
		"i learned that", "i discovered", "i realized", "i came to understand",
		"the key is", "what matters most", "the important thing", "i believe",
	}

	lifeIsPattern    = regexp.MustCompile(`(?i)life is [^.!?]*`)
	meaningOfPattern = regexp.MustCompile(`(?i)the meaning of [^.!?]*`)
	purposePattern   = regexp.MustCompile(`(?i)[^.!?]*purpose[^.!?]*`)
	successIsPattern = regexp.MustCompile(`(?i)success is [^.!?]*`)
)

var (
	DefaultBeliefs = []string{
		"Every experience teaches us something valuable",
		"Authentic connections are what matter most in life",
		"Growth comes through facing challenges with courage",
		"Understanding ourselves helps us understand others",
	}
	DefaultWisdom = []string{
		"Every experience teaches us something valuable",
		"Growth comes through facing challenges with courage",
		"Authentic connections are what matter most in life",
	}
	DefaultPhilosophicalViews = []string{
		"Life is a journey of continuous learning and growth",
		"Success is measured by the positive impact we have on others",
		"True fulfillment comes from living authentically and purposefully",
	}
)

const DefaultPhilosophy = "Life is a journey of continuous learning and meaningful connections"

func matchingSentences(text string, patterns []string, max int) []string {
	var out []string
	for _, s := range sentences(text, 20) {
		if containsAny(strings.ToLower(s), patterns...) {
			out = append(out, s)
			if len(out) == max {
				break
			}
		}
	}
	return out
}

// ExtractBeliefs returns up to four sentences that state a belief, or a
// generic set when the document states none.
func ExtractBeliefs(text string) []string {
	if beliefs := matchingSentences(text, beliefPatterns, 4); len(beliefs) > 0 {
		return beliefs
	}
	return append([]string(nil), DefaultBeliefs...)
}

// ExtractWisdom returns up to five sentences describing a lesson learned.
func ExtractWisdom(text string) []string {
	if wisdom := matchingSentences(text, wisdomPatterns, 5); len(wisdom) > 0 {
		return wisdom
	}
	return append([]string(nil), DefaultWisdom...)
}

// ExtractPhilosophy returns the first "life is ...", "the meaning of ..." or
// purpose clause in text, in that order of preference.
func ExtractPhilosophy(text string) string {
	for _, re := range []*regexp.Regexp{lifeIsPattern, meaningOfPattern, purposePattern} {
		if m := strings.TrimSpace(re.FindString(text)); m != "" {
			return m
		}
	}
	return DefaultPhilosophy
}

// ExtractPhilosophicalViews collects "life is" and "success is" clauses, at
// most four.
func ExtractPhilosophicalViews(text string) []string {
	var views []string
	for _, re := range []*regexp.Regexp{lifeIsPattern, successIsPattern} {
		for _, m := range re.FindAllString(text, -1) {
			if m = strings.TrimSpace(m); m != "" {
				views = append(views, m)
			}
		}
	}
	if len(views) == 0 {
		return append([]string(nil), DefaultPhilosophicalViews...)
	}
	return limit(views, 4)
}
