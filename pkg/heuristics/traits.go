package heuristics

import "strings"

// TraitSignal is a personality trait detected in a document.
type TraitSignal struct {
	Name          string   `json:"trait"`
	Strength      int      `json:"strength"`
	Evidence      []string `json:"evidence"`
	Manifestation string   `json:"manifestation"`
}

// traitFamily scores one trait: it qualifies when the summed keyword count
// exceeds threshold and scores min(cap, base + count*multiplier).
type traitFamily struct {
	name          string
	keywords      []string
	threshold     int
	base          int
	multiplier    int
	cap           int
	manifestation string
}

var traitFamilies = []traitFamily{
	{"Leadership", []string{"lead", "manage", "direct", "guide", "inspire", "motivate", "vision", "team"}, 2, 70, 5, 95,
		"Naturally takes charge and guides others toward common goals"},
	{"Intellectual Curiosity", []string{"learn", "study", "understand", "knowledge", "discover", "explore", "research", "question"}, 3, 75, 3, 98,
		"Constantly seeks knowledge and understanding of the world"},
	{"Compassion", []string{"help", "care", "love", "compassion", "empathy", "kindness", "support", "others"}, 2, 70, 4, 95,
		"Shows genuine care and empathy for others"},
	{"Innovation", []string{"create", "invent", "innovate", "new", "original", "creative", "breakthrough", "pioneer"}, 2, 70, 4, 92,
		"Brings fresh ideas and creative solutions to challenges"},
	{"Determination", []string{"persist", "continue", "never give up", "determined", "persevere", "overcome", "challenge"}, 1, 75, 5, 90,
		"Shows unwavering commitment to goals and values"},
	{"Wisdom", []string{"wisdom", "experience", "learned", "understand", "insight", "perspective", "reflection"}, 2, 70, 3, 88,
		"Demonstrates deep understanding gained through experience"},
	{"Authenticity", []string{"authentic", "genuine", "honest", "true to", "sincere"}, 1, 75, 5, 94,
		"Remains true to personal values and beliefs"},
	{"Thoughtfulness", []string{"reflect", "consider", "thoughtful", "ponder", "contemplat"}, 1, 72, 5, 94,
		"Approaches situations with careful consideration"},
	{"Resilience", []string{"resilien", "bounce back", "endure", "survive", "recover", "hardship"}, 1, 74, 5, 95,
		"Bounces back from challenges with strength"},
	{"Integrity", []string{"integrity", "principle", "honor", "honour", "ethic", "moral"}, 1, 78, 4, 97,
		"Maintains strong moral principles"},
}

// fallbackTrait pads a trait list; its strength is base + Intn(spread).
type fallbackTrait struct {
	name          string
	base          int
	spread        int
	manifestation string
	evidence      string
}

var fallbackTraits = []fallbackTrait{
	{"Authenticity", 80, 15, "Remains true to personal values and beliefs", "Demonstrates genuine character throughout the text"},
	{"Thoughtfulness", 75, 20, "Approaches situations with careful consideration", "Shows careful consideration in thoughts and actions"},
	{"Resilience", 77, 18, "Bounces back from challenges with strength", "Faces setbacks and keeps moving forward"},
	{"Integrity", 85, 12, "Maintains strong moral principles", "Acts consistently with stated values"},
}

var traitColors = map[string]string{
	"Leadership":             "from-orange-500 to-red-500",
	"Intellectual Curiosity": "from-blue-500 to-purple-500",
	"Compassion":             "from-green-500 to-teal-500",
	"Determination":          "from-red-500 to-pink-500",
	"Innovation":             "from-yellow-500 to-orange-500",
	"Authenticity":           "from-purple-500 to-pink-500",
	"Wisdom":                 "from-indigo-500 to-blue-500",
	"Creativity":             "from-pink-500 to-purple-500",
	"Thoughtfulness":         "from-blue-500 to-cyan-500",
	"Resilience":             "from-purple-500 to-pink-500",
	"Integrity":              "from-indigo-500 to-blue-500",
}

// TraitColor returns the display gradient for a trait name.
func TraitColor(name string) string {
	if c, ok := traitColors[name]; ok {
		return c
	}
	return "from-purple-500 to-pink-500"
}

// DetectTraits returns every trait family that qualifies in text, in family
// order. Detected strengths are deterministic.
func DetectTraits(text string) []TraitSignal {
	lower := strings.ToLower(text)
	sents := sentences(text, 10)
	var out []TraitSignal
	for _, fam := range traitFamilies {
		count := countKeywords(lower, fam.keywords)
		if count <= fam.threshold {
			continue
		}
		strength := fam.base + count*fam.multiplier
		if strength > fam.cap {
			strength = fam.cap
		}
		out = append(out, TraitSignal{
			Name:          fam.name,
			Strength:      strength,
			Evidence:      evidenceFor(sents, fam.keywords, 3),
			Manifestation: fam.manifestation,
		})
	}
	return out
}

func evidenceFor(sents []string, keywords []string, max int) []string {
	out := []string{}
	for _, s := range sents {
		if containsAny(strings.ToLower(s), keywords...) {
			out = append(out, s)
			if len(out) == max {
				break
			}
		}
	}
	return out
}

// padTraits appends fallback traits not already present until traits has at
// least min entries. Padded strengths use j.
func padTraits(traits []TraitSignal, min int, j Jitter) []TraitSignal {
	j = jitterOrNone(j)
	for _, fb := range fallbackTraits {
		if len(traits) >= min {
			break
		}
		if hasTrait(traits, fb.name) {
			continue
		}
		traits = append(traits, TraitSignal{
			Name:          fb.name,
			Strength:      fb.base + j.Intn(fb.spread),
			Evidence:      []string{fb.evidence},
			Manifestation: fb.manifestation,
		})
	}
	return traits
}

func hasTrait(traits []TraitSignal, name string) bool {
	for _, t := range traits {
		if t.Name == name {
			return true
		}
	}
	return false
}

// PersonaTraits returns exactly four traits: the first four detected, padded
// with Authenticity, Thoughtfulness, Resilience and Integrity as needed.
func PersonaTraits(text string, j Jitter) []TraitSignal {
	traits := DetectTraits(text)
	if len(traits) > 4 {
		traits = traits[:4]
	}
	return padTraits(traits, 4, j)
}

// AnalysisTraits returns up to five detected traits, padded to at least four.
func AnalysisTraits(text string, j Jitter) []TraitSignal {
	traits := DetectTraits(text)
	if len(traits) > 5 {
		traits = traits[:5]
	}
	return padTraits(traits, 4, j)
}
