package heuristics

import (
	"regexp"
	"strings"
)

var (
	selfIntroPattern   = regexp.MustCompile(`I am ([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`)
	myNamePattern      = regexp.MustCompile(`My name is ([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`)
	capitalizedPattern = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`)
	nicknamePattern    = regexp.MustCompile(`(?:known as|called|nicknamed) ([A-Z][a-z]+)`)
)

// nameStopWords are capitalized tokens that start sentences or name places,
// dates and institutions rather than people.
var nameStopWords = toSet(
	"The", "This", "That", "These", "Those", "When", "Where", "What", "How", "Why", "Who", "Whom", "Which", "Whose",
	"Chapter", "Book", "Part", "Section", "Page", "Volume", "Introduction", "Conclusion", "Preface", "Epilogue", "Prologue",
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
	"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December",
	"America", "Europe", "Asia", "Africa", "Australia", "India", "China", "Japan", "England", "France", "Germany",
	"University", "College", "School", "Institute", "Company", "Corporation", "Organization",
	"He", "She", "They", "We", "You", "It", "His", "Her", "Hers", "Their", "Theirs", "Our", "Ours", "Your", "Yours", "Its",
	"Him", "Them", "Us", "Me", "My", "Mine", "Myself", "There", "Here", "Then", "Now",
	"And", "But", "Yet", "For", "Nor", "So", "Also", "Because", "Although", "Though", "While", "After", "Before",
	"During", "Since", "Until", "With", "Without", "From", "Into", "Once", "Every", "Each", "All", "Some", "Many",
	"One", "Two", "Three", "Later", "Today", "Yesterday", "Tomorrow", "Sometimes", "Perhaps",
	"In", "On", "At", "As", "If", "Of", "To", "By", "An", "Is", "Was", "Are", "Were", "Not",
)

func toSet(items ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, it := range items {
		out[it] = struct{}{}
	}
	return out
}

// genericNameRules map document themes to a descriptive label used when no
// proper name can be found. Order is priority.
var genericNameRules = []struct {
	keywords []string
	label    string
}{
	{[]string{"scientist", "research", "discovery"}, "Dr. Research Innovator"},
	{[]string{"artist", "creative", "design"}, "Creative Visionary"},
	{[]string{"teacher", "education", "student"}, "Educator & Mentor"},
	{[]string{"business", "entrepreneur", "company"}, "Business Leader"},
	{[]string{"writer", "author", "book"}, "Author & Thinker"},
	{[]string{"leader", "president", "director"}, "Visionary Leader"},
	{[]string{"engineer", "technology", "innovation"}, "Technology Innovator"},
	{[]string{"doctor", "medical", "health"}, "Medical Professional"},
	{[]string{"philosopher", "wisdom", "truth"}, "Philosophical Thinker"},
}

// DefaultGenericName is the label used when no theme keyword matches.
const DefaultGenericName = "Remarkable Individual"

// ExtractName finds the subject's name. It tries a first-person "I am X"
// introduction, then "My name is X", then the most frequent capitalized
// candidate seen at least twice (full names preferred) and finally falls back
// to GenericName.
func ExtractName(text string) string {
	for _, re := range []*regexp.Regexp{selfIntroPattern, myNamePattern} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if name := trimStopWords(m[1]); name != "" {
				return name
			}
		}
	}
	if name := FrequentName(text); name != "" {
		return name
	}
	return GenericName(text)
}

// FrequentName returns the most frequent one or two word capitalized
// candidate that appears at least twice, or "" when none qualifies. Two word
// candidates win over single words; ties keep first-seen order.
func FrequentName(text string) string {
	counts := map[string]int{}
	order := []string{}
	for _, run := range capitalizedPattern.FindAllString(text, -1) {
		for _, cand := range nameCandidates(run) {
			if len(cand) <= 2 {
				continue
			}
			if _, ok := counts[cand]; !ok {
				order = append(order, cand)
			}
			counts[cand]++
		}
	}

	best, bestFull := "", ""
	for _, cand := range order {
		n := counts[cand]
		if n < 2 {
			continue
		}
		if strings.Contains(cand, " ") {
			if bestFull == "" || n > counts[bestFull] {
				bestFull = cand
			}
			continue
		}
		if best == "" || n > counts[best] {
			best = cand
		}
	}
	if bestFull != "" {
		return bestFull
	}
	return best
}

// nameCandidates splits a run of capitalized words at stop words and keeps the
// first two words of every remaining segment.
func nameCandidates(run string) []string {
	var out []string
	var seg []string
	flush := func() {
		if len(seg) == 0 {
			return
		}
		if len(seg) > 2 {
			seg = seg[:2]
		}
		out = append(out, strings.Join(seg, " "))
		seg = nil
	}
	for _, w := range strings.Fields(run) {
		if _, stop := nameStopWords[w]; stop {
			flush()
			continue
		}
		seg = append(seg, w)
	}
	flush()
	return out
}

func trimStopWords(name string) string {
	words := strings.Fields(name)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if _, stop := nameStopWords[w]; stop {
			if len(kept) > 0 {
				break
			}
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// GenericName maps the document's dominant theme to a descriptive label.
func GenericName(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range genericNameRules {
		if containsAny(lower, rule.keywords...) {
			return rule.label
		}
	}
	return DefaultGenericName
}

var titleKeywords = []string{
	"dr.", "doctor", "professor", "prof.", "president", "ceo", "chief executive",
	"founder", "director", "scientist", "author", "writer", "artist", "engineer",
	"researcher", "teacher", "educator", "leader", "expert", "specialist",
}

// ExtractTitles lists the role words mentioned anywhere in the document.
func ExtractTitles(text string) []string {
	lower := strings.ToLower(text)
	var titles []string
	for _, t := range titleKeywords {
		if strings.Contains(lower, t) {
			titles = append(titles, capitalizeFirst(strings.Replace(t, ".", "", 1)))
		}
	}
	titles = dedupe(titles)
	if len(titles) == 0 {
		return []string{"Individual"}
	}
	return titles
}

// ExtractAliases returns the first name of a multi-word main name plus any
// "known as", "called" or "nicknamed" names found in text.
func ExtractAliases(text, mainName string) []string {
	aliases := []string{}
	if fields := strings.Fields(mainName); len(fields) > 1 && len(fields[0]) > 2 {
		aliases = append(aliases, fields[0])
	}
	for _, m := range nicknamePattern.FindAllStringSubmatch(text, -1) {
		if m[1] != mainName {
			aliases = append(aliases, m[1])
		}
	}
	return dedupe(aliases)
}
