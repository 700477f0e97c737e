package heuristics

import "strings"

const DefaultDomain = "Life Experience & Wisdom"

// DomainSignal is a knowledge domain detected in a document.
type DomainSignal struct {
	Domain       string   `json:"domain"`
	Level        int      `json:"level"`
	KeyTopics    []string `json:"keyTopics"`
	Achievements []string `json:"achievements"`
}

type topicRule struct {
	keywords []string
	topic    string
}

// domainFamily describes one entry of the domain taxonomy. presence keywords
// pick the primary domain; counted keywords score analysis expertise.
// Families without topicRules get the generic default topics.
type domainFamily struct {
	domain       string
	presence     []string
	counted      []string
	threshold    int
	base         int
	multiplier   int
	cap          int
	keyTopics    []string
	achievements []string
	topicRules   []topicRule
}

// domainFamilies is in priority order.
var domainFamilies = []domainFamily{
	{
		domain:       "Science & Research",
		presence:     []string{"science", "research", "experiment", "laboratory"},
		counted:      []string{"science", "research", "physics", "chemistry", "biology", "experiment", "laboratory", "discovery"},
		threshold:    2, base: 70, multiplier: 4, cap: 95,
		keyTopics:    []string{"Scientific Method", "Research", "Discovery", "Innovation", "Analysis"},
		achievements: []string{"Scientific contributions", "Research breakthroughs", "Knowledge advancement"},
		topicRules: []topicRule{
			{[]string{"physics"}, "Physics"},
			{[]string{"chemistry"}, "Chemistry"},
			{[]string{"biology"}, "Biology"},
			{[]string{"research"}, "Research Methods"},
			{[]string{"experiment"}, "Experimental Design"},
		},
	},
	{
		domain:       "Business & Leadership",
		presence:     []string{"business", "entrepreneur", "company", "market"},
		counted:      []string{"business", "entrepreneur", "company", "market", "strategy", "leadership", "management"},
		threshold:    2, base: 70, multiplier: 4, cap: 88,
		keyTopics:    []string{"Strategy", "Leadership", "Innovation", "Growth", "Management"},
		achievements: []string{"Business success", "Market leadership", "Organizational growth"},
		topicRules: []topicRule{
			{[]string{"strategy"}, "Strategic Planning"},
			{[]string{"marketing"}, "Marketing"},
			{[]string{"finance"}, "Finance"},
			{[]string{"team"}, "Team Management"},
			{[]string{"innovation"}, "Innovation"},
		},
	},
	{
		domain:       "Arts & Creativity",
		presence:     []string{"artist", "artistic", " art ", "creative", "design", "music", "painting"},
		counted:      []string{"art", "music", "creative", "design", "artistic", "beauty", "expression", "culture"},
		threshold:    2, base: 70, multiplier: 4, cap: 85,
		keyTopics:    []string{"Creative Expression", "Artistic Vision", "Design", "Cultural Impact"},
		achievements: []string{"Artistic works", "Creative contributions", "Cultural influence"},
	},
	{
		domain:       "Technology & Innovation",
		presence:     []string{"technology", "engineering", "computer", "software"},
		counted:      []string{"technology", "engineering", "computer", "software", "innovation", "technical", "system"},
		threshold:    2, base: 70, multiplier: 4, cap: 90,
		keyTopics:    []string{"Innovation", "Technical Solutions", "System Design", "Problem Solving"},
		achievements: []string{"Technical innovations", "Engineering solutions", "System improvements"},
		topicRules: []topicRule{
			{[]string{"software"}, "Software Development"},
			{[]string{" ai ", "artificial intelligence"}, "Artificial Intelligence"},
			{[]string{"data"}, "Data Science"},
			{[]string{"web"}, "Web Development"},
			{[]string{"mobile"}, "Mobile Technology"},
		},
	},
	{
		domain:       "Education & Mentorship",
		presence:     []string{"education", "teaching", "student", "learning"},
		counted:      []string{"teach", "education", "student", "learn", "mentor", "guide", "knowledge", "wisdom"},
		threshold:    3, base: 75, multiplier: 3, cap: 92,
		keyTopics:    []string{"Teaching", "Learning", "Mentorship", "Knowledge Transfer", "Student Development"},
		achievements: []string{"Educational impact", "Student development", "Knowledge sharing"},
	},
	{
		domain:       "Healthcare & Medicine",
		presence:     []string{"medicine", "health", "doctor", "medical"},
		counted:      []string{"medicine", "medical", "health", "doctor", "patient", "hospital", "clinic", "physician", "nurse"},
		threshold:    2, base: 70, multiplier: 4, cap: 90,
		keyTopics:    []string{"Patient Care", "Medicine", "Public Health", "Healing"},
		achievements: []string{"Patient outcomes", "Medical advances", "Community health"},
	},
	{
		domain:       "Philosophy & Wisdom",
		presence:     []string{"philosophy", "wisdom", "truth", "meaning"},
		counted:      []string{"philosophy", "spiritual", "meaning", "purpose", "truth", "wisdom", "belief", "values"},
		threshold:    2, base: 70, multiplier: 4, cap: 87,
		keyTopics:    []string{"Life Philosophy", "Spiritual Growth", "Meaning", "Values", "Truth"},
		achievements: []string{"Philosophical insights", "Spiritual guidance", "Wisdom sharing"},
	},
}

var defaultDomainSignal = DomainSignal{
	Domain:       DefaultDomain,
	Level:        80,
	KeyTopics:    []string{"Personal Growth", "Life Lessons", "Human Nature", "Relationships", "Character Development"},
	Achievements: []string{"Personal development", "Life wisdom", "Character growth"},
}

var defaultTopics = []string{"Personal Growth", "Life Lessons", "Human Nature", "Relationships"}

var backfillTopics = []string{"Personal Development", "Critical Thinking", "Problem Solving"}

// PrimaryDomain returns the first taxonomy domain whose presence keywords occur
// in text, or DefaultDomain.
func PrimaryDomain(text string) string {
	lower := " " + strings.ToLower(text) + " "
	for _, fam := range domainFamilies {
		if containsAny(lower, fam.presence...) {
			return fam.domain
		}
	}
	return DefaultDomain
}

// DetectDomains scores every taxonomy domain by keyword count and returns the
// ones that qualify in priority order. The result is never empty: when nothing
// qualifies it holds the Life Experience & Wisdom domain at level 80.
func DetectDomains(text string) []DomainSignal {
	lower := strings.ToLower(text)
	var out []DomainSignal
	for _, fam := range domainFamilies {
		count := countKeywords(lower, fam.counted)
		if count <= fam.threshold {
			continue
		}
		level := fam.base + count*fam.multiplier
		if level > fam.cap {
			level = fam.cap
		}
		out = append(out, DomainSignal{
			Domain:       fam.domain,
			Level:        level,
			KeyTopics:    append([]string(nil), fam.keyTopics...),
			Achievements: append([]string(nil), fam.achievements...),
		})
	}
	if len(out) == 0 {
		d := defaultDomainSignal
		d.KeyTopics = append([]string(nil), d.KeyTopics...)
		d.Achievements = append([]string(nil), d.Achievements...)
		out = append(out, d)
	}
	return out
}

// KeyTopics lists the topics of domain that text mentions, backfilled with
// generic topics to at least three and capped at five.
func KeyTopics(text, domain string) []string {
	lower := " " + strings.ToLower(text) + " "
	var topics []string
	found := false
	for _, fam := range domainFamilies {
		if fam.domain != domain || len(fam.topicRules) == 0 {
			continue
		}
		found = true
		for _, rule := range fam.topicRules {
			if containsAny(lower, rule.keywords...) {
				topics = append(topics, rule.topic)
			}
		}
	}
	if !found {
		topics = append(topics, defaultTopics...)
	}
	topics = dedupe(topics)
	for _, b := range backfillTopics {
		if len(topics) >= 3 {
			break
		}
		if !containsString(topics, b) {
			topics = append(topics, b)
		}
	}
	return limit(topics, 5)
}

func containsString(items []string, s string) bool {
	for _, it := range items {
		if it == s {
			return true
		}
	}
	return false
}
