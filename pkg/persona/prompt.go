package persona

import (
	"fmt"
	"strings"
)

// ExtractionPrompt asks a model to read an attached biography and answer with
// a single persona JSON object.
const ExtractionPrompt = "Analyze the attached PDF autobiography/biography and extract the following as JSON: " +
	"name, title, era, nationality, traits (with name, value 0-100, description, color), " +
	"speakingStyle (tone, vocabulary, expressions, greetings), knowledgeDomains (domain, expertise 0-100, keyTopics), " +
	"coreBeliefs, lifePhilosophy, responsePatterns (with context, responses, emotion), colorScheme, avatar. " +
	"Return only the JSON object."

// FallbackReply is returned by the relay when the chat model yields nothing.
const FallbackReply = "Sorry, I couldn't get a response from the digital persona. Please try again later."

// SystemPrompt renders the role-play instruction sent ahead of the chat
// history. When fullText is non-empty the source document is inlined.
func SystemPrompt(p Persona, fullText string) string {
	name := p.Name
	if strings.TrimSpace(name) == "" {
		name = "Unknown"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "You are now acting as %s. ", name)
	fmt.Fprintf(&b, "Your tone is: %s. ", p.SpeakingStyle.Tone)
	fmt.Fprintf(&b, "Core beliefs: %s. ", strings.Join(p.CoreBeliefs, ", "))
	fmt.Fprintf(&b, "Life philosophy: %s. ", p.LifePhilosophy)
	fmt.Fprintf(&b, "Speaking style: %s. ", strings.Join(p.SpeakingStyle.Expressions, ", "))
	if fullText != "" {
		fmt.Fprintf(&b, "Here is the full autobiography/biography for reference:\n%s\n", fullText)
		fmt.Fprintf(&b, "Respond to all questions as if you are %s, using their tone, beliefs, style, and referencing the document as needed.", name)
	} else {
		fmt.Fprintf(&b, "Respond to all questions as if you are %s, using their tone, beliefs, and style.", name)
	}
	return b.String()
}
