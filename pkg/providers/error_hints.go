package providers

import "strings"

func augmentProviderError(providerName, message string) string {
	msg := strings.TrimSpace(message)
	if msg == "" {
		return msg
	}

	lower := strings.ToLower(msg)
	providerName = NormalizeProviderName(providerName)

	switch providerName {
	case ProviderGemini:
		if strings.Contains(lower, "api key not valid") || strings.Contains(lower, "api_key_invalid") {
			return msg + " Hint: create a Gemini API key in Google AI Studio and set providers.gemini.api_key or PERSONAGEN_PROVIDERS_GEMINI_API_KEY."
		}
		if strings.Contains(lower, "is not found for api version") {
			return msg + " Hint: the configured Gemini model is unavailable; try providers.gemini.model=gemini-1.5-flash."
		}
	case ProviderOpenRouter:
		if strings.Contains(lower, "no endpoints found") {
			return msg + " Hint: the model id must include the vendor prefix, for example google/gemini-2.5-flash."
		}
	case ProviderOpenAI:
		if strings.Contains(lower, "incorrect api key provided") {
			return msg + " Hint: provider openai expects a Platform API key (sk-...)."
		}
		if strings.Contains(lower, "does not support file") || strings.Contains(lower, "invalid content type") {
			return msg + " Hint: PDF attachments are only sent to gemini; the document text is inlined for other providers."
		}
	}

	return msg
}
