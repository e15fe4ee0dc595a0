package ai

import "fmt"

// DefaultModel is used when the config names no model.
const DefaultModel = "gemini-2.0-flash"

const audioPrompt = "Translate this audio to English and only return the best translation."

// textPrompt asks for a single best translation of text into targetLanguage.
func textPrompt(text, targetLanguage string) string {
	return fmt.Sprintf("Translate %s to %s and only return the best translation.", text, targetLanguage)
}
