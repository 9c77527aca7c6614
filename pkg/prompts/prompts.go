// Package prompts builds the text sent to hosted models.
package prompts

import (
	"fmt"
	"strings"
)

// BuildAnswerInput combines the system prompt, retrieved context, and the
// user's question into the single user message every model receives.
func BuildAnswerInput(systemPrompt, retrievedContext, question string) string {
	var prompt strings.Builder
	prompt.WriteString(systemPrompt)
	prompt.WriteString("\n\nContext:\n")
	prompt.WriteString(retrievedContext)
	prompt.WriteString("\n\nUser Question: ")
	prompt.WriteString(question)
	return prompt.String()
}

// BuildSuggestionPrompt asks for three short Thai follow-up questions.
// Only the first contextChars runes of the context are included.
func BuildSuggestionPrompt(question, retrievedContext string, contextChars int) string {
	var prompt strings.Builder

	prompt.WriteString("Instructions:\n")
	prompt.WriteString("Based on the user's question and context, suggest 3 RELEVANT and VERY SHORT follow-up questions in Thai.\n\n")

	prompt.WriteString("Strict Rules:\n")
	prompt.WriteString("1. NO <think> tags. Output ONLY the questions.\n")
	prompt.WriteString("2. Questions must be under 10 words.\n")
	prompt.WriteString("3. No numbering (e.g. 1.), no bullets.\n")
	prompt.WriteString("4. Focus on Administrative Court procedures.\n\n")

	prompt.WriteString(fmt.Sprintf("Context: %s...\n", truncateRunes(retrievedContext, contextChars)))
	prompt.WriteString(fmt.Sprintf("User Question: %s\n\n", question))
	prompt.WriteString("Suggested Questions:\n")

	return prompt.String()
}

func truncateRunes(s string, n int) string {
	if n < 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
