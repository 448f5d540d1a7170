package guardrail

import (
	"fmt"
	"strings"
)

var classDescriptions = map[Category]string{
	CategoryInappropriate: "Profanity, sexual content, hate speech, threats, harassment, self-harm, or any unsafe content not suitable for students.",
	CategoryOffTopic:      "Discussion that derails from English practice, e.g., tech support, politics, personal gossip, product promotions, or unrelated chit-chat.",
	CategoryNonEnglish:    "Predominantly non-English text when the task is to practice English (allow occasional non-English words for translation exercises).",
	CategoryNone:          "If none of the above apply.",
}

// buildPrompt renders the classification instructions for text under p.
func buildPrompt(text string, p Policy) string {
	var b strings.Builder
	b.WriteString("Classify text by moderation policy. Output only the category and one-word reason.\n\n")

	b.WriteString("<info>\n")
	fmt.Fprintf(&b, "- Application: %s\n", p.AppName)
	fmt.Fprintf(&b, "- Context: %s\n", p.Context)
	b.WriteString("</info>\n\n")

	b.WriteString("<message>\n")
	b.WriteString(text)
	b.WriteString("\n</message>\n\n")

	b.WriteString("<output_classes>\n")
	for _, c := range Categories {
		fmt.Fprintf(&b, "- %s: %s\n", c, classDescriptions[c])
	}
	b.WriteString("</output_classes>\n")
	return b.String()
}

// outputSchema is the structured output the classifier asks for.
func outputSchema() map[string]any {
	enum := make([]any, len(Categories))
	for i, c := range Categories {
		enum[i] = string(c)
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"moderationCategory": map[string]any{"type": "string", "enum": enum},
			"reason":             map[string]any{"type": "string"},
		},
		"required":             []string{"moderationCategory", "reason"},
		"additionalProperties": false,
	}
}
