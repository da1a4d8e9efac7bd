package llm

import "strings"

// quotePairs are wrappers models like to put around a single proposed answer
var quotePairs = [][2]string{
	{`"`, `"`},
	{"«", "»"},
	{"“", "”"},
}

// CleanSuggestion strips markdown fences, a leading label line and wrapping quotes
// from a free-text model reply.
func CleanSuggestion(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip a language identifier on the first line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	for _, label := range []string{"Suggestion :", "Suggestion:", "Réponse :", "Réponse:"} {
		if strings.HasPrefix(text, label) {
			text = strings.TrimSpace(strings.TrimPrefix(text, label))
			break
		}
	}

	for _, pair := range quotePairs {
		if len(text) > len(pair[0])+len(pair[1]) && strings.HasPrefix(text, pair[0]) && strings.HasSuffix(text, pair[1]) {
			text = strings.TrimSpace(text[len(pair[0]) : len(text)-len(pair[1])])
			break
		}
	}

	return text
}
