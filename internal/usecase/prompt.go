package usecase

import (
	"strings"

	"softsell-assistant/internal/domain"
)

// buildPrompt renders the transcript that precedes the new user line as
// "<role>: <content>" lines, then the user line and the assistant cue.
func buildPrompt(history []domain.Message, text string) string {
	lines := make([]string, 0, len(history)+2)
	for _, m := range history {
		lines = append(lines, string(m.Role)+": "+m.Content)
	}
	lines = append(lines, "User: "+text, "Assistant:")
	return strings.Join(lines, "\n")
}

// normalizeReply trims the generated text and substitutes the fallback when
// nothing is left.
func normalizeReply(raw string) string {
	if reply := strings.TrimSpace(raw); reply != "" {
		return reply
	}
	return FallbackReply
}
