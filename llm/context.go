package llm

import (
	"unicode/utf8"

	"clementus360/mindset/types"
)

// Truncate cuts text to at most max bytes without splitting a UTF-8 sequence.
func Truncate(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// TrimHistory keeps the most recent turns that fit cfg, oldest first. Messages longer
// than MaxMessageChars are cut.
func TrimHistory(history []types.ChatMessage, cfg types.ContextConfig) []types.ChatMessage {
	if cfg.MaxRecentMessages > 0 && len(history) > cfg.MaxRecentMessages {
		history = history[len(history)-cfg.MaxRecentMessages:]
	}

	trimmed := make([]types.ChatMessage, len(history))
	copy(trimmed, history)
	total := 0
	for i := range trimmed {
		if cfg.MaxMessageChars > 0 && len(trimmed[i].Text) > cfg.MaxMessageChars {
			trimmed[i].Text = Truncate(trimmed[i].Text, cfg.MaxMessageChars) + "..."
		}
		total += len(trimmed[i].Text)
	}

	// Drop from the front until we're under the limit
	for cfg.MaxHistoryChars > 0 && total > cfg.MaxHistoryChars && len(trimmed) > 1 {
		total -= len(trimmed[0].Text)
		trimmed = trimmed[1:]
	}
	return trimmed
}
