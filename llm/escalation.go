package llm

import "strings"

// EscalationMarker is emitted by the coach model when the user should be offered human
// support. It must never reach the screen.
const EscalationMarker = "[[ESCALATE]]"

// StripEscalation removes every escalation marker from text and reports whether one
// was present.
func StripEscalation(text string) (string, bool) {
	if !strings.Contains(text, EscalationMarker) {
		return text, false
	}
	cleaned := strings.ReplaceAll(text, EscalationMarker, "")
	return strings.TrimSpace(cleaned), true
}
