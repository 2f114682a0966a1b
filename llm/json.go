package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	codeBlockRegex     = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	trailingCommaRegex = regexp.MustCompile(`,\s*([}\]])`)
)

// ExtractJSON decodes the first usable JSON value found in a model reply into out.
// Models wrap JSON in prose or markdown fences and sometimes leave trailing commas, so
// several extraction strategies are tried in order.
func ExtractJSON(text string, out any) error {
	strategies := []func(string) (string, bool){
		extractCompleteJSON,
		extractJSONFromCodeBlock,
		extractJSONFromBraces,
		extractJSONWithRepair,
	}

	for _, strategy := range strategies {
		candidate, found := strategy(text)
		if !found {
			continue
		}
		if err := json.Unmarshal([]byte(candidate), out); err == nil {
			return nil
		}
	}
	return fmt.Errorf("no valid JSON found in response")
}

// Strategy 1: Try the entire text as JSON
func extractCompleteJSON(text string) (string, bool) {
	cleaned := strings.TrimSpace(text)
	if json.Valid([]byte(cleaned)) {
		return cleaned, true
	}
	return "", false
}

// Strategy 2: Extract JSON from markdown code blocks
func extractJSONFromCodeBlock(text string) (string, bool) {
	matches := codeBlockRegex.FindStringSubmatch(text)
	if len(matches) > 1 {
		candidate := strings.TrimSpace(matches[1])
		if json.Valid([]byte(candidate)) {
			return candidate, true
		}
	}
	return "", false
}

// Strategy 3: Take the outermost balanced object or array
func extractJSONFromBraces(text string) (string, bool) {
	candidate, ok := outermost(text)
	if ok && json.Valid([]byte(candidate)) {
		return candidate, true
	}
	return "", false
}

// Strategy 4: Repair common issues, then take the outermost value
func extractJSONWithRepair(text string) (string, bool) {
	if m := codeBlockRegex.FindStringSubmatch(text); len(m) > 1 {
		text = m[1]
	}
	candidate, ok := outermost(text)
	if !ok {
		return "", false
	}
	candidate = trailingCommaRegex.ReplaceAllString(candidate, "$1")
	candidate = strings.NewReplacer("“", `"`, "”", `"`).Replace(candidate)
	if json.Valid([]byte(candidate)) {
		return candidate, true
	}
	return "", false
}

// outermost returns the first balanced {...} or [...] span, ignoring brackets inside
// strings.
func outermost(text string) (string, bool) {
	start := strings.IndexAny(text, "{[")
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]

		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch ch {
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
