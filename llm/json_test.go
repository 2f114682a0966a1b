package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stepsReply struct {
	Title string `json:"title"`
	Steps []struct {
		Text   string `json:"text"`
		Timing string `json:"timing"`
	} `json:"steps"`
}

func TestExtractJSONStrategies(t *testing.T) {
	inputs := map[string]string{
		"plain":    `{"title":"Run","steps":[{"text":"buy shoes","timing":"day 1"}]}`,
		"fenced":   "Here you go:\n```json\n{\"title\":\"Run\",\"steps\":[{\"text\":\"buy shoes\",\"timing\":\"day 1\"}]}\n```",
		"prose":    `Sure! {"title":"Run","steps":[{"text":"buy shoes","timing":"day 1"}]} Good luck.`,
		"trailing": "```\n{\"title\":\"Run\",\"steps\":[{\"text\":\"buy shoes\",\"timing\":\"day 1\"},],}\n```",
		"braces":   `{"title":"Run {fast}","steps":[{"text":"buy shoes","timing":"day 1"}]}`,
	}
	for name, in := range inputs {
		var out stepsReply
		require.NoError(t, ExtractJSON(in, &out), name)
		require.Len(t, out.Steps, 1, name)
		assert.Equal(t, "buy shoes", out.Steps[0].Text, name)
	}
}

func TestExtractJSONFails(t *testing.T) {
	var out stepsReply
	assert.Error(t, ExtractJSON("no json here", &out))
	assert.Error(t, ExtractJSON(`{"title": `, &out))
}

func TestStripEscalation(t *testing.T) {
	text, esc := StripEscalation("Please reach out. [[ESCALATE]]")
	assert.True(t, esc)
	assert.Equal(t, "Please reach out.", text)

	text, esc = StripEscalation("All good")
	assert.False(t, esc)
	assert.Equal(t, "All good", text)
}
