package audio

import (
	"fmt"
	"strconv"
	"strings"
)

// StatementKey is the cache key of the spoken personal statement.
const StatementKey = "statement"

var anxietyRelief = []string{
	"Let's take a moment together. Find a comfortable position and let your shoulders drop.",
	"Breathe in slowly through your nose for four counts. Hold it gently. Now breathe out through your mouth for six counts.",
	"Notice five things you can see around you, and four things you can feel. There is no rush.",
	"Whatever you are feeling right now is allowed to be here. It is a wave, and waves pass.",
	"Breathe in calm, breathe out tension. Once more, slowly.",
	"You are safe in this moment. When you are ready, open your eyes and return at your own pace.",
}

var visualization = []string{
	"Close your eyes and picture the version of yourself who has already reached your goal.",
	"Where are you standing? Notice the light, the sounds, and the people around you.",
	"Feel the pride and calm of having done the work. Let it settle in your chest.",
	"See the small steps that brought you here, one after another.",
	"Hold this picture for a few more breaths. It is closer than it looks.",
	"Bring one feeling from this place back with you, and open your eyes.",
}

// AnxietyReliefScript is the fixed breathing script. Chunks are keyed by index.
func AnxietyReliefScript() []Chunk {
	return indexed("", anxietyRelief)
}

// VisualizationScript is the narration for the visualization countdown, one chunk per step.
func VisualizationScript() []Chunk {
	return indexed("visualization:", visualization)
}

// StatementScript reads the user's personal statement aloud. The key is fixed; the cache
// notices edits through the text hash.
func StatementScript(statement string) []Chunk {
	statement = strings.TrimSpace(statement)
	if statement == "" {
		return nil
	}
	return []Chunk{{Key: StatementKey, Text: statement}}
}

// MeditationScript splits a generated meditation into paragraphs keyed by meditation id.
func MeditationScript(id, text string) []Chunk {
	var parts []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	chunks := make([]Chunk, len(parts))
	for i, p := range parts {
		chunks[i] = Chunk{Key: fmt.Sprintf("meditation:%s:%d", id, i), Text: p}
	}
	return chunks
}

func indexed(prefix string, texts []string) []Chunk {
	chunks := make([]Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = Chunk{Key: prefix + strconv.Itoa(i), Text: t}
	}
	return chunks
}
