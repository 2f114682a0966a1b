package types

import "github.com/google/uuid"

type Task struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id,omitempty"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Note      string `json:"note,omitempty"`      // added after the first release
	AIAdvice  string `json:"ai_advice,omitempty"` // added after the first release
}

// Toggled returns a copy of the task with its completion flipped.
func (t Task) Toggled() Task {
	t.Completed = !t.Completed
	return t
}

// DefaultTaskTexts seeds the daily checklist on first load.
var DefaultTaskTexts = []string{
	"Read my statement out loud",
	"Write three things I am grateful for",
	"Reframe one limiting belief",
	"Take one action toward my goal",
	"Listen to the anxiety-relief session",
}

// DefaultTasks builds a fresh checklist with new ids so rows never collide across users.
func DefaultTasks() []Task {
	tasks := make([]Task, 0, len(DefaultTaskTexts))
	for _, text := range DefaultTaskTexts {
		tasks = append(tasks, Task{ID: uuid.NewString(), Text: text})
	}
	return tasks
}

// NormalizeTasks fills ids missing from records written by older builds. It reports
// whether anything changed so the caller can persist the repaired list.
func NormalizeTasks(tasks []Task) bool {
	changed := false
	for i := range tasks {
		if tasks[i].ID == "" {
			tasks[i].ID = uuid.NewString()
			changed = true
		}
	}
	return changed
}
