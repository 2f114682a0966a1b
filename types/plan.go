package types

import "time"

// PlanLength is the number of days in the action plan.
const PlanLength = 7

// UnlockDelay is the pacing gate between consecutive plan days.
const UnlockDelay = 24 * time.Hour

type PlanDay struct {
	Day         int        `json:"day"`
	UserID      string     `json:"user_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	Answer      string     `json:"answer,omitempty"`
	AIFeedback  string     `json:"ai_feedback,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Reopened    bool       `json:"reopened,omitempty"`
}

// Editable reports whether the interactive fields may change.
func (d PlanDay) Editable() bool {
	return !d.Completed || d.Reopened
}

// UnlocksNext reports whether the day following d may be started at now.
//
// Records written before completed_at existed have no timestamp; they are treated as
// unlocking immediately. That keeps legacy users moving but lets them skip the pacing gate.
func (d PlanDay) UnlocksNext(now time.Time) bool {
	if !d.Completed {
		return false
	}
	if d.CompletedAt == nil {
		return true
	}
	return !now.Before(d.CompletedAt.Add(UnlockDelay))
}

var defaultPlan = [PlanLength]struct{ title, description string }{
	{"Awareness", "Notice the thoughts that hold you back. Write down the one you hear most often."},
	{"Intention", "Describe, in one paragraph, the person you are becoming."},
	{"Gratitude", "List what is already working in your life and why it matters."},
	{"Courage", "Pick one small thing you have been avoiding and do it today."},
	{"Connection", "Reach out to someone who supports you and tell them about your goal."},
	{"Discipline", "Choose one habit to repeat every day this week and schedule it."},
	{"Reflection", "Look back over the week. What changed, and what will you keep doing?"},
}

// DefaultPlan returns the seven-day plan with nothing completed.
func DefaultPlan() []PlanDay {
	plan := make([]PlanDay, 0, PlanLength)
	for i, d := range defaultPlan {
		plan = append(plan, PlanDay{Day: i + 1, Title: d.title, Description: d.description})
	}
	return plan
}

// NormalizePlan repairs plans written by older builds: days missing from the list are
// re-added, missing titles and descriptions come from the default plan, and the result is
// ordered 1..7. It reports whether anything changed.
func NormalizePlan(plan []PlanDay) ([]PlanDay, bool) {
	byDay := make(map[int]PlanDay, len(plan))
	for _, d := range plan {
		if d.Day < 1 || d.Day > PlanLength {
			continue
		}
		byDay[d.Day] = d
	}

	changed := len(byDay) != len(plan)
	out := make([]PlanDay, 0, PlanLength)
	for i, def := range DefaultPlan() {
		d, ok := byDay[i+1]
		if !ok {
			d = def
			changed = true
		}
		if d.Title == "" {
			d.Title = def.Title
			changed = true
		}
		if d.Description == "" {
			d.Description = def.Description
			changed = true
		}
		out = append(out, d)
	}
	if !changed {
		for i := range plan {
			if plan[i].Day != i+1 {
				changed = true
				break
			}
		}
	}
	return out, changed
}
