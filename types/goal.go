package types

import (
	"time"

	"github.com/google/uuid"
)

type GoalStep struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Timing    string `json:"timing"`
	Completed bool   `json:"completed"`
}

type GoalPlan struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id,omitempty"`
	Title       string     `json:"title"`
	Timeframe   string     `json:"timeframe"`
	Steps       []GoalStep `json:"steps"`
	IsCompleted bool       `json:"is_completed"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Refresh recomputes IsCompleted from the steps. A plan without steps is never complete.
func (g *GoalPlan) Refresh() {
	if len(g.Steps) == 0 {
		g.IsCompleted = false
		return
	}
	for _, s := range g.Steps {
		if !s.Completed {
			g.IsCompleted = false
			return
		}
	}
	g.IsCompleted = true
}

// NormalizeGoalPlans assigns ids to plans and steps stored without one.
func NormalizeGoalPlans(plans []GoalPlan) bool {
	changed := false
	for i := range plans {
		if plans[i].ID == "" {
			plans[i].ID = uuid.NewString()
			changed = true
		}
		for j := range plans[i].Steps {
			if plans[i].Steps[j].ID == "" {
				plans[i].Steps[j].ID = uuid.NewString()
				changed = true
			}
		}
	}
	return changed
}
