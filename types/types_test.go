package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskToggleIsInvolution(t *testing.T) {
	task := Task{ID: "a", Text: "x"}
	assert.Equal(t, task, task.Toggled().Toggled())
	assert.True(t, task.Toggled().Completed)
}

func TestDefaultTasksHaveUniqueIDs(t *testing.T) {
	a := DefaultTasks()
	b := DefaultTasks()
	require.Len(t, a, len(DefaultTaskTexts))
	seen := map[string]bool{}
	for _, task := range append(a, b...) {
		assert.NotEmpty(t, task.ID)
		assert.False(t, seen[task.ID])
		seen[task.ID] = true
	}
}

func TestPlanDayUnlocksNext(t *testing.T) {
	now := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)

	open := PlanDay{Day: 1}
	assert.False(t, open.UnlocksNext(now))

	recent := now.Add(-time.Hour)
	done := PlanDay{Day: 1, Completed: true, CompletedAt: &recent}
	assert.False(t, done.UnlocksNext(now))

	old := now.Add(-25 * time.Hour)
	done.CompletedAt = &old
	assert.True(t, done.UnlocksNext(now))

	legacy := PlanDay{Day: 1, Completed: true}
	assert.True(t, legacy.UnlocksNext(now))
}

func TestNormalizePlan(t *testing.T) {
	plan, changed := NormalizePlan(DefaultPlan())
	assert.False(t, changed)
	assert.Len(t, plan, PlanLength)

	legacy := []PlanDay{{Day: 3, Completed: true, Answer: "yes"}, {Day: 1}}
	plan, changed = NormalizePlan(legacy)
	assert.True(t, changed)
	require.Len(t, plan, PlanLength)
	for i, d := range plan {
		assert.Equal(t, i+1, d.Day)
		assert.NotEmpty(t, d.Title)
	}
	assert.Equal(t, "yes", plan[2].Answer)
}

func TestGoalPlanRefresh(t *testing.T) {
	g := GoalPlan{}
	g.Refresh()
	assert.False(t, g.IsCompleted)

	g.Steps = []GoalStep{{Completed: true}, {Completed: false}}
	g.Refresh()
	assert.False(t, g.IsCompleted)

	g.Steps[1].Completed = true
	g.Refresh()
	assert.True(t, g.IsCompleted)
}

func TestNormalizeTickets(t *testing.T) {
	tickets := []SupportTicket{{ID: "1"}, {ID: "2", Status: TicketResolved}}
	assert.True(t, NormalizeTickets(tickets))
	assert.Equal(t, TicketOpen, tickets[0].Status)
	assert.Equal(t, TicketResolved, tickets[1].Status)
	assert.False(t, NormalizeTickets(tickets))
}
