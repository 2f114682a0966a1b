package syncer

import (
	"context"
	"testing"
	"time"

	"clementus360/mindset/supabase"
	"clementus360/mindset/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanPacing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	plan := h.engine.GetPlan(ctx)
	require.Len(t, plan, types.PlanLength)
	assert.True(t, PlanDayUnlocked(plan, 1, h.clock.now()))
	assert.False(t, PlanDayUnlocked(plan, 2, h.clock.now()))

	_, err := h.engine.CompletePlanDay(ctx, 2, "skip ahead", "")
	assert.ErrorIs(t, err, ErrDayLocked)

	day1, err := h.engine.CompletePlanDay(ctx, 1, "my answer", "nice work")
	require.NoError(t, err)
	assert.True(t, day1.Completed)
	require.NotNil(t, day1.CompletedAt)

	h.clock.advance(23 * time.Hour)
	_, err = h.engine.CompletePlanDay(ctx, 2, "too soon", "")
	assert.ErrorIs(t, err, ErrDayLocked)

	h.clock.advance(time.Hour)
	_, err = h.engine.CompletePlanDay(ctx, 2, "on time", "")
	require.NoError(t, err)

	h.engine.Flush()
	rows := h.remote.rows(supabase.TablePlans)
	assert.Len(t, rows, types.PlanLength)
}

func TestCompletedDayIsLockedUntilReopened(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.engine.SavePlanDay(ctx, types.PlanDay{Day: 1, Answer: "draft"})
	require.NoError(t, err)
	first, err := h.engine.CompletePlanDay(ctx, 1, "final", "")
	require.NoError(t, err)

	_, err = h.engine.SavePlanDay(ctx, types.PlanDay{Day: 1, Answer: "edit"})
	assert.ErrorIs(t, err, ErrDayLocked)
	_, err = h.engine.CompletePlanDay(ctx, 1, "again", "")
	assert.ErrorIs(t, err, ErrDayLocked)

	_, err = h.engine.ReopenPlanDay(ctx, 1)
	require.NoError(t, err)
	h.clock.advance(time.Hour)
	day, err := h.engine.SavePlanDay(ctx, types.PlanDay{Day: 1, Answer: "edit", Title: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "edit", day.Answer)
	assert.Equal(t, types.DefaultPlan()[0].Title, day.Title)

	day, err = h.engine.CompletePlanDay(ctx, 1, "edit", "")
	require.NoError(t, err)
	assert.False(t, day.Reopened)
	assert.True(t, first.CompletedAt.Equal(*day.CompletedAt))

	_, err = h.engine.SavePlanDay(ctx, types.PlanDay{Day: 8})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLegacyCompletedDayUnlocksImmediately(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	legacy := []types.PlanDay{{Day: 1, Completed: true, Answer: "old"}}
	require.NoError(t, h.kv.Set(KeyPlan, legacy))

	plan := h.engine.GetPlan(ctx)
	require.Len(t, plan, types.PlanLength)
	assert.Equal(t, types.DefaultPlan()[0].Title, plan[0].Title)
	assert.True(t, PlanDayUnlocked(plan, 2, h.clock.now()))

	_, err := h.engine.CompletePlanDay(ctx, 2, "next", "")
	assert.NoError(t, err)
}

func TestLocalOnlyFieldsStayOffTheRemote(t *testing.T) {
	h := newHarness(t)
	h.remote.restrictColumns(supabase.TablePlans,
		"day", "user_id", "title", "description", "completed", "answer", "ai_feedback", "completed_at")
	h.remote.restrictColumns(supabase.TableProfiles,
		"id", "full_name", "mantra", "avatar_image", "statement")
	ctx := context.Background()

	_, err := h.engine.CompletePlanDay(ctx, 1, "done", "")
	require.NoError(t, err)
	day, err := h.engine.ReopenPlanDay(ctx, 1)
	require.NoError(t, err)
	assert.True(t, day.Reopened)
	saved, err := h.engine.SaveProfile(types.Profile{FullName: "Sam", Statement: "I am steady"})
	require.NoError(t, err)
	require.NotNil(t, saved.UpdatedAt)

	h.engine.Flush()
	assert.False(t, h.engine.RemoteDisabled())

	rows := h.remote.rows(supabase.TablePlans)
	require.Len(t, rows, types.PlanLength)
	for _, row := range rows {
		assert.NotContains(t, row, "reopened")
		assert.Equal(t, "u1", row["user_id"])
	}
	profiles := h.remote.rows(supabase.TableProfiles)
	require.Len(t, profiles, 1)
	assert.NotContains(t, profiles[0], "updated_at")
	assert.Equal(t, "u1", profiles[0]["id"])

	// Reopen state and the save time survive locally.
	assert.True(t, h.engine.GetPlan(ctx)[0].Reopened)
	assert.NotNil(t, h.engine.GetProfile(ctx).UpdatedAt)

	report := h.engine.SyncAll(ctx)
	assert.Empty(t, report.Failed)
	assert.False(t, h.engine.RemoteDisabled())
}
