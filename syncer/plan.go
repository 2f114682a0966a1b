package syncer

import (
	"context"
	"fmt"
	"time"

	"clementus360/mindset/supabase"
	"clementus360/mindset/types"
)

// GetPlan returns the seven-day plan, repaired and ordered by day.
func (e *Engine) GetPlan(ctx context.Context) []types.PlanDay {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.planLocked(ctx)
}

func (e *Engine) planLocked(ctx context.Context) []types.PlanDay {
	var plan []types.PlanDay
	if e.read(KeyPlan, &plan) {
		normalized, changed := types.NormalizePlan(plan)
		if changed {
			_ = e.write(KeyPlan, normalized)
		}
		return normalized
	}

	var remote []types.PlanDay
	if e.fetch(ctx, supabase.TablePlans, byUser(e.userID()), &remote) && len(remote) > 0 {
		plan, _ = types.NormalizePlan(remote)
		_ = e.write(KeyPlan, plan)
		return plan
	}

	plan = types.DefaultPlan()
	e.savePlanLocked(plan)
	return plan
}

// SavePlan replaces the whole plan and upserts every day.
func (e *Engine) SavePlan(plan []types.PlanDay) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	plan, _ = types.NormalizePlan(plan)
	return e.savePlanLocked(plan)
}

func (e *Engine) savePlanLocked(plan []types.PlanDay) error {
	if err := e.write(KeyPlan, plan); err != nil {
		return err
	}
	days := append([]types.PlanDay(nil), plan...)
	e.push(supabase.TablePlans, "upsert", func(ctx context.Context, r Remote, uid string) error {
		return r.Upsert(ctx, supabase.TablePlans, planRows(days, uid), "user_id,day")
	})
	return nil
}

// SavePlanDay stores a draft of one day. Completed days reject edits until reopened.
// The day number, title and description cannot change.
func (e *Engine) SavePlanDay(ctx context.Context, day types.PlanDay) (types.PlanDay, error) {
	return e.updatePlanDay(ctx, day.Day, func(_ []types.PlanDay, d *types.PlanDay) error {
		if !d.Editable() {
			return ErrDayLocked
		}
		d.Answer = day.Answer
		d.AIFeedback = day.AIFeedback
		return nil
	})
}

// CompletePlanDay records the answer and feedback for day and stamps the completion time.
// A day can only be completed once the previous day has unlocked it. Completing a reopened
// day keeps its first completion time.
func (e *Engine) CompletePlanDay(ctx context.Context, day int, answer, feedback string) (types.PlanDay, error) {
	now := e.now()
	return e.updatePlanDay(ctx, day, func(plan []types.PlanDay, d *types.PlanDay) error {
		if !d.Editable() {
			return ErrDayLocked
		}
		if !PlanDayUnlocked(plan, day, now) {
			return ErrDayLocked
		}
		d.Completed = true
		d.Reopened = false
		d.Answer = answer
		d.AIFeedback = feedback
		if d.CompletedAt == nil {
			d.CompletedAt = &now
		}
		return nil
	})
}

// ReopenPlanDay lets a completed day be edited again. The completion time is kept so
// pacing of the following day is unaffected.
func (e *Engine) ReopenPlanDay(ctx context.Context, day int) (types.PlanDay, error) {
	return e.updatePlanDay(ctx, day, func(_ []types.PlanDay, d *types.PlanDay) error {
		if !d.Completed {
			return nil
		}
		d.Reopened = true
		return nil
	})
}

func (e *Engine) updatePlanDay(ctx context.Context, day int, fn func([]types.PlanDay, *types.PlanDay) error) (types.PlanDay, error) {
	if day < 1 || day > types.PlanLength {
		return types.PlanDay{}, fmt.Errorf("plan day %d: %w", day, ErrNotFound)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	plan := e.planLocked(ctx)
	d := &plan[day-1]
	if err := fn(plan, d); err != nil {
		return types.PlanDay{}, fmt.Errorf("plan day %d: %w", day, err)
	}
	if err := e.savePlanLocked(plan); err != nil {
		return types.PlanDay{}, err
	}
	return *d, nil
}

// PlanDayUnlocked reports whether day may be worked on at now. Day 1 is always open; any
// other day opens once the previous day is completed and the pacing delay has passed.
func PlanDayUnlocked(plan []types.PlanDay, day int, now time.Time) bool {
	if day <= 1 {
		return true
	}
	for _, d := range plan {
		if d.Day == day-1 {
			return d.UnlocksNext(now)
		}
	}
	return false
}
