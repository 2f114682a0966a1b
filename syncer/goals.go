package syncer

import (
	"context"
	"fmt"
	"strings"

	"clementus360/mindset/supabase"
	"clementus360/mindset/types"

	"github.com/google/uuid"
)

func (e *Engine) GetGoalPlans(ctx context.Context) []types.GoalPlan {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.goalPlansLocked(ctx)
}

func (e *Engine) goalPlansLocked(ctx context.Context) []types.GoalPlan {
	plans := history[types.GoalPlan](ctx, e, KeyGoalPlans, supabase.TableGoalPlans)
	if types.NormalizeGoalPlans(plans) {
		_ = e.write(KeyGoalPlans, plans)
	}
	return plans
}

// SaveGoalPlans replaces every goal plan and upserts them.
func (e *Engine) SaveGoalPlans(plans []types.GoalPlan) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	types.NormalizeGoalPlans(plans)
	for i := range plans {
		plans[i].Refresh()
	}
	return e.saveGoalPlansLocked(plans)
}

func (e *Engine) saveGoalPlansLocked(plans []types.GoalPlan) error {
	if err := e.write(KeyGoalPlans, plans); err != nil {
		return err
	}
	if len(plans) == 0 {
		return nil
	}
	rows := append([]types.GoalPlan(nil), plans...)
	e.push(supabase.TableGoalPlans, "upsert", func(ctx context.Context, r Remote, uid string) error {
		for i := range rows {
			rows[i].UserID = uid
		}
		return r.Upsert(ctx, supabase.TableGoalPlans, rows, "id")
	})
	return nil
}

// AddGoalPlan stores a new plan at the head of the list.
func (e *Engine) AddGoalPlan(ctx context.Context, plan types.GoalPlan) (types.GoalPlan, error) {
	plan.Title = strings.TrimSpace(plan.Title)
	if plan.Title == "" {
		return types.GoalPlan{}, fmt.Errorf("goal title is empty: %w", ErrInvalid)
	}
	plan.ID = uuid.NewString()
	plan.CreatedAt = e.now()
	for i := range plan.Steps {
		plan.Steps[i].ID = uuid.NewString()
	}
	plan.Refresh()

	e.mu.Lock()
	defer e.mu.Unlock()

	plans := append([]types.GoalPlan{plan}, e.goalPlansLocked(ctx)...)
	if err := e.saveGoalPlansLocked(plans); err != nil {
		return types.GoalPlan{}, err
	}
	return plan, nil
}

// ToggleGoalStep flips one step and recomputes whether the plan is complete.
func (e *Engine) ToggleGoalStep(ctx context.Context, planID, stepID string) (types.GoalPlan, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	plans := e.goalPlansLocked(ctx)
	for i := range plans {
		if plans[i].ID != planID {
			continue
		}
		for j := range plans[i].Steps {
			if plans[i].Steps[j].ID != stepID {
				continue
			}
			plans[i].Steps[j].Completed = !plans[i].Steps[j].Completed
			plans[i].Refresh()
			if err := e.saveGoalPlansLocked(plans); err != nil {
				return types.GoalPlan{}, err
			}
			return plans[i], nil
		}
		return types.GoalPlan{}, fmt.Errorf("goal step %s: %w", stepID, ErrNotFound)
	}
	return types.GoalPlan{}, fmt.Errorf("goal plan %s: %w", planID, ErrNotFound)
}

// DeleteGoalPlan removes a plan locally and remotely.
func (e *Engine) DeleteGoalPlan(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	plans := e.goalPlansLocked(ctx)
	kept := make([]types.GoalPlan, 0, len(plans))
	for _, p := range plans {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(plans) {
		return fmt.Errorf("goal plan %s: %w", id, ErrNotFound)
	}
	if err := e.write(KeyGoalPlans, kept); err != nil {
		return err
	}
	e.push(supabase.TableGoalPlans, "delete", func(ctx context.Context, r Remote, uid string) error {
		return r.Delete(ctx, supabase.TableGoalPlans, map[string]string{"id": id, "user_id": uid})
	})
	return nil
}
