package syncer

import (
	"context"
	"fmt"
	"strings"

	"clementus360/mindset/supabase"
	"clementus360/mindset/types"

	"github.com/google/uuid"
)

// GetTasks returns the daily checklist. On a new calendar day every task is unchecked
// before it is returned.
func (e *Engine) GetTasks(ctx context.Context) []types.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tasksLocked(ctx)
}

func (e *Engine) tasksLocked(ctx context.Context) []types.Task {
	var tasks []types.Task
	if e.read(KeyTasks, &tasks) {
		changed := types.NormalizeTasks(tasks)
		if e.resetIfNewDay(tasks) {
			changed = true
		}
		if changed {
			e.saveTasksLocked(tasks)
		}
		return tasks
	}

	var remote []types.Task
	if e.fetch(ctx, supabase.TableTasks, byUser(e.userID()), &remote) && len(remote) > 0 {
		types.NormalizeTasks(remote)
		_ = e.write(KeyTasks, remote)
		e.markReset()
		return remote
	}

	tasks = types.DefaultTasks()
	e.saveTasksLocked(tasks)
	e.markReset()
	return tasks
}

// resetIfNewDay unchecks every task when the stored reset date is not today. A missing
// date only records today.
func (e *Engine) resetIfNewDay(tasks []types.Task) bool {
	var last string
	if !e.read(KeyLastReset, &last) {
		e.markReset()
		return false
	}
	today := e.today()
	if last == today {
		return false
	}
	for i := range tasks {
		tasks[i].Completed = false
	}
	e.markReset()
	e.log.WithField("date", today).Info("New day, checklist reset")
	return true
}

func (e *Engine) markReset() {
	_ = e.write(KeyLastReset, e.today())
}

// SaveTasks replaces the checklist and upserts every task.
func (e *Engine) SaveTasks(tasks []types.Task) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	types.NormalizeTasks(tasks)
	return e.saveTasksLocked(tasks)
}

func (e *Engine) saveTasksLocked(tasks []types.Task) error {
	if err := e.write(KeyTasks, tasks); err != nil {
		return err
	}
	e.pushTasks(tasks)
	return nil
}

func (e *Engine) pushTasks(tasks []types.Task) {
	if len(tasks) == 0 {
		return
	}
	rows := append([]types.Task(nil), tasks...)
	e.push(supabase.TableTasks, "upsert", func(ctx context.Context, r Remote, uid string) error {
		for i := range rows {
			rows[i].UserID = uid
		}
		return r.Upsert(ctx, supabase.TableTasks, rows, "id")
	})
}

// ToggleTask flips the completion of the task with id.
func (e *Engine) ToggleTask(ctx context.Context, id string) (types.Task, error) {
	return e.updateTask(ctx, id, func(t *types.Task) {
		*t = t.Toggled()
	})
}

// UpdateTask changes the text and note of a task. Empty text keeps the current text.
func (e *Engine) UpdateTask(ctx context.Context, id, text, note string) (types.Task, error) {
	return e.updateTask(ctx, id, func(t *types.Task) {
		if text = strings.TrimSpace(text); text != "" {
			t.Text = text
		}
		t.Note = note
	})
}

// SetTaskAdvice stores coaching advice on a task.
func (e *Engine) SetTaskAdvice(ctx context.Context, id, advice string) (types.Task, error) {
	return e.updateTask(ctx, id, func(t *types.Task) {
		t.AIAdvice = advice
	})
}

func (e *Engine) updateTask(ctx context.Context, id string, fn func(*types.Task)) (types.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tasks := e.tasksLocked(ctx)
	for i := range tasks {
		if tasks[i].ID != id {
			continue
		}
		fn(&tasks[i])
		if err := e.saveTasksLocked(tasks); err != nil {
			return types.Task{}, err
		}
		return tasks[i], nil
	}
	return types.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
}

// AddTask appends a new unchecked task.
func (e *Engine) AddTask(ctx context.Context, text string) (types.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return types.Task{}, fmt.Errorf("task text is empty: %w", ErrInvalid)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	task := types.Task{ID: uuid.NewString(), Text: text}
	tasks := append(e.tasksLocked(ctx), task)
	if err := e.saveTasksLocked(tasks); err != nil {
		return types.Task{}, err
	}
	return task, nil
}

// DeleteTask removes a task locally and remotely.
func (e *Engine) DeleteTask(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	tasks := e.tasksLocked(ctx)
	kept := tasks[:0]
	for _, t := range tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(tasks) {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if err := e.write(KeyTasks, kept); err != nil {
		return err
	}
	e.push(supabase.TableTasks, "delete", func(ctx context.Context, r Remote, uid string) error {
		return r.Delete(ctx, supabase.TableTasks, map[string]string{"id": id, "user_id": uid})
	})
	return nil
}
