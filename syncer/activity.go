package syncer

import (
	"context"
	"fmt"
	"time"

	"clementus360/mindset/supabase"
	"clementus360/mindset/types"
)

func (e *Engine) GetActivityLogs(ctx context.Context) []types.ActivityLog {
	e.mu.Lock()
	defer e.mu.Unlock()
	return history[types.ActivityLog](ctx, e, KeyActivityLogs, supabase.TableActivityLogs)
}

// SetActivityCount overwrites the count for date. There is at most one log per date.
func (e *Engine) SetActivityCount(ctx context.Context, date string, count int) (types.ActivityLog, error) {
	if _, err := time.Parse(types.DateLayout, date); err != nil {
		return types.ActivityLog{}, fmt.Errorf("activity date %q: %w", date, ErrInvalid)
	}
	if count < 0 {
		return types.ActivityLog{}, fmt.Errorf("activity count %d: %w", count, ErrInvalid)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setActivityLocked(ctx, date, func(int) int { return count })
}

// IncrementActivity adds one to the count for date.
func (e *Engine) IncrementActivity(ctx context.Context, date string) (types.ActivityLog, error) {
	if _, err := time.Parse(types.DateLayout, date); err != nil {
		return types.ActivityLog{}, fmt.Errorf("activity date %q: %w", date, ErrInvalid)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setActivityLocked(ctx, date, func(n int) int { return n + 1 })
}

// RecordActivity bumps today's count.
func (e *Engine) RecordActivity(ctx context.Context) (types.ActivityLog, error) {
	return e.IncrementActivity(ctx, e.today())
}

func (e *Engine) setActivityLocked(ctx context.Context, date string, next func(int) int) (types.ActivityLog, error) {
	logs := history[types.ActivityLog](ctx, e, KeyActivityLogs, supabase.TableActivityLogs)

	idx := -1
	for i := range logs {
		if logs[i].Date == date {
			idx = i
			break
		}
	}
	if idx < 0 {
		logs = append(logs, types.ActivityLog{Date: date})
		idx = len(logs) - 1
	}
	logs[idx].Count = next(logs[idx].Count)
	entry := logs[idx]

	if err := e.write(KeyActivityLogs, logs); err != nil {
		return types.ActivityLog{}, err
	}
	e.push(supabase.TableActivityLogs, "write", func(ctx context.Context, r Remote, uid string) error {
		return writeActivity(ctx, r, uid, entry)
	})
	return entry, nil
}

// writeActivity overwrites the remote row for (user, date). The table has no unique
// constraint on that pair, so this is a select followed by an update or insert; two
// devices writing the same new date at once can both insert.
func writeActivity(ctx context.Context, r Remote, uid string, entry types.ActivityLog) error {
	eq := map[string]string{"user_id": uid, "date": entry.Date}
	var existing []types.ActivityLog
	if err := r.Select(ctx, supabase.TableActivityLogs, eq, &existing); err != nil {
		return err
	}
	if len(existing) > 0 {
		return r.Update(ctx, supabase.TableActivityLogs, map[string]any{"count": entry.Count}, eq)
	}
	entry.UserID = uid
	return r.Insert(ctx, supabase.TableActivityLogs, entry)
}

// ClearActivity removes every activity log locally and remotely.
func (e *Engine) ClearActivity() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.write(KeyActivityLogs, []types.ActivityLog{}); err != nil {
		return err
	}
	e.push(supabase.TableActivityLogs, "delete", func(ctx context.Context, r Remote, uid string) error {
		return r.Delete(ctx, supabase.TableActivityLogs, byUser(uid))
	})
	return nil
}
