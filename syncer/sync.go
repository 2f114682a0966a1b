package syncer

import (
	"context"
	"errors"
	"sync"

	"clementus360/mindset/supabase"
	"clementus360/mindset/types"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// SyncReport describes one full push. Skipped is set when no push was attempted.
type SyncReport struct {
	Skipped string            `json:"skipped,omitempty"`
	Pushed  map[string]int    `json:"pushed,omitempty"`
	Failed  map[string]string `json:"failed,omitempty"`
}

type syncJob struct {
	table string
	run   func(ctx context.Context, uid string) (int, error)
}

// SyncAll pushes every local kind to the remote. Kinds are pushed independently; one
// failing does not stop the others. Support tickets are not pushed since they only exist
// locally after the remote accepted them.
func (e *Engine) SyncAll(ctx context.Context) SyncReport {
	uid, err := e.requireRemote()
	if err != nil {
		e.log.WithField("reason", err).Debug("Skipping full sync")
		return SyncReport{Skipped: err.Error()}
	}

	e.mu.Lock()
	var (
		tasks     []types.Task
		plan      []types.PlanDay
		beliefs   []types.BeliefEntry
		gratitude []types.GratitudeEntry
		chat      []types.ChatMessage
		logs      []types.ActivityLog
		goals     []types.GoalPlan
		profile   types.Profile
	)
	e.read(KeyTasks, &tasks)
	e.read(KeyPlan, &plan)
	e.read(KeyBeliefs, &beliefs)
	e.read(KeyGratitude, &gratitude)
	e.read(KeyChatHistory, &chat)
	e.read(KeyActivityLogs, &logs)
	e.read(KeyGoalPlans, &goals)
	hasProfile := e.read(KeyProfile, &profile)
	e.mu.Unlock()

	for i := range tasks {
		tasks[i].UserID = uid
	}
	for i := range beliefs {
		beliefs[i].UserID = uid
	}
	for i := range gratitude {
		gratitude[i].UserID = uid
	}
	for i := range chat {
		chat[i].UserID = uid
	}
	for i := range goals {
		goals[i].UserID = uid
	}

	jobs := []syncJob{
		upsertJob(e, supabase.TableTasks, tasks, "id"),
		upsertJob(e, supabase.TablePlans, planRows(plan, uid), "user_id,day"),
		upsertJob(e, supabase.TableBeliefs, beliefs, "id"),
		upsertJob(e, supabase.TableGratitude, gratitude, "id"),
		upsertJob(e, supabase.TableChatHistory, chat, "id"),
		upsertJob(e, supabase.TableGoalPlans, goals, "id"),
		{table: supabase.TableActivityLogs, run: func(ctx context.Context, uid string) (int, error) {
			var errs []error
			n := 0
			for _, l := range logs {
				if err := writeActivity(ctx, e.remote, uid, l); err != nil {
					errs = append(errs, err)
					if supabase.IsSchemaMismatch(err) {
						break
					}
					continue
				}
				n++
			}
			return n, errors.Join(errs...)
		}},
	}
	if hasProfile {
		jobs = append(jobs, syncJob{table: supabase.TableProfiles, run: func(ctx context.Context, uid string) (int, error) {
			return 1, e.remote.Upsert(ctx, supabase.TableProfiles, profileRowOf(profile, uid), "id")
		}})
	}

	report := SyncReport{Pushed: map[string]int{}, Failed: map[string]string{}}
	var mu sync.Mutex
	var g errgroup.Group
	for _, job := range jobs {
		g.Go(func() error {
			if e.mismatch.Load() {
				return nil
			}
			ctx, cancel := context.WithTimeout(ctx, e.timeout)
			defer cancel()

			n, err := job.run(ctx, uid)
			err = e.observe(job.table, "sync", err)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed[job.table] = err.Error()
				return nil
			}
			if n > 0 {
				report.Pushed[job.table] = n
			}
			return nil
		})
	}
	_ = g.Wait()

	e.log.WithFields(logrus.Fields{"pushed": len(report.Pushed), "failed": len(report.Failed)}).Info("Full sync finished")
	return report
}

func upsertJob[T any](e *Engine, table string, rows []T, onConflict string) syncJob {
	return syncJob{table: table, run: func(ctx context.Context, _ string) (int, error) {
		if len(rows) == 0 {
			return 0, nil
		}
		return len(rows), e.remote.Upsert(ctx, table, rows, onConflict)
	}}
}

// OnAuthenticated runs after sign-in so local changes made offline reach the new session.
func (e *Engine) OnAuthenticated(ctx context.Context) SyncReport {
	return e.SyncAll(ctx)
}
