package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
)

// Remote tables, one per synced record kind.
const (
	TableTasks          = "tasks"
	TablePlans          = "plans"
	TableBeliefs        = "beliefs"
	TableGratitude      = "gratitude_entries"
	TableChatHistory    = "chat_history"
	TableActivityLogs   = "activity_logs"
	TableProfiles       = "profiles"
	TableGoalPlans      = "goal_plans"
	TableSupportTickets = "support_tickets"
	TableFeedbacks      = "feedbacks"
)

// Tables is the row-store client used by the sync engine. Every request carries the
// signed-in user's token so row level security scopes reads and writes to that user.
type Tables struct {
	apiURL string
	apiKey string

	mu     sync.RWMutex
	client *supabase.Client
}

// NewTables creates an anonymous client. Call SetAccessToken after sign-in.
func NewTables(apiURL, apiKey string) (*Tables, error) {
	if apiURL == "" || apiKey == "" {
		return nil, fmt.Errorf("SUPABASE_URL or SUPABASE_KEY is missing")
	}
	t := &Tables{apiURL: apiURL, apiKey: apiKey}
	if err := t.SetAccessToken(""); err != nil {
		return nil, err
	}
	return t, nil
}

// Client returns the current underlying client.
func (t *Tables) Client() *supabase.Client {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.client
}

// SetAccessToken rebuilds the client with the given bearer token. An empty token reverts
// to the anonymous key.
func (t *Tables) SetAccessToken(token string) error {
	opts := &supabase.ClientOptions{}
	if token != "" {
		opts.Headers = map[string]string{
			"Authorization": "Bearer " + token,
		}
	}

	client, err := supabase.NewClient(t.apiURL, t.apiKey, opts)
	if err != nil {
		return fmt.Errorf("failed to create Supabase client: %w", err)
	}

	t.mu.Lock()
	t.client = client
	t.mu.Unlock()
	return nil
}

// Upsert inserts rows or updates them on conflict with the onConflict columns.
func (t *Tables) Upsert(ctx context.Context, table string, rows any, onConflict string) error {
	_, err := t.run(ctx, table, "upsert", func(c *supabase.Client) ([]byte, error) {
		body, _, err := c.From(table).Upsert(rows, onConflict, "minimal", "").Execute()
		return body, err
	})
	return err
}

// Insert adds rows.
func (t *Tables) Insert(ctx context.Context, table string, rows any) error {
	_, err := t.run(ctx, table, "insert", func(c *supabase.Client) ([]byte, error) {
		body, _, err := c.From(table).Insert(rows, false, "", "minimal", "").Execute()
		return body, err
	})
	return err
}

// Select reads every row matching the equality filters into out.
func (t *Tables) Select(ctx context.Context, table string, eq map[string]string, out any) error {
	body, err := t.run(ctx, table, "select", func(c *supabase.Client) ([]byte, error) {
		body, _, err := applyEq(c.From(table).Select("*", "", false), eq).Execute()
		return body, err
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &RemoteError{Class: ClassSchemaMismatch, Table: table, Op: "select", Err: fmt.Errorf("failed to decode rows: %w", err)}
	}
	return nil
}

// Update sets values on every row matching the equality filters.
func (t *Tables) Update(ctx context.Context, table string, values any, eq map[string]string) error {
	_, err := t.run(ctx, table, "update", func(c *supabase.Client) ([]byte, error) {
		body, _, err := applyEq(c.From(table).Update(values, "minimal", ""), eq).Execute()
		return body, err
	})
	return err
}

// Delete removes every row matching the equality filters.
func (t *Tables) Delete(ctx context.Context, table string, eq map[string]string) error {
	if len(eq) == 0 {
		return fmt.Errorf("refusing unfiltered delete on %s", table)
	}
	_, err := t.run(ctx, table, "delete", func(c *supabase.Client) ([]byte, error) {
		body, _, err := applyEq(c.From(table).Delete("minimal", ""), eq).Execute()
		return body, err
	})
	return err
}

// run executes call on the current client. postgrest-go has no context support, so the
// call runs in its own goroutine and ctx only bounds how long we wait for it.
func (t *Tables) run(ctx context.Context, table, op string, call func(*supabase.Client) ([]byte, error)) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrapError(table, op, err)
	}
	client := t.Client()

	type result struct {
		body []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		body, err := call(client)
		done <- result{body, err}
	}()

	select {
	case r := <-done:
		return r.body, wrapError(table, op, r.err)
	case <-ctx.Done():
		return nil, wrapError(table, op, ctx.Err())
	}
}

// applyEq adds eq filters in a stable column order.
func applyEq(fb *postgrest.FilterBuilder, eq map[string]string) *postgrest.FilterBuilder {
	cols := make([]string, 0, len(eq))
	for col := range eq {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	for _, col := range cols {
		fb = fb.Eq(col, eq[col])
	}
	return fb
}
