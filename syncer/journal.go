package syncer

import (
	"context"
	"fmt"
	"strings"

	"clementus360/mindset/supabase"
	"clementus360/mindset/types"

	"github.com/google/uuid"
)

// history loads an append-only list. A missing local copy is seeded from the remote once;
// with no remote it is empty.
func history[T any](ctx context.Context, e *Engine, key, table string) []T {
	var items []T
	if e.read(key, &items) {
		return items
	}
	var remote []T
	if e.fetch(ctx, table, byUser(e.userID()), &remote) && len(remote) > 0 {
		_ = e.write(key, remote)
		return remote
	}
	return []T{}
}

// prepend stores item at the head of the list under key and inserts it remotely.
func prepend[T any](ctx context.Context, e *Engine, key, table string, item T, stamp func(*T, string)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	items := append([]T{item}, history[T](ctx, e, key, table)...)
	if err := e.write(key, items); err != nil {
		return err
	}
	e.push(table, "insert", func(ctx context.Context, r Remote, uid string) error {
		row := item
		stamp(&row, uid)
		return r.Insert(ctx, table, row)
	})
	return nil
}

func (e *Engine) GetBeliefs(ctx context.Context) []types.BeliefEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return history[types.BeliefEntry](ctx, e, KeyBeliefs, supabase.TableBeliefs)
}

// AddBelief records a limiting belief and its reframe, newest first.
func (e *Engine) AddBelief(ctx context.Context, limiting, empowering string) (types.BeliefEntry, error) {
	if strings.TrimSpace(limiting) == "" {
		return types.BeliefEntry{}, fmt.Errorf("belief is empty: %w", ErrInvalid)
	}
	entry := types.BeliefEntry{
		ID:         uuid.NewString(),
		Limiting:   strings.TrimSpace(limiting),
		Empowering: strings.TrimSpace(empowering),
		Date:       e.today(),
	}
	err := prepend(ctx, e, KeyBeliefs, supabase.TableBeliefs, entry, func(b *types.BeliefEntry, uid string) {
		b.UserID = uid
	})
	return entry, err
}

func (e *Engine) GetGratitude(ctx context.Context) []types.GratitudeEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return history[types.GratitudeEntry](ctx, e, KeyGratitude, supabase.TableGratitude)
}

// AddGratitude records a gratitude entry and the coach's response, newest first.
func (e *Engine) AddGratitude(ctx context.Context, text, response string) (types.GratitudeEntry, error) {
	if strings.TrimSpace(text) == "" {
		return types.GratitudeEntry{}, fmt.Errorf("gratitude entry is empty: %w", ErrInvalid)
	}
	entry := types.GratitudeEntry{
		ID:         uuid.NewString(),
		Text:       strings.TrimSpace(text),
		AIResponse: response,
		Date:       e.today(),
	}
	err := prepend(ctx, e, KeyGratitude, supabase.TableGratitude, entry, func(g *types.GratitudeEntry, uid string) {
		g.UserID = uid
	})
	return entry, err
}

// GetChatHistory returns the conversation oldest first.
func (e *Engine) GetChatHistory(ctx context.Context) []types.ChatMessage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return history[types.ChatMessage](ctx, e, KeyChatHistory, supabase.TableChatHistory)
}

// AddChatMessage appends a message to the conversation.
func (e *Engine) AddChatMessage(ctx context.Context, role types.Role, text string) (types.ChatMessage, error) {
	now := e.now()
	msg := types.ChatMessage{ID: uuid.NewString(), Role: role, Text: text, CreatedAt: &now}

	e.mu.Lock()
	defer e.mu.Unlock()

	msgs := append(history[types.ChatMessage](ctx, e, KeyChatHistory, supabase.TableChatHistory), msg)
	if err := e.write(KeyChatHistory, msgs); err != nil {
		return types.ChatMessage{}, err
	}
	e.push(supabase.TableChatHistory, "insert", func(ctx context.Context, r Remote, uid string) error {
		row := msg
		row.UserID = uid
		return r.Insert(ctx, supabase.TableChatHistory, row)
	})
	return msg, nil
}

// ClearChatHistory empties the conversation locally and deletes the user's remote rows.
func (e *Engine) ClearChatHistory() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.write(KeyChatHistory, []types.ChatMessage{}); err != nil {
		return err
	}
	e.push(supabase.TableChatHistory, "delete", func(ctx context.Context, r Remote, uid string) error {
		return r.Delete(ctx, supabase.TableChatHistory, byUser(uid))
	})
	return nil
}
