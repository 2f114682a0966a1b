package syncer

import (
	"context"
	"fmt"
	"strings"

	"clementus360/mindset/supabase"
	"clementus360/mindset/types"

	"github.com/google/uuid"
)

func (e *Engine) GetSupportTickets(ctx context.Context) []types.SupportTicket {
	e.mu.Lock()
	defer e.mu.Unlock()

	tickets := history[types.SupportTicket](ctx, e, KeySupportTickets, supabase.TableSupportTickets)
	if types.NormalizeTickets(tickets) {
		_ = e.write(KeySupportTickets, tickets)
	}
	return tickets
}

// CreateSupportTicket opens a ticket. It only succeeds online; the ticket is kept locally
// after the remote accepted it.
func (e *Engine) CreateSupportTicket(ctx context.Context, subject, channel, message string) (types.SupportTicket, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return types.SupportTicket{}, fmt.Errorf("ticket subject is empty: %w", ErrInvalid)
	}
	uid, err := e.requireRemote()
	if err != nil {
		return types.SupportTicket{}, err
	}
	// Seed the local list first so the new ticket is not fetched back as history.
	e.GetSupportTickets(ctx)

	now := e.now()
	ticket := types.SupportTicket{
		ID:                uuid.NewString(),
		UserID:            uid,
		Status:            types.TicketOpen,
		Subject:           subject,
		ChannelPreference: channel,
		CreatedAt:         now,
		Messages:          []types.TicketMessage{},
	}
	if message = strings.TrimSpace(message); message != "" {
		ticket.Messages = append(ticket.Messages, types.TicketMessage{Sender: "user", Text: message, CreatedAt: now})
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	if err := e.observe(supabase.TableSupportTickets, "insert", e.remote.Insert(ctx, supabase.TableSupportTickets, ticket)); err != nil {
		return types.SupportTicket{}, fmt.Errorf("failed to create support ticket: %w", err)
	}

	e.mu.Lock()
	var tickets []types.SupportTicket
	e.read(KeySupportTickets, &tickets)
	_ = e.write(KeySupportTickets, append([]types.SupportTicket{ticket}, tickets...))
	e.mu.Unlock()
	return ticket, nil
}

// SubmitFeedback sends a rating from 1 to 5 with an optional message. It only succeeds online.
func (e *Engine) SubmitFeedback(ctx context.Context, rating int, message string) (types.Feedback, error) {
	if rating < 1 || rating > 5 {
		return types.Feedback{}, fmt.Errorf("rating %d: %w", rating, ErrInvalid)
	}
	uid, err := e.requireRemote()
	if err != nil {
		return types.Feedback{}, err
	}

	fb := types.Feedback{
		ID:        uuid.NewString(),
		UserID:    uid,
		Rating:    rating,
		Message:   strings.TrimSpace(message),
		CreatedAt: e.now(),
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	if err := e.observe(supabase.TableFeedbacks, "insert", e.remote.Insert(ctx, supabase.TableFeedbacks, fb)); err != nil {
		return types.Feedback{}, fmt.Errorf("failed to submit feedback: %w", err)
	}
	return fb, nil
}
