package types

import "time"

type TicketStatus string

const (
	TicketOpen     TicketStatus = "open"
	TicketResolved TicketStatus = "resolved"
)

type TicketMessage struct {
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type SupportTicket struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id,omitempty"`
	Status            TicketStatus    `json:"status"`
	Subject           string          `json:"subject"`
	ChannelPreference string          `json:"channel_preference"`
	CreatedAt         time.Time       `json:"created_at"`
	Messages          []TicketMessage `json:"messages"`
}

// NormalizeTickets defaults the status of tickets stored before it existed.
func NormalizeTickets(tickets []SupportTicket) bool {
	changed := false
	for i := range tickets {
		if tickets[i].Status == "" {
			tickets[i].Status = TicketOpen
			changed = true
		}
	}
	return changed
}

type Feedback struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Rating    int       `json:"rating"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
