package types

import (
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

type ChatMessage struct {
	ID        string     `json:"id,omitempty"`
	UserID    string     `json:"user_id,omitempty"`
	Role      Role       `json:"role"`
	Text      string     `json:"text"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Success      bool         `json:"success"`
	UserMessage  *ChatMessage `json:"user_message,omitempty"`
	Reply        *ChatMessage `json:"reply,omitempty"`
	Escalated    bool         `json:"escalated,omitempty"`
	ErrorMessage string       `json:"error,omitempty"` // only set on failure
}
