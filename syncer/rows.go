package syncer

import (
	"time"

	"clementus360/mindset/types"
)

// planRow is a plan day as the plans table stores it. The reopened flag is device state
// and never leaves the local store.
type planRow struct {
	Day         int        `json:"day"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	Answer      string     `json:"answer,omitempty"`
	AIFeedback  string     `json:"ai_feedback,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func planRows(plan []types.PlanDay, uid string) []planRow {
	rows := make([]planRow, 0, len(plan))
	for _, d := range plan {
		rows = append(rows, planRow{
			Day:         d.Day,
			UserID:      uid,
			Title:       d.Title,
			Description: d.Description,
			Completed:   d.Completed,
			Answer:      d.Answer,
			AIFeedback:  d.AIFeedback,
			CompletedAt: d.CompletedAt,
		})
	}
	return rows
}

// profileRow is the profiles table shape. updated_at is stamped locally only.
type profileRow struct {
	ID          string `json:"id"`
	FullName    string `json:"full_name"`
	Mantra      string `json:"mantra"`
	AvatarImage string `json:"avatar_image,omitempty"`
	Statement   string `json:"statement,omitempty"`
}

func profileRowOf(p types.Profile, uid string) profileRow {
	return profileRow{
		ID:          uid,
		FullName:    p.FullName,
		Mantra:      p.Mantra,
		AvatarImage: p.AvatarImage,
		Statement:   p.Statement,
	}
}
