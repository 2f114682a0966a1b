package types

import "time"

// DateLayout is the local calendar day format used for activity logs and the
// checklist reset marker.
const DateLayout = "2006-01-02"

type ActivityLog struct {
	UserID string `json:"user_id,omitempty"`
	Date   string `json:"date"`
	Count  int    `json:"count"`
}

// LocalDate formats t as a local calendar day.
func LocalDate(t time.Time) string {
	return t.Local().Format(DateLayout)
}
