package types

import "time"

type Profile struct {
	ID          string     `json:"id"`
	FullName    string     `json:"full_name"`
	Mantra      string     `json:"mantra"`
	AvatarImage string     `json:"avatar_image,omitempty"`
	Statement   string     `json:"statement,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}
