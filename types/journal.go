package types

type BeliefEntry struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id,omitempty"`
	Limiting   string `json:"limiting"`
	Empowering string `json:"empowering"`
	Date       string `json:"date"`
}

type GratitudeEntry struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id,omitempty"`
	Text       string `json:"text"`
	AIResponse string `json:"ai_response"`
	Date       string `json:"date"`
}
