package types

// Response is the envelope every bridge endpoint answers with.
type Response struct {
	Success      bool   `json:"success"`
	Data         any    `json:"data,omitempty"`
	ErrorMessage string `json:"error,omitempty"` // only set on failure
}
