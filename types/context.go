package types

type ContextConfig struct {
	MaxRecentMessages int `json:"max_recent_messages"`
	MaxMessageChars   int `json:"max_message_chars"`
	MaxHistoryChars   int `json:"max_history_chars"`
}
