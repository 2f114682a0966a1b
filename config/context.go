package config

import "clementus360/mindset/types"

// Coach context limits
var ContextConfig = types.ContextConfig{
	MaxRecentMessages: 10,
	MaxMessageChars:   2000,
	MaxHistoryChars:   8000,
}

// Activity sources. Each one bumps the daily activity counter.
const (
	ActivitySourceChat      = "chat"
	ActivitySourceGratitude = "gratitude"
	ActivitySourceBelief    = "belief"
	ActivitySourcePlan      = "plan"
	ActivitySourceTask      = "task"
)
