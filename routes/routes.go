package routes

import (
	"clementus360/mindset/handlers"
	"net/http"
)

// RegisterAllRoutes registers all application routes
func RegisterAllRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	RegisterSessionRoutes(mux, h)
	RegisterTaskRoutes(mux, h)
	RegisterChatRoutes(mux, h)
	RegisterJournalRoutes(mux, h)
	RegisterPlanRoutes(mux, h)
	RegisterGoalRoutes(mux, h)
	RegisterSupportRoutes(mux, h)
	RegisterAudioRoutes(mux, h)
}
