package routes

import (
	"clementus360/mindset/handlers"
	"net/http"
)

// RegisterChatRoutes registers all chat-related routes
func RegisterChatRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	mux.HandleFunc("POST /chat", h.ChatHandler)
	mux.HandleFunc("GET /chat/history", h.GetChatHistoryHandler)
	mux.HandleFunc("DELETE /chat/history", h.ClearChatHistoryHandler)
	mux.HandleFunc("POST /chat/escalate", h.EscalateHandler)
}

// RegisterJournalRoutes registers belief and gratitude routes
func RegisterJournalRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	mux.HandleFunc("GET /beliefs", h.GetBeliefsHandler)
	mux.HandleFunc("POST /beliefs", h.ReframeBeliefHandler)
	mux.HandleFunc("GET /gratitude", h.GetGratitudeHandler)
	mux.HandleFunc("POST /gratitude", h.AddGratitudeHandler)
}
