package routes

import (
	"clementus360/mindset/handlers"
	"net/http"
)

// RegisterPlanRoutes registers the seven-day plan routes
func RegisterPlanRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	mux.HandleFunc("GET /plan", h.GetPlanHandler)
	mux.HandleFunc("PATCH /plan/{day}", h.SavePlanDayHandler)
	mux.HandleFunc("POST /plan/{day}/complete", h.CompletePlanDayHandler)
	mux.HandleFunc("POST /plan/{day}/reopen", h.ReopenPlanDayHandler)
}

// RegisterGoalRoutes registers goal plan routes
func RegisterGoalRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	mux.HandleFunc("GET /goals", h.GetGoalPlansHandler)
	mux.HandleFunc("POST /goals", h.CreateGoalPlanHandler)
	mux.HandleFunc("POST /goals/{id}/steps/{step}/toggle", h.ToggleGoalStepHandler)
	mux.HandleFunc("DELETE /goals/{id}", h.DeleteGoalPlanHandler)
}

// RegisterSupportRoutes registers support and feedback routes
func RegisterSupportRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	mux.HandleFunc("GET /support", h.GetSupportTicketsHandler)
	mux.HandleFunc("POST /support", h.CreateSupportTicketHandler)
	mux.HandleFunc("POST /feedback", h.SubmitFeedbackHandler)
}
