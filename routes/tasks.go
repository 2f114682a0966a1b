package routes

import (
	"clementus360/mindset/handlers"
	"net/http"
)

// RegisterTaskRoutes registers the daily checklist and activity routes
func RegisterTaskRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	mux.HandleFunc("GET /tasks", h.GetTasksHandler)
	mux.HandleFunc("POST /tasks", h.CreateTaskHandler)
	mux.HandleFunc("PATCH /tasks/{id}", h.UpdateTaskHandler)
	mux.HandleFunc("POST /tasks/{id}/toggle", h.ToggleTaskHandler)
	mux.HandleFunc("POST /tasks/{id}/advice", h.AdviseTaskHandler)
	mux.HandleFunc("DELETE /tasks/{id}", h.DeleteTaskHandler)

	mux.HandleFunc("GET /activity", h.GetActivityHandler)
	mux.HandleFunc("POST /activity", h.RecordActivityHandler)
	mux.HandleFunc("PUT /activity/{date}", h.SetActivityHandler)
	mux.HandleFunc("DELETE /activity", h.ClearActivityHandler)
}
