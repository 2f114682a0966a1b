package routes

import (
	"clementus360/mindset/handlers"
	"net/http"
)

// RegisterSessionRoutes registers auth, connectivity and device-level routes
func RegisterSessionRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	mux.HandleFunc("GET /session", h.GetSessionHandler)
	mux.HandleFunc("POST /session/signin", h.SignInHandler)
	mux.HandleFunc("POST /session/signup", h.SignUpHandler)
	mux.HandleFunc("POST /session/signout", h.SignOutHandler)
	mux.HandleFunc("POST /session/reset-password", h.ResetPasswordHandler)
	mux.HandleFunc("PUT /connectivity", h.SetConnectivityHandler)
	mux.HandleFunc("POST /sync", h.SyncHandler)
	mux.HandleFunc("DELETE /local", h.PurgeHandler)
	mux.HandleFunc("GET /profile", h.GetProfileHandler)
	mux.HandleFunc("PUT /profile", h.SaveProfileHandler)
	mux.HandleFunc("GET /preferences", h.GetPreferencesHandler)
	mux.HandleFunc("PATCH /preferences", h.UpdatePreferencesHandler)
}
