package handlers

import (
	"clementus360/mindset/app"
	"clementus360/mindset/audio"
	"clementus360/mindset/coach"
	"clementus360/mindset/config"
	"clementus360/mindset/llm"
	"clementus360/mindset/supabase"
	"clementus360/mindset/syncer"
	"clementus360/mindset/types"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.Response{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, message string, status int) {
	resp := types.Response{
		Success:      false,
		ErrorMessage: message,
	}
	writeJSON(w, status, resp)
}

// writeFailure maps a domain error to a status and logs server-side failures.
func writeFailure(w http.ResponseWriter, action string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		config.Logger.Error("Failed to "+action+": ", err)
	} else {
		config.Logger.Debug("Rejected "+action+": ", err)
	}
	writeError(w, err.Error(), status)
}

func statusFor(err error) int {
	var apiErr *llm.APIError
	switch {
	case errors.Is(err, coach.ErrEmptyInput), errors.Is(err, syncer.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, syncer.ErrNotSignedIn), errors.Is(err, supabase.ErrNotSignedIn),
		errors.Is(err, supabase.ErrSessionRevoked):
		return http.StatusUnauthorized
	case errors.Is(err, syncer.ErrNotFound), errors.Is(err, app.ErrUnknownScript):
		return http.StatusNotFound
	case errors.Is(err, syncer.ErrDayLocked), errors.Is(err, audio.ErrEmptyScript):
		return http.StatusConflict
	case errors.Is(err, syncer.ErrOffline), errors.Is(err, syncer.ErrRemoteDisabled),
		errors.Is(err, llm.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.As(err, &apiErr), errors.Is(err, llm.ErrEmptyResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		config.Logger.Warn("Failed to decode request JSON: ", err)
		writeError(w, "Invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

// pathInt parses a numeric path segment.
func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		writeError(w, "Invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return n, true
}

// Handlers serves the bridge endpoints on top of one app instance.
type Handlers struct {
	app *app.App
}

func New(a *app.App) *Handlers {
	return &Handlers{app: a}
}
