package handlers

import (
	"clementus360/mindset/config"
	"clementus360/mindset/supabase"
	"clementus360/mindset/types"
	"errors"
	"net/http"
	"strings"
)

func (h *Handlers) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.app.Status())
}

func (h *Handlers) SignInHandler(w http.ResponseWriter, r *http.Request) {
	var creds types.Credentials
	if !decode(w, r, &creds) {
		return
	}
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		writeError(w, "Missing email or password", http.StatusBadRequest)
		return
	}

	status, err := h.app.SignIn(r.Context(), creds)
	if err != nil {
		config.Logger.Warn("Sign in failed: ", err)
		if statusFor(err) == http.StatusInternalServerError {
			writeError(w, "Invalid email or password", http.StatusUnauthorized)
			return
		}
		writeFailure(w, "sign in", err)
		return
	}
	writeData(w, http.StatusOK, status)
}

func (h *Handlers) SignUpHandler(w http.ResponseWriter, r *http.Request) {
	var creds types.Credentials
	if !decode(w, r, &creds) {
		return
	}
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || len(creds.Password) < 6 {
		writeError(w, "A valid email and a password of at least 6 characters are required", http.StatusBadRequest)
		return
	}

	status, err := h.app.SignUp(r.Context(), creds)
	if errors.Is(err, supabase.ErrConfirmationRequired) {
		writeJSON(w, http.StatusAccepted, types.Response{
			Success:      true,
			Data:         status,
			ErrorMessage: "Check your email to confirm your account",
		})
		return
	}
	if err != nil {
		writeFailure(w, "sign up", err)
		return
	}
	writeData(w, http.StatusCreated, status)
}

func (h *Handlers) SignOutHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.app.SignOut(r.Context()); err != nil {
		writeFailure(w, "sign out", err)
		return
	}
	writeData(w, http.StatusOK, h.app.Status())
}

func (h *Handlers) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Email) == "" {
		writeError(w, "Missing email", http.StatusBadRequest)
		return
	}
	if err := h.app.ResetPassword(r.Context(), strings.TrimSpace(body.Email)); err != nil {
		writeFailure(w, "send password reset", err)
		return
	}
	writeData(w, http.StatusOK, nil)
}

// SetConnectivityHandler receives the shell's network status. Coming back online
// triggers a full sync in the background.
func (h *Handlers) SetConnectivityHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Online *bool `json:"online"`
	}
	if !decode(w, r, &body) {
		return
	}
	if body.Online == nil {
		writeError(w, "Missing online", http.StatusBadRequest)
		return
	}
	h.app.Engine.SetOnline(*body.Online)
	writeData(w, http.StatusOK, h.app.Status())
}

func (h *Handlers) SyncHandler(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.app.Engine.SyncAll(r.Context()))
}

func (h *Handlers) PurgeHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Engine.Purge(); err != nil {
		writeFailure(w, "clear local data", err)
		return
	}
	writeData(w, http.StatusOK, nil)
}
