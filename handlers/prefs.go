package handlers

import (
	"net/http"
)

type preferences struct {
	Language       string `json:"language"`
	OnboardingSeen bool   `json:"onboarding_seen"`
	ActiveTab      string `json:"active_tab"`
}

func (h *Handlers) preferences() preferences {
	e := h.app.Engine
	return preferences{Language: e.Language(), OnboardingSeen: e.OnboardingSeen(), ActiveTab: e.ActiveTab()}
}

func (h *Handlers) GetPreferencesHandler(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.preferences())
}

// UpdatePreferencesHandler applies only the fields present in the body.
func (h *Handlers) UpdatePreferencesHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Language       *string `json:"language"`
		OnboardingSeen *bool   `json:"onboarding_seen"`
		ActiveTab      *string `json:"active_tab"`
	}
	if !decode(w, r, &body) {
		return
	}

	e := h.app.Engine
	if body.Language != nil {
		if err := e.SetLanguage(*body.Language); err != nil {
			writeFailure(w, "save language", err)
			return
		}
	}
	if body.OnboardingSeen != nil && *body.OnboardingSeen {
		if err := e.MarkOnboardingSeen(); err != nil {
			writeFailure(w, "save onboarding state", err)
			return
		}
	}
	if body.ActiveTab != nil {
		if err := e.SetActiveTab(*body.ActiveTab); err != nil {
			writeFailure(w, "save active tab", err)
			return
		}
	}
	writeData(w, http.StatusOK, h.preferences())
}
