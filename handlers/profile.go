package handlers

import (
	"clementus360/mindset/types"
	"net/http"
)

func (h *Handlers) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.app.Engine.GetProfile(r.Context()))
}

func (h *Handlers) SaveProfileHandler(w http.ResponseWriter, r *http.Request) {
	var p types.Profile
	if !decode(w, r, &p) {
		return
	}

	saved, err := h.app.Engine.SaveProfile(p)
	if err != nil {
		writeFailure(w, "save profile", err)
		return
	}
	writeData(w, http.StatusOK, saved)
}
