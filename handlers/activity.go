package handlers

import (
	"net/http"
)

func (h *Handlers) GetActivityHandler(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.app.Engine.GetActivityLogs(r.Context()))
}

func (h *Handlers) RecordActivityHandler(w http.ResponseWriter, r *http.Request) {
	log, err := h.app.Engine.RecordActivity(r.Context())
	if err != nil {
		writeFailure(w, "record activity", err)
		return
	}
	writeData(w, http.StatusOK, log)
}

func (h *Handlers) SetActivityHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Count int `json:"count"`
	}
	if !decode(w, r, &body) {
		return
	}

	log, err := h.app.Engine.SetActivityCount(r.Context(), r.PathValue("date"), body.Count)
	if err != nil {
		writeFailure(w, "set activity", err)
		return
	}
	writeData(w, http.StatusOK, log)
}

func (h *Handlers) ClearActivityHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Engine.ClearActivity(); err != nil {
		writeFailure(w, "clear activity", err)
		return
	}
	writeData(w, http.StatusOK, nil)
}
