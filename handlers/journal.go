package handlers

import (
	"net/http"
)

func (h *Handlers) GetBeliefsHandler(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.app.Engine.GetBeliefs(r.Context()))
}

// ReframeBeliefHandler asks the coach for an empowering belief and stores the pair.
func (h *Handlers) ReframeBeliefHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Limiting string `json:"limiting"`
	}
	if !decode(w, r, &body) {
		return
	}

	entry, err := h.app.Coach.ReframeBelief(r.Context(), body.Limiting)
	if err != nil {
		writeFailure(w, "reframe belief", err)
		return
	}
	writeData(w, http.StatusCreated, entry)
}

func (h *Handlers) GetGratitudeHandler(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.app.Engine.GetGratitude(r.Context()))
}

func (h *Handlers) AddGratitudeHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if !decode(w, r, &body) {
		return
	}

	entry, err := h.app.Coach.ReflectGratitude(r.Context(), body.Text)
	if err != nil {
		writeFailure(w, "save gratitude", err)
		return
	}
	writeData(w, http.StatusCreated, entry)
}
