package handlers

import (
	"net/http"
	"strings"
)

func (h *Handlers) GetSupportTicketsHandler(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.app.Engine.GetSupportTickets(r.Context()))
}

func (h *Handlers) CreateSupportTicketHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Subject string `json:"subject"`
		Channel string `json:"channel_preference"`
		Message string `json:"message"`
	}
	if !decode(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Subject) == "" || strings.TrimSpace(body.Message) == "" {
		writeError(w, "Missing subject or message", http.StatusBadRequest)
		return
	}

	ticket, err := h.app.Engine.CreateSupportTicket(r.Context(), body.Subject, body.Channel, body.Message)
	if err != nil {
		writeFailure(w, "create support ticket", err)
		return
	}
	writeData(w, http.StatusCreated, ticket)
}

func (h *Handlers) SubmitFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Rating  int    `json:"rating"`
		Message string `json:"message"`
	}
	if !decode(w, r, &body) {
		return
	}

	fb, err := h.app.Engine.SubmitFeedback(r.Context(), body.Rating, body.Message)
	if err != nil {
		writeFailure(w, "submit feedback", err)
		return
	}
	writeData(w, http.StatusCreated, fb)
}
