package handlers

import (
	"clementus360/mindset/config"
	"clementus360/mindset/types"
	"net/http"
	"strings"
)

func (h *Handlers) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, "Missing message", http.StatusBadRequest)
		return
	}

	resp, err := h.app.Coach.Chat(r.Context(), req.Message)
	if err != nil {
		config.Logger.Error("Chat failed: ", err)
		// The user's message is still returned so the shell can show it with a retry.
		writeJSON(w, statusFor(err), resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) GetChatHistoryHandler(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.app.Engine.GetChatHistory(r.Context()))
}

func (h *Handlers) ClearChatHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Engine.ClearChatHistory(); err != nil {
		writeFailure(w, "clear chat history", err)
		return
	}
	writeData(w, http.StatusOK, nil)
}

func (h *Handlers) EscalateHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Subject    string `json:"subject"`
		Transcript string `json:"transcript"`
	}
	if !decode(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Subject) == "" {
		body.Subject = "Coach conversation needs attention"
	}

	ticket, err := h.app.Coach.Escalate(r.Context(), body.Subject, body.Transcript)
	if err != nil {
		writeFailure(w, "escalate conversation", err)
		return
	}
	writeData(w, http.StatusCreated, ticket)
}
