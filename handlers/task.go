package handlers

import (
	"net/http"
	"strings"
)

func (h *Handlers) GetTasksHandler(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.app.Engine.GetTasks(r.Context()))
}

func (h *Handlers) CreateTaskHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if !decode(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		writeError(w, "Missing text", http.StatusBadRequest)
		return
	}

	task, err := h.app.Engine.AddTask(r.Context(), body.Text)
	if err != nil {
		writeFailure(w, "create task", err)
		return
	}
	writeData(w, http.StatusCreated, task)
}

func (h *Handlers) ToggleTaskHandler(w http.ResponseWriter, r *http.Request) {
	task, err := h.app.Engine.ToggleTask(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, "toggle task", err)
		return
	}
	writeData(w, http.StatusOK, task)
}

func (h *Handlers) UpdateTaskHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
		Note string `json:"note"`
	}
	if !decode(w, r, &body) {
		return
	}

	task, err := h.app.Engine.UpdateTask(r.Context(), r.PathValue("id"), body.Text, body.Note)
	if err != nil {
		writeFailure(w, "update task", err)
		return
	}
	writeData(w, http.StatusOK, task)
}

func (h *Handlers) DeleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Engine.DeleteTask(r.Context(), r.PathValue("id")); err != nil {
		writeFailure(w, "delete task", err)
		return
	}
	writeData(w, http.StatusOK, nil)
}

func (h *Handlers) AdviseTaskHandler(w http.ResponseWriter, r *http.Request) {
	task, err := h.app.Coach.AdviseTask(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, "advise on task", err)
		return
	}
	writeData(w, http.StatusOK, task)
}
