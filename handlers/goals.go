package handlers

import (
	"net/http"
)

func (h *Handlers) GetGoalPlansHandler(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.app.Engine.GetGoalPlans(r.Context()))
}

func (h *Handlers) CreateGoalPlanHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Goal      string `json:"goal"`
		Timeframe string `json:"timeframe"`
	}
	if !decode(w, r, &body) {
		return
	}

	plan, err := h.app.Coach.GenerateGoalPlan(r.Context(), body.Goal, body.Timeframe)
	if err != nil {
		writeFailure(w, "generate goal plan", err)
		return
	}
	writeData(w, http.StatusCreated, plan)
}

func (h *Handlers) ToggleGoalStepHandler(w http.ResponseWriter, r *http.Request) {
	plan, err := h.app.Engine.ToggleGoalStep(r.Context(), r.PathValue("id"), r.PathValue("step"))
	if err != nil {
		writeFailure(w, "toggle goal step", err)
		return
	}
	writeData(w, http.StatusOK, plan)
}

func (h *Handlers) DeleteGoalPlanHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Engine.DeleteGoalPlan(r.Context(), r.PathValue("id")); err != nil {
		writeFailure(w, "delete goal plan", err)
		return
	}
	writeData(w, http.StatusOK, nil)
}
