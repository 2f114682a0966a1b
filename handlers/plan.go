package handlers

import (
	"clementus360/mindset/syncer"
	"clementus360/mindset/types"
	"net/http"
)

type planDayView struct {
	types.PlanDay
	Unlocked bool `json:"unlocked"`
}

func (h *Handlers) GetPlanHandler(w http.ResponseWriter, r *http.Request) {
	plan := h.app.Engine.GetPlan(r.Context())
	now := h.app.Engine.Now()
	days := make([]planDayView, len(plan))
	for i, d := range plan {
		days[i] = planDayView{PlanDay: d, Unlocked: syncer.PlanDayUnlocked(plan, d.Day, now)}
	}
	writeData(w, http.StatusOK, days)
}

// SavePlanDayHandler stores a draft answer without completing the day.
func (h *Handlers) SavePlanDayHandler(w http.ResponseWriter, r *http.Request) {
	day, ok := pathInt(w, r, "day")
	if !ok {
		return
	}
	var body types.PlanDay
	if !decode(w, r, &body) {
		return
	}
	body.Day = day

	saved, err := h.app.Engine.SavePlanDay(r.Context(), body)
	if err != nil {
		writeFailure(w, "save plan day", err)
		return
	}
	writeData(w, http.StatusOK, saved)
}

// CompletePlanDayHandler has the coach review the answer and completes the day.
func (h *Handlers) CompletePlanDayHandler(w http.ResponseWriter, r *http.Request) {
	day, ok := pathInt(w, r, "day")
	if !ok {
		return
	}
	var body struct {
		Answer string `json:"answer"`
	}
	if !decode(w, r, &body) {
		return
	}

	done, err := h.app.Coach.ReviewPlanDay(r.Context(), day, body.Answer)
	if err != nil {
		writeFailure(w, "complete plan day", err)
		return
	}
	writeData(w, http.StatusOK, done)
}

func (h *Handlers) ReopenPlanDayHandler(w http.ResponseWriter, r *http.Request) {
	day, ok := pathInt(w, r, "day")
	if !ok {
		return
	}

	reopened, err := h.app.Engine.ReopenPlanDay(r.Context(), day)
	if err != nil {
		writeFailure(w, "reopen plan day", err)
		return
	}
	writeData(w, http.StatusOK, reopened)
}
