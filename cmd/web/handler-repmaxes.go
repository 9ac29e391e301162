package main

import (
	"net/http"

	"github.com/ironcycle/ironcycle/internal/contexthelpers"
	"github.com/ironcycle/ironcycle/internal/lift"
	"github.com/ironcycle/ironcycle/internal/workout"
)

type repMaxJSON struct {
	ID           string  `json:"id"`
	Lift         string  `json:"lift"`
	Reps         int     `json:"reps"`
	Weight       float64 `json:"weight"`
	Unit         string  `json:"unit"`
	Estimated1RM float64 `json:"estimated_1rm"`
	AchievedAt   string  `json:"achieved_at"`
}

func newRepMaxJSONs(repMaxes []workout.RepMax) []repMaxJSON {
	out := make([]repMaxJSON, 0, len(repMaxes))
	for _, rm := range repMaxes {
		out = append(out, repMaxJSON{
			ID:           rm.ID,
			Lift:         string(rm.Lift),
			Reps:         rm.Reps,
			Weight:       rm.Weight,
			Unit:         string(rm.Unit),
			Estimated1RM: rm.Estimated1RM,
			AchievedAt:   formatDate(rm.AchievedAt),
		})
	}
	return out
}

func (app *application) repMaxesGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	repMaxes, err := app.workoutService.RepMaxes(r.Context(), userID)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newRepMaxJSONs(repMaxes))
}

func (app *application) repMaxHistoryGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())

	l, err := lift.Parse(r.PathValue("lift"))
	if err != nil {
		app.validationError(w, r, err.Error())
		return
	}

	history, err := app.workoutService.RepMaxHistory(r.Context(), userID, l)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newRepMaxJSONs(history))
}
