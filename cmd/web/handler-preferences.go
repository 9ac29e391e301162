package main

import (
	"net/http"

	"github.com/ironcycle/ironcycle/internal/auth"
	"github.com/ironcycle/ironcycle/internal/contexthelpers"
	"github.com/ironcycle/ironcycle/internal/lift"
)

type preferencesJSON struct {
	WeightUnit        string  `json:"weight_unit"`
	RoundingIncrement float64 `json:"rounding_increment"`
	MissedWorkoutPref string  `json:"missed_workout_preference"`
}

func newPreferencesJSON(p auth.Preferences) preferencesJSON {
	return preferencesJSON{
		WeightUnit:        string(p.WeightUnit),
		RoundingIncrement: p.RoundingIncrement,
		MissedWorkoutPref: p.MissedWorkoutPref,
	}
}

func (app *application) preferencesGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	prefs, err := app.authService.Preferences(r.Context(), userID)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newPreferencesJSON(prefs))
}

func (app *application) preferencesPUT(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())

	var req preferencesJSON
	if !app.readJSON(w, r, &req) {
		return
	}

	updated, err := app.authService.UpdatePreferences(r.Context(), userID, auth.Preferences{
		WeightUnit:        lift.WeightUnit(req.WeightUnit),
		RoundingIncrement: req.RoundingIncrement,
		MissedWorkoutPref: req.MissedWorkoutPref,
	})
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newPreferencesJSON(updated))
}
