package main

import (
	"net/http"
	"time"

	"github.com/ironcycle/ironcycle/internal/contexthelpers"
	"github.com/ironcycle/ironcycle/internal/workout"
)

type missedWorkoutJSON struct {
	Workout       workoutResponse `json:"workout"`
	DaysOverdue   int             `json:"days_overdue"`
	CanReschedule bool            `json:"can_reschedule"`
}

type handleResultJSON struct {
	Workout     workoutResponse `json:"workout"`
	Action      string          `json:"action"`
	Rescheduled int             `json:"rescheduled,omitempty"`
}

func newHandleResultJSON(h workout.HandleResult) handleResultJSON {
	return handleResultJSON{
		Workout:     newWorkoutResponse(h.Workout),
		Action:      h.Action,
		Rescheduled: h.Rescheduled,
	}
}

func (app *application) missedGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	report, err := app.workoutService.Missed(r.Context(), userID)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	missed := make([]missedWorkoutJSON, 0, len(report.Workouts))
	for _, mw := range report.Workouts {
		missed = append(missed, missedWorkoutJSON{
			Workout:       newWorkoutResponse(mw.Workout),
			DaysOverdue:   mw.DaysOverdue,
			CanReschedule: mw.CanReschedule,
		})
	}
	app.writeJSON(w, r, http.StatusOK, struct {
		Workouts   []missedWorkoutJSON `json:"workouts"`
		Preference string              `json:"preference"`
	}{
		Workouts:   missed,
		Preference: report.Preference,
	})
}

func (app *application) workoutMissedPOST(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())

	var req struct {
		Action       string  `json:"action"`
		RescheduleTo *string `json:"reschedule_to"`
	}
	if !app.readJSON(w, r, &req) {
		return
	}

	var rescheduleTo *time.Time
	if req.RescheduleTo != nil {
		parsed, err := parseDate(*req.RescheduleTo)
		if err != nil {
			app.validationError(w, r, err.Error())
			return
		}
		rescheduleTo = &parsed
	}

	result, err := app.workoutService.HandleMissed(r.Context(), userID, r.PathValue("id"), req.Action, rescheduleTo)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newHandleResultJSON(result))
}

func (app *application) missedAutoPOST(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	results, err := app.workoutService.AutoHandleMissed(r.Context(), userID)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	handled := make([]handleResultJSON, 0, len(results))
	for _, h := range results {
		handled = append(handled, newHandleResultJSON(h))
	}
	app.writeJSON(w, r, http.StatusOK, struct {
		Handled []handleResultJSON `json:"handled"`
	}{Handled: handled})
}
