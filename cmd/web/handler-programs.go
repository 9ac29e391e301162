package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ironcycle/ironcycle/internal/contexthelpers"
	"github.com/ironcycle/ironcycle/internal/lift"
	"github.com/ironcycle/ironcycle/internal/program"
	"github.com/ironcycle/ironcycle/internal/schedule"
)

type accessoryJSON struct {
	ExerciseID   string `json:"exercise_id"`
	Sets         int    `json:"sets"`
	Reps         int    `json:"reps"`
	CircuitGroup string `json:"circuit_group,omitempty"`
}

func newAccessoryJSON(a program.AccessoryPrescription) accessoryJSON {
	return accessoryJSON(a)
}

func (a accessoryJSON) toPrescription() program.AccessoryPrescription {
	return program.AccessoryPrescription(a)
}

type programResponse struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Schedule      string   `json:"schedule"`
	StartDate     string   `json:"start_date"`
	EndDate       *string  `json:"end_date,omitempty"`
	TargetCycles  *int     `json:"target_cycles,omitempty"`
	TrainingDays  []string `json:"training_days"`
	IncludeDeload bool     `json:"include_deload"`
	Status        string   `json:"status"`
	CreatedAt     string   `json:"created_at"`
}

func newProgramResponse(p program.Program) programResponse {
	return programResponse{
		ID:            p.ID,
		Name:          p.Name,
		Schedule:      string(p.Arity),
		StartDate:     formatDate(p.StartDate),
		EndDate:       formatDatePtr(p.EndDate),
		TargetCycles:  p.TargetCycles,
		TrainingDays:  p.TrainingDays,
		IncludeDeload: p.IncludeDeload,
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt.UTC().Format(timestampFormat),
	}
}

func (app *application) programCreatePOST(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())

	var req struct {
		Name          string                     `json:"name"`
		Schedule      string                     `json:"schedule"`
		StartDate     string                     `json:"start_date"`
		TrainingDays  []string                   `json:"training_days"`
		IncludeDeload bool                       `json:"include_deload"`
		TargetCycles  *int                       `json:"target_cycles"`
		EndDate       *string                    `json:"end_date"`
		TrainingMaxes map[string]float64         `json:"training_maxes"`
		Unit          string                     `json:"unit"`
		Accessories   map[string][]accessoryJSON `json:"accessories"`
	}
	if !app.readJSON(w, r, &req) {
		return
	}

	arity, err := schedule.ParseArity(req.Schedule)
	if err != nil {
		app.validationError(w, r, err.Error())
		return
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		app.validationError(w, r, err.Error())
		return
	}
	var endDate *time.Time
	if req.EndDate != nil {
		parsed, dateErr := parseDate(*req.EndDate)
		if dateErr != nil {
			app.validationError(w, r, dateErr.Error())
			return
		}
		endDate = &parsed
	}

	maxes := make(map[lift.Lift]float64, len(req.TrainingMaxes))
	for name, weight := range req.TrainingMaxes {
		l, liftErr := lift.Parse(name)
		if liftErr != nil {
			app.validationError(w, r, liftErr.Error())
			return
		}
		maxes[l] = weight
	}

	var unit lift.WeightUnit
	if req.Unit != "" {
		if unit, err = lift.ParseWeightUnit(req.Unit); err != nil {
			app.validationError(w, r, err.Error())
			return
		}
	}

	accessories := make(map[int][]program.AccessoryPrescription, len(req.Accessories))
	for slotStr, list := range req.Accessories {
		slot, slotErr := strconv.Atoi(slotStr)
		if slotErr != nil {
			app.validationError(w, r, "accessory keys must be workout-day numbers")
			return
		}
		prescriptions := make([]program.AccessoryPrescription, 0, len(list))
		for _, a := range list {
			prescriptions = append(prescriptions, a.toPrescription())
		}
		accessories[slot] = prescriptions
	}

	result, err := app.programService.Create(r.Context(), userID, program.CreateRequest{
		Name:          req.Name,
		Arity:         arity,
		StartDate:     startDate,
		TrainingDays:  req.TrainingDays,
		IncludeDeload: req.IncludeDeload,
		TargetCycles:  req.TargetCycles,
		EndDate:       endDate,
		TrainingMaxes: maxes,
		Unit:          unit,
		Accessories:   accessories,
	})
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusCreated, struct {
		Program           programResponse `json:"program"`
		WorkoutsGenerated int             `json:"workouts_generated"`
	}{
		Program:           newProgramResponse(result.Program),
		WorkoutsGenerated: result.WorkoutsGenerated,
	})
}

func (app *application) programListGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	programs, err := app.programService.List(r.Context(), userID)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	responses := make([]programResponse, 0, len(programs))
	for _, p := range programs {
		responses = append(responses, newProgramResponse(p))
	}
	app.writeJSON(w, r, http.StatusOK, responses)
}

func (app *application) programGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	detail, err := app.programService.Detail(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, struct {
		programResponse
		CurrentCycle  int `json:"current_cycle"`
		CycleWorkouts int `json:"cycle_workouts"`
	}{
		programResponse: newProgramResponse(detail.Program),
		CurrentCycle:    detail.CurrentCycle,
		CycleWorkouts:   detail.CycleWorkouts,
	})
}

func (app *application) programPATCH(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())

	var req struct {
		Name         *string `json:"name"`
		Status       *string `json:"status"`
		EndDate      *string `json:"end_date"`
		TargetCycles *int    `json:"target_cycles"`
	}
	if !app.readJSON(w, r, &req) {
		return
	}

	update := program.UpdateRequest{
		Name:         req.Name,
		TargetCycles: req.TargetCycles,
	}
	if req.Status != nil {
		status := program.Status(*req.Status)
		update.Status = &status
	}
	if req.EndDate != nil {
		parsed, err := parseDate(*req.EndDate)
		if err != nil {
			app.validationError(w, r, err.Error())
			return
		}
		update.EndDate = &parsed
	}

	p, err := app.programService.Update(r.Context(), userID, r.PathValue("id"), update)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newProgramResponse(p))
}

func (app *application) programDELETE(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	if err := app.programService.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		app.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type templateResponse struct {
	ID          string          `json:"id"`
	Day         int             `json:"day"`
	Lift        string          `json:"lift"`
	Accessories []accessoryJSON `json:"accessories"`
}

func (app *application) programTemplatesGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	templates, err := app.programService.Templates(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	responses := make([]templateResponse, 0, len(templates))
	for _, t := range templates {
		accessories := make([]accessoryJSON, 0, len(t.Accessories))
		for _, a := range t.Accessories {
			accessories = append(accessories, newAccessoryJSON(a))
		}
		responses = append(responses, templateResponse{
			ID:          t.ID,
			Day:         t.Slot,
			Lift:        string(t.Lift),
			Accessories: accessories,
		})
	}
	app.writeJSON(w, r, http.StatusOK, responses)
}

func (app *application) programAccessoriesPUT(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())

	day, err := strconv.Atoi(r.PathValue("day"))
	if err != nil {
		app.validationError(w, r, "day must be a workout-day number")
		return
	}

	var req []accessoryJSON
	if !app.readJSON(w, r, &req) {
		return
	}
	accessories := make([]program.AccessoryPrescription, 0, len(req))
	for _, a := range req {
		accessories = append(accessories, a.toPrescription())
	}

	if err = app.programService.UpdateAccessories(r.Context(), userID, r.PathValue("id"), day, accessories); err != nil {
		app.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) programCompleteCyclePOST(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	completion, err := app.programService.CompleteCycle(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	type liftUpdateJSON struct {
		Lift      string  `json:"lift"`
		OldWeight float64 `json:"old_weight"`
		NewWeight float64 `json:"new_weight"`
		Increment float64 `json:"increment"`
	}
	updates := make([]liftUpdateJSON, 0, len(completion.Updates))
	for _, u := range completion.Updates {
		updates = append(updates, liftUpdateJSON{
			Lift:      string(u.Lift),
			OldWeight: u.OldWeight,
			NewWeight: u.NewWeight,
			Increment: u.Increment,
		})
	}
	app.writeJSON(w, r, http.StatusOK, struct {
		CompletedCycle int              `json:"completed_cycle"`
		NextCycle      int              `json:"next_cycle"`
		Updates        []liftUpdateJSON `json:"updates"`
	}{
		CompletedCycle: completion.CompletedCycle,
		NextCycle:      completion.NextCycle,
		Updates:        updates,
	})
}

func (app *application) programNextCyclePOST(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	next, err := app.programService.GenerateNextCycle(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, struct {
		CycleNumber       int    `json:"cycle_number"`
		StartDate         string `json:"start_date"`
		WorkoutsGenerated int    `json:"workouts_generated"`
	}{
		CycleNumber:       next.CycleNumber,
		StartDate:         formatDate(next.StartDate),
		WorkoutsGenerated: next.WorkoutsGenerated,
	})
}

func (app *application) programHistoryGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	history, err := app.programService.History(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	type historyJSON struct {
		ID        string  `json:"id"`
		Lift      string  `json:"lift"`
		OldWeight float64 `json:"old_weight"`
		NewWeight float64 `json:"new_weight"`
		Reason    string  `json:"reason"`
		Note      string  `json:"note,omitempty"`
		ChangedAt string  `json:"changed_at"`
	}
	responses := make([]historyJSON, 0, len(history))
	for _, h := range history {
		responses = append(responses, historyJSON{
			ID:        h.ID,
			Lift:      string(h.Lift),
			OldWeight: h.OldWeight,
			NewWeight: h.NewWeight,
			Reason:    string(h.Reason),
			Note:      h.Note,
			ChangedAt: h.ChangedAt.UTC().Format(timestampFormat),
		})
	}
	app.writeJSON(w, r, http.StatusOK, responses)
}
