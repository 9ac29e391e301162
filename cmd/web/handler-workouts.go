package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ironcycle/ironcycle/internal/contexthelpers"
	"github.com/ironcycle/ironcycle/internal/lift"
	"github.com/ironcycle/ironcycle/internal/workout"
)

type mainLiftJSON struct {
	Lift        string  `json:"lift"`
	Position    int     `json:"position"`
	WeekType    string  `json:"week_type"`
	TrainingMax float64 `json:"training_max"`
}

type workoutResponse struct {
	ID            string         `json:"id"`
	ProgramID     string         `json:"program_id"`
	Cycle         int            `json:"cycle"`
	Week          int            `json:"week"`
	WeekType      string         `json:"week_type"`
	ScheduledDate string         `json:"scheduled_date"`
	Status        string         `json:"status"`
	CompletedAt   *string        `json:"completed_at,omitempty"`
	Notes         string         `json:"notes,omitempty"`
	Lifts         []mainLiftJSON `json:"lifts"`
}

func newWorkoutResponse(w workout.Workout) workoutResponse {
	lifts := make([]mainLiftJSON, 0, len(w.MainLifts))
	for _, ml := range w.MainLifts {
		lifts = append(lifts, mainLiftJSON{
			Lift:        string(ml.Lift),
			Position:    ml.Position,
			WeekType:    string(ml.WeekType),
			TrainingMax: ml.TrainingMax,
		})
	}
	return workoutResponse{
		ID:            w.ID,
		ProgramID:     w.ProgramID,
		Cycle:         w.CycleNumber,
		Week:          w.WeekNumber,
		WeekType:      string(w.WeekType),
		ScheduledDate: formatDate(w.ScheduledDate),
		Status:        string(w.Status),
		CompletedAt:   formatTimestampPtr(w.CompletedAt),
		Notes:         w.Notes,
		Lifts:         lifts,
	}
}

type setJSON struct {
	ID               string    `json:"id,omitempty"`
	Lift             string    `json:"lift,omitempty"`
	ExerciseID       string    `json:"exercise_id,omitempty"`
	Category         string    `json:"category"`
	SetNumber        int       `json:"set_number"`
	PrescribedReps   *int      `json:"prescribed_reps,omitempty"`
	PrescribedWeight *float64  `json:"prescribed_weight,omitempty"`
	Percentage       *float64  `json:"percentage,omitempty"`
	ActualReps       *int      `json:"actual_reps,omitempty"`
	ActualWeight     *float64  `json:"actual_weight,omitempty"`
	Unit             string    `json:"unit"`
	TargetMet        bool      `json:"target_met"`
	Notes            string    `json:"notes,omitempty"`
	CircuitGroup     string    `json:"circuit_group,omitempty"`
	PlatesPerSide    []float64 `json:"plates_per_side,omitempty"`
}

func newSetJSON(s workout.Set) setJSON {
	return setJSON{
		ID:               s.ID,
		Lift:             string(s.Lift),
		ExerciseID:       s.ExerciseID,
		Category:         string(s.Category),
		SetNumber:        s.SetNumber,
		PrescribedReps:   s.PrescribedReps,
		PrescribedWeight: s.PrescribedWeight,
		Percentage:       s.Percentage,
		ActualReps:       s.ActualReps,
		ActualWeight:     s.ActualWeight,
		Unit:             string(s.Unit),
		TargetMet:        s.TargetMet,
		Notes:            s.Notes,
		CircuitGroup:     s.CircuitGroup,
		PlatesPerSide:    s.PlatesPerSide,
	}
}

func newSetJSONs(sets []workout.Set) []setJSON {
	out := make([]setJSON, 0, len(sets))
	for _, s := range sets {
		out = append(out, newSetJSON(s))
	}
	return out
}

type detailResponse struct {
	workoutResponse
	LiftDetails []liftDetailJSON `json:"lift_details"`
	Accessories []setJSON        `json:"accessories"`
}

type liftDetailJSON struct {
	Lift        string    `json:"lift"`
	WeekType    string    `json:"week_type"`
	TrainingMax float64   `json:"training_max"`
	Warmup      []setJSON `json:"warmup"`
	Main        []setJSON `json:"main"`
}

func newDetailResponse(d workout.Detail) detailResponse {
	liftDetails := make([]liftDetailJSON, 0, len(d.Lifts))
	for _, ld := range d.Lifts {
		liftDetails = append(liftDetails, liftDetailJSON{
			Lift:        string(ld.Lift),
			WeekType:    string(ld.WeekType),
			TrainingMax: ld.TrainingMax,
			Warmup:      newSetJSONs(ld.Warmup),
			Main:        newSetJSONs(ld.Main),
		})
	}
	return detailResponse{
		workoutResponse: newWorkoutResponse(d.Workout),
		LiftDetails:     liftDetails,
		Accessories:     newSetJSONs(d.Accessories),
	}
}

func (app *application) workoutListGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())

	query := r.URL.Query()
	filters := workout.Filters{
		ProgramID: query.Get("program_id"),
		Status:    workout.Status(query.Get("status")),
	}
	if from := query.Get("from"); from != "" {
		parsed, err := parseDate(from)
		if err != nil {
			app.validationError(w, r, err.Error())
			return
		}
		filters.From = &parsed
	}
	if to := query.Get("to"); to != "" {
		parsed, err := parseDate(to)
		if err != nil {
			app.validationError(w, r, err.Error())
			return
		}
		filters.To = &parsed
	}
	if cycle := query.Get("cycle"); cycle != "" {
		parsed, err := strconv.Atoi(cycle)
		if err != nil {
			app.validationError(w, r, "cycle must be a number")
			return
		}
		filters.Cycle = &parsed
	}
	if week := query.Get("week"); week != "" {
		parsed, err := strconv.Atoi(week)
		if err != nil {
			app.validationError(w, r, "week must be a number")
			return
		}
		filters.Week = &parsed
	}
	for _, name := range query["lift"] {
		l, err := lift.Parse(name)
		if err != nil {
			app.validationError(w, r, err.Error())
			return
		}
		filters.Lifts = append(filters.Lifts, l)
	}

	workouts, err := app.workoutService.List(r.Context(), userID, filters)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	responses := make([]workoutResponse, 0, len(workouts))
	for _, wo := range workouts {
		responses = append(responses, newWorkoutResponse(wo))
	}
	app.writeJSON(w, r, http.StatusOK, responses)
}

func (app *application) workoutGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	detail, err := app.workoutService.GetDetail(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newDetailResponse(detail))
}

func (app *application) workoutCompletePOST(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())

	var req struct {
		Sets []struct {
			Lift       string  `json:"lift"`
			ExerciseID string  `json:"exercise_id"`
			Category   string  `json:"category"`
			SetNumber  int     `json:"set_number"`
			Reps       int     `json:"reps"`
			Weight     float64 `json:"weight"`
			Notes      string  `json:"notes"`
		} `json:"sets"`
		Notes       string  `json:"notes"`
		CompletedAt *string `json:"completed_at"`
	}
	if !app.readJSON(w, r, &req) {
		return
	}

	complete := workout.CompleteRequest{Notes: req.Notes}
	if req.CompletedAt != nil {
		parsed, err := time.Parse(time.RFC3339, *req.CompletedAt)
		if err != nil {
			app.validationError(w, r, "completed_at must be an RFC 3339 timestamp")
			return
		}
		complete.CompletedAt = &parsed
	}
	for _, s := range req.Sets {
		log := workout.SetLog{
			ExerciseID:   s.ExerciseID,
			Category:     lift.SetCategory(s.Category),
			SetNumber:    s.SetNumber,
			ActualReps:   s.Reps,
			ActualWeight: s.Weight,
			Notes:        s.Notes,
		}
		if s.Lift != "" {
			l, err := lift.Parse(s.Lift)
			if err != nil {
				app.validationError(w, r, err.Error())
				return
			}
			log.Lift = l
		}
		complete.Sets = append(complete.Sets, log)
	}

	result, err := app.workoutService.Complete(r.Context(), userID, r.PathValue("id"), complete)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, struct {
		Workout  workoutResponse `json:"workout"`
		Analysis analysisJSON    `json:"analysis"`
	}{
		Workout:  newWorkoutResponse(result.Workout),
		Analysis: newAnalysisJSON(result.Analysis),
	})
}

func (app *application) workoutSkipPOST(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	wo, err := app.workoutService.Skip(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newWorkoutResponse(wo))
}

type failedSetJSON struct {
	SetNumber        int     `json:"set_number"`
	Category         string  `json:"category"`
	PrescribedReps   int     `json:"prescribed_reps"`
	ActualReps       int     `json:"actual_reps"`
	PrescribedWeight float64 `json:"prescribed_weight"`
}

type liftAnalysisJSON struct {
	Lift                 string          `json:"lift"`
	AllTargetsMet        bool            `json:"all_targets_met"`
	FailedSets           []failedSetJSON `json:"failed_sets,omitempty"`
	AMRAPReps            *int            `json:"amrap_reps,omitempty"`
	AMRAPMinimum         *int            `json:"amrap_minimum,omitempty"`
	AMRAPMetMinimum      *bool           `json:"amrap_met_minimum,omitempty"`
	TrainingMax          float64         `json:"training_max"`
	Estimated1RM         *float64        `json:"estimated_1rm,omitempty"`
	SuggestedTrainingMax *float64        `json:"suggested_training_max,omitempty"`
	Recommendation       string          `json:"recommendation,omitempty"`
	Severity             string          `json:"severity,omitempty"`
}

type cycleAnalysisJSON struct {
	Action  string   `json:"action"`
	Lifts   []string `json:"lifts"`
	Message string   `json:"message"`
}

type analysisJSON struct {
	OverallSuccess     bool               `json:"overall_success"`
	Lifts              []liftAnalysisJSON `json:"lifts"`
	Summary            string             `json:"summary"`
	HasRecommendations bool               `json:"has_recommendations"`
	Cycle              *cycleAnalysisJSON `json:"cycle,omitempty"`
}

func newAnalysisJSON(a workout.Analysis) analysisJSON {
	lifts := make([]liftAnalysisJSON, 0, len(a.Lifts))
	for _, la := range a.Lifts {
		failed := make([]failedSetJSON, 0, len(la.FailedSets))
		for _, fs := range la.FailedSets {
			failed = append(failed, failedSetJSON{
				SetNumber:        fs.SetNumber,
				Category:         string(fs.Category),
				PrescribedReps:   fs.PrescribedReps,
				ActualReps:       fs.ActualReps,
				PrescribedWeight: fs.PrescribedWeight,
			})
		}
		lifts = append(lifts, liftAnalysisJSON{
			Lift:                 string(la.Lift),
			AllTargetsMet:        la.AllTargetsMet,
			FailedSets:           failed,
			AMRAPReps:            la.AMRAPReps,
			AMRAPMinimum:         la.AMRAPMinimum,
			AMRAPMetMinimum:      la.AMRAPMetMinimum,
			TrainingMax:          la.TrainingMax,
			Estimated1RM:         la.Estimated1RM,
			SuggestedTrainingMax: la.SuggestedTrainingMax,
			Recommendation:       la.Recommendation,
			Severity:             string(la.Severity),
		})
	}
	result := analysisJSON{
		OverallSuccess:     a.OverallSuccess,
		Lifts:              lifts,
		Summary:            a.Summary,
		HasRecommendations: a.HasRecommendations,
	}
	if a.Cycle != nil {
		cycleLifts := make([]string, 0, len(a.Cycle.Lifts))
		for _, l := range a.Cycle.Lifts {
			cycleLifts = append(cycleLifts, string(l))
		}
		result.Cycle = &cycleAnalysisJSON{
			Action:  a.Cycle.Action,
			Lifts:   cycleLifts,
			Message: a.Cycle.Message,
		}
	}
	return result
}
