package workout_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/google/uuid"

	"github.com/ironcycle/ironcycle/internal/errors"
	"github.com/ironcycle/ironcycle/internal/lift"
	"github.com/ironcycle/ironcycle/internal/program"
	"github.com/ironcycle/ironcycle/internal/schedule"
	"github.com/ironcycle/ironcycle/internal/sqlite"
	"github.com/ironcycle/ironcycle/internal/testhelpers"
	"github.com/ironcycle/ironcycle/internal/workout"
)

// dipsExerciseID is a builtin catalog exercise seeded by the database
// fixtures.
const dipsExerciseID = "5f0c5f9a-0b6f-4bfb-9a3e-000000000011"

func newTestServices(t *testing.T) (context.Context, *sqlite.Database, *workout.Service, *program.Service, string) {
	t.Helper()
	ctx := t.Context()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))

	db, err := sqlite.NewDatabase(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := db.Close(); closeErr != nil {
			t.Errorf("Failed to close database: %v", closeErr)
		}
	})

	userID := uuid.NewString()
	_, err = db.ReadWrite.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash) VALUES (?, ?, ?)",
		userID, userID+"@example.com", "not-a-real-hash")
	if err != nil {
		t.Fatalf("Failed to insert test user: %v", err)
	}

	return ctx, db, workout.NewService(db, logger), program.NewService(db, logger), userID
}

// seedProgram creates a four-day program whose whole first cycle lies in
// the past, pressing Monday 2025-01-06 and squatting the following Friday.
func seedProgram(ctx context.Context, t *testing.T, programs *program.Service, userID string) program.CreateResult {
	t.Helper()
	result, err := programs.Create(ctx, userID, program.CreateRequest{
		Name:          "Winter block",
		Arity:         schedule.FourDay,
		StartDate:     time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC),
		TrainingDays:  []string{"monday", "tuesday", "thursday", "friday"},
		IncludeDeload: true,
		TrainingMaxes: map[lift.Lift]float64{
			lift.Squat:      300,
			lift.Deadlift:   350,
			lift.BenchPress: 225,
			lift.Press:      150,
		},
	})
	if err != nil {
		t.Fatalf("Failed to create program: %v", err)
	}
	return result
}

func findWorkout(ctx context.Context, t *testing.T, db *sqlite.Database, programID string, week int, l lift.Lift) string {
	t.Helper()
	var id string
	err := db.ReadOnly.QueryRowContext(ctx, `
		SELECT w.id FROM workouts w
		JOIN workout_main_lifts ml ON ml.workout_id = w.id
		WHERE w.program_id = ? AND w.week_number = ? AND ml.lift = ?`,
		programID, week, string(l)).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to find week %d %s workout: %v", week, l, err)
	}
	return id
}

func countRows(ctx context.Context, t *testing.T, db *sqlite.Database, query string, args ...any) int {
	t.Helper()
	var count int
	if err := db.ReadOnly.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	return count
}

func mainWorkLogs(setThreeReps int, weights [3]float64, reps [3]int) []workout.SetLog {
	logs := []workout.SetLog{
		{Category: lift.SetWorking, SetNumber: 1, ActualReps: reps[0], ActualWeight: weights[0]},
		{Category: lift.SetWorking, SetNumber: 2, ActualReps: reps[1], ActualWeight: weights[1]},
		{Category: lift.SetAMRAP, SetNumber: 3, ActualReps: setThreeReps, ActualWeight: weights[2]},
	}
	return logs
}

func Test_List_Filters(t *testing.T) {
	t.Parallel()
	ctx, _, workouts, programs, userID := newTestServices(t)
	created := seedProgram(ctx, t, programs, userID)

	all, err := workouts.List(ctx, userID, workout.Filters{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 16 {
		t.Fatalf("all workouts = %d, want 16", len(all))
	}

	squats, err := workouts.List(ctx, userID, workout.Filters{Lifts: []lift.Lift{lift.Squat}})
	if err != nil {
		t.Fatalf("List by lift failed: %v", err)
	}
	if len(squats) != 4 {
		t.Errorf("squat workouts = %d, want 4", len(squats))
	}
	for _, w := range squats {
		if len(w.MainLifts) != 1 || w.MainLifts[0].Lift != lift.Squat {
			t.Errorf("workout %s lifts = %v, want squat only", w.ID, w.MainLifts)
		}
	}

	week := 2
	weekTwo, err := workouts.List(ctx, userID, workout.Filters{ProgramID: created.Program.ID, Week: &week})
	if err != nil {
		t.Fatalf("List by week failed: %v", err)
	}
	if len(weekTwo) != 4 {
		t.Errorf("week 2 workouts = %d, want 4", len(weekTwo))
	}

	completed, err := workouts.List(ctx, userID, workout.Filters{Status: workout.StatusCompleted})
	if err != nil {
		t.Fatalf("List by status failed: %v", err)
	}
	if len(completed) != 0 {
		t.Errorf("completed workouts = %d, want 0", len(completed))
	}

	// Unknown status values are ignored rather than rejected.
	bogus, err := workouts.List(ctx, userID, workout.Filters{Status: "resting"})
	if err != nil {
		t.Fatalf("List with unknown status failed: %v", err)
	}
	if len(bogus) != 16 {
		t.Errorf("workouts with unknown status filter = %d, want 16", len(bogus))
	}

	from := time.Date(2025, time.January, 13, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.January, 17, 0, 0, 0, 0, time.UTC)
	ranged, err := workouts.List(ctx, userID, workout.Filters{From: &from, To: &to})
	if err != nil {
		t.Fatalf("List by date range failed: %v", err)
	}
	if len(ranged) != 4 {
		t.Errorf("ranged workouts = %d, want 4", len(ranged))
	}
}

func Test_GetDetail_ScheduledPrescriptions(t *testing.T) {
	t.Parallel()
	ctx, db, workouts, programs, userID := newTestServices(t)
	created := seedProgram(ctx, t, programs, userID)
	id := findWorkout(ctx, t, db, created.Program.ID, 1, lift.Squat)

	detail, err := workouts.GetDetail(ctx, userID, id)
	if err != nil {
		t.Fatalf("GetDetail failed: %v", err)
	}
	if len(detail.Lifts) != 1 {
		t.Fatalf("lift details = %d, want 1", len(detail.Lifts))
	}
	ld := detail.Lifts[0]
	if ld.TrainingMax != 300 {
		t.Errorf("training max = %v, want 300", ld.TrainingMax)
	}

	var warmupWeights []float64
	for _, set := range ld.Warmup {
		warmupWeights = append(warmupWeights, *set.PrescribedWeight)
	}
	if diff := cmp.Diff([]float64{45, 120, 150, 180}, warmupWeights); diff != "" {
		t.Errorf("warmup weights mismatch (-want +got):\n%s", diff)
	}

	var mainWeights []float64
	for _, set := range ld.Main {
		mainWeights = append(mainWeights, *set.PrescribedWeight)
	}
	if diff := cmp.Diff([]float64{195, 225, 255}, mainWeights); diff != "" {
		t.Errorf("main weights mismatch (-want +got):\n%s", diff)
	}
	if ld.Main[2].Category != lift.SetAMRAP {
		t.Errorf("final set category = %s, want amrap", ld.Main[2].Category)
	}
	if diff := cmp.Diff([]float64{45, 45, 10, 5}, ld.Main[2].PlatesPerSide); diff != "" {
		t.Errorf("plates mismatch (-want +got):\n%s", diff)
	}
}

func Test_GetDetail_DeloadHasNoAMRAP(t *testing.T) {
	t.Parallel()
	ctx, db, workouts, programs, userID := newTestServices(t)
	created := seedProgram(ctx, t, programs, userID)
	id := findWorkout(ctx, t, db, created.Program.ID, 4, lift.Squat)

	detail, err := workouts.GetDetail(ctx, userID, id)
	if err != nil {
		t.Fatalf("GetDetail failed: %v", err)
	}
	ld := detail.Lifts[0]
	var mainWeights []float64
	for _, set := range ld.Main {
		if set.Category != lift.SetWorking {
			t.Errorf("deload set %d category = %s, want working", set.SetNumber, set.Category)
		}
		mainWeights = append(mainWeights, *set.PrescribedWeight)
	}
	if diff := cmp.Diff([]float64{120, 150, 180}, mainWeights); diff != "" {
		t.Errorf("deload weights mismatch (-want +got):\n%s", diff)
	}
}

func Test_Complete_RecordsSetsAndRepMax(t *testing.T) {
	t.Parallel()
	ctx, db, workouts, programs, userID := newTestServices(t)
	created := seedProgram(ctx, t, programs, userID)
	id := findWorkout(ctx, t, db, created.Program.ID, 1, lift.Squat)

	result, err := workouts.Complete(ctx, userID, id, workout.CompleteRequest{
		Sets:  mainWorkLogs(8, [3]float64{195, 225, 255}, [3]int{5, 5, 0}),
		Notes: "felt strong",
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if result.Workout.Status != workout.StatusCompleted {
		t.Errorf("status = %s, want completed", result.Workout.Status)
	}
	if result.Workout.CompletedAt == nil {
		t.Error("CompletedAt is nil")
	}
	if got := countRows(ctx, t, db, "SELECT COUNT(*) FROM workout_sets WHERE workout_id = ?", id); got != 3 {
		t.Errorf("logged sets = %d, want 3", got)
	}

	// An 8-rep AMRAP at 255 sets a new rep max with its Epley estimate.
	var weight, estimated float64
	err = db.ReadOnly.QueryRowContext(ctx, `
		SELECT weight, estimated_1rm FROM rep_maxes
		WHERE user_id = ? AND lift = 'squat' AND reps = 8`, userID).Scan(&weight, &estimated)
	if err != nil {
		t.Fatalf("Failed to query rep max: %v", err)
	}
	if weight != 255 {
		t.Errorf("rep max weight = %v, want 255", weight)
	}
	if estimated != 323 {
		t.Errorf("estimated 1RM = %v, want 323", estimated)
	}

	// Three reps over the minimum is solid but unremarkable.
	if !result.Analysis.OverallSuccess {
		t.Error("OverallSuccess = false, want true")
	}
	if got := result.Analysis.Lifts[0].Severity; got != "" {
		t.Errorf("severity = %q, want none", got)
	}
	if result.Analysis.Summary != "Solid workout. All targets met." {
		t.Errorf("summary = %q", result.Analysis.Summary)
	}
}

func Test_Complete_AlreadyCompletedConflicts(t *testing.T) {
	t.Parallel()
	ctx, db, workouts, programs, userID := newTestServices(t)
	created := seedProgram(ctx, t, programs, userID)
	id := findWorkout(ctx, t, db, created.Program.ID, 1, lift.Press)

	req := workout.CompleteRequest{Sets: mainWorkLogs(6, [3]float64{100, 110, 130}, [3]int{5, 5, 0})}
	if _, err := workouts.Complete(ctx, userID, id, req); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if _, err := workouts.Complete(ctx, userID, id, req); !errors.Is(err, workout.ErrConflict) {
		t.Errorf("second Complete error = %v, want ErrConflict", err)
	}
}

func Test_Complete_AMRAPBelowMinimum_Critical(t *testing.T) {
	t.Parallel()
	ctx, db, workouts, programs, userID := newTestServices(t)
	created := seedProgram(ctx, t, programs, userID)
	id := findWorkout(ctx, t, db, created.Program.ID, 1, lift.Deadlift)

	result, err := workouts.Complete(ctx, userID, id, workout.CompleteRequest{
		Sets: mainWorkLogs(3, [3]float64{230, 265, 300}, [3]int{5, 5, 0}),
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	la := result.Analysis.Lifts[0]
	if la.Severity != workout.SeverityCritical {
		t.Fatalf("severity = %s, want critical", la.Severity)
	}
	// 3 reps at 300 estimates a 330 1RM, so the suggested reset is 297.
	if !strings.Contains(la.Recommendation, "Reset your training max to 297 lbs") {
		t.Errorf("recommendation = %q", la.Recommendation)
	}
	if la.AllTargetsMet {
		t.Error("AllTargetsMet = true, want false")
	}
	if result.Analysis.OverallSuccess {
		t.Error("OverallSuccess = true, want false")
	}
	if result.Analysis.Summary != "Workout complete with some missed targets on Deadlift." {
		t.Errorf("summary = %q", result.Analysis.Summary)
	}
	if !result.Analysis.HasRecommendations {
		t.Error("HasRecommendations = false, want true")
	}

	if result.Analysis.Cycle == nil {
		t.Fatal("cycle analysis is nil")
	}
	if result.Analysis.Cycle.Action != workout.CycleActionAdjustTrainingMax {
		t.Errorf("cycle action = %s, want adjust_training_max", result.Analysis.Cycle.Action)
	}
}

func Test_Complete_CloseToMinimumOn531Week_Warning(t *testing.T) {
	t.Parallel()
	ctx, db, workouts, programs, userID := newTestServices(t)
	created := seedProgram(ctx, t, programs, userID)
	id := findWorkout(ctx, t, db, created.Program.ID, 3, lift.Squat)

	result, err := workouts.Complete(ctx, userID, id, workout.CompleteRequest{
		Sets: mainWorkLogs(2, [3]float64{225, 255, 285}, [3]int{5, 3, 0}),
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	la := result.Analysis.Lifts[0]
	if la.Severity != workout.SeverityWarning {
		t.Fatalf("severity = %s, want warning", la.Severity)
	}
	if !strings.Contains(la.Recommendation, "This is close to the minimum.") {
		t.Errorf("recommendation = %q", la.Recommendation)
	}
	// 2 reps at 285 estimates a 304 1RM; 90% of it undercuts the 300 TM.
	if !strings.Contains(la.Recommendation, "consider resetting TM to 273 lbs") {
		t.Errorf("recommendation = %q", la.Recommendation)
	}
	if !result.Analysis.OverallSuccess {
		t.Error("OverallSuccess = false, want true")
	}
}

func Test_Complete_CrushedAMRAP_Info(t *testing.T) {
	t.Parallel()
	ctx, db, workouts, programs, userID := newTestServices(t)
	created := seedProgram(ctx, t, programs, userID)
	id := findWorkout(ctx, t, db, created.Program.ID, 1, lift.BenchPress)

	result, err := workouts.Complete(ctx, userID, id, workout.CompleteRequest{
		Sets: mainWorkLogs(12, [3]float64{145, 170, 190}, [3]int{5, 5, 0}),
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	la := result.Analysis.Lifts[0]
	if la.Severity != workout.SeverityInfo {
		t.Fatalf("severity = %s, want info", la.Severity)
	}
	if !strings.Contains(la.Recommendation, "Excellent performance on Bench Press!") {
		t.Errorf("recommendation = %q", la.Recommendation)
	}
	if result.Analysis.Summary != "Great workout! You hit all your targets and showed strong performance." {
		t.Errorf("summary = %q", result.Analysis.Summary)
	}
	// Praise alone is not actionable.
	if result.Analysis.HasRecommendations {
		t.Error("HasRecommendations = true, want false")
	}
}

func Test_Complete_DeloadSkipsRepMaxes(t *testing.T) {
	t.Parallel()
	ctx, db, workouts, programs, userID := newTestServices(t)
	created := seedProgram(ctx, t, programs, userID)
	id := findWorkout(ctx, t, db, created.Program.ID, 4, lift.Squat)

	result, err := workouts.Complete(ctx, userID, id, workout.CompleteRequest{
		Sets: []workout.SetLog{
			{Category: lift.SetWorking, SetNumber: 1, ActualReps: 5, ActualWeight: 120},
			{Category: lift.SetWorking, SetNumber: 2, ActualReps: 5, ActualWeight: 150},
			{Category: lift.SetWorking, SetNumber: 3, ActualReps: 5, ActualWeight: 180},
		},
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if got := countRows(ctx, t, db, "SELECT COUNT(*) FROM rep_maxes WHERE user_id = ?", userID); got != 0 {
		t.Errorf("rep maxes = %d, want 0", got)
	}
	if got := result.Analysis.Lifts[0].Severity; got != "" {
		t.Errorf("severity = %q, want none", got)
	}
	if result.Analysis.Lifts[0].AMRAPReps != nil {
		t.Error("AMRAPReps set on a deload week")
	}
}

func Test_Complete_MultiLiftRequiresExplicitLift(t *testing.T) {
	t.Parallel()
	ctx, db, workouts, programs, userID := newTestServices(t)
	result, err := programs.Create(ctx, userID, program.CreateRequest{
		Name:          "Busy season",
		Arity:         schedule.TwoDay,
		StartDate:     time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC),
		TrainingDays:  []string{"monday", "thursday"},
		IncludeDeload: true,
		TrainingMaxes: map[lift.Lift]float64{
			lift.Squat:      300,
			lift.Deadlift:   350,
			lift.BenchPress: 225,
			lift.Press:      150,
		},
	})
	if err != nil {
		t.Fatalf("Failed to create program: %v", err)
	}
	id := findWorkout(ctx, t, db, result.Program.ID, 1, lift.Squat)

	_, err = workouts.Complete(ctx, userID, id, workout.CompleteRequest{
		Sets: []workout.SetLog{
			{Category: lift.SetWorking, SetNumber: 1, ActualReps: 5, ActualWeight: 195},
		},
	})
	if !errors.Is(err, workout.ErrValidation) {
		t.Errorf("Complete error = %v, want ErrValidation", err)
	}

	// Naming the lift resolves the ambiguity.
	_, err = workouts.Complete(ctx, userID, id, workout.CompleteRequest{
		Sets: []workout.SetLog{
			{Lift: lift.Squat, Category: lift.SetWorking, SetNumber: 1, ActualReps: 5, ActualWeight: 195},
			{Lift: lift.BenchPress, Category: lift.SetAMRAP, SetNumber: 3, ActualReps: 7, ActualWeight: 190},
		},
	})
	if err != nil {
		t.Fatalf("Complete with explicit lifts failed: %v", err)
	}
}

func Test_Complete_TwoFailingLiftsSuggestDeload(t *testing.T) {
	t.Parallel()
	ctx, db, workouts, programs, userID := newTestServices(t)
	created := seedProgram(ctx, t, programs, userID)

	squatID := findWorkout(ctx, t, db, created.Program.ID, 1, lift.Squat)
	if _, err := workouts.Complete(ctx, userID, squatID, workout.CompleteRequest{
		Sets: mainWorkLogs(7, [3]float64{195, 225, 255}, [3]int{5, 3, 0}),
	}); err != nil {
		t.Fatalf("Complete squat failed: %v", err)
	}

	benchID := findWorkout(ctx, t, db, created.Program.ID, 1, lift.BenchPress)
	result, err := workouts.Complete(ctx, userID, benchID, workout.CompleteRequest{
		Sets: mainWorkLogs(6, [3]float64{145, 170, 190}, [3]int{5, 2, 0}),
	})
	if err != nil {
		t.Fatalf("Complete bench failed: %v", err)
	}

	if result.Analysis.Cycle == nil {
		t.Fatal("cycle analysis is nil")
	}
	if result.Analysis.Cycle.Action != workout.CycleActionDeloadThenAdjust {
		t.Errorf("cycle action = %s, want deload_then_adjust", result.Analysis.Cycle.Action)
	}
	if diff := cmp.Diff([]lift.Lift{lift.BenchPress, lift.Squat}, result.Analysis.Cycle.Lifts); diff != "" {
		t.Errorf("cycle lifts mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(result.Analysis.Cycle.Message, "multiple lifts (Bench Press, Squat)") {
		t.Errorf("cycle message = %q", result.Analysis.Cycle.Message)
	}
}

func Test_GetDetail_CompletedReplayDeduplicatesAccessories(t *testing.T) {
	t.Parallel()
	ctx, db, workouts, programs, userID := newTestServices(t)
	created := seedProgram(ctx, t, programs, userID)
	id := findWorkout(ctx, t, db, created.Program.ID, 1, lift.Squat)

	logs := mainWorkLogs(8, [3]float64{195, 225, 255}, [3]int{5, 5, 0})
	logs = append(logs,
		workout.SetLog{Category: lift.SetWarmup, SetNumber: 1, ActualReps: 5, ActualWeight: 45},
		workout.SetLog{Category: lift.SetAccessory, ExerciseID: dipsExerciseID, SetNumber: 1, ActualReps: 12, ActualWeight: 0},
		workout.SetLog{Category: lift.SetAccessory, ExerciseID: dipsExerciseID, SetNumber: 1, ActualReps: 12, ActualWeight: 0},
	)
	if _, err := workouts.Complete(ctx, userID, id, workout.CompleteRequest{Sets: logs}); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	detail, err := workouts.GetDetail(ctx, userID, id)
	if err != nil {
		t.Fatalf("GetDetail failed: %v", err)
	}
	ld := detail.Lifts[0]
	if len(ld.Warmup) != 1 {
		t.Errorf("warmup sets = %d, want 1", len(ld.Warmup))
	}
	if len(ld.Main) != 3 {
		t.Errorf("main sets = %d, want 3", len(ld.Main))
	}
	if len(detail.Accessories) != 1 {
		t.Errorf("accessory sets = %d, want 1", len(detail.Accessories))
	}
}

func Test_Skip_TerminalStatesConflict(t *testing.T) {
	t.Parallel()
	ctx, db, workouts, programs, userID := newTestServices(t)
	created := seedProgram(ctx, t, programs, userID)
	id := findWorkout(ctx, t, db, created.Program.ID, 1, lift.Press)

	w, err := workouts.Skip(ctx, userID, id)
	if err != nil {
		t.Fatalf("Skip failed: %v", err)
	}
	if w.Status != workout.StatusSkipped {
		t.Errorf("status = %s, want skipped", w.Status)
	}

	if _, err = workouts.Skip(ctx, userID, id); !errors.Is(err, workout.ErrConflict) {
		t.Errorf("second Skip error = %v, want ErrConflict", err)
	}
	_, err = workouts.Complete(ctx, userID, id, workout.CompleteRequest{
		Sets: mainWorkLogs(6, [3]float64{100, 110, 130}, [3]int{5, 5, 0}),
	})
	if !errors.Is(err, workout.ErrConflict) {
		t.Errorf("Complete after Skip error = %v, want ErrConflict", err)
	}
}

func Test_RepMaxes_SurfacesBestPerRepCount(t *testing.T) {
	t.Parallel()
	ctx, db, workouts, programs, userID := newTestServices(t)
	created := seedProgram(ctx, t, programs, userID)

	weekOne := findWorkout(ctx, t, db, created.Program.ID, 1, lift.Squat)
	if _, err := workouts.Complete(ctx, userID, weekOne, workout.CompleteRequest{
		Sets: mainWorkLogs(8, [3]float64{195, 225, 255}, [3]int{5, 5, 0}),
	}); err != nil {
		t.Fatalf("Complete week 1 failed: %v", err)
	}
	weekTwo := findWorkout(ctx, t, db, created.Program.ID, 2, lift.Squat)
	if _, err := workouts.Complete(ctx, userID, weekTwo, workout.CompleteRequest{
		Sets: mainWorkLogs(5, [3]float64{210, 240, 270}, [3]int{3, 3, 0}),
	}); err != nil {
		t.Fatalf("Complete week 2 failed: %v", err)
	}

	maxes, err := workouts.RepMaxes(ctx, userID)
	if err != nil {
		t.Fatalf("RepMaxes failed: %v", err)
	}
	if len(maxes) != 2 {
		t.Fatalf("rep maxes = %d, want 2", len(maxes))
	}
	if maxes[0].Reps != 5 || maxes[0].Weight != 270 {
		t.Errorf("first record = %d reps at %v, want 5 at 270", maxes[0].Reps, maxes[0].Weight)
	}
	if maxes[1].Reps != 8 || maxes[1].Weight != 255 {
		t.Errorf("second record = %d reps at %v, want 8 at 255", maxes[1].Reps, maxes[1].Weight)
	}

	history, err := workouts.RepMaxHistory(ctx, userID, lift.Squat)
	if err != nil {
		t.Fatalf("RepMaxHistory failed: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("history entries = %d, want 2", len(history))
	}
}

func Test_Get_ScopedToOwner(t *testing.T) {
	t.Parallel()
	ctx, db, workouts, programs, userID := newTestServices(t)
	created := seedProgram(ctx, t, programs, userID)
	id := findWorkout(ctx, t, db, created.Program.ID, 1, lift.Press)

	otherID := uuid.NewString()
	_, err := db.ReadWrite.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash) VALUES (?, ?, ?)",
		otherID, otherID+"@example.com", "not-a-real-hash")
	if err != nil {
		t.Fatalf("Failed to insert second user: %v", err)
	}

	if _, err = workouts.Get(ctx, otherID, id); !errors.Is(err, workout.ErrNotFound) {
		t.Errorf("Get as other user error = %v, want ErrNotFound", err)
	}
}
