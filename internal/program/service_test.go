package program_test

import (
	"context"
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
)

func newTestService(t *testing.T) (context.Context, *sqlite.Database, *program.Service, string) {
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

	return ctx, db, program.NewService(db, logger), userID
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func fourDayRequest() program.CreateRequest {
	return program.CreateRequest{
		Name:          "Winter block",
		Arity:         schedule.FourDay,
		StartDate:     date(2025, time.January, 6),
		TrainingDays:  []string{"monday", "tuesday", "thursday", "friday"},
		IncludeDeload: true,
		TrainingMaxes: map[lift.Lift]float64{
			lift.Squat:      300,
			lift.Deadlift:   350,
			lift.BenchPress: 225,
			lift.Press:      150,
		},
	}
}

func countRows(ctx context.Context, t *testing.T, db *sqlite.Database, query string, args ...any) int {
	t.Helper()
	var count int
	if err := db.ReadOnly.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	return count
}

func Test_Create_FourDayGeneratesFullCycle(t *testing.T) {
	t.Parallel()
	ctx, db, svc, userID := newTestService(t)

	result, err := svc.Create(ctx, userID, fourDayRequest())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if result.WorkoutsGenerated != 16 {
		t.Errorf("WorkoutsGenerated = %d, want 16", result.WorkoutsGenerated)
	}
	if got := countRows(ctx, t, db, "SELECT COUNT(*) FROM workouts WHERE program_id = ?", result.Program.ID); got != 16 {
		t.Errorf("workout rows = %d, want 16", got)
	}
	for week := 1; week <= 4; week++ {
		if got := countRows(ctx, t, db,
			"SELECT COUNT(*) FROM workouts WHERE program_id = ? AND week_number = ?",
			result.Program.ID, week); got != 4 {
			t.Errorf("week %d workouts = %d, want 4", week, got)
		}
	}

	// First training day is the press day.
	var firstLift, firstDate string
	err = db.ReadOnly.QueryRowContext(ctx, `
		SELECT ml.lift, w.scheduled_date
		FROM workouts w JOIN workout_main_lifts ml ON ml.workout_id = w.id
		WHERE w.program_id = ?
		ORDER BY w.scheduled_date LIMIT 1`, result.Program.ID).Scan(&firstLift, &firstDate)
	if err != nil {
		t.Fatalf("Failed to query first workout: %v", err)
	}
	if firstLift != "press" {
		t.Errorf("first lift = %s, want press", firstLift)
	}
	if firstDate != "2025-01-06" {
		t.Errorf("first date = %s, want 2025-01-06", firstDate)
	}
}

func Test_Create_WithoutDeload(t *testing.T) {
	t.Parallel()
	ctx, _, svc, userID := newTestService(t)

	req := fourDayRequest()
	req.IncludeDeload = false
	result, err := svc.Create(ctx, userID, req)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if result.WorkoutsGenerated != 12 {
		t.Errorf("WorkoutsGenerated = %d, want 12", result.WorkoutsGenerated)
	}
}

func Test_Create_TwoDayPairsLifts(t *testing.T) {
	t.Parallel()
	ctx, db, svc, userID := newTestService(t)

	req := fourDayRequest()
	req.Arity = schedule.TwoDay
	req.TrainingDays = []string{"monday", "thursday"}
	result, err := svc.Create(ctx, userID, req)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if result.WorkoutsGenerated != 8 {
		t.Errorf("WorkoutsGenerated = %d, want 8 (4 weeks x 2 days)", result.WorkoutsGenerated)
	}

	// The first day trains squat and bench press together.
	rows, err := db.ReadOnly.QueryContext(ctx, `
		SELECT ml.lift FROM workouts w
		JOIN workout_main_lifts ml ON ml.workout_id = w.id
		WHERE w.program_id = ? AND w.scheduled_date = '2025-01-06'
		ORDER BY ml.position`, result.Program.ID)
	if err != nil {
		t.Fatalf("Failed to query lifts: %v", err)
	}
	defer rows.Close()
	var lifts []string
	for rows.Next() {
		var l string
		if err = rows.Scan(&l); err != nil {
			t.Fatalf("Failed to scan lift: %v", err)
		}
		lifts = append(lifts, l)
	}
	want := []string{"squat", "bench_press"}
	if diff := cmp.Diff(want, lifts); diff != "" {
		t.Errorf("day-one lifts mismatch (-want +got):\n%s", diff)
	}
}

func Test_Create_ThreeDayRollingSchedule(t *testing.T) {
	t.Parallel()
	ctx, db, svc, userID := newTestService(t)

	req := fourDayRequest()
	req.Arity = schedule.ThreeDay
	req.TrainingDays = []string{"monday", "wednesday", "friday"}
	result, err := svc.Create(ctx, userID, req)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Three sessions per week for five weeks; week 5 packs four
	// lift-instances onto its three days.
	if result.WorkoutsGenerated != 15 {
		t.Errorf("WorkoutsGenerated = %d, want 15", result.WorkoutsGenerated)
	}
	if got := countRows(ctx, t, db, `
		SELECT COUNT(*) FROM workout_main_lifts ml
		JOIN workouts w ON w.id = ml.workout_id
		WHERE w.program_id = ?`, result.Program.ID); got != 16 {
		t.Errorf("main-lift instances = %d, want 16", got)
	}
	if got := countRows(ctx, t, db,
		"SELECT COUNT(*) FROM workouts WHERE program_id = ? AND week_number = 5",
		result.Program.ID); got != 3 {
		t.Errorf("week 5 workouts = %d, want 3", got)
	}
	if got := countRows(ctx, t, db, `
		SELECT COUNT(*) FROM workout_main_lifts ml
		JOIN workouts w ON w.id = ml.workout_id
		WHERE w.program_id = ? AND w.week_number = 5`, result.Program.ID); got != 4 {
		t.Errorf("week 5 lift instances = %d, want 4", got)
	}
	// All of week 5 is deload.
	if got := countRows(ctx, t, db, `
		SELECT COUNT(*) FROM workout_main_lifts ml
		JOIN workouts w ON w.id = ml.workout_id
		WHERE w.program_id = ? AND w.week_number = 5 AND ml.week_type != 'week_4_deload'`,
		result.Program.ID); got != 0 {
		t.Errorf("non-deload lifts in week 5 = %d, want 0", got)
	}

	// Each lift advances through its own phase: in week 2 the squat is
	// still on 5s while the press has moved to 3s.
	var squatWeekType, pressWeekType string
	err = db.ReadOnly.QueryRowContext(ctx, `
		SELECT ml.week_type FROM workout_main_lifts ml
		JOIN workouts w ON w.id = ml.workout_id
		WHERE w.program_id = ? AND w.week_number = 2 AND ml.lift = 'squat'`,
		result.Program.ID).Scan(&squatWeekType)
	if err != nil {
		t.Fatalf("Failed to query squat week type: %v", err)
	}
	err = db.ReadOnly.QueryRowContext(ctx, `
		SELECT ml.week_type FROM workout_main_lifts ml
		JOIN workouts w ON w.id = ml.workout_id
		WHERE w.program_id = ? AND w.week_number = 2 AND ml.lift = 'press'`,
		result.Program.ID).Scan(&pressWeekType)
	if err != nil {
		t.Fatalf("Failed to query press week type: %v", err)
	}
	if squatWeekType != "week_1_5s" {
		t.Errorf("week 2 squat week type = %s, want week_1_5s", squatWeekType)
	}
	if pressWeekType != "week_2_3s" {
		t.Errorf("week 2 press week type = %s, want week_2_3s", pressWeekType)
	}
}

func Test_Create_Validation(t *testing.T) {
	t.Parallel()
	ctx, _, svc, userID := newTestService(t)

	tests := []struct {
		name   string
		mutate func(*program.CreateRequest)
	}{
		{
			name:   "empty name",
			mutate: func(r *program.CreateRequest) { r.Name = "" },
		},
		{
			name:   "wrong day count",
			mutate: func(r *program.CreateRequest) { r.TrainingDays = []string{"monday", "tuesday"} },
		},
		{
			name: "unknown weekday",
			mutate: func(r *program.CreateRequest) {
				r.TrainingDays = []string{"monday", "tuesday", "thursday", "caturday"}
			},
		},
		{
			name: "duplicate weekday",
			mutate: func(r *program.CreateRequest) {
				r.TrainingDays = []string{"monday", "monday", "thursday", "friday"}
			},
		},
		{
			name:   "missing training max",
			mutate: func(r *program.CreateRequest) { delete(r.TrainingMaxes, lift.Squat) },
		},
		{
			name:   "non-positive training max",
			mutate: func(r *program.CreateRequest) { r.TrainingMaxes[lift.Press] = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := fourDayRequest()
			tt.mutate(&req)
			_, err := svc.Create(ctx, userID, req)
			if !errors.Is(err, program.ErrValidation) {
				t.Errorf("Create error = %v, want ErrValidation", err)
			}
		})
	}
}

func Test_Create_OverlapConflict(t *testing.T) {
	t.Parallel()
	ctx, _, svc, userID := newTestService(t)

	if _, err := svc.Create(ctx, userID, fourDayRequest()); err != nil {
		t.Fatalf("First create failed: %v", err)
	}

	// An open-ended active program blocks any later start date.
	second := fourDayRequest()
	second.Name = "Conflicting block"
	second.StartDate = date(2025, time.June, 2)
	if _, err := svc.Create(ctx, userID, second); !errors.Is(err, program.ErrConflict) {
		t.Errorf("Create error = %v, want ErrConflict", err)
	}
}

func Test_Create_BoundedProgramsDoNotConflict(t *testing.T) {
	t.Parallel()
	ctx, _, svc, userID := newTestService(t)

	first := fourDayRequest()
	cycles := 1
	first.TargetCycles = &cycles // ends 4 weeks after start
	if _, err := svc.Create(ctx, userID, first); err != nil {
		t.Fatalf("First create failed: %v", err)
	}

	second := fourDayRequest()
	second.Name = "Spring block"
	second.StartDate = date(2025, time.June, 2)
	if _, err := svc.Create(ctx, userID, second); err != nil {
		t.Errorf("Create failed for non-overlapping program: %v", err)
	}
}

func Test_CompleteCycle_Progression(t *testing.T) {
	t.Parallel()
	ctx, db, svc, userID := newTestService(t)

	result, err := svc.Create(ctx, userID, fourDayRequest())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	completion, err := svc.CompleteCycle(ctx, userID, result.Program.ID)
	if err != nil {
		t.Fatalf("CompleteCycle failed: %v", err)
	}

	if completion.CompletedCycle != 1 || completion.NextCycle != 2 {
		t.Errorf("cycles = %d -> %d, want 1 -> 2", completion.CompletedCycle, completion.NextCycle)
	}

	wantWeights := map[lift.Lift]float64{
		lift.Squat:      310,
		lift.Deadlift:   360,
		lift.BenchPress: 230,
		lift.Press:      155,
	}
	for _, update := range completion.Updates {
		if update.NewWeight != wantWeights[update.Lift] {
			t.Errorf("%s new weight = %v, want %v", update.Lift, update.NewWeight, wantWeights[update.Lift])
		}
	}

	// Exactly one new snapshot and one audit row per lift.
	for _, l := range lift.All {
		if got := countRows(ctx, t, db,
			"SELECT COUNT(*) FROM training_maxes WHERE program_id = ? AND lift = ? AND cycle_number = 2",
			result.Program.ID, string(l)); got != 1 {
			t.Errorf("%s cycle-2 training maxes = %d, want 1", l, got)
		}
		if got := countRows(ctx, t, db,
			"SELECT COUNT(*) FROM training_max_history WHERE program_id = ? AND lift = ?",
			result.Program.ID, string(l)); got != 1 {
			t.Errorf("%s history rows = %d, want 1", l, got)
		}
	}

	var note string
	err = db.ReadOnly.QueryRowContext(ctx,
		"SELECT note FROM training_max_history WHERE program_id = ? LIMIT 1",
		result.Program.ID).Scan(&note)
	if err != nil {
		t.Fatalf("Failed to query history note: %v", err)
	}
	if note != "Cycle 1 completed, auto-progression" {
		t.Errorf("history note = %q, want %q", note, "Cycle 1 completed, auto-progression")
	}
}

func Test_CompleteCycle_FreezesGeneratedPrescriptions(t *testing.T) {
	t.Parallel()
	ctx, db, svc, userID := newTestService(t)

	result, err := svc.Create(ctx, userID, fourDayRequest())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err = svc.CompleteCycle(ctx, userID, result.Program.ID); err != nil {
		t.Fatalf("CompleteCycle failed: %v", err)
	}

	// Cycle-1 main lifts keep the value copied at generation time even
	// though cycle-2 training maxes now exist.
	rows, err := db.ReadOnly.QueryContext(ctx, `
		SELECT DISTINCT ml.training_max FROM workout_main_lifts ml
		JOIN workouts w ON w.id = ml.workout_id
		WHERE w.program_id = ? AND w.cycle_number = 1 AND ml.lift = 'squat'`,
		result.Program.ID)
	if err != nil {
		t.Fatalf("Failed to query frozen maxes: %v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var tm float64
		if err = rows.Scan(&tm); err != nil {
			t.Fatalf("Failed to scan training max: %v", err)
		}
		if tm != 300 {
			t.Errorf("frozen squat training max = %v, want 300", tm)
		}
	}
	if err = rows.Err(); err != nil {
		t.Fatalf("rows error: %v", err)
	}
}

func Test_GenerateNextCycle(t *testing.T) {
	t.Parallel()
	ctx, db, svc, userID := newTestService(t)

	result, err := svc.Create(ctx, userID, fourDayRequest())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err = svc.CompleteCycle(ctx, userID, result.Program.ID); err != nil {
		t.Fatalf("CompleteCycle failed: %v", err)
	}

	next, err := svc.GenerateNextCycle(ctx, userID, result.Program.ID)
	if err != nil {
		t.Fatalf("GenerateNextCycle failed: %v", err)
	}

	if next.CycleNumber != 2 {
		t.Errorf("CycleNumber = %d, want 2", next.CycleNumber)
	}
	if next.WorkoutsGenerated != 16 {
		t.Errorf("WorkoutsGenerated = %d, want 16", next.WorkoutsGenerated)
	}
	// Last cycle-1 session is Friday 2025-01-31; the next cycle anchors
	// one week later.
	if got := next.StartDate.Format(time.DateOnly); got != "2025-02-07" {
		t.Errorf("StartDate = %s, want 2025-02-07", got)
	}
	if got := countRows(ctx, t, db,
		"SELECT COUNT(*) FROM workouts WHERE program_id = ? AND cycle_number = 2",
		result.Program.ID); got != 16 {
		t.Errorf("cycle-2 workouts = %d, want 16", got)
	}

	// Cycle-2 prescriptions freeze the progressed max.
	var squatMax float64
	err = db.ReadOnly.QueryRowContext(ctx, `
		SELECT DISTINCT ml.training_max FROM workout_main_lifts ml
		JOIN workouts w ON w.id = ml.workout_id
		WHERE w.program_id = ? AND w.cycle_number = 2 AND ml.lift = 'squat'`,
		result.Program.ID).Scan(&squatMax)
	if err != nil {
		t.Fatalf("Failed to query cycle-2 squat max: %v", err)
	}
	if squatMax != 310 {
		t.Errorf("cycle-2 squat training max = %v, want 310", squatMax)
	}
}

func Test_GenerateNextCycle_RequiresCompletedCycle(t *testing.T) {
	t.Parallel()
	ctx, _, svc, userID := newTestService(t)

	result, err := svc.Create(ctx, userID, fourDayRequest())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err = svc.GenerateNextCycle(ctx, userID, result.Program.ID); !errors.Is(err, program.ErrConflict) {
		t.Errorf("GenerateNextCycle error = %v, want ErrConflict", err)
	}
}

func Test_UpdateAccessories_SyncsSharedSlot(t *testing.T) {
	t.Parallel()
	ctx, _, svc, userID := newTestService(t)

	req := fourDayRequest()
	req.Arity = schedule.TwoDay
	req.TrainingDays = []string{"monday", "thursday"}
	result, err := svc.Create(ctx, userID, req)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	accessories := []program.AccessoryPrescription{
		{ExerciseID: "5f0c5f9a-0b6f-4bfb-9a3e-000000000011", Sets: 5, Reps: 10},
		{ExerciseID: "5f0c5f9a-0b6f-4bfb-9a3e-000000000016", Sets: 3, Reps: 15, CircuitGroup: "a"},
	}
	if err = svc.UpdateAccessories(ctx, userID, result.Program.ID, 1, accessories); err != nil {
		t.Fatalf("UpdateAccessories failed: %v", err)
	}

	templates, err := svc.Templates(ctx, userID, result.Program.ID)
	if err != nil {
		t.Fatalf("Templates failed: %v", err)
	}

	// Slot 1 holds squat and bench press; both templates carry the same
	// accessory list after the update.
	var slotOne int
	for _, tmpl := range templates {
		if tmpl.Slot != 1 {
			continue
		}
		slotOne++
		if diff := cmp.Diff(accessories, tmpl.Accessories); diff != "" {
			t.Errorf("%s accessories mismatch (-want +got):\n%s", tmpl.Lift, diff)
		}
	}
	if slotOne != 2 {
		t.Errorf("slot-1 templates = %d, want 2", slotOne)
	}
}

func Test_Delete_Cascades(t *testing.T) {
	t.Parallel()
	ctx, db, svc, userID := newTestService(t)

	result, err := svc.Create(ctx, userID, fourDayRequest())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err = svc.Delete(ctx, userID, result.Program.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	for _, table := range []string{"workouts", "training_maxes", "program_templates"} {
		if got := countRows(ctx, t, db,
			"SELECT COUNT(*) FROM "+table+" WHERE program_id = ?", result.Program.ID); got != 0 {
			t.Errorf("%s rows after delete = %d, want 0", table, got)
		}
	}
	if _, err = svc.Get(ctx, userID, result.Program.ID); !errors.Is(err, program.ErrNotFound) {
		t.Errorf("Get error = %v, want ErrNotFound", err)
	}
}

func Test_Get_ScopedToOwner(t *testing.T) {
	t.Parallel()
	ctx, db, svc, userID := newTestService(t)

	result, err := svc.Create(ctx, userID, fourDayRequest())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	otherID := uuid.NewString()
	_, err = db.ReadWrite.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash) VALUES (?, ?, ?)",
		otherID, otherID+"@example.com", "not-a-real-hash")
	if err != nil {
		t.Fatalf("Failed to insert second user: %v", err)
	}

	if _, err = svc.Get(ctx, otherID, result.Program.ID); !errors.Is(err, program.ErrNotFound) {
		t.Errorf("Get error for foreign owner = %v, want ErrNotFound", err)
	}
}

func Test_Get_RoundTripsDates(t *testing.T) {
	t.Parallel()
	ctx, _, svc, userID := newTestService(t)

	req := fourDayRequest()
	end := date(2025, time.June, 30)
	req.EndDate = &end

	result, err := svc.Create(ctx, userID, req)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := svc.Get(ctx, userID, result.Program.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !got.StartDate.Equal(req.StartDate) {
		t.Errorf("StartDate = %s, want %s",
			got.StartDate.Format(time.DateOnly), req.StartDate.Format(time.DateOnly))
	}
	if got.EndDate == nil || !got.EndDate.Equal(end) {
		t.Errorf("EndDate = %v, want %s", got.EndDate, end.Format(time.DateOnly))
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt is zero after round trip")
	}
}

func Test_Detail_ReportsCycleWorkouts(t *testing.T) {
	t.Parallel()
	ctx, db, svc, userID := newTestService(t)

	result, err := svc.Create(ctx, userID, fourDayRequest())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	detail, err := svc.Detail(ctx, userID, result.Program.ID)
	if err != nil {
		t.Fatalf("Detail failed: %v", err)
	}
	if detail.CurrentCycle != 1 {
		t.Errorf("CurrentCycle = %d, want 1", detail.CurrentCycle)
	}
	if detail.CycleWorkouts != 16 {
		t.Errorf("CycleWorkouts = %d, want 16", detail.CycleWorkouts)
	}
	if detail.Name != "Winter block" {
		t.Errorf("Name = %q, want Winter block", detail.Name)
	}

	otherID := uuid.NewString()
	_, err = db.ReadWrite.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash) VALUES (?, ?, ?)",
		otherID, otherID+"@example.com", "not-a-real-hash")
	if err != nil {
		t.Fatalf("Failed to insert second user: %v", err)
	}
	if _, err = svc.Detail(ctx, otherID, result.Program.ID); !errors.Is(err, program.ErrNotFound) {
		t.Errorf("Detail error for foreign owner = %v, want ErrNotFound", err)
	}
}
