package workout

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ironcycle/ironcycle/internal/lift"
	"github.com/ironcycle/ironcycle/internal/sqlite"
)

const timestampFormat = "2006-01-02T15:04:05.000Z"
const dateFormat = time.DateOnly

// sqliteRepository handles database operations for workouts, logged sets,
// rep maxes, and the user settings that shape prescriptions.
type sqliteRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newSQLiteRepository(db *sqlite.Database, logger *slog.Logger) *sqliteRepository {
	return &sqliteRepository{
		db:     db,
		logger: logger,
	}
}

// rollback logs a failed rollback instead of masking the original error.
func (r *sqliteRepository) rollback(ctx context.Context, tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		r.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback transaction", slog.Any("error", err))
	}
}

// queryWorkouts retrieves workouts matching extra WHERE conditions joined
// with their main lifts, ordered by scheduled date. Conditions may reference
// the workouts table as w and programs as p.
func (r *sqliteRepository) queryWorkouts(
	ctx context.Context,
	conditions []string,
	args []any,
) ([]Workout, error) {
	query := `
		SELECT w.id, w.program_id, w.cycle_number, w.week_number, w.week_type,
		       w.scheduled_date, w.status, w.completed_at, w.notes,
		       ml.id, ml.lift, ml.position, ml.week_type, ml.training_max
		FROM workouts w
		JOIN programs p ON p.id = w.program_id
		LEFT JOIN workout_main_lifts ml ON ml.workout_id = w.id
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY w.scheduled_date, w.id, ml.position`

	rows, err := r.db.ReadOnly.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query workouts: %w", err)
	}
	defer rows.Close()

	var workouts []Workout
	for rows.Next() {
		var (
			w             Workout
			weekType      string
			scheduledDate string
			status        string
			completedAt   sql.NullString
			liftID        sql.NullString
			liftName      sql.NullString
			position      sql.NullInt64
			liftWeekType  sql.NullString
			trainingMax   sql.NullFloat64
		)
		if err = rows.Scan(&w.ID, &w.ProgramID, &w.CycleNumber, &w.WeekNumber, &weekType,
			&scheduledDate, &status, &completedAt, &w.Notes,
			&liftID, &liftName, &position, &liftWeekType, &trainingMax); err != nil {
			return nil, fmt.Errorf("scan workout: %w", err)
		}

		if len(workouts) == 0 || workouts[len(workouts)-1].ID != w.ID {
			w.WeekType = lift.WeekType(weekType)
			w.Status = Status(status)
			if w.ScheduledDate, err = time.Parse(dateFormat, scheduledDate); err != nil {
				return nil, fmt.Errorf("parse scheduled date: %w", err)
			}
			if completedAt.Valid {
				parsed, parseErr := time.Parse(timestampFormat, completedAt.String)
				if parseErr != nil {
					return nil, fmt.Errorf("parse completed at: %w", parseErr)
				}
				w.CompletedAt = &parsed
			}
			workouts = append(workouts, w)
		}

		if liftID.Valid {
			parsedLift, parseErr := lift.Parse(liftName.String)
			if parseErr != nil {
				return nil, fmt.Errorf("parse lift: %w", parseErr)
			}
			last := &workouts[len(workouts)-1]
			last.MainLifts = append(last.MainLifts, MainLift{
				ID:          liftID.String,
				Lift:        parsedLift,
				Position:    int(position.Int64),
				WeekType:    lift.WeekType(liftWeekType.String),
				TrainingMax: trainingMax.Float64,
			})
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workouts: %w", err)
	}
	return workouts, nil
}

// get retrieves one workout scoped to its owner.
func (r *sqliteRepository) get(ctx context.Context, userID, id string) (Workout, error) {
	workouts, err := r.queryWorkouts(ctx,
		[]string{"p.user_id = ?", "w.id = ?"}, []any{userID, id})
	if err != nil {
		return Workout{}, err
	}
	if len(workouts) == 0 {
		return Workout{}, ErrNotFound
	}
	return workouts[0], nil
}

// list retrieves a user's workouts matching the filters, by scheduled date.
func (r *sqliteRepository) list(ctx context.Context, userID string, f Filters) ([]Workout, error) {
	conditions := []string{"p.user_id = ?"}
	args := []any{userID}

	if f.ProgramID != "" {
		conditions = append(conditions, "w.program_id = ?")
		args = append(args, f.ProgramID)
	}
	if _, err := ParseStatus(string(f.Status)); err == nil {
		conditions = append(conditions, "w.status = ?")
		args = append(args, string(f.Status))
	}
	if f.From != nil {
		conditions = append(conditions, "w.scheduled_date >= ?")
		args = append(args, f.From.Format(dateFormat))
	}
	if f.To != nil {
		conditions = append(conditions, "w.scheduled_date <= ?")
		args = append(args, f.To.Format(dateFormat))
	}
	if f.Cycle != nil {
		conditions = append(conditions, "w.cycle_number = ?")
		args = append(args, *f.Cycle)
	}
	if f.Week != nil {
		conditions = append(conditions, "w.week_number = ?")
		args = append(args, *f.Week)
	}
	if len(f.Lifts) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(f.Lifts)), ", ")
		conditions = append(conditions, `EXISTS (
			SELECT 1 FROM workout_main_lifts fl
			WHERE fl.workout_id = w.id AND fl.lift IN (`+placeholders+`))`)
		for _, l := range f.Lifts {
			args = append(args, string(l))
		}
	}

	return r.queryWorkouts(ctx, conditions, args)
}

// listMissed retrieves scheduled workouts dated strictly before the cutoff.
func (r *sqliteRepository) listMissed(ctx context.Context, userID string, before time.Time) ([]Workout, error) {
	return r.queryWorkouts(ctx,
		[]string{"p.user_id = ?", "w.status = 'scheduled'", "w.scheduled_date < ?"},
		[]any{userID, before.Format(dateFormat)})
}

// sets retrieves a workout's logged sets in insertion order per exercise.
func (r *sqliteRepository) sets(ctx context.Context, workoutID string) ([]Set, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, lift, exercise_id, category, set_number, prescribed_reps,
		       prescribed_weight, percentage, actual_reps, actual_weight,
		       weight_unit, is_target_met, notes
		FROM workout_sets WHERE workout_id = ?
		ORDER BY category, lift, exercise_id, set_number`, workoutID)
	if err != nil {
		return nil, fmt.Errorf("query sets: %w", err)
	}
	defer rows.Close()

	var sets []Set
	for rows.Next() {
		var (
			set        Set
			liftName   sql.NullString
			exerciseID sql.NullString
			category   string
			unit       string
		)
		if err = rows.Scan(&set.ID, &liftName, &exerciseID, &category, &set.SetNumber,
			&set.PrescribedReps, &set.PrescribedWeight, &set.Percentage,
			&set.ActualReps, &set.ActualWeight, &unit, &set.TargetMet, &set.Notes); err != nil {
			return nil, fmt.Errorf("scan set: %w", err)
		}
		set.Lift = lift.Lift(liftName.String)
		set.ExerciseID = exerciseID.String
		set.Category = lift.SetCategory(category)
		set.Unit = lift.WeightUnit(unit)
		sets = append(sets, set)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sets: %w", err)
	}
	return sets, nil
}

// insertCompletion persists the logged sets, the workout's terminal state,
// and any new rep-max records in one transaction.
func (r *sqliteRepository) insertCompletion(
	ctx context.Context,
	userID string,
	w Workout,
	sets []Set,
	repMaxes []RepMax,
) error {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer r.rollback(ctx, tx)

	for _, set := range sets {
		var liftName, exerciseID *string
		if set.Lift != "" {
			name := string(set.Lift)
			liftName = &name
		}
		if set.ExerciseID != "" {
			id := set.ExerciseID
			exerciseID = &id
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO workout_sets (
				id, workout_id, exercise_id, lift, category, set_number,
				prescribed_reps, prescribed_weight, percentage,
				actual_reps, actual_weight, weight_unit, is_target_met, notes
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			set.ID, w.ID, exerciseID, liftName, string(set.Category), set.SetNumber,
			set.PrescribedReps, set.PrescribedWeight, set.Percentage,
			set.ActualReps, set.ActualWeight, string(set.Unit), set.TargetMet,
			set.Notes); err != nil {
			return fmt.Errorf("insert set: %w", err)
		}
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE workouts SET status = 'completed', completed_at = ?, notes = ?
		WHERE id = ?`,
		w.CompletedAt.Format(timestampFormat), w.Notes, w.ID); err != nil {
		return fmt.Errorf("update workout: %w", err)
	}

	for _, rm := range repMaxes {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO rep_maxes (
				id, user_id, lift, reps, weight, weight_unit, estimated_1rm,
				workout_set_id, achieved_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rm.ID, userID, string(rm.Lift), rm.Reps, rm.Weight, string(rm.Unit),
			rm.Estimated1RM, rm.WorkoutSetID, rm.AchievedAt.Format(dateFormat)); err != nil {
			return fmt.Errorf("insert rep max: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// updateStatus moves a workout into a new lifecycle state.
func (r *sqliteRepository) updateStatus(ctx context.Context, workoutID string, status Status) error {
	result, err := r.db.ReadWrite.ExecContext(ctx,
		`UPDATE workouts SET status = ? WHERE id = ?`, string(status), workoutID)
	if err != nil {
		return fmt.Errorf("update workout status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// shiftScheduledFrom moves every still-scheduled workout of a program dated
// on or after from by the given number of days, preserving spacing.
func (r *sqliteRepository) shiftScheduledFrom(
	ctx context.Context,
	programID string,
	from time.Time,
	days int,
) (int, error) {
	result, err := r.db.ReadWrite.ExecContext(ctx, `
		UPDATE workouts SET scheduled_date = date(scheduled_date, ?)
		WHERE program_id = ? AND status = 'scheduled' AND scheduled_date >= ?`,
		fmt.Sprintf("%+d days", days), programID, from.Format(dateFormat))
	if err != nil {
		return 0, fmt.Errorf("shift scheduled workouts: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(affected), nil
}

// bestRepMaxWeight returns the heaviest recorded weight for a (lift, reps)
// pair. ok is false when no record exists.
func (r *sqliteRepository) bestRepMaxWeight(
	ctx context.Context,
	userID string,
	l lift.Lift,
	reps int,
) (weight float64, ok bool, err error) {
	var best sql.NullFloat64
	err = r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT MAX(weight) FROM rep_maxes
		WHERE user_id = ? AND lift = ? AND reps = ?`,
		userID, string(l), reps).Scan(&best)
	if err != nil {
		return 0, false, fmt.Errorf("query rep max weight: %w", err)
	}
	return best.Float64, best.Valid, nil
}

// bestEstimated1RM returns the highest estimated 1RM across all rep ranges
// achieved since the cutoff date. ok is false when no record exists.
func (r *sqliteRepository) bestEstimated1RM(
	ctx context.Context,
	userID string,
	l lift.Lift,
	since time.Time,
) (oneRM float64, ok bool, err error) {
	var best sql.NullFloat64
	err = r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT MAX(estimated_1rm) FROM rep_maxes
		WHERE user_id = ? AND lift = ? AND achieved_at >= ?`,
		userID, string(l), since.Format(dateFormat)).Scan(&best)
	if err != nil {
		return 0, false, fmt.Errorf("query best estimated 1rm: %w", err)
	}
	return best.Float64, best.Valid, nil
}

// currentRepMaxes retrieves the best record per (lift, reps) pair, ranked
// by estimated 1RM.
func (r *sqliteRepository) currentRepMaxes(ctx context.Context, userID string) ([]RepMax, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT rm.id, rm.lift, rm.reps, rm.weight, rm.weight_unit,
		       rm.estimated_1rm, rm.workout_set_id, rm.achieved_at
		FROM rep_maxes rm
		JOIN (SELECT lift, reps, MAX(estimated_1rm) AS best
		      FROM rep_maxes WHERE user_id = ? GROUP BY lift, reps) top
		  ON top.lift = rm.lift AND top.reps = rm.reps AND top.best = rm.estimated_1rm
		WHERE rm.user_id = ?
		GROUP BY rm.lift, rm.reps
		ORDER BY rm.lift, rm.reps`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("query current rep maxes: %w", err)
	}
	defer rows.Close()
	return scanRepMaxes(rows)
}

// repMaxHistory retrieves every record for one lift, newest first.
func (r *sqliteRepository) repMaxHistory(ctx context.Context, userID string, l lift.Lift) ([]RepMax, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, lift, reps, weight, weight_unit, estimated_1rm,
		       workout_set_id, achieved_at
		FROM rep_maxes WHERE user_id = ? AND lift = ?
		ORDER BY achieved_at DESC, estimated_1rm DESC`, userID, string(l))
	if err != nil {
		return nil, fmt.Errorf("query rep max history: %w", err)
	}
	defer rows.Close()
	return scanRepMaxes(rows)
}

func scanRepMaxes(rows *sql.Rows) ([]RepMax, error) {
	var maxes []RepMax
	for rows.Next() {
		var (
			rm           RepMax
			liftName     string
			unit         string
			workoutSetID sql.NullString
			achievedAt   string
		)
		if err := rows.Scan(&rm.ID, &liftName, &rm.Reps, &rm.Weight, &unit,
			&rm.Estimated1RM, &workoutSetID, &achievedAt); err != nil {
			return nil, fmt.Errorf("scan rep max: %w", err)
		}
		parsedLift, err := lift.Parse(liftName)
		if err != nil {
			return nil, fmt.Errorf("parse lift: %w", err)
		}
		rm.Lift = parsedLift
		rm.Unit = lift.WeightUnit(unit)
		rm.WorkoutSetID = workoutSetID.String
		if rm.AchievedAt, err = time.Parse(dateFormat, achievedAt); err != nil {
			return nil, fmt.Errorf("parse achieved at: %w", err)
		}
		maxes = append(maxes, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rep maxes: %w", err)
	}
	return maxes, nil
}

// cycleFailedSets counts failed working sets per lift across a cycle's
// completed workouts.
func (r *sqliteRepository) cycleFailedSets(
	ctx context.Context,
	programID string,
	cycle int,
) (map[lift.Lift]int, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT ws.lift, COUNT(*)
		FROM workout_sets ws
		JOIN workouts w ON w.id = ws.workout_id
		WHERE w.program_id = ? AND w.cycle_number = ? AND w.status = 'completed'
		  AND ws.category IN ('working', 'amrap')
		  AND ws.is_target_met = FALSE AND ws.lift IS NOT NULL
		GROUP BY ws.lift`, programID, cycle)
	if err != nil {
		return nil, fmt.Errorf("query cycle failed sets: %w", err)
	}
	defer rows.Close()

	failed := make(map[lift.Lift]int)
	for rows.Next() {
		var (
			liftName string
			count    int
		)
		if err = rows.Scan(&liftName, &count); err != nil {
			return nil, fmt.Errorf("scan failed set count: %w", err)
		}
		parsedLift, parseErr := lift.Parse(liftName)
		if parseErr != nil {
			return nil, fmt.Errorf("parse lift: %w", parseErr)
		}
		failed[parsedLift] = count
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate failed sets: %w", err)
	}
	return failed, nil
}

// userSettings are the per-user knobs that shape prescriptions and
// missed-workout handling.
type userSettings struct {
	unit              lift.WeightUnit
	roundingIncrement float64
	missedPreference  string
}

func (r *sqliteRepository) userSettings(ctx context.Context, userID string) (userSettings, error) {
	var (
		settings userSettings
		unit     string
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT weight_unit, rounding_increment, missed_workout_preference
		FROM users WHERE id = ?`, userID).
		Scan(&unit, &settings.roundingIncrement, &settings.missedPreference)
	if err != nil {
		return userSettings{}, fmt.Errorf("query user settings: %w", err)
	}
	settings.unit = lift.WeightUnit(unit)
	return settings, nil
}

// templateAccessories retrieves the accessory prescriptions templated for a
// (program, lift) pair. Missing templates yield an empty list.
func (r *sqliteRepository) templateAccessories(
	ctx context.Context,
	programID string,
	l lift.Lift,
) ([]templateAccessory, error) {
	var encoded string
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT accessories FROM program_templates
		WHERE program_id = ? AND lift = ?`, programID, string(l)).Scan(&encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query template accessories: %w", err)
	}

	var accessories []templateAccessory
	if err = json.Unmarshal([]byte(encoded), &accessories); err != nil {
		return nil, fmt.Errorf("unmarshal accessories: %w", err)
	}
	return accessories, nil
}

// templateAccessory mirrors the JSON stored on program templates.
type templateAccessory struct {
	ExerciseID   string `json:"exercise_id"`
	Sets         int    `json:"sets"`
	Reps         int    `json:"reps"`
	CircuitGroup string `json:"circuit_group,omitempty"`
}
