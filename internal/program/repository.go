package program

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ironcycle/ironcycle/internal/lift"
	"github.com/ironcycle/ironcycle/internal/schedule"
	"github.com/ironcycle/ironcycle/internal/sqlite"
)

const timestampFormat = "2006-01-02T15:04:05.000Z"
const dateFormat = time.DateOnly

// sqliteRepository handles database operations for programs, training maxes,
// templates, and the workout rows the cycle generator produces.
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

// createBundle persists a new program together with its initial training
// maxes, accessory templates, and cycle-1 workouts in one transaction.
func (r *sqliteRepository) createBundle(
	ctx context.Context,
	p Program,
	maxes []TrainingMax,
	templates []Template,
	workouts []generatedWorkout,
) error {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer r.rollback(ctx, tx)

	trainingDays, err := json.Marshal(p.TrainingDays)
	if err != nil {
		return fmt.Errorf("marshal training days: %w", err)
	}

	var endDate *string
	if p.EndDate != nil {
		formatted := p.EndDate.Format(dateFormat)
		endDate = &formatted
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO programs (
			id, user_id, name, arity, start_date, end_date, target_cycles,
			training_days, include_deload, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.Name, string(p.Arity), p.StartDate.Format(dateFormat),
		endDate, p.TargetCycles, string(trainingDays), p.IncludeDeload,
		string(p.Status), p.CreatedAt.Format(timestampFormat)); err != nil {
		return fmt.Errorf("insert program: %w", err)
	}

	if err = insertTrainingMaxes(ctx, tx, maxes); err != nil {
		return fmt.Errorf("insert training maxes: %w", err)
	}

	for _, t := range templates {
		accessories, marshalErr := json.Marshal(t.Accessories)
		if marshalErr != nil {
			return fmt.Errorf("marshal accessories: %w", marshalErr)
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO program_templates (id, program_id, slot, lift, accessories)
			VALUES (?, ?, ?, ?, ?)`,
			t.ID, t.ProgramID, t.Slot, string(t.Lift), string(accessories)); err != nil {
			return fmt.Errorf("insert template: %w", err)
		}
	}

	if err = insertWorkouts(ctx, tx, p.ID, workouts); err != nil {
		return fmt.Errorf("insert workouts: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func insertTrainingMaxes(ctx context.Context, tx *sql.Tx, maxes []TrainingMax) error {
	for _, tm := range maxes {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO training_maxes (
				id, program_id, lift, weight, weight_unit, cycle_number,
				effective_date, reason, note
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			tm.ID, tm.ProgramID, string(tm.Lift), tm.Weight, string(tm.Unit),
			tm.CycleNumber, tm.EffectiveDate.Format(dateFormat),
			string(tm.Reason), tm.Note); err != nil {
			return fmt.Errorf("insert training max %s cycle %d: %w", tm.Lift, tm.CycleNumber, err)
		}
	}
	return nil
}

func insertWorkouts(ctx context.Context, tx *sql.Tx, programID string, workouts []generatedWorkout) error {
	for _, w := range workouts {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO workouts (
				id, program_id, cycle_number, week_number, week_type,
				scheduled_date, status
			) VALUES (?, ?, ?, ?, ?, ?, 'scheduled')`,
			w.id, programID, w.cycleNumber, w.weekNumber, string(w.weekType),
			w.scheduledDate.Format(dateFormat)); err != nil {
			return fmt.Errorf("insert workout: %w", err)
		}
		for _, ml := range w.lifts {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO workout_main_lifts (
					id, workout_id, lift, position, week_type, training_max
				) VALUES (?, ?, ?, ?, ?, ?)`,
				ml.id, w.id, string(ml.lift), ml.position, string(ml.weekType),
				ml.trainingMax); err != nil {
				return fmt.Errorf("insert workout main lift: %w", err)
			}
		}
	}
	return nil
}

// insertGeneratedCycle persists a follow-up cycle's workouts atomically.
func (r *sqliteRepository) insertGeneratedCycle(
	ctx context.Context,
	programID string,
	workouts []generatedWorkout,
) error {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer r.rollback(ctx, tx)

	if err = insertWorkouts(ctx, tx, programID, workouts); err != nil {
		return fmt.Errorf("insert workouts: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// insertProgression persists the next cycle's training maxes and the audit
// trail rows in one transaction.
func (r *sqliteRepository) insertProgression(
	ctx context.Context,
	maxes []TrainingMax,
	history []HistoryEntry,
) error {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer r.rollback(ctx, tx)

	if err = insertTrainingMaxes(ctx, tx, maxes); err != nil {
		return fmt.Errorf("insert training maxes: %w", err)
	}

	for _, h := range history {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO training_max_history (
				id, program_id, lift, old_weight, new_weight, reason, note, changed_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			h.ID, h.ProgramID, string(h.Lift), h.OldWeight, h.NewWeight,
			string(h.Reason), h.Note, h.ChangedAt.Format(timestampFormat)); err != nil {
			return fmt.Errorf("insert history entry: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func scanProgram(scanner interface{ Scan(...any) error }) (Program, error) {
	var (
		p            Program
		arity        string
		startDate    string
		endDate      sql.NullString
		targetCycles sql.NullInt64
		trainingDays string
		status       string
		createdAt    string
	)
	if err := scanner.Scan(&p.ID, &p.UserID, &p.Name, &arity, &startDate, &endDate,
		&targetCycles, &trainingDays, &p.IncludeDeload, &status, &createdAt); err != nil {
		return Program{}, err
	}

	parsedArity, err := schedule.ParseArity(arity)
	if err != nil {
		return Program{}, fmt.Errorf("parse arity: %w", err)
	}
	p.Arity = parsedArity
	p.Status = Status(status)

	if p.StartDate, err = time.Parse(dateFormat, startDate); err != nil {
		return Program{}, fmt.Errorf("parse start date: %w", err)
	}
	if endDate.Valid {
		parsed, parseErr := time.Parse(dateFormat, endDate.String)
		if parseErr != nil {
			return Program{}, fmt.Errorf("parse end date: %w", parseErr)
		}
		p.EndDate = &parsed
	}
	if targetCycles.Valid {
		cycles := int(targetCycles.Int64)
		p.TargetCycles = &cycles
	}
	if err = json.Unmarshal([]byte(trainingDays), &p.TrainingDays); err != nil {
		return Program{}, fmt.Errorf("unmarshal training days: %w", err)
	}
	if p.CreatedAt, err = time.Parse(timestampFormat, createdAt); err != nil {
		return Program{}, fmt.Errorf("parse created at: %w", err)
	}
	return p, nil
}

const programColumns = `id, user_id, name, arity, start_date, end_date,
	target_cycles, training_days, include_deload, status, created_at`

// get retrieves a program scoped to its owner.
func (r *sqliteRepository) get(ctx context.Context, userID, id string) (Program, error) {
	row := r.db.ReadOnly.QueryRowContext(ctx,
		`SELECT `+programColumns+` FROM programs WHERE id = ? AND user_id = ?`, id, userID)
	p, err := scanProgram(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Program{}, ErrNotFound
	}
	if err != nil {
		return Program{}, fmt.Errorf("query program: %w", err)
	}
	return p, nil
}

// list retrieves all programs owned by a user, newest first.
func (r *sqliteRepository) list(ctx context.Context, userID string) ([]Program, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx,
		`SELECT `+programColumns+` FROM programs WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query programs: %w", err)
	}
	defer rows.Close()

	var programs []Program
	for rows.Next() {
		p, scanErr := scanProgram(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan program: %w", scanErr)
		}
		programs = append(programs, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate programs: %w", err)
	}
	return programs, nil
}

// listActive retrieves a user's active programs for the overlap check.
func (r *sqliteRepository) listActive(ctx context.Context, userID string) ([]Program, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx,
		`SELECT `+programColumns+` FROM programs WHERE user_id = ? AND status = 'active'`, userID)
	if err != nil {
		return nil, fmt.Errorf("query active programs: %w", err)
	}
	defer rows.Close()

	var programs []Program
	for rows.Next() {
		p, scanErr := scanProgram(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan program: %w", scanErr)
		}
		programs = append(programs, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate programs: %w", err)
	}
	return programs, nil
}

// update persists the mutable program fields.
func (r *sqliteRepository) update(ctx context.Context, p Program) error {
	var endDate *string
	if p.EndDate != nil {
		formatted := p.EndDate.Format(dateFormat)
		endDate = &formatted
	}
	result, err := r.db.ReadWrite.ExecContext(ctx, `
		UPDATE programs
		SET name = ?, status = ?, end_date = ?, target_cycles = ?
		WHERE id = ? AND user_id = ?`,
		p.Name, string(p.Status), endDate, p.TargetCycles, p.ID, p.UserID)
	if err != nil {
		return fmt.Errorf("update program: %w", err)
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

// delete removes a program. Foreign keys cascade the deletion through
// workouts, main lifts, sets, training maxes, history, and templates.
func (r *sqliteRepository) delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ReadWrite.ExecContext(ctx,
		`DELETE FROM programs WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete program: %w", err)
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

// trainingMaxesForCycle retrieves the per-lift training maxes of one cycle.
func (r *sqliteRepository) trainingMaxesForCycle(
	ctx context.Context,
	programID string,
	cycle int,
) (map[lift.Lift]TrainingMax, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, program_id, lift, weight, weight_unit, cycle_number, effective_date, reason, note
		FROM training_maxes
		WHERE program_id = ? AND cycle_number = ?`, programID, cycle)
	if err != nil {
		return nil, fmt.Errorf("query training maxes: %w", err)
	}
	defer rows.Close()

	maxes := make(map[lift.Lift]TrainingMax)
	for rows.Next() {
		tm, scanErr := scanTrainingMax(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan training max: %w", scanErr)
		}
		maxes[tm.Lift] = tm
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate training maxes: %w", err)
	}
	return maxes, nil
}

// latestTrainingMaxes retrieves each lift's highest-cycle training max.
func (r *sqliteRepository) latestTrainingMaxes(ctx context.Context, programID string) ([]TrainingMax, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT tm.id, tm.program_id, tm.lift, tm.weight, tm.weight_unit,
		       tm.cycle_number, tm.effective_date, tm.reason, tm.note
		FROM training_maxes tm
		JOIN (SELECT lift, MAX(cycle_number) AS max_cycle
		      FROM training_maxes WHERE program_id = ? GROUP BY lift) latest
		  ON latest.lift = tm.lift AND latest.max_cycle = tm.cycle_number
		WHERE tm.program_id = ?
		ORDER BY tm.lift`, programID, programID)
	if err != nil {
		return nil, fmt.Errorf("query latest training maxes: %w", err)
	}
	defer rows.Close()

	var maxes []TrainingMax
	for rows.Next() {
		tm, scanErr := scanTrainingMax(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan training max: %w", scanErr)
		}
		maxes = append(maxes, tm)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate training maxes: %w", err)
	}
	return maxes, nil
}

func scanTrainingMax(scanner interface{ Scan(...any) error }) (TrainingMax, error) {
	var (
		tm            TrainingMax
		liftName      string
		unit          string
		effectiveDate string
		reason        string
	)
	if err := scanner.Scan(&tm.ID, &tm.ProgramID, &liftName, &tm.Weight, &unit,
		&tm.CycleNumber, &effectiveDate, &reason, &tm.Note); err != nil {
		return TrainingMax{}, err
	}
	parsedLift, err := lift.Parse(liftName)
	if err != nil {
		return TrainingMax{}, fmt.Errorf("parse lift: %w", err)
	}
	tm.Lift = parsedLift
	tm.Unit = lift.WeightUnit(unit)
	tm.Reason = ChangeReason(reason)
	if tm.EffectiveDate, err = time.Parse(dateFormat, effectiveDate); err != nil {
		return TrainingMax{}, fmt.Errorf("parse effective date: %w", err)
	}
	return tm, nil
}

// lastScheduled returns the latest cycle number and scheduled date across
// the program's workouts. ok is false when no workouts exist.
func (r *sqliteRepository) lastScheduled(ctx context.Context, programID string) (cycle int, date time.Time, ok bool, err error) {
	var (
		lastCycle sql.NullInt64
		lastDate  sql.NullString
	)
	err = r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT MAX(cycle_number), MAX(scheduled_date)
		FROM workouts WHERE program_id = ?`, programID).Scan(&lastCycle, &lastDate)
	if err != nil {
		return 0, time.Time{}, false, fmt.Errorf("query last workout: %w", err)
	}
	if !lastCycle.Valid || !lastDate.Valid {
		return 0, time.Time{}, false, nil
	}
	parsed, err := time.Parse(dateFormat, lastDate.String)
	if err != nil {
		return 0, time.Time{}, false, fmt.Errorf("parse last scheduled date: %w", err)
	}
	return int(lastCycle.Int64), parsed, true, nil
}

// countWorkouts counts a program's workouts in one cycle.
func (r *sqliteRepository) countWorkouts(ctx context.Context, programID string, cycle int) (int, error) {
	var count int
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM workouts WHERE program_id = ? AND cycle_number = ?`,
		programID, cycle).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count workouts: %w", err)
	}
	return count, nil
}

// templates retrieves a program's accessory templates ordered by slot.
func (r *sqliteRepository) templates(ctx context.Context, programID string) ([]Template, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, program_id, slot, lift, accessories
		FROM program_templates WHERE program_id = ?
		ORDER BY slot, lift`, programID)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	defer rows.Close()

	var templates []Template
	for rows.Next() {
		var (
			t           Template
			liftName    string
			accessories string
		)
		if err = rows.Scan(&t.ID, &t.ProgramID, &t.Slot, &liftName, &accessories); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		parsedLift, parseErr := lift.Parse(liftName)
		if parseErr != nil {
			return nil, fmt.Errorf("parse lift: %w", parseErr)
		}
		t.Lift = parsedLift
		if err = json.Unmarshal([]byte(accessories), &t.Accessories); err != nil {
			return nil, fmt.Errorf("unmarshal accessories: %w", err)
		}
		templates = append(templates, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}
	return templates, nil
}

// updateSlotAccessories overwrites the accessory list of every template in
// one slot, keeping same-day lifts synchronized.
func (r *sqliteRepository) updateSlotAccessories(
	ctx context.Context,
	programID string,
	slot int,
	accessories []AccessoryPrescription,
) (int, error) {
	encoded, err := json.Marshal(accessories)
	if err != nil {
		return 0, fmt.Errorf("marshal accessories: %w", err)
	}
	result, err := r.db.ReadWrite.ExecContext(ctx, `
		UPDATE program_templates SET accessories = ?
		WHERE program_id = ? AND slot = ?`, string(encoded), programID, slot)
	if err != nil {
		return 0, fmt.Errorf("update templates: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(affected), nil
}

// history retrieves a program's training-max audit trail, oldest first.
func (r *sqliteRepository) history(ctx context.Context, programID string) ([]HistoryEntry, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, program_id, lift, old_weight, new_weight, reason, note, changed_at
		FROM training_max_history WHERE program_id = ?
		ORDER BY changed_at, lift`, programID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var (
			h         HistoryEntry
			liftName  string
			reason    string
			changedAt string
		)
		if err = rows.Scan(&h.ID, &h.ProgramID, &liftName, &h.OldWeight, &h.NewWeight,
			&reason, &h.Note, &changedAt); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		parsedLift, parseErr := lift.Parse(liftName)
		if parseErr != nil {
			return nil, fmt.Errorf("parse lift: %w", parseErr)
		}
		h.Lift = parsedLift
		h.Reason = ChangeReason(reason)
		if h.ChangedAt, err = time.Parse(timestampFormat, changedAt); err != nil {
			return nil, fmt.Errorf("parse changed at: %w", err)
		}
		entries = append(entries, h)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}
