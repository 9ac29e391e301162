package workout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ironcycle/ironcycle/internal/calc"
	"github.com/ironcycle/ironcycle/internal/lift"
	"github.com/ironcycle/ironcycle/internal/ptr"
	"github.com/ironcycle/ironcycle/internal/sqlite"
)

// Service executes the training calendar: it lists and details sessions,
// records completions with rep-max tracking and performance analysis, and
// recovers missed sessions.
type Service struct {
	repo   *sqliteRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a workout service backed by the given database.
func NewService(db *sqlite.Database, logger *slog.Logger) *Service {
	return &Service{
		repo:   newSQLiteRepository(db, logger),
		logger: logger,
		now:    time.Now,
	}
}

// List retrieves the user's workouts matching the filters, ordered by
// scheduled date. Unknown status filters are ignored rather than rejected.
func (s *Service) List(ctx context.Context, userID string, f Filters) ([]Workout, error) {
	workouts, err := s.repo.list(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	return workouts, nil
}

// Get retrieves one workout with its main-lift assignments.
func (s *Service) Get(ctx context.Context, userID, id string) (Workout, error) {
	w, err := s.repo.get(ctx, userID, id)
	if err != nil {
		return Workout{}, fmt.Errorf("get workout: %w", err)
	}
	return w, nil
}

// GetDetail retrieves a workout with its full set breakdown. Workouts with
// logged sets replay them; otherwise the prescriptions are computed from the
// frozen training maxes and the user's rounding increment.
func (s *Service) GetDetail(ctx context.Context, userID, id string) (Detail, error) {
	w, err := s.repo.get(ctx, userID, id)
	if err != nil {
		return Detail{}, fmt.Errorf("get workout: %w", err)
	}
	settings, err := s.repo.userSettings(ctx, userID)
	if err != nil {
		return Detail{}, fmt.Errorf("load user settings: %w", err)
	}

	if w.Status == StatusCompleted {
		return s.loggedDetail(ctx, w)
	}
	return s.prescribedDetail(ctx, w, settings)
}

// loggedDetail replays the sets recorded at completion time.
func (s *Service) loggedDetail(ctx context.Context, w Workout) (Detail, error) {
	sets, err := s.repo.sets(ctx, w.ID)
	if err != nil {
		return Detail{}, fmt.Errorf("load sets: %w", err)
	}

	detail := Detail{Workout: w}
	for _, ml := range w.MainLifts {
		ld := LiftDetail{
			Lift:        ml.Lift,
			WeekType:    ml.WeekType,
			TrainingMax: ml.TrainingMax,
		}
		for _, set := range sets {
			if set.Lift != ml.Lift {
				continue
			}
			switch {
			case set.Category == lift.SetWarmup:
				ld.Warmup = append(ld.Warmup, set)
			case set.Category.MainWork():
				ld.Main = append(ld.Main, set)
			}
		}
		detail.Lifts = append(detail.Lifts, ld)
	}

	// Duplicate accessory submissions keep only the first logged set per
	// (exercise, set number).
	seen := make(map[string]bool)
	for _, set := range sets {
		if set.Category != lift.SetAccessory {
			continue
		}
		key := fmt.Sprintf("%s#%d", set.ExerciseID, set.SetNumber)
		if seen[key] {
			continue
		}
		seen[key] = true
		detail.Accessories = append(detail.Accessories, set)
	}
	return detail, nil
}

// prescribedDetail computes the planned sets for a not-yet-completed
// workout: the warmup ladder, the three main working sets with plate math,
// and the templated accessories.
func (s *Service) prescribedDetail(ctx context.Context, w Workout, settings userSettings) (Detail, error) {
	detail := Detail{Workout: w}
	for _, ml := range w.MainLifts {
		ld := LiftDetail{
			Lift:        ml.Lift,
			WeekType:    ml.WeekType,
			TrainingMax: ml.TrainingMax,
		}

		ladder := calc.WarmupLadder(ml.TrainingMax, settings.roundingIncrement, calc.DefaultBarWeight)
		for i, rung := range ladder {
			set := Set{
				Lift:             ml.Lift,
				Category:         lift.SetWarmup,
				SetNumber:        i + 1,
				PrescribedReps:   ptr.Ref(rung.Reps),
				PrescribedWeight: ptr.Ref(rung.Weight),
				Unit:             settings.unit,
				PlatesPerSide:    calc.PlatesPerSide(rung.Weight, calc.DefaultBarWeight, nil),
			}
			if rung.Percentage > 0 {
				set.Percentage = ptr.Ref(rung.Percentage)
			}
			ld.Warmup = append(ld.Warmup, set)
		}

		tableWeek := ml.WeekType.TableWeek()
		for setNumber := 1; setNumber <= 3; setNumber++ {
			category := lift.SetWorking
			if setNumber == 3 && ml.WeekType != lift.WeekDeload {
				category = lift.SetAMRAP
			}
			weight := calc.WorkingWeight(ml.TrainingMax, tableWeek, setNumber, settings.roundingIncrement)
			ld.Main = append(ld.Main, Set{
				Lift:             ml.Lift,
				Category:         category,
				SetNumber:        setNumber,
				PrescribedReps:   ptr.Ref(calc.PrescribedReps(tableWeek, setNumber)),
				PrescribedWeight: ptr.Ref(weight),
				Percentage:       ptr.Ref(calc.WorkingPercentage(tableWeek, setNumber)),
				Unit:             settings.unit,
				PlatesPerSide:    calc.PlatesPerSide(weight, calc.DefaultBarWeight, nil),
			})
		}
		detail.Lifts = append(detail.Lifts, ld)
	}

	if len(w.MainLifts) > 0 {
		accessories, err := s.repo.templateAccessories(ctx, w.ProgramID, w.MainLifts[0].Lift)
		if err != nil {
			return Detail{}, fmt.Errorf("load template accessories: %w", err)
		}
		for _, accessory := range accessories {
			for setNumber := 1; setNumber <= accessory.Sets; setNumber++ {
				detail.Accessories = append(detail.Accessories, Set{
					ExerciseID:     accessory.ExerciseID,
					Category:       lift.SetAccessory,
					SetNumber:      setNumber,
					PrescribedReps: ptr.Ref(accessory.Reps),
					Unit:           settings.unit,
					CircuitGroup:   accessory.CircuitGroup,
				})
			}
		}
	}
	return detail, nil
}

// Complete records a workout's sets, updates rep-max records from AMRAP
// performance, and returns the performance analysis. Completing a workout
// already in a terminal state is a conflict.
func (s *Service) Complete(ctx context.Context, userID, id string, req CompleteRequest) (CompletionResult, error) {
	w, err := s.repo.get(ctx, userID, id)
	if err != nil {
		return CompletionResult{}, fmt.Errorf("get workout: %w", err)
	}
	if w.Status.Terminal() {
		return CompletionResult{}, fmt.Errorf("%w: workout is already %s", ErrConflict, w.Status)
	}
	settings, err := s.repo.userSettings(ctx, userID)
	if err != nil {
		return CompletionResult{}, fmt.Errorf("load user settings: %w", err)
	}

	completedAt := s.now().UTC()
	if req.CompletedAt != nil {
		completedAt = req.CompletedAt.UTC()
	}

	sets, err := s.resolveSets(ctx, w, req.Sets, settings)
	if err != nil {
		return CompletionResult{}, err
	}

	repMaxes, err := s.newRepMaxes(ctx, userID, w, sets, settings, completedAt)
	if err != nil {
		return CompletionResult{}, err
	}

	w.Status = StatusCompleted
	w.CompletedAt = &completedAt
	w.Notes = req.Notes
	if err = s.repo.insertCompletion(ctx, userID, w, sets, repMaxes); err != nil {
		return CompletionResult{}, fmt.Errorf("record completion: %w", err)
	}

	analysis, err := s.analyze(ctx, userID, w, sets, completedAt)
	if err != nil {
		return CompletionResult{}, err
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "workout completed",
		slog.String("workout_id", w.ID),
		slog.Int("sets", len(sets)),
		slog.Int("rep_maxes", len(repMaxes)),
		slog.Bool("overall_success", analysis.OverallSuccess))
	return CompletionResult{Workout: w, Analysis: analysis}, nil
}

// resolveSets validates the submitted logs and fills in the prescribed
// values from the workout's frozen training maxes.
func (s *Service) resolveSets(
	ctx context.Context,
	w Workout,
	logs []SetLog,
	settings userSettings,
) ([]Set, error) {
	if len(logs) == 0 {
		return nil, fmt.Errorf("%w: no sets submitted", ErrValidation)
	}

	liftsByName := make(map[lift.Lift]MainLift, len(w.MainLifts))
	for _, ml := range w.MainLifts {
		liftsByName[ml.Lift] = ml
	}

	var accessories []templateAccessory
	if len(w.MainLifts) > 0 {
		loaded, err := s.repo.templateAccessories(ctx, w.ProgramID, w.MainLifts[0].Lift)
		if err != nil {
			return nil, fmt.Errorf("load template accessories: %w", err)
		}
		accessories = loaded
	}

	sets := make([]Set, 0, len(logs))
	for i, log := range logs {
		if _, err := lift.ParseSetCategory(string(log.Category)); err != nil {
			return nil, fmt.Errorf("%w: set %d: %s", ErrValidation, i+1, err)
		}
		if log.SetNumber < 1 {
			return nil, fmt.Errorf("%w: set %d: set number must be positive", ErrValidation, i+1)
		}

		set := Set{
			ID:           uuid.NewString(),
			Category:     log.Category,
			SetNumber:    log.SetNumber,
			ActualReps:   ptr.Ref(log.ActualReps),
			ActualWeight: ptr.Ref(log.ActualWeight),
			Unit:         settings.unit,
			TargetMet:    true,
			Notes:        log.Notes,
		}

		if log.Category == lift.SetAccessory {
			set.ExerciseID = log.ExerciseID
			for _, accessory := range accessories {
				if accessory.ExerciseID == log.ExerciseID {
					set.PrescribedReps = ptr.Ref(accessory.Reps)
					break
				}
			}
		} else {
			ml, err := s.resolveLift(w, liftsByName, log, i)
			if err != nil {
				return nil, err
			}
			set.Lift = ml.Lift

			tableWeek := ml.WeekType.TableWeek()
			switch log.Category {
			case lift.SetWarmup:
				ladder := calc.WarmupLadder(ml.TrainingMax, settings.roundingIncrement, calc.DefaultBarWeight)
				if log.SetNumber <= len(ladder) {
					rung := ladder[log.SetNumber-1]
					set.PrescribedReps = ptr.Ref(rung.Reps)
					set.PrescribedWeight = ptr.Ref(rung.Weight)
					if rung.Percentage > 0 {
						set.Percentage = ptr.Ref(rung.Percentage)
					}
				}
			default:
				if reps := calc.PrescribedReps(tableWeek, log.SetNumber); reps > 0 {
					set.PrescribedReps = ptr.Ref(reps)
					set.PrescribedWeight = ptr.Ref(
						calc.WorkingWeight(ml.TrainingMax, tableWeek, log.SetNumber, settings.roundingIncrement))
					set.Percentage = ptr.Ref(calc.WorkingPercentage(tableWeek, log.SetNumber))
				}
			}
		}

		if set.PrescribedReps != nil {
			set.TargetMet = log.ActualReps >= *set.PrescribedReps
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// resolveLift maps a main-work log entry onto one of the workout's
// scheduled lifts. The lift may be omitted only on single-lift sessions.
func (s *Service) resolveLift(w Workout, lifts map[lift.Lift]MainLift, log SetLog, index int) (MainLift, error) {
	if log.Lift == "" {
		if len(w.MainLifts) == 1 {
			return w.MainLifts[0], nil
		}
		return MainLift{}, fmt.Errorf(
			"%w: set %d: lift is required on multi-lift workouts", ErrValidation, index+1)
	}
	ml, ok := lifts[log.Lift]
	if !ok {
		return MainLift{}, fmt.Errorf(
			"%w: set %d: %s is not scheduled in this workout", ErrValidation, index+1, log.Lift)
	}
	return ml, nil
}

// newRepMaxes derives rep-max records from AMRAP performance: the final
// working set of each lift on non-deload weeks, when it beats the existing
// record for that rep count.
func (s *Service) newRepMaxes(
	ctx context.Context,
	userID string,
	w Workout,
	sets []Set,
	settings userSettings,
	completedAt time.Time,
) ([]RepMax, error) {
	if w.WeekType == lift.WeekDeload {
		return nil, nil
	}

	var maxes []RepMax
	for _, set := range sets {
		if !set.Category.MainWork() || set.SetNumber != 3 || set.Lift == "" {
			continue
		}
		reps := *set.ActualReps
		weight := *set.ActualWeight
		if reps <= 0 || weight <= 0 {
			continue
		}

		existing, ok, err := s.repo.bestRepMaxWeight(ctx, userID, set.Lift, reps)
		if err != nil {
			return nil, err
		}
		if ok && weight <= existing {
			continue
		}
		maxes = append(maxes, RepMax{
			ID:           uuid.NewString(),
			Lift:         set.Lift,
			Reps:         reps,
			Weight:       weight,
			Unit:         settings.unit,
			Estimated1RM: calc.Estimate1RM(weight, reps),
			WorkoutSetID: set.ID,
			AchievedAt:   dateOnly(completedAt),
		})
	}
	return maxes, nil
}

// Skip marks a workout as skipped. Terminal workouts cannot be skipped.
func (s *Service) Skip(ctx context.Context, userID, id string) (Workout, error) {
	w, err := s.repo.get(ctx, userID, id)
	if err != nil {
		return Workout{}, fmt.Errorf("get workout: %w", err)
	}
	if w.Status.Terminal() {
		return Workout{}, fmt.Errorf("%w: workout is already %s", ErrConflict, w.Status)
	}
	if err = s.repo.updateStatus(ctx, id, StatusSkipped); err != nil {
		return Workout{}, fmt.Errorf("skip workout: %w", err)
	}
	w.Status = StatusSkipped
	s.logger.LogAttrs(ctx, slog.LevelInfo, "workout skipped", slog.String("workout_id", w.ID))
	return w, nil
}

// RepMaxes retrieves the user's current best record per (lift, reps) pair.
func (s *Service) RepMaxes(ctx context.Context, userID string) ([]RepMax, error) {
	maxes, err := s.repo.currentRepMaxes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list rep maxes: %w", err)
	}
	return maxes, nil
}

// RepMaxHistory retrieves every record for one lift, newest first.
func (s *Service) RepMaxHistory(ctx context.Context, userID string, l lift.Lift) ([]RepMax, error) {
	maxes, err := s.repo.repMaxHistory(ctx, userID, l)
	if err != nil {
		return nil, fmt.Errorf("list rep max history: %w", err)
	}
	return maxes, nil
}

// dateOnly strips the time-of-day portion.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
