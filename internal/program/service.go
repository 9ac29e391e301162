package program

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ironcycle/ironcycle/internal/lift"
	"github.com/ironcycle/ironcycle/internal/schedule"
	"github.com/ironcycle/ironcycle/internal/sqlite"
)

// Service handles the business logic for program management.
type Service struct {
	repo   *sqliteRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new program service.
func NewService(db *sqlite.Database, logger *slog.Logger) *Service {
	return &Service{
		repo:   newSQLiteRepository(db, logger),
		logger: logger,
		now:    time.Now,
	}
}

// CreateRequest is the validated input for creating a program.
type CreateRequest struct {
	Name          string
	Arity         schedule.Arity
	StartDate     time.Time
	TrainingDays  []string
	IncludeDeload bool
	TargetCycles  *int
	EndDate       *time.Time
	TrainingMaxes map[lift.Lift]float64
	Unit          lift.WeightUnit
	Accessories   map[int][]AccessoryPrescription // keyed by workout-type slot
}

// CreateResult reports the created program and its generated first cycle.
type CreateResult struct {
	Program           Program
	WorkoutsGenerated int
}

var weekdayNames = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

// Create validates the request, checks for overlapping active programs, and
// persists the program together with its initial training maxes, accessory
// templates, and the fully generated first cycle in one transaction.
func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (CreateResult, error) {
	if err := s.validateCreate(req); err != nil {
		return CreateResult{}, err
	}

	active, err := s.repo.listActive(ctx, userID)
	if err != nil {
		return CreateResult{}, fmt.Errorf("list active programs: %w", err)
	}
	for _, existing := range active {
		if programsOverlap(req.StartDate, req.EndDate, req.TargetCycles, req.Arity, req.IncludeDeload, existing) {
			return CreateResult{}, fmt.Errorf("%w: date range overlaps active program %q",
				ErrConflict, existing.Name)
		}
	}

	unit := req.Unit
	if unit == "" {
		unit = lift.Pounds
	}

	p := Program{
		ID:            uuid.NewString(),
		UserID:        userID,
		Name:          req.Name,
		Arity:         req.Arity,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		TargetCycles:  req.TargetCycles,
		TrainingDays:  req.TrainingDays,
		IncludeDeload: req.IncludeDeload,
		Status:        StatusActive,
		CreatedAt:     s.now().UTC(),
	}

	maxes := make(map[lift.Lift]TrainingMax, len(req.TrainingMaxes))
	var maxRows []TrainingMax
	for _, l := range lift.All {
		tm := TrainingMax{
			ID:            uuid.NewString(),
			ProgramID:     p.ID,
			Lift:          l,
			Weight:        req.TrainingMaxes[l],
			Unit:          unit,
			CycleNumber:   1,
			EffectiveDate: req.StartDate,
			Reason:        ReasonInitial,
		}
		maxes[l] = tm
		maxRows = append(maxRows, tm)
	}

	var templates []Template
	for slot, lifts := range req.Arity.SlotLifts() {
		accessories := req.Accessories[slot]
		if accessories == nil {
			accessories = []AccessoryPrescription{}
		}
		// Lifts sharing a slot get the same accessory list.
		for _, l := range lifts {
			templates = append(templates, Template{
				ID:          uuid.NewString(),
				ProgramID:   p.ID,
				Slot:        slot,
				Lift:        l,
				Accessories: accessories,
			})
		}
	}

	workouts, err := generateCycle(p, req.StartDate, 1, maxes)
	if err != nil {
		return CreateResult{}, fmt.Errorf("generate cycle 1: %w", err)
	}

	if err = s.repo.createBundle(ctx, p, maxRows, templates, workouts); err != nil {
		return CreateResult{}, fmt.Errorf("persist program: %w", err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "created program",
		slog.String("programID", p.ID),
		slog.String("arity", string(p.Arity)),
		slog.Int("workoutsGenerated", len(workouts)))

	return CreateResult{Program: p, WorkoutsGenerated: len(workouts)}, nil
}

func (s *Service) validateCreate(req CreateRequest) error {
	if req.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if req.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrValidation)
	}
	wantDays := req.Arity.TrainingDays()
	if wantDays == 0 {
		return fmt.Errorf("%w: unknown arity %q", ErrValidation, req.Arity)
	}
	if len(req.TrainingDays) != wantDays {
		return fmt.Errorf("%w: arity %s requires %d training days, got %d",
			ErrValidation, req.Arity, wantDays, len(req.TrainingDays))
	}
	seen := make(map[string]bool, len(req.TrainingDays))
	for _, day := range req.TrainingDays {
		if !weekdayNames[day] {
			return fmt.Errorf("%w: unknown weekday %q", ErrValidation, day)
		}
		if seen[day] {
			return fmt.Errorf("%w: duplicate training day %q", ErrValidation, day)
		}
		seen[day] = true
	}
	for _, l := range lift.All {
		weight, ok := req.TrainingMaxes[l]
		if !ok {
			return fmt.Errorf("%w: missing training max for %s", ErrValidation, l)
		}
		if weight <= 0 {
			return fmt.Errorf("%w: training max for %s must be positive", ErrValidation, l)
		}
	}
	if req.Unit != "" {
		if _, err := lift.ParseWeightUnit(string(req.Unit)); err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}
	if req.TargetCycles != nil && *req.TargetCycles <= 0 {
		return fmt.Errorf("%w: target cycles must be positive", ErrValidation)
	}
	slotCount := len(req.Arity.SlotLifts())
	for slot, accessories := range req.Accessories {
		if slot < 1 || slot > slotCount {
			return fmt.Errorf("%w: accessory slot %d out of range for arity %s",
				ErrValidation, slot, req.Arity)
		}
		for _, a := range accessories {
			if a.ExerciseID == "" {
				return fmt.Errorf("%w: accessory exercise id is required", ErrValidation)
			}
			if a.Sets <= 0 || a.Reps <= 0 {
				return fmt.Errorf("%w: accessory sets and reps must be positive", ErrValidation)
			}
		}
	}
	return nil
}

// programsOverlap reports whether a candidate program's date range collides
// with an existing program's. A range without an explicit end date extends
// by target cycles when set, and indefinitely otherwise.
func programsOverlap(
	start time.Time,
	endDate *time.Time,
	targetCycles *int,
	arity schedule.Arity,
	includeDeload bool,
	existing Program,
) bool {
	newEnd, newOpen := estimatedEnd(start, endDate, targetCycles, arity, includeDeload)
	existingEnd, existingOpen := estimatedEnd(existing.StartDate, existing.EndDate,
		existing.TargetCycles, existing.Arity, existing.IncludeDeload)

	newStartsBeforeExistingEnds := existingOpen || !start.After(existingEnd)
	existingStartsBeforeNewEnds := newOpen || !existing.StartDate.After(newEnd)
	return newStartsBeforeExistingEnds && existingStartsBeforeNewEnds
}

func estimatedEnd(
	start time.Time,
	endDate *time.Time,
	targetCycles *int,
	arity schedule.Arity,
	includeDeload bool,
) (time.Time, bool) {
	if endDate != nil {
		return *endDate, false
	}
	if targetCycles != nil {
		weeks := arity.WeeksPerCycle(includeDeload) * *targetCycles
		return start.AddDate(0, 0, weeks*7), false
	}
	return time.Time{}, true
}

// Get retrieves a program scoped to its owner.
func (s *Service) Get(ctx context.Context, userID, id string) (Program, error) {
	p, err := s.repo.get(ctx, userID, id)
	if err != nil {
		return Program{}, fmt.Errorf("get program: %w", err)
	}
	return p, nil
}

// Detail retrieves a program together with its latest generated cycle and
// that cycle's workout count.
func (s *Service) Detail(ctx context.Context, userID, id string) (Detail, error) {
	p, err := s.repo.get(ctx, userID, id)
	if err != nil {
		return Detail{}, fmt.Errorf("get program: %w", err)
	}
	detail := Detail{Program: p}

	cycle, _, ok, err := s.repo.lastScheduled(ctx, p.ID)
	if err != nil {
		return Detail{}, fmt.Errorf("get last workout: %w", err)
	}
	if ok {
		count, countErr := s.repo.countWorkouts(ctx, p.ID, cycle)
		if countErr != nil {
			return Detail{}, fmt.Errorf("count cycle workouts: %w", countErr)
		}
		detail.CurrentCycle = cycle
		detail.CycleWorkouts = count
	}
	return detail, nil
}

// List retrieves all programs owned by the user.
func (s *Service) List(ctx context.Context, userID string) ([]Program, error) {
	programs, err := s.repo.list(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	return programs, nil
}

// UpdateRequest carries the mutable program fields; nil means unchanged.
type UpdateRequest struct {
	Name         *string
	Status       *Status
	EndDate      *time.Time
	TargetCycles *int
}

// Update mutates a program's name, status, end date, or target cycles.
func (s *Service) Update(ctx context.Context, userID, id string, req UpdateRequest) (Program, error) {
	p, err := s.repo.get(ctx, userID, id)
	if err != nil {
		return Program{}, fmt.Errorf("get program: %w", err)
	}

	if req.Name != nil {
		if *req.Name == "" {
			return Program{}, fmt.Errorf("%w: name must not be empty", ErrValidation)
		}
		p.Name = *req.Name
	}
	if req.Status != nil {
		switch *req.Status {
		case StatusActive, StatusCompleted, StatusPaused:
			p.Status = *req.Status
		default:
			return Program{}, fmt.Errorf("%w: unknown status %q", ErrValidation, *req.Status)
		}
	}
	if req.EndDate != nil {
		p.EndDate = req.EndDate
	}
	if req.TargetCycles != nil {
		if *req.TargetCycles <= 0 {
			return Program{}, fmt.Errorf("%w: target cycles must be positive", ErrValidation)
		}
		p.TargetCycles = req.TargetCycles
	}

	if err = s.repo.update(ctx, p); err != nil {
		return Program{}, fmt.Errorf("update program: %w", err)
	}
	return p, nil
}

// Delete removes a program and everything it owns: workouts, main lifts,
// logged sets, training maxes, history, and templates.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete program: %w", err)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "deleted program", slog.String("programID", id))
	return nil
}

// Templates retrieves a program's accessory templates.
func (s *Service) Templates(ctx context.Context, userID, programID string) ([]Template, error) {
	if _, err := s.repo.get(ctx, userID, programID); err != nil {
		return nil, fmt.Errorf("get program: %w", err)
	}
	templates, err := s.repo.templates(ctx, programID)
	if err != nil {
		return nil, fmt.Errorf("get templates: %w", err)
	}
	return templates, nil
}

// UpdateAccessories overwrites the accessory list for one workout-type slot.
// Every lift sharing the slot receives the same list so that lifts trained
// on the same calendar day present identical accessories.
func (s *Service) UpdateAccessories(
	ctx context.Context,
	userID, programID string,
	slot int,
	accessories []AccessoryPrescription,
) error {
	p, err := s.repo.get(ctx, userID, programID)
	if err != nil {
		return fmt.Errorf("get program: %w", err)
	}
	if slot < 1 || slot > len(p.Arity.SlotLifts()) {
		return fmt.Errorf("%w: slot %d out of range for arity %s", ErrValidation, slot, p.Arity)
	}
	for _, a := range accessories {
		if a.ExerciseID == "" {
			return fmt.Errorf("%w: accessory exercise id is required", ErrValidation)
		}
		if a.Sets <= 0 || a.Reps <= 0 {
			return fmt.Errorf("%w: accessory sets and reps must be positive", ErrValidation)
		}
	}
	if accessories == nil {
		accessories = []AccessoryPrescription{}
	}

	updated, err := s.repo.updateSlotAccessories(ctx, programID, slot, accessories)
	if err != nil {
		return fmt.Errorf("update accessories: %w", err)
	}
	if updated == 0 {
		return fmt.Errorf("%w: no templates for slot %d", ErrNotFound, slot)
	}
	return nil
}

// CompleteCycle advances every lift's training max by its fixed increment,
// writing a new immutable snapshot for the next cycle plus one audit row per
// lift. Workouts are not generated here; see GenerateNextCycle.
func (s *Service) CompleteCycle(ctx context.Context, userID, id string) (CycleCompletion, error) {
	p, err := s.repo.get(ctx, userID, id)
	if err != nil {
		return CycleCompletion{}, fmt.Errorf("get program: %w", err)
	}

	current, err := s.repo.latestTrainingMaxes(ctx, p.ID)
	if err != nil {
		return CycleCompletion{}, fmt.Errorf("get latest training maxes: %w", err)
	}
	if len(current) == 0 {
		return CycleCompletion{}, fmt.Errorf("%w: program has no training maxes", ErrConflict)
	}

	completedCycle := 0
	for _, tm := range current {
		if tm.CycleNumber > completedCycle {
			completedCycle = tm.CycleNumber
		}
	}
	nextCycle := completedCycle + 1
	note := fmt.Sprintf("Cycle %d completed, auto-progression", completedCycle)
	today := dateOnly(s.now())

	var (
		newMaxes []TrainingMax
		history  []HistoryEntry
		updates  []LiftUpdate
	)
	for _, tm := range current {
		increment := tm.Lift.Increment()
		newWeight := tm.Weight + increment
		newMaxes = append(newMaxes, TrainingMax{
			ID:            uuid.NewString(),
			ProgramID:     p.ID,
			Lift:          tm.Lift,
			Weight:        newWeight,
			Unit:          tm.Unit,
			CycleNumber:   nextCycle,
			EffectiveDate: today,
			Reason:        ReasonCycleCompletion,
			Note:          note,
		})
		history = append(history, HistoryEntry{
			ID:        uuid.NewString(),
			ProgramID: p.ID,
			Lift:      tm.Lift,
			OldWeight: tm.Weight,
			NewWeight: newWeight,
			Reason:    ReasonCycleCompletion,
			Note:      note,
			ChangedAt: s.now().UTC(),
		})
		updates = append(updates, LiftUpdate{
			Lift:      tm.Lift,
			OldWeight: tm.Weight,
			NewWeight: newWeight,
			Increment: increment,
		})
	}

	if err = s.repo.insertProgression(ctx, newMaxes, history); err != nil {
		return CycleCompletion{}, fmt.Errorf("persist progression: %w", err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "completed cycle",
		slog.String("programID", p.ID),
		slog.Int("completedCycle", completedCycle),
		slog.Int("nextCycle", nextCycle))

	return CycleCompletion{
		CompletedCycle: completedCycle,
		NextCycle:      nextCycle,
		Updates:        updates,
	}, nil
}

// GenerateNextCycle schedules the workouts of the cycle after the last one
// generated. CompleteCycle must have written the next cycle's training maxes
// first; the new cycle starts one week after the latest scheduled workout.
func (s *Service) GenerateNextCycle(ctx context.Context, userID, id string) (NextCycle, error) {
	p, err := s.repo.get(ctx, userID, id)
	if err != nil {
		return NextCycle{}, fmt.Errorf("get program: %w", err)
	}

	lastCycle, lastDate, ok, err := s.repo.lastScheduled(ctx, p.ID)
	if err != nil {
		return NextCycle{}, fmt.Errorf("get last workout: %w", err)
	}
	if !ok {
		return NextCycle{}, fmt.Errorf("%w: program has no workouts to continue from", ErrConflict)
	}

	nextCycle := lastCycle + 1
	startDate := lastDate.AddDate(0, 0, 7)

	maxes, err := s.repo.trainingMaxesForCycle(ctx, p.ID, nextCycle)
	if err != nil {
		return NextCycle{}, fmt.Errorf("get training maxes: %w", err)
	}
	for _, l := range lift.All {
		if _, found := maxes[l]; !found {
			return NextCycle{}, fmt.Errorf("%w: no training maxes for cycle %d, complete the current cycle first",
				ErrConflict, nextCycle)
		}
	}

	workouts, err := generateCycle(p, startDate, nextCycle, maxes)
	if err != nil {
		return NextCycle{}, fmt.Errorf("generate cycle %d: %w", nextCycle, err)
	}
	if err = s.repo.insertGeneratedCycle(ctx, p.ID, workouts); err != nil {
		return NextCycle{}, fmt.Errorf("persist cycle: %w", err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "generated next cycle",
		slog.String("programID", p.ID),
		slog.Int("cycle", nextCycle),
		slog.Int("workoutsGenerated", len(workouts)))

	return NextCycle{
		CycleNumber:       nextCycle,
		StartDate:         startDate,
		WorkoutsGenerated: len(workouts),
	}, nil
}

// History retrieves the program's training-max audit trail.
func (s *Service) History(ctx context.Context, userID, id string) ([]HistoryEntry, error) {
	if _, err := s.repo.get(ctx, userID, id); err != nil {
		return nil, fmt.Errorf("get program: %w", err)
	}
	entries, err := s.repo.history(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	return entries, nil
}

// dateOnly strips the time-of-day portion.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
