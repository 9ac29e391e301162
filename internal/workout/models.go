// Package workout implements session execution: listing and detailing
// scheduled sessions, logging sets on completion, rep-max tracking with
// post-workout performance analysis, skipping, and missed-workout recovery.
package workout

import (
	"fmt"
	"time"

	"github.com/ironcycle/ironcycle/internal/lift"
)

// Status is the lifecycle state of a workout.
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusSkipped    Status = "skipped"
)

// ParseStatus converts a wire string into a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusSkipped:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown workout status %q", s)
}

// Terminal reports whether the workout can no longer be completed or
// skipped.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusSkipped
}

// Workout is one scheduled training session within a program cycle.
type Workout struct {
	ID            string
	ProgramID     string
	CycleNumber   int
	WeekNumber    int
	WeekType      lift.WeekType
	ScheduledDate time.Time
	Status        Status
	CompletedAt   *time.Time
	Notes         string
	MainLifts     []MainLift
}

// MainLift is one main-lift assignment within a workout. TrainingMax is the
// value frozen at cycle generation, so later progression never rewrites an
// already scheduled session.
type MainLift struct {
	ID          string
	Lift        lift.Lift
	Position    int
	WeekType    lift.WeekType
	TrainingMax float64
}

// Set is a prescribed or logged set. Prescribed fields come from the
// percentage tables, warmup ladder, or accessory templates; actual fields
// come from the athlete. Pointers are nil where no value applies.
type Set struct {
	ID               string
	Lift             lift.Lift // empty on accessory sets
	ExerciseID       string    // empty on main-lift sets
	Category         lift.SetCategory
	SetNumber        int
	PrescribedReps   *int
	PrescribedWeight *float64
	Percentage       *float64
	ActualReps       *int
	ActualWeight     *float64
	Unit             lift.WeightUnit
	TargetMet        bool
	Notes            string
	CircuitGroup     string    // accessory prescriptions only
	PlatesPerSide    []float64 // computed for prescribed barbell sets
}

// LiftDetail groups one main lift's warmup and working sets.
type LiftDetail struct {
	Lift        lift.Lift
	WeekType    lift.WeekType
	TrainingMax float64
	Warmup      []Set
	Main        []Set
}

// Detail is a workout with its full set breakdown. Scheduled workouts carry
// computed prescriptions; completed workouts replay the logged sets.
type Detail struct {
	Workout
	Lifts       []LiftDetail
	Accessories []Set
}

// SetLog is one set reported at completion time.
type SetLog struct {
	Lift         lift.Lift // optional when the workout has a single main lift
	ExerciseID   string    // accessory sets only
	Category     lift.SetCategory
	SetNumber    int
	ActualReps   int
	ActualWeight float64
	Notes        string
}

// CompleteRequest carries everything needed to finish a workout.
type CompleteRequest struct {
	Sets        []SetLog
	Notes       string
	CompletedAt *time.Time
}

// CompletionResult pairs the completed workout with its performance
// analysis.
type CompletionResult struct {
	Workout  Workout
	Analysis Analysis
}

// RepMax is a personal record for one (lift, rep count) pair. Records are
// append-only; queries for current bests surface the highest estimated 1RM
// per pair.
type RepMax struct {
	ID           string
	Lift         lift.Lift
	Reps         int
	Weight       float64
	Unit         lift.WeightUnit
	Estimated1RM float64
	WorkoutSetID string
	AchievedAt   time.Time
}

// Filters narrows List results. Zero values mean no constraint.
type Filters struct {
	ProgramID string
	Status    Status
	From      *time.Time
	To        *time.Time
	Lifts     []lift.Lift // matches workouts containing any of these
	Cycle     *int
	Week      *int
}

// Severity ranks a recommendation.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// FailedSet records one working set that missed its rep target.
type FailedSet struct {
	SetNumber        int
	Category         lift.SetCategory
	PrescribedReps   int
	ActualReps       int
	PrescribedWeight float64
}

// LiftAnalysis is the per-lift verdict of a completed workout.
type LiftAnalysis struct {
	Lift                 lift.Lift
	AllTargetsMet        bool
	FailedSets           []FailedSet
	AMRAPReps            *int
	AMRAPMinimum         *int
	AMRAPMetMinimum      *bool
	TrainingMax          float64
	Estimated1RM         *float64
	SuggestedTrainingMax *float64
	Recommendation       string
	Severity             Severity // empty when no recommendation applies
}

// Cycle-level corrective actions when rep targets were missed.
const (
	CycleActionAdjustTrainingMax = "adjust_training_max"
	CycleActionDeloadThenAdjust  = "deload_then_adjust"
)

// CycleAnalysis recommends a cycle-level correction after failed reps.
type CycleAnalysis struct {
	Action  string
	Lifts   []lift.Lift
	Message string
}

// Analysis is the full post-completion performance report.
type Analysis struct {
	OverallSuccess     bool
	Lifts              []LiftAnalysis
	Summary            string
	HasRecommendations bool
	Cycle              *CycleAnalysis
}

// MissedWorkout is a scheduled workout whose date has passed.
type MissedWorkout struct {
	Workout       Workout
	DaysOverdue   int
	CanReschedule bool // advisory, more than two weeks overdue suggests skipping
}

// Missed-workout handling actions and user preferences.
const (
	ActionSkip       = "skip"
	ActionReschedule = "reschedule"

	PreferenceAsk = "ask"
)

// MissedReport lists missed workouts with the user's handling preference.
type MissedReport struct {
	Workouts   []MissedWorkout
	Preference string
}

// HandleResult reports the outcome of handling one missed workout.
type HandleResult struct {
	Workout     Workout
	Action      string
	Rescheduled int // scheduled workouts shifted by a reschedule
}
