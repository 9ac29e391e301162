// Package program implements training-program management: creation with
// cycle-1 generation, accessory templates, training-max progression on cycle
// completion, and next-cycle scheduling.
package program

import (
	"time"

	"github.com/ironcycle/ironcycle/internal/lift"
	"github.com/ironcycle/ironcycle/internal/schedule"
)

// Status is the lifecycle state of a program.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusPaused    Status = "paused"
)

// ChangeReason explains why a training-max row was written.
type ChangeReason string

const (
	ReasonInitial         ChangeReason = "initial"
	ReasonCycleCompletion ChangeReason = "cycle_completion"
	ReasonDeload          ChangeReason = "deload"
	ReasonFailedReps      ChangeReason = "failed_reps"
	ReasonManual          ChangeReason = "manual"
)

// Program is a training plan owned by one user.
type Program struct {
	ID            string
	UserID        string
	Name          string
	Arity         schedule.Arity
	StartDate     time.Time
	EndDate       *time.Time
	TargetCycles  *int
	TrainingDays  []string // lowercase weekday names in user-chosen order
	IncludeDeload bool
	Status        Status
	CreatedAt     time.Time
}

// TrainingMax is an immutable per-(program, lift, cycle) snapshot of the
// weight all percentages are computed from. Progression writes a new row for
// the next cycle instead of mutating this one.
type TrainingMax struct {
	ID            string
	ProgramID     string
	Lift          lift.Lift
	Weight        float64
	Unit          lift.WeightUnit
	CycleNumber   int
	EffectiveDate time.Time
	Reason        ChangeReason
	Note          string
}

// Detail pairs a program with the progress of its latest generated cycle.
type Detail struct {
	Program
	CurrentCycle  int
	CycleWorkouts int
}

// HistoryEntry is one append-only training-max change record.
type HistoryEntry struct {
	ID        string
	ProgramID string
	Lift      lift.Lift
	OldWeight float64
	NewWeight float64
	Reason    ChangeReason
	Note      string
	ChangedAt time.Time
}

// AccessoryPrescription is one accessory exercise within a template.
type AccessoryPrescription struct {
	ExerciseID   string `json:"exercise_id"`
	Sets         int    `json:"sets"`
	Reps         int    `json:"reps"`
	CircuitGroup string `json:"circuit_group,omitempty"`
}

// Template assigns accessories to a (workout-type slot, main lift) pair.
// Lifts sharing a slot always present identical accessory lists.
type Template struct {
	ID          string
	ProgramID   string
	Slot        int
	Lift        lift.Lift
	Accessories []AccessoryPrescription
}

// LiftUpdate reports one lift's progression applied by CompleteCycle.
type LiftUpdate struct {
	Lift      lift.Lift
	OldWeight float64
	NewWeight float64
	Increment float64
}

// CycleCompletion is the result of CompleteCycle.
type CycleCompletion struct {
	CompletedCycle int
	NextCycle      int
	Updates        []LiftUpdate
}

// NextCycle is the result of GenerateNextCycle.
type NextCycle struct {
	CycleNumber       int
	StartDate         time.Time
	WorkoutsGenerated int
}

// generatedWorkout is one session produced by the cycle generator, carried
// in memory until the repository persists the whole cycle atomically.
type generatedWorkout struct {
	id            string
	cycleNumber   int
	weekNumber    int
	weekType      lift.WeekType
	scheduledDate time.Time
	lifts         []generatedLift
}

// generatedLift is one main-lift assignment inside a generated workout. The
// training max is a frozen value copy taken at generation time.
type generatedLift struct {
	id          string
	lift        lift.Lift
	position    int
	weekType    lift.WeekType
	trainingMax float64
}
