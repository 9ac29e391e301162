// Package lift defines the closed vocabularies of the 5/3/1 domain: the four
// main lifts, week progression phases, set categories, and weight units.
// Storage and the wire format use the string forms; everything else should
// switch on the typed constants so the compiler catches missing cases.
package lift

import "fmt"

// Lift identifies one of the four main barbell lifts.
type Lift string

const (
	Squat      Lift = "squat"
	Deadlift   Lift = "deadlift"
	BenchPress Lift = "bench_press"
	Press      Lift = "press"
)

// All lists every lift in the canonical 4-day order.
var All = []Lift{Press, Deadlift, BenchPress, Squat}

// Parse converts a wire string into a Lift.
func Parse(s string) (Lift, error) {
	switch Lift(s) {
	case Squat, Deadlift, BenchPress, Press:
		return Lift(s), nil
	}
	return "", fmt.Errorf("unknown lift %q", s)
}

// DisplayName returns the human-readable lift name used in recommendations.
func (l Lift) DisplayName() string {
	switch l {
	case Squat:
		return "Squat"
	case Deadlift:
		return "Deadlift"
	case BenchPress:
		return "Bench Press"
	case Press:
		return "Overhead Press"
	}
	return string(l)
}

// Increment returns the per-cycle training-max increase for the lift.
// Upper-body lifts move +5, lower-body +10, per standard 5/3/1 progression.
func (l Lift) Increment() float64 {
	switch l {
	case Squat, Deadlift:
		return 10
	case BenchPress, Press:
		return 5
	}
	return 0
}

// WeekType is the progression phase of a training week.
type WeekType string

const (
	Week5s     WeekType = "week_1_5s"
	Week3s     WeekType = "week_2_3s"
	Week531    WeekType = "week_3_531"
	WeekDeload WeekType = "week_4_deload"
)

// ParseWeekType converts a wire string into a WeekType.
func ParseWeekType(s string) (WeekType, error) {
	switch WeekType(s) {
	case Week5s, Week3s, Week531, WeekDeload:
		return WeekType(s), nil
	}
	return "", fmt.Errorf("unknown week type %q", s)
}

// TableWeek maps the phase to the row (1-4) of the percentage and rep
// tables. The 3-day topology schedules phases on calendar weeks 1-5, so
// prescriptions must key off the phase rather than the calendar week.
func (w WeekType) TableWeek() int {
	switch w {
	case Week5s:
		return 1
	case Week3s:
		return 2
	case Week531:
		return 3
	case WeekDeload:
		return 4
	}
	return 0
}

// SetCategory classifies a logged or prescribed set.
type SetCategory string

const (
	SetWarmup    SetCategory = "warmup"
	SetWorking   SetCategory = "working"
	SetAccessory SetCategory = "accessory"
	SetAMRAP     SetCategory = "amrap"
)

// ParseSetCategory converts a wire string into a SetCategory.
func ParseSetCategory(s string) (SetCategory, error) {
	switch SetCategory(s) {
	case SetWarmup, SetWorking, SetAccessory, SetAMRAP:
		return SetCategory(s), nil
	}
	return "", fmt.Errorf("unknown set category %q", s)
}

// MainWork reports whether sets of this category count toward working-set
// analysis (working and AMRAP sets do, warmups and accessories do not).
func (c SetCategory) MainWork() bool {
	return c == SetWorking || c == SetAMRAP
}

// WeightUnit is the unit a weight was recorded in.
type WeightUnit string

const (
	Pounds    WeightUnit = "lbs"
	Kilograms WeightUnit = "kg"
)

// ParseWeightUnit converts a wire string into a WeightUnit.
func ParseWeightUnit(s string) (WeightUnit, error) {
	switch WeightUnit(s) {
	case Pounds, Kilograms:
		return WeightUnit(s), nil
	}
	return "", fmt.Errorf("unknown weight unit %q", s)
}
