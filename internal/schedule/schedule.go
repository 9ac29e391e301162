// Package schedule holds the static scheduling knowledge of each program
// topology: which lift(s) run on which training day, and the 3-day
// topology's 5-week rolling progression. The tables are immutable lookup
// data; generation code consults them instead of branching on arity.
package schedule

import (
	"fmt"

	"github.com/ironcycle/ironcycle/internal/lift"
)

// Arity is the number of training days per week a program uses.
type Arity string

const (
	TwoDay   Arity = "2_day"
	ThreeDay Arity = "3_day"
	FourDay  Arity = "4_day"
)

// ParseArity converts a wire string into an Arity.
func ParseArity(s string) (Arity, error) {
	switch Arity(s) {
	case TwoDay, ThreeDay, FourDay:
		return Arity(s), nil
	}
	return "", fmt.Errorf("unknown program arity %q", s)
}

// TrainingDays returns how many weekday slots the arity requires.
func (a Arity) TrainingDays() int {
	switch a {
	case TwoDay:
		return 2
	case ThreeDay:
		return 3
	case FourDay:
		return 4
	}
	return 0
}

// WeeksPerCycle returns the calendar length of one cycle. The 3-day
// topology always runs 5 rolling weeks; the others run the three loading
// weeks plus an optional deload week.
func (a Arity) WeeksPerCycle(includeDeload bool) int {
	if a == ThreeDay {
		return 5
	}
	if includeDeload {
		return 4
	}
	return 3
}

// fourDayLifts is the fixed lift order for 4-day programs, one per day.
var fourDayLifts = []lift.Lift{lift.Press, lift.Deadlift, lift.BenchPress, lift.Squat}

// twoDayLifts pairs lifts per day for 2-day programs.
var twoDayLifts = [][]lift.Lift{
	{lift.Squat, lift.BenchPress},
	{lift.Deadlift, lift.Press},
}

// threeDayLifts is the slot mapping used only for accessory-template
// assignment at program creation. Workout scheduling for 3-day programs
// uses the rolling table instead.
var threeDayLifts = [][]lift.Lift{
	{lift.Squat, lift.BenchPress},
	{lift.Deadlift},
	{lift.Press},
}

// LiftsForDay returns the lift(s) trained on the given 0-based training-day
// index for non-rolling scheduling. It is undefined (nil) outside the
// arity's day range.
func (a Arity) LiftsForDay(dayIndex int) []lift.Lift {
	switch a {
	case FourDay:
		if dayIndex >= 0 && dayIndex < len(fourDayLifts) {
			return []lift.Lift{fourDayLifts[dayIndex]}
		}
	case TwoDay:
		if dayIndex >= 0 && dayIndex < len(twoDayLifts) {
			return twoDayLifts[dayIndex]
		}
	case ThreeDay:
		if dayIndex >= 0 && dayIndex < len(threeDayLifts) {
			return threeDayLifts[dayIndex]
		}
	}
	return nil
}

// SlotLifts maps a workout-type slot (1-4) to the main lift(s) whose
// accessory template it owns. 2-day programs have two slots of two lifts
// each; 3-day and 4-day programs have four single-lift slots in the fixed
// press/deadlift/bench/squat order.
func (a Arity) SlotLifts() map[int][]lift.Lift {
	switch a {
	case TwoDay:
		return map[int][]lift.Lift{
			1: {lift.Squat, lift.BenchPress},
			2: {lift.Deadlift, lift.Press},
		}
	case ThreeDay, FourDay:
		slots := make(map[int][]lift.Lift, len(fourDayLifts))
		for i, l := range fourDayLifts {
			slots[i+1] = []lift.Lift{l}
		}
		return slots
	}
	return nil
}

// Entry pairs a lift with the progression phase it trains in a given week.
type Entry struct {
	Lift     lift.Lift
	WeekType lift.WeekType
}

// rollingWeeks is the 3-day topology's 5-week schedule. Each lift walks
// 5s → 3s → 5/3/1 → deload offset one week from the lift before it, and by
// week 5 all four lifts deload together. Week 5 carries four lift-instances
// on three training days.
var rollingWeeks = [5][]Entry{
	{
		{lift.Press, lift.Week5s},
		{lift.Deadlift, lift.Week5s},
		{lift.BenchPress, lift.Week5s},
	},
	{
		{lift.Squat, lift.Week5s},
		{lift.Press, lift.Week3s},
		{lift.Deadlift, lift.Week3s},
	},
	{
		{lift.BenchPress, lift.Week3s},
		{lift.Squat, lift.Week3s},
		{lift.Press, lift.Week531},
	},
	{
		{lift.Deadlift, lift.Week531},
		{lift.BenchPress, lift.Week531},
		{lift.Squat, lift.Week531},
	},
	{
		{lift.Press, lift.WeekDeload},
		{lift.Deadlift, lift.WeekDeload},
		{lift.BenchPress, lift.WeekDeload},
		{lift.Squat, lift.WeekDeload},
	},
}

// RollingWeek returns the lift/phase entries for week 1-5 of the 3-day
// rolling progression, or nil outside that range.
func RollingWeek(week int) []Entry {
	if week < 1 || week > len(rollingWeeks) {
		return nil
	}
	return rollingWeeks[week-1]
}

// RollingDayEntries assigns a rolling week's entries to a 0-based training
// day. Normal weeks place one entry per day by position. A four-entry week
// compresses onto three days: the first day absorbs the first two entries
// and the remaining days take one each.
func RollingDayEntries(week, dayIndex int) []Entry {
	entries := RollingWeek(week)
	if entries == nil || dayIndex < 0 {
		return nil
	}

	if len(entries) == 4 {
		switch dayIndex {
		case 0:
			return entries[0:2]
		case 1:
			return entries[2:3]
		case 2:
			return entries[3:4]
		}
		return nil
	}

	if dayIndex >= len(entries) {
		return nil
	}
	return entries[dayIndex : dayIndex+1]
}
