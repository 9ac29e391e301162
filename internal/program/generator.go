package program

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ironcycle/ironcycle/internal/lift"
	"github.com/ironcycle/ironcycle/internal/schedule"
)

// weekTypeOrder is the nominal phase order for non-rolling topologies.
var weekTypeOrder = []lift.WeekType{lift.Week5s, lift.Week3s, lift.Week531, lift.WeekDeload}

// generateCycle expands a program configuration, a start date, and a cycle
// number into one full cycle of workouts with frozen training-max copies.
// A missing training max for a scheduled lift is an invariant violation.
func generateCycle(
	p Program,
	startDate time.Time,
	cycleNumber int,
	maxes map[lift.Lift]TrainingMax,
) ([]generatedWorkout, error) {
	if p.Arity == schedule.ThreeDay {
		return generateRollingCycle(p, startDate, cycleNumber, maxes)
	}

	weekTypes := weekTypeOrder[:3]
	if p.IncludeDeload {
		weekTypes = weekTypeOrder
	}

	var workouts []generatedWorkout
	anchor := startDate
	for weekIdx, weekType := range weekTypes {
		for offset := 0; offset < 7; offset++ {
			day := anchor.AddDate(0, 0, offset)
			dayIndex := trainingDayIndex(p.TrainingDays, day)
			if dayIndex < 0 {
				continue
			}
			lifts := p.Arity.LiftsForDay(dayIndex)
			if len(lifts) == 0 {
				continue
			}

			w := generatedWorkout{
				id:            uuid.NewString(),
				cycleNumber:   cycleNumber,
				weekNumber:    weekIdx + 1,
				weekType:      weekType,
				scheduledDate: day,
			}
			for position, l := range lifts {
				tm, ok := maxes[l]
				if !ok {
					return nil, fmt.Errorf("%w: no training max for %s in cycle %d",
						ErrInvariant, l, cycleNumber)
				}
				w.lifts = append(w.lifts, generatedLift{
					id:          uuid.NewString(),
					lift:        l,
					position:    position,
					weekType:    weekType,
					trainingMax: tm.Weight,
				})
			}
			workouts = append(workouts, w)
		}
		anchor = anchor.AddDate(0, 0, 7)
	}
	return workouts, nil
}

// generateRollingCycle expands the 3-day topology's 5-week rolling schedule.
// Each main lift carries its own progression phase, which may differ from
// its siblings'; the parent workout takes the first lift's phase as its
// nominal week type.
func generateRollingCycle(
	p Program,
	startDate time.Time,
	cycleNumber int,
	maxes map[lift.Lift]TrainingMax,
) ([]generatedWorkout, error) {
	var workouts []generatedWorkout
	anchor := startDate
	weeks := p.Arity.WeeksPerCycle(p.IncludeDeload)
	for week := 1; week <= weeks; week++ {
		for offset := 0; offset < 7; offset++ {
			day := anchor.AddDate(0, 0, offset)
			dayIndex := trainingDayIndex(p.TrainingDays, day)
			if dayIndex < 0 {
				continue
			}
			entries := schedule.RollingDayEntries(week, dayIndex)
			if len(entries) == 0 {
				continue
			}

			w := generatedWorkout{
				id:            uuid.NewString(),
				cycleNumber:   cycleNumber,
				weekNumber:    week,
				weekType:      entries[0].WeekType,
				scheduledDate: day,
			}
			for position, entry := range entries {
				tm, ok := maxes[entry.Lift]
				if !ok {
					return nil, fmt.Errorf("%w: no training max for %s in cycle %d",
						ErrInvariant, entry.Lift, cycleNumber)
				}
				w.lifts = append(w.lifts, generatedLift{
					id:          uuid.NewString(),
					lift:        entry.Lift,
					position:    position,
					weekType:    entry.WeekType,
					trainingMax: tm.Weight,
				})
			}
			workouts = append(workouts, w)
		}
		anchor = anchor.AddDate(0, 0, 7)
	}
	return workouts, nil
}

// trainingDayIndex returns the position of the date's weekday within the
// program's chosen training days, or -1 when the date is a rest day. Lift
// assignment keys off this position, not the chronological order of days.
func trainingDayIndex(trainingDays []string, date time.Time) int {
	name := strings.ToLower(date.Weekday().String())
	for i, day := range trainingDays {
		if day == name {
			return i
		}
	}
	return -1
}
