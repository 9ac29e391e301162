package workout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ironcycle/ironcycle/internal/calc"
	"github.com/ironcycle/ironcycle/internal/lift"
	"github.com/ironcycle/ironcycle/internal/ptr"
)

// repMaxLookbackWeeks bounds how far back the analyzer searches rep-max
// history for the best estimated 1RM.
const repMaxLookbackWeeks = 4

// analyze builds the post-completion performance report: per-lift AMRAP
// verdicts with training-max recommendations, an overall summary, and a
// cycle-level correction when rep targets were missed.
func (s *Service) analyze(
	ctx context.Context,
	userID string,
	w Workout,
	sets []Set,
	completedAt time.Time,
) (Analysis, error) {
	analysis := Analysis{OverallSuccess: true}

	for _, ml := range w.MainLifts {
		la, ok, err := s.analyzeLift(ctx, userID, w, ml, sets, completedAt)
		if err != nil {
			return Analysis{}, err
		}
		if !ok {
			continue
		}
		if !la.AllTargetsMet {
			analysis.OverallSuccess = false
		}
		if la.Severity == SeverityCritical || la.Severity == SeverityWarning {
			analysis.HasRecommendations = true
		}
		analysis.Lifts = append(analysis.Lifts, la)
	}

	analysis.Summary = summarize(analysis)

	if !analysis.OverallSuccess {
		cycle, err := s.analyzeCycleFailures(ctx, w.ProgramID, w.CycleNumber)
		if err != nil {
			return Analysis{}, err
		}
		if cycle != nil {
			analysis.Cycle = cycle
			analysis.HasRecommendations = true
		}
	}
	return analysis, nil
}

// analyzeLift evaluates one lift's working sets. ok is false when the lift
// logged no working sets.
func (s *Service) analyzeLift(
	ctx context.Context,
	userID string,
	w Workout,
	ml MainLift,
	sets []Set,
	completedAt time.Time,
) (LiftAnalysis, bool, error) {
	la := LiftAnalysis{
		Lift:          ml.Lift,
		AllTargetsMet: true,
		TrainingMax:   ml.TrainingMax,
	}

	var amrapSet *Set
	var worked bool
	for i, set := range sets {
		if set.Lift != ml.Lift || !set.Category.MainWork() {
			continue
		}
		worked = true
		if !set.TargetMet {
			la.AllTargetsMet = false
			la.FailedSets = append(la.FailedSets, FailedSet{
				SetNumber:        set.SetNumber,
				Category:         set.Category,
				PrescribedReps:   derefInt(set.PrescribedReps),
				ActualReps:       derefInt(set.ActualReps),
				PrescribedWeight: derefFloat(set.PrescribedWeight),
			})
		}
		// The final working set is the AMRAP set on every non-deload week.
		if set.Category == lift.SetAMRAP || (set.SetNumber == 3 && w.WeekType != lift.WeekDeload) {
			amrapSet = &sets[i]
		}
	}
	if !worked {
		return LiftAnalysis{}, false, nil
	}

	display := ml.Lift.DisplayName()
	if amrapSet != nil && derefInt(amrapSet.PrescribedReps) > 0 {
		reps := derefInt(amrapSet.ActualReps)
		minimum := derefInt(amrapSet.PrescribedReps)
		weight := derefFloat(amrapSet.ActualWeight)
		met := reps >= minimum
		la.AMRAPReps = ptr.Ref(reps)
		la.AMRAPMinimum = ptr.Ref(minimum)
		la.AMRAPMetMinimum = ptr.Ref(met)

		var thisWorkout1RM float64
		if reps > 0 {
			thisWorkout1RM = calc.Estimate1RM(weight, reps)
		}

		cutoff := dateOnly(completedAt).AddDate(0, 0, -7*repMaxLookbackWeeks)
		best, found, err := s.repo.bestEstimated1RM(ctx, userID, ml.Lift, cutoff)
		if err != nil {
			return LiftAnalysis{}, false, err
		}
		estimated := thisWorkout1RM
		if found {
			estimated = best
		}
		la.Estimated1RM = ptr.Ref(estimated)

		var suggested float64
		if estimated > 0 {
			suggested = calc.TrainingMaxFromOneRM(estimated)
			la.SuggestedTrainingMax = ptr.Ref(suggested)
		}

		switch {
		case !met:
			if suggested > 0 {
				la.Recommendation = fmt.Sprintf(
					"You completed %d rep%s at %d lbs on your %d+ set for %s. "+
						"Based on your recent rep max history, your best estimated 1RM is %d lbs. "+
						"Reset your training max to %d lbs (90%% of estimated 1RM) to ensure continued progress.",
					reps, pluralS(reps), int(weight), minimum, display, int(estimated), int(suggested))
			} else {
				la.Recommendation = fmt.Sprintf(
					"You completed %d rep%s at %d lbs on your %d+ set for %s. "+
						"Consider reducing your training max to ensure continued progress.",
					reps, pluralS(reps), int(weight), minimum, display)
			}
			la.Severity = SeverityCritical

		case reps <= minimum+1 && w.WeekType == lift.Week531:
			message := fmt.Sprintf(
				"You hit %d reps on your 1+ set for %s. This is close to the minimum.", reps, display)
			if suggested > 0 && suggested < ml.TrainingMax {
				message += fmt.Sprintf(
					" Based on recent history (best 1RM: %d lbs), consider resetting TM to %d lbs if progress stalls.",
					int(estimated), int(suggested))
			} else {
				message += " Monitor your next cycle closely."
			}
			la.Recommendation = message
			la.Severity = SeverityWarning

		case reps >= minimum+5:
			la.Recommendation = fmt.Sprintf(
				"Excellent performance on %s! You hit %d reps on your %d+ set "+
					"(estimated 1RM: %d lbs). Your training max is well calibrated.",
				display, reps, minimum, int(thisWorkout1RM))
			la.Severity = SeverityInfo
		}
	}

	if len(la.FailedSets) > 0 && la.Severity != SeverityCritical {
		numbers := make([]string, 0, len(la.FailedSets))
		for _, failed := range la.FailedSets {
			numbers = append(numbers, fmt.Sprintf("Set %d", failed.SetNumber))
		}
		la.Recommendation = fmt.Sprintf(
			"You missed target reps on %s for %s. "+
				"Consider whether fatigue, form issues, or training max may be factors. "+
				"If this continues, reduce TM by 10%%.",
			strings.Join(numbers, ", "), display)
		la.Severity = SeverityWarning
	}
	return la, true, nil
}

func summarize(analysis Analysis) string {
	if analysis.OverallSuccess {
		for _, la := range analysis.Lifts {
			if la.Severity == SeverityInfo {
				return "Great workout! You hit all your targets and showed strong performance."
			}
		}
		return "Solid workout. All targets met."
	}

	var failed []lift.Lift
	for _, la := range analysis.Lifts {
		if !la.AllTargetsMet {
			failed = append(failed, la.Lift)
		}
	}
	if len(failed) == 1 {
		return fmt.Sprintf("Workout complete with some missed targets on %s.", failed[0].DisplayName())
	}
	return fmt.Sprintf(
		"Workout complete with missed targets on %d lifts. Review recommendations below.", len(failed))
}

// analyzeCycleFailures inspects the whole cycle's completed workouts. A
// single failing lift warrants a training-max adjustment; multiple failing
// lifts warrant a deload first.
func (s *Service) analyzeCycleFailures(ctx context.Context, programID string, cycle int) (*CycleAnalysis, error) {
	failed, err := s.repo.cycleFailedSets(ctx, programID, cycle)
	if err != nil {
		return nil, err
	}
	if len(failed) == 0 {
		return nil, nil
	}

	var lifts []lift.Lift
	var names []string
	for _, l := range lift.All {
		if _, ok := failed[l]; ok {
			lifts = append(lifts, l)
			names = append(names, l.DisplayName())
		}
	}

	if len(lifts) == 1 {
		return &CycleAnalysis{
			Action: CycleActionAdjustTrainingMax,
			Lifts:  lifts,
			Message: fmt.Sprintf(
				"You've missed %d working set target(s) for %s this cycle. "+
					"Consider reducing your training max by 10%% to ensure "+
					"continued progress and proper recovery.",
				failed[lifts[0]], names[0]),
		}, nil
	}
	return &CycleAnalysis{
		Action: CycleActionDeloadThenAdjust,
		Lifts:  lifts,
		Message: fmt.Sprintf(
			"You've missed targets on multiple lifts (%s) this cycle. "+
				"Consider taking a deload week, then reducing your training maxes "+
				"by 10%% across all affected lifts.",
			strings.Join(names, ", ")),
	}, nil
}

func pluralS(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func derefFloat(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
