package workout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ironcycle/ironcycle/internal/errors"
)

// rescheduleWindowDays is how long a missed workout stays a sensible
// reschedule candidate. Beyond it the report advises skipping instead.
const rescheduleWindowDays = 14

// Missed lists the user's scheduled workouts whose dates have passed,
// oldest first, along with the user's handling preference.
func (s *Service) Missed(ctx context.Context, userID string) (MissedReport, error) {
	settings, err := s.repo.userSettings(ctx, userID)
	if err != nil {
		return MissedReport{}, fmt.Errorf("load user settings: %w", err)
	}

	today := dateOnly(s.now().UTC())
	workouts, err := s.repo.listMissed(ctx, userID, today)
	if err != nil {
		return MissedReport{}, fmt.Errorf("list missed workouts: %w", err)
	}

	report := MissedReport{Preference: settings.missedPreference}
	for _, w := range workouts {
		overdue := int(today.Sub(w.ScheduledDate).Hours() / 24)
		report.Workouts = append(report.Workouts, MissedWorkout{
			Workout:       w,
			DaysOverdue:   overdue,
			CanReschedule: overdue <= rescheduleWindowDays,
		})
	}
	return report, nil
}

// HandleMissed skips or reschedules one missed workout. Rescheduling shifts
// every later scheduled workout of the program by the same number of days so
// the plan's spacing survives. The target date defaults to today and must
// not lie in the past.
func (s *Service) HandleMissed(
	ctx context.Context,
	userID, id, action string,
	rescheduleTo *time.Time,
) (HandleResult, error) {
	w, err := s.repo.get(ctx, userID, id)
	if err != nil {
		return HandleResult{}, fmt.Errorf("get workout: %w", err)
	}
	if w.Status.Terminal() {
		return HandleResult{}, fmt.Errorf("%w: workout is already %s", ErrConflict, w.Status)
	}
	if w.Status != StatusScheduled {
		return HandleResult{}, fmt.Errorf("%w: workout is not in scheduled status", ErrValidation)
	}

	today := dateOnly(s.now().UTC())
	if !w.ScheduledDate.Before(today) {
		return HandleResult{}, fmt.Errorf(
			"%w: workout is not missed (scheduled for today or future)", ErrValidation)
	}

	switch action {
	case ActionSkip:
		if err = s.repo.updateStatus(ctx, id, StatusSkipped); err != nil {
			return HandleResult{}, fmt.Errorf("skip workout: %w", err)
		}
		w.Status = StatusSkipped
		s.logger.LogAttrs(ctx, slog.LevelInfo, "missed workout skipped",
			slog.String("workout_id", w.ID))
		return HandleResult{Workout: w, Action: "skipped"}, nil

	case ActionReschedule:
		target := today
		if rescheduleTo != nil {
			target = dateOnly(rescheduleTo.UTC())
		}
		if target.Before(today) {
			return HandleResult{}, fmt.Errorf("%w: cannot reschedule to a past date", ErrValidation)
		}

		shiftDays := int(target.Sub(w.ScheduledDate).Hours() / 24)
		shifted, err := s.repo.shiftScheduledFrom(ctx, w.ProgramID, w.ScheduledDate, shiftDays)
		if err != nil {
			return HandleResult{}, fmt.Errorf("reschedule workouts: %w", err)
		}
		w.ScheduledDate = target
		s.logger.LogAttrs(ctx, slog.LevelInfo, "missed workout rescheduled",
			slog.String("workout_id", w.ID),
			slog.Int("shift_days", shiftDays),
			slog.Int("workouts_shifted", shifted))
		return HandleResult{Workout: w, Action: "rescheduled", Rescheduled: shifted}, nil
	}
	return HandleResult{}, fmt.Errorf(
		"%w: invalid action %q, must be 'skip' or 'reschedule'", ErrValidation, action)
}

// AutoHandleMissed applies the user's stored preference to every missed
// workout. An 'ask' preference handles nothing. Rescheduling the oldest
// missed workout can pull later ones back onto the calendar, so those are
// silently left alone.
func (s *Service) AutoHandleMissed(ctx context.Context, userID string) ([]HandleResult, error) {
	settings, err := s.repo.userSettings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user settings: %w", err)
	}
	if settings.missedPreference == PreferenceAsk {
		return nil, nil
	}

	report, err := s.Missed(ctx, userID)
	if err != nil {
		return nil, err
	}

	var results []HandleResult
	for _, missed := range report.Workouts {
		result, err := s.HandleMissed(ctx, userID, missed.Workout.ID, settings.missedPreference, nil)
		if errors.Is(err, ErrValidation) {
			continue
		}
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}
