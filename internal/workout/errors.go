package workout

import "github.com/ironcycle/ironcycle/internal/errors"

var (
	// ErrNotFound signals a missing or foreign-owned workout.
	ErrNotFound = errors.NewSentinel("workout not found")
	// ErrConflict signals a state precondition failure, such as completing
	// or skipping a workout already in a terminal state.
	ErrConflict = errors.NewSentinel("workout conflict")
	// ErrValidation signals malformed input rejected before any mutation.
	ErrValidation = errors.NewSentinel("invalid workout input")
	// ErrInvariant signals server-side state corruption, such as a logged
	// set referencing a lift the workout does not schedule.
	ErrInvariant = errors.NewSentinel("workout invariant violated")
)
