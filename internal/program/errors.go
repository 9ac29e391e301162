package program

import "github.com/ironcycle/ironcycle/internal/errors"

var (
	// ErrNotFound signals a missing or foreign-owned program.
	ErrNotFound = errors.NewSentinel("program not found")
	// ErrConflict signals a precondition failure such as overlapping active
	// programs or a next cycle requested before its training maxes exist.
	ErrConflict = errors.NewSentinel("program conflict")
	// ErrValidation signals malformed input rejected before any mutation.
	ErrValidation = errors.NewSentinel("invalid program input")
	// ErrInvariant signals server-side state corruption, such as a missing
	// training-max row during cycle generation.
	ErrInvariant = errors.NewSentinel("program invariant violated")
)
