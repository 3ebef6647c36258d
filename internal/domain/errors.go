package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the services wraps exactly one of these, so
// callers can branch with errors.Is.
var (
	// ErrValidation marks malformed input to create/update operations.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a reference to an unknown match, question or team.
	ErrNotFound = errors.New("not found")
	// ErrState marks an operation attempted against a match in an incompatible state.
	ErrState = errors.New("invalid match state")
	// ErrQuotaExceeded is returned when a team has no skips left.
	ErrQuotaExceeded = errors.New("skip quota exceeded")
	// ErrExhausted is not a failure: the filtered catalog has no unseen question left.
	ErrExhausted = errors.New("no questions remain")
)

var (
	ErrMatchNotFound    = fmt.Errorf("match %w", ErrNotFound)
	ErrQuestionNotFound = fmt.Errorf("question %w", ErrNotFound)
	ErrTeamNotFound     = fmt.Errorf("team %w", ErrNotFound)

	ErrMatchFinished    = fmt.Errorf("%w: match already finished", ErrState)
	ErrNoPendingDraw    = fmt.Errorf("%w: no question is awaiting an answer", ErrState)
	ErrDrawPending      = fmt.Errorf("%w: current question has not been answered or skipped", ErrState)
	ErrStaleSubmission  = fmt.Errorf("%w: question is not the active draw", ErrState)
	ErrSkipsUnavailable = fmt.Errorf("%w: skips are disabled for this match", ErrQuotaExceeded)
)

// Validationf builds an ErrValidation with a formatted detail.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
