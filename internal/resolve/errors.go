package resolve

import (
	"fmt"

	"github.com/mj1618/botvision/internal/model"
)

// Error is the terminal failure of a resolution call.
//
// Reason is ResolutionFailed, Cancelled or InvalidInput. For ResolutionFailed,
// LastReason says what the final attempt ran into.
type Error struct {
	Reason     model.Reason
	LastReason model.Reason
	Attempts   int
	Cause      error
}

func (e *Error) Error() string {
	s := string(e.Reason)
	if e.LastReason != model.ReasonNone {
		s += fmt.Sprintf(" (%s)", e.LastReason)
	}
	s += fmt.Sprintf(" after %d attempt(s)", e.Attempts)
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error { return e.Cause }

// stageError is a per-attempt failure; it never leaves the package.
type stageError struct {
	reason model.Reason
	count  int
}

func (e *stageError) Error() string {
	return fmt.Sprintf("%s (%d candidates)", e.reason, e.count)
}
