package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation is returned when local input fails domain validation;
// no backend call is made in that case.
var ErrValidation = errors.New("invalid input")

// ErrNotFound indicates that the requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates a uniqueness or state conflict.
var ErrConflict = errors.New("conflict")

// ErrTerminalState is returned when a mutation targets an assignment
// that already reached delivered or cancelled.
var ErrTerminalState = errors.New("assignment in terminal state")

// ErrLocationPermissionDenied is returned when the location provider
// is not allowed to report a position.
var ErrLocationPermissionDenied = errors.New("location permission denied")

// ErrLocationUnavailable is returned when no position can be acquired.
var ErrLocationUnavailable = errors.New("location unavailable")

// PreconditionError reports an attempted delivered transition while
// required requirement flags are still unmet.
type PreconditionError struct {
	Missing []string
}

func (e *PreconditionError) Error() string {
	if len(e.Missing) == 0 {
		return "precondition failed"
	}
	return fmt.Sprintf("precondition failed: missing %s", strings.Join(e.Missing, ", "))
}

// BackendError carries a failed marketplace response. Message is the
// backend's {message} body passed through verbatim.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend error: status %d: %s", e.StatusCode, e.Message)
}

// Is makes a 404 BackendError match ErrNotFound.
func (e *BackendError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == 404
}
