package workflow

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when a transition is attempted out of a
// terminal state. The operation is safely retryable after refreshing state.
var ErrInvalidTransition = errors.New("request accepts no further transitions")

// ErrNotReviewer is returned when the operator's role does not match the
// current stage's configured reviewer role.
var ErrNotReviewer = errors.New("operator is not the reviewer for this stage")

// ErrActionNotAllowed is returned when an operator dispatches an action their
// role is not eligible for.
var ErrActionNotAllowed = errors.New("action not available for this role")

// ValidationError reports a field-level validation failure. The request or
// record is never persisted in a partially valid state.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func required(field, value string) error {
	if value == "" {
		return &ValidationError{Field: field, Reason: "must not be empty"}
	}
	return nil
}
