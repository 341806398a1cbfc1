// Package kernel orchestrates a single learner session end to end:
// creation, next-question selection, answer submission with coupled
// IRT+BKT updates, and completion. It is the "session engine" of
// spec.md §4.4, grounded on pkg/services/session_service.go's
// validate-then-transact shape.
package kernel

import (
	"errors"
	"fmt"
)

// Error kinds from spec.md §7. The engine returns one of these (wrapped
// with context) for every failure other than a NumericError;
// api.mapKernelError maps them to HTTP status codes.
var (
	ErrInvalidArgument = errors.New("kernel: invalid argument")
	ErrNotFound        = errors.New("kernel: not found")
	ErrConflict        = errors.New("kernel: conflict")
	ErrInternal        = errors.New("kernel: internal error")
)

// ValidationError is an InvalidArgument carrying the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("kernel: invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidArgument
}

func newValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NumericError is an Internal-adjacent failure: a degenerate IRT/BKT
// denominator that validated parameters should never produce. The spec
// requires the operation to abort with no state change and be reported,
// not retried.
type NumericError struct {
	Op  string
	Err error
}

func (e *NumericError) Error() string {
	return fmt.Sprintf("kernel: numeric error in %s: %v", e.Op, e.Err)
}

func (e *NumericError) Unwrap() error {
	return e.Err
}
