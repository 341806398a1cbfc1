package irt

import "errors"

// ErrNumeric is returned when a computation hits a degenerate
// denominator that validated inputs should never produce.
var ErrNumeric = errors.New("irt: degenerate numeric result")

// NumericError wraps ErrNumeric with the operation that failed.
type NumericError struct {
	Op string
}

func (e *NumericError) Error() string {
	return "irt: numeric error in " + e.Op
}

func (e *NumericError) Unwrap() error {
	return ErrNumeric
}
