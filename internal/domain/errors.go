package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingPostalCode is a validation error: origin or destination is empty.
	ErrMissingPostalCode = errors.New("origin and destination postal codes are required")

	// ErrMalformedPostalCode is a validation error: a postal code is not five digits.
	ErrMalformedPostalCode = errors.New("postal code must be exactly 5 digits")

	// ErrUnknownPostalCode is returned when a well-formed postal code is not
	// present in the coordinate dataset. It is an expected, user-facing outcome.
	ErrUnknownPostalCode = errors.New("unknown postal code")

	// ErrCalculation replaces any unexpected fault raised while computing an
	// estimate. The underlying detail is logged, never returned to callers.
	ErrCalculation = errors.New("calculation error")
)

// DatasetLoadError reports that the postal-code dataset could not be read or
// parsed. It is fatal: without the dataset no estimate can be served.
type DatasetLoadError struct {
	Source string
	Err    error
}

func (e *DatasetLoadError) Error() string {
	return fmt.Sprintf("load postal code dataset %q: %v", e.Source, e.Err)
}

func (e *DatasetLoadError) Unwrap() error { return e.Err }

// IsValidationError reports whether err is a request validation failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingPostalCode) || errors.Is(err, ErrMalformedPostalCode)
}
