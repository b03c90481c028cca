package core

import (
	"github.com/go-faster/errors"
)

// ErrValidation marks structurally invalid input: mismatched lengths, out-of-range
// indices or codes, unknown gates and attempts to invert a measurement.
var ErrValidation = errors.New("validation error")

func NewValidationError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrValidation, format, args...)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}
