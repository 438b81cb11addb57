package errs

import (
	"errors"
	"fmt"
)

// Sentinel error kinds surfaced by the messaging core. Handlers map these to
// HTTP statuses; anything else is treated as a storage failure and logged
// without leaking detail to the caller.
var (
	// ErrForbidden covers both "not an active member" and "conversation does
	// not exist" so membership checks never leak existence.
	ErrForbidden = errors.New("forbidden")
	ErrNotFound  = errors.New("not found")
	ErrStorage   = errors.New("storage failure")
)

// ValidationError reports a missing or malformed required field. Detected
// before any mutation; short-circuits the operation.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validation builds a ValidationError with a formatted message.
func Validation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Storage wraps a persistence-layer error so callers can classify it with
// errors.Is(err, ErrStorage) while logs keep the underlying cause.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrStorage, err)
}
