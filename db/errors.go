package db

import "errors"

// Typed repository errors, matched with errors.Is / errors.As at the API
// boundary and translated to a single JSON error response.
var (
	ErrNotFound              = errors.New("not found")
	ErrCapacityExceeded      = errors.New("maximum attendance reached")
	ErrDuplicateRegistration = errors.New("user already registered for this event")
	ErrTicketAlreadyUsed     = errors.New("ticket has already been used")
)

// ValidationError carries the human-readable reason a write was rejected.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError with the given message.
func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
