package domain

import "errors"

var (
	errBookingNotFound error = errors.New("Booking not found")
	errVillaNotFound   error = errors.New("Villa not found")
)

func ErrBookingNotFound() error {
	return errBookingNotFound
}

func ErrVillaNotFound() error {
	return errVillaNotFound
}

// ValidationError carries field-level detail for malformed input. It is
// never retried automatically.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// AvailabilityConflictError is surfaced distinctly from validation so the
// client can prompt for new dates.
type AvailabilityConflictError struct {
	Message string `json:"message"`
}

func (e *AvailabilityConflictError) Error() string {
	return e.Message
}

// StoreUnavailableError means the persistence layer could not answer.
// Availability checks fail closed on it.
type StoreUnavailableError struct {
	Inner error
}

func (e *StoreUnavailableError) Error() string {
	return "store unavailable: " + e.Inner.Error()
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Inner
}
