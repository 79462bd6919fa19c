package errors

import (
	"errors"
	"fmt"
)

var ErrUnauthorized = errors.New("user is not authorized")
var ErrForbidden = errors.New("operation is forbidden for user")
var ErrNotFound = errors.New("entity not found")

// Booking state machine errors
var ErrPastTrip = errors.New("trip has already departed")
var ErrNoSeats = errors.New("no seats available")
var ErrAlreadyReturned = errors.New("ticket is already returned")

// Catalog mutation errors
var ErrTripLocked = errors.New("trip has ticket history and cannot be modified")
var ErrBusInUse = errors.New("bus is referenced by existing trips")

// ValidationError reports a malformed or missing input field. It is the only
// error in the taxonomy the caller can fix by correcting the request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError for a field.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// AsValidation returns the ValidationError if err is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
