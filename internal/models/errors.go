package models

import "errors"

var (
	// ErrValidation is returned for malformed or missing required input.
	// The caller must fix the request; no state change occurred.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound is returned when a requested resource does not exist
	// (or has been deleted).
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized is returned when the caller is not a permitted actor
	// for the requested operation on this specific order.
	ErrUnauthorized = errors.New("not permitted")

	// ErrInvalidTransition is returned when the requested state change is
	// not a legal edge from the order's current status. Kept distinct from
	// ErrUnauthorized so clients can tell "you can't do this" apart from
	// "no one can do this right now".
	ErrInvalidTransition = errors.New("illegal status transition")

	// ErrInvalidState is returned when an operation's state precondition is
	// unmet without being a transition attempt (e.g. rating an order that
	// is not completed).
	ErrInvalidState = errors.New("order is not in the required status")

	// ErrConflict is returned when a conditional write loses a race with a
	// concurrent mutation of the same record.
	ErrConflict = errors.New("conflicting concurrent update")
)

// ErrorResponse is the JSON body returned for any failed request.
type ErrorResponse struct {
	Message string `json:"message"`
}
