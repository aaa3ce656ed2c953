/**
 * @description
 * Application-level error taxonomy. Store-level sentinels (not found, state
 * conflict) are translated here into the errors the API layer maps onto
 * HTTP statuses.
 */
package app

import "errors"

// ErrInvalidStateTransition is returned when a ledger action is not legal
// from the subscription's current status, e.g. pausing an already paused
// subscription or resuming one that is not paused.
var ErrInvalidStateTransition = errors.New("invalid subscription state transition")

// ValidationError reports a missing or malformed required input field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return "missing or invalid required field: " + e.Field
}

func missingField(field string) error {
	return &ValidationError{Field: field}
}
