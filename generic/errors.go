/*
errors.go - Centralized error types for the reconstruction engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The contract package and the stores wrap these with context via eris.

ERROR CATEGORIES:
  1. Input errors - Malformed dates, months, identifiers (caller's fault)
  2. Lookup errors - Change requests that do not exist
  3. Write errors - Baseline recaptures, events for unapproved requests

USAGE:
    if errors.Is(err, generic.ErrInvalidDate) {
        // 400 to the caller
    }

SEE ALSO:
  - contract/recorder.go: Raises write errors
  - api/handlers.go: Maps categories to HTTP status codes
*/
package generic

import (
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDate is returned for a date that is not YYYY-MM-DD.
	ErrInvalidDate = eris.New("invalid date")

	// ErrInvalidYearMonth is returned for a month that is not YYYY-MM.
	ErrInvalidYearMonth = eris.New("invalid year-month")

	// ErrInvalidID is returned for a non-positive or unparsable identifier.
	ErrInvalidID = eris.New("invalid identifier")

	// ErrInvalidRange is returned when a month range is reversed or too long.
	ErrInvalidRange = eris.New("invalid month range")

	// ErrInvalidEvent is returned when an event violates its action's invariants
	// (missing engineer id on REMOVE/MODIFY, unknown action, reversed dates).
	ErrInvalidEvent = eris.New("invalid event")

	// ErrChangeRequestNotFound is returned when a change request id is unknown.
	ErrChangeRequestNotFound = eris.New("change request not found")

	// ErrChangeRequestNotApproved is returned when events are recorded
	// against a change request that has not been approved.
	ErrChangeRequestNotApproved = eris.New("change request not approved")

	// ErrBaselineExists is returned when a contract's baseline was already captured.
	ErrBaselineExists = eris.New("baseline already captured")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports which input field was rejected and why.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %q is not valid (%v)", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidYearMonth) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrInvalidEvent)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrChangeRequestNotFound)
}

// IsConflict returns true if the write clashes with existing state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrBaselineExists) ||
		errors.Is(err, ErrChangeRequestNotApproved)
}
