/*
errors.go - Centralized error types for the booking engine

PURPOSE:
  All engine error types in one place. Callers (service layer, HTTP
  handlers) classify errors with errors.Is and the helpers below.

ERROR CATEGORIES:
  1. Invalid input  - Malformed facts or recurrence parameters; caller bug,
                      rejected immediately, never coerced.
  2. Capacity       - A date/slot with nothing remaining. This is a normal,
                      expected outcome, surfaced as "unavailable".
  3. Race lost      - The store rejected a write because capacity was
                      consumed concurrently. The caller must recompute
                      availability, never retry the same slot blindly.

  Missing settings are deliberately NOT an error category: every setting has
  a documented default and lookup falls back silently (see settings.go).

USAGE:
  if errors.Is(err, engine.ErrCapacityExhausted) {
      // render "slot unavailable", not a 500
  }
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInput is returned for malformed property facts or booking
	// parameters. Indicates a caller bug upstream.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingPreferredDay is returned when a recurring frequency has no
	// preferred day of week. Generating jobs on the wrong day is a
	// business-visible error, so this is never silently defaulted.
	ErrMissingPreferredDay = errors.New("recurring frequency requires a preferred day of week")

	// ErrOnetimeRecurrence is returned when occurrence generation is invoked
	// for a onetime frequency. Callers must gate this before the call.
	ErrOnetimeRecurrence = errors.New("onetime frequency has no recurrence")

	// ErrCapacityExhausted is returned when a requested date/slot has no
	// remaining capacity.
	ErrCapacityExhausted = errors.New("no capacity remaining for slot")

	// ErrRaceLost is returned when a booking write was rejected because the
	// last slot unit was claimed concurrently.
	ErrRaceLost = errors.New("slot claimed concurrently")

	// ErrOutsideWindow is returned when the requested date falls outside the
	// bookable window.
	ErrOutsideWindow = errors.New("date outside bookable window")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidInputError identifies which field was malformed and why.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// SlotUnavailableError reports the capacity state that made a slot
// unbookable.
type SlotUnavailableError struct {
	Date     Date
	Slot     Slot
	Capacity int
	Booked   int
}

func (e *SlotUnavailableError) Error() string {
	return fmt.Sprintf("slot unavailable: %s %s (capacity %d, booked %d)",
		e.Date, e.Slot, e.Capacity, e.Booked)
}

func (e *SlotUnavailableError) Unwrap() error { return ErrCapacityExhausted }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrMissingPreferredDay) ||
		errors.Is(err, ErrOnetimeRecurrence) ||
		errors.Is(err, ErrOutsideWindow)
}

// IsUnavailable returns true if the error means "pick another slot" rather
// than "something broke".
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrCapacityExhausted) || errors.Is(err, ErrRaceLost)
}
