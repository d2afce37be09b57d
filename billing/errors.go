/*
errors.go - Centralized error types for the billing engine

PURPOSE:
  All engine error types in one place. Callers branch with errors.Is;
  structured errors carry context and unwrap to the sentinels.

ERROR CATEGORIES:
  1. Guard errors - Rejected adjustment mutations (expected, client-facing)
  2. Data errors  - Malformed records that indicate upstream corruption
  3. Lookup errors - Missing employees/items/sessions

EXPECTED VS LOUD:
  Empty date ranges, zero employees, and orphan records are not errors -
  the engine degrades to empty output. Malformed timestamps and prices ARE
  errors: they mean the record store handed us corrupt data.

SEE ALSO:
  - adjustments.go: Returns the guard errors
  - engine.go: Returns MalformedRecordError
*/
package billing

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrAdjustmentCeiling is returned when an increment would deduct more
	// snack units than the employee consumed in range. The mutation is
	// refused, never clamped, so callers can surface an explicit no-op.
	ErrAdjustmentCeiling = errors.New("adjustment exceeds consumed snack count")

	// ErrAdjustmentFloor is returned when a decrement would push today's
	// adjustment below zero. Only units added today can be removed today.
	ErrAdjustmentFloor = errors.New("no adjustment added today to remove")

	// ErrEmployeeNotFound is returned when an operation references an
	// employee missing from the roster snapshot.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrItemNotFound is returned when an entry references an unknown item.
	ErrItemNotFound = errors.New("item not found")

	// ErrSessionNotFound is returned when a session delete matches nothing.
	ErrSessionNotFound = errors.New("session not found")

	// ErrMalformedTimestamp is returned when a consumption timestamp cannot
	// be truncated to a calendar day. This indicates a data-integrity
	// problem upstream and fails the whole computation.
	ErrMalformedTimestamp = errors.New("malformed consumption timestamp")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// MalformedRecordError identifies the record that broke a computation.
type MalformedRecordError struct {
	ConsumptionID string
	Timestamp     string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("consumption %s has malformed timestamp %q", e.ConsumptionID, e.Timestamp)
}

func (e *MalformedRecordError) Unwrap() error { return ErrMalformedTimestamp }

// AdjustmentError reports a refused adjustment with the figures that
// triggered the guard.
type AdjustmentError struct {
	EmployeeID         EmployeeID
	Delta              int
	TotalDeductedCount int
	OriginalItemCount  int
	TodayCount         int
	guard              error
}

func (e *AdjustmentError) Error() string {
	return fmt.Sprintf("adjustment of %+d for %s refused: %v (deducted %d of %d, today %d)",
		e.Delta, e.EmployeeID, e.guard, e.TotalDeductedCount, e.OriginalItemCount, e.TodayCount)
}

func (e *AdjustmentError) Unwrap() error { return e.guard }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsGuardViolation returns true for refused adjustment mutations.
func IsGuardViolation(err error) bool {
	return errors.Is(err, ErrAdjustmentCeiling) || errors.Is(err, ErrAdjustmentFloor)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrSessionNotFound)
}
