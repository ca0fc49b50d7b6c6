/*
errors.go - Centralized error types for the payroll engine

PURPOSE:
  All error types in one place. Callers (the API, the stores) match them
  with errors.Is / errors.As and translate them to transport-level codes.

ERROR CATEGORIES:
  1. Input errors - bad month, bad date, unknown category, incomplete worker
  2. Access errors - edit capability missing, wrong password
  3. Lookup errors - worker not found

Amount parsing is deliberately NOT an error: an unparseable amount simply
contributes zero to the totals.

SEE ALSO:
  - api/handlers.go: maps these errors to HTTP status codes
*/
package payroll

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidMonth is returned when a reference month is outside January..December.
	ErrInvalidMonth = errors.New("invalid month")

	// ErrInvalidDate is returned when a date string is not a real YYYY-MM-DD day.
	ErrInvalidDate = errors.New("invalid date")

	// ErrWorkerNotFound is returned when a referenced worker doesn't exist.
	ErrWorkerNotFound = errors.New("worker not found")

	// ErrIncompleteWorker is returned when a worker is missing a required field.
	ErrIncompleteWorker = errors.New("please fill in all worker fields")

	// ErrEditNotAllowed is returned by mutations called without edit capability.
	// The mutation is not applied.
	ErrEditNotAllowed = errors.New("edit mode required")

	// ErrWrongPassword is returned by the access gate.
	ErrWrongPassword = errors.New("wrong password")

	// ErrUnknownCategory is returned when writing a line item outside the fixed set.
	ErrUnknownCategory = errors.New("unknown line item category")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError lists the worker fields that failed validation.
type ValidationError struct {
	Fields map[string]string // field name -> failed rule
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("%s: %s", ErrIncompleteWorker, strings.Join(names, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrIncompleteWorker
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidMonth) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrIncompleteWorker) ||
		errors.Is(err, ErrUnknownCategory)
}

// IsNotFound returns true if the error indicates a missing worker.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWorkerNotFound)
}

// IsForbidden returns true if the error came from the access gate.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrEditNotAllowed) || errors.Is(err, ErrWrongPassword)
}
