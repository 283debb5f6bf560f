// Package apperr defines the error kinds surfaced by the business
// layer. Handlers map them to HTTP statuses with errors.Is; storage
// and services wrap them with operation context via fmt.Errorf.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks a subscriber, pack, transaction or other
	// entity that could not be resolved.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks an operation rejected by current state, e.g.
	// adding a subscription while one is already active.
	ErrConflict = errors.New("conflict")
	// ErrValidation marks input rejected before any state change:
	// non-positive amounts, unknown types, out-of-bound refunds.
	ErrValidation = errors.New("validation failed")
)

// NotFound returns ErrNotFound annotated with the entity and its key.
func NotFound(entity, key string) error {
	return fmt.Errorf("%s %q: %w", entity, key, ErrNotFound)
}

// Conflict returns ErrConflict annotated with a reason.
func Conflict(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrConflict)
}

// Validation returns ErrValidation annotated with a reason.
func Validation(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrValidation)
}
