// Package apperr defines the error taxonomy shared by the appointment and
// escrow lifecycles. Handlers map these to HTTP status codes; services wrap
// them with context via fmt.Errorf and %w.
package apperr

import "fmt"

// ValidationError reports malformed or out-of-range input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError for a named field.
func Validation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// StateTransitionError reports a lifecycle action attempted from a state that
// does not permit it.
type StateTransitionError struct {
	Entity string
	From   string
	Action string
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("%s: cannot %s from state %q", e.Entity, e.Action, e.From)
}

// InvalidTransition builds a StateTransitionError.
func InvalidTransition(entity, from, action string) *StateTransitionError {
	return &StateTransitionError{Entity: entity, From: from, Action: action}
}

// NotFoundError reports an operation on an unknown entity id.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// NotFound builds a NotFoundError.
func NotFound(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}
