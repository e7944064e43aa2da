package state

import "fmt"

// NotFoundError indicates a reference to a player, card, or space that
// does not exist in the current state or data set.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// NewNotFoundError creates a NotFoundError for the given kind and id.
func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// InvalidPhaseError indicates an operation attempted outside the game
// phase that permits it.
type InvalidPhaseError struct {
	Operation string
	Phase     GamePhase
	Required  GamePhase
}

func (e *InvalidPhaseError) Error() string {
	return fmt.Sprintf("%s requires phase %s, game is in %s", e.Operation, e.Required, e.Phase)
}

// ValidationError indicates a malformed effect or a failed ownership,
// affordability, or structural check.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// NewValidationError creates a ValidationError with a formatted reason.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IncompleteTurnError indicates an end-turn attempt before the turn's
// required actions finished or while a choice is outstanding.
type IncompleteTurnError struct {
	Completed      int
	Required       int
	AwaitingChoice bool
}

func (e *IncompleteTurnError) Error() string {
	if e.AwaitingChoice {
		return "turn incomplete: a choice is awaiting resolution"
	}
	return fmt.Sprintf("turn incomplete: %d of %d required actions completed", e.Completed, e.Required)
}

// UnknownTypeError indicates an unrecognized effect, movement, or card
// type. Callers log it and treat the operation as a no-op; it is never
// fatal.
type UnknownTypeError struct {
	Kind  string
	Value string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown %s type: %q", e.Kind, e.Value)
}
