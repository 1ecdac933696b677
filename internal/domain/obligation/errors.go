package obligation

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrReferenceSpaceExhausted = errors.New("no free reference number left for today")
)

// ValidationError reports bad user input on a single field
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is matches on Field, an empty target Field matches any ValidationError
func (e ValidationError) Is(target error) bool {
	t, ok := target.(ValidationError)
	if !ok {
		return false
	}
	return t.Field == "" || t.Field == e.Field
}

// InvalidTransition reports an illegal status change
type InvalidTransition struct {
	From Status
	To   Status
}

func (e InvalidTransition) Error() string {
	return fmt.Sprintf("cannot move obligation from %s to %s", e.From, e.To)
}

// Is matches any InvalidTransition when the target is the zero value
func (e InvalidTransition) Is(target error) bool {
	t, ok := target.(InvalidTransition)
	if !ok {
		return false
	}
	if t.From == "" && t.To == "" {
		return true
	}
	return t.From == e.From && t.To == e.To
}

// ErrObligationNotFound indicates a missing obligation
type ErrObligationNotFound struct {
	ID uuid.UUID
}

func (e ErrObligationNotFound) Error() string {
	return "obligation not found: " + e.ID.String()
}

// Is implements the errors.Is interface for ErrObligationNotFound
func (e ErrObligationNotFound) Is(target error) bool {
	t, ok := target.(ErrObligationNotFound)
	if !ok {
		return false
	}
	// A nil target ID matches any ErrObligationNotFound
	if t.ID == uuid.Nil {
		return true
	}
	return e.ID == t.ID
}
