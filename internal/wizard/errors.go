package wizard

import (
	"errors"
	"fmt"
)

var ErrSessionNotFound = errors.New("session not found")

// ValidationError rejects an action that breaks a wizard rule. It maps to a
// 400 at the HTTP boundary.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func invalidf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ConflictError rejects an action the current session state does not allow,
// typically something the console must confirm or retry. Maps to a 409.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

func conflictf(format string, args ...any) error {
	return &ConflictError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError addresses a table, relationship or aggregation that is not
// in the session. Maps to a 404.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}
