package mediastream

import (
	"errors"
	"fmt"
)

// Error names reported by Error.Name. They follow the media capture
// DOMException names so callers can branch on them without type switches.
const (
	NameNotAllowed      = "NotAllowedError"
	NameNotFound        = "NotFoundError"
	NameNotReadable     = "NotReadableError"
	NameOverconstrained = "OverconstrainedError"
	NameAbort           = "AbortError"
)

var (
	ErrPermissionDenied = errors.New("screen capture permission denied")
	ErrNotFound         = errors.New("no capture source available")
	ErrNotReadable      = errors.New("capture source could not be read")
)

// ConstraintError reports a request option the provider could not satisfy.
type ConstraintError struct {
	Constraint string
	Message    string
}

func (e *ConstraintError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("constraint %q cannot be satisfied", e.Constraint)
	}
	return fmt.Sprintf("constraint %q cannot be satisfied: %s", e.Constraint, e.Message)
}

// Error is the normalized failure handed to callers when a capture provider
// declines or fails a request.
type Error struct {
	Name           string
	Message        string
	ConstraintName string
	Err            error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Name
	}
	return e.Name + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps a raw provider error in a new *Error. It never fails and
// never returns nil. An *Error input keeps its name and message.
func NewError(err error) *Error {
	if err == nil {
		return &Error{Name: NameAbort}
	}

	e := &Error{Name: NameAbort, Message: err.Error(), Err: err}

	if inner, ok := err.(*Error); ok {
		e.Name = inner.Name
		e.Message = inner.Message
		e.ConstraintName = inner.ConstraintName
		return e
	}

	var constraint *ConstraintError
	switch {
	case errors.As(err, &constraint):
		e.Name = NameOverconstrained
		e.ConstraintName = constraint.Constraint
	case errors.Is(err, ErrPermissionDenied):
		e.Name = NameNotAllowed
	case errors.Is(err, ErrNotFound):
		e.Name = NameNotFound
	case errors.Is(err, ErrNotReadable):
		e.Name = NameNotReadable
	}
	return e
}
