package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the addressed row does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is the errors.Is target for every *ConflictError.
var ErrConflict = errors.New("conflict")

// Field names reported by ConflictError.
const (
	FieldEmail      = "email"
	FieldMobile     = "mobile"
	FieldVisitCode  = "visit_code"
	FieldExitTime   = "exit_time"
	FieldName       = "name"
	FieldAssignment = "assignment"
)

// ConflictError reports a unique-constraint violation (or an equivalent
// state conflict) on a single field.
type ConflictError struct {
	Field string
	Err   error // underlying driver error, if any
}

func (e *ConflictError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("conflict on %s: %v", e.Field, e.Err)
	}
	return "conflict on " + e.Field
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

func (e *ConflictError) Unwrap() error { return e.Err }

// ConflictField returns the conflicting field when err is a ConflictError.
func ConflictField(err error) (string, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce.Field, true
	}
	return "", false
}
