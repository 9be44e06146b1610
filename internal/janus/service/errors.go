package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BrandonDHaskell/Janus/server/internal/janus/store"
)

// Error kinds. Every error a service returns for a client mistake wraps
// exactly one of these; anything else is an internal failure.
var (
	ErrValidation   = errors.New("validation_error")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not_found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadge        = errors.New("badge_error")
)

// FieldError carries a kind, the offending field (if any) and a message
// fit for the client.
type FieldError struct {
	Kind    error
	Field   string
	Message string
	Err     error
}

func (e *FieldError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *FieldError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func invalid(field, msg string) error {
	return &FieldError{Kind: ErrValidation, Field: field, Message: msg}
}

func notFound(what string) error {
	return &FieldError{Kind: ErrNotFound, Message: what + " not found."}
}

func unauthorized(msg string) error {
	return &FieldError{Kind: ErrUnauthorized, Message: msg}
}

// conflictMessages maps (entity, store field) to the client message.
var conflictMessages = map[string]map[string]string{
	"visitor": {
		store.FieldEmail:     "visitor with this visitor email already exists.",
		store.FieldMobile:    "visitor with this visitor mobile already exists.",
		store.FieldVisitCode: "visitor with this visit code already exists.",
	},
	"user": {
		store.FieldEmail:  "user with this email already exists.",
		store.FieldMobile: "user with this mobile already exists.",
	},
	"turnstile": {
		store.FieldExitTime: "This turnstile entry is already closed.",
	},
	"department": {store.FieldName: "department with this department name already exists."},
	"role":       {store.FieldName: "role with this role name already exists."},
	"designation": {
		store.FieldName: "designation with this designation name already exists.",
	},
}

// fromStore translates store errors for entity into service errors and
// passes anything else through unchanged.
func fromStore(entity string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return &FieldError{Kind: ErrNotFound, Message: capitalize(entity) + " not found.", Err: err}
	}
	if field, ok := store.ConflictField(err); ok {
		msg := conflictMessages[entity][field]
		if msg == "" {
			msg = fmt.Sprintf("%s with this %s already exists.", entity, field)
		}
		return &FieldError{Kind: ErrConflict, Field: field, Message: msg, Err: err}
	}
	return err
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
