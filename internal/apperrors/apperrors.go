// Package apperrors defines the error taxonomy shared by the store, session
// and admin layers.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCredential means no usable bearer token was available; the caller
	// must re-authenticate against the identity provider.
	ErrNoCredential = errors.New("no bearer credential")

	// ErrNotFound covers "nothing to act on": no matching entity, nothing to
	// duplicate.
	ErrNotFound = errors.New("not found")
)

// RemoteError is any non-success, non-"not found" outcome from the remote
// document store. A single failed attempt propagates immediately; retry policy
// belongs to the caller.
type RemoteError struct {
	Op     string
	Path   string
	Status int
	Err    error
}

func (e *RemoteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("graph %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("graph %s %s: http %d", e.Op, e.Path, e.Status)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// FieldError ties a validation failure to a document field.
type FieldError struct {
	Field string `json:"field"`
	Text  string `json:"error"`
}

// ValidationError aborts the attempted action and is surfaced to the user as a
// blocking notice.
type ValidationError struct {
	Msg    string       `json:"message"`
	Fields []FieldError `json:"fields,omitempty"`
}

func NewValidationError(msg string, fields ...FieldError) *ValidationError {
	return &ValidationError{Msg: msg, Fields: fields}
}

func (e *ValidationError) Error() string { return e.Msg }
