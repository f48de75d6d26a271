package ingest

import (
	"errors"
	"fmt"
)

// MalformedEventError reports a payload that could not be decoded: bad
// JSON, an unknown kind, or a missing or mistyped field.
type MalformedEventError struct {
	// Kind is the payload's kind field, if one could be read.
	Kind string

	// Reason is a human-readable description.
	Reason string

	// Err is the underlying decode or validation error, if any.
	Err error
}

// Error implements the error interface.
func (e *MalformedEventError) Error() string {
	msg := "malformed event"
	if e.Kind != "" {
		msg += fmt.Sprintf(" (kind=%s)", e.Kind)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *MalformedEventError) Unwrap() error {
	return e.Err
}

// IsMalformed reports whether err is a MalformedEventError.
// Uses errors.As to handle wrapped errors.
func IsMalformed(err error) bool {
	var me *MalformedEventError
	return errors.As(err, &me)
}

func malformed(kind, reason string, err error) *MalformedEventError {
	return &MalformedEventError{Kind: kind, Reason: reason, Err: err}
}
