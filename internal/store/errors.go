package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// ErrorCode categorizes store errors.
type ErrorCode string

const (
	// ErrCodeStoreInit indicates the database could not be opened or carries
	// a schema version this build does not understand.
	ErrCodeStoreInit ErrorCode = "STORE_INIT"

	// ErrCodeConstraint indicates a write violated a schema constraint,
	// usually a reference to a missing session or concept.
	ErrCodeConstraint ErrorCode = "CONSTRAINT"

	// ErrCodeNotFound indicates an update referenced a missing row.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Error is returned by store operations that fail in a way callers may
// want to tell apart. The driver error, if any, is kept in Err.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsStoreInit reports whether err is an initialization failure.
// Uses errors.As to handle wrapped errors.
func IsStoreInit(err error) bool {
	return hasCode(err, ErrCodeStoreInit)
}

// IsConstraint reports whether err is a constraint violation.
func IsConstraint(err error) bool {
	return hasCode(err, ErrCodeConstraint)
}

// IsNotFound reports whether err references a missing row.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// CodeOf returns the store error code carried by err, or "".
func CodeOf(err error) ErrorCode {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

func hasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

func initError(message string, err error) *Error {
	return &Error{Code: ErrCodeStoreInit, Op: "open store", Message: message, Err: err}
}

func notFound(op, what string, id any) *Error {
	return &Error{Code: ErrCodeNotFound, Op: op, Message: fmt.Sprintf("%s %v not found", what, id)}
}

// classify converts a driver error from a write into the store taxonomy.
// Errors that are neither constraint violations nor missing rows are
// wrapped with op and returned as is.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &Error{Code: ErrCodeNotFound, Op: op, Message: "no matching row", Err: err}
	}
	if isConstraintViolation(err) {
		return &Error{Code: ErrCodeConstraint, Op: op, Message: "constraint violated", Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isConstraintViolation recognizes SQLITE_CONSTRAINT from either driver.
// The cgo driver is matched by message because its error type only
// exists in cgo builds.
func isConstraintViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code()&0xff == sqlitelib.SQLITE_CONSTRAINT
	}
	return strings.Contains(err.Error(), "constraint failed")
}
