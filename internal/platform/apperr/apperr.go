package apperr

import (
	"errors"
	"fmt"
	"log"
)

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeExpired         Code = "EXPIRED"
	CodeAlreadyReturned Code = "ALREADY_RETURNED"
	CodeInternal        Code = "INTERNAL"
)

// Error is the typed failure every engine operation returns.
// Fields carries per-field validation messages keyed by field name.
type Error struct {
	Code    Code
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches on Code so sentinel comparisons work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Message == "" && t.Code == e.Code
}

var (
	ErrInvalid         = &Error{Code: CodeInvalidArgument}
	ErrNotFound        = &Error{Code: CodeNotFound}
	ErrConflict        = &Error{Code: CodeConflict}
	ErrExpired         = &Error{Code: CodeExpired}
	ErrAlreadyReturned = &Error{Code: CodeAlreadyReturned}
	ErrInternal        = &Error{Code: CodeInternal}
)

func Invalid(msg string) error  { return &Error{Code: CodeInvalidArgument, Message: msg} }
func NotFound(msg string) error { return &Error{Code: CodeNotFound, Message: msg} }
func Conflict(msg string) error { return &Error{Code: CodeConflict, Message: msg} }
func Expired(msg string) error  { return &Error{Code: CodeExpired, Message: msg} }
func Internal(msg string) error { return &Error{Code: CodeInternal, Message: msg} }

func AlreadyReturned(msg string) error {
	return &Error{Code: CodeAlreadyReturned, Message: msg}
}

// InvalidFields builds a validation error carrying one message per offending field.
func InvalidFields(fields map[string]string) error {
	return &Error{Code: CodeInvalidArgument, Message: "validation failed", Fields: fields}
}

// CodeOf returns the Code of err, or CodeInternal for untyped errors.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// ExitCode maps an error to the process exit status used by the console.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch CodeOf(err) {
	case CodeInvalidArgument:
		return 2
	case CodeNotFound:
		return 3
	case CodeConflict:
		return 4
	case CodeExpired:
		return 5
	case CodeAlreadyReturned:
		return 6
	default:
		return 1
	}
}

// Wrap passes typed errors through and replaces anything else with an
// INTERNAL error, logging the underlying error under op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if CodeOf(err) != CodeInternal {
		return err
	}
	log.Printf("[ERROR] %s: %v", op, err)
	return Internal(op + " failed")
}
