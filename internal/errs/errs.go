package errs

import (
	"errors"
	"net/http"
)

// Args are the named arguments substituted into a message.
type Args map[string]interface{}

// FieldError describes a single invalid input field.
type FieldError struct {
	Field string
	Key   string
	Args  Args
}

type Error struct {
	Status int
	Key    string
	Args   Args
	Fields []FieldError
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Key + ": " + e.Err.Error()
	}

	return e.Key
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors with the same status and key.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.Status == t.Status && e.Key == t.Key
}

// Wrap returns a copy of e carrying err as the cause.
func (e *Error) Wrap(err error) *Error {
	c := *e
	c.Err = err

	return &c
}

func New(status int, key string, args Args) *Error {
	return &Error{Status: status, Key: key, Args: args}
}

func BadRequest(key string, args Args) *Error {
	return New(http.StatusBadRequest, key, args)
}

func Unauthorized(key string, args Args) *Error {
	return New(http.StatusUnauthorized, key, args)
}

func Forbidden(key string, args Args) *Error {
	return New(http.StatusForbidden, key, args)
}

func NotFound(key string, args Args) *Error {
	return New(http.StatusNotFound, key, args)
}

func Conflict(key string, args Args) *Error {
	return New(http.StatusConflict, key, args)
}

// Validation is a 400 error listing every offending field.
func Validation(fields []FieldError) *Error {
	return &Error{Status: http.StatusBadRequest, Key: "common.validation_failed", Fields: fields}
}

// Internal hides err behind a generic message.
func Internal(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Key: "common.internal_error", Err: err}
}

// Invalid turns a request decoding failure into a 400 unless it already is
// an application error.
func Invalid(err error) *Error {
	if e, ok := As(err); ok {
		return e
	}

	return &Error{Status: http.StatusBadRequest, Key: "common.invalid_body", Err: err}
}

// As extracts the application error from err.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}

	return nil, false
}

// StatusOf returns the HTTP status for err, 500 for unknown errors.
func StatusOf(err error) int {
	if e, ok := As(err); ok {
		return e.Status
	}

	return http.StatusInternalServerError
}
