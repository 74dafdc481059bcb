package apperr

import (
	"errors"
	"net/http"
)

// Error codes returned to clients in the "code" field.
const (
	CodeMissingFields   = "missing_fields"
	CodeInvalidID       = "invalid_id"
	CodeInvalidBody     = "invalid_body"
	CodeSurveyNotFound  = "survey_not_found"
	CodeSurveyInactive  = "survey_inactive"
	CodeResponseMissing = "response_not_found"
	CodeNothingToUpdate = "nothing_to_update"
	CodeAddressMismatch = "address_mismatch"
	CodeUnauthorized    = "unauthorized"
	CodeInternal        = "internal_server_error"
)

type Error struct {
	code   string
	msg    string // shown to the caller
	debug  error  // logged only
	status int
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Code() string {
	return e.code
}

func (e *Error) Debug() error {
	return e.debug
}

func (e *Error) Unwrap() error {
	return e.debug
}

// Status returns the HTTP status, defaulting to 500.
func (e *Error) Status() int {
	if e.status == 0 {
		return http.StatusInternalServerError
	}
	return e.status
}

func (e *Error) WithDebug(err error) *Error {
	e.debug = err
	return e
}

func New(code string, msg string, status int) *Error {
	return &Error{code: code, msg: msg, status: status}
}

func Validation(code, msg string) *Error {
	return New(code, msg, http.StatusBadRequest)
}

func NotFound(code, msg string) *Error {
	return New(code, msg, http.StatusNotFound)
}

func Forbidden(code, msg string) *Error {
	return New(code, msg, http.StatusForbidden)
}

func Unauthorized(msg string) *Error {
	return New(CodeUnauthorized, msg, http.StatusUnauthorized)
}

// Internal wraps a store or infrastructure failure; the cause is never shown to the caller.
func Internal(err error) *Error {
	return New(CodeInternal, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError).WithDebug(err)
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// StatusOf returns the HTTP status an error maps to.
func StatusOf(err error) int {
	if e, ok := As(err); ok {
		return e.Status()
	}
	return http.StatusInternalServerError
}
