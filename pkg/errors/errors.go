// Package errors maps pipeline failures to machine-readable codes for API
// clients.
//
// # Error Codes
//
//   - INVALID_*: the request names something that does not exist
//   - DATA_*: the survey file is missing or cannot be parsed
//   - TIMEOUT: rendering did not finish before the request deadline
//   - INTERNAL_ERROR: anything else
//
// # Usage
//
//	e := errors.Classify(err)
//	w.WriteHeader(e.Status())
//	json.NewEncoder(w).Encode(e)
package errors

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/matzehuels/surveyplot/pkg/chart"
	"github.com/matzehuels/surveyplot/pkg/survey"
)

// Code represents a machine-readable error code.
type Code string

const (
	ErrCodeInvalidFamily    Code = "INVALID_FAMILY"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidHighlight Code = "INVALID_HIGHLIGHT"

	ErrCodeDataNotFound Code = "DATA_NOT_FOUND"
	ErrCodeDataInvalid  Code = "DATA_INVALID"

	ErrCodeTimeout  Code = "TIMEOUT"
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"error"`
	Cause   error  `json:"-"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Status returns the HTTP status for the error's code.
func (e *Error) Status() int {
	switch e.Code {
	case ErrCodeInvalidFamily:
		return http.StatusNotFound
	case ErrCodeInvalidFormat, ErrCodeInvalidHighlight:
		return http.StatusBadRequest
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// New creates an Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error whose message is the cause's text.
func Wrap(code Code, cause error) *Error {
	return &Error{Code: code, Message: cause.Error(), Cause: cause}
}

// Is reports whether err has the given error code.
func Is(err error, code Code) bool {
	return GetCode(err) == code
}

// GetCode extracts the error code from an error, if available.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Classify returns err as an *Error, deriving the code from the sentinel
// errors of the chart and survey packages when err carries none.
func Classify(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	var code Code
	switch {
	case errors.Is(err, chart.ErrUnknownFamily):
		code = ErrCodeInvalidFamily
	case errors.Is(err, chart.ErrUnknownFormat):
		code = ErrCodeInvalidFormat
	case errors.Is(err, context.DeadlineExceeded):
		code = ErrCodeTimeout
	case errors.Is(err, fs.ErrNotExist):
		code = ErrCodeDataNotFound
	case errors.Is(err, survey.ErrMissingColumn),
		errors.Is(err, survey.ErrMalformed),
		errors.Is(err, survey.ErrInvalidRecord):
		code = ErrCodeDataInvalid
	default:
		code = ErrCodeInternal
	}
	return Wrap(code, err)
}
