package common

import (
	"errors"
	"net/http"
)

// StatusError attaches an HTTP-style status code to an error. The wrapped
// error is usually one of the sentinels above, possibly with added context.
type StatusError struct {
	Code int
	Err  error
}

// NewStatusError wraps err with the given status code.
func NewStatusError(code int, err error) *StatusError {
	return &StatusError{Code: code, Err: err}
}

func (e *StatusError) Error() string {
	return e.Err.Error()
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// StatusCode returns the status code carried by err, or 500 when err carries
// none. A nil error yields 200.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return http.StatusInternalServerError
}
