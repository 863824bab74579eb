// Package apperrors defines the typed application errors that the HTTP
// boundary translates into status codes and JSON bodies. Only the fixed
// Message crosses the boundary; internal detail stays in logs.
package apperrors

import (
	"errors"
	"net/http"
)

type Error struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return e.Message }

func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

func Internal(message string) *Error {
	return New(http.StatusInternalServerError, message)
}

func ServiceUnavailable(message string) *Error {
	return New(http.StatusServiceUnavailable, message)
}

// StatusOf resolves the HTTP status for an arbitrary error, defaulting to 500.
func StatusOf(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
