package core

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrGroupNotFound signals that a referenced group does not exist in the
// directory. It is distinct from an authorization denial.
var ErrGroupNotFound = errors.New("group not found")

// ErrMissingActingUser signals that the acting user's email could not be
// determined. This is an input error, not an authorization failure.
var ErrMissingActingUser = errors.New("acting user email is missing")

// APIError is a failed call to a coded backend (directory, generative,
// document store, mail). Callers branch on the status code.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

func NewAPIError(statusCode int, message string) *APIError {
	return &APIError{StatusCode: statusCode, Message: message}
}

// StatusCode extracts the backend status code from an error chain, or 0 if
// the error is not an APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

func IsConflict(err error) bool {
	return StatusCode(err) == http.StatusConflict
}

func IsBadRequest(err error) bool {
	return StatusCode(err) == http.StatusBadRequest
}

func IsForbidden(err error) bool {
	return StatusCode(err) == http.StatusForbidden
}
