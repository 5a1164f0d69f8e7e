package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidRequest indicates the request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request")

	// ErrRateLimited indicates the upstream refused the request with 429
	ErrRateLimited = errors.New("rate limited")

	// ErrServerError indicates a server-side error
	ErrServerError = errors.New("server error")

	// ErrTimeout indicates the request timed out
	ErrTimeout = errors.New("request timed out")
)

// APIError represents a non-200 answer from transport.rest
type APIError struct {
	StatusCode int
	Status     string
	Endpoint   string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error %d (%s): %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error %d: %s (endpoint: %s)", e.StatusCode, e.Status, e.Endpoint)
}

// Is implements errors.Is for APIError
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrServerError:
		return e.StatusCode >= 500
	case ErrInvalidRequest:
		return e.StatusCode == http.StatusBadRequest
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// NewAPIError creates a new API error
func NewAPIError(statusCode int, status, endpoint string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Status:     status,
		Endpoint:   endpoint,
	}
}

// errorBody is the error document transport.rest sends along with 4xx/5xx
type errorBody struct {
	Message string `json:"message"`
}

// newAPIErrorFromBody builds an APIError, lifting the upstream message if
// the body carries one.
func newAPIErrorFromBody(statusCode int, status, endpoint string, body []byte) *APIError {
	e := NewAPIError(statusCode, status, endpoint)
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil {
		e.Message = eb.Message
	}
	return e
}

// StatusCode extracts the upstream status from err, or 0 if err did not
// come from an upstream answer.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// ValidationError represents a validation error for request parameters
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// ErrMissingField reports a required parameter that was left empty
func ErrMissingField(field string) error {
	return NewValidationError(field, "field is required")
}

// ErrInvalidValue reports a parameter outside its accepted range
func ErrInvalidValue(field string, value interface{}) error {
	return NewValidationError(field, fmt.Sprintf("invalid value: %v", value))
}
