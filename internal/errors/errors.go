package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnauthenticated is returned when a request carries no valid, active session token.
	ErrUnauthenticated = errors.New("please authenticate")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("unable to login")
	// ErrNotFound is returned when a resource is absent or not owned by the caller.
	ErrNotFound = errors.New("not found")
	// ErrUnsupportedMediaType is returned when an uploaded avatar is rejected.
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	// ErrEmailTaken is returned when an email already belongs to another user.
	ErrEmailTaken = errors.New("email is already in use")
)

// ValidationError describes rejected input. Allowed is set when the input
// contained keys outside the updatable field set.
type ValidationError struct {
	Message string
	Allowed []string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError wraps a validation failure message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// NewInvalidUpdatesError reports update keys outside the allowed set.
func NewInvalidUpdatesError(allowed []string) *ValidationError {
	return &ValidationError{Message: "Invalid Updates!", Allowed: allowed}
}

// MediaTypeError carries the reason an upload was rejected.
type MediaTypeError struct {
	Reason string
}

func (e *MediaTypeError) Error() string {
	return e.Reason
}

func (e *MediaTypeError) Unwrap() error {
	return ErrUnsupportedMediaType
}

// NewMediaTypeError creates an upload rejection with a client facing reason.
func NewMediaTypeError(format string, args ...any) *MediaTypeError {
	return &MediaTypeError{Reason: fmt.Sprintf(format, args...)}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error"`
}

// HTTPError represents an HTTP error with status code. A nil Body means the
// response is sent without content.
type HTTPError struct {
	StatusCode int
	Body       *ErrorResponse
}

func (e *HTTPError) Error() string {
	if e.Body == nil {
		return http.StatusText(e.StatusCode)
	}
	return e.Body.Error
}

// NewHTTPError creates a new HTTP error with an envelope body.
func NewHTTPError(statusCode int, message, errText string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Body: &ErrorResponse{
			Status:  "ERROR",
			Message: message,
			Error:   errText,
		},
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var validationErr *ValidationError
	var mediaErr *MediaTypeError

	switch {
	case errors.Is(err, ErrUnauthenticated):
		return &HTTPError{StatusCode: http.StatusUnauthorized}
	case errors.Is(err, ErrNotFound):
		return &HTTPError{StatusCode: http.StatusNotFound}
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusBadRequest, "", err.Error())
	case errors.Is(err, ErrEmailTaken):
		return NewHTTPError(http.StatusBadRequest, "", err.Error())
	case errors.As(err, &validationErr):
		message := ""
		if len(validationErr.Allowed) > 0 {
			message = "Allowed Updates: " + strings.Join(validationErr.Allowed, ",")
		}
		return NewHTTPError(http.StatusBadRequest, message, validationErr.Message)
	case errors.As(err, &mediaErr):
		return NewHTTPError(http.StatusBadRequest, "", mediaErr.Reason)
	default:
		return &HTTPError{StatusCode: http.StatusInternalServerError}
	}
}
