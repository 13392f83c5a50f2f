package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors shared by the service layers.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrInternal        = errors.New("internal error")
	ErrUnprocessable   = errors.New("unprocessable")
	ErrServiceUnavail  = errors.New("service unavailable")
	ErrTooManyVariants = errors.New("too many combinations")
)

// AppError is an error carrying a machine code and an HTTP status.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, Status: status, Err: err}
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return newAppError("NOT_FOUND", fmt.Sprintf("%s with id %s not found", resource, id), http.StatusNotFound, ErrNotFound)
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return newAppError("INVALID_INPUT", message, http.StatusBadRequest, ErrInvalidInput)
}

// Unprocessable creates a 422 error for well-formed input the catalog rejects.
func Unprocessable(message string, cause error) *AppError {
	if cause == nil {
		cause = ErrUnprocessable
	}
	return newAppError("UNPROCESSABLE", message, http.StatusUnprocessableEntity, cause)
}

// TooManyCombinations creates a 422 error when a selection would expand past
// the configured limit.
func TooManyCombinations(count, limit int) *AppError {
	return newAppError("TOO_MANY_COMBINATIONS",
		fmt.Sprintf("selection expands to %d combinations, limit is %d", count, limit),
		http.StatusUnprocessableEntity, ErrTooManyVariants)
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return newAppError("UNAUTHORIZED", message, http.StatusUnauthorized, ErrUnauthorized)
}

// Forbidden creates a 403 error.
func Forbidden(message string) *AppError {
	return newAppError("FORBIDDEN", message, http.StatusForbidden, ErrForbidden)
}

// Internal creates a 500 error hiding err from clients.
func Internal(err error) *AppError {
	return newAppError("INTERNAL_ERROR", "an internal error occurred", http.StatusInternalServerError, err)
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for err.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnprocessable), errors.Is(err, ErrTooManyVariants):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrServiceUnavail):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
