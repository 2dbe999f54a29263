package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable error codes returned to callers.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeAuthorization       = "AUTHORIZATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeAlreadyRated        = "ALREADY_RATED"
	CodeResourceUnavailable = "RESOURCE_UNAVAILABLE"
	CodePreconditionFailed  = "PRECONDITION_FAILED"
	CodeTimeout             = "TIMEOUT"
	CodeInternal            = "INTERNAL_ERROR"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// Common error constructors

// Validation creates a 400 error for missing or malformed input
func Validation(message string, err error) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     err,
	}
}

// Authorization creates a 403 error for a wrong role or wrong specific actor
func Authorization(message string, err error) *AppError {
	return &AppError{
		Code:    CodeAuthorization,
		Message: message,
		Status:  http.StatusForbidden,
		Err:     err,
	}
}

// NotFound creates a 404 error
func NotFound(message string, err error) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: message,
		Status:  http.StatusNotFound,
		Err:     err,
	}
}

// Conflict creates a 409 error for a violated state machine precondition
func Conflict(message string, err error) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
		Status:  http.StatusConflict,
		Err:     err,
	}
}

// AlreadyRated creates a 409 error for a second rating on the same ride
func AlreadyRated(message string, err error) *AppError {
	return &AppError{
		Code:    CodeAlreadyRated,
		Message: message,
		Status:  http.StatusConflict,
		Err:     err,
	}
}

// ResourceUnavailable creates a 409 error for a driver or vehicle lost to a
// concurrent assignment. A race outcome rather than a caller mistake, so
// callers may retry with a different resource.
func ResourceUnavailable(message string, err error) *AppError {
	return &AppError{
		Code:    CodeResourceUnavailable,
		Message: message,
		Status:  http.StatusConflict,
		Err:     err,
	}
}

// PreconditionFailed creates a 412 error
func PreconditionFailed(message string, err error) *AppError {
	return &AppError{
		Code:    CodePreconditionFailed,
		Message: message,
		Status:  http.StatusPreconditionFailed,
		Err:     err,
	}
}

// Timeout creates a 504 error for a persistence call that exceeded its bound
func Timeout(message string, err error) *AppError {
	return &AppError{
		Code:    CodeTimeout,
		Message: message,
		Status:  http.StatusGatewayTimeout,
		Err:     err,
	}
}

// Internal creates a 500 error
func Internal(message string, err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// IsCode reports whether err is an AppError carrying the given code
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetAppError attempts to convert an error to AppError
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	// Return generic internal error if not an AppError
	return Internal("An unexpected error occurred", err)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
