package utils

import (
	"fmt"
	"net/http"
)

// AppError is an error that knows how it is reported to API clients.
type AppError struct {
	Status  int
	Code    string
	Message string
	Details interface{}
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(status int, code, message string) *AppError {
	return &AppError{Status: status, Code: code, Message: message}
}

// WithDetails returns a copy of e carrying details, leaving the sentinel
// untouched.
func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// Is matches on code so that copies made by WithDetails still satisfy
// errors.Is against the sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

var (
	ErrUnauthorized          = NewAppError(http.StatusUnauthorized, "UNAUTHORIZED", "Not authenticated")
	ErrInvalidCredentials    = NewAppError(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
	ErrForbidden             = NewAppError(http.StatusForbidden, "FORBIDDEN", "Admin access required")
	ErrNotFound              = NewAppError(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrValidationFailed      = NewAppError(http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed")
	ErrUsernameTaken         = NewAppError(http.StatusConflict, "USERNAME_TAKEN", "Username already exists")
	ErrEmailTaken            = NewAppError(http.StatusConflict, "EMAIL_TAKEN", "Email already exists")
	ErrConflict              = NewAppError(http.StatusConflict, "CONFLICT", "Resource already exists")
	ErrInvalidOrExpiredToken = NewAppError(http.StatusBadRequest, "INVALID_OR_EXPIRED_TOKEN", "Invalid or expired reset token")
	ErrInvalidOldPassword    = NewAppError(http.StatusUnauthorized, "INVALID_OLD_PASSWORD", "Invalid old password")

	ErrExerciseNotFound = NewAppError(http.StatusNotFound, "EXERCISE_NOT_FOUND", "Exercise not found")
	ErrExerciseLocked   = NewAppError(http.StatusForbidden, "EXERCISE_LOCKED", "Complete the previous exercise first")
	ErrOrderTaken       = NewAppError(http.StatusConflict, "ORDER_TAKEN", "An exercise with this order already exists")
	ErrProgressNotFound = NewAppError(http.StatusNotFound, "PROGRESS_NOT_FOUND", "Progress record not found")
	ErrUserNotFound     = NewAppError(http.StatusNotFound, "USER_NOT_FOUND", "User not found")
)

// Internal wraps an unexpected failure. The message shown to clients stays
// generic.
func Internal(message string, err error) *AppError {
	return &AppError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
		Err:     err,
	}
}

func ValidationFailed(details interface{}) *AppError {
	return ErrValidationFailed.WithDetails(details)
}

func BadRequestError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, ErrValidationFailed.Code, message)
}
