package models

import (
	"errors"
	"fmt"
)

// Error codes carried by AppError.
const (
	CodeNotFound            = "NOT_FOUND"
	CodeAlreadyAdmitted     = "ALREADY_ADMITTED"
	CodeValidation          = "VALIDATION_ERROR"
	CodeConstraintViolation = "CONSTRAINT_VIOLATION"
	CodeTransient           = "TRANSIENT_STORE_FAILURE"
	CodeInternal            = "INTERNAL_ERROR"
)

// AppError represents a classified application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError reports that resource with the given id does not resolve.
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

// NewAlreadyAdmittedError reports a second admission of the same comment.
func NewAlreadyAdmittedError(commentID uint) *AppError {
	return &AppError{
		Code:    CodeAlreadyAdmitted,
		Message: fmt.Sprintf("Comment with ID %d is already admitted", commentID),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewConstraintViolationError wraps a write the store rejected.
func NewConstraintViolationError(err error) *AppError {
	return &AppError{
		Code:    CodeConstraintViolation,
		Message: "Store rejected the write",
		Err:     err,
	}
}

// NewTransientError wraps a connectivity or timeout failure. Callers may retry.
func NewTransientError(err error) *AppError {
	return &AppError{
		Code:    CodeTransient,
		Message: "Store temporarily unavailable",
		Err:     err,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// ErrorCode returns the AppError code found in err's chain, or "" if none.
func ErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsNotFound checks if an error is a "not found" error
func IsNotFound(err error) bool {
	return ErrorCode(err) == CodeNotFound
}

// IsAlreadyAdmitted checks if an error is a double-admission error
func IsAlreadyAdmitted(err error) bool {
	return ErrorCode(err) == CodeAlreadyAdmitted
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return ErrorCode(err) == CodeValidation
}

// IsConstraintViolation checks if the store rejected a write
func IsConstraintViolation(err error) bool {
	return ErrorCode(err) == CodeConstraintViolation
}

// IsTransient checks if an error is safe to retry
func IsTransient(err error) bool {
	return ErrorCode(err) == CodeTransient
}
