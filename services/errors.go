package services

import (
	"errors"
	"fmt"

	"github.com/chillfilm/chillfilm-api/repositories"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeForbidden    ErrorType = "forbidden"
	ErrorTypeConflict     ErrorType = "conflict"
	ErrorTypeInternal     ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// Domain error variables

var (
	// Not Found Errors
	ErrMovieNotFound   = NewDomainError(ErrorTypeNotFound, "Movie not found", nil)
	ErrUserNotFound    = NewDomainError(ErrorTypeNotFound, "User not found", nil)
	ErrSettingNotFound = NewDomainError(ErrorTypeNotFound, "Setting not found", nil)

	// Validation Errors
	ErrInvalidInput     = NewDomainError(ErrorTypeValidation, "Invalid input", nil)
	ErrSearchTooShort   = NewDomainError(ErrorTypeValidation, "Search query must be at least 2 characters", nil)
	ErrInvalidMovieType = NewDomainError(ErrorTypeValidation, "Invalid movie type", nil)
	ErrUnknownRole      = NewDomainError(ErrorTypeValidation, "Invalid role", nil)
	ErrInvalidPeriod    = NewDomainError(ErrorTypeValidation, "Invalid ranking period", nil)

	// Authorization Errors
	ErrUnauthorized = NewDomainError(ErrorTypeUnauthorized, "unauthorized", nil)
	ErrForbidden    = NewDomainError(ErrorTypeForbidden, "access forbidden", nil)

	// Conflict Errors
	ErrDuplicateSlug = NewDomainError(ErrorTypeConflict, "A movie with this slug already exists", nil)

	// Internal Errors
	ErrInternal = NewDomainError(ErrorTypeInternal, "internal server error", nil)
)

// Error type checking helper functions

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return GetErrorType(err) == ErrorTypeNotFound
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return GetErrorType(err) == ErrorTypeValidation
}

// IsUnauthorizedError checks if an error is an unauthorized error
func IsUnauthorizedError(err error) bool {
	return GetErrorType(err) == ErrorTypeUnauthorized
}

// IsForbiddenError checks if an error is a forbidden error
func IsForbiddenError(err error) bool {
	return GetErrorType(err) == ErrorTypeForbidden
}

// IsConflictError checks if an error is a conflict error
func IsConflictError(err error) bool {
	return GetErrorType(err) == ErrorTypeConflict
}

// IsInternalError checks if an error is an internal error
func IsInternalError(err error) bool {
	return GetErrorType(err) == ErrorTypeInternal
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapError wraps an error with additional context
func WrapError(errType ErrorType, message string, err error) error {
	return NewDomainError(errType, message, err)
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}

// FromRepository translates a repository error. notFound is used for
// repositories.ErrNotFound and conflict for repositories.ErrDuplicate; anything
// else becomes an internal error carrying message.
func FromRepository(err error, notFound, conflict *DomainError, message string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, repositories.ErrNotFound) && notFound != nil:
		return NewDomainError(notFound.Type, notFound.Message, err)
	case errors.Is(err, repositories.ErrDuplicate) && conflict != nil:
		return NewDomainError(conflict.Type, conflict.Message, err)
	}
	return WrapInternal(message, err)
}
