// Package shared contains common domain types and errors used across all
// domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation    = errors.New("validation error")
	ErrInvalidID     = errors.New("invalid ID")
	ErrInvalidInput  = errors.New("invalid input")
	ErrEmptyValue    = errors.New("value cannot be empty")
	ErrNegativeValue = errors.New("value cannot be negative")
	ErrInvalidFormat = errors.New("invalid format")

	// State errors
	ErrInvalidState = errors.New("invalid state")
	ErrExpired      = errors.New("expired")

	// Concurrency errors
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
	ErrRateLimited        = errors.New("rate limited")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "tracking", "insight", "goal"
	Op      string // Operation that failed, e.g., "Normalize", "Advance"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Tracking domain errors
var (
	// ErrMalformedRecord is returned when a raw log record carries a date or
	// timestamp that cannot be parsed. The ingestion boundary validates input
	// before it reaches the core, so hitting this is a bug upstream; the core
	// fails loudly instead of coercing.
	ErrMalformedRecord = NewDomainError("tracking", "Normalize", ErrInvalidFormat, "malformed record")

	ErrLogNotFound       = NewDomainError("tracking", "Find", ErrNotFound, "smoke log not found")
	ErrDuplicateLogDate  = NewDomainError("tracking", "Save", ErrAlreadyExists, "log already exists for this date")
	ErrNegativeCount     = NewDomainError("tracking", "Validate", ErrNegativeValue, "cigarette count cannot be negative")
	ErrNegativeSeconds   = NewDomainError("tracking", "Validate", ErrNegativeValue, "seconds focused cannot be negative")
	ErrNegativePoints    = NewDomainError("tracking", "Validate", ErrNegativeValue, "points earned cannot be negative")
	ErrEmptyUserID       = NewDomainError("tracking", "Validate", ErrEmptyValue, "user ID is required")
	ErrGoalStateNotFound = NewDomainError("tracking", "FindGoal", ErrNotFound, "goal state not found")
	ErrInvalidGoal       = NewDomainError("tracking", "Validate", ErrInvalidInput, "goal must be at least one day")
)

// Insight domain errors
var (
	ErrInvalidYear        = NewDomainError("insight", "Classify", ErrInvalidInput, "invalid calendar year")
	ErrUnknownStreakMode  = NewDomainError("insight", "Streak", ErrInvalidInput, "unknown streak mode")
	ErrGoalAdvanceSkipped = NewDomainError("insight", "Advance", ErrConcurrentModification, "goal already advanced by a competing request")
)

// External service errors
var (
	ErrCoachUnavailable     = NewDomainError("coach", "Request", ErrServiceUnavailable, "text-generation service is unavailable")
	ErrCoachTimeout         = NewDomainError("coach", "Request", ErrTimeout, "text-generation request timeout")
	ErrCoachInvalidResponse = NewDomainError("coach", "Parse", ErrInvalidFormat, "invalid response from text-generation service")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimited)
}

// IsRetryable checks if the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout)
}
