// Package errors defines coded errors for the wizard API surface.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific error type for wizard operations.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeValidation indicates stage input that fails the minimum
	// requirements of the stage definition.
	ErrCodeValidation ErrorCode = "VALIDATION_FAILED"
	// ErrCodeSessionNotFound indicates the session does not exist.
	ErrCodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"
	// ErrCodeStageNotFound indicates an unknown stage identifier.
	ErrCodeStageNotFound ErrorCode = "STAGE_NOT_FOUND"
	// ErrCodeCustomerNotFound indicates the customer record does not exist.
	ErrCodeCustomerNotFound ErrorCode = "CUSTOMER_NOT_FOUND"
	// ErrCodeAccessDenied indicates the access gate blocked the request.
	ErrCodeAccessDenied ErrorCode = "ACCESS_DENIED"
	// ErrCodeGenerationFailed indicates the model produced no usable artifact.
	ErrCodeGenerationFailed ErrorCode = "GENERATION_FAILED"
	// ErrCodeRateLimitExceeded indicates rate limit has been exceeded.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeInternal indicates an unexpected server-side failure.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// WizardError represents a structured error for wizard operations.
type WizardError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *WizardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *WizardError) Unwrap() error {
	return e.Cause
}

// CodeOf extracts the error code, defaulting to INTERNAL.
func CodeOf(err error) ErrorCode {
	var we *WizardError
	if errors.As(err, &we) {
		return we.Code
	}
	return ErrCodeInternal
}

// Convenience constructors for common error types.

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *WizardError {
	return &WizardError{Code: ErrCodeInvalidArgument, Message: msg}
}

// Validation creates a stage-input validation error.
func Validation(msg string) *WizardError {
	return &WizardError{Code: ErrCodeValidation, Message: msg}
}

// SessionNotFound creates a session not found error.
func SessionNotFound(uid string) *WizardError {
	return &WizardError{
		Code:    ErrCodeSessionNotFound,
		Message: fmt.Sprintf("session not found: %s", uid),
	}
}

// StageNotFound creates a stage not found error.
func StageNotFound(stage string) *WizardError {
	return &WizardError{
		Code:    ErrCodeStageNotFound,
		Message: fmt.Sprintf("stage not found: %s", stage),
	}
}

// CustomerNotFound creates a customer not found error.
func CustomerNotFound(id string) *WizardError {
	return &WizardError{
		Code:    ErrCodeCustomerNotFound,
		Message: fmt.Sprintf("customer not found: %s", id),
	}
}

// AccessDenied creates an access denied error.
func AccessDenied(msg string) *WizardError {
	return &WizardError{Code: ErrCodeAccessDenied, Message: msg}
}

// GenerationFailed creates a generation failed error.
func GenerationFailed(msg string, cause error) *WizardError {
	return &WizardError{Code: ErrCodeGenerationFailed, Message: msg, Cause: cause}
}

// RateLimitExceeded creates a rate limit exceeded error.
func RateLimitExceeded(msg string) *WizardError {
	return &WizardError{Code: ErrCodeRateLimitExceeded, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string, cause error) *WizardError {
	return &WizardError{Code: ErrCodeInternal, Message: msg, Cause: cause}
}
