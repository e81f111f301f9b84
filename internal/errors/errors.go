// Package errors defines the error kinds surfaced to callers of the job client.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeServiceUnavailable indicates the service could not be reached or answered non-2xx.
	ErrCodeServiceUnavailable ErrorCode = "service_unavailable"
	// ErrCodeSubmission indicates the job could not be submitted.
	ErrCodeSubmission ErrorCode = "submission"
	// ErrCodeJobFailed indicates the service reported an explicit error for the job.
	ErrCodeJobFailed ErrorCode = "job_failed"
	// ErrCodeTimeout indicates no terminal state was observed within the wait budget.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeMalformedResponse indicates the service answered with an unexpected JSON shape.
	ErrCodeMalformedResponse ErrorCode = "malformed_response"
	// ErrCodeValidation indicates invalid local input (flags, job files).
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeCanceled indicates the operation was canceled.
	ErrCodeCanceled ErrorCode = "canceled"
	// ErrCodeInternal indicates an unexpected local failure.
	ErrCodeInternal ErrorCode = "internal"
)

// Process exit statuses per error kind.
const (
	ExitOK                 = 0
	ExitInternal           = 1
	ExitValidation         = 2
	ExitServiceUnavailable = 3
	ExitSubmission         = 4
	ExitJobFailed          = 5
	ExitTimeout            = 6
	ExitMalformedResponse  = 7
	ExitCanceled           = 130
)

// AppError represents a structured application error with a code, message, and optional cause.
// It supports error wrapping and unwrapping for use with errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// ServiceUnavailable creates a new ServiceUnavailable error wrapping cause.
func ServiceUnavailable(cause error, format string, args ...any) *AppError {
	return newf(ErrCodeServiceUnavailable, cause, format, args...)
}

// Submission creates a new SubmissionError wrapping cause.
func Submission(cause error, format string, args ...any) *AppError {
	return newf(ErrCodeSubmission, cause, format, args...)
}

// JobFailed creates a new JobFailed error carrying the service's error description.
func JobFailed(promptID, description string) *AppError {
	return &AppError{
		Code:    ErrCodeJobFailed,
		Message: fmt.Sprintf("job %s failed: %s", promptID, description),
	}
}

// TimedOut creates a new TimedOut error wrapping cause.
func TimedOut(cause error, format string, args ...any) *AppError {
	return newf(ErrCodeTimeout, cause, format, args...)
}

// Malformed creates a new MalformedResponse error wrapping cause.
func Malformed(cause error, format string, args ...any) *AppError {
	return newf(ErrCodeMalformedResponse, cause, format, args...)
}

// Validation creates a new Validation error.
func Validation(message string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: message,
	}
}

// Validationf creates a new Validation error with formatted message.
func Validationf(format string, args ...any) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	if err == nil {
		return nil
	}
	return newf(code, err, format, args...)
}

func newf(code ErrorCode, cause error, format string, args ...any) *AppError {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &AppError{
		Code:    code,
		Message: msg,
		Cause:   cause,
	}
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// Is reports whether err carries the given error code.
func Is(err error, code ErrorCode) bool {
	return isCode(err, code)
}

// IsServiceUnavailable checks if an error is a ServiceUnavailable error.
func IsServiceUnavailable(err error) bool {
	return isCode(err, ErrCodeServiceUnavailable)
}

// IsSubmission checks if an error is a SubmissionError.
func IsSubmission(err error) bool {
	return isCode(err, ErrCodeSubmission)
}

// IsJobFailed checks if an error is a JobFailed error.
func IsJobFailed(err error) bool {
	return isCode(err, ErrCodeJobFailed)
}

// IsTimeout checks if an error is a TimedOut error.
func IsTimeout(err error) bool {
	return isCode(err, ErrCodeTimeout)
}

// IsMalformed checks if an error is a MalformedResponse error.
func IsMalformed(err error) bool {
	return isCode(err, ErrCodeMalformedResponse)
}

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool {
	return isCode(err, ErrCodeValidation)
}

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
// Bare context cancellation is reported as ErrCodeCanceled.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	if errors.Is(err, context.Canceled) {
		return ErrCodeCanceled
	}
	return ""
}

// ExitCode maps an error onto the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch GetCode(err) {
	case ErrCodeServiceUnavailable:
		return ExitServiceUnavailable
	case ErrCodeSubmission:
		return ExitSubmission
	case ErrCodeJobFailed:
		return ExitJobFailed
	case ErrCodeTimeout:
		return ExitTimeout
	case ErrCodeMalformedResponse:
		return ExitMalformedResponse
	case ErrCodeValidation:
		return ExitValidation
	case ErrCodeCanceled:
		return ExitCanceled
	default:
		return ExitInternal
	}
}

// Describe returns the user-facing label for an error kind.
func Describe(err error) string {
	switch GetCode(err) {
	case ErrCodeServiceUnavailable:
		return "ServiceUnavailable"
	case ErrCodeSubmission:
		return "SubmissionError"
	case ErrCodeJobFailed:
		return "JobFailed"
	case ErrCodeTimeout:
		return "TimedOut"
	case ErrCodeMalformedResponse:
		return "MalformedResponse"
	case ErrCodeValidation:
		return "InvalidInput"
	case ErrCodeCanceled:
		return "Canceled"
	default:
		return "Error"
	}
}
