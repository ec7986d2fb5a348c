package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing and
// exit-status mapping.
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown     ErrorCode = "UNKNOWN"
	ErrInternal    ErrorCode = "INTERNAL"
	ErrInterrupted ErrorCode = "INTERRUPTED"
	ErrNotRoot     ErrorCode = "NOT_ROOT"

	// File operation errors
	ErrSourceMissing ErrorCode = "SOURCE_MISSING"
	ErrCopyFailed    ErrorCode = "COPY_FAILED"
	ErrPermission    ErrorCode = "PERMISSION"
	ErrDirNotEmpty   ErrorCode = "DIR_NOT_EMPTY"

	// Display manager errors
	ErrNoDisplayManager ErrorCode = "NO_DISPLAY_MANAGER"
	ErrDMConfig         ErrorCode = "DM_CONFIG"

	// Journal errors
	ErrJournalWrite ErrorCode = "JOURNAL_WRITE"

	// Preflight errors
	ErrPrereqVersion ErrorCode = "PREREQ_VERSION"

	// Configuration errors
	ErrConfigLoad ErrorCode = "CONFIG_LOAD"
)

// exitCodes maps error codes to process exit statuses. The exit code
// of a rolled-back run must reflect the original failure.
var exitCodes = map[ErrorCode]int{
	ErrUnknown:          1,
	ErrInternal:         1,
	ErrInterrupted:      130,
	ErrNotRoot:          77,
	ErrSourceMissing:    10,
	ErrCopyFailed:       11,
	ErrPermission:       12,
	ErrDirNotEmpty:      13,
	ErrNoDisplayManager: 20,
	ErrDMConfig:         21,
	ErrJournalWrite:     30,
	ErrPrereqVersion:    40,
	ErrConfigLoad:       50,
}

// softCodes are outcomes that are logged but never force a rollback.
var softCodes = map[ErrorCode]bool{
	ErrDirNotEmpty:      true,
	ErrNoDisplayManager: true,
}

// SessionError represents a structured error with code and details
type SessionError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *SessionError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *SessionError) Unwrap() error {
	return e.Wrapped
}

// Is implements the errors.Is interface
func (e *SessionError) Is(target error) bool {
	var targetErr *SessionError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new SessionError with the given code and message
func New(code ErrorCode, message string) *SessionError {
	return &SessionError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new SessionError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *SessionError {
	return &SessionError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a SessionError
func Wrap(err error, code ErrorCode, message string) *SessionError {
	if err == nil {
		return nil
	}
	return &SessionError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *SessionError {
	if err == nil {
		return nil
	}
	return &SessionError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *SessionError) WithDetail(key string, value interface{}) *SessionError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var sessionErr *SessionError
	if errors.As(err, &sessionErr) {
		return sessionErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if
// not a SessionError
func GetErrorCode(err error) ErrorCode {
	var sessionErr *SessionError
	if errors.As(err, &sessionErr) {
		return sessionErr.Code
	}
	return ErrUnknown
}

// IsSoft reports whether an error is a soft outcome: logged as a
// warning, never a reason to roll back.
func IsSoft(err error) bool {
	return softCodes[GetErrorCode(err)]
}

// ExitCode returns the process exit status for an error. Nil maps to 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if code, ok := exitCodes[GetErrorCode(err)]; ok {
		return code
	}
	return 1
}
