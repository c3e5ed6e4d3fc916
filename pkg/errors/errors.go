package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"
	ErrCancelled     ErrorCode = "CANCELLED"

	// Environment errors
	ErrToolMissing ErrorCode = "TOOL_MISSING"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"
	ErrConfigWrite ErrorCode = "CONFIG_WRITE"

	// Package errors
	ErrPackageNotFound ErrorCode = "PACKAGE_NOT_FOUND"
	ErrMappingNotFound ErrorCode = "MAPPING_NOT_FOUND"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileCopy     ErrorCode = "FILE_COPY"
	ErrFileRemove   ErrorCode = "FILE_REMOVE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"
	ErrDirRemove    ErrorCode = "DIR_REMOVE"
	ErrBackup       ErrorCode = "BACKUP"

	// External process errors
	ErrLinker    ErrorCode = "LINKER"
	ErrElevation ErrorCode = "ELEVATION"
	ErrVCS       ErrorCode = "VCS"
)

// StowmanError represents a structured error with code and details
type StowmanError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *StowmanError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *StowmanError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *StowmanError) Is(target error) bool {
	var targetErr *StowmanError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new StowmanError with the given code and message
func New(code ErrorCode, message string) *StowmanError {
	return &StowmanError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new StowmanError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *StowmanError {
	return &StowmanError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a StowmanError
func Wrap(err error, code ErrorCode, message string) *StowmanError {
	if err == nil {
		return nil
	}
	return &StowmanError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *StowmanError {
	if err == nil {
		return nil
	}
	return &StowmanError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *StowmanError) WithDetail(key string, value interface{}) *StowmanError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Reason returns the message without the code prefix, followed by the
// wrapped cause when present. It is what gets shown next to a ✗ marker.
func (e *StowmanError) Reason() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Wrapped)
	}
	return e.Message
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var stowErr *StowmanError
	if errors.As(err, &stowErr) {
		return stowErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a StowmanError
func GetErrorCode(err error) ErrorCode {
	var stowErr *StowmanError
	if errors.As(err, &stowErr) {
		return stowErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a StowmanError
func GetErrorDetails(err error) map[string]interface{} {
	var stowErr *StowmanError
	if errors.As(err, &stowErr) {
		return stowErr.Details
	}
	return nil
}

// Reason returns a user-facing explanation for any error
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var stowErr *StowmanError
	if errors.As(err, &stowErr) {
		return stowErr.Reason()
	}
	return err.Error()
}
