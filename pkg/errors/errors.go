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
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Prerequisite errors, checked before any network activity
	ErrPrereqMissing ErrorCode = "PREREQ_MISSING"
	ErrPrereqVersion ErrorCode = "PREREQ_VERSION"

	// Resolution errors
	ErrResolveRegistry  ErrorCode = "RESOLVE_REGISTRY"
	ErrResolveNoVersion ErrorCode = "RESOLVE_NO_VERSION"

	// Transfer errors
	ErrTransferDownload ErrorCode = "TRANSFER_DOWNLOAD"
	ErrTransferExtract  ErrorCode = "TRANSFER_EXTRACT"
	ErrTransferNoRoot   ErrorCode = "TRANSFER_NO_ROOT"

	// Environment provisioning errors
	ErrEnvCreate  ErrorCode = "ENV_CREATE"
	ErrEnvInstall ErrorCode = "ENV_INSTALL"

	// Configuration errors (corruption is recovered, never fatal)
	ErrConfigCorrupt ErrorCode = "CONFIG_CORRUPT"
	ErrConfigWrite   ErrorCode = "CONFIG_WRITE"

	// State machine errors
	ErrActionRequired ErrorCode = "ACTION_REQUIRED"
	ErrActionInvalid  ErrorCode = "ACTION_INVALID"
	ErrLockHeld       ErrorCode = "LOCK_HELD"

	// FileSystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileCreate ErrorCode = "FILE_CREATE"
	ErrFileWrite  ErrorCode = "FILE_WRITE"
	ErrDirCreate  ErrorCode = "DIR_CREATE"

	// Launcher/PATH errors
	ErrLauncherWrite ErrorCode = "LAUNCHER_WRITE"
	ErrPathRegister  ErrorCode = "PATH_REGISTER"
)

// InstallError represents a structured error with code and details
type InstallError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *InstallError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *InstallError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *InstallError) Is(target error) bool {
	var targetErr *InstallError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new InstallError with the given code and message
func New(code ErrorCode, message string) *InstallError {
	return &InstallError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new InstallError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *InstallError {
	return &InstallError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with an InstallError
func Wrap(err error, code ErrorCode, message string) *InstallError {
	if err == nil {
		return nil
	}
	return &InstallError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *InstallError {
	if err == nil {
		return nil
	}
	return &InstallError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *InstallError) WithDetail(key string, value interface{}) *InstallError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var installErr *InstallError
	if errors.As(err, &installErr) {
		return installErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not an InstallError
func GetErrorCode(err error) ErrorCode {
	var installErr *InstallError
	if errors.As(err, &installErr) {
		return installErr.Code
	}
	return ErrUnknown
}
