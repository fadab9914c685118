package errors

import "fmt"

// ErrorCode represents a GemShot error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrFileNotFound   ErrorCode = "FILE_NOT_FOUND"  // 404
	ErrBusy           ErrorCode = "BUSY"            // 409
	ErrConfigMissing  ErrorCode = "CONFIG_MISSING"  // 412
	ErrInternal       ErrorCode = "INTERNAL"        // 500
	ErrAIFailed       ErrorCode = "AI_FAILED"       // 502
	ErrAIUnavailable  ErrorCode = "AI_UNAVAILABLE"  // 503
)

// GemError represents a structured error with code, status, and details.
type GemError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *GemError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *GemError {
	return &GemError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a registry entry cannot be found.
func NewNotFound(identifier string) *GemError {
	return &GemError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("entry not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewFileNotFound creates a 404 error for a missing file in the vault.
func NewFileNotFound(path string) *GemError {
	return &GemError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewBusy creates a 409 error when an AI request is already in flight.
func NewBusy(op string) *GemError {
	return &GemError{
		Code:    ErrBusy,
		Status:  409,
		Message: fmt.Sprintf("%s already in progress", op),
		Details: map[string]any{"operation": op},
	}
}

// NewConfigMissing creates a 412 error for a required config key that is unset.
func NewConfigMissing(key string) *GemError {
	return &GemError{
		Code:    ErrConfigMissing,
		Status:  412,
		Message: fmt.Sprintf("%s is not configured", key),
		Details: map[string]any{"key": key},
	}
}

// NewAIFailed creates a 502 error for a failed call to the AI backend.
func NewAIFailed(err error) *GemError {
	msg := "ai request failed"
	if err != nil {
		msg = err.Error()
	}
	return &GemError{
		Code:    ErrAIFailed,
		Status:  502,
		Message: msg,
	}
}

// NewAIUnavailable creates a 503 error when no AI backend can be used.
func NewAIUnavailable(reason string) *GemError {
	return &GemError{
		Code:    ErrAIUnavailable,
		Status:  503,
		Message: reason,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *GemError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &GemError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a GemError with the given code.
func Is(err error, code ErrorCode) bool {
	if gErr, ok := err.(*GemError); ok {
		return gErr.Code == code
	}
	return false
}
