// internal/engine/errors.go
package engine

import (
	"errors"
	"fmt"
)

// Extraction errors. Strategies log these and return an absent result;
// only ErrPersistence reaches the caller, as a failed write.
var (
	ErrTransport            = errors.New("transport error")
	ErrRenderingUnavailable = errors.New("rendering engine unavailable")
	ErrRenderingTimeout     = errors.New("no table selector matched")
	ErrDecode               = errors.New("failed to decode structured payload")
	ErrPersistence          = errors.New("failed to persist dataset")
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	ErrCodeTransport            ErrorCode = "TRANSPORT"
	ErrCodeRenderingUnavailable ErrorCode = "RENDERING_UNAVAILABLE"
	ErrCodeRenderingTimeout     ErrorCode = "RENDERING_TIMEOUT"
	ErrCodeDecode               ErrorCode = "DECODE"
	ErrCodePersistence          ErrorCode = "PERSISTENCE"
)

var sentinels = map[ErrorCode]error{
	ErrCodeTransport:            ErrTransport,
	ErrCodeRenderingUnavailable: ErrRenderingUnavailable,
	ErrCodeRenderingTimeout:     ErrRenderingTimeout,
	ErrCodeDecode:               ErrDecode,
	ErrCodePersistence:          ErrPersistence,
}

// EngineError wraps errors with additional context
type EngineError struct {
	Code       ErrorCode
	Message    string
	Underlying error
	StatusCode int
	Details    map[string]interface{}
}

// Error implements the error interface
func (e *EngineError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *EngineError) Unwrap() error {
	return e.Underlying
}

// Is matches another EngineError with the same code, the sentinel for this
// error's code, or anything in the underlying chain.
func (e *EngineError) Is(target error) bool {
	if t, ok := target.(*EngineError); ok {
		return e.Code == t.Code
	}
	if s, ok := sentinels[e.Code]; ok && s == target {
		return true
	}
	return errors.Is(e.Underlying, target)
}

// GetStatusCode returns the HTTP status that caused a transport error, or 0
func (e *EngineError) GetStatusCode() int {
	return e.StatusCode
}

// NewEngineError creates a new EngineError
func NewEngineError(code ErrorCode, message string, err error) *EngineError {
	return &EngineError{
		Code:       code,
		Message:    message,
		Underlying: err,
		Details:    make(map[string]interface{}),
	}
}

// WithStatus records the HTTP status code on the error
func (e *EngineError) WithStatus(code int) *EngineError {
	e.StatusCode = code
	return e
}

// WithDetail adds a detail to the error
func (e *EngineError) WithDetail(key string, value interface{}) *EngineError {
	e.Details[key] = value
	return e
}

// StatusCoder is implemented by errors that carry an HTTP status code
type StatusCoder interface {
	GetStatusCode() int
}
