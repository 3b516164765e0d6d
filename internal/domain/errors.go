package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnsupportedGuideline is matched by errors.Is for any UnsupportedGuidelineError
var ErrUnsupportedGuideline = errors.New("unsupported guideline")

// UnsupportedGuidelineError is returned when a guideline selector matches none
// of the known identifiers. It is the only error the evaluation core raises.
type UnsupportedGuidelineError struct {
	Guideline string
}

// Error implements the error interface
func (e *UnsupportedGuidelineError) Error() string {
	return fmt.Sprintf("unsupported guideline: %q", e.Guideline)
}

// Is allows errors.Is(err, ErrUnsupportedGuideline)
func (e *UnsupportedGuidelineError) Is(target error) bool {
	return target == ErrUnsupportedGuideline
}

// NewUnsupportedGuidelineError creates a new UnsupportedGuidelineError
func NewUnsupportedGuidelineError(guideline string) *UnsupportedGuidelineError {
	return &UnsupportedGuidelineError{Guideline: guideline}
}

// MCPError represents a standardized error response
type MCPError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// Error implements the error interface
func (e *MCPError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes for different failure scenarios
const (
	ErrInvalidInput   = "INVALID_INPUT"
	ErrValidation     = "VALIDATION_ERROR"
	ErrUnsupported    = "UNSUPPORTED_GUIDELINE"
	ErrRateLimit      = "RATE_LIMIT_EXCEEDED"
	ErrInternalServer = "INTERNAL_SERVER_ERROR"
)

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewMCPError creates a new MCPError with timestamp
func NewMCPError(code, message, details, requestID string) *MCPError {
	return &MCPError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// ErrorCode maps an error to the MCPError code used on the wire
func ErrorCode(err error) string {
	var validationErr *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupportedGuideline):
		return ErrUnsupported
	case errors.As(err, &validationErr):
		return ErrValidation
	default:
		return ErrInternalServer
	}
}
