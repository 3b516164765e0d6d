package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestMCPError(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		message   string
		details   string
		requestID string
	}{
		{
			name:      "Basic error",
			code:      ErrInvalidInput,
			message:   "Invalid request body",
			details:   "birth_date must be YYYY-MM-DD",
			requestID: "req-123",
		},
		{
			name:      "Rate limit error",
			code:      ErrRateLimit,
			message:   "Too many requests",
			details:   "Retry after 1s",
			requestID: "req-456",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewMCPError(tt.code, tt.message, tt.details, tt.requestID)

			if err.Code != tt.code {
				t.Errorf("Expected code %s, got %s", tt.code, err.Code)
			}

			if err.Message != tt.message {
				t.Errorf("Expected message %s, got %s", tt.message, err.Message)
			}

			if err.Details != tt.details {
				t.Errorf("Expected details %s, got %s", tt.details, err.Details)
			}

			if err.RequestID != tt.requestID {
				t.Errorf("Expected requestID %s, got %s", tt.requestID, err.RequestID)
			}

			if time.Since(err.Timestamp) > time.Minute {
				t.Errorf("Timestamp should be recent, got %v", err.Timestamp)
			}

			expectedError := tt.code + ": " + tt.message
			if err.Error() != expectedError {
				t.Errorf("Expected error string %s, got %s", expectedError, err.Error())
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("birthDate", "Please fill out all required fields. Missing: birth date", "")

	expectedError := "validation error for field 'birthDate': Please fill out all required fields. Missing: birth date"
	if err.Error() != expectedError {
		t.Errorf("Expected error string %s, got %s", expectedError, err.Error())
	}
}

func TestUnsupportedGuidelineError(t *testing.T) {
	err := NewUnsupportedGuidelineError("Atlantis")

	if err.Error() != `unsupported guideline: "Atlantis"` {
		t.Errorf("Unexpected error string %s", err.Error())
	}

	wrapped := fmt.Errorf("failed to evaluate: %w", err)
	if !errors.Is(wrapped, ErrUnsupportedGuideline) {
		t.Error("Expected wrapped error to match ErrUnsupportedGuideline")
	}

	var target *UnsupportedGuidelineError
	if !errors.As(wrapped, &target) || target.Guideline != "Atlantis" {
		t.Errorf("Expected errors.As to recover the guideline, got %+v", target)
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"unsupported", fmt.Errorf("wrap: %w", NewUnsupportedGuidelineError("x")), ErrUnsupported},
		{"validation", fmt.Errorf("wrap: %w", NewValidationError("subdiagnosis", "missing", nil)), ErrValidation},
		{"other", errors.New("boom"), ErrInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorCode(tt.err); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestErrorConstants(t *testing.T) {
	expectedValues := map[string]string{
		ErrInvalidInput:   "INVALID_INPUT",
		ErrValidation:     "VALIDATION_ERROR",
		ErrUnsupported:    "UNSUPPORTED_GUIDELINE",
		ErrRateLimit:      "RATE_LIMIT_EXCEEDED",
		ErrInternalServer: "INTERNAL_SERVER_ERROR",
	}

	for actual, expected := range expectedValues {
		if actual != expected {
			t.Errorf("Expected %s, got %s", expected, actual)
		}
	}
}
