package validation

import (
	"fmt"
	"strings"
	"testing"

	apperrors "task-tracker/internal/errors"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		build    func(*ValidationError)
		expected string
	}{
		{"No errors", func(*ValidationError) {}, "validation error"},
		{
			"Single error",
			func(ve *ValidationError) { ve.AddRequiredError("name") },
			"validation error for field 'name': name is required",
		},
		{
			"Multiple errors",
			func(ve *ValidationError) {
				ve.AddRequiredError("name")
				ve.AddInvalidRangeError("duration", -1, "must not be negative")
			},
			"multiple validation errors: validation error for field 'name': name is required; " +
				"validation error for field 'duration': duration has invalid range: must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ve := NewValidationError()
			tt.build(ve)
			if result := ve.Error(); result != tt.expected {
				t.Errorf("Error() = %q, expected %q", result, tt.expected)
			}
		})
	}
}

func TestValidationError_OrNil(t *testing.T) {
	ve := NewValidationError()
	if ve.OrNil() != nil {
		t.Errorf("OrNil() on an empty ValidationError should be nil")
	}

	ve.AddRequiredError("name")
	if ve.OrNil() == nil {
		t.Errorf("OrNil() should return the error once a field error is added")
	}
}

func TestValidationError_AddInvalidLengthError(t *testing.T) {
	tests := []struct {
		min, max int
		expected string
	}{
		{1, 255, "name must be between 1 and 255 characters long"},
		{3, 0, "name must be at least 3 characters long"},
		{0, 10, "name must be at most 10 characters long"},
		{0, 0, "name has invalid length"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			ve := NewValidationError()
			ve.AddInvalidLengthError("name", "x", tt.min, tt.max)
			if ve.Errors[0].Message != tt.expected {
				t.Errorf("message = %q, expected %q", ve.Errors[0].Message, tt.expected)
			}
			if ve.Errors[0].Type != ErrorTypeInvalidLength {
				t.Errorf("type = %v, expected %v", ve.Errors[0].Type, ErrorTypeInvalidLength)
			}
		})
	}
}

func TestValidationError_GetFieldErrors(t *testing.T) {
	ve := NewValidationError()
	ve.AddRequiredError("name")
	ve.AddInvalidValueError("status", "LATER", "unknown")
	ve.AddInvalidCharacterError("name", "a\tb")

	if got := len(ve.GetFieldErrors("name")); got != 2 {
		t.Errorf("GetFieldErrors(name) returned %d errors, expected 2", got)
	}
	if got := len(ve.GetFieldErrors("epic_id")); got != 0 {
		t.Errorf("GetFieldErrors(epic_id) returned %d errors, expected 0", got)
	}
}

func TestValidationError_GetUserFriendlyMessage(t *testing.T) {
	ve := NewValidationError()
	if ve.GetUserFriendlyMessage() != "Input validation failed" {
		t.Errorf("unexpected message for empty error: %q", ve.GetUserFriendlyMessage())
	}

	ve.AddRequiredError("name")
	if ve.GetUserFriendlyMessage() != "name is required" {
		t.Errorf("unexpected single message: %q", ve.GetUserFriendlyMessage())
	}

	ve.AddInvalidFormatError("start", "tomorrow", "RFC3339")
	msg := ve.GetUserFriendlyMessage()
	if !strings.HasPrefix(msg, "Multiple validation errors occurred:") || !strings.Contains(msg, "- start has invalid format, expected: RFC3339") {
		t.Errorf("unexpected multi message: %q", msg)
	}
}

func TestIsValidationError(t *testing.T) {
	ve := NewValidationError()
	if !IsValidationError(ve) {
		t.Errorf("IsValidationError should accept *ValidationError")
	}
	if !IsValidationError(fmt.Errorf("create: %w", ve)) {
		t.Errorf("IsValidationError should see through wrapping")
	}
	if IsValidationError(fmt.Errorf("other")) {
		t.Errorf("IsValidationError should reject unrelated errors")
	}
}

func TestValidationError_ToAppError(t *testing.T) {
	ve := NewValidationError()
	ve.AddRequiredError("name")

	appErr := ve.ToAppError()
	if appErr.Type != apperrors.ErrorTypeInvalidInput {
		t.Errorf("type = %v, expected %v", appErr.Type, apperrors.ErrorTypeInvalidInput)
	}
	if appErr.Message != "invalid input for name: name is required" {
		t.Errorf("message = %q", appErr.Message)
	}
	if !IsValidationError(appErr) {
		t.Errorf("AppError should keep the ValidationError as cause")
	}
}
