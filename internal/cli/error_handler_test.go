package cli

import (
	"errors"
	"testing"

	apperrors "task-tracker/internal/errors"
	"task-tracker/internal/validation"
)

func TestErrorHandler_Handle(t *testing.T) {
	eh := NewErrorHandler()

	tests := []struct {
		name      string
		operation string
		err       error
		expected  string
	}{
		{
			name:      "Validation error",
			operation: "create task",
			err:       apperrors.NewValidationError("invalid input", nil),
			expected:  "failed to create task: invalid input",
		},
		{
			name:      "Not found error",
			operation: "show task",
			err:       apperrors.NewNotFoundError("task", "123"),
			expected:  "failed to show task: task not found: 123",
		},
		{
			name:      "Time conflict",
			operation: "create task",
			err:       apperrors.NewTimeConflictError("task b", "task a"),
			expected:  "failed to create task: task b overlaps in time with task a",
		},
		{
			name:      "Database error",
			operation: "save tasks",
			err:       apperrors.NewDatabaseError("insert", errors.New("disk full")),
			expected:  "failed to save tasks: A database error occurred. Please try again.",
		},
		{
			name:      "Transport error",
			operation: "open store",
			err:       apperrors.NewTransportError("load", errors.New("connection refused")),
			expected:  "failed to open store: The storage server could not be reached. Please try again.",
		},
		{
			name:      "Regular error",
			operation: "process",
			err:       errors.New("regular error"),
			expected:  "failed to process: regular error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := eh.Handle(tt.operation, tt.err)
			if result.Error() != tt.expected {
				t.Errorf("ErrorHandler.Handle() = %v, want %v", result.Error(), tt.expected)
			}
		})
	}

	if eh.Handle("anything", nil) != nil {
		t.Error("ErrorHandler.Handle(nil) should return nil")
	}
}

func TestErrorHandler_HandleKeepsCause(t *testing.T) {
	eh := NewErrorHandler()
	cause := errors.New("regular error")

	if err := eh.Handle("process", cause); !errors.Is(err, cause) {
		t.Errorf("ErrorHandler.Handle() should wrap plain errors, got %v", err)
	}
}

func TestErrorHandler_HandleSimple(t *testing.T) {
	eh := NewErrorHandler()

	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Validation error",
			err:      apperrors.NewValidationError("invalid input", nil),
			expected: "invalid input",
		},
		{
			name:     "Empty error",
			err:      apperrors.NewEmptyError("task"),
			expected: "task list is empty",
		},
		{
			name: "Field validation error",
			err: &validation.ValidationError{
				Errors: []validation.FieldError{{Field: "name", Message: "name is required"}},
			},
			expected: "name is required",
		},
		{
			name:     "Regular error",
			err:      errors.New("regular error"),
			expected: "regular error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := eh.HandleSimple(tt.err)
			if result.Error() != tt.expected {
				t.Errorf("ErrorHandler.HandleSimple() = %v, want %v", result.Error(), tt.expected)
			}
		})
	}
}

func TestErrorHandler_Classification(t *testing.T) {
	eh := NewErrorHandler()

	tests := []struct {
		name       string
		err        error
		validation bool
		notFound   bool
		storage    bool
	}{
		{"validation", apperrors.NewValidationError("invalid input", nil), true, false, false},
		{"invalid input", apperrors.NewInvalidInputError("status", "x", "unknown"), true, false, false},
		{"time conflict", apperrors.NewTimeConflictError("a", "b"), true, false, false},
		{"field validation", &validation.ValidationError{Errors: []validation.FieldError{{Field: "name"}}}, true, false, false},
		{"not found", apperrors.NewNotFoundError("task", "1"), false, true, false},
		{"empty", apperrors.NewEmptyError("epic"), false, true, false},
		{"database", apperrors.NewDatabaseError("insert", nil), false, false, true},
		{"transport", apperrors.NewTransportError("save", nil), false, false, true},
		{"regular", errors.New("regular error"), false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := eh.IsValidationError(tt.err); got != tt.validation {
				t.Errorf("IsValidationError() = %v, want %v", got, tt.validation)
			}
			if got := eh.IsNotFoundError(tt.err); got != tt.notFound {
				t.Errorf("IsNotFoundError() = %v, want %v", got, tt.notFound)
			}
			if got := eh.IsStorageError(tt.err); got != tt.storage {
				t.Errorf("IsStorageError() = %v, want %v", got, tt.storage)
			}
		})
	}
}

func TestErrorHandler_GetErrorCode(t *testing.T) {
	eh := NewErrorHandler()

	if code := eh.GetErrorCode(apperrors.NewNotFoundError("task", "1")); code != "NOT_FOUND" {
		t.Errorf("GetErrorCode() = %q, want NOT_FOUND", code)
	}
	if code := eh.GetErrorCode(errors.New("plain")); code != "UNKNOWN_ERROR" {
		t.Errorf("GetErrorCode() = %q, want UNKNOWN_ERROR", code)
	}
}
