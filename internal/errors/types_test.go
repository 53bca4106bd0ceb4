package errors

import (
	"errors"
	"testing"
)

func TestErrorType_String(t *testing.T) {
	tests := []struct {
		name      string
		errorType ErrorType
		expected  string
	}{
		{"Validation", ErrorTypeValidation, "validation"},
		{"NotFound", ErrorTypeNotFound, "not_found"},
		{"Empty", ErrorTypeEmpty, "empty"},
		{"TimeConflict", ErrorTypeTimeConflict, "time_conflict"},
		{"DanglingReference", ErrorTypeDanglingReference, "dangling_reference"},
		{"InvalidInput", ErrorTypeInvalidInput, "invalid_input"},
		{"Database", ErrorTypeDatabase, "database"},
		{"Timeout", ErrorTypeTimeout, "timeout"},
		{"Transport", ErrorTypeTransport, "transport"},
		{"Unknown", ErrorType(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.errorType.String()
			if result != tt.expected {
				t.Errorf("ErrorType.String() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected string
	}{
		{
			name: "Error without cause",
			appError: &AppError{
				Type:    ErrorTypeTimeConflict,
				Message: "task 2 overlaps in time with task 1",
			},
			expected: "time_conflict: task 2 overlaps in time with task 1",
		},
		{
			name: "Error with cause",
			appError: &AppError{
				Type:    ErrorTypeDatabase,
				Message: "save snapshot",
				Cause:   errors.New("disk full"),
			},
			expected: "database: save snapshot (caused by: disk full)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.appError.Error()
			if result != tt.expected {
				t.Errorf("AppError.Error() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("original error")
	appError := &AppError{Type: ErrorTypeTransport, Message: "wrapped", Cause: cause}

	if appError.Unwrap() != cause {
		t.Errorf("AppError.Unwrap() = %v, want %v", appError.Unwrap(), cause)
	}
	if !errors.Is(appError, cause) {
		t.Errorf("errors.Is should see through AppError to its cause")
	}
}

func TestAppError_Is(t *testing.T) {
	conflict1 := &AppError{Type: ErrorTypeTimeConflict, Code: "TIME_CONFLICT"}
	conflict2 := &AppError{Type: ErrorTypeTimeConflict, Code: "TIME_CONFLICT"}
	notFound := &AppError{Type: ErrorTypeNotFound, Code: "NOT_FOUND"}

	tests := []struct {
		name     string
		err      *AppError
		target   error
		expected bool
	}{
		{"Same type and code", conflict1, conflict2, true},
		{"Different type", conflict1, notFound, false},
		{"Regular error", conflict1, errors.New("regular error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.err.Is(tt.target); result != tt.expected {
				t.Errorf("AppError.Is() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestAppError_Context(t *testing.T) {
	appError := &AppError{Type: ErrorTypeInvalidInput, Message: "test error"}

	result := appError.WithContext("field", "name")
	if result != appError {
		t.Errorf("WithContext should return the same instance")
	}

	value, exists := appError.GetContext("field")
	if !exists || value != "name" {
		t.Errorf("GetContext should return the value added by WithContext")
	}

	if _, exists := appError.GetContext("nonexistent"); exists {
		t.Errorf("GetContext should return false for non-existing key")
	}

	appError.Context = nil
	if _, exists := appError.GetContext("field"); exists {
		t.Errorf("GetContext should return false when context is nil")
	}
}
