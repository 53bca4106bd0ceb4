package validation

import (
	"strings"
	"testing"
	"time"
)

func TestValidator_IsValidStringLength(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name     string
		input    string
		min, max int
		expected bool
	}{
		{"within range", "hello", 1, 10, true},
		{"too short", "", 1, 10, false},
		{"too long", strings.Repeat("a", 11), 1, 10, false},
		{"trimmed before counting", "  abc  ", 1, 3, true},
		{"runes not bytes", "ёжик", 1, 4, true},
		{"unbounded max", strings.Repeat("a", 5000), 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := v.IsValidStringLength(tt.input, tt.min, tt.max); result != tt.expected {
				t.Errorf("IsValidStringLength(%q, %d, %d) = %v, expected %v", tt.input, tt.min, tt.max, result, tt.expected)
			}
		})
	}
}

func TestValidator_HasNoControlCharacters(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		input    string
		expected bool
	}{
		{"Write report (draft) #2", true},
		{"Переезд", true},
		{"line\nbreak", false},
		{"tab\there", false},
	}

	for _, tt := range tests {
		if result := v.HasNoControlCharacters(tt.input); result != tt.expected {
			t.Errorf("HasNoControlCharacters(%q) = %v, expected %v", tt.input, result, tt.expected)
		}
	}
}

func TestValidator_IsValidDuration(t *testing.T) {
	unbounded := NewValidator()
	capped := NewValidatorWithLimits(Limits{MaxDuration: 8 * time.Hour})

	tests := []struct {
		name      string
		validator *Validator
		duration  time.Duration
		expected  bool
	}{
		{"zero", unbounded, 0, true},
		{"negative", unbounded, -time.Minute, false},
		{"long without cap", unbounded, 1000 * time.Hour, true},
		{"at cap", capped, 8 * time.Hour, true},
		{"over cap", capped, 8*time.Hour + time.Minute, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.validator.IsValidDuration(tt.duration); result != tt.expected {
				t.Errorf("IsValidDuration(%v) = %v, expected %v", tt.duration, result, tt.expected)
			}
		})
	}
}

func TestValidator_IsValidID(t *testing.T) {
	v := NewValidator()
	for id, expected := range map[int64]bool{1: true, 42: true, 0: false, -3: false} {
		if result := v.IsValidID(id); result != expected {
			t.Errorf("IsValidID(%d) = %v, expected %v", id, result, expected)
		}
	}
}

func TestValidator_IsValidStartTime(t *testing.T) {
	v := NewValidator()
	if v.IsValidStartTime(time.Time{}) {
		t.Errorf("zero time should be rejected")
	}
	if !v.IsValidStartTime(time.Date(2022, 7, 20, 10, 20, 0, 0, time.UTC)) {
		t.Errorf("a regular date should be accepted")
	}
}

func TestValidator_ParseDurationShorthand(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		input     string
		expected  time.Duration
		expectErr bool
	}{
		{"", 0, false},
		{"30", 30 * time.Minute, false},
		{"90m", 90 * time.Minute, false},
		{"2h", 2 * time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{"1w", 7 * 24 * time.Hour, false},
		{"1h30m", 90 * time.Minute, false},
		{"-5", 0, true},
		{"-1h", 0, true},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := v.ParseDurationShorthand(tt.input)
			if tt.expectErr {
				if err == nil {
					t.Errorf("ParseDurationShorthand(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDurationShorthand(%q) unexpected error: %v", tt.input, err)
			}
			if result != tt.expected {
				t.Errorf("ParseDurationShorthand(%q) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}
