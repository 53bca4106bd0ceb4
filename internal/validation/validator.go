package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Limits bounds the values accepted for work items.
type Limits struct {
	NameMinLength        int
	NameMaxLength        int
	DescriptionMaxLength int
	// MaxDuration of zero means no upper bound.
	MaxDuration time.Duration
}

// DefaultLimits returns the limits used when nothing is configured.
func DefaultLimits() Limits {
	return Limits{
		NameMinLength:        1,
		NameMaxLength:        255,
		DescriptionMaxLength: 4096,
		MaxDuration:          0,
	}
}

// Validator provides common validation utilities
type Validator struct {
	durationShorthandRegex *regexp.Regexp
	limits                 Limits
}

// NewValidator creates a new validator instance with default limits
func NewValidator() *Validator {
	return NewValidatorWithLimits(DefaultLimits())
}

// NewValidatorWithLimits creates a new validator instance with the given limits
func NewValidatorWithLimits(limits Limits) *Validator {
	return &Validator{
		durationShorthandRegex: regexp.MustCompile(`^(\d+)(m|h|d|w)$`),
		limits:                 limits,
	}
}

// Limits returns the limits the validator enforces.
func (v *Validator) Limits() Limits {
	return v.limits
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsValidStringLength checks if a string length in runes is within the range.
// A max of zero means unbounded.
func (v *Validator) IsValidStringLength(s string, min, max int) bool {
	length := utf8.RuneCountInString(strings.TrimSpace(s))
	return length >= min && (max <= 0 || length <= max)
}

// IsValidNameLength checks a name against the configured limits
func (v *Validator) IsValidNameLength(name string) bool {
	return v.IsValidStringLength(name, v.limits.NameMinLength, v.limits.NameMaxLength)
}

// HasNoControlCharacters rejects newlines, tabs and other control characters
func (v *Validator) HasNoControlCharacters(s string) bool {
	return strings.IndexFunc(s, unicode.IsControl) < 0
}

// IsValidDuration checks that a duration is not negative and within the limit
func (v *Validator) IsValidDuration(d time.Duration) bool {
	if d < 0 {
		return false
	}
	return v.limits.MaxDuration <= 0 || d <= v.limits.MaxDuration
}

// IsWholeMinutes reports whether d has no sub-minute remainder
func (v *Validator) IsWholeMinutes(d time.Duration) bool {
	return d%time.Minute == 0
}

// IsValidID checks if an id is valid (positive)
func (v *Validator) IsValidID(id int64) bool {
	return id > 0
}

// IsValidStartTime checks that a start time is set and representable as RFC3339
func (v *Validator) IsValidStartTime(t time.Time) bool {
	return !t.IsZero() && t.Year() >= 1 && t.Year() <= 9999
}

// ParseDurationShorthand converts "90m", "2h", "1d" or "1w" into a duration.
// Plain integers are read as minutes. Go duration syntax ("1h30m") is also
// accepted.
func (v *Validator) ParseDurationShorthand(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("duration must not be negative: %s", s)
		}
		return time.Duration(n) * time.Minute, nil
	}
	if matches := v.durationShorthandRegex.FindStringSubmatch(s); matches != nil {
		value, err := strconv.Atoi(matches[1])
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		unit := map[string]time.Duration{
			"m": time.Minute,
			"h": time.Hour,
			"d": 24 * time.Hour,
			"w": 7 * 24 * time.Hour,
		}[matches[2]]
		return time.Duration(value) * unit, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must not be negative: %s", s)
	}
	return d, nil
}

// TrimString trims whitespace and returns the cleaned string
func (v *Validator) TrimString(s string) string {
	return strings.TrimSpace(s)
}
