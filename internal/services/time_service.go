package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"task-tracker/internal/errors"
	"task-tracker/internal/validation"
)

// Layouts accepted by ParseStartTime besides the configured display layout
var startLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// timeServiceImpl implements the TimeService interface
type timeServiceImpl struct {
	layout    string
	clock     func() time.Time
	validator *validation.Validator
}

// NewTimeService creates a TimeService that prints times with layout
func NewTimeService(layout string) TimeService {
	return NewTimeServiceWithClock(layout, time.Now)
}

// NewTimeServiceWithClock creates a TimeService with a fixed notion of now
func NewTimeServiceWithClock(layout string, clock func() time.Time) TimeService {
	return &timeServiceImpl{
		layout:    layout,
		clock:     clock,
		validator: validation.NewValidator(),
	}
}

func (t *timeServiceImpl) Now() time.Time {
	return t.clock()
}

// ParseStartTime accepts "now", "+<duration>", "HH:MM" (today),
// "tomorrow HH:MM", the display layout and a few ISO forms, all in local time.
func (t *timeServiceImpl) ParseStartTime(input string) (*time.Time, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return nil, nil
	}
	now := t.clock()

	switch {
	case strings.EqualFold(s, "now"):
		v := now.Truncate(time.Minute)
		return &v, nil
	case strings.HasPrefix(s, "+"):
		d, err := t.ParseDuration(s[1:])
		if err != nil {
			return nil, err
		}
		v := now.Truncate(time.Minute).Add(d)
		return &v, nil
	}

	day := now
	if rest, ok := cutPrefixFold(s, "tomorrow"); ok {
		day = now.AddDate(0, 0, 1)
		s = strings.TrimSpace(rest)
		if s == "" {
			s = "09:00"
		}
	} else if rest, ok := cutPrefixFold(s, "today"); ok {
		s = strings.TrimSpace(rest)
	}

	if clock, err := time.ParseInLocation("15:04", s, now.Location()); err == nil {
		v := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, now.Location())
		return &v, nil
	}

	layouts := append([]string{t.layout}, startLayouts...)
	for _, layout := range layouts {
		if layout == "" {
			continue
		}
		if v, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return &v, nil
		}
	}
	return nil, errors.NewInvalidInputError("start_time", input, "unrecognised time, try \"now\", \"+2h\", \"14:30\" or \"2006-01-02 15:04\"")
}

func (t *timeServiceImpl) ParseDuration(input string) (time.Duration, error) {
	d, err := t.validator.ParseDurationShorthand(input)
	if err != nil {
		return 0, errors.NewInvalidInputError("duration", input, err.Error())
	}
	return d, nil
}

// FormatDuration formats a duration into human-readable string
func (t *timeServiceImpl) FormatDuration(duration time.Duration) string {
	if duration <= 0 {
		return "0m"
	}

	days := int(duration.Hours()) / 24
	hours := int(duration.Hours()) % 24
	minutes := int(duration.Minutes()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

// FormatTime prints t with the display layout, or relative to now
func (t *timeServiceImpl) FormatTime(v *time.Time, relative bool) string {
	if v == nil {
		return "-"
	}
	if relative {
		return humanize.RelTime(*v, t.clock(), "ago", "from now")
	}
	return v.Local().Format(t.layout)
}

// DayRange returns the time range for a specific date (full day)
func (t *timeServiceImpl) DayRange(date time.Time) TimeRange {
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return TimeRange{
		Start: startOfDay,
		End:   startOfDay.AddDate(0, 0, 1),
	}
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return s, false
}
