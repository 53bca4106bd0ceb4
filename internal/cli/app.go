package cli

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"task-tracker/internal/api"
	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
	"task-tracker/internal/services"
)

// App holds what every command handler needs
type App struct {
	api      api.TaskAPI
	time     services.TimeService
	out      io.Writer
	relative bool
	errors   *ErrorHandler
}

// NewApp creates a new CLI application instance with dependency injection
func NewApp(taskAPI api.TaskAPI, timeService services.TimeService, out io.Writer) *App {
	return &App{
		api:    taskAPI,
		time:   timeService,
		out:    out,
		errors: NewErrorHandler(),
	}
}

// WithRelativeTimes makes the app print times as "3 hours from now"
func (a *App) WithRelativeTimes(relative bool) *App {
	a.relative = relative
	return a
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// parseID reads a positional id argument
func parseID(s string) (domain.ID, error) {
	n, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(s), "#"), 10, 64)
	if err != nil || n <= 0 {
		return 0, errors.NewInvalidInputError("id", s, "must be a positive number")
	}
	return domain.ID(n), nil
}

func parseIDs(args []string) ([]domain.ID, error) {
	ids := make([]domain.ID, 0, len(args))
	for _, arg := range args {
		id, err := parseID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

var timeShorthandRegex = regexp.MustCompile(`^(\d+)(m|h|d|w|mo|y)$`)

// parseTimeShorthand parses window lengths like "30m", "2h", "1d", "2w", "3mo" or "1y"
func parseTimeShorthand(shorthand string) (time.Duration, error) {
	matches := timeShorthandRegex.FindStringSubmatch(shorthand)
	if matches == nil {
		return 0, errors.NewInvalidInputError("window", shorthand, "expected a number followed by m, h, d, w, mo or y")
	}

	value, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, errors.NewInvalidInputError("window", shorthand, "invalid number")
	}

	day := 24 * time.Hour
	switch matches[2] {
	case "m":
		return time.Duration(value) * time.Minute, nil
	case "h":
		return time.Duration(value) * time.Hour, nil
	case "d":
		return time.Duration(value) * day, nil
	case "w":
		return time.Duration(value) * 7 * day, nil
	case "mo":
		return time.Duration(value) * 30 * day, nil
	default:
		return time.Duration(value) * 365 * day, nil
	}
}

// removeTargets checks the arguments of an rm command
func removeTargets(args []string, all bool) ([]domain.ID, error) {
	switch {
	case all && len(args) > 0:
		return nil, errors.NewInvalidInputError("id", strings.Join(args, " "), "ids cannot be combined with --all")
	case !all && len(args) == 0:
		return nil, errors.NewInvalidInputError("id", "", "give at least one id or --all")
	case all:
		return nil, nil
	}
	return parseIDs(args)
}
