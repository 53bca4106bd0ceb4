package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"task-tracker/internal/api"
	"task-tracker/internal/domain"
	"task-tracker/internal/services"
)

const (
	primary   = lipgloss.Color("#fff")
	secondary = lipgloss.Color("#888")
	faded     = lipgloss.Color("#555")

	blue   = lipgloss.Color("#4db7ff")
	green  = lipgloss.Color("#00a352")
	red    = lipgloss.Color("#c42912")
	yellow = lipgloss.Color("#c4b810")
)

var (
	idStyle     = lipgloss.NewStyle().Foreground(faded)
	kindStyle   = lipgloss.NewStyle().Foreground(secondary).Width(8)
	nameStyle   = lipgloss.NewStyle().Bold(true).Foreground(primary)
	labelStyle  = lipgloss.NewStyle().Foreground(secondary).Width(12)
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	timeStyle   = lipgloss.NewStyle().Foreground(blue)
	emptyStyle  = lipgloss.NewStyle().Foreground(faded).Italic(true)
	freeStyle   = lipgloss.NewStyle().Foreground(green)
	errorStyle  = lipgloss.NewStyle().Foreground(red).Bold(true)

	statusStyles = map[domain.Status]lipgloss.Style{
		domain.StatusNew:        lipgloss.NewStyle().Foreground(blue),
		domain.StatusInProgress: lipgloss.NewStyle().Foreground(yellow).Bold(true),
		domain.StatusDone:       lipgloss.NewStyle().Foreground(green),
	}
)

func renderStatus(status domain.Status) string {
	style, ok := statusStyles[status]
	if !ok {
		style = lipgloss.NewStyle()
	}
	return style.Width(11).Render(string(status))
}

// RenderError styles a command error for the terminal
func RenderError(err error) string {
	return errorStyle.Render("Error:") + " " + err.Error()
}

// formatLine prints one item on a single line:
// #id KIND STATUS name start - end (duration)
func (a *App) formatLine(v api.TaskView) string {
	parts := []string{
		idStyle.Render(fmt.Sprintf("#%-3d", v.ID)),
		kindStyle.Render(string(v.Kind)),
		renderStatus(v.Status),
		nameStyle.Render(v.Name),
	}
	if schedule := a.formatSchedule(v); schedule != "" {
		parts = append(parts, schedule)
	}
	return strings.Join(parts, " ")
}

func (a *App) formatSchedule(v api.TaskView) string {
	duration := a.time.FormatDuration(time.Duration(v.Duration) * time.Minute)
	if v.StartTime == nil {
		if v.Duration == 0 {
			return ""
		}
		return emptyStyle.Render("unscheduled") + " (" + duration + ")"
	}
	span := a.time.FormatTime(v.StartTime, a.relative) + " - " + a.time.FormatTime(v.EndTime, a.relative)
	return timeStyle.Render(span) + " (" + duration + ")"
}

func (a *App) printHeader(title string) {
	a.println(headerStyle.Render(title))
}

func (a *App) printEmpty(what string) {
	a.println(emptyStyle.Render("No " + what + " found"))
}

func (a *App) printTaskViews(title string, views []api.TaskView) {
	a.printHeader(title)
	if len(views) == 0 {
		a.printEmpty(strings.ToLower(title))
		return
	}
	for _, v := range views {
		a.println(a.formatLine(v))
	}
}

func (a *App) printItems(title string, items []api.ItemView) {
	a.printHeader(title)
	if len(items) == 0 {
		a.printEmpty(strings.ToLower(title))
		return
	}
	for _, item := range items {
		line := a.formatLine(item.TaskView)
		if item.Kind == domain.KindSubtask {
			line += idStyle.Render(fmt.Sprintf(" (epic #%d)", item.EpicID))
		}
		a.println(line)
	}
}

func (a *App) printField(label, value string) {
	a.println(labelStyle.Render(label) + value)
}

// printDetails prints every field of v, one per line
func (a *App) printDetails(v api.TaskView) {
	a.printField("ID", fmt.Sprintf("%d", v.ID))
	a.printField("Kind", string(v.Kind))
	a.printField("Name", nameStyle.Render(v.Name))
	if v.Description != "" {
		a.printField("Description", v.Description)
	}
	a.printField("Status", renderStatus(v.Status))
	a.printField("Start", a.time.FormatTime(v.StartTime, a.relative))
	a.printField("End", a.time.FormatTime(v.EndTime, a.relative))
	a.printField("Duration", a.time.FormatDuration(time.Duration(v.Duration)*time.Minute))
}

func (a *App) printSummary(s *services.Summary) {
	a.printHeader("Summary")
	kinds := []struct {
		label string
		ks    services.KindSummary
	}{
		{"Tasks", s.Tasks},
		{"Epics", s.Epics},
		{"Subtasks", s.Subtasks},
	}
	for _, k := range kinds {
		counts := make([]string, 0, 3)
		for _, status := range []domain.Status{domain.StatusNew, domain.StatusInProgress, domain.StatusDone} {
			if n := k.ks.ByStatus[status]; n > 0 {
				counts = append(counts, fmt.Sprintf("%s %d", statusStyles[status].Render(string(status)), n))
			}
		}
		value := fmt.Sprintf("%d", k.ks.Total)
		if len(counts) > 0 {
			value += " (" + strings.Join(counts, ", ") + ")"
		}
		a.printField(k.label, value)
	}
	a.printField("Scheduled", fmt.Sprintf("%d scheduled, %d unscheduled", s.Scheduled, s.Unscheduled))
	a.printField("Planned", a.time.FormatDuration(s.Planned))
	if s.FirstStart != nil {
		a.printField("Span", timeStyle.Render(a.time.FormatTime(s.FirstStart, a.relative)+" - "+a.time.FormatTime(s.LastEnd, a.relative)))
	}
	if s.Next != nil {
		a.printField("Next", fmt.Sprintf("#%d %s at %s", s.Next.ID, s.Next.Kind, a.time.FormatTime(s.NextStart, true)))
	}
	a.printField("Viewed", fmt.Sprintf("%d items in history", s.HistoryLength))
}

func (a *App) printFreeSlots(slots []services.TimeRange) {
	a.printHeader("Free time")
	if len(slots) == 0 {
		a.printEmpty("free time")
		return
	}
	for _, slot := range slots {
		start, end := slot.Start, slot.End
		a.println(freeStyle.Render(a.time.FormatTime(&start, a.relative)+" - "+a.time.FormatTime(&end, a.relative)) +
			" (" + a.time.FormatDuration(end.Sub(start)) + ")")
	}
}
