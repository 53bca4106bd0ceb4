package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"task-tracker/internal/errors"
)

// ViewCommand handles the read-only reports and the clear command
type ViewCommand struct {
	app *App
}

// NewViewCommand creates a new view command handler
func NewViewCommand(app *App) *ViewCommand {
	return &ViewCommand{app: app}
}

// History prints recently viewed items, oldest first
func (c *ViewCommand) History(ctx context.Context) error {
	items, err := c.app.api.History(ctx)
	if err != nil {
		return c.app.errors.Handle("show history", err)
	}
	c.app.printItems("History", items)
	return nil
}

// Prioritized prints scheduled tasks and subtasks by start time
func (c *ViewCommand) Prioritized(ctx context.Context) error {
	items, err := c.app.api.Prioritized(ctx)
	if err != nil {
		return c.app.errors.Handle("show priorities", err)
	}
	c.app.printItems("Prioritized", items)
	return nil
}

// Upcoming prints the next limit items that have not started yet
func (c *ViewCommand) Upcoming(ctx context.Context, limit int) error {
	items, err := c.app.api.Upcoming(ctx, limit)
	if err != nil {
		return c.app.errors.Handle("show upcoming", err)
	}
	c.app.printItems("Upcoming", items)
	return nil
}

// Free prints the gaps between scheduled items in [from, from+window)
func (c *ViewCommand) Free(ctx context.Context, from time.Time, window time.Duration) error {
	slots, err := c.app.api.FreeSlots(ctx, from, from.Add(window))
	if err != nil {
		return c.app.errors.Handle("find free time", err)
	}
	c.app.printFreeSlots(slots)
	return nil
}

// Summary prints counts, planned time and the next scheduled item
func (c *ViewCommand) Summary(ctx context.Context) error {
	summary, err := c.app.api.Summary(ctx)
	if err != nil {
		return c.app.errors.Handle("summarize", err)
	}
	c.app.printSummary(summary)
	return nil
}

// Clear deletes every task, epic and subtask
func (c *ViewCommand) Clear(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return c.app.errors.Handle("clear", errors.NewInvalidInputError("yes", false, "this deletes everything, pass --yes to confirm"))
	}
	if err := c.app.api.DeleteEverything(ctx); err != nil {
		return c.app.errors.Handle("clear", err)
	}
	c.app.println("Deleted all tasks, epics and subtasks")
	return nil
}

func (r *RootCommand) newViewCommands() []*cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently viewed items",
		Long: `Show the items most recently looked at with "show", least recent first.
Each item appears once, at the position of its latest view.`,
		Args: cobra.NoArgs,
		RunE: r.withApp(func(ctx context.Context, app *App, _ *cobra.Command, _ []string) error {
			return NewViewCommand(app).History(ctx)
		}),
	}

	prioritizedCmd := &cobra.Command{
		Use:     "prioritized",
		Aliases: []string{"priorities"},
		Short:   "List scheduled tasks and subtasks by start time",
		Args:    cobra.NoArgs,
		RunE: r.withApp(func(ctx context.Context, app *App, _ *cobra.Command, _ []string) error {
			return NewViewCommand(app).Prioritized(ctx)
		}),
	}

	var limit int
	upcomingCmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List the next scheduled items",
		Args:  cobra.NoArgs,
		RunE: r.withApp(func(ctx context.Context, app *App, _ *cobra.Command, _ []string) error {
			return NewViewCommand(app).Upcoming(ctx, limit)
		}),
	}
	upcomingCmd.Flags().IntVarP(&limit, "limit", "n", 5, "Maximum number of items")

	var from string
	freeCmd := &cobra.Command{
		Use:   "free [window]",
		Short: "Show free time between scheduled items",
		Long: `Show the gaps between scheduled items.

The window supports: 30m, 2h, 1d, 2w, 3mo, 1y (default 1d)

Examples:
  tm free                     # Free time in the next day
  tm free 2w                  # Free time in the next two weeks
  tm free 8h --from "9:00"    # Free time today from 9:00 to 17:00`,
		Args: cobra.MaximumNArgs(1),
		RunE: r.withApp(func(ctx context.Context, app *App, _ *cobra.Command, args []string) error {
			window := 24 * time.Hour
			if len(args) == 1 {
				d, err := parseTimeShorthand(args[0])
				if err != nil {
					return app.errors.Handle("find free time", err)
				}
				window = d
			}
			start := app.time.Now()
			if from != "" {
				parsed, err := app.time.ParseStartTime(from)
				if err != nil {
					return app.errors.Handle("find free time", err)
				}
				start = *parsed
			}
			return NewViewCommand(app).Free(ctx, start, window)
		}),
	}
	freeCmd.Flags().StringVar(&from, "from", "", "Start of the window (default now)")

	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Show counts by status and planned time",
		Args:  cobra.NoArgs,
		RunE: r.withApp(func(ctx context.Context, app *App, _ *cobra.Command, _ []string) error {
			return NewViewCommand(app).Summary(ctx)
		}),
	}

	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every task, epic and subtask",
		Long: `Delete every task, epic and subtask and empty the history.

This operation cannot be undone. Ids are not reused afterwards.`,
		Args: cobra.NoArgs,
		RunE: r.withApp(func(ctx context.Context, app *App, _ *cobra.Command, _ []string) error {
			return NewViewCommand(app).Clear(ctx, yes)
		}),
	}
	clearCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deletion")

	return []*cobra.Command{historyCmd, prioritizedCmd, upcomingCmd, freeCmd, summaryCmd, clearCmd}
}
