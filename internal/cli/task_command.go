package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"task-tracker/internal/api"
	"task-tracker/internal/domain"
	"task-tracker/internal/services"
)

// itemFlags holds the flags shared by the add and update commands of tasks
// and subtasks
type itemFlags struct {
	name        string
	description string
	status      string
	start       string
	duration    string
	unschedule  bool
}

func (f *itemFlags) register(cmd *cobra.Command, update bool) {
	flags := cmd.Flags()
	if update {
		flags.StringVar(&f.name, "name", "", "New name")
		flags.BoolVar(&f.unschedule, "unschedule", false, "Remove the start time")
	}
	flags.StringVarP(&f.description, "description", "d", "", "Description")
	flags.StringVarP(&f.status, "status", "s", "", "Status: new, in-progress or done")
	flags.StringVar(&f.start, "start", "", `Start time: "now", "+2h", "14:30", "tomorrow 9:00" or "2006-01-02 15:04"`)
	flags.StringVar(&f.duration, "duration", "", `Planned duration: "90", "45m", "2h", "1h30m" or "1d"`)
}

// apply copies the flags the user actually set onto req
func (f *itemFlags) apply(req *api.TaskRequest, changed func(string) bool, ts services.TimeService) error {
	if changed("name") {
		req.Name = f.name
	}
	if changed("description") {
		req.Description = f.description
	}
	if changed("status") {
		req.Status = f.status
	}
	if changed("start") {
		start, err := ts.ParseStartTime(f.start)
		if err != nil {
			return err
		}
		req.StartTime = start
	}
	if f.unschedule {
		req.StartTime = nil
	}
	if changed("duration") {
		d, err := ts.ParseDuration(f.duration)
		if err != nil {
			return err
		}
		req.Duration = int64(d.Minutes())
	}
	return nil
}

// TaskCommand handles the task subcommands
type TaskCommand struct {
	app *App
}

// NewTaskCommand creates a new task command handler
func NewTaskCommand(app *App) *TaskCommand {
	return &TaskCommand{app: app}
}

// Add creates a task and prints it
func (c *TaskCommand) Add(ctx context.Context, req api.TaskRequest) error {
	view, err := c.app.api.CreateTask(ctx, req)
	if err != nil {
		return c.app.errors.Handle("create task", err)
	}
	c.app.printf("Created task #%d\n", view.ID)
	c.app.println(c.app.formatLine(*view))
	return nil
}

// List prints every task in id order
func (c *TaskCommand) List(ctx context.Context) error {
	views, err := c.app.api.ListTasks(ctx)
	if err != nil {
		return c.app.errors.Handle("list tasks", err)
	}
	c.app.printTaskViews("Tasks", views)
	return nil
}

// Show prints one task. Looking at a task records it in the history.
func (c *TaskCommand) Show(ctx context.Context, id domain.ID) error {
	view, err := c.app.api.GetTask(ctx, id)
	if err != nil {
		return c.app.errors.Handle("show task", err)
	}
	c.app.printDetails(*view)
	return nil
}

// Update loads the task, lets change edit the request and writes it back
func (c *TaskCommand) Update(ctx context.Context, id domain.ID, change func(*api.TaskRequest) error) error {
	current, err := c.app.api.GetTask(ctx, id)
	if err != nil {
		return c.app.errors.Handle("update task", err)
	}
	req := api.RequestFromTask(*current)
	if err := change(&req); err != nil {
		return c.app.errors.Handle("update task", err)
	}
	view, err := c.app.api.UpdateTask(ctx, id, req)
	if err != nil {
		return c.app.errors.Handle("update task", err)
	}
	c.app.printf("Updated task #%d\n", view.ID)
	c.app.println(c.app.formatLine(*view))
	return nil
}

// Remove deletes the given tasks, or every task when all is set
func (c *TaskCommand) Remove(ctx context.Context, ids []domain.ID, all bool) error {
	if all {
		if err := c.app.api.DeleteAllTasks(ctx); err != nil {
			return c.app.errors.Handle("delete tasks", err)
		}
		c.app.println("Deleted all tasks")
		return nil
	}
	for _, id := range ids {
		if err := c.app.api.DeleteTask(ctx, id); err != nil {
			return c.app.errors.Handle("delete task", err)
		}
		c.app.printf("Deleted task #%d\n", id)
	}
	return nil
}

func (r *RootCommand) newTaskCommand() *cobra.Command {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Manage standalone tasks",
	}

	var addFlags itemFlags
	addCmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Create a task",
		Long: `Create a standalone task. A task with a start time takes part in
scheduling and may not overlap any other scheduled task or subtask.

Examples:
  tm task add "write report"
  tm task add "standup" --start "tomorrow 9:30" --duration 15m
  tm task add "deploy" -s in-progress --start now --duration 1h`,
		Args: cobra.MinimumNArgs(1),
		RunE: r.withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			req := api.TaskRequest{Name: strings.Join(args, " ")}
			if err := addFlags.apply(&req, cmd.Flags().Changed, app.time); err != nil {
				return app.errors.Handle("create task", err)
			}
			return NewTaskCommand(app).Add(ctx, req)
		}),
	}
	addFlags.register(addCmd, false)

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: r.withApp(func(ctx context.Context, app *App, _ *cobra.Command, _ []string) error {
			return NewTaskCommand(app).List(ctx)
		}),
	}

	showCmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a task and record it in the history",
		Args:  cobra.ExactArgs(1),
		RunE: r.withApp(func(ctx context.Context, app *App, _ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return app.errors.Handle("show task", err)
			}
			return NewTaskCommand(app).Show(ctx, id)
		}),
	}

	var updateFlags itemFlags
	updateCmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Change fields of a task",
		Long: `Change fields of a task. Fields without a flag keep their value.

Examples:
  tm task update 4 -s done
  tm task update 4 --start "+1h" --duration 30m
  tm task update 4 --unschedule`,
		Args: cobra.ExactArgs(1),
		RunE: r.withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return app.errors.Handle("update task", err)
			}
			return NewTaskCommand(app).Update(ctx, id, func(req *api.TaskRequest) error {
				return updateFlags.apply(req, cmd.Flags().Changed, app.time)
			})
		}),
	}
	updateFlags.register(updateCmd, true)

	var removeAll bool
	removeCmd := &cobra.Command{
		Use:     "rm [id...]",
		Aliases: []string{"delete"},
		Short:   "Delete tasks",
		RunE: r.withApp(func(ctx context.Context, app *App, _ *cobra.Command, args []string) error {
			ids, err := removeTargets(args, removeAll)
			if err != nil {
				return app.errors.Handle("delete task", err)
			}
			return NewTaskCommand(app).Remove(ctx, ids, removeAll)
		}),
	}
	removeCmd.Flags().BoolVar(&removeAll, "all", false, "Delete every task")

	taskCmd.AddCommand(addCmd, listCmd, showCmd, updateCmd, removeCmd)
	return taskCmd
}
