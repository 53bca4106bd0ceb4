package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"task-tracker/internal/api"
	"task-tracker/internal/domain"
)

// SubtaskCommand handles the subtask subcommands
type SubtaskCommand struct {
	app *App
}

// NewSubtaskCommand creates a new subtask command handler
func NewSubtaskCommand(app *App) *SubtaskCommand {
	return &SubtaskCommand{app: app}
}

// Add creates a subtask under req.EpicID
func (c *SubtaskCommand) Add(ctx context.Context, req api.SubtaskRequest) error {
	view, err := c.app.api.CreateSubtask(ctx, req)
	if err != nil {
		return c.app.errors.Handle("create subtask", err)
	}
	c.app.printf("Created subtask #%d in epic #%d\n", view.ID, view.EpicID)
	c.app.println(c.app.formatLine(view.TaskView))
	return nil
}

// List prints every subtask together with its epic
func (c *SubtaskCommand) List(ctx context.Context) error {
	views, err := c.app.api.ListSubtasks(ctx)
	if err != nil {
		return c.app.errors.Handle("list subtasks", err)
	}
	items := make([]api.ItemView, len(views))
	for i, v := range views {
		items[i] = api.ItemView{TaskView: v.TaskView, EpicID: v.EpicID}
	}
	c.app.printItems("Subtasks", items)
	return nil
}

// Show prints one subtask. Looking at it records it in the history.
func (c *SubtaskCommand) Show(ctx context.Context, id domain.ID) error {
	view, err := c.app.api.GetSubtask(ctx, id)
	if err != nil {
		return c.app.errors.Handle("show subtask", err)
	}
	c.app.printDetails(view.TaskView)
	c.app.printField("Epic", "#"+view.EpicID.String())
	return nil
}

// Update loads the subtask, lets change edit the request and writes it back.
// Changing the epic moves the subtask.
func (c *SubtaskCommand) Update(ctx context.Context, id domain.ID, change func(*api.SubtaskRequest) error) error {
	current, err := c.app.api.GetSubtask(ctx, id)
	if err != nil {
		return c.app.errors.Handle("update subtask", err)
	}
	req := api.SubtaskRequest{TaskRequest: api.RequestFromTask(current.TaskView), EpicID: current.EpicID}
	if err := change(&req); err != nil {
		return c.app.errors.Handle("update subtask", err)
	}
	view, err := c.app.api.UpdateSubtask(ctx, id, req)
	if err != nil {
		return c.app.errors.Handle("update subtask", err)
	}
	c.app.printf("Updated subtask #%d in epic #%d\n", view.ID, view.EpicID)
	c.app.println(c.app.formatLine(view.TaskView))
	return nil
}

// Remove deletes the given subtasks, or every subtask when all is set
func (c *SubtaskCommand) Remove(ctx context.Context, ids []domain.ID, all bool) error {
	if all {
		if err := c.app.api.DeleteAllSubtasks(ctx); err != nil {
			return c.app.errors.Handle("delete subtasks", err)
		}
		c.app.println("Deleted all subtasks")
		return nil
	}
	for _, id := range ids {
		if err := c.app.api.DeleteSubtask(ctx, id); err != nil {
			return c.app.errors.Handle("delete subtask", err)
		}
		c.app.printf("Deleted subtask #%d\n", id)
	}
	return nil
}

func (r *RootCommand) newSubtaskCommand() *cobra.Command {
	subtaskCmd := &cobra.Command{
		Use:     "subtask",
		Aliases: []string{"sub"},
		Short:   "Manage subtasks of epics",
	}

	var addFlags itemFlags
	addCmd := &cobra.Command{
		Use:   "add [epic id] [name]",
		Short: "Create a subtask in an epic",
		Long: `Create a subtask in an existing epic. Scheduled subtasks may not
overlap any other scheduled task or subtask.

Examples:
  tm subtask add 3 "write tests" --duration 2h
  tm subtask add 3 "review" --start "tomorrow 14:00" --duration 30m`,
		Args: cobra.MinimumNArgs(2),
		RunE: r.withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			epicID, err := parseID(args[0])
			if err != nil {
				return app.errors.Handle("create subtask", err)
			}
			req := api.SubtaskRequest{
				TaskRequest: api.TaskRequest{Name: strings.Join(args[1:], " ")},
				EpicID:      epicID,
			}
			if err := addFlags.apply(&req.TaskRequest, cmd.Flags().Changed, app.time); err != nil {
				return app.errors.Handle("create subtask", err)
			}
			return NewSubtaskCommand(app).Add(ctx, req)
		}),
	}
	addFlags.register(addCmd, false)

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List subtasks",
		Args:    cobra.NoArgs,
		RunE: r.withApp(func(ctx context.Context, app *App, _ *cobra.Command, _ []string) error {
			return NewSubtaskCommand(app).List(ctx)
		}),
	}

	showCmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a subtask and record it in the history",
		Args:  cobra.ExactArgs(1),
		RunE: r.withApp(func(ctx context.Context, app *App, _ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return app.errors.Handle("show subtask", err)
			}
			return NewSubtaskCommand(app).Show(ctx, id)
		}),
	}

	var updateFlags itemFlags
	var moveTo string
	updateCmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Change fields of a subtask or move it to another epic",
		Args:  cobra.ExactArgs(1),
		RunE: r.withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return app.errors.Handle("update subtask", err)
			}
			return NewSubtaskCommand(app).Update(ctx, id, func(req *api.SubtaskRequest) error {
				if cmd.Flags().Changed("epic") {
					epicID, err := parseID(moveTo)
					if err != nil {
						return err
					}
					req.EpicID = epicID
				}
				return updateFlags.apply(&req.TaskRequest, cmd.Flags().Changed, app.time)
			})
		}),
	}
	updateFlags.register(updateCmd, true)
	updateCmd.Flags().StringVar(&moveTo, "epic", "", "Move the subtask to this epic")

	var removeAll bool
	removeCmd := &cobra.Command{
		Use:     "rm [id...]",
		Aliases: []string{"delete"},
		Short:   "Delete subtasks",
		RunE: r.withApp(func(ctx context.Context, app *App, _ *cobra.Command, args []string) error {
			ids, err := removeTargets(args, removeAll)
			if err != nil {
				return app.errors.Handle("delete subtask", err)
			}
			return NewSubtaskCommand(app).Remove(ctx, ids, removeAll)
		}),
	}
	removeCmd.Flags().BoolVar(&removeAll, "all", false, "Delete every subtask")

	subtaskCmd.AddCommand(addCmd, listCmd, showCmd, updateCmd, removeCmd)
	return subtaskCmd
}
