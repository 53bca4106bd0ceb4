package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"task-tracker/internal/api"
	"task-tracker/internal/domain"
)

// EpicCommand handles the epic subcommands
type EpicCommand struct {
	app *App
}

// NewEpicCommand creates a new epic command handler
func NewEpicCommand(app *App) *EpicCommand {
	return &EpicCommand{app: app}
}

// Add creates an epic with no subtasks
func (c *EpicCommand) Add(ctx context.Context, req api.EpicRequest) error {
	view, err := c.app.api.CreateEpic(ctx, req)
	if err != nil {
		return c.app.errors.Handle("create epic", err)
	}
	c.app.printf("Created epic #%d\n", view.ID)
	c.app.println(c.app.formatLine(view.TaskView))
	return nil
}

// List prints every epic with its derived status and span
func (c *EpicCommand) List(ctx context.Context) error {
	views, err := c.app.api.ListEpics(ctx)
	if err != nil {
		return c.app.errors.Handle("list epics", err)
	}
	tasks := make([]api.TaskView, len(views))
	for i, v := range views {
		tasks[i] = v.TaskView
	}
	c.app.printTaskViews("Epics", tasks)
	return nil
}

// Show prints an epic followed by its subtasks
func (c *EpicCommand) Show(ctx context.Context, id domain.ID) error {
	view, err := c.app.api.GetEpic(ctx, id)
	if err != nil {
		return c.app.errors.Handle("show epic", err)
	}
	c.app.printDetails(view.TaskView)
	c.app.println()
	return c.Subtasks(ctx, id)
}

// Subtasks prints the subtasks of an epic in their stored order
func (c *EpicCommand) Subtasks(ctx context.Context, id domain.ID) error {
	subs, err := c.app.api.EpicSubtasks(ctx, id)
	if err != nil {
		return c.app.errors.Handle("list subtasks", err)
	}
	tasks := make([]api.TaskView, len(subs))
	for i, s := range subs {
		tasks[i] = s.TaskView
	}
	c.app.printTaskViews("Subtasks", tasks)
	return nil
}

// Update renames an epic or changes its description
func (c *EpicCommand) Update(ctx context.Context, id domain.ID, name, description *string) error {
	current, err := c.app.api.GetEpic(ctx, id)
	if err != nil {
		return c.app.errors.Handle("update epic", err)
	}
	req := api.EpicRequest{Name: current.Name, Description: current.Description}
	if name != nil {
		req.Name = *name
	}
	if description != nil {
		req.Description = *description
	}
	view, err := c.app.api.UpdateEpic(ctx, id, req)
	if err != nil {
		return c.app.errors.Handle("update epic", err)
	}
	c.app.printf("Updated epic #%d\n", view.ID)
	c.app.println(c.app.formatLine(view.TaskView))
	return nil
}

// Remove deletes the given epics and their subtasks, or every epic when all is set
func (c *EpicCommand) Remove(ctx context.Context, ids []domain.ID, all bool) error {
	if all {
		if err := c.app.api.DeleteAllEpics(ctx); err != nil {
			return c.app.errors.Handle("delete epics", err)
		}
		c.app.println("Deleted all epics and subtasks")
		return nil
	}
	for _, id := range ids {
		if err := c.app.api.DeleteEpic(ctx, id); err != nil {
			return c.app.errors.Handle("delete epic", err)
		}
		c.app.printf("Deleted epic #%d\n", id)
	}
	return nil
}

func (r *RootCommand) newEpicCommand() *cobra.Command {
	epicCmd := &cobra.Command{
		Use:   "epic",
		Short: "Manage epics",
		Long: `Manage epics. An epic groups subtasks; its status, start, end and
duration are always derived from them.`,
	}

	var description string
	addCmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Create an epic",
		Args:  cobra.MinimumNArgs(1),
		RunE: r.withApp(func(ctx context.Context, app *App, _ *cobra.Command, args []string) error {
			return NewEpicCommand(app).Add(ctx, api.EpicRequest{Name: strings.Join(args, " "), Description: description})
		}),
	}
	addCmd.Flags().StringVarP(&description, "description", "d", "", "Description")

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List epics",
		Args:    cobra.NoArgs,
		RunE: r.withApp(func(ctx context.Context, app *App, _ *cobra.Command, _ []string) error {
			return NewEpicCommand(app).List(ctx)
		}),
	}

	showCmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show an epic with its subtasks",
		Args:  cobra.ExactArgs(1),
		RunE: r.withApp(func(ctx context.Context, app *App, _ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return app.errors.Handle("show epic", err)
			}
			return NewEpicCommand(app).Show(ctx, id)
		}),
	}

	subtasksCmd := &cobra.Command{
		Use:   "subtasks [id]",
		Short: "List the subtasks of an epic",
		Args:  cobra.ExactArgs(1),
		RunE: r.withApp(func(ctx context.Context, app *App, _ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return app.errors.Handle("list subtasks", err)
			}
			return NewEpicCommand(app).Subtasks(ctx, id)
		}),
	}

	var newName, newDescription string
	updateCmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Rename an epic or change its description",
		Args:  cobra.ExactArgs(1),
		RunE: r.withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return app.errors.Handle("update epic", err)
			}
			var name, desc *string
			if cmd.Flags().Changed("name") {
				name = &newName
			}
			if cmd.Flags().Changed("description") {
				desc = &newDescription
			}
			return NewEpicCommand(app).Update(ctx, id, name, desc)
		}),
	}
	updateCmd.Flags().StringVar(&newName, "name", "", "New name")
	updateCmd.Flags().StringVarP(&newDescription, "description", "d", "", "New description")

	var removeAll bool
	removeCmd := &cobra.Command{
		Use:     "rm [id...]",
		Aliases: []string{"delete"},
		Short:   "Delete epics together with their subtasks",
		RunE: r.withApp(func(ctx context.Context, app *App, _ *cobra.Command, args []string) error {
			ids, err := removeTargets(args, removeAll)
			if err != nil {
				return app.errors.Handle("delete epic", err)
			}
			return NewEpicCommand(app).Remove(ctx, ids, removeAll)
		}),
	}
	removeCmd.Flags().BoolVar(&removeAll, "all", false, "Delete every epic and subtask")

	epicCmd.AddCommand(addCmd, listCmd, showCmd, subtasksCmd, updateCmd, removeCmd)
	return epicCmd
}
