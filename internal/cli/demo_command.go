package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"task-tracker/internal/api"
	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
	"task-tracker/internal/manager"
	"task-tracker/internal/persist"
	"task-tracker/internal/services"
)

var errOverlapAccepted = errors.NewValidationError("an overlapping task was accepted", nil)

// DemoCommand fills a throwaway store, saves it, loads it into a second
// store and prints what came back
type DemoCommand struct {
	app *App
}

// NewDemoCommand creates a demo handler that prints through app
func NewDemoCommand(app *App) *DemoCommand {
	return &DemoCommand{app: app}
}

// Execute runs the demo. Nothing touches the configured backend.
func (c *DemoCommand) Execute(ctx context.Context) error {
	backend := persist.NewMemory()
	first := manager.New(manager.WithObserver(persist.NewWriteThrough(backend, 0)))
	if err := c.fill(ctx, api.New(manager.NewSynchronized(first), c.app.time)); err != nil {
		return c.app.errors.Handle("run demo", err)
	}

	second := manager.New()
	if err := persist.Open(ctx, second, backend); err != nil {
		return c.app.errors.Handle("reload demo", err)
	}
	c.app.printf("Saved %d times, reloaded store continues at id %d\n\n", backend.Saves(), second.NextID())

	reloaded := *c.app
	reloaded.api = api.New(manager.NewSynchronized(second), c.app.time)
	views := NewViewCommand(&reloaded)
	steps := []func(context.Context) error{
		views.History,
		NewTaskCommand(&reloaded).List,
		NewEpicCommand(&reloaded).List,
		NewSubtaskCommand(&reloaded).List,
		views.Prioritized,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
		reloaded.println()
	}
	return nil
}

// fill creates two tasks, an epic with two subtasks and an empty epic,
// then looks at the second task, the second subtask and the first epic
func (c *DemoCommand) fill(ctx context.Context, taskAPI api.TaskAPI) error {
	morning := c.app.time.Now().Truncate(24 * time.Hour).Add(24*time.Hour + 9*time.Hour)
	at := func(hours int) *time.Time {
		t := morning.Add(time.Duration(hours) * time.Hour)
		return &t
	}

	task1, err := taskAPI.CreateTask(ctx, api.TaskRequest{Name: "Task 1", Description: "Description 1", Status: string(domain.StatusNew), StartTime: at(0), Duration: 60})
	if err != nil {
		return err
	}
	task2, err := taskAPI.CreateTask(ctx, api.TaskRequest{Name: "Task 2", Description: "Description 2", Status: string(domain.StatusInProgress)})
	if err != nil {
		return err
	}
	epic1, err := taskAPI.CreateEpic(ctx, api.EpicRequest{Name: "Epic 1", Description: "Description 1"})
	if err != nil {
		return err
	}
	if _, err := taskAPI.CreateSubtask(ctx, api.SubtaskRequest{
		TaskRequest: api.TaskRequest{Name: "Subtask 1 of epic 1", Description: "Description", Status: string(domain.StatusDone), StartTime: at(2), Duration: 90},
		EpicID:      epic1.ID,
	}); err != nil {
		return err
	}
	sub2, err := taskAPI.CreateSubtask(ctx, api.SubtaskRequest{
		TaskRequest: api.TaskRequest{Name: "Subtask 2 of epic 1", Description: "Description", Status: string(domain.StatusNew), StartTime: at(4), Duration: 30},
		EpicID:      epic1.ID,
	})
	if err != nil {
		return err
	}
	if _, err := taskAPI.CreateEpic(ctx, api.EpicRequest{Name: "Epic 2", Description: "Description"}); err != nil {
		return err
	}

	// Overlaps Task 1 and must be refused.
	_, err = taskAPI.CreateTask(ctx, api.TaskRequest{Name: "Clashing task", StartTime: at(0), Duration: 30})
	if err == nil {
		return errOverlapAccepted
	}
	c.app.println(RenderError(c.app.errors.HandleSimple(err)))

	if _, err := taskAPI.GetTask(ctx, task2.ID); err != nil {
		return err
	}
	if _, err := taskAPI.GetSubtask(ctx, sub2.ID); err != nil {
		return err
	}
	if _, err := taskAPI.GetEpic(ctx, epic1.ID); err != nil {
		return err
	}
	c.app.printf("Created tasks #%d and #%d, epic #%d\n", task1.ID, task2.ID, epic1.ID)
	return nil
}

func (r *RootCommand) newDemoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Walk through the store on a throwaway in-memory backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := r.app
			if app == nil {
				app = NewApp(nil, services.NewTimeService(r.config.Display.TimeFormat), r.out).
					WithRelativeTimes(r.config.Display.Relative)
			}
			return NewDemoCommand(app).Execute(cmd.Context())
		},
	}
}
