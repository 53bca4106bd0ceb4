// Package api is the application facade shared by the command line and the
// HTTP server. It serialises access to the store and speaks in views and
// requests rather than domain values.
package api

import (
	"context"
	"time"

	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
	"task-tracker/internal/manager"
	"task-tracker/internal/schedule"
	"task-tracker/internal/services"
)

// TaskAPI defines every operation the outer layers may perform
type TaskAPI interface {
	// ========== Tasks ==========
	CreateTask(ctx context.Context, req TaskRequest) (*TaskView, error)
	ListTasks(ctx context.Context) ([]TaskView, error)
	// GetTask returns the task and records the view in the history
	GetTask(ctx context.Context, id domain.ID) (*TaskView, error)
	// UpdateTask replaces every field of task id with req
	UpdateTask(ctx context.Context, id domain.ID, req TaskRequest) (*TaskView, error)
	DeleteTask(ctx context.Context, id domain.ID) error
	DeleteAllTasks(ctx context.Context) error

	// ========== Epics ==========
	CreateEpic(ctx context.Context, req EpicRequest) (*EpicView, error)
	ListEpics(ctx context.Context) ([]EpicView, error)
	GetEpic(ctx context.Context, id domain.ID) (*EpicView, error)
	// UpdateEpic changes name and description; derived fields stay derived
	UpdateEpic(ctx context.Context, id domain.ID, req EpicRequest) (*EpicView, error)
	// DeleteEpic removes the epic together with its subtasks
	DeleteEpic(ctx context.Context, id domain.ID) error
	DeleteAllEpics(ctx context.Context) error
	EpicSubtasks(ctx context.Context, id domain.ID) ([]SubtaskView, error)

	// ========== Subtasks ==========
	CreateSubtask(ctx context.Context, req SubtaskRequest) (*SubtaskView, error)
	ListSubtasks(ctx context.Context) ([]SubtaskView, error)
	GetSubtask(ctx context.Context, id domain.ID) (*SubtaskView, error)
	UpdateSubtask(ctx context.Context, id domain.ID, req SubtaskRequest) (*SubtaskView, error)
	DeleteSubtask(ctx context.Context, id domain.ID) error
	DeleteAllSubtasks(ctx context.Context) error

	// ========== Views ==========
	// History lists viewed items, least recent first
	History(ctx context.Context) ([]ItemView, error)
	// Prioritized lists dated tasks and subtasks by start time
	Prioritized(ctx context.Context) ([]ItemView, error)
	Upcoming(ctx context.Context, limit int) ([]ItemView, error)
	FreeSlots(ctx context.Context, from, to time.Time) ([]services.TimeRange, error)
	Summary(ctx context.Context) (*services.Summary, error)

	// DeleteEverything empties the store; ids keep counting up
	DeleteEverything(ctx context.Context) error
}

// taskAPI implements TaskAPI over a shared store
type taskAPI struct {
	store     *manager.Synchronized
	reporting services.ReportingService
	time      services.TimeService
}

// New creates a TaskAPI on store
func New(store *manager.Synchronized, timeService services.TimeService) TaskAPI {
	return &taskAPI{
		store:     store,
		reporting: services.NewReportingService(),
		time:      timeService,
	}
}

// do checks ctx and runs fn with exclusive access to the store
func (a *taskAPI) do(ctx context.Context, fn func(*manager.Store) error) error {
	if err := ctx.Err(); err != nil {
		return errors.WrapError(err, errors.ErrorTypeTimeout, "request cancelled")
	}
	return a.store.Do(fn)
}

// ========== Tasks ==========

func (a *taskAPI) CreateTask(ctx context.Context, req TaskRequest) (*TaskView, error) {
	task, err := req.ToTask()
	if err != nil {
		return nil, err
	}
	var view TaskView
	err = a.do(ctx, func(s *manager.Store) error {
		created, err := s.CreateTask(task)
		view = NewTaskView(created)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (a *taskAPI) ListTasks(ctx context.Context) ([]TaskView, error) {
	var views []TaskView
	err := a.do(ctx, func(s *manager.Store) error {
		views = mapSlice(s.TaskList(), NewTaskView)
		return nil
	})
	return views, err
}

func (a *taskAPI) GetTask(ctx context.Context, id domain.ID) (*TaskView, error) {
	var view TaskView
	err := a.do(ctx, func(s *manager.Store) error {
		task, err := s.FindTask(id)
		view = NewTaskView(task)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (a *taskAPI) UpdateTask(ctx context.Context, id domain.ID, req TaskRequest) (*TaskView, error) {
	task, err := req.ToTask()
	if err != nil {
		return nil, err
	}
	task.ID = id
	var view TaskView
	err = a.do(ctx, func(s *manager.Store) error {
		updated, err := s.UpdateTask(task)
		view = NewTaskView(updated)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (a *taskAPI) DeleteTask(ctx context.Context, id domain.ID) error {
	return a.do(ctx, func(s *manager.Store) error { return s.DeleteTask(id) })
}

func (a *taskAPI) DeleteAllTasks(ctx context.Context) error {
	return a.do(ctx, func(s *manager.Store) error {
		s.DeleteAllTasks()
		return nil
	})
}

// ========== Epics ==========

func (a *taskAPI) CreateEpic(ctx context.Context, req EpicRequest) (*EpicView, error) {
	var view EpicView
	err := a.do(ctx, func(s *manager.Store) error {
		created, err := s.CreateEpic(req.ToEpic())
		view = NewEpicView(created)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (a *taskAPI) ListEpics(ctx context.Context) ([]EpicView, error) {
	var views []EpicView
	err := a.do(ctx, func(s *manager.Store) error {
		views = mapSlice(s.EpicList(), NewEpicView)
		return nil
	})
	return views, err
}

func (a *taskAPI) GetEpic(ctx context.Context, id domain.ID) (*EpicView, error) {
	var view EpicView
	err := a.do(ctx, func(s *manager.Store) error {
		epic, err := s.FindEpic(id)
		view = NewEpicView(epic)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (a *taskAPI) UpdateEpic(ctx context.Context, id domain.ID, req EpicRequest) (*EpicView, error) {
	epic := req.ToEpic()
	epic.ID = id
	var view EpicView
	err := a.do(ctx, func(s *manager.Store) error {
		updated, err := s.UpdateEpic(epic)
		view = NewEpicView(updated)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (a *taskAPI) DeleteEpic(ctx context.Context, id domain.ID) error {
	return a.do(ctx, func(s *manager.Store) error { return s.DeleteEpic(id) })
}

func (a *taskAPI) DeleteAllEpics(ctx context.Context) error {
	return a.do(ctx, func(s *manager.Store) error {
		s.DeleteAllEpics()
		return nil
	})
}

func (a *taskAPI) EpicSubtasks(ctx context.Context, id domain.ID) ([]SubtaskView, error) {
	var views []SubtaskView
	err := a.do(ctx, func(s *manager.Store) error {
		subs, err := s.EpicSubtasks(id)
		views = mapSlice(subs, NewSubtaskView)
		return err
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

// ========== Subtasks ==========

func (a *taskAPI) CreateSubtask(ctx context.Context, req SubtaskRequest) (*SubtaskView, error) {
	sub, err := req.ToSubtask()
	if err != nil {
		return nil, err
	}
	var view SubtaskView
	err = a.do(ctx, func(s *manager.Store) error {
		created, err := s.CreateSubtask(sub)
		view = NewSubtaskView(created)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (a *taskAPI) ListSubtasks(ctx context.Context) ([]SubtaskView, error) {
	var views []SubtaskView
	err := a.do(ctx, func(s *manager.Store) error {
		views = mapSlice(s.SubtaskList(), NewSubtaskView)
		return nil
	})
	return views, err
}

func (a *taskAPI) GetSubtask(ctx context.Context, id domain.ID) (*SubtaskView, error) {
	var view SubtaskView
	err := a.do(ctx, func(s *manager.Store) error {
		sub, err := s.FindSubtask(id)
		view = NewSubtaskView(sub)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (a *taskAPI) UpdateSubtask(ctx context.Context, id domain.ID, req SubtaskRequest) (*SubtaskView, error) {
	sub, err := req.ToSubtask()
	if err != nil {
		return nil, err
	}
	sub.ID = id
	var view SubtaskView
	err = a.do(ctx, func(s *manager.Store) error {
		updated, err := s.UpdateSubtask(sub)
		view = NewSubtaskView(updated)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (a *taskAPI) DeleteSubtask(ctx context.Context, id domain.ID) error {
	return a.do(ctx, func(s *manager.Store) error { return s.DeleteSubtask(id) })
}

func (a *taskAPI) DeleteAllSubtasks(ctx context.Context) error {
	return a.do(ctx, func(s *manager.Store) error {
		s.DeleteAllSubtasks()
		return nil
	})
}

// ========== Views ==========

func (a *taskAPI) History(ctx context.Context) ([]ItemView, error) {
	var views []ItemView
	err := a.do(ctx, func(s *manager.Store) error {
		views = mapSlice(s.History(), NewItemView)
		return nil
	})
	return views, err
}

func (a *taskAPI) Prioritized(ctx context.Context) ([]ItemView, error) {
	var views []ItemView
	err := a.do(ctx, func(s *manager.Store) error {
		views = make([]ItemView, 0)
		for item := range s.PrioritizedSeq() {
			views = append(views, NewItemView(item))
		}
		return nil
	})
	return views, err
}

func (a *taskAPI) Upcoming(ctx context.Context, limit int) ([]ItemView, error) {
	var views []ItemView
	err := a.do(ctx, func(s *manager.Store) error {
		items := a.reporting.Upcoming(s.Prioritized(), a.time.Now(), limit)
		views = mapSlice(items, NewItemView)
		return nil
	})
	return views, err
}

func (a *taskAPI) FreeSlots(ctx context.Context, from, to time.Time) ([]services.TimeRange, error) {
	if !from.Before(to) {
		return nil, errors.NewInvalidInputError("to", to, "must be after the start of the window")
	}
	var slots []services.TimeRange
	err := a.do(ctx, func(s *manager.Store) error {
		gaps := a.reporting.FreeSlots(s.Prioritized(), schedule.Interval{Start: from, End: to})
		slots = mapSlice(gaps, func(iv schedule.Interval) services.TimeRange {
			return services.TimeRange{Start: iv.Start, End: iv.End}
		})
		return nil
	})
	return slots, err
}

func (a *taskAPI) Summary(ctx context.Context) (*services.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeTimeout, "request cancelled")
	}
	return a.reporting.Summarize(a.store.Snapshot(), a.time.Now()), nil
}

func (a *taskAPI) DeleteEverything(ctx context.Context) error {
	return a.do(ctx, func(s *manager.Store) error {
		s.DeleteEverything()
		return nil
	})
}
