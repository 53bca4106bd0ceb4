package api

import (
	"strings"
	"time"

	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
)

// TaskView is the outward form of a task. Durations are whole minutes.
type TaskView struct {
	ID          domain.ID     `json:"id"`
	Kind        domain.Kind   `json:"kind"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      domain.Status `json:"status"`
	StartTime   *time.Time    `json:"startTime,omitempty"`
	EndTime     *time.Time    `json:"endTime,omitempty"`
	Duration    int64         `json:"duration"`
}

// SubtaskView adds the owning epic to a TaskView.
type SubtaskView struct {
	TaskView
	EpicID domain.ID `json:"epicId"`
}

// EpicView adds the subtask list to a TaskView. Status, times and duration
// are derived from the subtasks.
type EpicView struct {
	TaskView
	SubtaskIDs []domain.ID `json:"subtaskIds"`
}

// ItemView is any of the three kinds, used for history and priority lists.
type ItemView struct {
	TaskView
	EpicID     domain.ID   `json:"epicId,omitempty"`
	SubtaskIDs []domain.ID `json:"subtaskIds,omitempty"`
}

// TaskRequest carries the caller-settable fields of a task.
type TaskRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	StartTime   *time.Time `json:"startTime"`
	Duration    int64      `json:"duration"`
}

// SubtaskRequest is a TaskRequest bound to an epic.
type SubtaskRequest struct {
	TaskRequest
	EpicID domain.ID `json:"epicId"`
}

// EpicRequest carries the caller-settable fields of an epic.
type EpicRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ToTask converts the request. An empty status means NEW.
func (r TaskRequest) ToTask() (domain.Task, error) {
	status := domain.StatusNew
	if strings.TrimSpace(r.Status) != "" {
		parsed, err := domain.ParseStatus(r.Status)
		if err != nil {
			return domain.Task{}, errors.NewInvalidInputError("status", r.Status, "must be NEW, IN_PROGRESS or DONE")
		}
		status = parsed
	}
	if r.Duration < 0 {
		return domain.Task{}, errors.NewInvalidInputError("duration", r.Duration, "must not be negative")
	}
	return domain.NewTask(r.Name, r.Description, status, r.StartTime, time.Duration(r.Duration)*time.Minute), nil
}

// ToSubtask converts the request.
func (r SubtaskRequest) ToSubtask() (domain.Subtask, error) {
	task, err := r.TaskRequest.ToTask()
	if err != nil {
		return domain.Subtask{}, err
	}
	return domain.Subtask{Task: task, EpicID: r.EpicID}, nil
}

// ToEpic converts the request.
func (r EpicRequest) ToEpic() domain.Epic {
	return domain.NewEpic(r.Name, r.Description)
}

// RequestFromTask builds the request that would recreate t, for callers that
// change a few fields and send the rest back unchanged.
func RequestFromTask(t TaskView) TaskRequest {
	return TaskRequest{
		Name:        t.Name,
		Description: t.Description,
		Status:      string(t.Status),
		StartTime:   t.StartTime,
		Duration:    t.Duration,
	}
}

// NewTaskView converts a task.
func NewTaskView(t domain.Task) TaskView {
	return TaskView{
		ID:          t.ID,
		Kind:        domain.KindTask,
		Name:        t.Name,
		Description: t.Description,
		Status:      t.Status,
		StartTime:   t.StartTime,
		EndTime:     t.EndTime(),
		Duration:    int64(t.Duration / time.Minute),
	}
}

// NewSubtaskView converts a subtask.
func NewSubtaskView(s domain.Subtask) SubtaskView {
	v := NewTaskView(s.Task)
	v.Kind = domain.KindSubtask
	return SubtaskView{TaskView: v, EpicID: s.EpicID}
}

// NewEpicView converts an epic.
func NewEpicView(e domain.Epic) EpicView {
	v := NewTaskView(e.Task)
	v.Kind = domain.KindEpic
	v.EndTime = e.EndTime()
	ids := e.SubtaskIDs
	if ids == nil {
		ids = []domain.ID{}
	}
	return EpicView{TaskView: v, SubtaskIDs: ids}
}

// NewItemView converts any item.
func NewItemView(item domain.Item) ItemView {
	switch v := item.(type) {
	case domain.Epic:
		ev := NewEpicView(v)
		return ItemView{TaskView: ev.TaskView, SubtaskIDs: ev.SubtaskIDs}
	case domain.Subtask:
		sv := NewSubtaskView(v)
		return ItemView{TaskView: sv.TaskView, EpicID: sv.EpicID}
	case domain.Task:
		return ItemView{TaskView: NewTaskView(v)}
	}
	return ItemView{}
}

func mapSlice[T, V any](in []T, f func(T) V) []V {
	out := make([]V, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}
