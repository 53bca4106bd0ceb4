package kv

import (
	"context"
	"encoding/json"
	"time"

	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
)

// Keys under which the snapshot parts are stored.
const (
	KeyTasks    = "tasks"
	KeySubtasks = "subtasks"
	KeyEpics    = "epics"
	KeyHistory  = "history"
	KeyMeta     = "meta"
)

type taskRecord struct {
	ID            domain.ID     `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Status        domain.Status `json:"status"`
	StartTime     *time.Time    `json:"start_time,omitempty"`
	DurationNanos int64         `json:"duration_nanos"`
}

type subtaskRecord struct {
	taskRecord
	EpicID domain.ID `json:"epic_id"`
}

type epicRecord struct {
	taskRecord
	EndTime    *time.Time  `json:"end_time,omitempty"`
	SubtaskIDs []domain.ID `json:"subtask_ids"`
}

type metaRecord struct {
	NextID domain.ID `json:"next_id"`
}

// Backend stores a snapshot as JSON documents in a kv Server.
type Backend struct {
	client *Client
}

// NewBackend creates a Backend using client.
func NewBackend(client *Client) *Backend {
	return &Backend{client: client}
}

// Save writes every part of snap. Parts are written one key at a time, so a
// failure part way leaves earlier keys updated.
func (b *Backend) Save(ctx context.Context, snap domain.Snapshot) error {
	tasks := make([]taskRecord, 0, len(snap.Tasks))
	for _, id := range domain.SortedIDs(snap.Tasks) {
		tasks = append(tasks, toRecord(snap.Tasks[id]))
	}
	subtasks := make([]subtaskRecord, 0, len(snap.Subtasks))
	for _, id := range domain.SortedIDs(snap.Subtasks) {
		st := snap.Subtasks[id]
		subtasks = append(subtasks, subtaskRecord{taskRecord: toRecord(st.Task), EpicID: st.EpicID})
	}
	epics := make([]epicRecord, 0, len(snap.Epics))
	for _, id := range domain.SortedIDs(snap.Epics) {
		e := snap.Epics[id]
		ids := e.SubtaskIDs
		if ids == nil {
			ids = []domain.ID{}
		}
		epics = append(epics, epicRecord{taskRecord: toRecord(e.Task), EndTime: e.End, SubtaskIDs: ids})
	}
	history := snap.History
	if history == nil {
		history = []domain.Ref{}
	}

	parts := []struct {
		key   string
		value any
	}{
		{KeyTasks, tasks},
		{KeyEpics, epics},
		{KeySubtasks, subtasks},
		{KeyHistory, history},
		{KeyMeta, metaRecord{NextID: snap.NextID}},
	}
	for _, p := range parts {
		data, err := json.Marshal(p.value)
		if err != nil {
			return errors.WrapError(err, errors.ErrorTypeTransport, "encode "+p.key)
		}
		if err := b.client.Put(ctx, p.key, string(data)); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the snapshot back. Keys that were never written count as empty.
func (b *Backend) Load(ctx context.Context) (domain.Snapshot, error) {
	snap := domain.NewSnapshot()

	var tasks []taskRecord
	if err := b.load(ctx, KeyTasks, &tasks); err != nil {
		return domain.Snapshot{}, err
	}
	for _, r := range tasks {
		snap.Tasks[r.ID] = r.toTask()
	}

	var epics []epicRecord
	if err := b.load(ctx, KeyEpics, &epics); err != nil {
		return domain.Snapshot{}, err
	}
	for _, r := range epics {
		e := domain.Epic{Task: r.toTask(), End: r.EndTime}
		if len(r.SubtaskIDs) > 0 {
			e.SubtaskIDs = r.SubtaskIDs
		}
		snap.Epics[r.ID] = e
	}

	var subtasks []subtaskRecord
	if err := b.load(ctx, KeySubtasks, &subtasks); err != nil {
		return domain.Snapshot{}, err
	}
	for _, r := range subtasks {
		snap.Subtasks[r.ID] = domain.Subtask{Task: r.toTask(), EpicID: r.EpicID}
	}

	if err := b.load(ctx, KeyHistory, &snap.History); err != nil {
		return domain.Snapshot{}, err
	}

	meta := metaRecord{NextID: snap.MaxID() + 1}
	if err := b.load(ctx, KeyMeta, &meta); err != nil {
		return domain.Snapshot{}, err
	}
	snap.NextID = meta.NextID
	return snap, nil
}

// Close is a no-op; the client holds no resources beyond idle connections.
func (b *Backend) Close() error {
	return nil
}

func (b *Backend) load(ctx context.Context, key string, dst any) error {
	raw, err := b.client.Load(ctx, key)
	if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return errors.WrapError(err, errors.ErrorTypeTransport, "decode "+key)
	}
	return nil
}

func toRecord(t domain.Task) taskRecord {
	return taskRecord{
		ID:            t.ID,
		Name:          t.Name,
		Description:   t.Description,
		Status:        t.Status,
		StartTime:     t.StartTime,
		DurationNanos: int64(t.Duration),
	}
}

func (r taskRecord) toTask() domain.Task {
	return domain.Task{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Status:      r.Status,
		StartTime:   r.StartTime,
		Duration:    time.Duration(r.DurationNanos),
	}
}
