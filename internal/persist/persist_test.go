package persist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/domain"
	"task-tracker/internal/manager"
)

type failingBackend struct {
	*Memory
	err error
}

func (f *failingBackend) Save(ctx context.Context, snap domain.Snapshot) error {
	if f.err != nil {
		return f.err
	}
	return f.Memory.Save(ctx, snap)
}

func at(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestWriteThrough_SavesEveryChange(t *testing.T) {
	backend := NewMemory()
	store := manager.New(manager.WithObserver(NewWriteThrough(backend, time.Second)))

	task, err := store.CreateTask(domain.NewTask("t", "", domain.StatusNew, at("2022-07-20T08:00:00Z"), time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, backend.Saves())

	_, err = store.FindTask(task.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, backend.Saves())

	snap, err := backend.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Ref{{ID: task.ID, Kind: domain.KindTask}}, snap.History)
	assert.Contains(t, snap.Tasks, task.ID)
}

func TestWriteThrough_FailedSaveDoesNotFailStore(t *testing.T) {
	boom := errors.New("disk full")
	backend := &failingBackend{Memory: NewMemory(), err: boom}
	wt := NewWriteThrough(backend, 0)
	store := manager.New(manager.WithObserver(wt))

	_, err := store.CreateTask(domain.NewTask("t", "", domain.StatusNew, nil, 0))
	require.NoError(t, err)
	assert.ErrorIs(t, wt.Err(), boom)

	backend.err = nil
	store.DeleteAllTasks()
	assert.NoError(t, wt.Err())
}

func TestOpen_RestoresStoreWithHistory(t *testing.T) {
	backend := NewMemory()
	first := manager.New(manager.WithObserver(NewWriteThrough(backend, 0)))

	epic, err := first.CreateEpic(domain.NewEpic("e", ""))
	require.NoError(t, err)
	sub, err := first.CreateSubtask(domain.NewSubtask("s", "", domain.StatusDone, at("2022-07-20T08:00:00Z"), time.Hour, epic.ID))
	require.NoError(t, err)
	_, err = first.FindSubtask(sub.ID)
	require.NoError(t, err)

	second := manager.New()
	require.NoError(t, Open(context.Background(), second, backend))

	restored, err := second.FindEpic(epic.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, restored.Status)
	assert.Equal(t, []domain.ID{sub.ID}, restored.SubtaskIDs)
	assert.Equal(t, first.NextID(), second.NextID())

	refs := second.HistoryRefs()
	require.Len(t, refs, 2)
	assert.Equal(t, sub.ID, refs[0].ID)
	assert.Equal(t, epic.ID, refs[1].ID)
}

func TestOpen_EmptyBackend(t *testing.T) {
	store := manager.New()
	require.NoError(t, Open(context.Background(), store, NewMemory()))
	assert.Empty(t, store.TaskList())
	assert.Equal(t, domain.ID(1), store.NextID())
}

func TestMemory_ReturnsCopies(t *testing.T) {
	m := NewMemory()
	snap := domain.NewSnapshot()
	snap.History = []domain.Ref{{ID: 1, Kind: domain.KindTask}}
	require.NoError(t, m.Save(context.Background(), snap))

	snap.History[0].ID = 9
	got, err := m.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.ID(1), got.History[0].ID)
	assert.NoError(t, m.Close())
}
