package manager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/domain"
	apperrors "task-tracker/internal/errors"
)

func populated(t *testing.T) *Store {
	t.Helper()
	s := New()
	_, err := s.CreateTask(newTask("t1", "2022-07-14T09:00:00Z", 60))
	require.NoError(t, err)
	epic, err := s.CreateEpic(domain.NewEpic("e", "d"))
	require.NoError(t, err)
	_, err = s.CreateSubtask(newSubtask("a", domain.StatusDone, "2022-07-20T10:20:00Z", 30, epic.ID))
	require.NoError(t, err)
	_, err = s.CreateSubtask(newSubtask("b", domain.StatusNew, "2022-07-15T15:00:00Z", 150, epic.ID))
	require.NoError(t, err)
	_, err = s.CreateTask(newTask("t2", "", 10))
	require.NoError(t, err)
	_, err = s.FindSubtask(3)
	require.NoError(t, err)
	_, err = s.FindTask(1)
	require.NoError(t, err)
	return s
}

func TestSnapshot_Contents(t *testing.T) {
	s := populated(t)
	snap := s.Snapshot()

	assert.Len(t, snap.Tasks, 2)
	assert.Len(t, snap.Epics, 1)
	assert.Len(t, snap.Subtasks, 2)
	assert.Equal(t, []domain.ID{1, 4, 3}, snap.Prioritized)
	assert.Equal(t, []domain.Ref{{ID: 3, Kind: domain.KindSubtask}, {ID: 1, Kind: domain.KindTask}}, snap.History)
	assert.Equal(t, domain.ID(6), snap.NextID)

	e := snap.Epics[2]
	e.SubtaskIDs[0] = 99
	assert.Equal(t, []domain.ID{3, 4}, s.EpicList()[0].SubtaskIDs, "snapshot is detached")
}

func TestRestore_RoundTrip(t *testing.T) {
	src := populated(t)
	snap := src.Snapshot()

	dst := New()
	require.NoError(t, dst.Restore(snap, ReplayHistory()))

	assert.Equal(t, src.TaskList(), dst.TaskList())
	assert.Equal(t, src.EpicList(), dst.EpicList())
	assert.Equal(t, src.SubtaskList(), dst.SubtaskList())
	assert.Equal(t, itemIDs(src.Prioritized()), itemIDs(dst.Prioritized()))
	assert.Equal(t, src.HistoryRefs(), dst.HistoryRefs())
	assert.Equal(t, src.NextID(), dst.NextID())
}

func TestRestore_WithoutReplayLeavesHistoryEmpty(t *testing.T) {
	dst := New()
	require.NoError(t, dst.Restore(populated(t).Snapshot()))

	assert.Empty(t, dst.History())
	assert.Len(t, dst.TaskList(), 2)
}

func TestRestore_AdvancesIDGenerator(t *testing.T) {
	snap := domain.NewSnapshot()
	task := newTask("t", "", 0)
	task.ID = 41
	snap.Tasks[41] = task
	snap.NextID = 0

	s := New()
	require.NoError(t, s.Restore(snap))

	created, err := s.CreateTask(newTask("new", "", 0))
	require.NoError(t, err)
	assert.Equal(t, domain.ID(42), created.ID)
}

func TestRestore_RecomputesEpicFromSubtasks(t *testing.T) {
	snap := domain.NewSnapshot()
	epic := domain.NewEpic("e", "")
	epic.ID = 1
	epic.Status = domain.StatusDone
	epic.SubtaskIDs = []domain.ID{3, 2}
	snap.Epics[1] = epic
	for _, id := range []domain.ID{2, 3} {
		sub := newSubtask("s", domain.StatusNew, "", 10, 1)
		sub.ID = id
		snap.Subtasks[id] = sub
	}

	s := New()
	require.NoError(t, s.Restore(snap))

	got := s.EpicList()[0]
	assert.Equal(t, domain.StatusNew, got.Status)
	assert.Equal(t, []domain.ID{3, 2}, got.SubtaskIDs, "subtask order survives restore")
	assert.Equal(t, int64(20), int64(got.Duration.Minutes()))
}

func TestRestore_FailureLeavesStoreUntouched(t *testing.T) {
	s := populated(t)
	before := s.Snapshot()

	snap := domain.NewSnapshot()
	for _, id := range []domain.ID{1, 2} {
		task := newTask("clash", "2022-07-15T15:00:00Z", 30)
		task.ID = id
		snap.Tasks[id] = task
	}
	err := s.Restore(snap)
	assertErrorType(t, err, apperrors.ErrorTypeTimeConflict)

	assert.Equal(t, before, s.Snapshot())
}

func TestRestore_DanglingSubtask(t *testing.T) {
	snap := domain.NewSnapshot()
	sub := newSubtask("s", domain.StatusNew, "", 0, 9)
	sub.ID = 1
	snap.Subtasks[1] = sub

	err := New().Restore(snap)
	assertErrorType(t, err, apperrors.ErrorTypeDanglingReference)
}

func TestRestoreTask_RejectsUsedOrInvalidID(t *testing.T) {
	s := New()
	created, err := s.CreateTask(newTask("t", "", 0))
	require.NoError(t, err)

	dup := newTask("dup", "", 0)
	dup.ID = created.ID
	assertErrorType(t, s.RestoreTask(dup), apperrors.ErrorTypeInvalidInput)

	zero := newTask("zero", "", 0)
	assertErrorType(t, s.RestoreTask(zero), apperrors.ErrorTypeInvalidInput)
}

func TestRestoreTask_DoesNotTouchHistoryOrNotify(t *testing.T) {
	notified := 0
	s := New(WithObserver(ObserverFunc(func(*Store, Event) { notified++ })))

	task := newTask("t", "2022-07-15T15:00:00Z", 30)
	task.ID = 10
	require.NoError(t, s.RestoreTask(task))

	assert.Empty(t, s.History())
	assert.Zero(t, notified)
	assert.Equal(t, domain.ID(11), s.NextID())
	assert.Len(t, s.Prioritized(), 1)
}

func TestRestoreSubtask_AttachesToEpic(t *testing.T) {
	s := New()
	epic := domain.NewEpic("e", "")
	epic.ID = 5
	require.NoError(t, s.RestoreEpic(epic))

	sub := newSubtask("s", domain.StatusDone, "2022-07-15T15:00:00Z", 30, 5)
	sub.ID = 6
	require.NoError(t, s.RestoreSubtask(sub))

	got, err := s.FindEpic(5)
	require.NoError(t, err)
	assert.Equal(t, []domain.ID{6}, got.SubtaskIDs)
	assert.Equal(t, domain.StatusDone, got.Status)
}
