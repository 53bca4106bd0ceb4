package manager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/domain"
	apperrors "task-tracker/internal/errors"
)

func TestAggregateOf_Status(t *testing.T) {
	tests := []struct {
		name     string
		statuses []domain.Status
		expected domain.Status
	}{
		{"no subtasks", nil, domain.StatusNew},
		{"all new", []domain.Status{domain.StatusNew, domain.StatusNew}, domain.StatusNew},
		{"all done", []domain.Status{domain.StatusDone, domain.StatusDone}, domain.StatusDone},
		{"new and done", []domain.Status{domain.StatusNew, domain.StatusDone}, domain.StatusInProgress},
		{"single in progress", []domain.Status{domain.StatusInProgress}, domain.StatusInProgress},
		{"done and in progress", []domain.Status{domain.StatusDone, domain.StatusInProgress}, domain.StatusInProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subs := make([]domain.Subtask, 0, len(tt.statuses))
			for _, st := range tt.statuses {
				subs = append(subs, newSubtask("s", st, "", 0, 1))
			}
			assert.Equal(t, tt.expected, AggregateOf(subs).Status)
		})
	}
}

func TestAggregateOf_SpanAndDuration(t *testing.T) {
	a := newSubtask("A", domain.StatusNew, "2022-07-20T10:20:00Z", 30, 1)
	b := newSubtask("B", domain.StatusNew, "2022-07-15T15:00:00Z", 150, 1)
	undated := newSubtask("C", domain.StatusNew, "", 45, 1)

	agg := AggregateOf([]domain.Subtask{a, undated, b})

	require.NotNil(t, agg.Start)
	require.NotNil(t, agg.End)
	assert.Equal(t, *at("2022-07-15T15:00:00Z"), *agg.Start)
	assert.Equal(t, *at("2022-07-20T10:50:00Z"), *agg.End)
	assert.Equal(t, 225*time.Minute, agg.Duration)
}

func TestAggregateOf_EndIsLatestEndNotLatestStart(t *testing.T) {
	long := newSubtask("long", domain.StatusNew, "2022-07-01T00:00:00Z", 60*24*10, 1)
	short := newSubtask("short", domain.StatusNew, "2022-07-02T00:00:00Z", 60, 1)

	agg := AggregateOf([]domain.Subtask{short, long})
	assert.Equal(t, *at("2022-07-11T00:00:00Z"), *agg.End)
}

func TestAggregateOf_NoDatedSubtasks(t *testing.T) {
	agg := AggregateOf([]domain.Subtask{newSubtask("s", domain.StatusDone, "", 15, 1)})

	assert.Nil(t, agg.Start)
	assert.Nil(t, agg.End)
	assert.Equal(t, 15*time.Minute, agg.Duration)
}

func TestRecomputeEpic_DanglingReferences(t *testing.T) {
	s := New()
	assertErrorType(t, s.recomputeEpic(5), apperrors.ErrorTypeDanglingReference)

	epic, err := s.CreateEpic(domain.NewEpic("e", ""))
	require.NoError(t, err)

	broken := s.epics[epic.ID]
	broken.SubtaskIDs = []domain.ID{77}
	s.epics[epic.ID] = broken
	assertErrorType(t, s.recomputeEpic(epic.ID), apperrors.ErrorTypeDanglingReference)

	other, err := s.CreateEpic(domain.NewEpic("other", ""))
	require.NoError(t, err)
	sub, err := s.CreateSubtask(newSubtask("s", domain.StatusNew, "", 0, other.ID))
	require.NoError(t, err)
	broken.SubtaskIDs = []domain.ID{sub.ID}
	s.epics[epic.ID] = broken
	assertErrorType(t, s.recomputeEpic(epic.ID), apperrors.ErrorTypeDanglingReference)
}

func TestMustRecompute_PanicsOnBrokenEpic(t *testing.T) {
	s := New()
	assert.Panics(t, func() { s.mustRecompute(5) })

	epic, err := s.CreateEpic(domain.NewEpic("e", ""))
	require.NoError(t, err)
	assert.NotPanics(t, func() { s.mustRecompute(epic.ID) })

	broken := s.epics[epic.ID]
	broken.SubtaskIDs = []domain.ID{77}
	s.epics[epic.ID] = broken
	assert.Panics(t, func() { s.mustRecompute(epic.ID) })
}
