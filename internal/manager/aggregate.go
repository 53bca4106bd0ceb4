package manager

import (
	"fmt"
	"slices"
	"time"

	"task-tracker/internal/domain"
	apperrors "task-tracker/internal/errors"
	"task-tracker/internal/schedule"
)

// Aggregate is what an epic derives from its subtasks.
type Aggregate struct {
	Status   domain.Status
	Start    *time.Time
	End      *time.Time
	Duration time.Duration
}

// AggregateOf computes the roll-up of subs from scratch.
//
// Status is NEW with no subtasks or when all are NEW, DONE when all are DONE
// and IN_PROGRESS for any other mix. Start is the earliest start among dated
// subtasks and End the latest end; both are nil when none is dated. Duration
// sums every subtask, dated or not.
func AggregateOf(subs []domain.Subtask) Aggregate {
	agg := Aggregate{Status: aggregateStatus(subs)}

	dated := make([]domain.Subtask, 0, len(subs))
	for _, sub := range subs {
		agg.Duration += sub.Duration
		if sub.IsDated() {
			dated = append(dated, sub)
		}
	}
	if len(dated) == 0 {
		return agg
	}

	slices.SortFunc(dated, func(a, b domain.Subtask) int {
		if schedule.Before(a, b) {
			return -1
		}
		if schedule.Before(b, a) {
			return 1
		}
		return 0
	})
	start := *dated[0].StartTime
	agg.Start = &start
	for _, sub := range dated {
		if end := sub.EndTime(); agg.End == nil || end.After(*agg.End) {
			agg.End = end
		}
	}
	return agg
}

func aggregateStatus(subs []domain.Subtask) domain.Status {
	if len(subs) == 0 {
		return domain.StatusNew
	}
	var fresh, done int
	for _, sub := range subs {
		switch sub.Status {
		case domain.StatusNew:
			fresh++
		case domain.StatusDone:
			done++
		}
	}
	switch {
	case fresh == len(subs):
		return domain.StatusNew
	case done == len(subs):
		return domain.StatusDone
	default:
		return domain.StatusInProgress
	}
}

// recomputeEpic rewrites the derived fields of an epic from its current
// subtasks. A missing epic or a subtask id without a record means the store's
// invariants were broken and is reported as a dangling reference.
func (s *Store) recomputeEpic(id domain.ID) error {
	epic, ok := s.epics[id]
	if !ok {
		return apperrors.NewDanglingReferenceError("epic", id.String(), "epic does not exist")
	}
	subs, err := s.subtasksOf(epic)
	if err != nil {
		return err
	}

	agg := AggregateOf(subs)
	epic.Status = agg.Status
	epic.StartTime = agg.Start
	epic.End = agg.End
	epic.Duration = agg.Duration
	s.epics[id] = epic
	return nil
}

func (s *Store) subtasksOf(epic domain.Epic) ([]domain.Subtask, error) {
	subs := make([]domain.Subtask, 0, len(epic.SubtaskIDs))
	for _, subID := range epic.SubtaskIDs {
		sub, ok := s.subtasks[subID]
		if !ok {
			return nil, apperrors.NewDanglingReferenceError("epic", epic.ID.String(), fmt.Sprintf("subtask %d has no record", subID))
		}
		if sub.EpicID != epic.ID {
			return nil, apperrors.NewDanglingReferenceError("epic", epic.ID.String(), fmt.Sprintf("subtask %d belongs to epic %d", subID, sub.EpicID))
		}
		subs = append(subs, sub)
	}
	return subs, nil
}
