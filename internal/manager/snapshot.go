package manager

import (
	"fmt"
	"slices"

	"task-tracker/internal/domain"
	apperrors "task-tracker/internal/errors"
	"task-tracker/internal/logging"
)

// Snapshot returns a detached copy of the whole store.
func (s *Store) Snapshot() domain.Snapshot {
	snap := domain.Snapshot{
		Tasks:       make(map[domain.ID]domain.Task, len(s.tasks)),
		Epics:       make(map[domain.ID]domain.Epic, len(s.epics)),
		Subtasks:    make(map[domain.ID]domain.Subtask, len(s.subtasks)),
		History:     s.history.Snapshot(),
		Prioritized: s.schedule.IDs(),
		NextID:      s.nextID,
	}
	for id, t := range s.tasks {
		snap.Tasks[id] = t.Clone()
	}
	for id, e := range s.epics {
		snap.Epics[id] = e.Clone()
	}
	for id, st := range s.subtasks {
		snap.Subtasks[id] = st.Clone()
	}
	return snap
}

// RestoreOption configures Restore.
type RestoreOption func(*restoreConfig)

type restoreConfig struct {
	replayHistory bool
}

// ReplayHistory makes Restore rebuild the view history from the snapshot.
// Without it the restored store starts with an empty history.
func ReplayHistory() RestoreOption {
	return func(c *restoreConfig) { c.replayHistory = true }
}

// Restore replaces the store's contents with snap. Items keep their ids and
// go through the same validation, overlap checks and aggregation as new
// ones, in the order epics, tasks, subtasks. On any failure the store is left
// as it was. Observers are not notified.
func (s *Store) Restore(snap domain.Snapshot, opts ...RestoreOption) error {
	var rc restoreConfig
	for _, opt := range opts {
		opt(&rc)
	}

	fresh := newStore(s.cfg)
	fresh.observers = nil

	for _, id := range domain.SortedIDs(snap.Epics) {
		if err := fresh.RestoreEpic(snap.Epics[id]); err != nil {
			return fmt.Errorf("restore epic %d: %w", id, err)
		}
	}
	for _, id := range domain.SortedIDs(snap.Tasks) {
		if err := fresh.RestoreTask(snap.Tasks[id]); err != nil {
			return fmt.Errorf("restore task %d: %w", id, err)
		}
	}
	for _, id := range restoreOrder(snap) {
		if err := fresh.RestoreSubtask(snap.Subtasks[id]); err != nil {
			return fmt.Errorf("restore subtask %d: %w", id, err)
		}
	}

	if rc.replayHistory {
		for _, ref := range snap.History {
			if item, ok := fresh.item(ref.ID); ok {
				fresh.history.Touch(ref.ID, domain.RefOf(item))
			}
		}
	}
	fresh.nextID = max(fresh.nextID, snap.NextID)

	s.tasks, s.epics, s.subtasks = fresh.tasks, fresh.epics, fresh.subtasks
	s.schedule, s.history, s.nextID = fresh.schedule, fresh.history, fresh.nextID

	logging.Debugf("manager: restored %d tasks, %d epics, %d subtasks; next id %d",
		len(s.tasks), len(s.epics), len(s.subtasks), s.nextID)
	return nil
}

// restoreOrder lists subtask ids so that each epic's subtask list is rebuilt
// in its original order. Subtasks no epic lists come last, by id.
func restoreOrder(snap domain.Snapshot) []domain.ID {
	seen := make(map[domain.ID]bool, len(snap.Subtasks))
	order := make([]domain.ID, 0, len(snap.Subtasks))
	for _, epicID := range domain.SortedIDs(snap.Epics) {
		for _, subID := range snap.Epics[epicID].SubtaskIDs {
			if _, ok := snap.Subtasks[subID]; ok && !seen[subID] {
				seen[subID] = true
				order = append(order, subID)
			}
		}
	}
	for _, subID := range domain.SortedIDs(snap.Subtasks) {
		if !seen[subID] {
			order = append(order, subID)
		}
	}
	return order
}

// RestoreTask stores task under its own id. It is meant for rebuilding a
// store from persisted data: history is not touched and observers are not
// notified. The id generator moves past the restored id.
func (s *Store) RestoreTask(task domain.Task) error {
	if err := s.claimID(task.ID); err != nil {
		return err
	}
	if err := s.validator.ValidateTask(task); err != nil {
		return toAppError(err)
	}
	task = task.Clone()
	if err := s.overlap.Check(task, s.schedule); err != nil {
		return err
	}

	s.tasks[task.ID] = task
	s.mustSchedule(task)
	s.advancePast(task.ID)
	return nil
}

// RestoreEpic stores an epic under its own id with an empty subtask list.
// Subtasks restored afterwards attach themselves to it.
func (s *Store) RestoreEpic(epic domain.Epic) error {
	if err := s.claimID(epic.ID); err != nil {
		return err
	}
	if err := s.validator.ValidateEpic(epic); err != nil {
		return toAppError(err)
	}

	restored := domain.NewEpic(epic.Name, epic.Description)
	restored.ID = epic.ID
	s.epics[restored.ID] = restored
	s.advancePast(restored.ID)
	return nil
}

// RestoreSubtask stores a subtask under its own id, appends it to its epic
// and recomputes the epic.
func (s *Store) RestoreSubtask(sub domain.Subtask) error {
	if err := s.claimID(sub.ID); err != nil {
		return err
	}
	if err := s.validator.ValidateSubtask(sub); err != nil {
		return toAppError(err)
	}
	epic, ok := s.epics[sub.EpicID]
	if !ok {
		return apperrors.NewDanglingReferenceError("epic", sub.EpicID.String(), fmt.Sprintf("subtask %d refers to an epic that does not exist", sub.ID))
	}
	sub = sub.Clone()
	if err := s.overlap.Check(sub, s.schedule); err != nil {
		return err
	}

	s.subtasks[sub.ID] = sub
	s.mustSchedule(sub)
	if !epic.HasSubtask(sub.ID) {
		epic.SubtaskIDs = append(slices.Clone(epic.SubtaskIDs), sub.ID)
		s.epics[epic.ID] = epic
	}
	s.advancePast(sub.ID)
	return s.recomputeEpic(epic.ID)
}

func (s *Store) claimID(id domain.ID) error {
	if err := s.validator.ValidateID(id); err != nil {
		return toAppError(err)
	}
	if _, ok := s.item(id); ok {
		return apperrors.NewInvalidInputError("id", id, fmt.Sprintf("id %d is already in use", id))
	}
	return nil
}

func (s *Store) advancePast(id domain.ID) {
	if id >= s.nextID {
		s.nextID = id + 1
	}
}
