// Package manager is the in-memory task store. It owns every task, epic and
// subtask, keeps the prioritized schedule and the view history in step with
// them, and recomputes epics from their subtasks after every change.
//
// A Store is not safe for concurrent use. Calls from several goroutines
// without external locking race on the id counter, the maps, the schedule
// and the history. Wrap it in Synchronized when sharing it.
package manager

import (
	"iter"
	"slices"

	"task-tracker/internal/domain"
	apperrors "task-tracker/internal/errors"
	"task-tracker/internal/history"
	"task-tracker/internal/logging"
	"task-tracker/internal/schedule"
	"task-tracker/internal/validation"
)

// Store holds all work items. Values go in and out by copy; callers never
// see the store's own maps or slices.
type Store struct {
	tasks    map[domain.ID]domain.Task
	epics    map[domain.ID]domain.Epic
	subtasks map[domain.ID]domain.Subtask

	schedule  *schedule.PrioritizedSet
	overlap   *schedule.Validator
	history   *history.Tracker[domain.ID, domain.Ref]
	validator *validation.TaskValidator
	observers []Observer

	nextID domain.ID
	cfg    config
}

// New creates an empty store. Ids start at 1.
func New(opts ...Option) *Store {
	cfg := config{limits: validation.DefaultLimits()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return newStore(cfg)
}

func newStore(cfg config) *Store {
	return &Store{
		tasks:     make(map[domain.ID]domain.Task),
		epics:     make(map[domain.ID]domain.Epic),
		subtasks:  make(map[domain.ID]domain.Subtask),
		schedule:  schedule.NewPrioritizedSet(),
		overlap:   schedule.NewValidator(),
		history:   history.New[domain.ID, domain.Ref](history.WithLimit(cfg.historyLimit)),
		validator: validation.NewTaskValidatorWithLimits(cfg.limits),
		observers: slices.Clone(cfg.observers),
		nextID:    1,
		cfg:       cfg,
	}
}

// AddObserver registers o for all later changes.
func (s *Store) AddObserver(o Observer) {
	if o != nil {
		s.observers = append(s.observers, o)
	}
}

// NextID returns the id the next create will assign.
func (s *Store) NextID() domain.ID {
	return s.nextID
}

// Tasks

// CreateTask validates task, assigns it a fresh id and stores it. Any id on
// the argument is ignored.
func (s *Store) CreateTask(task domain.Task) (domain.Task, error) {
	if err := s.validator.ValidateTask(task); err != nil {
		return domain.Task{}, toAppError(err)
	}

	task = task.Clone()
	task.ID = s.nextID
	if err := s.overlap.Check(task, s.schedule); err != nil {
		return domain.Task{}, err
	}

	s.tasks[task.ID] = task
	s.mustSchedule(task)
	s.nextID++

	logging.Debugf("manager: created task %d", task.ID)
	s.notify(Event{Op: OpCreate, Kind: domain.KindTask, ID: task.ID})
	return task.Clone(), nil
}

// TaskList returns all tasks ordered by id.
func (s *Store) TaskList() []domain.Task {
	out := make([]domain.Task, 0, len(s.tasks))
	for _, id := range domain.SortedIDs(s.tasks) {
		out = append(out, s.tasks[id].Clone())
	}
	return out
}

// FindTask returns the task with the given id and records the view in the
// history. It fails with an empty error when there are no tasks at all and
// with a not found error when only this id is missing.
func (s *Store) FindTask(id domain.ID) (domain.Task, error) {
	task, err := lookup(s.tasks, "task", id)
	if err != nil {
		return domain.Task{}, err
	}
	s.touch(task)
	return task.Clone(), nil
}

// UpdateTask replaces the stored task that has task.ID.
func (s *Store) UpdateTask(task domain.Task) (domain.Task, error) {
	if err := s.validator.ValidateTask(task); err != nil {
		return domain.Task{}, toAppError(err)
	}
	old, err := lookup(s.tasks, "task", task.ID)
	if err != nil {
		return domain.Task{}, err
	}

	task = task.Clone()
	if err := s.reschedule(old, task); err != nil {
		return domain.Task{}, err
	}
	s.tasks[task.ID] = task

	logging.Debugf("manager: updated task %d", task.ID)
	s.notify(Event{Op: OpUpdate, Kind: domain.KindTask, ID: task.ID})
	return task.Clone(), nil
}

// DeleteTask removes a task. Tasks have no dependents.
func (s *Store) DeleteTask(id domain.ID) error {
	if _, err := lookup(s.tasks, "task", id); err != nil {
		return err
	}

	delete(s.tasks, id)
	s.schedule.Remove(id)
	s.history.Remove(id)

	logging.Debugf("manager: deleted task %d", id)
	s.notify(Event{Op: OpDelete, Kind: domain.KindTask, ID: id})
	return nil
}

// DeleteAllTasks removes every task from the store, the schedule and the
// history.
func (s *Store) DeleteAllTasks() {
	clear(s.tasks)
	s.schedule.RemoveKind(domain.KindTask)
	s.forgetKind(domain.KindTask)
	s.notify(Event{Op: OpDeleteAll, Kind: domain.KindTask})
}

// Epics

// CreateEpic stores a new epic with a fresh id. Only the name and
// description of the argument are used; everything else is derived.
func (s *Store) CreateEpic(epic domain.Epic) (domain.Epic, error) {
	if err := s.validator.ValidateEpic(epic); err != nil {
		return domain.Epic{}, toAppError(err)
	}

	created := domain.NewEpic(epic.Name, epic.Description)
	created.ID = s.nextID
	s.epics[created.ID] = created
	s.nextID++

	logging.Debugf("manager: created epic %d", created.ID)
	s.notify(Event{Op: OpCreate, Kind: domain.KindEpic, ID: created.ID})
	return created.Clone(), nil
}

// EpicList returns all epics ordered by id.
func (s *Store) EpicList() []domain.Epic {
	out := make([]domain.Epic, 0, len(s.epics))
	for _, id := range domain.SortedIDs(s.epics) {
		out = append(out, s.epics[id].Clone())
	}
	return out
}

// FindEpic returns the epic with the given id and records the view.
func (s *Store) FindEpic(id domain.ID) (domain.Epic, error) {
	epic, err := lookup(s.epics, "epic", id)
	if err != nil {
		return domain.Epic{}, err
	}
	s.touch(epic)
	return epic.Clone(), nil
}

// UpdateEpic replaces the name and description of the epic with epic.ID.
// Its subtask list and derived fields are kept and recomputed.
func (s *Store) UpdateEpic(epic domain.Epic) (domain.Epic, error) {
	if err := s.validator.ValidateEpic(epic); err != nil {
		return domain.Epic{}, toAppError(err)
	}
	stored, err := lookup(s.epics, "epic", epic.ID)
	if err != nil {
		return domain.Epic{}, err
	}

	stored.Name = epic.Name
	stored.Description = epic.Description
	s.epics[stored.ID] = stored
	if err := s.recomputeEpic(stored.ID); err != nil {
		return domain.Epic{}, err
	}

	logging.Debugf("manager: updated epic %d", stored.ID)
	s.notify(Event{Op: OpUpdate, Kind: domain.KindEpic, ID: stored.ID})
	return s.epics[stored.ID].Clone(), nil
}

// DeleteEpic removes an epic together with all of its subtasks.
func (s *Store) DeleteEpic(id domain.ID) error {
	epic, err := lookup(s.epics, "epic", id)
	if err != nil {
		return err
	}

	// Cascade to subtasks
	for _, subID := range epic.SubtaskIDs {
		delete(s.subtasks, subID)
		s.schedule.Remove(subID)
		s.history.Remove(subID)
	}
	delete(s.epics, id)
	s.history.Remove(id)

	logging.Debugf("manager: deleted epic %d with %d subtasks", id, len(epic.SubtaskIDs))
	s.notify(Event{Op: OpDelete, Kind: domain.KindEpic, ID: id})
	return nil
}

// DeleteAllEpics removes every epic and, since subtasks cannot outlive their
// epic, every subtask.
func (s *Store) DeleteAllEpics() {
	clear(s.epics)
	clear(s.subtasks)
	s.schedule.RemoveKind(domain.KindSubtask)
	s.forgetKind(domain.KindEpic, domain.KindSubtask)
	s.notify(Event{Op: OpDeleteAll, Kind: domain.KindEpic})
}

// EpicSubtasks returns the subtasks of an epic in insertion order.
func (s *Store) EpicSubtasks(epicID domain.ID) ([]domain.Subtask, error) {
	epic, ok := s.epics[epicID]
	if !ok {
		return nil, apperrors.NewNotFoundError("epic", epicID.String())
	}
	subs, err := s.subtasksOf(epic)
	if err != nil {
		return nil, err
	}
	for i := range subs {
		subs[i] = subs[i].Clone()
	}
	return subs, nil
}

// Subtasks

// CreateSubtask stores a new subtask under an existing epic and recomputes
// that epic.
func (s *Store) CreateSubtask(sub domain.Subtask) (domain.Subtask, error) {
	if err := s.validator.ValidateSubtask(sub); err != nil {
		return domain.Subtask{}, toAppError(err)
	}
	epic, ok := s.epics[sub.EpicID]
	if !ok {
		return domain.Subtask{}, apperrors.NewDanglingReferenceError("epic", sub.EpicID.String(), "subtask refers to an epic that does not exist")
	}

	sub = sub.Clone()
	sub.ID = s.nextID
	if err := s.overlap.Check(sub, s.schedule); err != nil {
		return domain.Subtask{}, err
	}

	s.subtasks[sub.ID] = sub
	s.mustSchedule(sub)
	epic.SubtaskIDs = append(slices.Clone(epic.SubtaskIDs), sub.ID)
	s.epics[epic.ID] = epic
	s.nextID++

	if err := s.recomputeEpic(epic.ID); err != nil {
		return domain.Subtask{}, err
	}

	logging.Debugf("manager: created subtask %d in epic %d", sub.ID, epic.ID)
	s.notify(Event{Op: OpCreate, Kind: domain.KindSubtask, ID: sub.ID})
	return sub.Clone(), nil
}

// SubtaskList returns all subtasks ordered by id.
func (s *Store) SubtaskList() []domain.Subtask {
	out := make([]domain.Subtask, 0, len(s.subtasks))
	for _, id := range domain.SortedIDs(s.subtasks) {
		out = append(out, s.subtasks[id].Clone())
	}
	return out
}

// FindSubtask returns the subtask with the given id and records the view.
func (s *Store) FindSubtask(id domain.ID) (domain.Subtask, error) {
	sub, err := lookup(s.subtasks, "subtask", id)
	if err != nil {
		return domain.Subtask{}, err
	}
	s.touch(sub)
	return sub.Clone(), nil
}

// UpdateSubtask replaces the stored subtask that has sub.ID. Changing EpicID
// moves the subtask to another existing epic and recomputes both.
func (s *Store) UpdateSubtask(sub domain.Subtask) (domain.Subtask, error) {
	if err := s.validator.ValidateSubtask(sub); err != nil {
		return domain.Subtask{}, toAppError(err)
	}
	old, err := lookup(s.subtasks, "subtask", sub.ID)
	if err != nil {
		return domain.Subtask{}, err
	}
	if _, ok := s.epics[sub.EpicID]; !ok {
		return domain.Subtask{}, apperrors.NewDanglingReferenceError("epic", sub.EpicID.String(), "subtask refers to an epic that does not exist")
	}

	sub = sub.Clone()
	if err := s.reschedule(old, sub); err != nil {
		return domain.Subtask{}, err
	}
	s.subtasks[sub.ID] = sub

	if old.EpicID != sub.EpicID {
		from := s.epics[old.EpicID]
		from.SubtaskIDs = slices.DeleteFunc(slices.Clone(from.SubtaskIDs), func(id domain.ID) bool { return id == sub.ID })
		s.epics[from.ID] = from
		to := s.epics[sub.EpicID]
		to.SubtaskIDs = append(slices.Clone(to.SubtaskIDs), sub.ID)
		s.epics[to.ID] = to
		if err := s.recomputeEpic(from.ID); err != nil {
			return domain.Subtask{}, err
		}
	}
	if err := s.recomputeEpic(sub.EpicID); err != nil {
		return domain.Subtask{}, err
	}

	logging.Debugf("manager: updated subtask %d", sub.ID)
	s.notify(Event{Op: OpUpdate, Kind: domain.KindSubtask, ID: sub.ID})
	return sub.Clone(), nil
}

// DeleteSubtask removes a subtask, detaches it from its epic and recomputes
// the epic.
func (s *Store) DeleteSubtask(id domain.ID) error {
	sub, err := lookup(s.subtasks, "subtask", id)
	if err != nil {
		return err
	}

	delete(s.subtasks, id)
	s.schedule.Remove(id)
	s.history.Remove(id)
	if epic, ok := s.epics[sub.EpicID]; ok {
		epic.SubtaskIDs = slices.DeleteFunc(slices.Clone(epic.SubtaskIDs), func(sid domain.ID) bool { return sid == id })
		s.epics[epic.ID] = epic
	}
	if err := s.recomputeEpic(sub.EpicID); err != nil {
		return err
	}

	logging.Debugf("manager: deleted subtask %d", id)
	s.notify(Event{Op: OpDelete, Kind: domain.KindSubtask, ID: id})
	return nil
}

// DeleteAllSubtasks removes every subtask. Epics stay, each with an empty
// subtask list and status NEW.
func (s *Store) DeleteAllSubtasks() {
	clear(s.subtasks)
	s.schedule.RemoveKind(domain.KindSubtask)
	s.forgetKind(domain.KindSubtask)
	for id, epic := range s.epics {
		epic.SubtaskIDs = nil
		s.epics[id] = epic
		s.mustRecompute(id)
	}
	s.notify(Event{Op: OpDeleteAll, Kind: domain.KindSubtask})
}

// Cross-cutting views

// Prioritized returns every dated task and subtask ordered by start time.
func (s *Store) Prioritized() []domain.Item {
	ids := s.schedule.IDs()
	out := make([]domain.Item, 0, len(ids))
	for _, id := range ids {
		if item, ok := s.item(id); ok {
			out = append(out, item)
		}
	}
	return out
}

// PrioritizedSeq returns a restartable sequence over the prioritized view as
// it was when PrioritizedSeq was called.
func (s *Store) PrioritizedSeq() iter.Seq[domain.Item] {
	return slices.Values(s.Prioritized())
}

// History returns the viewed items from least to most recently viewed.
func (s *Store) History() []domain.Item {
	refs := s.history.Snapshot()
	out := make([]domain.Item, 0, len(refs))
	for _, ref := range refs {
		item, ok := s.item(ref.ID)
		if !ok {
			logging.Debugf("manager: history holds unknown id %d", ref.ID)
			continue
		}
		out = append(out, item)
	}
	return out
}

// HistoryRefs returns the history as references, least recent first.
func (s *Store) HistoryRefs() []domain.Ref {
	return s.history.Snapshot()
}

// DeleteEverything removes all tasks, epics, subtasks and history. The id
// counter keeps running.
func (s *Store) DeleteEverything() {
	clear(s.tasks)
	clear(s.epics)
	clear(s.subtasks)
	s.schedule.Clear()
	s.history.Clear()
	s.notify(Event{Op: OpDeleteAll})
}

// helpers

func lookup[V any](m map[domain.ID]V, resource string, id domain.ID) (V, error) {
	var zero V
	if len(m) == 0 {
		return zero, apperrors.NewEmptyError(resource)
	}
	v, ok := m[id]
	if !ok {
		return zero, apperrors.NewNotFoundError(resource, id.String())
	}
	return v, nil
}

// item resolves an id in any of the three maps and returns a copy.
func (s *Store) item(id domain.ID) (domain.Item, bool) {
	if t, ok := s.tasks[id]; ok {
		return t.Clone(), true
	}
	if st, ok := s.subtasks[id]; ok {
		return st.Clone(), true
	}
	if e, ok := s.epics[id]; ok {
		return e.Clone(), true
	}
	return nil, false
}

// touch records a view. A nil item is ignored.
func (s *Store) touch(item domain.Item) {
	if item == nil {
		return
	}
	ref := domain.RefOf(item)
	s.history.Touch(ref.ID, ref)
	s.notify(Event{Op: OpView, Kind: ref.Kind, ID: ref.ID})
}

func (s *Store) forgetKind(kinds ...domain.Kind) {
	s.history.RemoveFunc(func(_ domain.ID, ref domain.Ref) bool {
		return slices.Contains(kinds, ref.Kind)
	})
}

// reschedule swaps old for updated in the schedule. If updated clashes with
// anything, old is put back and nothing changes.
func (s *Store) reschedule(old, updated domain.Item) error {
	s.schedule.Remove(old.ItemID())
	if err := s.overlap.Check(updated, s.schedule); err != nil {
		s.mustSchedule(old)
		return err
	}
	s.mustSchedule(updated)
	return nil
}

// mustSchedule inserts an item whose id is known to be absent from the set.
func (s *Store) mustSchedule(item domain.Item) {
	if err := s.schedule.Insert(item); err != nil {
		panic("manager: schedule out of sync: " + err.Error())
	}
}

// mustRecompute re-aggregates an epic that is known to exist with only
// stored subtasks.
func (s *Store) mustRecompute(id domain.ID) {
	if err := s.recomputeEpic(id); err != nil {
		panic("manager: epic aggregation out of sync: " + err.Error())
	}
}

func (s *Store) notify(ev Event) {
	for _, o := range s.observers {
		o.OnChange(s, ev)
	}
}

func toAppError(err error) error {
	if ve, ok := err.(*validation.ValidationError); ok {
		return ve.ToAppError()
	}
	return err
}
