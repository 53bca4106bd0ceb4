package domain

import (
	"maps"
	"slices"
)

// Snapshot is a full, detached copy of a store's state, suitable for
// serialization by persistence backends.
type Snapshot struct {
	Tasks       map[ID]Task
	Epics       map[ID]Epic
	Subtasks    map[ID]Subtask
	History     []Ref
	Prioritized []ID
	NextID      ID
}

// NewSnapshot returns an empty snapshot with initialized maps.
func NewSnapshot() Snapshot {
	return Snapshot{
		Tasks:    make(map[ID]Task),
		Epics:    make(map[ID]Epic),
		Subtasks: make(map[ID]Subtask),
		NextID:   1,
	}
}

// IsEmpty reports whether the snapshot holds no entities.
func (s Snapshot) IsEmpty() bool {
	return len(s.Tasks) == 0 && len(s.Epics) == 0 && len(s.Subtasks) == 0
}

// MaxID returns the highest id used by any entity, or 0 for an empty snapshot.
func (s Snapshot) MaxID() ID {
	var maxID ID
	for id := range s.Tasks {
		maxID = max(maxID, id)
	}
	for id := range s.Epics {
		maxID = max(maxID, id)
	}
	for id := range s.Subtasks {
		maxID = max(maxID, id)
	}
	return maxID
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Tasks:       make(map[ID]Task, len(s.Tasks)),
		Epics:       make(map[ID]Epic, len(s.Epics)),
		Subtasks:    make(map[ID]Subtask, len(s.Subtasks)),
		History:     slices.Clone(s.History),
		Prioritized: slices.Clone(s.Prioritized),
		NextID:      s.NextID,
	}
	for id, t := range s.Tasks {
		out.Tasks[id] = t.Clone()
	}
	for id, e := range s.Epics {
		out.Epics[id] = e.Clone()
	}
	for id, st := range s.Subtasks {
		out.Subtasks[id] = st.Clone()
	}
	return out
}

// SortedIDs returns the keys of m in ascending order.
func SortedIDs[V any](m map[ID]V) []ID {
	return slices.Sorted(maps.Keys(m))
}
