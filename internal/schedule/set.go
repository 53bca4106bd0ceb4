package schedule

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
	"time"

	"task-tracker/internal/domain"
)

type entry struct {
	item     domain.Item
	interval Interval
}

// PrioritizedSet keeps every dated task and subtask sorted by start time.
// Epics never belong here; their span is derived.
type PrioritizedSet struct {
	entries []entry
	index   map[domain.ID]Interval
}

// NewPrioritizedSet creates an empty set.
func NewPrioritizedSet() *PrioritizedSet {
	return &PrioritizedSet{index: make(map[domain.ID]Interval)}
}

// Insert adds item at its sorted position. Undated items are silently
// ignored. Inserting an id that is already present is an error; callers
// remove the old version first.
func (s *PrioritizedSet) Insert(item domain.Item) error {
	if item == nil {
		return nil
	}
	if item.ItemKind() == domain.KindEpic {
		return fmt.Errorf("epic %d cannot be scheduled directly", item.ItemID())
	}
	iv, ok := IntervalOf(item)
	if !ok {
		return nil
	}
	if _, exists := s.index[item.ItemID()]; exists {
		return fmt.Errorf("item %d is already scheduled", item.ItemID())
	}
	pos := s.search(iv.Start, item.ItemID())
	s.entries = slices.Insert(s.entries, pos, entry{item: item, interval: iv})
	s.index[item.ItemID()] = iv
	return nil
}

// Remove deletes the item with the given id. It reports whether it was present.
func (s *PrioritizedSet) Remove(id domain.ID) bool {
	iv, ok := s.index[id]
	if !ok {
		return false
	}
	pos := s.search(iv.Start, id)
	if pos < len(s.entries) && s.entries[pos].item.ItemID() == id {
		s.entries = slices.Delete(s.entries, pos, pos+1)
	} else {
		s.entries = slices.DeleteFunc(s.entries, func(e entry) bool { return e.item.ItemID() == id })
	}
	delete(s.index, id)
	return true
}

// RemoveKind deletes every item of the given kind.
func (s *PrioritizedSet) RemoveKind(kind domain.Kind) {
	s.entries = slices.DeleteFunc(s.entries, func(e entry) bool {
		if e.item.ItemKind() != kind {
			return false
		}
		delete(s.index, e.item.ItemID())
		return true
	})
}

// Contains reports whether id is scheduled.
func (s *PrioritizedSet) Contains(id domain.ID) bool {
	_, ok := s.index[id]
	return ok
}

// Len returns the number of scheduled items.
func (s *PrioritizedSet) Len() int {
	return len(s.entries)
}

// Clear removes everything.
func (s *PrioritizedSet) Clear() {
	s.entries = nil
	clear(s.index)
}

// Items returns the scheduled items in ascending start order. The slice is a
// copy and does not change when the set does.
func (s *PrioritizedSet) Items() []domain.Item {
	out := make([]domain.Item, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.item
	}
	return out
}

// IDs returns the scheduled ids in ascending start order.
func (s *PrioritizedSet) IDs() []domain.ID {
	out := make([]domain.ID, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.item.ItemID()
	}
	return out
}

// All returns a sequence over a snapshot taken when All is called. The
// sequence may be ranged over any number of times.
func (s *PrioritizedSet) All() iter.Seq[domain.Item] {
	items := s.Items()
	return func(yield func(domain.Item) bool) {
		for _, item := range items {
			if !yield(item) {
				return
			}
		}
	}
}

// search returns the position of (start, id) in the sorted entries.
func (s *PrioritizedSet) search(start time.Time, id domain.ID) int {
	pos, _ := slices.BinarySearchFunc(s.entries, entryKey{start, id}, compareEntry)
	return pos
}

type entryKey struct {
	start time.Time
	id    domain.ID
}

func compareEntry(e entry, k entryKey) int {
	if c := e.interval.Start.Compare(k.start); c != 0 {
		return c
	}
	return cmp.Compare(e.item.ItemID(), k.id)
}
