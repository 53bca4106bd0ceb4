package schedule

import (
	"fmt"
	"strings"

	"task-tracker/internal/domain"
	apperrors "task-tracker/internal/errors"
	"task-tracker/internal/logging"
)

// Validator rejects dated items whose interval clashes with anything already
// in a PrioritizedSet.
//
// Check is a linear scan over the set, which is the scaling limit of the
// store. It stops early once scheduled items start at or after the
// candidate's end, since nothing later can overlap.
type Validator struct{}

// NewValidator creates a Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Check returns a time conflict error if candidate overlaps any scheduled item.
// Undated candidates always pass. A scheduled item with the candidate's own id
// is the candidate's previous version and is skipped.
func (v *Validator) Check(candidate domain.Item, set *PrioritizedSet) error {
	iv, ok := IntervalOf(candidate)
	if !ok {
		return nil
	}
	for _, e := range set.entries {
		if e.item.ItemID() == candidate.ItemID() {
			continue
		}
		if iv.Conflicts(e.interval) {
			logging.Debugf("schedule: %s conflicts with %s", Describe(candidate), Describe(e.item))
			return apperrors.NewTimeConflictError(Describe(candidate), Describe(e.item))
		}
		if !e.interval.Start.Before(iv.End) {
			break
		}
	}
	return nil
}

// Describe renders an item as "kind id" for messages.
func Describe(item domain.Item) string {
	return fmt.Sprintf("%s %d", strings.ToLower(string(item.ItemKind())), item.ItemID())
}
