package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func filled(keys ...int) *Tracker[int, string] {
	tr := New[int, string]()
	for _, k := range keys {
		tr.Touch(k, "v")
	}
	return tr
}

func TestTouch_InsertsAtMostRecent(t *testing.T) {
	tr := filled(1, 2, 3)

	assert.Equal(t, []int{1, 2, 3}, tr.Keys())
	assert.Equal(t, 3, tr.Len())
}

func TestTouch_ExistingMovesWithoutDuplicating(t *testing.T) {
	tests := []struct {
		name     string
		touch    int
		expected []int
	}{
		{"first", 1, []int{2, 3, 4, 1}},
		{"middle", 3, []int{1, 2, 4, 3}},
		{"last", 4, []int{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := filled(1, 2, 3, 4)
			tr.Touch(tt.touch, "again")

			assert.Equal(t, tt.expected, tr.Keys())
			assert.Equal(t, 4, tr.Len())
		})
	}
}

func TestTouch_ReplacesValue(t *testing.T) {
	tr := New[int, string]()
	tr.Touch(1, "old")
	tr.Touch(2, "other")
	tr.Touch(1, "new")

	assert.Equal(t, []string{"other", "new"}, tr.Snapshot())
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name     string
		remove   int
		expected []int
	}{
		{"first", 1, []int{2, 3, 4, 5}},
		{"middle", 3, []int{1, 2, 4, 5}},
		{"last", 5, []int{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := filled(1, 2, 3, 4, 5)

			assert.True(t, tr.Remove(tt.remove))
			assert.Equal(t, tt.expected, tr.Keys())
			assert.False(t, tr.Contains(tt.remove))
		})
	}
}

func TestRemove_MiddleJoinsNeighbours(t *testing.T) {
	tr := filled(1, 2, 3)
	tr.Remove(2)

	keys := tr.Keys()
	assert.Equal(t, []int{1, 3}, keys)

	tr.Touch(1, "v")
	assert.Equal(t, []int{3, 1}, tr.Keys())
}

func TestRemove_SoleEntryLeavesValidEmptyState(t *testing.T) {
	tr := filled(7)

	assert.True(t, tr.Remove(7))
	assert.Equal(t, 0, tr.Len())
	assert.Empty(t, tr.Snapshot())

	tr.Touch(8, "v")
	tr.Touch(9, "v")
	assert.Equal(t, []int{8, 9}, tr.Keys())
}

func TestRemove_AbsentIsNoop(t *testing.T) {
	tr := filled(1, 2)

	assert.False(t, tr.Remove(42))
	assert.Equal(t, []int{1, 2}, tr.Keys())
}

func TestRemoveFunc(t *testing.T) {
	tr := filled(1, 2, 3, 4, 5, 6)

	n := tr.RemoveFunc(func(k int, _ string) bool { return k%2 == 0 })
	assert.Equal(t, 3, n)
	assert.Equal(t, []int{1, 3, 5}, tr.Keys())
}

func TestClear(t *testing.T) {
	tr := filled(1, 2, 3)
	tr.Clear()

	assert.Equal(t, 0, tr.Len())
	assert.False(t, tr.Contains(1))

	tr.Touch(4, "v")
	assert.Equal(t, []int{4}, tr.Keys())
}

func TestSnapshot_IsIndependent(t *testing.T) {
	tr := filled(1, 2, 3)
	snap := tr.Keys()
	values := tr.Snapshot()

	tr.Touch(1, "changed")
	tr.Remove(2)
	tr.Clear()

	assert.Equal(t, []int{1, 2, 3}, snap)
	assert.Equal(t, []string{"v", "v", "v"}, values)
}

func TestWithLimit_EvictsLeastRecent(t *testing.T) {
	tr := New[int, string](WithLimit(3))
	for _, k := range []int{1, 2, 3} {
		tr.Touch(k, "v")
	}
	tr.Touch(1, "v")
	tr.Touch(4, "v")

	assert.Equal(t, []int{3, 1, 4}, tr.Keys())
	assert.Equal(t, 3, tr.Limit())
}

func TestWithLimit_NonPositiveIsUnbounded(t *testing.T) {
	tr := New[int, string](WithLimit(-1))
	for k := range 50 {
		tr.Touch(k, "v")
	}

	assert.Equal(t, 50, tr.Len())
	assert.Equal(t, 0, tr.Limit())
}
