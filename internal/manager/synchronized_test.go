package manager

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/domain"
)

func TestSynchronized_ConcurrentCreates(t *testing.T) {
	guarded := NewSynchronized(New())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := guarded.Do(func(s *Store) error {
				_, err := s.CreateTask(newTask("t", "", 5))
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	snap := guarded.Snapshot()
	assert.Len(t, snap.Tasks, 20)
	assert.Equal(t, domain.ID(21), snap.NextID)
}

func TestSynchronized_Restore(t *testing.T) {
	src := populated(t)
	dst := NewSynchronized(New())

	require.NoError(t, dst.Restore(src.Snapshot(), ReplayHistory()))
	assert.Equal(t, src.Snapshot(), dst.Snapshot())
}
