package sqlite

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRows struct {
	rows [][]interface{}
	pos  int
	err  error
}

func (f *fakeRows) Next() bool {
	f.pos++
	return f.pos <= len(f.rows)
}

func (f *fakeRows) Scan(dest ...interface{}) error {
	row := f.rows[f.pos-1]
	if len(row) != len(dest) {
		return errors.New("column count mismatch")
	}
	for i, v := range row {
		switch d := dest[i].(type) {
		case *int64:
			*d = v.(int64)
		case *int:
			*d = v.(int)
		case *string:
			*d = v.(string)
		case *sql.NullString:
			if v == nil {
				*d = sql.NullString{}
			} else {
				*d = sql.NullString{String: v.(string), Valid: true}
			}
		default:
			return errors.New("unsupported destination")
		}
	}
	return nil
}

func (f *fakeRows) Err() error { return f.err }

func TestScanAll_Tasks(t *testing.T) {
	rows := &fakeRows{rows: [][]interface{}{
		{int64(1), "a", "", "NEW", nil, int64(0)},
		{int64(2), "b", "d", "DONE", "2022-07-20T08:20:00Z", int64(60)},
	}}

	got, err := ScanAll(ScanTask)(rows)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.False(t, got[0].StartTime.Valid)
	assert.Equal(t, "2022-07-20T08:20:00Z", got[1].StartTime.String)
	assert.Equal(t, int64(60), got[1].DurationNanos)
}

func TestScanAll_Subtasks(t *testing.T) {
	rows := &fakeRows{rows: [][]interface{}{
		{int64(3), int64(2), 1, "s", "", "NEW", nil, int64(30)},
	}}

	got, err := ScanAll(ScanSubtask)(rows)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].EpicID)
	assert.Equal(t, 1, got[0].Position)
}

func TestScanAll_PropagatesErrors(t *testing.T) {
	_, err := ScanAll(ScanHistory)(&fakeRows{rows: [][]interface{}{{1}}})
	assert.Error(t, err)

	iterErr := errors.New("iteration failed")
	_, err = ScanAll(ScanEpic)(&fakeRows{err: iterErr})
	assert.ErrorIs(t, err, iterErr)
}
