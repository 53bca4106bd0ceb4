package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/api"
	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
	"task-tracker/internal/manager"
	"task-tracker/internal/services"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testServer struct {
	t      *testing.T
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	clock := func() time.Time { return time.Date(2022, 7, 20, 9, 0, 0, 0, time.UTC) }
	taskAPI := api.New(manager.NewSynchronized(manager.New()), services.NewTimeServiceWithClock(time.RFC3339, clock))
	return &testServer{t: t, router: NewServer(taskAPI).Handler()}
}

func (ts *testServer) do(method, target string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestTaskRoutes(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/tasks/task/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(http.MethodPost, "/tasks/task", map[string]any{
		"name":      "report",
		"startTime": "2022-07-20T10:00:00Z",
		"duration":  60,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[api.TaskView](t, w)
	assert.Equal(t, domain.ID(1), created.ID)
	assert.Equal(t, "2022-07-20T11:00:00Z", created.EndTime.Format(time.RFC3339))

	w = ts.do(http.MethodPost, "/tasks/task/1", map[string]any{"name": "report v2", "status": "done"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.StatusDone, decode[api.TaskView](t, w).Status)

	w = ts.do(http.MethodGet, "/tasks/task", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]api.TaskView](t, w), 1)

	w = ts.do(http.MethodDelete, "/tasks/task/1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(http.MethodGet, "/tasks/task", nil)
	assert.Equal(t, "[]", w.Body.String())
}

func TestErrorMapping(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(http.MethodPost, "/tasks/task", map[string]any{"name": "a", "startTime": "2022-07-20T10:00:00Z", "duration": 60})
	require.Equal(t, http.StatusCreated, w.Code)

	tests := []struct {
		name   string
		method string
		target string
		body   any
		want   int
	}{
		{"overlap", http.MethodPost, "/tasks/task", map[string]any{"name": "b", "startTime": "2022-07-20T10:30:00Z", "duration": 10}, http.StatusConflict},
		{"empty name", http.MethodPost, "/tasks/task", map[string]any{"name": ""}, http.StatusBadRequest},
		{"bad status", http.MethodPost, "/tasks/task", map[string]any{"name": "c", "status": "paused"}, http.StatusBadRequest},
		{"bad id", http.MethodGet, "/tasks/task/abc", nil, http.StatusBadRequest},
		{"zero id", http.MethodGet, "/tasks/task/0", nil, http.StatusBadRequest},
		{"unknown task", http.MethodGet, "/tasks/task/99", nil, http.StatusNotFound},
		{"no epics yet", http.MethodGet, "/tasks/epic/1", nil, http.StatusNotFound},
		{"subtask of missing epic", http.MethodPost, "/tasks/subtask", map[string]any{"name": "s", "epicId": 42}, http.StatusUnprocessableEntity},
		{"bad free window", http.MethodGet, "/tasks/free?from=now", nil, http.StatusBadRequest},
		{"bad limit", http.MethodGet, "/tasks/upcoming?limit=-1", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(tt.method, tt.target, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestMalformedBody(t *testing.T) {
	ts := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/tasks/task", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_INPUT", decode[map[string]string](t, w)["code"])
}

func TestEpicAndSubtaskRoutes(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/tasks/epic", map[string]any{"name": "release"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	epic := decode[api.EpicView](t, w)
	assert.Equal(t, []domain.ID{}, epic.SubtaskIDs)

	for _, body := range []map[string]any{
		{"name": "a", "startTime": "2022-07-20T10:20:00Z", "duration": 30, "epicId": epic.ID},
		{"name": "b", "startTime": "2022-07-15T15:00:00Z", "duration": 150, "status": "DONE", "epicId": epic.ID},
	} {
		w = ts.do(http.MethodPost, "/tasks/subtask", body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = ts.do(http.MethodGet, "/tasks/epic/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[api.EpicView](t, w)
	assert.Equal(t, domain.StatusInProgress, got.Status)
	assert.Equal(t, int64(180), got.Duration)
	assert.Equal(t, "2022-07-15T15:00:00Z", got.StartTime.Format(time.RFC3339))

	w = ts.do(http.MethodGet, "/tasks/subtask/epic/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]api.SubtaskView](t, w), 2)

	w = ts.do(http.MethodGet, "/tasks/subtask/2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.ID(1), decode[api.SubtaskView](t, w).EpicID)

	w = ts.do(http.MethodPut, "/tasks/epic/1", map[string]any{"name": "release 1.0"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.StatusInProgress, decode[api.EpicView](t, w).Status)

	w = ts.do(http.MethodGet, "/tasks/priorities", nil)
	require.Equal(t, http.StatusOK, w.Code)
	prioritized := decode[[]api.ItemView](t, w)
	require.Len(t, prioritized, 2)
	assert.Equal(t, domain.ID(3), prioritized[0].ID)
	assert.Equal(t, domain.KindSubtask, prioritized[0].Kind)

	w = ts.do(http.MethodGet, "/tasks/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[[]api.ItemView](t, w)
	require.Len(t, history, 2)
	assert.Equal(t, domain.ID(1), history[0].ID, "least recent first")
	assert.Equal(t, domain.ID(2), history[1].ID)

	w = ts.do(http.MethodDelete, "/tasks/epic/1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = ts.do(http.MethodGet, "/tasks/subtask", nil)
	assert.Equal(t, "[]", w.Body.String())
}

func TestViewRoutes(t *testing.T) {
	ts := newTestServer(t)
	ts.do(http.MethodPost, "/tasks/task", map[string]any{"name": "late", "startTime": "2022-07-20T10:00:00Z", "duration": 60})
	ts.do(http.MethodPost, "/tasks/task", map[string]any{"name": "early", "startTime": "2022-07-20T07:00:00Z", "duration": 60})

	w := ts.do(http.MethodGet, "/tasks/upcoming", nil)
	require.Equal(t, http.StatusOK, w.Code)
	upcoming := decode[[]api.ItemView](t, w)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "late", upcoming[0].Name)

	w = ts.do(http.MethodGet, "/tasks/free?from=2022-07-20T09:00:00Z&to=2022-07-20T12:00:00Z", nil)
	require.Equal(t, http.StatusOK, w.Code)
	slots := decode[[]services.TimeRange](t, w)
	assert.Len(t, slots, 2)

	w = ts.do(http.MethodGet, "/tasks/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[services.Summary](t, w)
	assert.Equal(t, 2, summary.Tasks.Total)
	assert.Equal(t, 2, summary.Scheduled)
}

func TestDeleteEverything(t *testing.T) {
	ts := newTestServer(t)
	ts.do(http.MethodPost, "/tasks/task", map[string]any{"name": "a"})
	ts.do(http.MethodPost, "/tasks/epic", map[string]any{"name": "e"})

	w := ts.do(http.MethodDelete, "/tasks", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(http.MethodGet, "/tasks/epic", nil)
	assert.Equal(t, "[]", w.Body.String())

	w = ts.do(http.MethodPost, "/tasks/task", map[string]any{"name": "b"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, domain.ID(3), decode[api.TaskView](t, w).ID)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.NewNotFoundError("task", "1"), http.StatusNotFound},
		{errors.NewEmptyError("tasks"), http.StatusNotFound},
		{errors.NewTimeConflictError("task 1", "task 2"), http.StatusConflict},
		{errors.NewInvalidInputError("name", "", "empty"), http.StatusBadRequest},
		{errors.NewDanglingReferenceError("epic", "1", "missing"), http.StatusUnprocessableEntity},
		{errors.NewDatabaseError("save", nil), http.StatusInternalServerError},
		{errors.NewTransportError("put", nil), http.StatusBadGateway},
		{errors.NewTimeoutError("save", "5s"), http.StatusGatewayTimeout},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
