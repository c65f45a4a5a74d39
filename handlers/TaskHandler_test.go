package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"TodoWebService/models"
	"TodoWebService/response"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.json")
	t.Setenv("TASKS_FILE", path)
	Initialize()
	return path
}

func newCounters() (*prometheus.CounterVec, *prometheus.CounterVec) {
	endPointCounter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_endpoint_calls_total",
		Help: "Total number of calls per endpoint.",
	}, []string{"endpoint"})
	errorCounter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_errors_total",
		Help: "Total number of errors.",
	}, []string{"endpoint"})
	return endPointCounter, errorCounter
}

func createTask(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	endPointCounter, errorCounter := newCounters()
	req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(body))
	rec := httptest.NewRecorder()
	CreateTaskHandler(rec, req, endPointCounter, errorCounter)
	return rec
}

func callByID(t *testing.T, handler func(http.ResponseWriter, *http.Request, *prometheus.CounterVec, *prometheus.CounterVec), method, id string) *httptest.ResponseRecorder {
	t.Helper()
	endPointCounter, errorCounter := newCounters()
	req := httptest.NewRequest(method, "/tasks/"+id, nil)
	req.SetPathValue("task_id", id)
	rec := httptest.NewRecorder()
	handler(rec, req, endPointCounter, errorCounter)
	return rec
}

func listTasks(t *testing.T) []models.Task {
	t.Helper()
	endPointCounter, errorCounter := newCounters()
	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	rec := httptest.NewRecorder()
	GetTasksHandler(rec, req, endPointCounter, errorCounter)
	require.Equal(t, http.StatusOK, rec.Code)

	var tasks []models.Task
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&tasks))
	return tasks
}

func TestRootHandler(t *testing.T) {
	endPointCounter, errorCounter := newCounters()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	RootHandler(rec, req, endPointCounter, errorCounter)

	require.Equal(t, http.StatusOK, rec.Code)
	var health response.Health
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&health))
	assert.True(t, health.Ok)
	assert.Equal(t, "API funcionando!", health.Message)
}

func TestGetTasksEmptyCollection(t *testing.T) {
	setupStore(t)

	tasks := listTasks(t)
	assert.Empty(t, tasks)
}

func TestCreateTaskAssignsSequentialIds(t *testing.T) {
	setupStore(t)

	for i, title := range []string{"uno", "dos", "tres"} {
		rec := createTask(t, `{"title": "`+title+`", "description": "", "priority": 1}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var task models.Task
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&task))
		assert.Equal(t, i+1, task.Id)
		assert.Equal(t, title, task.Title)
		assert.Equal(t, models.StatusPending, task.Status)
		assert.NotEmpty(t, task.CreatedAt)
	}
}

func TestCreateTaskKeepsPriorityOpaque(t *testing.T) {
	setupStore(t)

	rec := createTask(t, `{"title": "con prioridad rara", "priority": "muy alta"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var task models.Task
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&task))
	assert.Equal(t, json.RawMessage(`"muy alta"`), task.Priority)
}

func TestCreateTaskRejectsBlankTitle(t *testing.T) {
	setupStore(t)

	rec := createTask(t, `{"title": "   ", "description": "x", "priority": 1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = createTask(t, `{"description": "sin titulo"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateTaskRejectsMalformedBody(t *testing.T) {
	setupStore(t)

	rec := createTask(t, `{"title": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTaskById(t *testing.T) {
	setupStore(t)
	createTask(t, `{"title": "uno", "priority": 1}`)
	createTask(t, `{"title": "dos", "priority": 2}`)

	rec := callByID(t, GetTaskHandler, http.MethodGet, "2")
	require.Equal(t, http.StatusOK, rec.Code)

	var task models.Task
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&task))
	assert.Equal(t, 2, task.Id)
	assert.Equal(t, "dos", task.Title)
}

func TestGetTaskNotFound(t *testing.T) {
	setupStore(t)

	rec := callByID(t, GetTaskHandler, http.MethodGet, "42")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var detail response.Detail
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&detail))
	assert.Equal(t, "Tarea no encontrada", detail.Detail)
}

func TestGetTaskInvalidID(t *testing.T) {
	setupStore(t)

	rec := callByID(t, GetTaskHandler, http.MethodGet, "abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompleteTaskOnlyChangesStatus(t *testing.T) {
	setupStore(t)
	rec := createTask(t, `{"title": "uno", "description": "detalle", "priority": 3}`)
	var created models.Task
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

	rec = callByID(t, CompleteTaskHandler, http.MethodPut, "1")
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Task
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&updated))
	assert.Equal(t, models.StatusCompleted, updated.Status)
	assert.Equal(t, created.Id, updated.Id)
	assert.Equal(t, created.Title, updated.Title)
	assert.Equal(t, created.Description, updated.Description)
	assert.Equal(t, created.Priority, updated.Priority)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestCompleteTaskNotFoundWritesNothing(t *testing.T) {
	path := setupStore(t)
	createTask(t, `{"title": "uno", "priority": 1}`)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	rec := callByID(t, CompleteTaskHandler, http.MethodPut, "99")
	require.Equal(t, http.StatusNotFound, rec.Code)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestDeleteTask(t *testing.T) {
	setupStore(t)
	createTask(t, `{"title": "uno", "priority": 1}`)
	createTask(t, `{"title": "dos", "priority": 2}`)

	rec := callByID(t, DeleteTaskHandler, http.MethodDelete, "1")
	require.Equal(t, http.StatusOK, rec.Code)

	var confirmation response.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&confirmation))
	assert.Equal(t, "Tarea eliminada correctamente", confirmation.Message)

	tasks := listTasks(t)
	require.Len(t, tasks, 1)
	assert.Equal(t, 2, tasks[0].Id)
	assert.Equal(t, "dos", tasks[0].Title)
}

func TestDeleteTaskNotFound(t *testing.T) {
	setupStore(t)
	createTask(t, `{"title": "uno", "priority": 1}`)

	rec := callByID(t, DeleteTaskHandler, http.MethodDelete, "7")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var detail response.Detail
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&detail))
	assert.Equal(t, "Tarea no encontrada", detail.Detail)

	tasks := listTasks(t)
	assert.Len(t, tasks, 1)
}

func TestStorageErrorSurfacesAsServerError(t *testing.T) {
	path := setupStore(t)
	require.NoError(t, os.WriteFile(path, []byte("{{{ not json"), 0o644))

	endPointCounter, errorCounter := newCounters()
	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	rec := httptest.NewRecorder()
	GetTasksHandler(rec, req, endPointCounter, errorCounter)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// TestTaskLifecycleScenario walks the whole lifecycle: two creations, one
// completion, one deletion, then verifies the surviving state.
func TestTaskLifecycleScenario(t *testing.T) {
	setupStore(t)

	rec := createTask(t, `{"title": "A", "description": "", "priority": 1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var first models.Task
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&first))
	assert.Equal(t, 1, first.Id)
	assert.Equal(t, models.StatusPending, first.Status)

	rec = createTask(t, `{"title": "B"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var second models.Task
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&second))
	assert.Equal(t, 2, second.Id)

	rec = callByID(t, CompleteTaskHandler, http.MethodPut, "1")
	require.Equal(t, http.StatusOK, rec.Code)
	var completed models.Task
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&completed))
	assert.Equal(t, 1, completed.Id)
	assert.Equal(t, models.StatusCompleted, completed.Status)

	rec = callByID(t, DeleteTaskHandler, http.MethodDelete, "2")
	require.Equal(t, http.StatusOK, rec.Code)

	tasks := listTasks(t)
	require.Len(t, tasks, 1)
	assert.Equal(t, 1, tasks[0].Id)
	assert.Equal(t, models.StatusCompleted, tasks[0].Status)

	rec = callByID(t, GetTaskHandler, http.MethodGet, "2")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
