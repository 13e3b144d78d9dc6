package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthworks/gengate/internal/domain"
)

// mockScheduler is a mock implementation of SchedulerStatus for testing
type mockScheduler struct {
	depth   int
	running *uuid.UUID
}

func (m *mockScheduler) QueueDepth() int {
	return m.depth
}

func (m *mockScheduler) RunningTaskID() (uuid.UUID, bool) {
	if m.running == nil {
		return uuid.Nil, false
	}
	return *m.running, true
}

// mockCounter is a mock implementation of StatusCounter for testing
type mockCounter struct {
	counts map[domain.TaskStatus]int
}

func (m *mockCounter) CountByStatus() map[domain.TaskStatus]int {
	if m.counts == nil {
		return map[domain.TaskStatus]int{}
	}
	return m.counts
}

func TestStatusHandler_HealthCheck(t *testing.T) {
	t.Run("idle_worker", func(t *testing.T) {
		handler := NewStatusHandler(&mockScheduler{depth: 3}, &mockCounter{})

		w := httptest.NewRecorder()
		handler.HealthCheck(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, true, body["ok"])
		assert.Equal(t, float64(3), body["queue_size"])

		// The field is always present; null signals an idle worker.
		value, present := body["running_task_id"]
		assert.True(t, present)
		assert.Nil(t, value)
	})

	t.Run("running_task", func(t *testing.T) {
		runningID := uuid.New()
		handler := NewStatusHandler(&mockScheduler{depth: 0, running: &runningID}, &mockCounter{})

		w := httptest.NewRecorder()
		handler.HealthCheck(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, runningID.String(), body["running_task_id"])
	})
}

func TestStatusHandler_QueueStatus(t *testing.T) {
	handler := NewStatusHandler(
		&mockScheduler{depth: 2},
		&mockCounter{counts: map[domain.TaskStatus]int{
			domain.TaskStatusQueued: 2,
			domain.TaskStatusDone:   5,
		}},
	)

	w := httptest.NewRecorder()
	handler.QueueStatus(w, httptest.NewRequest(http.MethodGet, "/api/queue", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(2), body["queue_size"])

	totals, ok := body["totals"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), totals["queued"])
	assert.Equal(t, float64(0), totals["running"], "absent statuses are zero-filled")
	assert.Equal(t, float64(5), totals["done"])
	assert.Equal(t, float64(0), totals["failed"])
}

func TestStatusHandler_StatusAlias(t *testing.T) {
	handler := NewStatusHandler(&mockScheduler{}, &mockCounter{})

	w := httptest.NewRecorder()
	handler.StatusAlias(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["ok"])
	assert.Contains(t, body, "queue_size")
	assert.Contains(t, body, "totals")
}

func TestStatusHandler_ListModules(t *testing.T) {
	handler := NewStatusHandler(&mockScheduler{}, &mockCounter{})

	w := httptest.NewRecorder()
	handler.ListModules(w, httptest.NewRequest(http.MethodGet, "/api/modules", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)

	modules, ok := body["modules"].([]any)
	require.True(t, ok)
	require.Len(t, modules, 3)

	ids := make([]string, 0, len(modules))
	for _, entry := range modules {
		info, ok := entry.(map[string]any)
		require.True(t, ok)
		ids = append(ids, info["id"].(string))
		assert.NotEmpty(t, info["name"])
	}
	assert.Equal(t, []string{"voice_design", "tts", "env_audio"}, ids)
}
