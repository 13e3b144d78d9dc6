package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/synthworks/gengate/internal/api/shared"
	"github.com/synthworks/gengate/internal/domain"
)

// SchedulerStatus reports the scheduler's live state.
type SchedulerStatus interface {
	QueueDepth() int
	RunningTaskID() (uuid.UUID, bool)
}

// StatusCounter tallies task records by status.
type StatusCounter interface {
	CountByStatus() map[domain.TaskStatus]int
}

// StatusHandler serves health, queue introspection and module catalog
// endpoints.
type StatusHandler struct {
	scheduler SchedulerStatus
	counter   StatusCounter
}

// NewStatusHandler creates a new StatusHandler
func NewStatusHandler(scheduler SchedulerStatus, counter StatusCounter) *StatusHandler {
	return &StatusHandler{
		scheduler: scheduler,
		counter:   counter,
	}
}

// HealthCheck handles GET /api/health requests
func (h *StatusHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		OK:            true,
		QueueSize:     h.scheduler.QueueDepth(),
		RunningTaskID: h.runningTaskID(),
	})
}

// QueueStatus handles GET /api/queue requests
func (h *StatusHandler) QueueStatus(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, QueueStatusResponse{
		QueueSize:     h.scheduler.QueueDepth(),
		RunningTaskID: h.runningTaskID(),
		Totals:        h.totals(),
	})
}

// StatusAlias handles GET /api/status requests. Same numbers as QueueStatus
// plus an ok flag; external integrations read this single shape.
func (h *StatusHandler) StatusAlias(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, StatusAliasResponse{
		OK:            true,
		QueueSize:     h.scheduler.QueueDepth(),
		RunningTaskID: h.runningTaskID(),
		Totals:        h.totals(),
	})
}

// ListModules handles GET /api/modules requests
func (h *StatusHandler) ListModules(w http.ResponseWriter, r *http.Request) {
	catalog := domain.Modules()
	infos := make([]ModuleInfo, 0, len(catalog))
	for _, m := range catalog {
		infos = append(infos, ModuleInfo{ID: string(m), Name: m.DisplayName()})
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ModulesResponse{Modules: infos})
}

// runningTaskID renders the in-flight task id, nil when the worker is idle.
func (h *StatusHandler) runningTaskID() *string {
	id, ok := h.scheduler.RunningTaskID()
	if !ok {
		return nil
	}
	s := id.String()
	return &s
}

// totals zero-fills every status so clients always see all four counters.
func (h *StatusHandler) totals() map[string]int {
	counts := h.counter.CountByStatus()

	totals := make(map[string]int, 4)
	for _, status := range []domain.TaskStatus{
		domain.TaskStatusQueued,
		domain.TaskStatusRunning,
		domain.TaskStatusDone,
		domain.TaskStatusFailed,
	} {
		totals[string(status)] = counts[status]
	}
	return totals
}
