package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/synthworks/gengate/internal/api/shared"
	"github.com/synthworks/gengate/internal/domain"
	"github.com/synthworks/gengate/internal/files"
	"github.com/synthworks/gengate/internal/task"
)

// TaskReader provides read access to task records.
type TaskReader interface {
	Get(id uuid.UUID) (*domain.Task, error)
}

// OutputResolver locates a task's retained artifact on disk.
type OutputResolver interface {
	ResolveOutput(record *domain.Task) (path string, displayName string, err error)
}

// TaskHandler serves task snapshots and artifact downloads.
type TaskHandler struct {
	tasks   TaskReader
	outputs OutputResolver
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(tasks TaskReader, outputs OutputResolver) *TaskHandler {
	return &TaskHandler{
		tasks:   tasks,
		outputs: outputs,
	}
}

// GetTask handles GET /api/task/{id} requests
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	record, err := h.tasks.Get(id)
	if err != nil {
		if errors.Is(err, task.ErrTaskNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		} else {
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to load task", err)
		}
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(record))
}

// DownloadOutput handles GET /api/download/{id} requests. The artifact is
// streamed as an attachment under its display name.
func (h *TaskHandler) DownloadOutput(w http.ResponseWriter, r *http.Request) {
	id, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	record, err := h.tasks.Get(id)
	if err != nil {
		if errors.Is(err, task.ErrTaskNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		} else {
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to load task", err)
		}
		return
	}

	path, displayName, err := h.outputs.ResolveOutput(record)
	if err != nil {
		switch {
		case errors.Is(err, files.ErrNoOutputFile):
			shared.RespondWithError(w, r, http.StatusNotFound, "Task has no output file")
		case errors.Is(err, files.ErrOutputMissing):
			shared.RespondWithError(w, r, http.StatusNotFound, "Output file missing on disk")
		default:
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to resolve output file", err)
		}
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", displayName))
	http.ServeFile(w, r, path)
}

// parseTaskID extracts and validates the task id path parameter, answering
// the request itself when the id is absent or malformed.
func parseTaskID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Task ID is required")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID format")
		return uuid.Nil, false
	}
	return id, true
}
