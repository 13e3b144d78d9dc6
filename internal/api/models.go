package api

import (
	"path/filepath"
	"time"

	"github.com/synthworks/gengate/internal/domain"
)

// Common request/response structures

// SubmitResponse is returned by every submission endpoint once the task
// record exists and holds a queue slot.
type SubmitResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// TaskResponse is the full record snapshot returned by the task query
// endpoint. DownloadURL and OutputFileName are set only when the task
// produced a retained artifact.
type TaskResponse struct {
	TaskID         string         `json:"task_id"`
	Module         string         `json:"module"`
	Status         string         `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	StartedAt      *time.Time     `json:"started_at,omitempty"`
	FinishedAt     *time.Time     `json:"finished_at,omitempty"`
	Payload        map[string]any `json:"payload"`
	Result         any            `json:"result,omitempty"`
	OutputFile     string         `json:"output_file,omitempty"`
	Error          string         `json:"error,omitempty"`
	DownloadURL    string         `json:"download_url,omitempty"`
	OutputFileName string         `json:"output_file_name,omitempty"`
}

// HealthResponse is the lightweight liveness view.
type HealthResponse struct {
	OK            bool    `json:"ok"`
	QueueSize     int     `json:"queue_size"`
	RunningTaskID *string `json:"running_task_id"`
}

// QueueStatusResponse reports queue depth, the in-flight task and per-status
// totals across all known records.
type QueueStatusResponse struct {
	QueueSize     int            `json:"queue_size"`
	RunningTaskID *string        `json:"running_task_id"`
	Totals        map[string]int `json:"totals"`
}

// StatusAliasResponse is the QueueStatusResponse shape with an ok flag,
// kept for external integrations that read a single status endpoint.
type StatusAliasResponse struct {
	OK            bool           `json:"ok"`
	QueueSize     int            `json:"queue_size"`
	RunningTaskID *string        `json:"running_task_id"`
	Totals        map[string]int `json:"totals"`
}

// ModuleInfo describes one job kind in the module catalog.
type ModuleInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ModulesResponse lists the modules this gateway accepts.
type ModulesResponse struct {
	Modules []ModuleInfo `json:"modules"`
}

// RunResponse is returned by the integration alias endpoint.
type RunResponse struct {
	OK      bool              `json:"ok"`
	Message string            `json:"message"`
	App     string            `json:"app"`
	TaskID  string            `json:"task_id,omitempty"`
	Status  string            `json:"status,omitempty"`
	Next    map[string]string `json:"next,omitempty"`
}

// taskToResponse converts a task record snapshot to its API representation.
func taskToResponse(record *domain.Task) TaskResponse {
	resp := TaskResponse{
		TaskID:     record.ID.String(),
		Module:     string(record.Module),
		Status:     string(record.Status),
		CreatedAt:  record.CreatedAt,
		StartedAt:  record.StartedAt,
		FinishedAt: record.FinishedAt,
		Payload:    record.Payload,
		Result:     record.Result,
		OutputFile: record.OutputFile,
		Error:      record.Error,
	}
	if record.OutputFile != "" {
		resp.DownloadURL = "/api/download/" + record.ID.String()
		resp.OutputFileName = filepath.Base(record.OutputFile)
	}
	return resp
}
