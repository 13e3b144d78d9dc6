package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/synthworks/gengate/internal/api/shared"
	"github.com/synthworks/gengate/internal/domain"
	"github.com/synthworks/gengate/internal/task"
)

// maxMultipartMemory bounds how much of a multipart body is buffered in
// memory while parsing; larger file parts spill to temporary files.
const maxMultipartMemory = 32 << 20

// TaskSubmitter accepts a prepared submission and returns the queued task.
type TaskSubmitter interface {
	Submit(id uuid.UUID, module domain.Module, payload map[string]any) (*domain.Task, error)
}

// UploadStager stages an uploaded file under a task-scoped directory.
type UploadStager interface {
	SaveUpload(module domain.Module, taskID uuid.UUID, filename string, r io.Reader) (string, error)
	RemoveUploads(module domain.Module, taskID uuid.UUID) error
}

// VoiceDesignRequest represents the form fields of a voice design submission
type VoiceDesignRequest struct {
	Text     string `validate:"required,min=1"`
	Instruct string
	Language string
}

// TTSRequest represents the scalar form fields of a speech synthesis
// submission; the reference audio file travels separately.
type TTSRequest struct {
	TextInput string `validate:"required,min=1"`
	UseRandom string
}

// ttsEmotionFields are the slider fields of a speech synthesis submission,
// each a float defaulting to 0.
var ttsEmotionFields = []string{
	"emotion_happy",
	"emotion_angry",
	"emotion_sad",
	"emotion_fear",
	"emotion_disgust",
	"emotion_melancholy",
	"emotion_surprise",
	"emotion_calm",
}

// SubmitHandler handles job submission requests, one endpoint per module.
// Validation failures are rejected before any task record exists.
type SubmitHandler struct {
	submitter TaskSubmitter
	uploads   UploadStager
}

// NewSubmitHandler creates a new SubmitHandler
func NewSubmitHandler(submitter TaskSubmitter, uploads UploadStager) *SubmitHandler {
	return &SubmitHandler{
		submitter: submitter,
		uploads:   uploads,
	}
}

// SubmitVoiceDesign handles POST /api/submit/voice-design requests
func (h *SubmitHandler) SubmitVoiceDesign(w http.ResponseWriter, r *http.Request) {
	if err := parseSubmitForm(r); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	req := VoiceDesignRequest{
		Text:     shared.FormValue(r, "text", ""),
		Instruct: shared.FormValue(r, "instruct", ""),
		Language: shared.FormValue(r, "language", "Chinese"),
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	payload := map[string]any{
		"text":     req.Text,
		"instruct": req.Instruct,
		"language": req.Language,
	}

	h.submit(w, r, domain.ModuleVoiceDesign, uuid.New(), payload, false)
}

// SubmitTTS handles POST /api/submit/tts requests
func (h *SubmitHandler) SubmitTTS(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	req := TTSRequest{
		TextInput: shared.FormValue(r, "text_input", ""),
		UseRandom: shared.FormValue(r, "use_random", "False"),
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	payload := map[string]any{
		"text_input": req.TextInput,
		"use_random": req.UseRandom,
	}
	for _, name := range ttsEmotionFields {
		value, err := parseFormFloat(r, name)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid value for "+name)
			return
		}
		payload[name] = value
	}

	file, header, err := r.FormFile("reference_audio")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "reference_audio file is required")
		return
	}
	defer func() { _ = file.Close() }()

	taskID := uuid.New()
	refPath, err := h.uploads.SaveUpload(domain.ModuleTTS, taskID, header.Filename, file)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to store uploaded file", err)
		return
	}
	payload["reference_audio_path"] = refPath

	h.submit(w, r, domain.ModuleTTS, taskID, payload, true)
}

// SubmitEnvAudio handles POST /api/submit/env-audio requests
func (h *SubmitHandler) SubmitEnvAudio(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	payload := map[string]any{
		"prompt":          shared.FormValue(r, "prompt", ""),
		"negative_prompt": shared.FormValue(r, "negative_prompt", ""),
		"audio_mix_mode":  shared.FormValue(r, "audio_mix_mode", "mix"),
		"ambient_volume":  shared.FormValue(r, "ambient_volume", "0.25"),
		"bgm_volume":      shared.FormValue(r, "bgm_volume", "0.3"),
		"num_steps":       shared.FormValue(r, "num_steps", "25"),
		"cfg_strength":    shared.FormValue(r, "cfg_strength", "4.5"),
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "video file is required")
		return
	}
	defer func() { _ = file.Close() }()

	taskID := uuid.New()
	videoPath, err := h.uploads.SaveUpload(domain.ModuleEnvAudio, taskID, header.Filename, file)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to store uploaded file", err)
		return
	}
	payload["video_path"] = videoPath

	h.submit(w, r, domain.ModuleEnvAudio, taskID, payload, true)
}

// submit records the task and claims its queue slot. When the submission is
// rejected, any staged upload is removed so nothing orphaned stays on disk.
func (h *SubmitHandler) submit(
	w http.ResponseWriter,
	r *http.Request,
	module domain.Module,
	taskID uuid.UUID,
	payload map[string]any,
	staged bool,
) {
	created, err := h.submitter.Submit(taskID, module, payload)
	if err != nil {
		if staged {
			if cleanupErr := h.uploads.RemoveUploads(module, taskID); cleanupErr != nil {
				slog.Warn("failed to remove staged upload after rejected submission",
					"task_id", taskID,
					"module", module,
					"error", cleanupErr)
			}
		}
		respondSubmitError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, SubmitResponse{
		TaskID: created.ID.String(),
		Status: string(created.Status),
	})
}

// respondSubmitError maps submission failures onto API responses.
func respondSubmitError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, task.ErrQueueFull):
		shared.RespondWithError(w, r, http.StatusServiceUnavailable, "Task queue is full, try again later")
	case errors.Is(err, task.ErrQueueClosed):
		shared.RespondWithError(w, r, http.StatusServiceUnavailable, "Server is shutting down")
	default:
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to create task", err)
	}
}

// parseSubmitForm parses a submission body. Multipart is the primary
// encoding; plain urlencoded forms are accepted for file-less modules.
func parseSubmitForm(r *http.Request) error {
	err := r.ParseMultipartForm(maxMultipartMemory)
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return nil
	}
	return err
}

// parseFormFloat reads a float form field, treating absent or blank values
// as zero.
func parseFormFloat(r *http.Request, name string) (float64, error) {
	raw := strings.TrimSpace(shared.FormValue(r, name, ""))
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}
