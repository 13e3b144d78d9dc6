package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/synthworks/gengate/internal/api/shared"
	"github.com/synthworks/gengate/internal/domain"
)

// RunRequest is the JSON body accepted by the integration alias endpoint.
type RunRequest struct {
	Text     string `json:"text"`
	Instruct string `json:"instruct"`
	Language string `json:"language"`
}

// RunHandler serves POST /api/run/{app}, a JSON alias kept for external
// integrations that drive every app through one endpoint. Only the voice
// design app can run this way; the file-bearing apps answer with a pointer
// to their multipart submit endpoints.
type RunHandler struct {
	submitter TaskSubmitter
}

// NewRunHandler creates a new RunHandler
func NewRunHandler(submitter TaskSubmitter) *RunHandler {
	return &RunHandler{submitter: submitter}
}

// RunApp handles POST /api/run/{app} requests
func (h *RunHandler) RunApp(w http.ResponseWriter, r *http.Request) {
	app := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "app")))

	module, err := domain.ParseModule(resolveAppAlias(app))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Unknown app: "+app)
		return
	}

	if module == domain.ModuleVoiceDesign {
		h.runVoiceDesign(w, r, app)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, RunResponse{
		OK:      true,
		Message: "Received. This app needs a file upload; use the multipart submit endpoint",
		App:     app,
		Next: map[string]string{
			"tts":       "/api/submit/tts",
			"env_audio": "/api/submit/env-audio",
		},
	})
}

// resolveAppAlias maps the legacy app1..app3 names onto module names.
func resolveAppAlias(app string) string {
	switch app {
	case "app1":
		return string(domain.ModuleVoiceDesign)
	case "app2":
		return string(domain.ModuleTTS)
	case "app3":
		return string(domain.ModuleEnvAudio)
	default:
		return app
	}
}

// runVoiceDesign enqueues a real voice design job from a JSON body. An empty
// body is allowed and fails the text requirement like any other blank text.
func (h *RunHandler) runVoiceDesign(w http.ResponseWriter, r *http.Request, app string) {
	var req RunRequest
	if err := shared.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "voice_design requires a text field")
		return
	}

	language := req.Language
	if language == "" {
		language = "Chinese"
	}

	payload := map[string]any{
		"text":     text,
		"instruct": req.Instruct,
		"language": language,
	}

	created, err := h.submitter.Submit(uuid.New(), domain.ModuleVoiceDesign, payload)
	if err != nil {
		respondSubmitError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, RunResponse{
		OK:      true,
		Message: "Accepted and queued",
		App:     app,
		TaskID:  created.ID.String(),
		Status:  string(created.Status),
	})
}
