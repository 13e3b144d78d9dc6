package dispatch

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/synthworks/gengate/internal/config"
	"github.com/synthworks/gengate/internal/files"
	"github.com/synthworks/gengate/internal/task"
)

// envAudioScalarFields are the payload fields sent alongside the source video.
var envAudioScalarFields = []string{
	"prompt",
	"negative_prompt",
	"audio_mix_mode",
	"ambient_volume",
	"bgm_volume",
	"num_steps",
	"cfg_strength",
}

// EnvAudio drives the environment audio backend. Like speech synthesis it
// uses the file-plus-fields call shape, streaming the staged source video
// with the generation knobs as sibling fields.
type EnvAudio struct {
	cfg    config.BackendConfig
	client *http.Client
	files  *files.Manager
	logger *slog.Logger
}

// NewEnvAudio creates the environment audio dispatcher.
func NewEnvAudio(cfg config.BackendConfig, fm *files.Manager, logger *slog.Logger) *EnvAudio {
	return &EnvAudio{
		cfg:    cfg,
		client: newHTTPClient(cfg),
		files:  fm,
		logger: logger.With("dispatcher", "env_audio"),
	}
}

// Dispatch posts the generation request to the backend and interprets the
// response.
func (d *EnvAudio) Dispatch(ctx context.Context, payload map[string]any) (*task.Outcome, error) {
	filePath, _ := payload["video_path"].(string)
	if filePath == "" {
		return nil, errorf(KindRequestFailed, "payload carries no source video path")
	}

	fields := make(map[string]string, len(envAudioScalarFields))
	for _, name := range envAudioScalarFields {
		fields[d.cfg.FieldName(name)] = formatFieldValue(payload[name])
	}

	req, err := newMultipartRequest(ctx, d.cfg.URL, fields, d.cfg.FieldName("video"), filePath)
	if err != nil {
		return nil, newError(KindRequestFailed, err)
	}

	d.logger.Debug("calling backend", "url", d.cfg.URL)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer func() { _ = resp.Body.Close() }()

	return interpretResponse(d.files, resp)
}
