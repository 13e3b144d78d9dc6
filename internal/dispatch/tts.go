package dispatch

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/synthworks/gengate/internal/config"
	"github.com/synthworks/gengate/internal/files"
	"github.com/synthworks/gengate/internal/task"
)

// ttsScalarFields are the payload fields sent alongside the reference audio.
var ttsScalarFields = []string{
	"text_input",
	"emotion_happy",
	"emotion_angry",
	"emotion_sad",
	"emotion_fear",
	"emotion_disgust",
	"emotion_melancholy",
	"emotion_surprise",
	"emotion_calm",
	"use_random",
}

// TTS drives the speech synthesis backend. It uses the file-plus-fields call
// shape: the staged reference audio is streamed as a multipart file part with
// the synthesis parameters as sibling fields.
type TTS struct {
	cfg    config.BackendConfig
	client *http.Client
	files  *files.Manager
	logger *slog.Logger
}

// NewTTS creates the speech synthesis dispatcher.
func NewTTS(cfg config.BackendConfig, fm *files.Manager, logger *slog.Logger) *TTS {
	return &TTS{
		cfg:    cfg,
		client: newHTTPClient(cfg),
		files:  fm,
		logger: logger.With("dispatcher", "tts"),
	}
}

// Dispatch posts the synthesis request to the backend and interprets the
// response.
func (d *TTS) Dispatch(ctx context.Context, payload map[string]any) (*task.Outcome, error) {
	filePath, _ := payload["reference_audio_path"].(string)
	if filePath == "" {
		return nil, errorf(KindRequestFailed, "payload carries no reference audio path")
	}

	fields := make(map[string]string, len(ttsScalarFields))
	for _, name := range ttsScalarFields {
		fields[d.cfg.FieldName(name)] = formatFieldValue(payload[name])
	}

	req, err := newMultipartRequest(ctx, d.cfg.URL, fields, d.cfg.FieldName("reference_audio"), filePath)
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
