package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/synthworks/gengate/internal/config"
	"github.com/synthworks/gengate/internal/files"
	"github.com/synthworks/gengate/internal/task"
)

// VoiceDesign drives the voice design backend. It uses the structured call
// shape: a flat JSON object whose keys go through the configured field
// mapping.
type VoiceDesign struct {
	cfg    config.BackendConfig
	client *http.Client
	files  *files.Manager
	logger *slog.Logger
}

// NewVoiceDesign creates the voice design dispatcher.
func NewVoiceDesign(cfg config.BackendConfig, fm *files.Manager, logger *slog.Logger) *VoiceDesign {
	return &VoiceDesign{
		cfg:    cfg,
		client: newHTTPClient(cfg),
		files:  fm,
		logger: logger.With("dispatcher", "voice_design"),
	}
}

// Dispatch posts the voice description to the backend and interprets the
// response.
func (d *VoiceDesign) Dispatch(ctx context.Context, payload map[string]any) (*task.Outcome, error) {
	body := map[string]any{
		d.cfg.FieldName("text"):     payload["text"],
		d.cfg.FieldName("instruct"): payload["instruct"],
		d.cfg.FieldName("language"): payload["language"],
	}

	buf, err := json.Marshal(body)
	if err != nil {
		return nil, newError(KindRequestFailed, fmt.Errorf("failed to encode request body: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.URL, bytes.NewReader(buf))
	if err != nil {
		return nil, newError(KindRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	d.logger.Debug("calling backend", "url", d.cfg.URL)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer func() { _ = resp.Body.Close() }()

	return interpretResponse(d.files, resp)
}
