package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthworks/gengate/internal/domain"
	"github.com/synthworks/gengate/internal/task"
)

// mockSubmitter is a mock implementation of TaskSubmitter for testing
type mockSubmitter struct {
	submitFn func(id uuid.UUID, module domain.Module, payload map[string]any) (*domain.Task, error)
	calls    []submitCall
}

type submitCall struct {
	id      uuid.UUID
	module  domain.Module
	payload map[string]any
}

func (m *mockSubmitter) Submit(id uuid.UUID, module domain.Module, payload map[string]any) (*domain.Task, error) {
	m.calls = append(m.calls, submitCall{id: id, module: module, payload: payload})
	if m.submitFn != nil {
		return m.submitFn(id, module, payload)
	}
	return &domain.Task{
		ID:        id,
		Module:    module,
		Status:    domain.TaskStatusQueued,
		CreatedAt: time.Now().UTC(),
		Payload:   payload,
	}, nil
}

// mockStager is a mock implementation of UploadStager for testing
type mockStager struct {
	saveFn  func(module domain.Module, taskID uuid.UUID, filename string) (string, error)
	saved   []stagedUpload
	removed []uuid.UUID
}

type stagedUpload struct {
	module   domain.Module
	taskID   uuid.UUID
	filename string
	content  string
}

func (m *mockStager) SaveUpload(module domain.Module, taskID uuid.UUID, filename string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.saved = append(m.saved, stagedUpload{module: module, taskID: taskID, filename: filename, content: string(data)})
	if m.saveFn != nil {
		return m.saveFn(module, taskID, filename)
	}
	return "/uploads/" + string(module) + "/" + taskID.String() + "/" + filename, nil
}

func (m *mockStager) RemoveUploads(module domain.Module, taskID uuid.UUID) error {
	m.removed = append(m.removed, taskID)
	return nil
}

// newMultipartRequest builds a multipart POST with the given scalar fields
// and, when fileField is non-empty, one file part.
func newMultipartRequest(
	t *testing.T,
	target string,
	fields map[string]string,
	fileField, fileName, fileContent string,
) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, value := range fields {
		require.NoError(t, mw.WriteField(name, value))
	}
	if fileField != "" {
		part, err := mw.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte(fileContent))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSubmitHandler_SubmitVoiceDesign(t *testing.T) {
	tests := []struct {
		name           string
		fields         map[string]string
		submitFn       func(id uuid.UUID, module domain.Module, payload map[string]any) (*domain.Task, error)
		expectedStatus int
		expectedErrMsg string
		wantPayload    map[string]any
	}{
		{
			name:           "successful_submission_with_defaults",
			fields:         map[string]string{"text": "warm narrator voice"},
			expectedStatus: http.StatusAccepted,
			wantPayload: map[string]any{
				"text":     "warm narrator voice",
				"instruct": "",
				"language": "Chinese",
			},
		},
		{
			name: "explicit_fields",
			fields: map[string]string{
				"text":     "newsreader",
				"instruct": "slightly husky",
				"language": "English",
			},
			expectedStatus: http.StatusAccepted,
			wantPayload: map[string]any{
				"text":     "newsreader",
				"instruct": "slightly husky",
				"language": "English",
			},
		},
		{
			name:           "missing_required_text",
			fields:         map[string]string{"instruct": "whisper"},
			expectedStatus: http.StatusBadRequest,
			expectedErrMsg: "Validation error",
		},
		{
			name:   "queue_full",
			fields: map[string]string{"text": "hello"},
			submitFn: func(id uuid.UUID, module domain.Module, payload map[string]any) (*domain.Task, error) {
				return nil, fmt.Errorf("failed to enqueue task: %w", task.ErrQueueFull)
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedErrMsg: "queue is full",
		},
		{
			name:   "shutting_down",
			fields: map[string]string{"text": "hello"},
			submitFn: func(id uuid.UUID, module domain.Module, payload map[string]any) (*domain.Task, error) {
				return nil, fmt.Errorf("failed to enqueue task: %w", task.ErrQueueClosed)
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedErrMsg: "shutting down",
		},
		{
			name:   "store_error",
			fields: map[string]string{"text": "hello"},
			submitFn: func(id uuid.UUID, module domain.Module, payload map[string]any) (*domain.Task, error) {
				return nil, errors.New("unexpected store error")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedErrMsg: "Failed to create task",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submitter := &mockSubmitter{submitFn: tt.submitFn}
			handler := NewSubmitHandler(submitter, &mockStager{})

			req := newMultipartRequest(t, "/api/submit/voice-design", tt.fields, "", "", "")
			w := httptest.NewRecorder()

			handler.SubmitVoiceDesign(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			body := decodeBody(t, w)

			if tt.expectedErrMsg != "" {
				errorMsg, ok := body["error"].(string)
				assert.True(t, ok, "Expected error field in response")
				assert.Contains(t, errorMsg, tt.expectedErrMsg)
				return
			}

			assert.Equal(t, string(domain.TaskStatusQueued), body["status"])
			assert.NotEmpty(t, body["task_id"])

			require.Len(t, submitter.calls, 1)
			call := submitter.calls[0]
			assert.Equal(t, domain.ModuleVoiceDesign, call.module)
			assert.Equal(t, call.id.String(), body["task_id"])
			assert.Equal(t, tt.wantPayload, call.payload)
		})
	}
}

func TestSubmitHandler_SubmitVoiceDesignAcceptsURLEncodedForm(t *testing.T) {
	submitter := &mockSubmitter{}
	handler := NewSubmitHandler(submitter, &mockStager{})

	form := url.Values{"text": {"hello"}}
	req := httptest.NewRequest(http.MethodPost, "/api/submit/voice-design", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	handler.SubmitVoiceDesign(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, submitter.calls, 1)
	assert.Equal(t, "hello", submitter.calls[0].payload["text"])
}

func TestSubmitHandler_SubmitTTS(t *testing.T) {
	t.Run("successful_submission", func(t *testing.T) {
		submitter := &mockSubmitter{}
		stager := &mockStager{}
		handler := NewSubmitHandler(submitter, stager)

		req := newMultipartRequest(t, "/api/submit/tts", map[string]string{
			"text_input":    "hello there",
			"emotion_happy": "0.5",
			"emotion_calm":  "1",
		}, "reference_audio", "ref.wav", "RIFF-ref-bytes")
		w := httptest.NewRecorder()

		handler.SubmitTTS(w, req)

		assert.Equal(t, http.StatusAccepted, w.Code)

		require.Len(t, stager.saved, 1)
		assert.Equal(t, domain.ModuleTTS, stager.saved[0].module)
		assert.Equal(t, "ref.wav", stager.saved[0].filename)
		assert.Equal(t, "RIFF-ref-bytes", stager.saved[0].content)

		require.Len(t, submitter.calls, 1)
		call := submitter.calls[0]
		assert.Equal(t, domain.ModuleTTS, call.module)
		assert.Equal(t, stager.saved[0].taskID, call.id, "upload must be staged under the task id")

		assert.Equal(t, "hello there", call.payload["text_input"])
		assert.Equal(t, "False", call.payload["use_random"])
		assert.Equal(t, 0.5, call.payload["emotion_happy"])
		assert.Equal(t, 1.0, call.payload["emotion_calm"])
		assert.Equal(t, 0.0, call.payload["emotion_angry"], "unsent sliders default to zero")
		assert.Contains(t, call.payload["reference_audio_path"], call.id.String())
	})

	t.Run("missing_text_input_rejected_before_staging", func(t *testing.T) {
		stager := &mockStager{}
		handler := NewSubmitHandler(&mockSubmitter{}, stager)

		req := newMultipartRequest(t, "/api/submit/tts", nil,
			"reference_audio", "ref.wav", "RIFF")
		w := httptest.NewRecorder()

		handler.SubmitTTS(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, stager.saved, "validation failures must not stage uploads")
	})

	t.Run("invalid_emotion_value", func(t *testing.T) {
		handler := NewSubmitHandler(&mockSubmitter{}, &mockStager{})

		req := newMultipartRequest(t, "/api/submit/tts", map[string]string{
			"text_input":    "hi",
			"emotion_angry": "loud",
		}, "reference_audio", "ref.wav", "RIFF")
		w := httptest.NewRecorder()

		handler.SubmitTTS(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeBody(t, w)
		assert.Contains(t, body["error"], "emotion_angry")
	})

	t.Run("missing_reference_audio", func(t *testing.T) {
		handler := NewSubmitHandler(&mockSubmitter{}, &mockStager{})

		req := newMultipartRequest(t, "/api/submit/tts", map[string]string{
			"text_input": "hi",
		}, "", "", "")
		w := httptest.NewRecorder()

		handler.SubmitTTS(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeBody(t, w)
		assert.Contains(t, body["error"], "reference_audio")
	})

	t.Run("queue_full_removes_staged_upload", func(t *testing.T) {
		submitter := &mockSubmitter{
			submitFn: func(id uuid.UUID, module domain.Module, payload map[string]any) (*domain.Task, error) {
				return nil, fmt.Errorf("failed to enqueue task: %w", task.ErrQueueFull)
			},
		}
		stager := &mockStager{}
		handler := NewSubmitHandler(submitter, stager)

		req := newMultipartRequest(t, "/api/submit/tts", map[string]string{
			"text_input": "hi",
		}, "reference_audio", "ref.wav", "RIFF")
		w := httptest.NewRecorder()

		handler.SubmitTTS(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		require.Len(t, stager.saved, 1)
		assert.Equal(t, []uuid.UUID{stager.saved[0].taskID}, stager.removed,
			"rejected submissions must not leave staged files behind")
	})
}

func TestSubmitHandler_SubmitEnvAudio(t *testing.T) {
	t.Run("successful_submission_with_defaults", func(t *testing.T) {
		submitter := &mockSubmitter{}
		stager := &mockStager{}
		handler := NewSubmitHandler(submitter, stager)

		req := newMultipartRequest(t, "/api/submit/env-audio", nil,
			"video", "scene.mp4", "MP4-bytes")
		w := httptest.NewRecorder()

		handler.SubmitEnvAudio(w, req)

		assert.Equal(t, http.StatusAccepted, w.Code)

		require.Len(t, submitter.calls, 1)
		call := submitter.calls[0]
		assert.Equal(t, domain.ModuleEnvAudio, call.module)
		assert.Equal(t, "", call.payload["prompt"])
		assert.Equal(t, "", call.payload["negative_prompt"])
		assert.Equal(t, "mix", call.payload["audio_mix_mode"])
		assert.Equal(t, "0.25", call.payload["ambient_volume"])
		assert.Equal(t, "0.3", call.payload["bgm_volume"])
		assert.Equal(t, "25", call.payload["num_steps"])
		assert.Equal(t, "4.5", call.payload["cfg_strength"])
		assert.Contains(t, call.payload["video_path"], "scene.mp4")

		require.Len(t, stager.saved, 1)
		assert.Equal(t, domain.ModuleEnvAudio, stager.saved[0].module)
	})

	t.Run("custom_knobs", func(t *testing.T) {
		submitter := &mockSubmitter{}
		handler := NewSubmitHandler(submitter, &mockStager{})

		req := newMultipartRequest(t, "/api/submit/env-audio", map[string]string{
			"prompt":         "rain on leaves",
			"audio_mix_mode": "replace",
			"num_steps":      "50",
		}, "video", "scene.mp4", "MP4")
		w := httptest.NewRecorder()

		handler.SubmitEnvAudio(w, req)

		assert.Equal(t, http.StatusAccepted, w.Code)
		require.Len(t, submitter.calls, 1)
		payload := submitter.calls[0].payload
		assert.Equal(t, "rain on leaves", payload["prompt"])
		assert.Equal(t, "replace", payload["audio_mix_mode"])
		assert.Equal(t, "50", payload["num_steps"])
		assert.Equal(t, "4.5", payload["cfg_strength"], "unsent knobs keep their defaults")
	})

	t.Run("missing_video", func(t *testing.T) {
		handler := NewSubmitHandler(&mockSubmitter{}, &mockStager{})

		req := newMultipartRequest(t, "/api/submit/env-audio", map[string]string{
			"prompt": "rain",
		}, "", "", "")
		w := httptest.NewRecorder()

		handler.SubmitEnvAudio(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeBody(t, w)
		assert.Contains(t, body["error"], "video")
	})

	t.Run("rejects_non_multipart_body", func(t *testing.T) {
		handler := NewSubmitHandler(&mockSubmitter{}, &mockStager{})

		req := httptest.NewRequest(http.MethodPost, "/api/submit/env-audio", strings.NewReader("prompt=rain"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()

		handler.SubmitEnvAudio(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
