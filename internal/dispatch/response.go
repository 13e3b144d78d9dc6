package dispatch

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/synthworks/gengate/internal/files"
	"github.com/synthworks/gengate/internal/task"
)

// maxErrorBodyBytes caps how much of an error response body enters the task
// record's error message.
const maxErrorBodyBytes = 2048

// interpretResponse turns a backend's HTTP response into a task outcome.
// The interpretation is the same for every call shape:
//
//   - JSON bodies become the task result as decoded; an object carrying a
//     non-empty "output_file" string additionally sets the artifact path.
//   - audio/*, video/* and octet-stream bodies are persisted as .wav, .mp4
//     and .bin artifacts, with a small summary as the result.
//   - anything else is kept verbatim as {"text": body}.
//
// Non-2xx responses never produce an outcome; they fail with the status code
// and a trimmed body snippet.
func interpretResponse(fm *files.Manager, resp *http.Response) (*task.Outcome, error) {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, errorf(KindBackendStatus, "backend returned status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	contentType := resp.Header.Get("Content-Type")

	switch {
	case strings.Contains(contentType, "application/json"):
		var result any
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, newError(KindResponseInvalid, fmt.Errorf("failed to decode JSON response: %w", err))
		}

		outcome := &task.Outcome{Result: result}
		if obj, ok := result.(map[string]any); ok {
			if path, ok := obj["output_file"].(string); ok && path != "" {
				outcome.OutputFile = path
			}
		}
		return outcome, nil

	case strings.HasPrefix(contentType, "audio/"),
		strings.HasPrefix(contentType, "video/"),
		strings.Contains(contentType, "octet-stream"):
		return persistBinary(fm, contentType, resp.Body)

	default:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, newError(KindResponseInvalid, fmt.Errorf("failed to read response body: %w", err))
		}
		return &task.Outcome{Result: map[string]any{"text": string(body)}}, nil
	}
}

// persistBinary streams a binary response body into a fresh artifact file.
func persistBinary(fm *files.Manager, contentType string, body io.Reader) (*task.Outcome, error) {
	ext, kind := ".bin", "binary"
	switch {
	case strings.HasPrefix(contentType, "audio/"):
		ext, kind = ".wav", "audio"
	case strings.HasPrefix(contentType, "video/"):
		ext, kind = ".mp4", "video"
	}

	f, path, err := fm.CreateOutput(ext)
	if err != nil {
		return nil, newError(KindOutputWriteFailed, err)
	}

	size, copyErr := io.Copy(f, body)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		// Drop the partial artifact so it cannot be downloaded.
		_ = fm.Remove(path)
		if copyErr == nil {
			copyErr = closeErr
		}
		return nil, newError(KindOutputWriteFailed, fmt.Errorf("failed to persist artifact: %w", copyErr))
	}

	return &task.Outcome{
		Result:     map[string]any{"kind": kind, "size_bytes": size},
		OutputFile: path,
	}, nil
}
