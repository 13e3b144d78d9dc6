package dispatch

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
)

// newMultipartRequest assembles the file-plus-fields call shape. The staged
// file is streamed through a pipe rather than buffered, since source videos
// can run to hundreds of megabytes.
func newMultipartRequest(
	ctx context.Context,
	url string,
	fields map[string]string,
	fileField string,
	filePath string,
) (*http.Request, error) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		if err := writeMultipartBody(writer, fields, fileField, filePath); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		_ = pw.CloseWithError(writer.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pr)
	if err != nil {
		_ = pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req, nil
}

func writeMultipartBody(
	writer *multipart.Writer,
	fields map[string]string,
	fileField string,
	filePath string,
) error {
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return fmt.Errorf("failed to write field %s: %w", name, err)
		}
	}

	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open staged file: %w", err)
	}
	defer func() { _ = f.Close() }()

	part, err := writer.CreateFormFile(fileField, filepath.Base(filePath))
	if err != nil {
		return fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to stream staged file: %w", err)
	}
	return nil
}

// formatFieldValue renders a payload value as a form field. Values coming
// out of decoded form submissions are strings or float64s; anything else
// falls back to fmt formatting.
func formatFieldValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}
