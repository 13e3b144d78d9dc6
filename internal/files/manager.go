// Package files owns the gateway's on-disk layout: staged uploads under the
// upload directory and produced artifacts under the output directory.
package files

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/synthworks/gengate/internal/domain"
)

// Common file manager errors.
var (
	// ErrNoOutputFile is returned when a task record carries no output file.
	ErrNoOutputFile = errors.New("task has no output file")

	// ErrOutputMissing is returned when a recorded output file is gone from disk.
	ErrOutputMissing = errors.New("output file missing on disk")
)

// Manager stages uploads and stores produced artifacts.
//
// Upload layout: <uploadDir>/<module>/<taskID>/<sanitized name>.
// Output layout: <outputDir>/<uuid><ext>.
type Manager struct {
	uploadDir string
	outputDir string
}

// NewManager creates a Manager rooted at the given directories.
func NewManager(uploadDir, outputDir string) *Manager {
	return &Manager{
		uploadDir: uploadDir,
		outputDir: outputDir,
	}
}

// EnsureDirs creates the upload and output directories if they do not exist.
func (m *Manager) EnsureDirs() error {
	for _, dir := range []string{m.uploadDir, m.outputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// SanitizeFilename reduces a client-supplied filename to a safe base name.
// Directory components are stripped, so "../../etc/passwd" becomes "passwd".
// Names that sanitize to nothing get a generated one with a .bin extension.
func SanitizeFilename(name string) string {
	// Browsers on Windows may send full paths with backslashes.
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)

	if name == "" || name == "." || name == ".." || name == "/" {
		return uuid.NewString() + ".bin"
	}
	return name
}

// SaveUpload stages an uploaded file for the given task and returns its
// absolute path. Each task gets its own directory so concurrent submissions
// with identical filenames never collide.
func (m *Manager) SaveUpload(module domain.Module, taskID uuid.UUID, filename string, r io.Reader) (string, error) {
	dir := filepath.Join(m.uploadDir, string(module), taskID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	dest := filepath.Join(dir, SanitizeFilename(filename))
	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	abs, err := filepath.Abs(dest)
	if err != nil {
		return "", fmt.Errorf("failed to resolve upload path: %w", err)
	}
	return abs, nil
}

// CreateOutput opens a fresh uniquely named artifact file with the given
// extension (".wav", ".mp4", ".bin"). The caller owns closing the file.
func (m *Manager) CreateOutput(ext string) (*os.File, string, error) {
	dest := filepath.Join(m.outputDir, uuid.NewString()+ext)

	f, err := os.Create(dest)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create output file: %w", err)
	}

	abs, err := filepath.Abs(dest)
	if err != nil {
		_ = f.Close()
		return nil, "", fmt.Errorf("failed to resolve output path: %w", err)
	}
	return f, abs, nil
}

// ResolveOutput locates a task's artifact for download. It returns the
// on-disk path and the name the file should be served under.
func (m *Manager) ResolveOutput(t *domain.Task) (string, string, error) {
	if t.OutputFile == "" {
		return "", "", ErrNoOutputFile
	}
	if _, err := os.Stat(t.OutputFile); err != nil {
		return "", "", fmt.Errorf("%w: %s", ErrOutputMissing, t.OutputFile)
	}
	return t.OutputFile, filepath.Base(t.OutputFile), nil
}

// Remove deletes a single artifact. A file that is already gone is not an
// error.
func (m *Manager) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// RemoveUploads deletes the staging directory of one task.
func (m *Manager) RemoveUploads(module domain.Module, taskID uuid.UUID) error {
	dir := filepath.Join(m.uploadDir, string(module), taskID.String())
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove uploads for task %s: %w", taskID, err)
	}
	return nil
}
