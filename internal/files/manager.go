package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Manager writes artifacts into one output directory
type Manager struct {
	dir    string
	logger *slog.Logger
}

// NewManager creates a manager writing into dir
func NewManager(dir string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		dir:    dir,
		logger: logger.With(slog.String("component", "file_manager")),
	}
}

// Dir returns the output directory
func (m *Manager) Dir() string {
	return m.dir
}

// EnsureDirectory creates the output directory if it doesn't exist
func (m *Manager) EnsureDirectory() error {
	return os.MkdirAll(m.dir, 0755)
}

// WriteArtifact streams write into name inside the output directory. The
// data goes to a temporary file that is renamed into place on success and
// removed on failure. It returns the full path written.
func (m *Manager) WriteArtifact(name string, write func(io.Writer) error) (string, error) {
	if err := m.EnsureDirectory(); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	fullPath := filepath.Join(m.dir, filepath.Base(name))
	tmp, err := os.CreateTemp(m.dir, "."+filepath.Base(name)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}

	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to flush %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to move %s into place: %w", name, err)
	}

	m.logger.Info("Wrote artifact", slog.String("full_path", fullPath))
	return fullPath, nil
}

// ListFiles returns the names of the files in the output directory
func (m *Manager) ListFiles() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}
