package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apierrors "voltweb/internal/errors"
)

// AllowedExtensions lists the accepted measurement file extensions
var AllowedExtensions = []string{".csv", ".txt"}

// IsMeasurementFile reports whether name has an accepted extension
func IsMeasurementFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// Upload describes one uploaded file before it is read
type Upload struct {
	Name string
	Size int64
}

// UploadLimits bounds an upload batch. Zero values disable a limit.
type UploadLimits struct {
	MaxFiles     int
	MaxFileBytes int64
}

// FileValidator checks uploads and local files before they reach the pipeline
type FileValidator struct {
	limits UploadLimits
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(limits UploadLimits, logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		limits: limits,
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateUploads checks every upload and reports all problems at once as a
// validation error keyed by file name
func (v *FileValidator) ValidateUploads(uploads []Upload) error {
	if len(uploads) == 0 {
		return apierrors.ErrNoFilesUploaded
	}

	var problems []apierrors.ValidationError
	if v.limits.MaxFiles > 0 && len(uploads) > v.limits.MaxFiles {
		problems = append(problems, apierrors.ValidationError{
			Field:   "files",
			Message: fmt.Sprintf("at most %d files can be uploaded at once, got %d", v.limits.MaxFiles, len(uploads)),
		})
	}

	for _, u := range uploads {
		if msg := v.checkUpload(u); msg != "" {
			problems = append(problems, apierrors.ValidationError{Field: u.Name, Message: msg})
		}
	}

	if len(problems) > 0 {
		v.logger.Warn("upload rejected",
			slog.Int("files", len(uploads)),
			slog.Int("problems", len(problems)))
		return apierrors.NewValidationErrors(problems)
	}
	return nil
}

func (v *FileValidator) checkUpload(u Upload) string {
	switch {
	case strings.TrimSpace(u.Name) == "":
		return "file name is required"
	case !IsMeasurementFile(u.Name):
		return fmt.Sprintf("unsupported file type %q, expected one of %s",
			filepath.Ext(u.Name), strings.Join(AllowedExtensions, ", "))
	case u.Size == 0:
		return "file is empty"
	case v.limits.MaxFileBytes > 0 && u.Size > v.limits.MaxFileBytes:
		return fmt.Sprintf("file is %d bytes, the limit is %d", u.Size, v.limits.MaxFileBytes)
	}
	return ""
}

// ValidateInputDirectory validates that dir exists and is a directory
func (v *FileValidator) ValidateInputDirectory(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Input directory does not exist",
			slog.String("directory", dir))
		return fmt.Errorf("input directory %s does not exist", dir)
	}
	if err != nil {
		return fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		v.logger.Error("Input path is not a directory",
			slog.String("path", dir))
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// ValidateOutputDirectory ensures dir exists or can be created, and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test-*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())

	return nil
}

// ValidateFile checks that path is a readable, non-empty measurement file
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	if msg := v.checkUpload(Upload{Name: filepath.Base(path), Size: info.Size()}); msg != "" {
		return fmt.Errorf("%s: %s", path, msg)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}
