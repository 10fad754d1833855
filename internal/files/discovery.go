package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"voltweb/internal/dataprocessing"
	"voltweb/internal/validation"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a discovery rooted at basePath. Relative directories
// passed to its methods resolve against it.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// FindMeasurementFiles lists the measurement files directly inside dir,
// sorted by name. Subdirectories are not searched.
func (d *Discovery) FindMeasurementFiles(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !validation.IsMeasurementFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sortByName(files)
	return files, nil
}

// FindFilesByPattern finds files in dir matching a glob pattern, sorted by name
func (d *Discovery) FindFilesByPattern(dir, pattern string) ([]FileInfo, error) {
	matches, err := filepath.Glob(filepath.Join(d.resolve(dir), pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}

	var files []FileInfo
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, FileInfo{
			Path:    match,
			Name:    filepath.Base(match),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sortByName(files)
	return files, nil
}

// Sources converts discovered files into pipeline sources, keeping order
func Sources(files []FileInfo) []dataprocessing.Source {
	sources := make([]dataprocessing.Source, len(files))
	for i, f := range files {
		sources[i] = dataprocessing.FileSource(f.Path)
	}
	return sources
}

func sortByName(files []FileInfo) {
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
}
