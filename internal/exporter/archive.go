package exporter

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"voltweb/pkg/contracts/domain"
)

// Entry is one named table inside an archive or workbook
type Entry struct {
	Name  string
	Table *domain.WideTable
}

// WriteArchive writes every entry as a CSV file inside a zip archive.
// Duplicate entry names get a numeric suffix.
func WriteArchive(w io.Writer, entries []Entry, options WriteOptions) error {
	zw := zip.NewWriter(w)
	names := newNameSet()

	for _, entry := range entries {
		header := &zip.FileHeader{
			Name:     names.unique(entry.Name),
			Method:   zip.Deflate,
			Modified: time.Now(),
		}
		fw, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("failed to create archive entry %s: %w", header.Name, err)
		}
		if err := WriteWide(fw, entry.Table, options); err != nil {
			return fmt.Errorf("failed to write archive entry %s: %w", header.Name, err)
		}
	}

	return zw.Close()
}

type nameSet map[string]int

func newNameSet() nameSet {
	return make(nameSet)
}

// unique returns name, or name with a "_<n>" suffix before the extension
// when it was already used
func (s nameSet) unique(name string) string {
	key := strings.ToLower(name)
	s[key]++
	if s[key] == 1 {
		return name
	}

	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for n := s[key]; ; n++ {
		candidate := fmt.Sprintf("%s_%d%s", base, n, ext)
		if _, taken := s[strings.ToLower(candidate)]; !taken {
			s[strings.ToLower(candidate)] = 1
			return candidate
		}
	}
}
