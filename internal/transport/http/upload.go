package http

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"voltweb/internal/dataprocessing"
	apierrors "voltweb/internal/errors"
	"voltweb/internal/validation"
)

// uploadFields are the multipart fields that carry measurement files
var uploadFields = []string{"files", "files[]"}

// defaultMultipartMemory is kept in memory before parts spill to disk
const defaultMultipartMemory = 32 << 20

// parseUploads reads the multipart form of r and returns its files as
// pipeline sources, in upload order. Callers must call cleanupUploads.
func parseUploads(r *http.Request, validator *validation.FileValidator, maxMemory int64) ([]dataprocessing.Source, error) {
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, err
		}
		return nil, apierrors.InvalidRequestWithError(err)
	}

	var headers []*multipart.FileHeader
	for _, field := range uploadFields {
		headers = append(headers, r.MultipartForm.File[field]...)
	}

	uploads := make([]validation.Upload, len(headers))
	for i, fh := range headers {
		uploads[i] = validation.Upload{Name: filepath.Base(fh.Filename), Size: fh.Size}
	}
	if err := validator.ValidateUploads(uploads); err != nil {
		return nil, err
	}

	sources := make([]dataprocessing.Source, len(headers))
	for i, fh := range headers {
		sources[i] = dataprocessing.Source{
			Name: uploads[i].Name,
			Open: func() (io.ReadCloser, error) { return fh.Open() },
		}
	}
	return sources, nil
}

func cleanupUploads(r *http.Request) {
	if r.MultipartForm != nil {
		r.MultipartForm.RemoveAll()
	}
}
