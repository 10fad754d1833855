package dataprocessing

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"voltweb/pkg/contracts/domain"
)

// Source is a named measurement file that can be opened for reading
type Source struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// FileSource returns a Source reading the file at path
func FileSource(path string) Source {
	return Source{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// LoadInputs reads every source into a table in parallel, with at most
// workers reads in flight. The returned inputs keep the order of sources and
// carry per-file read errors instead of failing the whole load.
func LoadInputs(ctx context.Context, sources []Source, workers int) ([]Input, error) {
	inputs := make([]Input, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, src := range sources {
		inputs[i].Name = src.Name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			inputs[i].Table, inputs[i].Err = loadSource(src)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading inputs: %w", err)
	}
	return inputs, nil
}

func loadSource(src Source) (*domain.RawTable, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", src.Name, err)
	}
	defer rc.Close()

	return ReadTable(src.Name, rc)
}
