package main

import (
	"errors"
	"fmt"
	"io"

	"voltweb/internal/dataprocessing"
	"voltweb/internal/files"
	"voltweb/internal/validation"
	"voltweb/pkg/contracts/domain"
)

var errNoInputs = errors.New("no input files: pass file paths or --dir")

// collectSources resolves the file arguments and --dir into pipeline
// sources. Arguments come first, in the order given.
func (o *globalOptions) collectSources(args []string) ([]dataprocessing.Source, error) {
	validator := validation.NewFileValidator(validation.UploadLimits{}, o.logger)

	var sources []dataprocessing.Source
	for _, path := range args {
		if err := validator.ValidateFile(path); err != nil {
			return nil, err
		}
		sources = append(sources, dataprocessing.FileSource(path))
	}

	if o.dir != "" {
		if err := validator.ValidateInputDirectory(o.dir); err != nil {
			return nil, err
		}

		discovery := files.NewDiscovery("")
		var (
			found []files.FileInfo
			err   error
		)
		if o.pattern != "" {
			found, err = discovery.FindFilesByPattern(o.dir, o.pattern)
		} else {
			found, err = discovery.FindMeasurementFiles(o.dir)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", o.dir, err)
		}
		sources = append(sources, files.Sources(found)...)
	}

	if len(sources) == 0 {
		return nil, errNoInputs
	}
	return sources, nil
}

// printDiagnostics writes one line per diagnostic
func printDiagnostics(w io.Writer, diags []domain.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(w, "%s: %s: %s\n", d.Severity, d.File, d.Message)
	}
}
