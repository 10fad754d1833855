package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"voltweb/internal/dataprocessing"
	apierrors "voltweb/internal/errors"
	"voltweb/internal/exporter"
	"voltweb/internal/files"
	"voltweb/internal/services"
	"voltweb/internal/visualization"
	"voltweb/pkg/contracts/domain"
)

func newClassifyCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "classify [files...]",
		Short: "Detect the technique and available scans of each file",
		Example: `  voltproc classify run1.csv run2.csv
  voltproc classify --dir ./measurements --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, err := opts.collectSources(args)
			if err != nil {
				return err
			}

			service := services.NewVoltammetryService(opts.cfg, opts.logger)
			result, err := service.ProcessBatch(cmd.Context(), sources, dataprocessing.AllScans)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			printDiagnostics(cmd.ErrOrStderr(), result.Diagnostics)
			return writeClassification(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full batch result as JSON")
	return cmd
}

func writeClassification(w io.Writer, result *domain.BatchResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tFILE\tTECHNIQUE\tSCANS\tSERIES")
	for _, f := range result.Files {
		scans := make([]string, len(f.Scans))
		for i, s := range f.Scans {
			scans[i] = strconv.Itoa(s)
		}
		series := strconv.Itoa(len(f.Series))
		if f.Failed {
			series = "failed"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", f.Index, f.Name, f.Technique, strings.Join(scans, ","), series)
	}
	return tw.Flush()
}

func newPlotCmd(opts *globalOptions) *cobra.Command {
	var scans, out, format string

	cmd := &cobra.Command{
		Use:   "plot [files...]",
		Short: "Render the combined plot of the selected scans",
		Example: `  voltproc plot --scans 1-3,5 --out combined.svg --format svg run1.csv run2.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			imageFormat, err := visualization.ParseImageFormat(format)
			if err != nil {
				return err
			}
			sources, err := opts.collectSources(args)
			if err != nil {
				return err
			}

			service := services.NewVoltammetryService(opts.cfg, opts.logger)
			result, err := service.ProcessBatch(cmd.Context(), sources, scans)
			if err != nil {
				return err
			}
			printDiagnostics(cmd.ErrOrStderr(), result.Diagnostics)

			image, err := service.RenderPlot(cmd.Context(), imageFormat)
			if errors.Is(err, apierrors.ErrNoPlot) {
				return fmt.Errorf("none of the %d files produced a series to plot", len(result.Files))
			}
			if err != nil {
				return err
			}

			manager, name, err := opts.artifactTarget(out, "combined_plot."+string(imageFormat))
			if err != nil {
				return err
			}
			path, err := manager.WriteArtifact(name, func(w io.Writer) error {
				_, err := w.Write(image)
				return err
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d series from %d/%d files)\n",
				path, len(result.Combined.Series), result.Succeeded(), len(result.Files))
			return nil
		},
	}

	cmd.Flags().StringVar(&scans, "scans", "", "scan selection, e.g. \"all\" or \"1-3,5\" (default from config)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: exports directory)")
	cmd.Flags().StringVar(&format, "format", "png", "image format: png or svg")
	return cmd
}

func newExportCmd(opts *globalOptions) *cobra.Command {
	var out, format string
	var split bool

	cmd := &cobra.Command{
		Use:   "export [files...]",
		Short: "Reshape CV files into wide per-scan tables",
		Long: `export writes every CV file as a wide table with one potential and one
current column per scan. Several files are bundled into a zip archive, or
into one workbook with --format xlsx. --split writes one CSV per file into
the output directory instead.`,
		Example: `  voltproc export --dir ./measurements --format xlsx
  voltproc export --split --out ./wide run1.csv run2.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			exportFormat, err := exporter.ParseFormat(format)
			if err != nil {
				return err
			}
			if split && exportFormat != exporter.FormatCSV {
				return errors.New("--split only applies to csv exports")
			}
			sources, err := opts.collectSources(args)
			if err != nil {
				return err
			}

			service := services.NewVoltammetryService(opts.cfg, opts.logger)
			prepared, err := service.Export(cmd.Context(), sources, exportFormat)
			if prepared != nil {
				printDiagnostics(cmd.ErrOrStderr(), prepared.Diagnostics)
			}
			if err != nil {
				return err
			}

			var written []string
			if split {
				written, err = opts.writeSplit(out, prepared)
			} else {
				written, err = opts.writeBundle(out, prepared, exportFormat)
			}
			if err != nil {
				return err
			}

			for _, path := range written {
				fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, or directory with --split (default: exports directory)")
	cmd.Flags().StringVar(&format, "format", "csv", "export format: csv or xlsx")
	cmd.Flags().BoolVar(&split, "split", false, "write one CSV per file instead of a bundle")
	return cmd
}

func (o *globalOptions) writeBundle(out string, prepared *exporter.Prepared, format exporter.Format) ([]string, error) {
	manager, name, err := o.artifactTarget(out, prepared.FileName(format))
	if err != nil {
		return nil, err
	}
	path, err := manager.WriteArtifact(name, func(w io.Writer) error {
		return prepared.Write(w, format)
	})
	if err != nil {
		return nil, err
	}
	return []string{path}, nil
}

func (o *globalOptions) writeSplit(outDir string, prepared *exporter.Prepared) ([]string, error) {
	paths, err := o.cfg.GetPaths()
	if err != nil {
		return nil, err
	}
	if outDir != "" {
		if outDir, err = filepath.Abs(outDir); err != nil {
			return nil, err
		}
	}

	writer := exporter.NewCSVWriter(paths, exporter.WriteOptions{
		MissingValue: o.cfg.Export.MissingValue,
		BOMPrefix:    o.cfg.Export.BOMPrefix,
	}, o.logger)

	written := make([]string, 0, len(prepared.Entries))
	for _, entry := range prepared.Entries {
		name := entry.Name
		if !strings.EqualFold(filepath.Ext(name), ".csv") {
			name += ".csv"
		}
		if outDir != "" {
			name = filepath.Join(outDir, name)
		}
		path, err := writer.WriteFile(name, entry.Table)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// artifactTarget splits out into a manager for its directory and a file
// name. An empty out places fallback in the exports directory.
func (o *globalOptions) artifactTarget(out, fallback string) (*files.Manager, string, error) {
	if out != "" {
		return files.NewManager(filepath.Dir(out), o.logger), filepath.Base(out), nil
	}

	paths, err := o.cfg.GetPaths()
	if err != nil {
		return nil, "", err
	}
	return files.NewManager(paths.ExportsDir, o.logger), fallback, nil
}
