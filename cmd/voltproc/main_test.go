package main

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voltweb/internal/config"
	"voltweb/internal/shared/testutil"
	"voltweb/pkg/contracts/domain"
)

type cliEnv struct {
	base   string
	inputs string
	config string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	base := t.TempDir()
	inputs := filepath.Join(base, "inputs")
	require.NoError(t, os.MkdirAll(inputs, 0755))

	configPath := filepath.Join(base, "voltproc.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("paths:\n  base_dir: "+base+"\n"), 0644))

	return &cliEnv{base: base, inputs: inputs, config: configPath}
}

func (e *cliEnv) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.inputs, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func (e *cliEnv) exportsDir() string {
	return filepath.Join(e.base, config.DefaultExportsDir)
}

func (e *cliEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(append([]string{"--config", e.config}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestClassify_Table(t *testing.T) {
	env := newCLIEnv(t)
	cv := env.write(t, "a_cv.csv", testutil.CVCSV(2, 2, 2))
	dpv := env.write(t, "b_dpv.csv", testutil.DPVCSV(5))
	unknown := env.write(t, "c_unknown.csv", testutil.UnknownCSV(3))

	stdout, stderr, err := env.run(t, "classify", cv, dpv, unknown)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "TECHNIQUE")
	assert.Contains(t, lines[1], "a_cv.csv")
	assert.Contains(t, lines[1], "CV")
	assert.Contains(t, lines[1], "1,2,3")
	assert.Contains(t, lines[2], "DPV")
	assert.Contains(t, lines[3], "failed")
	assert.Contains(t, stderr, "c_unknown.csv")
}

func TestClassify_JSONFromDirectory(t *testing.T) {
	env := newCLIEnv(t)
	env.write(t, "one.csv", testutil.CVCSV(3))
	env.write(t, "two.csv", testutil.DPVCSV(4))
	env.write(t, "notes.md", "not a measurement")

	stdout, _, err := env.run(t, "--dir", env.inputs, "classify", "--json")
	require.NoError(t, err)

	var result domain.BatchResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	require.Len(t, result.Files, 2)
	assert.Equal(t, "one.csv", result.Files[0].Name)
	assert.Equal(t, domain.TechniqueCV, result.Files[0].Technique)
	assert.Equal(t, domain.TechniqueDPV, result.Files[1].Technique)
}

func TestClassify_JSONWithBlankCells(t *testing.T) {
	env := newCLIEnv(t)
	gaps := env.write(t, "gaps.csv", testutil.CVHeader+"\n1;0.1;1;;1\n2;0.2;1;0.01;1\n")

	stdout, _, err := env.run(t, "classify", "--json", gaps)
	require.NoError(t, err)

	var result domain.BatchResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, domain.KindMissingValues, result.Diagnostics[0].Kind)
}

func TestClassify_Pattern(t *testing.T) {
	env := newCLIEnv(t)
	env.write(t, "run_cv.csv", testutil.CVCSV(3))
	env.write(t, "run_dpv.csv", testutil.DPVCSV(4))

	stdout, _, err := env.run(t, "--dir", env.inputs, "--pattern", "*_dpv.csv", "classify")
	require.NoError(t, err)
	assert.Contains(t, stdout, "run_dpv.csv")
	assert.NotContains(t, stdout, "run_cv.csv")
}

func TestRoot_Errors(t *testing.T) {
	env := newCLIEnv(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no inputs", []string{"classify"}, "no input files"},
		{"missing file", []string{"classify", filepath.Join(env.inputs, "absent.csv")}, "does not exist"},
		{"bad image format", []string{"plot", "--format", "gif", env.write(t, "x.csv", testutil.CVCSV(2))}, "gif"},
		{"split xlsx", []string{"export", "--split", "--format", "xlsx", env.write(t, "y.csv", testutil.CVCSV(2))}, "--split"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := env.run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestPlot_WritesImage(t *testing.T) {
	env := newCLIEnv(t)
	cv := env.write(t, "cv.csv", testutil.CVCSV(3, 3))
	out := filepath.Join(env.base, "plots", "combined.svg")

	stdout, _, err := env.run(t, "plot", "--scans", "2", "--format", "svg", "--out", out, cv)
	require.NoError(t, err)
	assert.Contains(t, stdout, out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func TestPlot_DefaultsToExportsDir(t *testing.T) {
	env := newCLIEnv(t)
	cv := env.write(t, "cv.csv", testutil.CVCSV(3))

	_, _, err := env.run(t, "plot", cv)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(env.exportsDir(), "combined_plot.png"))
}

func TestPlot_NothingToPlot(t *testing.T) {
	env := newCLIEnv(t)
	unknown := env.write(t, "unknown.csv", testutil.UnknownCSV(3))

	_, stderr, err := env.run(t, "plot", unknown)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none of the 1 files")
	assert.Contains(t, stderr, "unknown.csv")
}

func TestExport_SingleCSV(t *testing.T) {
	env := newCLIEnv(t)
	cv := env.write(t, "cv.csv", testutil.CVCSV(2, 2))

	stdout, _, err := env.run(t, "export", cv)
	require.NoError(t, err)

	path := filepath.Join(env.exportsDir(), "processed_cv.csv")
	assert.Contains(t, stdout, path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Potential_2")
}

func TestExport_ArchiveSkipsNonCV(t *testing.T) {
	env := newCLIEnv(t)
	env.write(t, "a.csv", testutil.CVCSV(2))
	env.write(t, "b.csv", testutil.CVCSV(3))
	env.write(t, "c.csv", testutil.DPVCSV(3))
	out := filepath.Join(env.base, "bundle.zip")

	_, stderr, err := env.run(t, "--dir", env.inputs, "export", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stderr, "c.csv")

	zr, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"processed_a.csv", "processed_b.csv"}, names)
}

func TestExport_Split(t *testing.T) {
	env := newCLIEnv(t)
	a := env.write(t, "a.csv", testutil.CVCSV(2))
	b := env.write(t, "b.csv", testutil.CVCSV(2, 1))
	outDir := filepath.Join(env.base, "wide")

	stdout, _, err := env.run(t, "export", "--split", "--out", outDir, a, b)
	require.NoError(t, err)

	for _, name := range []string{"processed_a.csv", "processed_b.csv"} {
		path := filepath.Join(outDir, name)
		assert.FileExists(t, path)
		assert.Contains(t, stdout, path)
	}
}

func TestExport_Workbook(t *testing.T) {
	env := newCLIEnv(t)
	cv := env.write(t, "cv.csv", testutil.CVCSV(2))

	_, _, err := env.run(t, "export", "--format", "xlsx", cv)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(env.exportsDir(), "processed_data.xlsx"))
}

func TestExport_NothingExportable(t *testing.T) {
	env := newCLIEnv(t)
	dpv := env.write(t, "dpv.csv", testutil.DPVCSV(3))

	_, stderr, err := env.run(t, "export", dpv)
	require.Error(t, err)
	assert.Contains(t, stderr, "only CV files can be exported")
}
