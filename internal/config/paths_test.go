package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaths(t *testing.T) {
	base := t.TempDir()
	abs := filepath.Join(t.TempDir(), "elsewhere")

	paths := NewPaths(base, PathsConfig{ExportsDir: abs})

	assert.Equal(t, base, paths.BaseDir)
	assert.Equal(t, filepath.Join(base, "data"), paths.DataDir)
	assert.Equal(t, abs, paths.ExportsDir)
	assert.Equal(t, filepath.Join(base, "logs"), paths.LogsDir)

	assert.Equal(t, filepath.Join(abs, "out.csv"), paths.GetExportPath("../../out.csv"))
	assert.Equal(t, filepath.Join(base, "logs", "app.log"), paths.GetLogPath("app.log"))
	assert.Equal(t, filepath.Join(base, "data", "x.csv"), paths.GetDataPath("x.csv"))
}

func TestConfig_GetPaths(t *testing.T) {
	t.Run("configured base", func(t *testing.T) {
		cfg := Default()
		cfg.Paths.BaseDir = t.TempDir()

		paths, err := cfg.GetPaths()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(cfg.Paths.BaseDir, "data", "exports"), paths.ExportsDir)
	})

	t.Run("executable directory", func(t *testing.T) {
		paths, err := Default().GetPaths()
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(paths.BaseDir))
		assert.Equal(t, filepath.Join(paths.BaseDir, "logs"), paths.LogsDir)
	})
}

func TestEnsureDirectories(t *testing.T) {
	paths := NewPaths(t.TempDir(), Default().Paths)
	require.NoError(t, paths.EnsureDirectories())

	for _, dir := range []string{paths.DataDir, paths.ExportsDir, paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	assert.True(t, FileExists(paths.DataDir))
	assert.False(t, FileExists(filepath.Join(paths.DataDir, "nope")))
}
