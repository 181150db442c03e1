package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tarkit/tarfile"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tarkit.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// chdir switches the working directory for the rest of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "none", cfg.Compression)
	assert.Equal(t, ".", cfg.Destination)
	assert.False(t, cfg.Overwrite)
	assert.False(t, cfg.FollowSymlinks)
	assert.False(t, cfg.SkipTimestamps)
	assert.False(t, cfg.Verbose)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
compression = "gzip"
destination = "/srv/lists"
overwrite = true
skip_timestamps = true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gzip", cfg.Compression)
	assert.Equal(t, "/srv/lists", cfg.Destination)
	assert.True(t, cfg.Overwrite)
	assert.True(t, cfg.SkipTimestamps)
	assert.False(t, cfg.FollowSymlinks)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
overwrite = false
destination = "from-file"
`)
	t.Setenv("TARKIT_OVERWRITE", "true")
	t.Setenv("TARKIT_DESTINATION", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Overwrite)
	assert.Equal(t, "from-env", cfg.Destination)
}

func TestLoadDefaultFileFromWorkingDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte(`follow_symlinks = true`), 0644))
	chdir(t, dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.FollowSymlinks)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing explicit file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
		require.Error(t, err)
	})

	t.Run("unknown compression", func(t *testing.T) {
		path := writeConfig(t, `compression = "xz"`)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown compression")
	})
}

func TestTarOptions(t *testing.T) {
	cfg := &Config{
		Compression:    "gzip",
		Destination:    "out",
		Overwrite:      true,
		FollowSymlinks: true,
		SkipTimestamps: true,
		Verbose:        true,
	}
	var status bytes.Buffer

	opts, err := cfg.TarOptions(&status, zerolog.Nop())
	require.NoError(t, err)

	var got tarfile.Options
	for _, opt := range opts {
		opt(&got)
	}
	assert.Equal(t, tarfile.CompressionGzip, got.Compression)
	assert.Equal(t, "out", got.Path)
	assert.True(t, got.Overwrite)
	assert.True(t, got.FollowSymlinks)
	assert.True(t, got.SkipTimestamps)
	assert.Equal(t, &status, got.StatusWriter)
}

func TestTarOptionsQuiet(t *testing.T) {
	cfg := &Config{Compression: "none"}

	opts, err := cfg.TarOptions(&bytes.Buffer{}, zerolog.Nop())
	require.NoError(t, err)

	var got tarfile.Options
	for _, opt := range opts {
		opt(&got)
	}
	assert.Nil(t, got.StatusWriter)
	assert.Equal(t, tarfile.CompressionNone, got.Compression)
}
