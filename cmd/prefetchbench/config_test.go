package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_LoadConfigFile_EmptyPath_ReturnsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := loadConfigFile("")
	require.NoError(t, err)
	require.Equal(t, uint32(10_000_000), cfg.NumKeys)
}

func Test_LoadConfigFile_MissingFile_ReturnsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := loadConfigFile(filepath.Join(t.TempDir(), "does-not-exist.jsonc"))
	require.NoError(t, err)
	require.Equal(t, uint32(10_000_000), cfg.NumKeys)
}

func Test_LoadConfigFile_ParsesJSONCWithComments(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bench.jsonc")

	content := `{
		// trailing commas and comments are fine
		"num_keys": 12345,
		"total_queries": 999,
	}`

	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := loadConfigFile(path)
	require.NoError(t, err)
	require.Equal(t, uint32(12345), cfg.NumKeys)
	require.Equal(t, 999, cfg.TotalQueries)
	require.Equal(t, 32, cfg.GroupSize, "fields absent from the file keep their defaults")
}

func Test_LoadConfigFile_RejectsInvalidJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.jsonc")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := loadConfigFile(path)
	require.Error(t, err)
}

func Test_ParseDistributions(t *testing.T) {
	t.Parallel()

	dists := parseDistributions("uniform, zipfian")
	require.Len(t, dists, 2)
}
