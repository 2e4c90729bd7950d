package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveAPIURL_PreservesComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	require.NoError(t, SaveAPIURL(path, "http://10.0.0.5:9300"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	require.Contains(t, out, "api_url: http://10.0.0.5:9300")
	require.NotContains(t, out, "api_url: "+DefaultAPIURL)
	require.Contains(t, out, "# Address of the spec-mix dashboard service.")
	require.Contains(t, out, "poll_interval: 2s")
}

func TestSaveAPIURL_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dir", "config.yaml")
	require.NoError(t, SaveAPIURL(path, "https://dash.local"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "api_url: https://dash.local\n", string(data))
}

func TestSaveAPIURL_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.Error(t, SaveAPIURL(path, "not a url"))
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestSetValue_RejectsNonMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- a\n- b\n"), 0o600))
	require.ErrorContains(t, SetValue(path, "api_url", "http://x"), "not a mapping")
}
