package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultsAreValid(t *testing.T) {
	require.NoError(t, Validate(Defaults()))
}

func TestValidateAPIURL(t *testing.T) {
	require.NoError(t, ValidateAPIURL("http://localhost:9237"))
	require.NoError(t, ValidateAPIURL("https://dash.example.com/base"))

	err := ValidateAPIURL("")
	require.ErrorContains(t, err, "api_url is required")

	err = ValidateAPIURL("ftp://localhost")
	require.ErrorContains(t, err, "http or https")

	err = ValidateAPIURL("http://")
	require.ErrorContains(t, err, "host")
}

func TestValidate_Intervals(t *testing.T) {
	c := Defaults()
	c.PollInterval = 10 * time.Millisecond
	require.ErrorContains(t, Validate(c), "poll_interval")

	c = Defaults()
	c.RequestTimeout = 0
	require.ErrorContains(t, Validate(c), "request_timeout")

	c = Defaults()
	c.Cache.DiffTTL = 0
	require.ErrorContains(t, Validate(c), "cache.diff_ttl")

	c.Cache.Enabled = false
	require.NoError(t, Validate(c))
}

func TestValidateUI(t *testing.T) {
	require.NoError(t, ValidateUI(UIConfig{MarkdownStyle: "light"}))
	require.ErrorContains(t, ValidateUI(UIConfig{MarkdownStyle: "neon"}), "ui.markdown_style")
}

func TestValidateTracing(t *testing.T) {
	require.NoError(t, ValidateTracing(TracingConfig{SampleRate: 0.5}))
	require.ErrorContains(t, ValidateTracing(TracingConfig{SampleRate: 1.5}), "sample_rate")
	require.ErrorContains(t, ValidateTracing(TracingConfig{Exporter: "jaeger"}), "tracing.exporter")
	require.ErrorContains(t, ValidateTracing(TracingConfig{Enabled: true, Exporter: "file"}), "file_path")
	require.ErrorContains(t, ValidateTracing(TracingConfig{Enabled: true, Exporter: "otlp"}), "otlp_endpoint")
	require.NoError(t, ValidateTracing(TracingConfig{Enabled: false, Exporter: "otlp"}))
}

func TestDefaultConfigTemplateParses(t *testing.T) {
	var parsed map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(DefaultConfigTemplate()), &parsed))
	require.Equal(t, DefaultAPIURL, parsed["api_url"])
	require.Equal(t, "2s", parsed["poll_interval"])
	require.Contains(t, parsed, "ui")
	require.Contains(t, parsed, "tracing")
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfigTemplate(), string(data))
}
