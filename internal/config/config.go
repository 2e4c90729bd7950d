// Package config provides configuration types, defaults, validation and
// persistence for specboard.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/specboard/internal/log"
)

// DefaultAPIURL is where the dashboard service listens unless told otherwise.
const DefaultAPIURL = "http://localhost:9237"

// Config holds all specboard configuration.
type Config struct {
	APIURL         string        `mapstructure:"api_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	AutoRefresh    bool          `mapstructure:"auto_refresh"`
	// Location is the view opened at startup, e.g. "#kanban/001-auth".
	Location string        `mapstructure:"location"`
	UI       UIConfig      `mapstructure:"ui"`
	Cache    CacheConfig   `mapstructure:"cache"`
	Tracing  TracingConfig `mapstructure:"tracing"`
}

// UIConfig holds rendering options.
type UIConfig struct {
	MarkdownStyle string `mapstructure:"markdown_style"` // "dark", "light" or "auto"
	ShowStatusBar bool   `mapstructure:"show_status_bar"`
	Mouse         bool   `mapstructure:"mouse"`
}

// CacheConfig controls the diff cache. Diffs are keyed by commit sha and
// never change, so a long TTL is safe.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	DiffTTL time.Duration `mapstructure:"diff_ttl"`
}

// TracingConfig holds request tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are recorded.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/specboard/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// DefaultTracesFilePath returns the default trace file location.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".specboard", "traces", "traces.jsonl")
	}
	return filepath.Join(home, ".config", "specboard", "traces", "traces.jsonl")
}

// Defaults returns the configuration used when no file or flag overrides it.
func Defaults() Config {
	return Config{
		APIURL:         DefaultAPIURL,
		RequestTimeout: 10 * time.Second,
		PollInterval:   2 * time.Second,
		AutoRefresh:    true,
		Location:       "",
		UI: UIConfig{
			MarkdownStyle: "auto",
			ShowStatusBar: true,
			Mouse:         true,
		},
		Cache: CacheConfig{
			Enabled: true,
			DiffTTL: 10 * time.Minute,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     DefaultTracesFilePath(),
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// Validate checks every section.
func Validate(c Config) error {
	if err := ValidateAPIURL(c.APIURL); err != nil {
		return err
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.PollInterval < 100*time.Millisecond {
		return fmt.Errorf("poll_interval must be at least 100ms, got %s", c.PollInterval)
	}
	if err := ValidateUI(c.UI); err != nil {
		return err
	}
	if c.Cache.Enabled && c.Cache.DiffTTL <= 0 {
		return fmt.Errorf("cache.diff_ttl must be positive when the cache is enabled, got %s", c.Cache.DiffTTL)
	}
	return ValidateTracing(c.Tracing)
}

// ValidateAPIURL requires an absolute http or https URL.
func ValidateAPIURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("api_url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("api_url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api_url must use http or https, got %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("api_url must include a host, got %q", raw)
	}
	return nil
}

// ValidateUI checks the ui section.
func ValidateUI(ui UIConfig) error {
	switch ui.MarkdownStyle {
	case "", "auto", "dark", "light":
		return nil
	default:
		return fmt.Errorf("ui.markdown_style must be \"auto\", \"dark\" or \"light\", got %q", ui.MarkdownStyle)
	}
}

// ValidateTracing checks the tracing section.
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	switch tracing.Exporter {
	case "", "none", "file", "stdout", "otlp":
	default:
		return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
	}

	if tracing.Enabled {
		if tracing.Exporter == "file" && tracing.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}
	return nil
}

// DefaultConfigTemplate returns the commented YAML written on first run.
func DefaultConfigTemplate() string {
	return `# specboard configuration
#
# Lookup order: --config, ./.specboard/config.yaml, ~/.config/specboard/config.yaml
# Every key can also be set with a SPECBOARD_ environment variable,
# for example SPECBOARD_API_URL=http://localhost:9300

# Address of the spec-mix dashboard service.
api_url: ` + DefaultAPIURL + `

# Timeout for a single request to the service.
request_timeout: 10s

# How often the feature list, untracked commits and the untracked badge
# refresh while they are on screen.
auto_refresh: true
poll_interval: 2s

# View opened at startup. Same shapes as the dashboard URL hash:
# #features, #kanban/<feature>, #artifact/<feature>/<name>, #untracked, #constitution
# location: "#features"

ui:
  # Markdown style for artifacts: auto, dark or light.
  markdown_style: auto
  show_status_bar: true
  mouse: true

cache:
  # Commit diffs never change, so they are kept in memory.
  enabled: true
  diff_ttl: 10m

tracing:
  enabled: false
  # none, file, stdout or otlp
  exporter: file
  # file_path: ~/.config/specboard/traces/traces.jsonl
  otlp_endpoint: localhost:4317
  sample_rate: 1.0
`
}

// WriteDefaultConfig writes the default template to configPath, creating
// parent directories as needed.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "created default config", "path", configPath)
	return nil
}
