// Package cmd wires configuration, logging and tracing into the specboard
// commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/specboard/internal/api"
	"github.com/zjrosen/specboard/internal/app"
	"github.com/zjrosen/specboard/internal/cachemanager"
	"github.com/zjrosen/specboard/internal/config"
	"github.com/zjrosen/specboard/internal/log"
	"github.com/zjrosen/specboard/internal/tracing"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

const (
	envPrefix         = "SPECBOARD"
	localConfigPath   = ".specboard/config.yaml"
	defaultDebugLog   = "debug.log"
	tracerShutdownMax = 5 * time.Second
)

var (
	version    = "dev"
	cfgFile    string
	cfg        config.Config
	configUsed string
	logCleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "specboard",
	Short: "A terminal client for the spec-mix dashboard",
	Long: `specboard browses the features, kanban boards, artifacts and commits
served by a spec-mix dashboard service, with browser-style back and forward
history and deep links such as #kanban/001-auth.`,
	Version:            version,
	SilenceUsage:       true,
	PersistentPreRunE:  setupLogging,
	PersistentPostRunE: teardownLogging,
	RunE:               runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./.specboard/config.yaml or ~/.config/specboard/config.yaml)")
	pf.StringP("api", "a", "", "dashboard service url (default: "+config.DefaultAPIURL+")")
	pf.BoolP("debug", "d", false, "write "+defaultDebugLog+" and enable the log pane (ctrl+x)")

	rootCmd.Flags().StringP("location", "l", "", "view to open at startup, e.g. #kanban/001-auth")
	rootCmd.Flags().Bool("no-auto-refresh", false, "disable the periodic refresh")

	// Bind flags to viper
	_ = viper.BindPFlag("api_url", pf.Lookup("api"))
	_ = viper.BindPFlag("debug", pf.Lookup("debug"))
	_ = viper.BindPFlag("location", rootCmd.Flags().Lookup("location"))
}

func initConfig() {
	var err error
	cfg, configUsed, err = loadConfig(viper.GetViper(), cfgFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}
}

// loadConfig resolves the config file, writing a commented default when none
// exists, and decodes it over the defaults and SPECBOARD_ environment
// variables. It returns the path of the file read, if any.
func loadConfig(v *viper.Viper, explicit string) (config.Config, string, error) {
	setDefaults(v, config.Defaults())
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		// Config lookup order:
		// 1. .specboard/config.yaml (current directory)
		// 2. ~/.config/specboard/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			v.SetConfigFile(localConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			v.AddConfigPath(filepath.Join(home, ".config", "specboard"))
			v.SetConfigName("config")
			v.SetConfigType("yaml")
		}
	}

	var readErr error
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
			// No config file found anywhere - create default at .specboard/config.yaml
			if writeErr := config.WriteDefaultConfig(localConfigPath); writeErr == nil {
				v.SetConfigFile(localConfigPath)
				readErr = v.ReadInConfig()
			}
		default:
			readErr = fmt.Errorf("reading config: %w", err)
		}
	}

	var c config.Config
	if err := v.Unmarshal(&c); err != nil {
		return config.Defaults(), v.ConfigFileUsed(), fmt.Errorf("decoding config: %w", err)
	}
	return c, v.ConfigFileUsed(), readErr
}

func setDefaults(v *viper.Viper, d config.Config) {
	v.SetDefault("api_url", d.APIURL)
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("poll_interval", d.PollInterval)
	v.SetDefault("auto_refresh", d.AutoRefresh)
	v.SetDefault("location", d.Location)
	v.SetDefault("ui.markdown_style", d.UI.MarkdownStyle)
	v.SetDefault("ui.show_status_bar", d.UI.ShowStatusBar)
	v.SetDefault("ui.mouse", d.UI.Mouse)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.diff_ttl", d.Cache.DiffTTL)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("debug", false)
}

// debugEnabled reports whether --debug or SPECBOARD_DEBUG is set.
func debugEnabled() bool {
	return viper.GetBool("debug")
}

func setupLogging(_ *cobra.Command, _ []string) error {
	if !debugEnabled() {
		return nil
	}
	logPath := os.Getenv(envPrefix + "_LOG")
	if logPath == "" {
		logPath = defaultDebugLog
	}
	cleanup, err := log.Init(logPath)
	if err != nil {
		return fmt.Errorf("initializing debug log: %w", err)
	}
	logCleanup = cleanup
	log.Info(log.CatConfig, "specboard starting", "version", version, "config", configUsed, "api", cfg.APIURL)
	return nil
}

func teardownLogging(_ *cobra.Command, _ []string) error {
	if logCleanup != nil {
		logCleanup()
		logCleanup = nil
	}
	return nil
}

// newClient builds the API client from the configuration: timeout, tracer
// and the diff cache.
func newClient(c config.Config, tp *tracing.Provider) (*api.Client, error) {
	opts := []api.Option{
		api.WithTimeout(c.RequestTimeout),
		api.WithTracer(tp.Tracer()),
	}
	if c.Cache.Enabled {
		cache := cachemanager.NewInMemoryCacheManager[string, string]("diffs", c.Cache.DiffTTL, 2*c.Cache.DiffTTL)
		opts = append(opts, api.WithDiffCache(cache, c.Cache.DiffTTL))
	}
	client, err := api.NewClient(c.APIURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating api client: %w", err)
	}
	return client, nil
}

// withClient validates the configuration and runs fn with a traced client.
// Spans are flushed when fn returns.
func withClient(ctx context.Context, fn func(context.Context, *api.Client) error) error {
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	tp, err := tracing.NewProvider(ctx, cfg.Tracing)
	if err != nil {
		log.ErrorErr(log.CatTrace, "tracing disabled", err)
		tp = tracing.Noop()
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), tracerShutdownMax)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.ErrorErr(log.CatTrace, "flushing spans", err)
		}
	}()

	client, err := newClient(cfg, tp)
	if err != nil {
		return err
	}
	return fn(ctx, client)
}

func runApp(cmd *cobra.Command, _ []string) error {
	// Handle --no-auto-refresh flag (negated logic)
	if noAutoRefresh, _ := cmd.Flags().GetBool("no-auto-refresh"); noAutoRefresh {
		cfg.AutoRefresh = false
	}

	return withClient(cmd.Context(), func(_ context.Context, client *api.Client) error {
		zone.NewGlobal()

		model := app.New(app.Options{
			Service:       client,
			Location:      cfg.Location,
			PollInterval:  cfg.PollInterval,
			AutoRefresh:   cfg.AutoRefresh,
			MarkdownStyle: cfg.UI.MarkdownStyle,
			Debug:         debugEnabled(),
			ShowStatusBar: cfg.UI.ShowStatusBar,
		})

		opts := []tea.ProgramOption{tea.WithAltScreen()}
		if cfg.UI.Mouse {
			opts = append(opts, tea.WithMouseCellMotion())
		}
		final, err := tea.NewProgram(model, opts...).Run()

		if m, ok := final.(app.Model); ok {
			m.Close()
		} else {
			model.Close()
		}

		if err != nil {
			return fmt.Errorf("running program: %w", err)
		}
		return nil
	})
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
