// Package main provides the CLI entrypoint for loginthemes.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/loginthemes/internal/config"
	"github.com/jmylchreest/loginthemes/internal/theme"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// annotationSkipInit marks commands that do not run Manager.Init before RunE.
const annotationSkipInit = "loginthemes/skip-init"

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose    bool
		configPath string
		pluginDir  string
	}
	logger *slog.Logger

	// manager is the theme manager built from cfg
	manager *theme.Manager
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "loginthemes",
	Short: "Swappable themes for a login page stylesheet",
	Long: `loginthemes manages CSS themes for a single login stylesheet.

Themes are stored as <id>.css files (with optional <id>.json metadata) in the
plugin's themes directory. Applying a theme copies it over the login
stylesheet; the original stylesheet is backed up once and is always
available as the "default" theme.

Run "loginthemes serve" to expose the HTTP API the login theme panel uses.`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger(slog.LevelWarn)

		var err error
		cfg, err = config.LoadConfig(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if globalOpts.pluginDir != "" {
			cfg.Paths.PluginDir = globalOpts.pluginDir
		}

		setupLogger(logLevel(cmd))

		manager = theme.NewManager(themePaths(cfg.ResolvePaths()), logger)

		if cmd.Annotations[annotationSkipInit] == "true" {
			return nil
		}
		return manager.Init()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/loginthemes/config.toml)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.pluginDir, "plugin-dir", "",
		"Plugin directory holding config.json and themes/ (overrides paths.plugin_dir)")
}

// setupLogger configures the global slog logger.
func setupLogger(level slog.Level) {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, opts)
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// logLevel picks the level for cmd: --verbose wins, serve honours log.level,
// one-shot commands stay quiet.
func logLevel(cmd *cobra.Command) slog.Level {
	if globalOpts.verbose {
		return slog.LevelDebug
	}
	if cmd.Name() != "serve" || cfg == nil {
		return slog.LevelWarn
	}
	return parseLevel(cfg.Log.Level)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func themePaths(p config.Paths) theme.Paths {
	return theme.Paths{
		ThemesDir:  p.ThemesDir,
		Stylesheet: p.Stylesheet,
		StateFile:  p.StateFile,
	}
}
