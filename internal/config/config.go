// Package config handles loading and saving the loginthemes service configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultListen          = "127.0.0.1:8010"
	DefaultBasePath        = "/api/plugins/login-themes"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultDebounce        = 250 * time.Millisecond
	DefaultLogLevel        = "info"
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "500ms", "10s", "1m", or integer milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '500ms', '10s', '1m' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config represents the loginthemes configuration.
type Config struct {
	Paths  PathsConfig  `toml:"paths"`
	Server ServerConfig `toml:"server"`
	Watch  WatchConfig  `toml:"watch"`
	Log    LogConfig    `toml:"log"`
}

// PathsConfig locates the plugin's files and the stylesheet it manages.
// Empty values are derived from PluginDir.
type PathsConfig struct {
	PluginDir  string `toml:"plugin_dir"` // Holds config.json and themes/
	ThemesDir  string `toml:"themes_dir"` // Default: <plugin_dir>/themes
	StateFile  string `toml:"state_file"` // Default: <plugin_dir>/config.json
	Stylesheet string `toml:"stylesheet"` // Default: <plugin_dir>/../../public/css/login.css
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Listen          string   `toml:"listen"`
	BasePath        string   `toml:"base_path"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// WatchConfig controls hot-reload of the active theme.
type WatchConfig struct {
	Enabled  bool     `toml:"enabled"`
	Debounce Duration `toml:"debounce"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// Paths are the fully resolved file locations.
type Paths struct {
	PluginDir  string
	ThemesDir  string
	StateFile  string
	Stylesheet string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			PluginDir: DataPath(),
		},
		Server: ServerConfig{
			Listen:          DefaultListen,
			BasePath:        DefaultBasePath,
			ShutdownTimeout: Duration(DefaultShutdownTimeout),
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: Duration(DefaultDebounce),
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "loginthemes", "config.toml")
}

// DataPath returns the default plugin directory.
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share.
func DataPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "loginthemes")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.PluginDir) == "" {
		return errors.New("paths.plugin_dir must not be empty")
	}
	if strings.TrimSpace(c.Server.Listen) == "" {
		return errors.New("server.listen must not be empty")
	}
	if !strings.HasPrefix(c.Server.BasePath, "/") {
		return fmt.Errorf("server.base_path must start with '/', got %q", c.Server.BasePath)
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout must not be negative")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	if _, ok := ValidLogLevels()[strings.ToLower(c.Log.Level)]; !ok {
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	return nil
}

// ValidLogLevels returns the accepted log.level values.
func ValidLogLevels() map[string]struct{} {
	return map[string]struct{}{
		"debug": {},
		"info":  {},
		"warn":  {},
		"error": {},
	}
}

// ResolvePaths fills in derived defaults and expands ~ in every path.
func (c *Config) ResolvePaths() Paths {
	pluginDir := expandPath(c.Paths.PluginDir)

	p := Paths{
		PluginDir:  pluginDir,
		ThemesDir:  expandPath(c.Paths.ThemesDir),
		StateFile:  expandPath(c.Paths.StateFile),
		Stylesheet: expandPath(c.Paths.Stylesheet),
	}
	if p.ThemesDir == "" {
		p.ThemesDir = filepath.Join(pluginDir, "themes")
	}
	if p.StateFile == "" {
		p.StateFile = filepath.Join(pluginDir, "config.json")
	}
	if p.Stylesheet == "" {
		// Plugins live in <root>/plugins/<name>; the login stylesheet in <root>/public/css.
		p.Stylesheet = filepath.Join(pluginDir, "..", "..", "public", "css", "login.css")
	}
	return p
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
