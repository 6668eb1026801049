package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	cfg := DefaultConfig()

	assert.Equal(t, "/custom/data/loginthemes", cfg.Paths.PluginDir)
	assert.Empty(t, cfg.Paths.ThemesDir)
	assert.Equal(t, DefaultListen, cfg.Server.Listen)
	assert.Equal(t, "/api/plugins/login-themes", cfg.Server.BasePath)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout.Duration())
	assert.True(t, cfg.Watch.Enabled)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce.Duration())
	assert.Equal(t, "info", cfg.Log.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server.Listen, cfg.Server.Listen)
}

func TestLoadConfig_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[paths]
plugin_dir = "/srv/st/plugins/login-themes"
stylesheet = "/srv/st/public/css/login.css"

[server]
listen = ":9000"
base_path = "/themes"
shutdown_timeout = "3s"

[watch]
enabled = false
debounce = 100

[log]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/st/plugins/login-themes", cfg.Paths.PluginDir)
	assert.Equal(t, "/srv/st/public/css/login.css", cfg.Paths.Stylesheet)
	assert.Equal(t, ":9000", cfg.Server.Listen)
	assert.Equal(t, "/themes", cfg.Server.BasePath)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout.Duration())
	assert.False(t, cfg.Watch.Enabled)
	assert.Equal(t, 100*time.Millisecond, cfg.Watch.Debounce.Duration())
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_PartialConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nlisten = \":9001\"\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9001", cfg.Server.Listen)
	assert.Equal(t, DefaultBasePath, cfg.Server.BasePath)
	assert.True(t, cfg.Watch.Enabled)
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`this is not valid toml [`), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[watch]\ndebounce = \"soon\"\n"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty plugin dir", func(c *Config) { c.Paths.PluginDir = " " }},
		{"empty listen", func(c *Config) { c.Server.Listen = "" }},
		{"relative base path", func(c *Config) { c.Server.BasePath = "themes" }},
		{"negative timeout", func(c *Config) { c.Server.ShutdownTimeout = Duration(-time.Second) }},
		{"negative debounce", func(c *Config) { c.Watch.Debounce = Duration(-time.Second) }},
		{"unknown log level", func(c *Config) { c.Log.Level = "chatty" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Paths.PluginDir = "/srv/plugin"
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_Save(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "config.toml")

	cfg := DefaultConfig()
	cfg.Paths.PluginDir = "/srv/plugin"
	cfg.Server.Listen = ":7000"
	cfg.Watch.Debounce = Duration(time.Second)

	require.NoError(t, cfg.Save(path))
	_, err := os.Stat(path)
	require.NoError(t, err)

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/plugin", loaded.Paths.PluginDir)
	assert.Equal(t, ":7000", loaded.Server.Listen)
	assert.Equal(t, time.Second, loaded.Watch.Debounce.Duration())
}

func TestResolvePaths_Derived(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Paths.PluginDir = "/srv/st/plugins/login-themes"

	p := cfg.ResolvePaths()
	assert.Equal(t, "/srv/st/plugins/login-themes", p.PluginDir)
	assert.Equal(t, "/srv/st/plugins/login-themes/themes", p.ThemesDir)
	assert.Equal(t, "/srv/st/plugins/login-themes/config.json", p.StateFile)
	assert.Equal(t, "/srv/st/public/css/login.css", p.Stylesheet)
}

func TestResolvePaths_Explicit(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Paths = PathsConfig{
		PluginDir:  "~/plugin",
		ThemesDir:  "/var/themes",
		StateFile:  "/var/state.json",
		Stylesheet: "/var/www/login.css",
	}

	p := cfg.ResolvePaths()
	assert.Equal(t, filepath.Join(home, "plugin"), p.PluginDir)
	assert.Equal(t, "/var/themes", p.ThemesDir)
	assert.Equal(t, "/var/state.json", p.StateFile)
	assert.Equal(t, "/var/www/login.css", p.Stylesheet)
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/loginthemes/config.toml", ConfigPath())
}

func TestDataPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	assert.Equal(t, "/custom/data/loginthemes", DataPath())
}
