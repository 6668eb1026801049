package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const originalCSS = "/* original login */\nbody.login { background: #111; }\n"

// newTestPaths lays out a plugin directory and a host stylesheet under a temp dir.
func newTestPaths(t *testing.T, withStylesheet bool) Paths {
	t.Helper()

	root := t.TempDir()
	paths := Paths{
		ThemesDir:  filepath.Join(root, "plugin", "themes"),
		Stylesheet: filepath.Join(root, "public", "css", "login.css"),
		StateFile:  filepath.Join(root, "plugin", "config.json"),
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(paths.Stylesheet), 0755))
	if withStylesheet {
		require.NoError(t, os.WriteFile(paths.Stylesheet, []byte(originalCSS), 0644))
	}
	return paths
}

// newTestManager returns an initialised Manager over fresh test paths.
func newTestManager(t *testing.T) *Manager {
	t.Helper()

	m := NewManager(newTestPaths(t, true), nil)
	require.NoError(t, m.Init())
	return m
}

func writeTheme(t *testing.T, paths Paths, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(paths.ThemesDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(paths.ThemesDir, name), []byte(content), 0644))
}

func readStylesheet(t *testing.T, paths Paths) string {
	t.Helper()
	data, err := os.ReadFile(paths.Stylesheet)
	require.NoError(t, err)
	return string(data)
}
