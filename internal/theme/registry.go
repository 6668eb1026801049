package theme

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Registry enumerates the themes directory. It only reads.
type Registry struct {
	paths  Paths
	logger *slog.Logger
}

// NewRegistry creates a Registry over paths.ThemesDir.
func NewRegistry(paths Paths, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{paths: paths, logger: logger}
}

// Exists reports whether id names a custom theme stylesheet on disk.
// The default theme is never a file and reserved names never resolve.
func (r *Registry) Exists(id string) bool {
	if id == DefaultThemeID || !isLookupID(id) {
		return false
	}
	info, err := os.Stat(r.paths.ThemePath(id))
	return err == nil && info.Mode().IsRegular()
}

// List returns the default record followed by one record per custom theme,
// in directory order. Read failures never abort the listing.
func (r *Registry) List() []ThemeRecord {
	themes := []ThemeRecord{DefaultRecord()}

	entries, err := os.ReadDir(r.paths.ThemesDir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.logger.Warn("failed to scan themes directory", "path", r.paths.ThemesDir, "error", err)
		}
		return themes
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) != Ext || strings.HasPrefix(name, ReservedPrefix) {
			continue
		}
		id := strings.TrimSuffix(name, Ext)
		if !isLookupID(id) || id == DefaultThemeID {
			continue
		}
		themes = append(themes, r.record(id))
	}

	return themes
}

// Get returns the listed record for id.
func (r *Registry) Get(id string) (ThemeRecord, bool) {
	if id == DefaultThemeID {
		return DefaultRecord(), true
	}
	for _, t := range r.List() {
		if t.ID == id {
			return t, true
		}
	}
	return ThemeRecord{}, false
}

// record merges defaults, the sidecar file and the CSS header for one theme.
func (r *Registry) record(id string) ThemeRecord {
	defaults := Metadata{Name: id, Author: DefaultAuthor}

	sidecar, err := readSidecar(r.paths.SidecarPath(id))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		r.logger.Debug("ignoring unreadable sidecar", "theme", id, "error", err)
	}

	var header Metadata
	css, err := os.ReadFile(r.paths.ThemePath(id))
	if err != nil {
		r.logger.Debug("failed to read theme stylesheet", "theme", id, "error", err)
	} else {
		header = ParseHeader(string(css))
	}

	return mergeMetadata(defaults, sidecar, header).record(id)
}
