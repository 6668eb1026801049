package theme

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/jmylchreest/loginthemes/internal/store"
)

// Applier writes a theme into the active stylesheet and moves the
// current-theme pointer with it.
type Applier struct {
	paths    Paths
	registry *Registry
	backup   *BackupManager
	state    *store.StateStore
	logger   *slog.Logger
}

// NewApplier creates an Applier.
func NewApplier(paths Paths, registry *Registry, backup *BackupManager, state *store.StateStore, logger *slog.Logger) *Applier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Applier{
		paths:    paths,
		registry: registry,
		backup:   backup,
		state:    state,
		logger:   logger,
	}
}

// Resolve returns the CSS content of a theme. The default theme resolves to
// the backup (or fallback) content; other ids need an existing theme file.
func (a *Applier) Resolve(id string) (string, error) {
	if id == DefaultThemeID {
		return a.backup.DefaultContent(), nil
	}
	if !a.registry.Exists(id) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	data, err := os.ReadFile(a.paths.ThemePath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return "", fmt.Errorf("%w: read theme %s: %w", ErrIO, id, err)
	}
	return string(data), nil
}

// Apply makes id the active theme. The stylesheet is written first, then the
// pointer. If the stylesheet write fails the pointer is untouched; if the
// pointer save fails the previous stylesheet is put back. Returns the
// applied id.
func (a *Applier) Apply(id string) (string, error) {
	content, err := a.Resolve(id)
	if err != nil {
		return "", err
	}

	previous, prevErr := os.ReadFile(a.paths.Stylesheet)

	if err := os.WriteFile(a.paths.Stylesheet, []byte(content), 0644); err != nil {
		a.logger.Error("failed to write stylesheet", "theme", id, "path", a.paths.Stylesheet, "error", err)
		return "", fmt.Errorf("%w: write stylesheet: %w", ErrIO, err)
	}

	state := a.state.Load()
	state.CurrentTheme = id
	if err := a.state.Save(state); err != nil {
		a.restoreStylesheet(previous, prevErr)
		return "", fmt.Errorf("%w: save current theme: %w", ErrIO, err)
	}

	a.logger.Info("applied theme", "theme", id)
	return id, nil
}

// restoreStylesheet puts back what the stylesheet held before a failed apply.
func (a *Applier) restoreStylesheet(previous []byte, readErr error) {
	var err error
	switch {
	case readErr == nil:
		err = os.WriteFile(a.paths.Stylesheet, previous, 0644)
	case errors.Is(readErr, fs.ErrNotExist):
		err = os.Remove(a.paths.Stylesheet)
	default:
		a.logger.Warn("cannot restore stylesheet, previous content was unreadable", "error", readErr)
		return
	}
	if err != nil {
		a.logger.Error("failed to restore stylesheet", "path", a.paths.Stylesheet, "error", err)
	}
}
