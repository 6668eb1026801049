package theme

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jmylchreest/loginthemes/internal/store"
)

// Export is a theme's stylesheet paired with its display record.
type Export struct {
	CSS  string      `json:"css" yaml:"css"`
	Meta ThemeRecord `json:"meta" yaml:"meta"`
}

// Repository creates, updates, deletes and exports theme file pairs.
type Repository struct {
	paths    Paths
	registry *Registry
	applier  *Applier
	state    *store.StateStore
	logger   *slog.Logger

	now func() time.Time
}

// NewRepository creates a Repository.
func NewRepository(paths Paths, registry *Registry, applier *Applier, state *store.StateStore, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		paths:    paths,
		registry: registry,
		applier:  applier,
		state:    state,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Import stores a new theme under the id derived from name and returns the id.
// The active theme is not changed.
func (r *Repository) Import(name, css string, meta Metadata) (string, error) {
	id := SanitizeID(name)
	if id == "" {
		return "", fmt.Errorf("%w: invalid theme name %q", ErrInvalidInput, name)
	}
	if strings.HasPrefix(id, ReservedPrefix) {
		return "", fmt.Errorf("%w: theme names may not start with %q", ErrInvalidInput, ReservedPrefix)
	}
	if id == DefaultThemeID || r.registry.Exists(id) {
		return "", fmt.Errorf("%w: %s", ErrConflict, id)
	}

	if err := os.MkdirAll(r.paths.ThemesDir, 0755); err != nil {
		return "", fmt.Errorf("%w: create themes directory: %w", ErrIO, err)
	}

	themePath := r.paths.ThemePath(id)
	if err := writeNewFile(themePath, []byte(css)); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrConflict, id)
		}
		return "", fmt.Errorf("%w: write theme %s: %w", ErrIO, id, err)
	}

	now := r.now()
	sidecar := Metadata{
		Name:        firstNonEmpty(meta.Name, name),
		Author:      firstNonEmpty(meta.Author, DefaultAuthor),
		Description: meta.Description,
		Version:     firstNonEmpty(meta.Version, DefaultVersion),
		ImportedAt:  &now,
	}
	if err := writeSidecar(r.paths.SidecarPath(id), sidecar); err != nil {
		// Leave no half-imported theme behind so a retry does not conflict.
		_ = os.Remove(themePath)
		return "", fmt.Errorf("%w: write metadata for %s: %w", ErrIO, id, err)
	}

	r.logger.Info("imported theme", "theme", id, "bytes", len(css))
	return id, nil
}

// Update overwrites a theme's stylesheet and, when meta is non-nil, merges it
// over the existing sidecar. An active theme is re-applied.
func (r *Repository) Update(id, css string, meta *Metadata) error {
	if !r.registry.Exists(id) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err := os.WriteFile(r.paths.ThemePath(id), []byte(css), 0644); err != nil {
		return fmt.Errorf("%w: write theme %s: %w", ErrIO, id, err)
	}

	// An active theme is re-applied even if the sidecar write fails.
	var metaErr error
	if meta != nil {
		metaErr = r.writeUpdatedSidecar(id, *meta)
	}

	if r.state.Load().CurrentTheme == id {
		if _, err := r.applier.Apply(id); err != nil {
			return errors.Join(metaErr, fmt.Errorf("re-apply active theme %s: %w", id, err))
		}
	}
	if metaErr != nil {
		return metaErr
	}

	r.logger.Info("updated theme", "theme", id, "bytes", len(css), "metadata", meta != nil)
	return nil
}

// writeUpdatedSidecar merges supplied over the existing sidecar of id and
// stamps updatedAt.
func (r *Repository) writeUpdatedSidecar(id string, supplied Metadata) error {
	sidecarPath := r.paths.SidecarPath(id)
	existing, err := readSidecar(sidecarPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		r.logger.Warn("replacing unreadable sidecar", "theme", id, "error", err)
	}

	// Callers cannot rewrite timestamps.
	supplied.ImportedAt = nil
	supplied.UpdatedAt = nil

	now := r.now()
	merged := mergeMetadata(Metadata{Author: DefaultAuthor}, existing, supplied, Metadata{UpdatedAt: &now})
	if err := writeSidecar(sidecarPath, merged); err != nil {
		return fmt.Errorf("%w: write metadata for %s: %w", ErrIO, id, err)
	}
	return nil
}

// Delete removes a theme's stylesheet and sidecar. Deleting the active theme
// switches back to the default theme before returning.
func (r *Repository) Delete(id string) error {
	if id == DefaultThemeID {
		return fmt.Errorf("%w: cannot delete the default theme", ErrForbidden)
	}
	if !r.registry.Exists(id) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err := os.Remove(r.paths.ThemePath(id)); err != nil {
		return fmt.Errorf("%w: remove theme %s: %w", ErrIO, id, err)
	}

	// An active theme falls back even if the sidecar removal fails.
	var sidecarErr error
	if err := os.Remove(r.paths.SidecarPath(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		sidecarErr = fmt.Errorf("%w: remove metadata for %s: %w", ErrIO, id, err)
	}

	if r.state.Load().CurrentTheme == id {
		r.logger.Info("deleted theme was active, restoring default", "theme", id)
		if _, err := r.applier.Apply(DefaultThemeID); err != nil {
			return errors.Join(sidecarErr, fmt.Errorf("restore default theme: %w", err))
		}
	}
	if sidecarErr != nil {
		return sidecarErr
	}

	r.logger.Info("deleted theme", "theme", id)
	return nil
}

// Export returns the stylesheet of id together with its listed record.
func (r *Repository) Export(id string) (Export, error) {
	css, err := r.applier.Resolve(id)
	if err != nil {
		return Export{}, err
	}

	meta, ok := r.registry.Get(id)
	if !ok {
		meta = ThemeRecord{ID: id, Name: id}
	}
	return Export{CSS: css, Meta: meta}, nil
}

// writeNewFile creates path and fails with fs.ErrExist if it is already there.
func writeNewFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	_, werr := f.Write(data)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		_ = os.Remove(path)
	}
	return werr
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
