package theme

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jmylchreest/loginthemes/internal/store"
)

// Manager wires the theme components together over one set of Paths.
type Manager struct {
	Paths      Paths
	State      *store.StateStore
	Backup     *BackupManager
	Registry   *Registry
	Applier    *Applier
	Repository *Repository

	logger *slog.Logger
}

// NewManager builds every component for paths.
func NewManager(paths Paths, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	state := store.NewStateStore(paths.StateFile, logger)
	backup := NewBackupManager(paths, logger)
	registry := NewRegistry(paths, logger)
	applier := NewApplier(paths, registry, backup, state, logger)
	repository := NewRepository(paths, registry, applier, state, logger)

	return &Manager{
		Paths:      paths,
		State:      state,
		Backup:     backup,
		Registry:   registry,
		Applier:    applier,
		Repository: repository,
		logger:     logger,
	}
}

// Init prepares the themes directory, captures the original stylesheet and
// reconciles the active stylesheet with the persisted pointer. Only a
// failure to create the themes directory is fatal.
func (m *Manager) Init() error {
	if err := os.MkdirAll(m.Paths.ThemesDir, 0755); err != nil {
		return fmt.Errorf("create themes directory %s: %w", m.Paths.ThemesDir, err)
	}

	if ok, err := m.Backup.EnsureBackup(); err != nil {
		m.logger.Warn("failed to back up original stylesheet", "error", err)
	} else if !ok {
		m.logger.Warn("no original stylesheet to back up, default theme uses built-in fallback", "path", m.Paths.Stylesheet)
	}

	if _, err := m.Reconcile(); err != nil {
		m.logger.Warn("failed to reconcile active theme", "error", err)
	}
	return nil
}

// Reconcile repairs a stylesheet/pointer mismatch left by an interrupted
// apply. The persisted pointer is ground truth: an unresolvable pointer
// falls back to the default theme, a stale stylesheet is rewritten.
// Returns the effective theme id.
func (m *Manager) Reconcile() (string, error) {
	id := m.State.Load().CurrentTheme

	if id != DefaultThemeID && !m.Registry.Exists(id) {
		m.logger.Warn("active theme no longer exists, falling back to default", "theme", id)
		return m.Applier.Apply(DefaultThemeID)
	}

	want, err := m.Applier.Resolve(id)
	if err != nil {
		return "", err
	}

	have, err := os.ReadFile(m.Paths.Stylesheet)
	if err == nil && string(have) == want {
		m.logger.Debug("active stylesheet in sync", "theme", id)
		return id, nil
	}

	m.logger.Info("active stylesheet out of sync, re-applying", "theme", id)
	return m.Applier.Apply(id)
}

// Current returns the persisted pointer and its record, or nil if the
// pointer does not resolve.
func (m *Manager) Current() (string, *ThemeRecord) {
	id := m.State.Load().CurrentTheme
	record, ok := m.Registry.Get(id)
	if !ok {
		return id, nil
	}
	return id, &record
}

// List returns every theme record, default first.
func (m *Manager) List() []ThemeRecord {
	return m.Registry.List()
}

// Apply makes id the active theme.
func (m *Manager) Apply(id string) (string, error) {
	return m.Applier.Apply(id)
}

// Import stores a new theme and returns its id.
func (m *Manager) Import(name, css string, meta Metadata) (string, error) {
	return m.Repository.Import(name, css, meta)
}

// Update rewrites an existing theme.
func (m *Manager) Update(id, css string, meta *Metadata) error {
	return m.Repository.Update(id, css, meta)
}

// Delete removes a custom theme.
func (m *Manager) Delete(id string) error {
	return m.Repository.Delete(id)
}

// Export returns a theme's CSS and record.
func (m *Manager) Export(id string) (Export, error) {
	return m.Repository.Export(id)
}
