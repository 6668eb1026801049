package theme

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
)

// BackupManager keeps a pristine copy of the stylesheet that existed before
// any theme was applied.
type BackupManager struct {
	paths  Paths
	logger *slog.Logger
}

// NewBackupManager creates a BackupManager.
func NewBackupManager(paths Paths, logger *slog.Logger) *BackupManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &BackupManager{paths: paths, logger: logger}
}

// HasBackup reports whether a backup file is present.
func (b *BackupManager) HasBackup() bool {
	info, err := os.Stat(b.paths.BackupPath())
	return err == nil && info.Mode().IsRegular()
}

// EnsureBackup copies the active stylesheet to the backup location if no
// backup exists yet. It is idempotent: once a backup exists it is never
// touched again. Returns whether a backup is present after the call.
func (b *BackupManager) EnsureBackup() (bool, error) {
	if b.HasBackup() {
		return true, nil
	}

	original, err := os.ReadFile(b.paths.Stylesheet)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			b.logger.Debug("no stylesheet to back up", "path", b.paths.Stylesheet)
			return false, nil
		}
		return false, fmt.Errorf("%w: read stylesheet: %w", ErrIO, err)
	}

	if err := os.MkdirAll(b.paths.ThemesDir, 0755); err != nil {
		return false, fmt.Errorf("%w: create themes directory: %w", ErrIO, err)
	}

	backupPath := b.paths.BackupPath()
	f, err := os.OpenFile(backupPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			// Created concurrently by another process.
			return true, nil
		}
		return false, fmt.Errorf("%w: create backup: %w", ErrIO, err)
	}

	_, werr := f.Write(original)
	cerr := f.Close()
	if werr != nil || cerr != nil {
		// Never leave a partial backup behind.
		_ = os.Remove(backupPath)
		return false, fmt.Errorf("%w: write backup: %w", ErrIO, errors.Join(werr, cerr))
	}

	b.logger.Info("created backup of original stylesheet", "path", backupPath, "bytes", len(original))
	return true, nil
}

// DefaultContent returns the backup content, or the built-in fallback
// stylesheet when there is no readable backup. It never fails.
func (b *BackupManager) DefaultContent() string {
	data, err := os.ReadFile(b.paths.BackupPath())
	if err == nil {
		return string(data)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		b.logger.Warn("failed to read stylesheet backup, using fallback", "path", b.paths.BackupPath(), "error", err)
	}
	return FallbackCSS()
}
