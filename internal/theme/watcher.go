package theme

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reconciles the active stylesheet when the active theme's file or
// the state file is changed by something other than this process.
type Watcher struct {
	mu       sync.Mutex
	manager  *Manager
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration
	running  bool
}

// NewWatcher creates a Watcher for the manager's themes and state directories.
func NewWatcher(manager *Manager, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		manager:  manager,
		watcher:  watcher,
		logger:   logger,
		debounce: 250 * time.Millisecond,
	}, nil
}

// SetDebounce sets how long to wait after the last event before reconciling.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounce = d
}

// Run watches until ctx is cancelled, then closes the underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("theme watcher already running")
	}
	w.running = true
	debounce := w.debounce
	w.mu.Unlock()

	defer w.watcher.Close()

	// Watch directories rather than files; editors replace files on save.
	dirs := []string{w.manager.Paths.ThemesDir}
	if stateDir := filepath.Dir(w.manager.State.Path()); stateDir != dirs[0] {
		dirs = append(dirs, stateDir)
	}
	for _, dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	w.logger.Debug("theme watcher started", "dirs", dirs)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("theme watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("theme file changed", "file", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if id, err := w.manager.Reconcile(); err != nil {
				w.logger.Warn("failed to reconcile after file change", "error", err)
			} else {
				w.logger.Debug("reconciled after file change", "theme", id)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("theme watcher error", "error", err)
		}
	}
}

// relevant reports whether event touches the state file or the active theme.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	name := filepath.Clean(event.Name)
	if name == filepath.Clean(w.manager.State.Path()) {
		return true
	}

	current := w.manager.State.Load().CurrentTheme
	if current == DefaultThemeID {
		return name == filepath.Clean(w.manager.Paths.BackupPath())
	}
	return name == filepath.Clean(w.manager.Paths.ThemePath(current))
}
