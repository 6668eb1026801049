package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DefaultThemeID is the id of the built-in theme the pointer falls back to.
const DefaultThemeID = "default"

// ErrStateParse is returned by Read when the state file is not valid JSON.
var ErrStateParse = errors.New("state file is malformed")

// State is the single durable record: which theme is currently active.
// This is persisted to <plugin dir>/config.json
type State struct {
	CurrentTheme string `json:"currentTheme"`

	// Themes is reserved. It is read and written back verbatim but nothing
	// interprets it.
	Themes map[string]json.RawMessage `json:"themes"`
}

// DefaultState returns a new State pointing at the default theme.
func DefaultState() *State {
	return &State{
		CurrentTheme: DefaultThemeID,
		Themes:       make(map[string]json.RawMessage),
	}
}

// StateStore loads and saves the State file. There is no caching: every
// call goes back to disk so external edits are always picked up.
type StateStore struct {
	path   string
	logger *slog.Logger
}

// NewStateStore creates a StateStore for the file at path.
func NewStateStore(path string, logger *slog.Logger) *StateStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &StateStore{path: path, logger: logger}
}

// Path returns the location of the state file.
func (s *StateStore) Path() string {
	return s.path
}

// Read loads the state from disk and reports every failure.
// A missing file is not an error and yields DefaultState.
func (s *StateStore) Read() (*State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultState(), nil
		}
		return nil, fmt.Errorf("read state %s: %w", s.path, err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStateParse, s.path, err)
	}

	if strings.TrimSpace(state.CurrentTheme) == "" {
		state.CurrentTheme = DefaultThemeID
	}
	if state.Themes == nil {
		state.Themes = make(map[string]json.RawMessage)
	}

	return &state, nil
}

// Load is Read with failures downgraded to DefaultState. It never fails.
func (s *StateStore) Load() *State {
	state, err := s.Read()
	if err != nil {
		s.logger.Warn("failed to load theme state, using defaults", "path", s.path, "error", err)
		return DefaultState()
	}
	return state
}

// Save overwrites the state file. The previous file is left as the failed
// write left it; there is no rollback.
func (s *StateStore) Save(state *State) error {
	if state == nil {
		state = DefaultState()
	}
	if state.Themes == nil {
		state.Themes = make(map[string]json.RawMessage)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create state directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		s.logger.Error("failed to save theme state", "path", s.path, "error", err)
		return fmt.Errorf("write state %s: %w", s.path, err)
	}

	s.logger.Debug("saved theme state", "path", s.path, "current", state.CurrentTheme)
	return nil
}
