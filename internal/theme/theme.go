// Package theme persists the light/dark preference, the only state the
// portfolio keeps between visits.
package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	folioerrors "github.com/conneroisu/folio/internal/errors"
)

// Mode is the page color scheme.
type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// DarkClass is the body class applied in dark mode.
const DarkClass = "dark-mode"

// String implements pflag.Value.
func (m *Mode) String() string {
	if m == nil || *m == "" {
		return string(Light)
	}
	return string(*m)
}

// Set implements pflag.Value.
func (m *Mode) Set(s string) error {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		*m = Light
	case Dark:
		*m = Dark
	default:
		return fmt.Errorf("theme must be %q or %q, got %q", Light, Dark, s)
	}
	return nil
}

// Type implements pflag.Value.
func (m *Mode) Type() string { return "theme" }

// Toggled returns the opposite mode.
func (m Mode) Toggled() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

// BodyClass returns the class list entry for the body element.
func (m Mode) BodyClass() string {
	if m == Dark {
		return DarkClass
	}
	return ""
}

// FromStored maps a stored value to a Mode. Anything but "dark" is light.
func FromStored(v string) Mode {
	if v == string(Dark) {
		return Dark
	}
	return Light
}

type document struct {
	Theme string `yaml:"theme"`
}

// Store reads and writes the preference file.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store backed by path. The file need not exist.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Load returns the stored mode, light when the file is missing or unreadable
// as YAML.
func (s *Store) Load() (Mode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() (Mode, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return Light, nil
	}
	if err != nil {
		return Light, folioerrors.WrapIO(err, folioerrors.ErrCodeFileNotFound, "read theme preference")
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Light, nil
	}
	return FromStored(doc.Theme), nil
}

// Save persists m.
func (s *Store) Save(m Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(m)
}

func (s *Store) saveLocked(m Mode) error {
	if m != Dark {
		m = Light
	}
	data, err := yaml.Marshal(document{Theme: string(m)})
	if err != nil {
		return folioerrors.NewInternalError(folioerrors.ErrCodeInternalError, "encode theme preference", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return folioerrors.WrapIO(err, folioerrors.ErrCodeInvalidPath, "create theme directory")
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return folioerrors.WrapIO(err, folioerrors.ErrCodeInvalidPath, "write theme preference")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return folioerrors.WrapIO(err, folioerrors.ErrCodeInvalidPath, "replace theme preference")
	}
	return nil
}

// Toggle flips the stored mode and returns the new one.
func (s *Store) Toggle() (Mode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.loadLocked()
	if err != nil {
		return current, err
	}
	next := current.Toggled()
	if err := s.saveLocked(next); err != nil {
		return current, err
	}
	return next, nil
}
