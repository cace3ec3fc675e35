// Package state persists the single piece of durable state: the first-visit
// flag. Everything else is allowed to vanish on restart.
package state

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// visitedKey names the flag on disk.
const visitedKey = "smart-potato-visited"

// VisitedFlag is a file-backed boolean flag.
type VisitedFlag struct {
	path string
}

// NewVisitedFlag creates a flag stored under dir. An empty dir falls back to
// the user config directory.
func NewVisitedFlag(dir string) (*VisitedFlag, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
		dir = filepath.Join(base, "smartpotato")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &VisitedFlag{path: filepath.Join(dir, visitedKey)}, nil
}

// Visited reports whether the flag has been set.
func (f *VisitedFlag) Visited() (bool, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read visited flag: %w", err)
	}
	return strings.TrimSpace(string(data)) == "true", nil
}

// MarkVisited sets the flag.
func (f *VisitedFlag) MarkVisited() error {
	if err := os.WriteFile(f.path, []byte("true\n"), 0o644); err != nil {
		return fmt.Errorf("write visited flag: %w", err)
	}
	return nil
}

// Reset clears the flag so the welcome flow runs again.
func (f *VisitedFlag) Reset() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove visited flag: %w", err)
	}
	return nil
}
