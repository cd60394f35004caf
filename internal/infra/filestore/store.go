package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// CooldownStore keeps the last-notified value as the sole content of a file.
type CooldownStore struct {
	path string
}

func NewCooldownStore(path string) *CooldownStore {
	return &CooldownStore{path: path}
}

func (s *CooldownStore) Path() string { return s.path }

func (s *CooldownStore) LoadLastNotified(_ context.Context) (string, bool, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("error reading %s: %w", s.path, err)
	}
	value := strings.TrimSpace(string(raw))
	if value == "" {
		return "", false, nil
	}
	return value, true, nil
}

// SaveLastNotified replaces the file through a rename so a crash mid-write
// never leaves a truncated timestamp behind.
func (s *CooldownStore) SaveLastNotified(_ context.Context, value string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".cooldown-*")
	if err != nil {
		return fmt.Errorf("error creating temp file in %s: %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing cooldown record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error closing cooldown record: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("error replacing %s: %w", s.path, err)
	}
	return nil
}
