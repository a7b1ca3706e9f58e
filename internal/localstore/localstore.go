// internal/localstore/localstore.go
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Store persists named JSON snapshots to the local device. Each key maps to
// one flat JSON file; stores save their full mutable state under a key on
// every mutation and rehydrate it at startup. State saved here is tied to the
// device, not the account.
type Store struct {
	dir string
}

// New creates the snapshot directory if needed and returns a store over it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create local storage directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Load reads the snapshot stored under key into dest. Returns (false, nil)
// when no snapshot exists yet.
func (s *Store) Load(key string, dest any) (bool, error) {
	payload, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read snapshot %q: %w", key, err)
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("corrupt snapshot %q: %w", key, err)
	}
	return true, nil
}

// Save writes value as the snapshot for key. The write goes to a temp file
// first so a crash mid-write never leaves a truncated snapshot behind.
func (s *Store) Save(key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot %q: %w", key, err)
	}

	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot %q: %w", key, err)
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		return fmt.Errorf("failed to commit snapshot %q: %w", key, err)
	}
	return nil
}

// Delete removes the snapshot for key. Missing snapshots are not an error.
func (s *Store) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete snapshot %q: %w", key, err)
	}
	return nil
}
