package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Store persists the open-window set for session continuity.
type Store interface {
	Save(windows []Window) error
	Load() ([]Window, error)
}

// FileStore keeps the snapshot as a JSON file, the local-storage analog for a
// single user session.
type FileStore struct {
	path string
}

// NewFileStore builds a FileStore at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save writes the snapshot, creating parent dirs as needed.
func (s *FileStore) Save(windows []Window) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(windows)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Load reads the snapshot. A missing file is an empty session, not an error.
func (s *FileStore) Load() ([]Window, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var windows []Window
	if err := json.Unmarshal(data, &windows); err != nil {
		return nil, err
	}
	return windows, nil
}
