package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/SNO7E-G/Blockchain-Based-Authentication/core"
	"github.com/SNO7E-G/Blockchain-Based-Authentication/ports"
)

// SlotName is the fixed name of the single credential slot.
const SlotName = "auth_token"

// FileStore keeps the session credential in a single file under a local
// state directory. This is the durable backend for single-user use.
type FileStore struct {
	path string
}

// NewFileStore creates a file store rooted at dir, creating the directory
// if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, core.ErrConfiguration
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session dir: %w", err)
	}
	return &FileStore{path: filepath.Join(dir, SlotName)}, nil
}

var _ ports.SessionStore = (*FileStore)(nil)

// Save writes the credential, replacing any previous one.
func (s *FileStore) Save(token string) error {
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load returns the stored credential.
func (s *FileStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", core.ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("failed to load session: %w", err)
	}
	if len(data) == 0 {
		return "", core.ErrNoSession
	}
	return string(data), nil
}

// Clear empties the slot.
func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
