package store

import (
	"sync"

	"github.com/SNO7E-G/Blockchain-Based-Authentication/core"
	"github.com/SNO7E-G/Blockchain-Based-Authentication/ports"
)

// MemoryStore is an in-memory implementation of the SessionStore interface,
// primarily intended for tests.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
	set   bool
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

var _ ports.SessionStore = (*MemoryStore)(nil)

// Save writes the credential, replacing any previous one.
func (s *MemoryStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.set = true
	return nil
}

// Load returns the stored credential.
func (s *MemoryStore) Load() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.set {
		return "", core.ErrNoSession
	}
	return s.token, nil
}

// Clear empties the slot.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.set = false
	return nil
}
