package tabstore

import (
	"context"
	"strings"
	"sync"
)

// Store caches the registry session id of a browser tab. The first id
// written for a tab wins; later writes return the stored id.
type Store interface {
	// Get returns ErrNotFound if no id is stored for tabID.
	Get(ctx context.Context, tabID string) (string, error)

	// SetOnce stores sessionID unless tabID already has one. It returns the
	// id now stored and whether this call created it.
	SetOnce(ctx context.Context, tabID, sessionID string) (stored string, created bool, err error)

	// Delete removes the id for tabID. Deleting a missing id is not an error.
	Delete(ctx context.Context, tabID string) error
}

func validate(tabID string, sessionID ...string) error {
	if strings.TrimSpace(tabID) == "" {
		return ErrEmptyTabID
	}
	for _, id := range sessionID {
		if strings.TrimSpace(id) == "" {
			return ErrEmptySessionID
		}
	}
	return nil
}

// MemoryStore is a Store for a single process.
type MemoryStore struct {
	mu   sync.RWMutex
	tabs map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tabs: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, tabID string) (string, error) {
	if err := validate(tabID); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.tabs[tabID]
	if !ok {
		return "", ErrNotFound
	}
	return id, nil
}

func (s *MemoryStore) SetOnce(_ context.Context, tabID, sessionID string) (string, bool, error) {
	if err := validate(tabID, sessionID); err != nil {
		return "", false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.tabs[tabID]; ok {
		return id, false, nil
	}
	s.tabs[tabID] = sessionID
	return sessionID, true, nil
}

func (s *MemoryStore) Delete(_ context.Context, tabID string) error {
	if err := validate(tabID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tabs, tabID)
	return nil
}
