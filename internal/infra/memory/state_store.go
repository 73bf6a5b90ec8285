package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// StateStore is an in-memory implementation of app.StateStore. Values are kept JSON
// encoded so callers get the same copy semantics as the durable stores.
type StateStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewStateStore() *StateStore {
	return &StateStore{
		blobs: make(map[string][]byte),
	}
}

func (s *StateStore) Load(_ context.Context, key string, dst any) (bool, error) {
	s.mu.RLock()
	raw, ok := s.blobs[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (s *StateStore) Save(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = raw
	return nil
}

func (s *StateStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}
