package inventory

import (
	"context"
	"sync"
)

// Store persists the inventory. Load never fails on malformed content; an
// error means the backing store itself could not be read.
type Store interface {
	Load(ctx context.Context) (Inventory, error)
	Save(ctx context.Context, inv Inventory) error
}

// MemoryStore keeps the encoded values in memory.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
	saves  int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Load(ctx context.Context) (Inventory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := make(map[string]string, len(s.values))
	for k, v := range s.values {
		values[k] = v
	}
	return Decode(values), nil
}

func (s *MemoryStore) Save(ctx context.Context, inv Inventory) error {
	values, err := Encode(inv)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range values {
		s.values[k] = v
	}
	s.saves++
	return nil
}

// SetRaw stores an already-encoded value, bypassing Encode.
func (s *MemoryStore) SetRaw(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Raw returns the encoded value stored under key.
func (s *MemoryStore) Raw(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Saves returns how many times Save succeeded.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
