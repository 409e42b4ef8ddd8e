package memory

import (
	"context"
	"sort"
	"sync"

	"spendwise/internal/kv"
)

// Store keeps values in process memory. Values are copied on the way in
// and out so callers cannot alias stored bytes.
type Store struct {
	mu    sync.Mutex
	items map[string][]byte
}

func New() *Store {
	return &Store{items: make(map[string][]byte)}
}

// NewSeeded returns a store pre-populated with the given entries.
func NewSeeded(seed map[string][]byte) *Store {
	s := New()
	for k, v := range seed {
		s.items[k] = clone(v)
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	if !ok {
		return nil, kv.ErrNotFound
	}
	return clone(v), nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = clone(value)
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

// Keys lists stored keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
