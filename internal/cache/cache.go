package cache

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"spendwise/internal/kv"
)

// Cache defines a generic cache interface
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
	Purge()
}

// Store is a read-through, write-through cache in front of a kv.Store.
// Writes reach the backing store first; the cached copy is only updated
// once the write succeeded, so a failed write never leaves a value in the
// cache that the store does not hold. Concurrent misses on one key share a
// single backing read.
type Store struct {
	next  kv.Store
	cache Cache[[]byte]
	group singleflight.Group
	hits  atomic.Int64
	miss  atomic.Int64
}

// NewStore wraps next with an LRU of the given size and ttl.
func NewStore(next kv.Store, size int, ttl time.Duration) *Store {
	return &Store{next: next, cache: NewLRUCache[[]byte](size, ttl)}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := s.cache.Get(key); ok {
		s.hits.Add(1)
		return clone(v), nil
	}
	s.miss.Add(1)
	v, err, _ := s.group.Do(key, func() (any, error) {
		b, err := s.next.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		s.cache.Set(key, clone(b))
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return clone(v.([]byte)), nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.next.Set(ctx, key, value); err != nil {
		s.cache.Delete(key)
		return err
	}
	s.cache.Set(key, clone(value))
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.cache.Delete(key)
	return s.next.Delete(ctx, key)
}

// Stats returns hit and miss counters since construction.
func (s *Store) Stats() (hits, misses int) {
	return int(s.hits.Load()), int(s.miss.Load())
}

// Size is the number of cached entries.
func (s *Store) Size() int {
	return s.cache.Size()
}

// Close logs the cache counters and drops every cached entry. The backing
// store is left open; its owner closes it.
func (s *Store) Close() error {
	hits, misses := s.Stats()
	slog.Debug("Cache closed", "hits", hits, "misses", misses, "entries", s.cache.Size())
	s.cache.Purge()
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
