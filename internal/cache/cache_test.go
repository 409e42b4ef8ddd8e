package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"spendwise/internal/kv"
	"spendwise/internal/kv/memory"
)

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("expected a to be cached")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("a should survive, got %v %v", v, ok)
	}
	if c.Size() != 2 {
		t.Fatalf("expected size 2, got %d", c.Size())
	}
}

func TestLRUExpiry(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](4, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("k", "v")
	c.Set("j", "w")
	now = now.Add(2 * time.Minute)

	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected k to be expired")
	}
	if removed := c.CleanExpired(); removed != 1 {
		t.Fatalf("expected 1 expired entry cleaned, got %d", removed)
	}
	if c.Size() != 0 {
		t.Fatalf("expected empty cache, got %d", c.Size())
	}
}

type failingStore struct {
	kv.Store
	failSet bool
}

func (f *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if f.failSet {
		return errors.New("disk full")
	}
	return f.Store.Set(ctx, key, value)
}

func TestStoreReadThrough(t *testing.T) {
	ctx := context.Background()
	backing := memory.NewSeeded(map[string][]byte{"spendwise-user": []byte("p1")})
	s := NewStore(backing, 8, time.Minute)

	for i := 0; i < 3; i++ {
		v, err := s.Get(ctx, "spendwise-user")
		if err != nil || string(v) != "p1" {
			t.Fatalf("unexpected %q err=%v", v, err)
		}
	}
	if hits, misses := s.Stats(); hits != 2 || misses != 1 {
		t.Fatalf("expected 2 hits 1 miss, got %d/%d", hits, misses)
	}

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreFailedWriteDoesNotCache(t *testing.T) {
	ctx := context.Background()
	backing := &failingStore{Store: memory.NewSeeded(map[string][]byte{"k": []byte("old")})}
	s := NewStore(backing, 8, time.Minute)

	if _, err := s.Get(ctx, "k"); err != nil {
		t.Fatalf("warm: %v", err)
	}
	backing.failSet = true
	if err := s.Set(ctx, "k", []byte("new")); err == nil {
		t.Fatalf("expected write error")
	}
	v, err := s.Get(ctx, "k")
	if err != nil || string(v) != "old" {
		t.Fatalf("expected backing value after failed write, got %q err=%v", v, err)
	}
}

func TestStoreDeleteInvalidates(t *testing.T) {
	ctx := context.Background()
	s := NewStore(memory.New(), 8, time.Minute)

	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestStoreCloseDropsEntries(t *testing.T) {
	ctx := context.Background()
	backing := memory.New()
	s := NewStore(backing, 8, time.Minute)
	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if s.Size() != 1 {
		t.Fatalf("expected 1 cached entry, got %d", s.Size())
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if s.Size() != 0 {
		t.Fatalf("expected an empty cache after close, got %d", s.Size())
	}
	if v, err := backing.Get(ctx, "k"); err != nil || string(v) != "v" {
		t.Fatalf("backing store lost the value: %q err=%v", v, err)
	}
}

// countingStore blocks reads until release is closed.
type countingStore struct {
	kv.Store
	release chan struct{}
	gets    atomic.Int32
}

func (c *countingStore) Get(ctx context.Context, key string) ([]byte, error) {
	c.gets.Add(1)
	<-c.release
	return c.Store.Get(ctx, key)
}

func TestStoreConcurrentMissesShareRead(t *testing.T) {
	ctx := context.Background()
	backing := &countingStore{
		Store:   memory.NewSeeded(map[string][]byte{"spendwise-expenses": []byte("[]")}),
		release: make(chan struct{}),
	}
	s := NewStore(backing, 8, time.Minute)

	const readers = 8
	var wg sync.WaitGroup
	results := make([]string, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := s.Get(ctx, "spendwise-expenses")
			if err != nil {
				t.Errorf("reader %d: %v", i, err)
				return
			}
			results[i] = string(v)
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(backing.release)
	wg.Wait()

	for i, r := range results {
		if r != "[]" {
			t.Errorf("reader %d got %q", i, r)
		}
	}
	if n := backing.gets.Load(); n < 1 || n > readers {
		t.Errorf("unexpected backing reads: %d", n)
	}
	if hits, misses := s.Stats(); hits+misses != readers {
		t.Errorf("expected %d lookups, got %d hits %d misses", readers, hits, misses)
	}
}
