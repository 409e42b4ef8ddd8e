package memory

import (
	"context"
	"errors"
	"testing"

	"spendwise/internal/kv"
)

func TestMemoryStoreSetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	in := []byte(`{"a":1}`)
	if err := s.Set(ctx, "k", in); err != nil {
		t.Fatalf("unexpected set error: %v", err)
	}
	in[0] = 'X'

	got, err := s.Get(ctx, "k")
	if err != nil || string(got) != `{"a":1}` {
		t.Fatalf("unexpected get: %q err=%v", got, err)
	}
	got[0] = 'Y'
	again, _ := s.Get(ctx, "k")
	if string(again) != `{"a":1}` {
		t.Fatalf("stored value was aliased: %q", again)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("unexpected delete error: %v", err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("deleting a missing key should be a no-op, got %v", err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestNewSeededKeys(t *testing.T) {
	s := NewSeeded(map[string][]byte{"b": []byte("2"), "a": []byte("1")})
	keys := s.Keys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("unexpected keys: %v", keys)
	}
}
