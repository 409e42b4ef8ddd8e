package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"spendwise/internal/kv"
)

func openTestRepo(t *testing.T, path string) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	return repo
}

func TestSQLiteRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "spendwise.db")
	repo := openTestRepo(t, path)
	defer repo.Close()

	if _, err := repo.Get(ctx, "spendwise-user"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := repo.Set(ctx, "spendwise-user", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := repo.Set(ctx, "spendwise-user", []byte(`{"v":2}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err := repo.Get(ctx, "spendwise-user")
	if err != nil || string(got) != `{"v":2}` {
		t.Fatalf("unexpected value %q err=%v", got, err)
	}

	if _, err := repo.UpdatedAt(ctx, "spendwise-user"); err != nil {
		t.Fatalf("updated_at: %v", err)
	}

	keys, err := repo.Keys(ctx)
	if err != nil || len(keys) != 1 || keys[0] != "spendwise-user" {
		t.Fatalf("unexpected keys %v err=%v", keys, err)
	}

	if err := repo.Delete(ctx, "spendwise-user"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, "spendwise-user"); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
	if _, err := repo.Get(ctx, "spendwise-user"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSQLiteRepositoryPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "spendwise.db")

	repo := openTestRepo(t, path)
	if err := repo.Set(ctx, "lastDailyBudgetBonus", []byte("2025-03-14")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Migrations must be idempotent on an existing file.
	repo = openTestRepo(t, path)
	defer repo.Close()

	got, err := repo.Get(ctx, "lastDailyBudgetBonus")
	if err != nil || string(got) != "2025-03-14" {
		t.Fatalf("unexpected value %q err=%v", got, err)
	}
}
