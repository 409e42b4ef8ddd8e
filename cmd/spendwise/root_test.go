package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
	"spendwise/internal/kv/memory"
	"spendwise/internal/session"
	"spendwise/internal/state"
)

// readOnlyStore rejects every write.
type readOnlyStore struct {
	*memory.Store
}

func (readOnlyStore) Set(context.Context, string, []byte) error {
	return errors.New("read-only file system")
}

func TestStartSessionKeepsRunningWhenRewardCannotBeSaved(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	store := memory.New()
	seed := session.New(store, session.WithClock(func() time.Time { return now }))
	if _, err := seed.CreateProfile(ctx, "Amina", "amina@example.com",
		decimal.NewFromInt(2000000), decimal.NewFromInt(1500000)); err != nil {
		t.Fatalf("CreateProfile() error = %v", err)
	}
	if _, err := seed.AppendExpense(ctx, decimal.NewFromInt(1000), core.Food, "Tea"); err != nil {
		t.Fatalf("AppendExpense() error = %v", err)
	}
	// Rewind the marker so today's bonus is due again on start.
	if err := store.Set(ctx, state.KeyBonusMarker, []byte("2025-03-13")); err != nil {
		t.Fatal(err)
	}

	var stderr bytes.Buffer
	ctrl := session.New(readOnlyStore{store}, session.WithClock(func() time.Time { return now }))
	if err := startSession(ctx, ctrl, now, &stderr); err != nil {
		t.Fatalf("startSession() error = %v, want nil", err)
	}
	if !strings.Contains(stderr.String(), "could not be saved") {
		t.Errorf("expected an unsaved warning, got %q", stderr.String())
	}
	p, err := ctrl.Profile()
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	before, _ := seed.Profile()
	if p.Points <= before.Points {
		t.Errorf("due bonus not applied in memory: %d -> %d", before.Points, p.Points)
	}
}

func TestStartSessionReturnsReadFailures(t *testing.T) {
	ctx := context.Background()
	ctrl := session.New(failingReadStore{memory.New()})
	var stderr bytes.Buffer
	if err := startSession(ctx, ctrl, time.Now(), &stderr); err == nil {
		t.Fatal("startSession() error = nil, want read failure")
	}
}

// failingReadStore rejects every read.
type failingReadStore struct {
	*memory.Store
}

func (failingReadStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("i/o error")
}
