package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"spendwise/internal/core"
	"spendwise/internal/kv"
)

// Store keys.
const (
	KeyProfile     = "spendwise-user"
	KeyLedger      = "spendwise-expenses"
	KeyBonusMarker = "lastDailyBudgetBonus"
	KeyChallenges  = "spendwise-challenges"
)

// AllKeys lists every key owned by the session state.
func AllKeys() []string {
	return []string{KeyProfile, KeyLedger, KeyBonusMarker, KeyChallenges}
}

// Repository reads and writes typed state through a kv.Store.
type Repository struct {
	store kv.Store
}

func NewRepository(store kv.Store) *Repository {
	return &Repository{store: store}
}

// LoadProfile returns nil when no profile was saved and a *DecodeError when
// the stored payload is unusable.
func (r *Repository) LoadProfile(ctx context.Context) (*core.Profile, error) {
	b, ok, err := r.get(ctx, KeyProfile)
	if err != nil || !ok {
		return nil, err
	}
	p, err := DecodeProfile(b)
	if err != nil {
		return nil, &DecodeError{Key: KeyProfile, Err: err}
	}
	return &p, nil
}

// LoadLedger returns an empty ledger when none was saved.
func (r *Repository) LoadLedger(ctx context.Context) ([]core.Expense, error) {
	b, ok, err := r.get(ctx, KeyLedger)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []core.Expense{}, nil
	}
	ledger, err := DecodeLedger(b)
	if err != nil {
		return nil, &DecodeError{Key: KeyLedger, Err: err}
	}
	return ledger, nil
}

// LoadMarker returns the last bonus day, or "" when absent or malformed.
func (r *Repository) LoadMarker(ctx context.Context) (string, error) {
	b, ok, err := r.get(ctx, KeyBonusMarker)
	if err != nil || !ok {
		return "", err
	}
	m := string(b)
	if !ValidMarker(m) {
		slog.WarnContext(ctx, "Ignoring malformed bonus marker", "store_key", KeyBonusMarker, "value", m)
		return "", nil
	}
	return m, nil
}

func (r *Repository) LoadChallenges(ctx context.Context) ([]core.Challenge, error) {
	b, ok, err := r.get(ctx, KeyChallenges)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []core.Challenge{}, nil
	}
	cs, err := DecodeChallenges(b)
	if err != nil {
		return nil, &DecodeError{Key: KeyChallenges, Err: err}
	}
	return cs, nil
}

func (r *Repository) SaveProfile(ctx context.Context, p core.Profile) error {
	b, err := EncodeProfile(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	return r.store.Set(ctx, KeyProfile, b)
}

func (r *Repository) SaveLedger(ctx context.Context, ledger []core.Expense) error {
	b, err := EncodeLedger(ledger)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	return r.store.Set(ctx, KeyLedger, b)
}

func (r *Repository) SaveMarker(ctx context.Context, marker string) error {
	return r.store.Set(ctx, KeyBonusMarker, []byte(marker))
}

func (r *Repository) SaveChallenges(ctx context.Context, cs []core.Challenge) error {
	b, err := EncodeChallenges(cs)
	if err != nil {
		return fmt.Errorf("encode challenges: %w", err)
	}
	return r.store.Set(ctx, KeyChallenges, b)
}

// Discard deletes the given keys, attempting every key even after a failure.
func (r *Repository) Discard(ctx context.Context, keys ...string) error {
	var errs []error
	for _, k := range keys {
		if err := r.store.Delete(ctx, k); err != nil {
			errs = append(errs, &core.PersistenceError{Key: k, Err: err})
		}
	}
	return errors.Join(errs...)
}

func (r *Repository) get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return b, true, nil
}
