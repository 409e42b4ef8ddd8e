// Package state serializes the session state and maps it onto store keys.
//
// Payloads are JSON. Decimal amounts are written as strings and timestamps
// as RFC 3339 with nanoseconds, so a saved value reloads digit for digit.
package state

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"spendwise/internal/core"
)

// MarkerLayout is the calendar-day format of the daily bonus marker.
const MarkerLayout = "2006-01-02"

// DecodeError reports a payload that could not be parsed or did not
// validate. It carries the offending key so callers can discard it.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func EncodeProfile(p core.Profile) ([]byte, error) {
	return json.Marshal(p)
}

// DecodeProfile parses and validates a profile payload.
func DecodeProfile(b []byte) (core.Profile, error) {
	var p core.Profile
	if err := json.Unmarshal(b, &p); err != nil {
		return core.Profile{}, err
	}
	if p.Badges == nil {
		p.Badges = []core.Badge{}
	}
	if p.SavingsGoals == nil {
		p.SavingsGoals = []core.SavingsGoal{}
	}
	if err := p.Validate(); err != nil {
		return core.Profile{}, err
	}
	return p, nil
}

func EncodeLedger(ledger []core.Expense) ([]byte, error) {
	if ledger == nil {
		ledger = []core.Expense{}
	}
	return json.Marshal(ledger)
}

// DecodeLedger parses a ledger and rejects it as a whole if any entry is
// invalid or two entries share an id.
func DecodeLedger(b []byte) ([]core.Expense, error) {
	var ledger []core.Expense
	if err := json.Unmarshal(b, &ledger); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(ledger))
	for i, e := range ledger {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("entry %d: duplicate id %q", i, e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	if ledger == nil {
		ledger = []core.Expense{}
	}
	return ledger, nil
}

func EncodeChallenges(cs []core.Challenge) ([]byte, error) {
	if cs == nil {
		cs = []core.Challenge{}
	}
	return json.Marshal(cs)
}

func DecodeChallenges(b []byte) ([]core.Challenge, error) {
	var cs []core.Challenge
	if err := json.Unmarshal(b, &cs); err != nil {
		return nil, err
	}
	for i, c := range cs {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("challenge %d: %w", i, err)
		}
	}
	if cs == nil {
		cs = []core.Challenge{}
	}
	return cs, nil
}

// ValidMarker reports whether s is a well-formed calendar-day marker.
func ValidMarker(s string) bool {
	_, err := time.Parse(MarkerLayout, s)
	return err == nil
}
