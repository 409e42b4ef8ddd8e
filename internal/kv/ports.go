// Package kv defines the byte-level key/value port the session state is
// persisted through.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("key not found")

// Ports for outbound adapters.
type (
	Getter interface {
		// Get returns the stored bytes or ErrNotFound.
		Get(ctx context.Context, key string) ([]byte, error)
	}

	Setter interface {
		// Set replaces the value in a single write; a failed write leaves the
		// previous value in place.
		Set(ctx context.Context, key string, value []byte) error
	}

	Deleter interface {
		// Delete is a no-op for missing keys.
		Delete(ctx context.Context, key string) error
	}

	Store interface {
		Getter
		Setter
		Deleter
	}
)
