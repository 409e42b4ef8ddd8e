package backend

import (
	"context"

	"spendwise/internal/kv"
	"spendwise/internal/notify"
)

// BackendType selects where session state is stored.
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (t BackendType) IsValid() bool {
	return t == SQLiteBackend || t == MemoryBackend
}

func (t BackendType) String() string {
	return string(t)
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult is a ready store plus the notifier for achievement events.
type BackendResult struct {
	Store    kv.Store
	Notifier notify.Notifier
	Cleanup  CleanupFunc
}

// Close runs Cleanup if set.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}
