package backend

import (
	"context"
	"errors"
	"fmt"

	"spendwise/internal/amqp"
	"spendwise/internal/cache"
	"spendwise/internal/kv"
	"spendwise/internal/kv/memory"
	"spendwise/internal/log"
	"spendwise/internal/notify"
	"spendwise/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		store   kv.Store
		cleanup []CleanupFunc
	)
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		store = repo
		cleanup = append(cleanup, repo.Close)
		f.logger.DebugContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	case MemoryBackend:
		store = memory.New()
		f.logger.DebugContext(ctx, "Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	if config.CacheSize > 0 {
		cached := cache.NewStore(store, config.CacheSize, config.CacheTTL)
		store = cached
		cleanup = append(cleanup, cached.Close)
		f.logger.DebugContext(ctx, "Enabled read-through cache", "size", config.CacheSize, "ttl", config.CacheTTL)
	}

	notifiers := notify.Multi{notify.Log{Logger: f.logger.WithComponent(log.ComponentGamification).Logger}}
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without event publishing", log.FieldError, err)
		} else {
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			notifiers = append(notifiers, notify.AMQP{Publisher: client})
			cleanup = append(cleanup, client.Close)
		}
	}

	return &BackendResult{
		Store:    store,
		Notifier: notifiers,
		Cleanup: func() error {
			var errs []error
			for i := len(cleanup) - 1; i >= 0; i-- {
				if err := cleanup[i](); err != nil {
					errs = append(errs, err)
				}
			}
			return errors.Join(errs...)
		},
	}, nil
}
