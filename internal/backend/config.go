package backend

import (
	"fmt"
	"time"

	"spendwise/internal/config"
)

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SQLiteDBPath string

	// CacheSize of zero disables the read-through cache.
	CacheSize int
	CacheTTL  time.Duration

	// AMQP is optional; empty URL means events are only logged.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.Backend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.Backend)
	}

	return Config{
		Type:         backendType,
		SQLiteDBPath: appConfig.SQLiteDBPath,
		CacheSize:    appConfig.CacheSize,
		CacheTTL:     appConfig.CacheTTL,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.Type == SQLiteBackend && c.SQLiteDBPath == "" {
		return fmt.Errorf("SQLite database path is required for sqlite backend")
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache size cannot be negative")
	}
	if c.CacheSize > 0 && c.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive when the cache is enabled")
	}
	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{SQLiteBackend, MemoryBackend}
}
