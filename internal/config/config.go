package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

type Config struct {
	// Storage
	Backend      string
	SQLiteDBPath string
	CacheSize    int
	CacheTTL     time.Duration

	// Challenge catalog; empty means the built-in one
	ChallengesFile string

	// Display
	Currency string

	LogLevel string

	// AMQP achievement events; disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

func Load() *Config {
	return &Config{
		Backend:      getEnv("SPENDWISE_BACKEND", BackendSQLite),
		SQLiteDBPath: getEnv("SPENDWISE_DB_PATH", DefaultDBPath()),
		CacheSize:    getEnvInt("SPENDWISE_CACHE_SIZE", 32),
		CacheTTL:     getEnvDuration("SPENDWISE_CACHE_TTL", 5*time.Minute),

		ChallengesFile: getEnv("SPENDWISE_CHALLENGES_FILE", ""),
		Currency:       getEnv("SPENDWISE_CURRENCY", "UGX"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "spendwise"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "achievements"),
	}
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "spendwise")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "spendwise")
}

func DefaultDBPath() string {
	return filepath.Join(DataDir(), "spendwise.db")
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	validBackends := []string{BackendMemory, BackendSQLite}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.Backend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid backend '%s': must be one of %v", c.Backend, validBackends))
	}

	if c.Backend == BackendSQLite && c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
	}

	if c.CacheSize < 0 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be zero (disabled) or positive", c.CacheSize))
	}
	if c.CacheSize > 0 && c.CacheTTL <= 0 {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be positive when the cache is enabled", c.CacheTTL))
	}

	if c.ChallengesFile != "" {
		if _, err := os.Stat(c.ChallengesFile); err != nil {
			errors = append(errors, fmt.Sprintf("challenges file is not readable: %s", c.ChallengesFile))
		}
	}

	if strings.TrimSpace(c.Currency) == "" {
		errors = append(errors, "currency code cannot be empty")
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
