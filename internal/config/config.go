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

type Config struct {
	// HTTP Server
	Port string

	// Ledger
	OpeningBalanceCents int64

	// Database
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Mirror worker
	MirrorReconcileInterval time.Duration
	MirrorShutdownGrace     time.Duration
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8081"),

		OpeningBalanceCents: getEnvInt64("OPENING_BALANCE_CENTS", 0),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/portafoglio.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "portafoglio"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_changes"),

		MirrorReconcileInterval: getEnvDuration("MIRROR_RECONCILE_INTERVAL", 30*time.Minute),
		MirrorShutdownGrace:     getEnvDuration("MIRROR_SHUTDOWN_GRACE", 5*time.Second),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.OpeningBalanceCents < 0 {
		errors = append(errors, fmt.Sprintf("invalid opening balance %d: must be non-negative", c.OpeningBalanceCents))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
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

	if c.MirrorReconcileInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid mirror reconcile interval %v: must be at least 1 second", c.MirrorReconcileInterval))
	} else if c.MirrorReconcileInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid mirror reconcile interval %v: must be at most 24 hours", c.MirrorReconcileInterval))
	}

	if c.MirrorShutdownGrace < 0 {
		errors = append(errors, fmt.Sprintf("invalid mirror shutdown grace %v: must be non-negative", c.MirrorShutdownGrace))
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

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
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
