package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

type Config struct {
	// Database
	SQLitePath string

	// AMQP reminder delivery. An empty URL means log-only delivery.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Reminder scheduler
	TickInterval time.Duration

	// Logging
	LogLevel string
}

func Load() *Config {
	return &Config{
		SQLitePath: getEnv("PRACTICELOG_DB_PATH", "./data/practicelog.db"),

		AMQPURL:      getEnv("PRACTICELOG_AMQP_URL", ""),
		AMQPExchange: getEnv("PRACTICELOG_AMQP_EXCHANGE", "practicelog"),
		AMQPQueue:    getEnv("PRACTICELOG_AMQP_QUEUE", "reminders"),

		TickInterval: getEnvDuration("PRACTICELOG_TICK_INTERVAL", time.Minute),

		LogLevel: getEnv("PRACTICELOG_LOG_LEVEL", "info"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if c.SQLitePath == "" {
		errors = append(errors, "database path cannot be empty")
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

	if c.TickInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid tick interval %v: must be at least 1 second", c.TickInterval))
	} else if c.TickInterval > time.Hour {
		errors = append(errors, fmt.Sprintf("invalid tick interval %v: must be at most 1 hour", c.TickInterval))
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
