// Package config loads application configuration from environment variables.
// All variables use the TOS_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Cache          CacheConfig
	Allocation     AllocationConfig
	Log            LogConfig
	CurriculumPath string // empty uses the embedded MELC bank
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// DatabaseConfig holds PostgreSQL connection settings for the MELC bank.
// An empty URL means the YAML bank is used instead.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Dragonfly/Redis connection settings for generated
// assessments. An empty URL keeps sessions in memory.
type CacheConfig struct {
	URL        string
	SessionTTL int // minutes
}

// AllocationConfig holds item allocation settings.
type AllocationConfig struct {
	DefaultItems   int
	MinItems       int
	MaxItems       int
	LegacyRounding bool
	WeightsPath    string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with TOS_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("TOS_SERVER_PORT", 8080),
			Host: envStr("TOS_SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			URL:      envStr("TOS_DATABASE_URL", ""),
			MaxConns: envInt("TOS_DATABASE_MAX_CONNS", 10),
			MinConns: envInt("TOS_DATABASE_MIN_CONNS", 2),
		},
		Cache: CacheConfig{
			URL:        envStr("TOS_CACHE_URL", ""),
			SessionTTL: envInt("TOS_CACHE_SESSION_TTL", 60),
		},
		Allocation: AllocationConfig{
			DefaultItems:   envInt("TOS_ALLOCATION_DEFAULT_ITEMS", 30),
			MinItems:       envInt("TOS_ALLOCATION_MIN_ITEMS", 10),
			MaxItems:       envInt("TOS_ALLOCATION_MAX_ITEMS", 50),
			LegacyRounding: envBool("TOS_ALLOCATION_LEGACY_ROUNDING", false),
			WeightsPath:    envStr("TOS_ALLOCATION_WEIGHTS_PATH", ""),
		},
		Log: LogConfig{
			Level:  envStr("TOS_LOG_LEVEL", "info"),
			Format: envStr("TOS_LOG_FORMAT", "json"),
		},
		CurriculumPath: envStr("TOS_CURRICULUM_PATH", ""),
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	a := c.Allocation
	if a.MinItems < 1 {
		return fmt.Errorf("TOS_ALLOCATION_MIN_ITEMS must be at least 1, got %d", a.MinItems)
	}
	if a.MaxItems < a.MinItems {
		return fmt.Errorf("TOS_ALLOCATION_MAX_ITEMS (%d) must not be below TOS_ALLOCATION_MIN_ITEMS (%d)", a.MaxItems, a.MinItems)
	}
	if a.DefaultItems < a.MinItems || a.DefaultItems > a.MaxItems {
		return fmt.Errorf("TOS_ALLOCATION_DEFAULT_ITEMS must be within [%d, %d], got %d", a.MinItems, a.MaxItems, a.DefaultItems)
	}

	if c.Cache.SessionTTL < 1 {
		return fmt.Errorf("TOS_CACHE_SESSION_TTL must be at least 1 minute, got %d", c.Cache.SessionTTL)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("TOS_LOG_LEVEL must be one of debug, info, warn, error; got %q", c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("TOS_LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}

	return nil
}

// SessionTTL returns the cache session lifetime as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Cache.SessionTTL) * time.Minute
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}
