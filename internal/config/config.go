// Package config provides configuration management with 3-tier priority:
// Environment variables > YAML config file > Default values
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Capture     CaptureConfig     `yaml:"capture"`
	Forward     ForwardConfig     `yaml:"forward"`
	Admin       AdminConfig       `yaml:"admin"`
	LogRotation LogRotationConfig `yaml:"log_rotation"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
}

// RateLimitConfig throttles the debug routes. The relayed traffic itself is
// never rate limited.
type RateLimitConfig struct {
	Enabled       bool `yaml:"enabled"`
	MaxRequests   int  `yaml:"max_requests"`
	WindowSeconds int  `yaml:"window_seconds"`
}

// ServerConfig holds the HTTP front door configuration.
type ServerConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	LogLevel     string `yaml:"log_level"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

// CaptureConfig bounds the in-memory request history.
type CaptureConfig struct {
	Capacity int `yaml:"capacity"`
}

// ForwardConfig holds outbound request settings.
type ForwardConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// AdminConfig holds the basic-auth credentials guarding the debug routes.
// Both must be set; the debug surface refuses to serve without them.
type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// LogRotationConfig holds log rotation settings powered by lumberjack.
type LogRotationConfig struct {
	MaxSizeMB  int  `yaml:"max_size_mb"`
	MaxBackups int  `yaml:"max_backups"`
	MaxAgeDays int  `yaml:"max_age_days"`
	Compress   bool `yaml:"compress"`
}

// Timeout returns the forward timeout as a duration.
func (f ForwardConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// Configured reports whether admin credentials are present.
func (a AdminConfig) Configured() bool {
	return a.Username != "" && a.Password != ""
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8000,
			LogLevel:     "INFO",
			MaxBodyBytes: 10 << 20,
		},
		Capture: CaptureConfig{
			Capacity: 100,
		},
		Forward: ForwardConfig{
			TimeoutSeconds: 30,
		},
		LogRotation: LogRotationConfig{
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
		RateLimit: RateLimitConfig{
			Enabled:       true,
			MaxRequests:   100,
			WindowSeconds: 60,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return &ConfigError{Field: "server.port", Message: "must be between 1 and 65535"}
	}
	if c.Capture.Capacity < 1 {
		return &ConfigError{Field: "capture.capacity", Message: "must be at least 1"}
	}
	if c.Forward.TimeoutSeconds < 1 {
		return &ConfigError{Field: "forward.timeout_seconds", Message: "must be at least 1"}
	}
	if c.Server.MaxBodyBytes < 1 {
		return &ConfigError{Field: "server.max_body_bytes", Message: "must be positive"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Field + ": " + e.Message
}

// Helper functions for environment variable parsing.

func getEnvStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	lower := strings.ToLower(v)
	return lower == "true" || lower == "1" || lower == "yes" || lower == "on"
}
