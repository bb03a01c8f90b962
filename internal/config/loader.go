package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with 3-tier priority:
// Environment variables > YAML config file > Default values
//
// The config file path comes from RELAY_CONFIG; when unset, relay.yaml in the
// working directory is used if present. A missing file is not an error.
func Load() (*Config, error) {
	// Load .env file if exists
	loadDotEnv()

	// Start with defaults
	cfg := DefaultConfig()

	// Try loading from YAML config file
	if err := loadFromFile(cfg, configFilePath()); err != nil {
		return nil, err
	}

	// Apply environment variable overrides (highest priority)
	applyEnvOverrides(cfg)

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func configFilePath() string {
	if p := os.Getenv("RELAY_CONFIG"); p != "" {
		return p
	}
	return "relay.yaml"
}

// loadFromFile merges the YAML config file into cfg. The default file is
// optional; a file named explicitly via RELAY_CONFIG must exist.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && os.Getenv("RELAY_CONFIG") == "" {
			return nil
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// loadDotEnv loads a .env file from the working directory.
func loadDotEnv() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // .env file is optional
	}

	// Simple .env parser: KEY=VALUE lines
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = trimQuotes(strings.TrimSpace(val))
		// Only set if not already set (env vars take precedence)
		if key != "" && os.Getenv(key) == "" {
			os.Setenv(key, val)
		}
	}
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	cfg.Server.Host = getEnvStr("RELAY_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("RELAY_PORT", cfg.Server.Port)
	cfg.Server.LogLevel = getEnvStr("LOG_LEVEL", cfg.Server.LogLevel)
	cfg.Server.MaxBodyBytes = getEnvInt64("RELAY_MAX_BODY_BYTES", cfg.Server.MaxBodyBytes)

	cfg.Capture.Capacity = getEnvInt("RELAY_CAPTURE_CAPACITY", cfg.Capture.Capacity)
	cfg.Forward.TimeoutSeconds = getEnvInt("RELAY_FORWARD_TIMEOUT_SECONDS", cfg.Forward.TimeoutSeconds)

	cfg.Admin.Username = getEnvStr("ADMIN_USERNAME", cfg.Admin.Username)
	cfg.Admin.Password = getEnvStr("ADMIN_PASSWORD", cfg.Admin.Password)

	cfg.RateLimit.Enabled = getEnvBool("RELAY_RATE_LIMIT_ENABLED", cfg.RateLimit.Enabled)
	cfg.RateLimit.MaxRequests = getEnvInt("RELAY_RATE_LIMIT_MAX_REQUESTS", cfg.RateLimit.MaxRequests)
	cfg.RateLimit.WindowSeconds = getEnvInt("RELAY_RATE_LIMIT_WINDOW_SECONDS", cfg.RateLimit.WindowSeconds)

	cfg.LogRotation.MaxSizeMB = getEnvInt("RELAY_LOG_MAX_SIZE_MB", cfg.LogRotation.MaxSizeMB)
	cfg.LogRotation.MaxBackups = getEnvInt("RELAY_LOG_MAX_BACKUPS", cfg.LogRotation.MaxBackups)
	cfg.LogRotation.MaxAgeDays = getEnvInt("RELAY_LOG_MAX_AGE_DAYS", cfg.LogRotation.MaxAgeDays)
	cfg.LogRotation.Compress = getEnvBool("RELAY_LOG_COMPRESS", cfg.LogRotation.Compress)
}

func trimQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
