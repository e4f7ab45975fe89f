// Package config contains everything related to configuration
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// SettingsFileName is the fixed name of the CLI settings file.
const SettingsFileName = "settings.json"

// UsageLogExt is the extension of newline-delimited usage log files.
const UsageLogExt = ".jsonl"

// Config holds the application configuration.
type Config struct {
	// ClaudeDir is the watched data root of the CLI tool.
	ClaudeDir string
	// DatabasePath is where the SQLite store lives.
	DatabasePath string
	// LogPath receives structured logs while the TUI owns the terminal.
	LogPath string
	// WatchDebounce is how long file events are batched before a scan.
	WatchDebounce time.Duration
}

const defaultWatchDebounce = 200 * time.Millisecond

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		ClaudeDir:     getEnvString("CLAUDE_DIR", getDefaultClaudeDir()),
		DatabasePath:  getEnvString("DATABASE_PATH", getDefaultDatabasePath()),
		LogPath:       getEnvString("LOG_PATH", getDefaultLogPath()),
		WatchDebounce: getEnvDuration("WATCH_DEBOUNCE", defaultWatchDebounce),
	}

	// The data root may not exist yet; the database directory must.
	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, err
	}
	if err := ensureDir(filepath.Dir(cfg.LogPath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "claude-token-monitor", ".env"),
		)
	}

	return paths
}

// getDefaultClaudeDir returns the CLI data directory under the user home.
func getDefaultClaudeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".claude"
	}
	return filepath.Join(home, ".claude")
}

// getDefaultDatabasePath returns the default path for the SQLite database.
func getDefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "usage.db"
	}
	return filepath.Join(home, ".config", "claude-token-monitor", "usage.db")
}

// getDefaultLogPath returns the default path for the log file.
func getDefaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "monitor.log"
	}
	return filepath.Join(home, ".config", "claude-token-monitor", "monitor.log")
}

// SettingsPath returns the absolute path of the watched settings file.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.ClaudeDir, SettingsFileName)
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "200ms", "1s"; bare numbers are taken as seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
