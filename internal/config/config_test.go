package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("DATABASE_PATH", filepath.Join(tmpDir, "db", "usage.db"))
	t.Setenv("LOG_PATH", filepath.Join(tmpDir, "monitor.log"))
	t.Setenv("CLAUDE_DIR", "")
	t.Setenv("WATCH_DEBOUNCE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if !strings.HasSuffix(cfg.ClaudeDir, ".claude") {
		t.Errorf("ClaudeDir = %q, want ~/.claude default", cfg.ClaudeDir)
	}
	if cfg.WatchDebounce != defaultWatchDebounce {
		t.Errorf("WatchDebounce = %v, want default %v", cfg.WatchDebounce, defaultWatchDebounce)
	}

	// The database directory must be created eagerly.
	if _, err := os.Stat(filepath.Dir(cfg.DatabasePath)); err != nil {
		t.Errorf("database directory was not created: %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("CLAUDE_DIR", filepath.Join(tmpDir, "claude"))
	t.Setenv("DATABASE_PATH", filepath.Join(tmpDir, "usage.db"))
	t.Setenv("LOG_PATH", filepath.Join(tmpDir, "monitor.log"))
	t.Setenv("WATCH_DEBOUNCE", "500ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.ClaudeDir != filepath.Join(tmpDir, "claude") {
		t.Errorf("ClaudeDir = %q, want override", cfg.ClaudeDir)
	}
	if cfg.WatchDebounce != 500*time.Millisecond {
		t.Errorf("WatchDebounce = %v, want 500ms", cfg.WatchDebounce)
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"with unit", "250ms", 250 * time.Millisecond},
		{"bare seconds", "2", 2 * time.Second},
		{"garbage falls back", "soon", defaultWatchDebounce},
		{"empty falls back", "", defaultWatchDebounce},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.value)
			got := getEnvDuration("TEST_DURATION", defaultWatchDebounce)
			if got != tt.want {
				t.Errorf("getEnvDuration(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestSettingsPath(t *testing.T) {
	cfg := &Config{ClaudeDir: "/tmp/claude"}
	want := filepath.Join("/tmp/claude", SettingsFileName)
	if got := cfg.SettingsPath(); got != want {
		t.Errorf("SettingsPath() = %q, want %q", got, want)
	}
}
