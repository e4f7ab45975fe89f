package services

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kissesu/claude-token-monitor/internal/config"
	"github.com/kissesu/claude-token-monitor/internal/ingest"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	base := t.TempDir()
	return &config.Config{
		ClaudeDir:     filepath.Join(base, "claude"),
		DatabasePath:  filepath.Join(base, "usage.db"),
		LogPath:       filepath.Join(base, "monitor.log"),
		WatchDebounce: 50 * time.Millisecond,
	}
}

func writeDataFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func usageLine(messageID string) string {
	return fmt.Sprintf(
		`{"id":%q,"session_id":"sess_1","model":"claude-3-5-sonnet-20241022","created_at":%q,"usage":{"input_tokens":100,"output_tokens":50,"cost_usd":0.01}}`,
		messageID, time.Now().Format(time.RFC3339),
	)
}

func TestNewManagerIngestsExistingData(t *testing.T) {
	cfg := testConfig(t)

	writeDataFile(t, filepath.Join(cfg.ClaudeDir, "settings.json"),
		`{"ANTHROPIC_AUTH_TOKEN":"sk-ant-boot"}`)
	writeDataFile(t, filepath.Join(cfg.ClaudeDir, "projects", "p1", "chat.jsonl"),
		usageLine("msg_1")+"\n"+usageLine("msg_2")+"\n")

	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}
	defer func() { _ = m.Close() }()
	m.SetNotifications(false)

	stats, err := m.LifetimeStats()
	if err != nil {
		t.Fatalf("failed to query lifetime stats: %v", err)
	}
	if stats.TotalMessages != 2 {
		t.Errorf("TotalMessages = %d, want 2", stats.TotalMessages)
	}

	active, err := m.ActiveProvider()
	if err != nil {
		t.Fatalf("failed to query active provider: %v", err)
	}
	if active == nil {
		t.Fatal("expected an active provider after startup")
	}

	activity, err := m.DailyActivity(30)
	if err != nil {
		t.Fatalf("failed to query daily activity: %v", err)
	}
	if len(activity) != 1 {
		t.Errorf("activity days = %d, want 1", len(activity))
	}
}

func TestManagerBroadcastsProviderSwitch(t *testing.T) {
	cfg := testConfig(t)

	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}
	defer func() { _ = m.Close() }()
	m.SetNotifications(false)

	ch, _ := m.Subscribe()
	defer m.Unsubscribe(ch)

	writeDataFile(t, filepath.Join(cfg.ClaudeDir, "settings.json"),
		`{"ANTHROPIC_AUTH_TOKEN":"sk-ant-switched"}`)

	deadline := time.After(3 * time.Second)
	for {
		select {
		case event := <-ch:
			if changed, ok := event.(ProviderChangedEvent); ok {
				if changed.Provider == nil || !changed.Provider.IsActive {
					t.Fatalf("unexpected provider in event: %+v", changed.Provider)
				}

				switches, err := m.RecentSwitches(10)
				if err != nil {
					t.Fatalf("failed to query switches: %v", err)
				}
				if len(switches) != 1 {
					t.Errorf("switch log entries = %d, want 1", len(switches))
				}
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for ProviderChangedEvent")
		}
	}
}

func TestManagerProviderCommands(t *testing.T) {
	cfg := testConfig(t)

	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}
	defer func() { _ = m.Close() }()
	m.SetNotifications(false)

	provider, err := m.AddProvider("sk-ant-manual", "Backup")
	if err != nil {
		t.Fatalf("failed to add provider: %v", err)
	}
	if provider.IsActive {
		t.Error("manually added provider must not be active")
	}

	if err := m.RenameProvider(provider.ID, "Primary"); err != nil {
		t.Fatalf("failed to rename provider: %v", err)
	}

	providers, err := m.ListProviders()
	if err != nil {
		t.Fatalf("failed to list providers: %v", err)
	}
	if len(providers) != 1 || providers[0].DisplayName != "Primary" {
		t.Errorf("providers = %+v", providers)
	}

	if err := m.DeleteProvider(provider.ID); err != nil {
		t.Fatalf("failed to delete provider: %v", err)
	}
	providers, err = m.ListProviders()
	if err != nil {
		t.Fatalf("failed to list providers: %v", err)
	}
	if len(providers) != 0 {
		t.Errorf("providers after delete = %d, want 0", len(providers))
	}
}

func TestManagerNotificationToggleConcurrent(t *testing.T) {
	cfg := testConfig(t)

	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}
	defer func() { _ = m.Close() }()
	m.SetNotifications(false)

	provider, err := m.AddProvider("sk-ant-race", "")
	if err != nil {
		t.Fatalf("failed to add provider: %v", err)
	}

	// The notify flag is written here while the event handler reads it on
	// its own goroutine path; both sides must go through the lock.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			m.SetNotifications(false)
		}
	}()

	for i := 0; i < 50; i++ {
		m.handleScannerEvent(ingest.Event{
			Type:     ingest.EventProviderChanged,
			Provider: provider,
		})
	}
	<-done
}

func TestManagerUnsubscribeClosesChannel(t *testing.T) {
	cfg := testConfig(t)

	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}
	defer func() { _ = m.Close() }()
	m.SetNotifications(false)

	ch, _ := m.Subscribe()
	m.Unsubscribe(ch)

	if _, open := <-ch; open {
		t.Error("unsubscribed channel should be closed")
	}
}
