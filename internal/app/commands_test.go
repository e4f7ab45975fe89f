package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/kissesu/claude-token-monitor/internal/config"
	"github.com/kissesu/claude-token-monitor/internal/services"
)

func testManager(t *testing.T) *services.Manager {
	t.Helper()

	base := t.TempDir()
	cfg := &config.Config{
		ClaudeDir:     filepath.Join(base, "claude"),
		DatabasePath:  filepath.Join(base, "usage.db"),
		LogPath:       filepath.Join(base, "monitor.log"),
		WatchDebounce: 50 * time.Millisecond,
	}

	mgr, err := services.NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })

	return mgr
}

func TestLoadStatsCmd(t *testing.T) {
	mgr := testManager(t)

	msg := loadStatsCmd(mgr)()
	loaded, ok := msg.(StatsLoadedMsg)
	if !ok {
		t.Fatalf("expected StatsLoadedMsg, got %T", msg)
	}
	if loaded.Error != nil {
		t.Fatalf("unexpected error: %v", loaded.Error)
	}
	if loaded.Lifetime == nil || loaded.Today == nil {
		t.Error("empty database should still yield zero-valued stats")
	}
}

func TestLoadProvidersCmd(t *testing.T) {
	mgr := testManager(t)

	msg := loadProvidersCmd(mgr)()
	loaded, ok := msg.(ProvidersLoadedMsg)
	if !ok {
		t.Fatalf("expected ProvidersLoadedMsg, got %T", msg)
	}
	if loaded.Error != nil {
		t.Fatalf("unexpected error: %v", loaded.Error)
	}
	if len(loaded.Providers) != 0 {
		t.Error("fresh database should have no providers")
	}
}

func TestLoadActivityCmd(t *testing.T) {
	mgr := testManager(t)

	msg := loadActivityCmd(mgr)()
	loaded, ok := msg.(ActivityLoadedMsg)
	if !ok {
		t.Fatalf("expected ActivityLoadedMsg, got %T", msg)
	}
	if loaded.Error != nil {
		t.Fatalf("unexpected error: %v", loaded.Error)
	}
}

func TestRenameProviderCmdMissing(t *testing.T) {
	mgr := testManager(t)

	msg := renameProviderCmd(mgr, 12345, "Ghost")()
	result, ok := msg.(RenameProviderResultMsg)
	if !ok {
		t.Fatalf("expected RenameProviderResultMsg, got %T", msg)
	}
	if result.Success {
		t.Error("renaming an unknown provider should fail")
	}
}

func TestSubscribeToServicesCmd(t *testing.T) {
	mgr := testManager(t)

	msg := subscribeToServicesCmd(mgr)()
	sub, ok := msg.(SubscriptionEventMsg)
	if !ok {
		t.Fatalf("expected SubscriptionEventMsg, got %T", msg)
	}
	if sub.Channel == nil {
		t.Error("subscription channel should not be nil")
	}
}

func TestWaitForServiceEventCmdClosedChannel(t *testing.T) {
	ch := make(chan services.ServiceEvent)
	close(ch)

	if msg := waitForServiceEventCmd(ch)(); msg != nil {
		t.Errorf("closed channel should yield nil, got %T", msg)
	}
}

func TestNotifyCmds(t *testing.T) {
	msg := notifySuccessCmd("ok")()
	if n, ok := msg.(AddNotificationMsg); !ok || n.Type != NotificationSuccess {
		t.Errorf("notifySuccessCmd produced %T %+v", msg, msg)
	}

	msg = notifyErrorCmd("bad")()
	if n, ok := msg.(AddNotificationMsg); !ok || n.Type != NotificationError {
		t.Errorf("notifyErrorCmd produced %T %+v", msg, msg)
	}

	msg = notifyInfoCmd("fyi")()
	if n, ok := msg.(AddNotificationMsg); !ok || n.Type != NotificationInfo {
		t.Errorf("notifyInfoCmd produced %T %+v", msg, msg)
	}
}

func TestClearNotificationCmd(t *testing.T) {
	start := time.Now()
	msg := clearNotificationCmd("some-id", 10*time.Millisecond)()
	if time.Since(start) < 10*time.Millisecond {
		t.Error("clearNotificationCmd should wait for the delay")
	}

	removed, ok := msg.(RemoveNotificationMsg)
	if !ok {
		t.Fatalf("expected RemoveNotificationMsg, got %T", msg)
	}
	if removed.ID != "some-id" {
		t.Errorf("ID = %s, want some-id", removed.ID)
	}
}

func TestDelayedCmd(t *testing.T) {
	msg := delayedCmd(time.Millisecond, RefreshMsg{Resource: "stats"})()
	refresh, ok := msg.(RefreshMsg)
	if !ok {
		t.Fatalf("expected RefreshMsg, got %T", msg)
	}
	if refresh.Resource != "stats" {
		t.Error("delayed message payload mismatch")
	}
}

func TestCommandsWrapper(t *testing.T) {
	mgr := testManager(t)
	c := NewCommands(mgr)

	if c.LoadInitialData() == nil {
		t.Error("LoadInitialData returned nil")
	}
	if c.LoadStats() == nil {
		t.Error("LoadStats returned nil")
	}
	if c.NotifySuccess("ok") == nil {
		t.Error("NotifySuccess returned nil")
	}
	if c.Tick(time.Second) == nil {
		t.Error("Tick returned nil")
	}
	if c.Delayed(time.Millisecond, RefreshMsg{}) == nil {
		t.Error("Delayed returned nil")
	}
}
