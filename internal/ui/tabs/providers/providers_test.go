package providers

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kissesu/claude-token-monitor/internal/app"
	"github.com/kissesu/claude-token-monitor/internal/models"
)

func stateWithProviders(t *testing.T) *app.State {
	t.Helper()

	state := app.NewState()
	state.SetLoading("initial", false)
	state.SetProviders([]models.ProviderStats{
		{
			Provider: models.Provider{
				ID:           1,
				APIKeyPrefix: "sk-ant-a",
				DisplayName:  "Work",
				IsActive:     true,
				LastSeenAt:   "2026-08-29T10:00:00Z",
			},
			TodayInputTokens:  1500,
			TodayOutputTokens: 200,
			TodayCostUSD:      0.42,
			CacheHitRate:      0.8,
		},
		{
			Provider: models.Provider{
				ID:           2,
				APIKeyPrefix: "sk-ant-b",
				LastSeenAt:   "2026-08-28T10:00:00Z",
			},
		},
	})
	return state
}

func TestNew(t *testing.T) {
	m := New(app.NewState())
	if m == nil {
		t.Fatal("New returned nil")
	}
}

func TestModel_ViewListsProviders(t *testing.T) {
	state := stateWithProviders(t)
	m := New(state)
	m.Init()
	m.SetSize(100, 30)

	view := m.View()
	if !strings.Contains(view, "Work") {
		t.Error("View should contain the named provider")
	}
	if !strings.Contains(view, "sk-ant-b") {
		t.Error("View should contain the unnamed provider's key prefix")
	}
	if !strings.Contains(view, "active") {
		t.Error("View should mark the active provider")
	}
}

func TestModel_RefreshOnProvidersLoaded(t *testing.T) {
	state := app.NewState()
	state.SetLoading("initial", false)
	m := New(state)
	m.Init()
	m.SetSize(100, 30)

	state.SetProviders([]models.ProviderStats{
		{Provider: models.Provider{ID: 3, APIKeyPrefix: "sk-ant-c", LastSeenAt: "2026-08-29T10:00:00Z"}},
	})
	m.Update(app.ProvidersLoadedMsg{Providers: state.GetProviders()})

	if !strings.Contains(m.View(), "sk-ant-c") {
		t.Error("table should refresh after ProvidersLoadedMsg")
	}
}

func TestModel_RenameFlow(t *testing.T) {
	state := stateWithProviders(t)
	m := New(state)
	m.Init()
	m.SetSize(100, 30)

	// Enter rename mode on the selected provider
	tab, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m = tab.(*Model)
	if m.mode != modeRename {
		t.Fatal("pressing n should enter rename mode")
	}
	if m.targetID != 1 {
		t.Errorf("targetID = %d, want 1", m.targetID)
	}

	// Confirm with the prefilled name
	tab, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = tab.(*Model)
	if m.mode != modeList {
		t.Error("confirming should leave rename mode")
	}
	if cmd == nil {
		t.Fatal("confirming a rename should emit a command")
	}

	msg := cmd()
	rename, ok := msg.(app.RenameProviderMsg)
	if !ok {
		t.Fatalf("expected RenameProviderMsg, got %T", msg)
	}
	if rename.ProviderID != 1 || rename.DisplayName != "Work" {
		t.Errorf("unexpected rename payload: %+v", rename)
	}
}

func TestModel_RenameCancel(t *testing.T) {
	state := stateWithProviders(t)
	m := New(state)
	m.Init()

	tab, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m = tab.(*Model)

	tab, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = tab.(*Model)
	if m.mode != modeList {
		t.Error("esc should cancel rename mode")
	}
	if cmd != nil {
		t.Error("cancel should not emit a command")
	}
}

func TestModel_DeleteFlow(t *testing.T) {
	state := stateWithProviders(t)
	m := New(state)
	m.Init()

	tab, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	m = tab.(*Model)
	if m.mode != modeConfirmDelete {
		t.Fatal("pressing d should enter delete confirmation")
	}

	tab, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	m = tab.(*Model)
	if cmd == nil {
		t.Fatal("confirming a delete should emit a command")
	}

	msg := cmd()
	del, ok := msg.(app.DeleteProviderMsg)
	if !ok {
		t.Fatalf("expected DeleteProviderMsg, got %T", msg)
	}
	if del.ProviderID != 1 || del.Label != "Work" {
		t.Errorf("unexpected delete payload: %+v", del)
	}
}

func TestModel_DeleteDeclined(t *testing.T) {
	state := stateWithProviders(t)
	m := New(state)
	m.Init()

	tab, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	m = tab.(*Model)

	tab, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m = tab.(*Model)
	if m.mode != modeList {
		t.Error("declining should leave confirmation mode")
	}
	if cmd != nil {
		t.Error("declining should not emit a command")
	}
}

func TestFormatLastSeen(t *testing.T) {
	if got := formatLastSeen("not-a-time"); got != "not-a-time" {
		t.Errorf("unparseable timestamps should pass through, got %s", got)
	}
	now := time.Now().Format(time.RFC3339)
	want := time.Now().Format("2006-01-02 15:04")
	if got := formatLastSeen(now); got != want {
		t.Errorf("formatLastSeen = %s, want %s", got, want)
	}
}
