package app

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kissesu/claude-token-monitor/internal/models"
)

func TestTabIDString(t *testing.T) {
	tests := []struct {
		tab  TabID
		want string
	}{
		{TabDashboard, "Dashboard"},
		{TabProviders, "Providers"},
		{TabActivity, "Activity"},
		{TabID(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.tab.String(); got != tt.want {
			t.Errorf("TabID(%d).String() = %s, want %s", tt.tab, got, tt.want)
		}
	}
}

// stubTab is a minimal Tab implementation for model tests.
type stubTab struct {
	inited   bool
	lastMsg  tea.Msg
	width    int
	height   int
	viewText string
}

func (s *stubTab) Init() tea.Cmd {
	s.inited = true
	return nil
}

func (s *stubTab) Update(msg tea.Msg) (Tab, tea.Cmd) {
	s.lastMsg = msg
	return s, nil
}

func (s *stubTab) View() string { return s.viewText }

func (s *stubTab) SetSize(width, height int) {
	s.width = width
	s.height = height
}

func (s *stubTab) ShortHelp() []key.Binding { return nil }

func newTestModel() (*Model, []*stubTab) {
	m := NewModel(nil)
	tabs := []*stubTab{
		{viewText: "dash"},
		{viewText: "prov"},
		{viewText: "act"},
	}
	m.SetTabs([]Tab{tabs[0], tabs[1], tabs[2]})
	return m, tabs
}

func TestNewModel(t *testing.T) {
	m := NewModel(nil)
	if m == nil {
		t.Fatal("NewModel returned nil")
	}
	if m.GetActiveTab() != TabDashboard {
		t.Error("initial tab should be the dashboard")
	}
	if m.GetState() == nil {
		t.Error("state should be initialized")
	}
	if m.IsReady() {
		t.Error("model should not be ready before a window size arrives")
	}
}

func TestModel_Init(t *testing.T) {
	m, tabs := newTestModel()
	if m.Init() == nil {
		t.Error("Init should return a command batch")
	}
	for i, tab := range tabs {
		if !tab.inited {
			t.Errorf("tab %d was not initialized", i)
		}
	}
}

func TestModel_WindowSize(t *testing.T) {
	m, tabs := newTestModel()

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	if !m.IsReady() {
		t.Error("window size should mark the model ready")
	}
	if tabs[0].width != 100 {
		t.Errorf("tab width = %d, want 100", tabs[0].width)
	}
	if tabs[0].height != 35 {
		t.Errorf("tab height = %d, want 35 (5 reserved rows)", tabs[0].height)
	}
}

func TestModel_TabSwitching(t *testing.T) {
	m, _ := newTestModel()

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	if m.GetActiveTab() != TabProviders {
		t.Errorf("active tab = %v, want providers", m.GetActiveTab())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.GetActiveTab() != TabActivity {
		t.Errorf("active tab = %v, want activity after tab key", m.GetActiveTab())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.GetActiveTab() != TabDashboard {
		t.Error("tab key should wrap around")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.GetActiveTab() != TabActivity {
		t.Error("shift+tab should cycle backwards")
	}
}

func TestModel_QuitKey(t *testing.T) {
	m, _ := newTestModel()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q should produce a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestModel_HelpToggle(t *testing.T) {
	m, _ := newTestModel()

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	if !m.showHelp {
		t.Error("? should open help")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.showHelp {
		t.Error("esc should close help")
	}
}

func TestModel_StatsLoaded(t *testing.T) {
	m, _ := newTestModel()

	lifetime := &models.LifetimeStats{TotalInputTokens: 42}
	today := &models.TodayStats{InputTokens: 7}
	m.Update(StatsLoadedMsg{Lifetime: lifetime, Today: today})

	if m.state.IsInitialLoading() {
		t.Error("stats arrival should clear initial loading")
	}
	if got := m.state.GetLifetimeStats(); got == nil || got.TotalInputTokens != 42 {
		t.Error("lifetime stats not applied")
	}
}

func TestModel_StatsLoadedError(t *testing.T) {
	m, _ := newTestModel()

	_, cmd := m.Update(StatsLoadedMsg{Error: errors.New("boom")})
	if cmd == nil {
		t.Fatal("a load error should produce a notification command")
	}
}

func TestModel_ProvidersLoaded(t *testing.T) {
	m, _ := newTestModel()

	m.Update(ProvidersLoadedMsg{Providers: []models.ProviderStats{
		{Provider: models.Provider{ID: 1, DisplayName: "Work", IsActive: true}},
	}})

	if m.state.GetProviderCount() != 1 {
		t.Error("providers not applied to state")
	}
	if m.state.GetActiveProvider() == nil {
		t.Error("active provider should be resolved")
	}
}

func TestModel_ActivityLoaded(t *testing.T) {
	m, _ := newTestModel()

	m.Update(ActivityLoadedMsg{Days: []models.DailyActivity{{Date: "2026-08-29"}}})
	if len(m.state.GetActivity()) != 1 {
		t.Error("activity not applied to state")
	}
}

func TestModel_Notifications(t *testing.T) {
	m, _ := newTestModel()

	m.Update(AddNotificationMsg{Type: NotificationSuccess, Message: "saved", Duration: time.Minute})
	notifications := m.state.GetNotifications()
	if len(notifications) == 0 {
		t.Fatal("notification not added")
	}

	m.Update(RemoveNotificationMsg{ID: notifications[0].ID})
	// The loading placeholder may remain; the toast itself must be gone.
	for _, n := range m.state.GetNotifications() {
		if n.Message == "saved" {
			t.Error("notification not removed")
		}
	}
}

func TestModel_View(t *testing.T) {
	m, _ := newTestModel()

	// Before the first window size only the loading placeholder renders
	if m.View() == "" {
		t.Error("View should never be empty")
	}

	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m.state.SetLoading("initial", false)
	m.state.ClearLoadingNotification()

	view := m.View()
	if !strings.Contains(view, "Dashboard") {
		t.Error("View should render the tab bar")
	}
	if !strings.Contains(view, "dash") {
		t.Error("View should render the active tab content")
	}
}

func TestModel_ViewHelpOverlay(t *testing.T) {
	m, _ := newTestModel()
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m.state.SetLoading("initial", false)
	m.state.ClearLoadingNotification()

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	view := m.View()
	if !strings.Contains(view, "Keyboard Shortcuts") {
		t.Error("help overlay should render shortcut list")
	}
}

func TestModel_TabSwitchMsg(t *testing.T) {
	m, _ := newTestModel()

	m.Update(TabSwitchMsg{Tab: TabActivity})
	if m.GetActiveTab() != TabActivity {
		t.Error("TabSwitchMsg should change the active tab")
	}
}
