// Package providers provides the credential management tab.
package providers

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kissesu/claude-token-monitor/internal/app"
	"github.com/kissesu/claude-token-monitor/internal/models"
	"github.com/kissesu/claude-token-monitor/internal/ui/styles"
)

// mode controls which input surface owns key events.
type mode int

const (
	modeList mode = iota
	modeRename
	modeConfirmDelete
)

// keyMap defines the key bindings specific to the providers tab.
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Rename  key.Binding
	Delete  key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Rename: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "rename"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// Model represents the providers tab state.
type Model struct {
	state  *app.State
	table  table.Model
	input  textinput.Model
	keys   keyMap
	mode   mode
	width  int
	height int

	// provider targeted by the pending rename or delete
	targetID    int64
	targetLabel string
}

// New creates a new providers model.
func New(state *app.State) *Model {
	columns := []table.Column{
		{Title: "Provider", Width: 24},
		{Title: "Key", Width: 10},
		{Title: "Status", Width: 8},
		{Title: "Today In", Width: 10},
		{Title: "Today Out", Width: 10},
		{Title: "Cache", Width: 7},
		{Title: "Cost", Width: 9},
		{Title: "Last Seen", Width: 17},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	st := table.DefaultStyles()
	st.Header = st.Header.
		Bold(true).
		Foreground(styles.Primary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(styles.Subtle)
	st.Selected = st.Selected.
		Background(styles.BgAccent).
		Foreground(styles.TextPrimary).
		Bold(true)
	t.SetStyles(st)

	input := textinput.New()
	input.Placeholder = "New name"
	input.CharLimit = 64
	input.Width = 32

	return &Model{
		state: state,
		table: t,
		input: input,
		keys:  defaultKeyMap(),
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	m.refreshRows()
	return nil
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.ProvidersLoadedMsg:
		m.refreshRows()
		return m, nil

	case app.RenameProviderResultMsg, app.DeleteProviderResultMsg:
		m.refreshRows()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	switch m.mode {
	case modeRename:
		return m.handleRenameKey(msg)
	case modeConfirmDelete:
		return m.handleConfirmKey(msg)
	}

	providers := m.state.GetProviders()

	switch {
	case key.Matches(msg, m.keys.Rename):
		if p, ok := m.selectedProvider(providers); ok {
			m.mode = modeRename
			m.targetID = p.Provider.ID
			m.targetLabel = p.Provider.Label()
			m.input.SetValue(p.Provider.DisplayName)
			m.input.Focus()
			return m, textinput.Blink
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if p, ok := m.selectedProvider(providers); ok {
			m.mode = modeConfirmDelete
			m.targetID = p.Provider.ID
			m.targetLabel = p.Provider.Label()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	m.state.SetSelectedProviderIndex(m.table.Cursor())
	return m, cmd
}

func (m *Model) handleRenameKey(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		name := strings.TrimSpace(m.input.Value())
		id := m.targetID
		m.exitInputMode()
		if name == "" {
			return m, nil
		}
		return m, func() tea.Msg {
			return app.RenameProviderMsg{ProviderID: id, DisplayName: name}
		}

	case key.Matches(msg, m.keys.Cancel):
		m.exitInputMode()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		id := m.targetID
		label := m.targetLabel
		m.exitInputMode()
		return m, func() tea.Msg {
			return app.DeleteProviderMsg{ProviderID: id, Label: label}
		}
	case "n", "N", "esc":
		m.exitInputMode()
	}
	return m, nil
}

func (m *Model) exitInputMode() {
	m.mode = modeList
	m.targetID = 0
	m.targetLabel = ""
	m.input.Blur()
	m.input.SetValue("")
}

func (m *Model) selectedProvider(providers []models.ProviderStats) (models.ProviderStats, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(providers) {
		return models.ProviderStats{}, false
	}
	return providers[idx], true
}

func (m *Model) refreshRows() {
	providers := m.state.GetProviders()

	rows := make([]table.Row, 0, len(providers))
	for _, p := range providers {
		status := "idle"
		if p.Provider.IsActive {
			status = "active"
		}

		rows = append(rows, table.Row{
			p.Provider.Label(),
			p.Provider.APIKeyPrefix,
			status,
			formatTokens(p.TodayInputTokens),
			formatTokens(p.TodayOutputTokens),
			fmt.Sprintf("%.0f%%", p.CacheHitRate*100),
			fmt.Sprintf("$%.2f", p.TodayCostUSD),
			formatLastSeen(p.Provider.LastSeenAt),
		})
	}

	m.table.SetRows(rows)

	if cursor := m.table.Cursor(); cursor >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

// SetSize sets the available size for the tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(max(height-8, 3))
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.Up,
		m.keys.Down,
		m.keys.Rename,
		m.keys.Delete,
	}
}

func formatTokens(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

func formatLastSeen(lastSeen string) string {
	t, err := time.Parse(time.RFC3339, lastSeen)
	if err != nil {
		return lastSeen
	}
	return t.Local().Format("2006-01-02 15:04")
}
