// Package activity provides the daily usage trend tab.
package activity

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kissesu/claude-token-monitor/internal/app"
	"github.com/kissesu/claude-token-monitor/internal/ui/components"
)

// metric selects which series the trend chart plots.
type metric int

const (
	metricTokens metric = iota
	metricCost
	metricMessages
)

func (m metric) String() string {
	switch m {
	case metricTokens:
		return "Tokens"
	case metricCost:
		return "Cost (USD)"
	case metricMessages:
		return "Messages"
	default:
		return "Unknown"
	}
}

// keyMap defines the key bindings specific to the activity tab.
type keyMap struct {
	CycleMetric key.Binding
	Refresh     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		CycleMetric: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "cycle metric"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

// Model represents the activity tab state.
type Model struct {
	state   *app.State
	spinner components.LoadingSpinner
	keys    keyMap
	metric  metric
	width   int
	height  int
}

// New creates a new activity model.
func New(state *app.State) *Model {
	return &Model{
		state:   state,
		spinner: components.NewSpinner("activity"),
		keys:    defaultKeyMap(),
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.CycleMetric) {
			m.metric = (m.metric + 1) % 3
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// SetSize sets the available size for the tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.CycleMetric,
		m.keys.Refresh,
	}
}
