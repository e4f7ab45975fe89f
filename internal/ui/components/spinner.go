package components

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kissesu/claude-token-monitor/internal/ui/styles"
)

// LoadingSpinner is the shared loading indicator for tab views. It names
// the resource being fetched and renders as "Loading <subject>...".
type LoadingSpinner struct {
	model      spinner.Model
	subject    string
	labelStyle lipgloss.Style
}

// NewSpinner creates a loading spinner for the given subject. An empty
// subject renders the bare "Loading..." label.
func NewSpinner(subject string) LoadingSpinner {
	s := spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Primary)),
	)

	return LoadingSpinner{
		model:      s,
		subject:    subject,
		labelStyle: lipgloss.NewStyle().Foreground(styles.TextSecondary),
	}
}

// Init starts the spinner animation.
func (l LoadingSpinner) Init() tea.Cmd {
	return l.model.Tick
}

// Update handles spinner tick messages.
func (l LoadingSpinner) Update(msg tea.Msg) (LoadingSpinner, tea.Cmd) {
	var cmd tea.Cmd
	l.model, cmd = l.model.Update(msg)
	return l, cmd
}

// View renders the spinner frame followed by the label.
func (l LoadingSpinner) View() string {
	return l.model.View() + " " + l.labelStyle.Render(l.Label())
}

// Label returns the rendered loading text for the current subject.
func (l LoadingSpinner) Label() string {
	if l.subject == "" {
		return "Loading..."
	}
	return "Loading " + l.subject + "..."
}

// SetSubject changes what the label says is loading.
func (l *LoadingSpinner) SetSubject(subject string) {
	l.subject = subject
}

// Centered renders the spinner centered in the given box.
func (l LoadingSpinner) Centered(width, height int) string {
	return styles.CenterBoth(l.View(), width, height)
}
