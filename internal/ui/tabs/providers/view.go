package providers

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/kissesu/claude-token-monitor/internal/ui/styles"
)

// View renders the providers tab.
func (m *Model) View() string {
	var sections []string

	sections = append(sections, m.renderTitle())
	sections = append(sections, m.table.View())

	switch m.mode {
	case modeRename:
		sections = append(sections, "", m.renderRenamePrompt())
	case modeConfirmDelete:
		sections = append(sections, "", m.renderDeletePrompt())
	default:
		sections = append(sections, "", m.renderFooter())
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Providers")

	count := m.state.GetProviderCount()
	subtitle := styles.HelpStyle.Render(fmt.Sprintf("%d credential(s) observed", count))
	if count == 0 {
		subtitle = styles.HelpStyle.Render("No credentials observed yet")
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderRenamePrompt() string {
	prompt := fmt.Sprintf("Rename %s:", m.targetLabel)
	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.FocusedStyle.Render(prompt),
		m.input.View(),
		styles.HelpStyle.Render("enter save · esc cancel"),
	)
	return styles.FocusedBorderStyle.Render(body)
}

func (m *Model) renderDeletePrompt() string {
	prompt := fmt.Sprintf("Delete %s and all of its recorded usage?", m.targetLabel)
	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.ErrorTextStyle.Render(prompt),
		styles.HelpStyle.Render("y confirm · n cancel"),
	)
	return styles.FocusedBorderStyle.
		BorderForeground(styles.Error).
		Render(body)
}

func (m *Model) renderFooter() string {
	return styles.HelpStyle.Render("n rename · d delete · ↑/↓ navigate")
}
