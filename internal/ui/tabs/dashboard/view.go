package dashboard

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/kissesu/claude-token-monitor/internal/models"
	"github.com/kissesu/claude-token-monitor/internal/ui/components"
	"github.com/kissesu/claude-token-monitor/internal/ui/styles"
)

// View renders the dashboard component.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return m.renderLoading()
	}

	var sections []string

	sections = append(sections, m.renderTitle())
	sections = append(sections, m.renderTodayCard())
	sections = append(sections, m.renderLifetimeCard())
	sections = append(sections, m.renderModelBreakdown())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderLoading renders the loading state.
func (m *Model) renderLoading() string {
	return m.spinner.Centered(m.width, m.height)
}

// renderTitle renders the dashboard title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Claude Token Monitor")

	subtitle := styles.HelpStyle.Render("Local usage tracking across API credentials")
	if active := m.state.GetActiveProvider(); active != nil {
		marker := styles.ActiveProviderStyle.Render("● " + active.Label())
		subtitle = lipgloss.JoinHorizontal(lipgloss.Left,
			styles.HelpStyle.Render("Active provider: "), marker)
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 40)
}

// renderTodayCard renders the usage accumulated today.
func (m *Model) renderTodayCard() string {
	today := m.state.GetTodayStats()
	cardWidth := m.cardWidth()

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Today")))

	if today == nil {
		rows = append(rows, styles.HelpStyle.Render("  No usage recorded yet"))
		return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	rows = append(rows, m.renderStatRow("Input tokens", formatTokens(today.InputTokens)))
	rows = append(rows, m.renderStatRow("Output tokens", formatTokens(today.OutputTokens)))
	rows = append(rows, m.renderStatRow("Cache read", formatTokens(today.CacheReadTokens)))
	rows = append(rows, m.renderStatRow("Cache creation", formatTokens(today.CacheCreationTokens)))
	rows = append(rows, m.renderStatRow("Sessions", fmt.Sprintf("%d", today.SessionCount)))
	rows = append(rows, m.renderStatRow("Messages", fmt.Sprintf("%d", today.MessageCount)))
	rows = append(rows, m.renderCostRow("Cost", today.CostUSD))
	rows = append(rows, "")
	rows = append(rows, "  "+m.cacheBar.View(today.CacheHitRate, "Cache hits", cardWidth-8))

	return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderLifetimeCard renders totals across all recorded history.
func (m *Model) renderLifetimeCard() string {
	lifetime := m.state.GetLifetimeStats()
	cardWidth := m.cardWidth()

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Secondary).Render("◆")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Lifetime")))

	if lifetime == nil {
		rows = append(rows, styles.HelpStyle.Render("  No usage recorded yet"))
		return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	rows = append(rows, m.renderStatRow("Input tokens", formatTokens(lifetime.TotalInputTokens)))
	rows = append(rows, m.renderStatRow("Output tokens", formatTokens(lifetime.TotalOutputTokens)))
	rows = append(rows, m.renderStatRow("Cache read", formatTokens(lifetime.TotalCacheReadTokens)))
	rows = append(rows, m.renderStatRow("Cache creation", formatTokens(lifetime.TotalCacheCreationTokens)))
	rows = append(rows, m.renderStatRow("Sessions", fmt.Sprintf("%d", lifetime.TotalSessions)))
	rows = append(rows, m.renderStatRow("Messages", fmt.Sprintf("%d", lifetime.TotalMessages)))
	rows = append(rows, m.renderCostRow("Cost", lifetime.TotalCostUSD))
	rows = append(rows, "")
	rows = append(rows, "  "+components.SimpleRatioBar(lifetime.CacheHitRate, "Cache hits", cardWidth-8))
	rows = append(rows, "")
	rows = append(rows, styles.HelpStyle.Render(fmt.Sprintf("  Updated %s", lifetime.UpdatedAt)))

	return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderModelBreakdown renders per-model lifetime usage as a bar chart.
func (m *Model) renderModelBreakdown() string {
	lifetime := m.state.GetLifetimeStats()
	cardWidth := m.cardWidth()

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("▤")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Usage by Model")))

	if lifetime == nil || len(lifetime.Models) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No model data"))
		return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	values := make([]float64, 0, len(lifetime.Models))
	labels := make([]string, 0, len(lifetime.Models))
	for _, mu := range lifetime.Models {
		values = append(values, mu.CostUSD)
		labels = append(labels, truncateModel(mu.Model))
	}

	rows = append(rows, components.RenderBarChart(values, labels, cardWidth-4))
	rows = append(rows, "")
	rows = append(rows, styles.HelpStyle.Render("  Bar length is cost in USD"))

	for _, mu := range lifetime.Models {
		rows = append(rows, m.renderModelLine(mu))
	}

	return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderModelLine(mu models.ModelUsage) string {
	name := lipgloss.NewStyle().Bold(true).Render(truncateModel(mu.Model))
	detail := styles.HelpStyle.Render(fmt.Sprintf(
		"%s in / %s out, %d messages, %s",
		formatTokens(mu.InputTokens),
		formatTokens(mu.OutputTokens),
		mu.MessageCount,
		formatCost(mu.CostUSD),
	))
	return fmt.Sprintf("  %s  %s", name, detail)
}

func (m *Model) renderStatRow(label, value string) string {
	labelStr := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Width(18).
		Render(label)
	valueStr := lipgloss.NewStyle().Bold(true).Render(value)
	return fmt.Sprintf("  %s %s", labelStr, valueStr)
}

func (m *Model) renderCostRow(label string, cost float64) string {
	labelStr := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Width(18).
		Render(label)
	valueStr := styles.CostStyle.Render(formatCost(cost))
	return fmt.Sprintf("  %s %s", labelStr, valueStr)
}

func truncateModel(model string) string {
	if len(model) > 28 {
		return model[:25] + "..."
	}
	return model
}

func formatTokens(n int64) string {
	switch {
	case n >= 1_000_000_000:
		return fmt.Sprintf("%.2fB", float64(n)/1_000_000_000)
	case n >= 1_000_000:
		return fmt.Sprintf("%.2fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

func formatCost(cost float64) string {
	if cost >= 100 {
		return fmt.Sprintf("$%.0f", cost)
	}
	return fmt.Sprintf("$%.2f", cost)
}
