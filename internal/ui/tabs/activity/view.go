package activity

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/kissesu/claude-token-monitor/internal/models"
	"github.com/kissesu/claude-token-monitor/internal/ui/components"
	"github.com/kissesu/claude-token-monitor/internal/ui/styles"
)

// View renders the activity tab.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return m.spinner.Centered(m.width, m.height)
	}

	activity := m.state.GetActivity()

	var sections []string
	sections = append(sections, m.renderTitle(activity))
	sections = append(sections, m.renderTrendCard(activity))
	sections = append(sections, m.renderSummaryCard(activity))

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderTitle(activity []models.DailyActivity) string {
	title := styles.TitleStyle.Render("Activity")
	subtitle := styles.HelpStyle.Render(
		fmt.Sprintf("Daily usage, last 30 days · metric: %s (m to change)", m.metric),
	)

	if len(activity) == 0 {
		subtitle = styles.HelpStyle.Render("No recorded activity yet")
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderTrendCard(activity []models.DailyActivity) string {
	cardWidth := max(m.width-6, 40)

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Trend")))

	if len(activity) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No data available"))
		return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	chartWidth := max(cardWidth-14, 20)
	chartHeight := max(min(m.height-16, 12), 4)

	switch m.metric {
	case metricTokens:
		input := make([]float64, len(activity))
		output := make([]float64, len(activity))
		for i, day := range activity {
			input[i] = float64(day.InputTokens)
			output[i] = float64(day.OutputTokens)
		}
		rows = append(rows, components.RenderDualLineChart(input, output, chartWidth, chartHeight, "tokens per day"))
		rows = append(rows, "")
		rows = append(rows, "  "+components.RenderLegend([]components.LegendItem{
			{Label: "Input", Color: lipgloss.Color("#ff5f5f")},
			{Label: "Output", Color: lipgloss.Color("#5f87ff")},
		}))

	case metricCost:
		cost := make([]float64, len(activity))
		for i, day := range activity {
			cost[i] = day.CostUSD
		}
		rows = append(rows, components.RenderLineChart(cost, chartWidth, chartHeight, "cost per day (USD)"))

	case metricMessages:
		messages := make([]float64, len(activity))
		for i, day := range activity {
			messages[i] = float64(day.MessageCount)
		}
		rows = append(rows, components.RenderLineChart(messages, chartWidth, chartHeight, "messages per day"))
	}

	return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderSummaryCard(activity []models.DailyActivity) string {
	cardWidth := max(m.width-6, 40)

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Secondary).Render("◆")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Window Summary")))

	if len(activity) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No data available"))
		return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	var totalTokens, totalMessages, totalSessions int64
	var totalCost float64
	busiest := activity[0]

	for _, day := range activity {
		totalTokens += day.TotalTokens()
		totalMessages += day.MessageCount
		totalSessions += day.SessionCount
		totalCost += day.CostUSD
		if day.TotalTokens() > busiest.TotalTokens() {
			busiest = day
		}
	}

	tokens := make([]float64, len(activity))
	for i, day := range activity {
		tokens[i] = float64(day.TotalTokens())
	}

	rows = append(rows, m.renderStatRow("Active days", fmt.Sprintf("%d", len(activity))))
	rows = append(rows, m.renderStatRow("Total tokens", formatTokens(totalTokens)))
	rows = append(rows, m.renderStatRow("Sessions", fmt.Sprintf("%d", totalSessions)))
	rows = append(rows, m.renderStatRow("Messages", fmt.Sprintf("%d", totalMessages)))
	rows = append(rows, m.renderStatRow("Total cost", styles.CostStyle.Render(fmt.Sprintf("$%.2f", totalCost))))
	rows = append(rows, m.renderStatRow("Busiest day", fmt.Sprintf("%s (%s tokens)", busiest.Date, formatTokens(busiest.TotalTokens()))))
	rows = append(rows, "")
	rows = append(rows, "  "+styles.HelpStyle.Render("Tokens: ")+components.RenderSparkline(tokens, max(cardWidth-20, 10)))

	return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderStatRow(label, value string) string {
	labelStr := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Width(14).
		Render(label)
	return fmt.Sprintf("  %s %s", labelStr, value)
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
