// Package components provides reusable UI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kissesu/claude-token-monitor/internal/logger"
	"github.com/kissesu/claude-token-monitor/internal/ui/styles"
)

// RatioBar renders a gradient progress bar for a 0..1 ratio with a label.
type RatioBar struct {
	progress progress.Model
	label    string
	ratio    float64
}

// NewRatioBar creates a new ratio bar with gradient colors.
func NewRatioBar() RatioBar {
	p := progress.New(
		progress.WithScaledGradient("#ff6b6b", "#51cf66"),
		progress.WithWidth(30),
		progress.WithoutPercentage(),
	)

	return RatioBar{
		progress: p,
	}
}

// NewRatioBarWithWidth creates a ratio bar with a specific width.
func NewRatioBarWithWidth(width int) RatioBar {
	p := progress.New(
		progress.WithScaledGradient("#ff6b6b", "#51cf66"),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)

	return RatioBar{
		progress: p,
	}
}

// Init initializes the progress bar model.
func (r RatioBar) Init() tea.Cmd {
	return nil
}

// Update handles progress bar animation messages.
func (r RatioBar) Update(msg tea.Msg) (RatioBar, tea.Cmd) {
	model, cmd := r.progress.Update(msg)
	r.progress = model.(progress.Model)
	return r, cmd
}

// SetRatio sets the current ratio and starts the bar animation.
func (r *RatioBar) SetRatio(ratio float64) tea.Cmd {
	r.ratio = clampRatio(ratio)
	return r.progress.SetPercent(r.ratio)
}

// SetLabel sets the bar label.
func (r *RatioBar) SetLabel(label string) {
	r.label = label
}

// SetWidth sets the progress bar width.
func (r *RatioBar) SetWidth(width int) {
	r.progress.Width = width
}

// View renders the ratio bar with percentage and label.
func (r RatioBar) View(ratio float64, label string, width int) string {
	ratio = clampRatio(ratio)

	barWidth := width - 30 // Reserve space for label and percentage
	if barWidth < 10 {
		barWidth = 10
	}
	r.progress.Width = barWidth

	bar := r.progress.ViewAs(ratio)

	percentStyle := styles.GetCacheStyle(ratio)
	percentStr := percentStyle.Width(6).Align(lipgloss.Right).Render(fmt.Sprintf("%.0f%%", ratio*100))

	labelStr := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Width(15).
		Render(label)

	return lipgloss.JoinHorizontal(
		lipgloss.Center,
		labelStr,
		bar,
		" ",
		percentStr,
	)
}

// ViewCompact renders a compact version without label.
func (r RatioBar) ViewCompact(ratio float64, width int) string {
	ratio = clampRatio(ratio)

	barWidth := width - 8
	if barWidth < 5 {
		barWidth = 5
	}
	r.progress.Width = barWidth

	bar := r.progress.ViewAs(ratio)
	percentStyle := styles.GetCacheStyle(ratio)
	percentStr := percentStyle.Render(fmt.Sprintf("%.0f%%", ratio*100))

	return lipgloss.JoinHorizontal(lipgloss.Center, bar, " ", percentStr)
}

// RenderGradientBar renders just the bar part with gradient colors.
func RenderGradientBar(ratio float64, width int) string {
	if width < 1 {
		return ""
	}
	ratio = clampRatio(ratio)

	filled := int(float64(width) * ratio)
	if filled > width {
		filled = width
	}

	var barChars []string
	for i := 0; i < width; i++ {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			color := interpolateColor("#ff6b6b", "#51cf66", t)
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
			barChars = append(barChars, style.Render("█"))
		} else {
			style := lipgloss.NewStyle().Foreground(styles.Subtle)
			barChars = append(barChars, style.Render("░"))
		}
	}

	return strings.Join(barChars, "")
}

// SimpleRatioBar renders a simple ASCII progress bar with gradient colors.
func SimpleRatioBar(ratio float64, label string, width int) string {
	ratio = clampRatio(ratio)

	labelWidth := len(label) + 1
	percentWidth := 6
	barWidth := width - labelWidth - percentWidth - 4

	if barWidth < 5 {
		barWidth = 5
	}

	bar := RenderGradientBar(ratio, barWidth)

	labelStr := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Render(label)

	percentStr := styles.GetCacheStyle(ratio).
		Width(percentWidth).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.0f%%", ratio*100))

	return fmt.Sprintf("%s [%s] %s", labelStr, bar, percentStr)
}

func clampRatio(ratio float64) float64 {
	if ratio < 0 {
		return 0
	}
	if ratio > 1 {
		return 1
	}
	return ratio
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}
