package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

func TestSpinnerLabel(t *testing.T) {
	s := NewSpinner("usage data")
	if got := s.Label(); got != "Loading usage data..." {
		t.Errorf("Label() = %q, want subject wrapped in loading text", got)
	}

	s.SetSubject("")
	if got := s.Label(); got != "Loading..." {
		t.Errorf("Label() with empty subject = %q", got)
	}
}

func TestSpinnerLifecycle(t *testing.T) {
	s := NewSpinner("stats")

	if s.Init() == nil {
		t.Error("Init should return a tick command")
	}
	if !strings.Contains(s.View(), "Loading stats...") {
		t.Errorf("View() = %q, missing label", s.View())
	}

	if _, cmd := s.Update(spinner.TickMsg{}); cmd == nil {
		t.Error("Update should schedule the next tick")
	}
}

func TestSpinnerCentered(t *testing.T) {
	s := NewSpinner("activity")
	view := s.Centered(40, 5)
	if view == "" {
		t.Error("Centered returned empty")
	}
	if !strings.Contains(view, "Loading activity...") {
		t.Errorf("Centered view missing label: %q", view)
	}
}

func TestRenderLineChart(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	s := RenderLineChart(data, 20, 5, "Test")
	if s == "" {
		t.Error("RenderLineChart returned empty")
	}
}

func TestRenderLineChartEmpty(t *testing.T) {
	s := RenderLineChart(nil, 20, 5, "Test")
	if !strings.Contains(s, "No data") {
		t.Error("RenderLineChart should render placeholder for empty data")
	}
}

func TestRenderDualLineChart(t *testing.T) {
	input := []float64{1, 2, 3}
	output := []float64{3, 2, 1}
	s := RenderDualLineChart(input, output, 20, 5, "Tokens")
	if s == "" {
		t.Error("RenderDualLineChart returned empty")
	}
}

func TestRenderBarChart(t *testing.T) {
	values := []float64{10, 20}
	labels := []string{"opus", "sonnet"}
	s := RenderBarChart(values, labels, 20)
	if s == "" {
		t.Error("RenderBarChart returned empty")
	}
}

func TestRenderSparkline(t *testing.T) {
	data := []float64{1, 2, 3}
	s := RenderSparkline(data, 10)
	if s == "" {
		t.Error("RenderSparkline returned empty")
	}
}

func TestRenderLegend(t *testing.T) {
	items := []LegendItem{
		{Label: "Input", Color: lipgloss.Color("#ffffff")},
	}
	s := RenderLegend(items)
	if s == "" {
		t.Error("RenderLegend returned empty")
	}
}

func TestNewRatioBar(t *testing.T) {
	bar := NewRatioBar()
	if bar.ratio != 0 {
		t.Errorf("ratio = %f, want 0.0", bar.ratio)
	}
}

func TestRatioBar_Setters(t *testing.T) {
	bar := NewRatioBar()
	bar.SetRatio(0.755)
	if bar.ratio != 0.755 {
		t.Errorf("ratio = %f, want 0.755", bar.ratio)
	}

	bar.SetRatio(1.5)
	if bar.ratio != 1 {
		t.Errorf("ratio = %f, want clamped to 1", bar.ratio)
	}

	bar.SetLabel("Cache")
	if bar.label != "Cache" {
		t.Errorf("label = %s, want Cache", bar.label)
	}

	bar.SetWidth(20)
}

func TestRatioBar_View(t *testing.T) {
	bar := NewRatioBar()
	view := bar.View(0.5, "Cache", 40)
	if view == "" {
		t.Error("View() returned empty string")
	}
}

func TestRatioBar_ViewCompact(t *testing.T) {
	bar := NewRatioBar()
	view := bar.ViewCompact(0.5, 20)
	if !strings.Contains(view, "50%") {
		t.Error("ViewCompact() should contain percentage")
	}
}

func TestRenderGradientBar(t *testing.T) {
	s := RenderGradientBar(0.5, 10)
	if len(s) == 0 {
		t.Error("RenderGradientBar returned empty")
	}
}

func TestSimpleRatioBar(t *testing.T) {
	s := SimpleRatioBar(0.5, "Cache", 40)
	if !strings.Contains(s, "50%") {
		t.Error("SimpleRatioBar should contain percentage")
	}
}

func TestNewRatioBarWithWidth(t *testing.T) {
	_ = NewRatioBarWithWidth(30)
}
