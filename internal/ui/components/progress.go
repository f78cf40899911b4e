package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/aischool/aischool/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar.
type ProgressBar struct {
	Label   string
	Percent float64
	// Caption replaces the percentage shown after the bar when set.
	Caption string
	Width   int
	Filled  lipgloss.Style
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent float64, width int) ProgressBar {
	return ProgressBar{
		Label:   label,
		Percent: percent,
		Width:   width,
		Filled:  lipgloss.NewStyle().Foreground(theme.Secondary),
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += theme.Label.Render(p.Label)
	}

	caption := p.Caption
	if caption == "" {
		caption = fmt.Sprintf("%d%%", int(clampPercent(p.Percent)*100))
	}
	caption = "  " + caption

	barWidth := p.Width - lipgloss.Width(result) - lipgloss.Width(caption)
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * clampPercent(p.Percent))
	empty := barWidth - filled

	result += p.Filled.Render(strings.Repeat("█", filled))
	result += theme.BarEmpty.Render(strings.Repeat("░", empty))
	result += theme.Subtitle.Render(caption)

	return result
}

func clampPercent(p float64) float64 {
	return min(1, max(0, p))
}
