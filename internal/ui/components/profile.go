package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/aischool/aischool/internal/badges"
	"github.com/aischool/aischool/internal/progression"
	"github.com/aischool/aischool/internal/ui/theme"
)

// ProfileCard renders a learner's progress.
type ProfileCard struct {
	Progress progression.Progress
	Levels   progression.LevelTable
	// Completed holds display titles for the completed assignments.
	Completed []string
	Width     int
}

// View renders the card.
func (c ProfileCard) View() string {
	p := c.Progress
	width := c.Width
	if width <= 0 {
		width = 60
	}
	inner := width - 6

	level := c.Levels.ForExperience(p.XP)

	var lines []string
	name := p.Name
	if name == "" {
		name = p.ID
	}
	lines = append(lines,
		theme.Title.Render(name)+"  "+theme.Subtitle.Render(string(p.Role)),
		theme.Highlight.Render(fmt.Sprintf("Level %d · %s", level.Number, level.Name)),
		"",
	)

	xp := NewProgressBar("XP", c.Levels.Progress(p.XP), inner)
	xp.Filled = theme.XPFilled
	if next, ok := c.Levels.Next(level.Number); ok {
		xp.Caption = fmt.Sprintf("%d / %d XP", p.XP, next.MinXP)
	} else {
		xp.Caption = fmt.Sprintf("%d XP (max level)", p.XP)
	}
	lines = append(lines, xp.View())

	hp := NewProgressBar("HP", float64(p.HP)/float64(progression.MaxHP), inner)
	hp.Filled = theme.HPFilled
	hp.Caption = fmt.Sprintf("%d / %d", p.HP, progression.MaxHP)
	lines = append(lines, hp.View(), "")

	lines = append(lines, theme.Label.Render("Badges")+badgeList(p.Badges))
	lines = append(lines, theme.Label.Render("Completed")+textList(c.Completed, "No assignments yet"))

	lines = append(lines, "", theme.Body.Bold(true).Render("AI Recommendations"))
	if len(p.Recommendations) == 0 {
		lines = append(lines, theme.Hint.Render("Ask the AI assistant for recommendations!"))
	}
	for _, r := range p.Recommendations {
		lines = append(lines, theme.Body.Width(inner).Render("• "+r))
	}

	return theme.Card.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func badgeList(keys []string) string {
	if len(keys) == 0 {
		return theme.Hint.Render("None yet")
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		key := badges.Key(k)
		parts[i] = key.Icon() + " " + key.DisplayName()
	}
	return theme.Body.Render(strings.Join(parts, "  "))
}

func textList(items []string, empty string) string {
	if len(items) == 0 {
		return theme.Hint.Render(empty)
	}
	return theme.Body.Render(strings.Join(items, ", "))
}
