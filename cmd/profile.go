package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/aischool/aischool/internal/badges"
	"github.com/aischool/aischool/internal/router"
	"github.com/aischool/aischool/internal/ui/components"
	"github.com/aischool/aischool/internal/ui/theme"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show level, XP, HP, badges and recommendations",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.current(cmd.Context(), router.Profile)
		if err != nil {
			return err
		}
		card := components.ProfileCard{
			Progress:  p,
			Levels:    a.levels,
			Completed: a.catalog.Titles(p.CompletedAssignments),
			Width:     72,
		}
		lipgloss.Fprintln(cmd.OutOrStdout(), card.View())
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset XP, level, HP, badges and completed assignments",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		p, err := a.current(ctx, router.Profile)
		if err != nil {
			return err
		}
		if !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(),
			fmt.Sprintf("Reset all progress for %s? This cannot be undone. [y/N] ", p.Name)) {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}

		if _, err := a.learner.Reset(ctx, p.ID); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Progress reset. Back to level 1 with full health.")
		return nil
	},
}

var badgesCmd = &cobra.Command{
	Use:   "badges",
	Short: "List badges and how close you are to each",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		p, err := a.current(ctx, router.Profile)
		if err != nil {
			return err
		}
		h, err := a.learner.BadgeHistory(ctx, p.ID)
		if err != nil {
			return err
		}

		t := theme.Table("", "Badge", "Description", "Status")
		for _, d := range badges.All() {
			status := badgeProgress(d.Key, h)
			if p.HasBadge(string(d.Key)) {
				status = theme.Correct.Render("earned")
			}
			t.Row(d.Key.Icon(), d.Name, d.Description, status)
		}
		lipgloss.Fprintln(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

// badgeProgress describes how far the history is from earning key.
func badgeProgress(key badges.Key, h badges.History) string {
	switch key {
	case badges.AIExplorer:
		return fmt.Sprintf("%d / %d questions", min(h.AssistantQuestions, badges.AssistantQuestionsForExplorer), badges.AssistantQuestionsForExplorer)
	case badges.QuizMaster:
		return fmt.Sprintf("%d / %d quizzes", min(len(h.Completions), badges.QuizzesForMaster), badges.QuizzesForMaster)
	case badges.StreakMaster:
		streak := badges.LongestStreak(h.Completions, h.Location)
		return fmt.Sprintf("%d / %d days", min(streak, badges.StreakDays), badges.StreakDays)
	default:
		return "not yet"
	}
}

// confirm asks a yes/no question on in and reports whether the answer was yes.
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// printAwarded announces newly earned badges.
func printAwarded(out io.Writer, keys []badges.Key) {
	for _, k := range keys {
		d, _ := badges.Lookup(k)
		lipgloss.Fprintln(out, theme.Highlight.Render(fmt.Sprintf("%s New badge: %s!", k.Icon(), d.Name))+" "+theme.Hint.Render(d.Description))
	}
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
