package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/aischool/aischool/internal/progression"
	"github.com/aischool/aischool/internal/quiz"
	"github.com/aischool/aischool/internal/router"
	"github.com/aischool/aischool/internal/tutor"
	"github.com/aischool/aischool/internal/ui/theme"
)

var assignmentsCmd = &cobra.Command{
	Use:   "assignments",
	Short: "List assignments with deadlines, rewards and status",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.current(cmd.Context(), router.Assignments)
		if err != nil {
			return err
		}

		t := theme.Table("ID", "Title", "Deadline", "Questions", "XP", "Status")
		for _, as := range a.catalog.Assignments() {
			status := theme.Hint.Render("to do")
			if p.HasCompleted(as.ID) {
				status = theme.Correct.Render("completed")
			}
			t.Row(as.ID, as.Title, as.Deadline, strconv.Itoa(as.Quiz.Len()), strconv.Itoa(as.XPReward), status)
		}
		lipgloss.Fprintln(cmd.OutOrStdout(), t.Render())
		fmt.Fprintln(cmd.OutOrStdout(), "Start a quiz with `aischool quiz ID`.")
		return nil
	},
}

var quizCmd = &cobra.Command{
	Use:   "quiz <assignment-id>",
	Short: "Take an assignment's quiz",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		noFeedback, _ := cmd.Flags().GetBool("no-feedback")

		a, err := openApp(cmd, !noFeedback)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		p, err := a.current(ctx, router.Assignments)
		if err != nil {
			return err
		}
		as, err := a.catalog.Assignment(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if p.HasCompleted(as.ID) {
			fmt.Fprintf(out, "You already completed %q. Rewards are only given once.\n", as.Title)
			return nil
		}

		lipgloss.Fprintln(out, theme.Title.Render(as.Title)+"  "+theme.Subtitle.Render(fmt.Sprintf("%d questions · %d XP", as.Quiz.Len(), as.XPReward)))
		at := quiz.NewAttempt(as)
		in := bufio.NewReader(cmd.InOrStdin())
		for !at.Done() {
			q, err := at.Current()
			if err != nil {
				return err
			}
			answer, err := askQuestion(in, out, at.Index()+1, at.Total(), q)
			if err != nil {
				return err
			}
			correct, err := at.Answer(answer)
			if err != nil {
				return err
			}

			var fb tutor.Reply
			switch {
			case a.tutor != nil:
				fb = a.tutor.QuizFeedback(ctx, q.Prompt, answer, q.CorrectAnswer)
			case correct:
				fb = tutor.Reply{Text: tutor.CorrectFallback}
			default:
				fb = tutor.Reply{Text: tutor.IncorrectFallback(q.CorrectAnswer)}
			}
			if correct {
				lipgloss.Fprintln(out, theme.Correct.Render("Correct! ")+fb.Text)
			} else {
				lipgloss.Fprintln(out, theme.Incorrect.Render("Not quite. ")+fb.Text)
			}
			if _, err := at.Next(); err != nil {
				return err
			}
		}

		res, err := a.learner.CompleteQuiz(ctx, p.ID, as, at.Score(), at.Total())
		if err != nil {
			return err
		}
		printOutcome(out, res.Outcome, a.levels)
		printAwarded(out, res.Awarded)
		return nil
	},
}

// askQuestion prints q and reads an answer until it names one of the
// options, either by number or by its text.
func askQuestion(in *bufio.Reader, out io.Writer, n, total int, q quiz.Question) (string, error) {
	fmt.Fprintln(out)
	lipgloss.Fprintln(out, theme.Body.Bold(true).Render(fmt.Sprintf("Question %d of %d: %s", n, total, q.Prompt)))
	for i, opt := range q.Options {
		fmt.Fprintf(out, "  %d) %s\n", i+1, opt)
	}
	for {
		fmt.Fprint(out, "> ")
		line, err := in.ReadString('\n')
		if errors.Is(err, io.EOF) && line == "" {
			return "", errors.New("quiz abandoned")
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		if answer, ok := matchOption(q, line); ok {
			return answer, nil
		}
		if errors.Is(err, io.EOF) {
			return "", errors.New("quiz abandoned")
		}
		fmt.Fprintf(out, "Enter a number between 1 and %d.\n", len(q.Options))
	}
}

// matchOption resolves input to an option. Numbers select by position;
// anything else must match an option's text exactly.
func matchOption(q quiz.Question, input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(q.Options) {
		return q.Options[n-1], true
	}
	if q.HasOption(input) {
		return input, true
	}
	return "", false
}

func printOutcome(out io.Writer, o progression.Outcome, levels progression.LevelTable) {
	fmt.Fprintln(out)
	if o.AlreadyCompleted || o.Skipped {
		fmt.Fprintln(out, "Nothing to record for this quiz.")
		return
	}
	lipgloss.Fprintln(out, theme.Title.Render(fmt.Sprintf("Score: %d / %d", o.Score, o.Total))+"  "+theme.Highlight.Render(fmt.Sprintf("+%d XP", o.XPGained)))
	switch {
	case o.HPDelta > 0:
		lipgloss.Fprintln(out, theme.Correct.Render(fmt.Sprintf("Perfect score! +%d HP", o.HPDelta)))
	case o.HPDelta < 0:
		lipgloss.Fprintln(out, theme.Incorrect.Render(fmt.Sprintf("%d HP", o.HPDelta)))
	}
	if o.LeveledUp() {
		level := levels.ForExperience(0)
		for _, l := range levels {
			if l.Number == o.LevelAfter {
				level = l
			}
		}
		lipgloss.Fprintln(out, theme.Highlight.Render(fmt.Sprintf("Level up! You are now level %d, %s.", level.Number, level.Name)))
	}
}

func init() {
	quizCmd.Flags().Bool("no-feedback", false, "Skip AI feedback on answers")
}
