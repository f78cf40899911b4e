package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/aischool/aischool/internal/router"
	"github.com/aischool/aischool/internal/tutor"
	"github.com/aischool/aischool/internal/ui/theme"
)

var assistantCmd = &cobra.Command{
	Use:     "assistant",
	Aliases: []string{"ai"},
	Short:   "Ask the AI tutor questions and get recommendations",
}

var assistantAskCmd = &cobra.Command{
	Use:   "ask <question...>",
	Short: "Ask a single question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, err := subjectFlag(cmd)
		if err != nil {
			return err
		}
		a, err := openApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		p, err := a.current(ctx, router.Assistant)
		if err != nil {
			return err
		}
		res, err := a.learner.AskAssistant(ctx, p.ID, subject, nil, strings.Join(args, " "))
		if err != nil {
			return err
		}
		printReply(cmd.OutOrStdout(), res.Reply)
		printAwarded(cmd.OutOrStdout(), res.Awarded)
		return nil
	},
}

var assistantChatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start a conversation with the tutor",
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, err := subjectFlag(cmd)
		if err != nil {
			return err
		}
		a, err := openApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		p, err := a.current(ctx, router.Assistant)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		lipgloss.Fprintln(out, theme.Title.Render("AI Tutor · "+string(subject))+"  "+theme.Hint.Render("empty line or Ctrl-D to quit"))

		chat := a.tutor.NewChat(subject)
		in := bufio.NewReader(cmd.InOrStdin())
		for {
			fmt.Fprint(out, "you> ")
			line, err := in.ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			prompt := strings.TrimSpace(line)
			if prompt == "" {
				fmt.Fprintln(out)
				return nil
			}

			res, cerr := a.learner.Converse(ctx, p.ID, chat, prompt)
			if cerr != nil {
				return cerr
			}
			printReply(out, res.Reply)
			printAwarded(out, res.Awarded)

			if errors.Is(err, io.EOF) {
				return nil
			}
		}
	},
}

var assistantRecommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Get a personalized next step based on your progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, err := subjectFlag(cmd)
		if err != nil {
			return err
		}
		a, err := openApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		p, err := a.current(ctx, router.Assistant)
		if err != nil {
			return err
		}
		res, err := a.learner.Recommend(ctx, p.ID, subject)
		if err != nil {
			return err
		}
		printReply(cmd.OutOrStdout(), res.Reply)
		if !res.Reply.Fallback {
			lipgloss.Fprintln(cmd.OutOrStdout(), theme.Hint.Render("Saved to your profile."))
		}
		return nil
	},
}

func subjectFlag(cmd *cobra.Command) (tutor.Subject, error) {
	s, _ := cmd.Flags().GetString("subject")
	return tutor.ParseSubject(s)
}

func printReply(out io.Writer, r tutor.Reply) {
	label := theme.Highlight.Render("tutor> ")
	if r.Fallback {
		lipgloss.Fprintln(out, label+theme.Hint.Render(r.Text))
		return
	}
	lipgloss.Fprintln(out, label+r.Text)
}

func init() {
	names := make([]string, 0, len(tutor.Subjects()))
	for _, s := range tutor.Subjects() {
		names = append(names, string(s))
	}
	usage := "Subject: " + strings.Join(names, ", ")

	for _, c := range []*cobra.Command{assistantAskCmd, assistantChatCmd, assistantRecommendCmd} {
		c.Flags().StringP("subject", "s", string(tutor.ComputerScience), usage)
		assistantCmd.AddCommand(c)
	}
}
