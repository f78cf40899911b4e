package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aischool/aischool/internal/router"
)

var rootCmd = &cobra.Command{
	Use:   "aischool",
	Short: "AI School learning platform",
	Long:  "AI School: complete quiz assignments, earn XP, level up, collect badges and ask an AI tutor for help.",

	// Errors are printed once by main.
	SilenceUsage:  true,
	SilenceErrors: true,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()
		return runHome(cmd, a)
	},
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides AISCHOOL_DB env var)")
	pf.String("config", "", "Config file (default: ./aischool.yaml or ~/.config/aischool/aischool.yaml)")
	pf.String("env-file", ".env", "Dotenv file loaded before reading the environment")
	pf.String("log-level", "", "Log level (debug, info, warn, error)")
	pf.String("log-mode", "", "Log format: dev (console) or prod (JSON)")
	pf.String("llm-provider", "", "LLM provider: gemini, openai, anthropic, openrouter or mock")
	pf.String("timezone", "", "IANA time zone used for daily streaks")

	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(badgesCmd)
	rootCmd.AddCommand(assignmentsCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(assistantCmd)
	rootCmd.AddCommand(resourcesCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

func runHome(cmd *cobra.Command, a *app) error {
	out := cmd.OutOrStdout()
	if a.router.Active() == router.Login {
		fmt.Fprintln(out, "Welcome to AI School!")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  aischool user create --name NAME --email EMAIL   register")
		fmt.Fprintln(out, "  aischool user use EMAIL                          sign in")
		return nil
	}

	p, err := a.learner.Active(cmd.Context())
	if err != nil {
		return err
	}
	level := a.levels.ForExperience(p.XP)
	fmt.Fprintf(out, "Welcome back, %s! Level %d %s, %d XP, %d HP.\n", p.Name, level.Number, level.Name, p.XP, p.HP)
	fmt.Fprintln(out)
	for _, v := range []router.View{router.Profile, router.Assignments, router.Assistant, router.Resources} {
		fmt.Fprintf(out, "  aischool %-14s %s\n", v, v.Title())
	}
	return nil
}
