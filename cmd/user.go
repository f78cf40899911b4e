package cmd

import (
	"errors"
	"fmt"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/aischool/aischool/internal/learner"
	"github.com/aischool/aischool/internal/progression"
	"github.com/aischool/aischool/internal/router"
	"github.com/aischool/aischool/internal/ui/theme"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Register, sign in and switch learners",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a new account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		role, _ := cmd.Flags().GetString("role")

		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.enter(router.Register); err != nil {
			return err
		}
		p, err := a.learner.Register(cmd.Context(), name, email, progression.Role(role))
		if errors.Is(err, learner.ErrEmailTaken) {
			return fmt.Errorf("%w: sign in with `aischool user use %s`", err, email)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s! You are signed in as a %s.\n", p.Name, p.Role)
		return nil
	},
}

var userUseCmd = &cobra.Command{
	Use:   "use <email>",
	Short: "Sign in as an existing account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.enter(router.Login); err != nil {
			return err
		}
		p, err := a.learner.SignIn(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s.\n", p.Name)
		return nil
	},
}

var userLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.learner.SignOut(cmd.Context()); err != nil {
			return err
		}
		a.router.SetSignedIn(false)
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

var userWhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.learner.Active(cmd.Context())
		if errors.Is(err, learner.ErrNoActiveUser) {
			return errSignedOut
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (%s)\n", p.Name, p.Email, p.Role)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		users, err := a.learner.Users(ctx)
		if err != nil {
			return err
		}
		if len(users) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No accounts yet. Create one with `aischool user create`.")
			return nil
		}

		var activeID string
		if p, err := a.learner.Active(ctx); err == nil {
			activeID = p.ID
		}

		t := theme.Table("", "Name", "Email", "Role", "Level", "XP")
		for _, u := range users {
			marker := ""
			if u.ID == activeID {
				marker = "*"
			}
			level := a.levels.ForExperience(u.XP)
			t.Row(marker, u.Name, u.Email, string(u.Role), fmt.Sprintf("%d %s", level.Number, level.Name), fmt.Sprint(u.XP))
		}
		lipgloss.Fprintln(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

func init() {
	f := userCreateCmd.Flags()
	f.String("name", "", "Display name (required)")
	f.String("email", "", "E-mail address used to sign in (required)")
	f.String("role", string(progression.RoleStudent), "Account role: student or teacher")
	_ = userCreateCmd.MarkFlagRequired("name")
	_ = userCreateCmd.MarkFlagRequired("email")

	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userUseCmd)
	userCmd.AddCommand(userLogoutCmd)
	userCmd.AddCommand(userWhoamiCmd)
	userCmd.AddCommand(userListCmd)
}
