package cmd

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/aischool/aischool/internal/catalog"
	"github.com/aischool/aischool/internal/router"
	"github.com/aischool/aischool/internal/ui/theme"
)

var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "Browse teaching materials",
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		category, _ := cmd.Flags().GetString("category")

		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.current(cmd.Context(), router.Resources); err != nil {
			return err
		}

		found := a.catalog.FilterResources(search, category)
		if len(found) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No resources found.")
			return nil
		}
		t := theme.Table("Title", "Category", "Type", "Description", "Link")
		for _, r := range found {
			t.Row(r.Title, string(r.Category), string(r.Type), r.Description, r.Link)
		}
		lipgloss.Fprintln(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

func init() {
	cats := []string{catalog.AllCategories}
	for _, c := range catalog.Categories() {
		cats = append(cats, string(c))
	}
	resourcesCmd.Flags().String("search", "", "Only show resources whose title contains this text")
	resourcesCmd.Flags().String("category", catalog.AllCategories, "Category: "+strings.Join(cats, ", "))
}
