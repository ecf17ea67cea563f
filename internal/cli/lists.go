package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ixann-ui/ukk-todolist/internal/models"
)

func newListsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "lists",
		Short: "Show lists; the selected one is marked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.load(cmd.Context())
			if err != nil {
				return err
			}
			s := c.Snapshot()
			out := cmd.OutOrStdout()

			mark := func(id string) string {
				if id == s.Selected {
					return "*"
				}
				return " "
			}
			fmt.Fprintf(out, "%s %-16s %s\n", mark(models.AllListID), models.AllListID, models.AllListName)
			for _, l := range s.Lists {
				fmt.Fprintf(out, "%s %-16s %s\n", mark(l.ID), shortID(l.ID), l.Name)
			}
			return nil
		},
	}
}

func newAddListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "addlist <name...>",
		Short: "Create a list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.load(cmd.Context())
			if err != nil {
				return err
			}
			l, err := c.AddList(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), l.ID)
			return nil
		},
	}
}

func newRmListCmd(app *App) *cobra.Command {
	var localOnly bool

	cmd := &cobra.Command{
		Use:   "rmlist <id>",
		Short: "Delete a list; its tasks are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.load(cmd.Context())
			if err != nil {
				return err
			}
			id, err := resolveList(c.Snapshot(), args[0])
			if err != nil {
				return err
			}
			return c.DeleteList(cmd.Context(), id, localOnly)
		},
	}
	cmd.Flags().BoolVar(&localOnly, "local", false, "Remove from this device only")
	return cmd
}

func newSelectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "select <id|all>",
		Short: "Choose the list ls and add work on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.load(cmd.Context())
			if err != nil {
				return err
			}
			id, err := resolveList(c.Snapshot(), args[0])
			if err != nil {
				return err
			}
			return c.SelectList(id)
		},
	}
}
