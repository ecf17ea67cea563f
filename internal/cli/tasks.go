package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ixann-ui/ukk-todolist/internal/models"
	"github.com/ixann-ui/ukk-todolist/internal/reconcile"
	"github.com/ixann-ui/ukk-todolist/internal/service"
	"github.com/ixann-ui/ukk-todolist/internal/todo"
)

func newLsCmd(app *App) *cobra.Command {
	var listID string
	var showDone bool

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "Show tasks for today and upcoming",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.load(cmd.Context())
			if err != nil {
				return err
			}

			s := c.Snapshot()
			selected := s.Selected
			if listID != "" {
				l, err := resolveList(s, listID)
				if err != nil {
					return err
				}
				selected = l
			}

			out := cmd.OutOrStdout()
			printSection(out, "Today", reconcile.Today(s.Tasks, selected))
			printSection(out, "Upcoming", reconcile.Upcoming(s.Tasks, selected))
			if showDone {
				fmt.Fprintln(out, "Done")
				for _, g := range reconcile.GroupDoneByDate(reconcile.Done(s.Tasks, selected), models.Midnight(app.now())) {
					fmt.Fprintf(out, "  %s\n", g.Date)
					for _, t := range g.Tasks {
						fmt.Fprintf(out, "  %s\n", formatTask(t))
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&listID, "list", "", "Show only this list (id, name or all)")
	cmd.Flags().BoolVar(&showDone, "done", false, "Also show completed tasks")
	return cmd
}

func newAddCmd(app *App) *cobra.Command {
	var listID string

	cmd := &cobra.Command{
		Use:   "add <text...>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.load(cmd.Context())
			if err != nil {
				return err
			}
			if listID != "" {
				id, err := resolveList(c.Snapshot(), listID)
				if err != nil {
					return err
				}
				if err := c.SetAddTarget(id); err != nil {
					return err
				}
			}

			t, err := c.AddTask(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&listID, "list", "", "Add to this list instead of the selected one")
	return cmd
}

func newEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <text...>",
		Short: "Change a task's text",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.load(cmd.Context())
			if err != nil {
				return err
			}
			id, err := resolveTask(c.Snapshot(), args[0])
			if err != nil {
				return err
			}
			return c.EditTask(cmd.Context(), id, strings.Join(args[1:], " "))
		},
	}
}

func newDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task between open and done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.load(cmd.Context())
			if err != nil {
				return err
			}
			id, err := resolveTask(c.Snapshot(), args[0])
			if err != nil {
				return err
			}
			return c.ToggleDone(id)
		},
	}
}

func newScheduleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule <id> [YYYY-MM-DD]",
		Short: "Date a task, or flip it between today and upcoming",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.load(cmd.Context())
			if err != nil {
				return err
			}
			id, err := resolveTask(c.Snapshot(), args[0])
			if err != nil {
				return err
			}
			var date string
			if len(args) == 2 {
				date = args[1]
			}
			return c.SetSchedule(id, date)
		},
	}
}

func newRmCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.load(cmd.Context())
			if err != nil {
				return err
			}
			id, err := resolveTask(c.Snapshot(), args[0])
			if err != nil {
				return err
			}

			if err := c.RequestDelete(id); err != nil {
				return err
			}
			c.SetDeleteConfirmed(yes)
			deleted, err := c.ConfirmDelete(cmd.Context())
			if err != nil {
				c.CancelDelete()
				return err
			}
			return c.FinalizeDelete(deleted)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the deletion")
	return cmd
}

func printSection(w io.Writer, title string, tasks []models.Task) {
	fmt.Fprintln(w, title)
	if len(tasks) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for _, t := range tasks {
		fmt.Fprintln(w, formatTask(t))
	}
}

func formatTask(t models.Task) string {
	box := "[ ]"
	if t.Done {
		box = "[x]"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "  %s %s  %s", box, shortID(t.ID), t.Text)
	if t.Tag != "" {
		fmt.Fprintf(&b, "  #%s", t.Tag)
	}
	if t.Date != "" {
		fmt.Fprintf(&b, "  %s", t.Date)
	}
	if t.Unsynced {
		b.WriteString("  (not synced)")
	}
	return b.String()
}

// shortID trims local ids to a prefix that is still accepted as an argument
func shortID(id string) string {
	const keep = len("local-") + 8
	if models.IsLocalID(id) && len(id) > keep {
		return id[:keep]
	}
	return id
}

// resolveTask accepts a full id or a unique prefix of a local id
func resolveTask(s todo.Snapshot, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	var matches []string
	for _, t := range s.Tasks {
		if t.ID == arg {
			return t.ID, nil
		}
		if models.IsLocalID(t.ID) && strings.HasPrefix(t.ID, arg) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("task %q: %w", arg, todo.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", service.Validation(fmt.Sprintf("%q matches %d tasks", arg, len(matches)))
	}
}

// resolveList accepts all, an id, a unique local id prefix, or a list name
func resolveList(s todo.Snapshot, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" || strings.EqualFold(arg, models.AllListID) {
		return models.AllListID, nil
	}
	var matches []string
	for _, l := range s.Lists {
		if l.ID == arg {
			return l.ID, nil
		}
		if (models.IsLocalID(l.ID) && strings.HasPrefix(l.ID, arg)) || strings.EqualFold(l.Name, arg) {
			matches = append(matches, l.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("list %q: %w", arg, todo.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", service.Validation(fmt.Sprintf("%q matches %d lists", arg, len(matches)))
	}
}
