// Package views holds the screens of the terminal UI.
package views

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ixann-ui/ukk-todolist/internal/models"
	"github.com/ixann-ui/ukk-todolist/internal/reconcile"
	"github.com/ixann-ui/ukk-todolist/internal/todo"
	"github.com/ixann-ui/ukk-todolist/internal/ui/styles"
)

// Coordinator is the state the views read and mutate.
//
// Calls that publish on the event bus run inside tea.Cmds, never in Update,
// so the bus can forward events to the program without blocking its loop.
type Coordinator interface {
	Snapshot() todo.Snapshot
	Today() []models.Task
	Upcoming() []models.Task
	Done() []reconcile.DoneGroup

	AddTask(ctx context.Context, text string) (models.Task, error)
	EditTask(ctx context.Context, id, text string) error
	ToggleDone(id string) error
	SetSchedule(id, date string) error
	RequestDelete(id string) error
	SetDeleteConfirmed(confirmed bool)
	CancelDelete()
	ConfirmDelete(ctx context.Context) (string, error)
	FinalizeDelete(id string) error

	AddList(ctx context.Context, name string) (models.List, error)
	DeleteList(ctx context.Context, id string, localOnly bool) error
	SelectList(id string) error
}

var _ Coordinator = (*todo.Coordinator)(nil)

// OpenTasks switches to the task view
type OpenTasks struct{}

// OpenLists switches to the list view
type OpenLists struct{}

// Refresh asks a view to re-read the coordinator's state
type Refresh struct{}

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// run wraps a coordinator call; its outcome is reported on the bus
func run(fn func() error) tea.Cmd {
	return func() tea.Msg {
		_ = fn()
		return nil
	}
}

// shortcut is one entry of a help line or help popup
type shortcut struct {
	key  string
	desc string
}

// helpLine renders shortcuts on one line; narrow screens get a "? help" hint
func helpLine(s *styles.Styles, width int, keys []shortcut) string {
	if w := styles.ContentWidth(width); w > 0 && w < 50 {
		return s.Help.Render(s.HelpKey.Render("?") + " help")
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = s.HelpKey.Render(k.key) + " " + k.desc
	}
	return s.Help.Render(strings.Join(parts, " • "))
}

func helpPopup(s *styles.Styles, width, height int, keys []shortcut) string {
	lines := []string{s.Title.Render("Keyboard Shortcuts"), ""}
	for _, k := range keys {
		lines = append(lines, s.HelpKey.Width(7).Render(k.key)+k.desc)
	}
	lines = append(lines, "", s.TitleMuted.Render("Press any key to close"))
	return centered(width, height, s.Popup.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
}

// centered places box in the middle of the content area
func centered(width, height int, box string) string {
	placed := lipgloss.Place(styles.ContentWidth(width), height, lipgloss.Center, lipgloss.Center, box)
	return styles.CenterView(placed, width, height)
}
