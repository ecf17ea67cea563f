package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ixann-ui/ukk-todolist/internal/models"
	"github.com/ixann-ui/ukk-todolist/internal/reconcile"
	"github.com/ixann-ui/ukk-todolist/internal/todo"
	"github.com/ixann-ui/ukk-todolist/internal/ui/keys"
	"github.com/ixann-ui/ukk-todolist/internal/ui/styles"
)

// inputMode is what the bottom input line is being used for
type inputMode int

const (
	inputNone inputMode = iota
	inputAdd
	inputEdit
	inputSchedule
)

// deleteStartedMsg reports a confirmed delete whose delay is now running
type deleteStartedMsg struct{ id string }

// deleteDueMsg fires when a delete's delay has passed
type deleteDueMsg struct{ id string }

// TasksView shows the tasks of the selected list in Today, Upcoming and
// Done sections
type TasksView struct {
	coord       Coordinator
	ctx         context.Context
	styles      *styles.Styles
	keys        keys.KeyMap
	deleteDelay time.Duration

	width  int
	height int

	snapshot todo.Snapshot
	today    []models.Task
	upcoming []models.Task
	done     []reconcile.DoneGroup
	order    []models.Task // navigable tasks in display order

	cursor   int
	showDone bool

	mode   inputMode
	input  textinput.Model
	editID string

	confirmingDelete bool

	// Help popup (shown with ? at narrow widths)
	showHelpPopup bool
}

// NewTasksView creates the task view. deleteDelay is how long a deleted
// task stays on screen before it is removed.
func NewTasksView(ctx context.Context, coord Coordinator, deleteDelay time.Duration) *TasksView {
	input := textinput.New()
	input.CharLimit = 200

	return &TasksView{
		coord:       coord,
		ctx:         ctx,
		styles:      styles.NewStyles(),
		keys:        keys.DefaultKeyMap(),
		deleteDelay: deleteDelay,
		input:       input,
	}
}

// Init initializes the view
func (v *TasksView) Init() tea.Cmd {
	return func() tea.Msg { return Refresh{} }
}

func (v *TasksView) refresh() {
	v.snapshot = v.coord.Snapshot()
	v.today = v.coord.Today()
	v.upcoming = v.coord.Upcoming()
	v.done = v.coord.Done()

	v.order = v.order[:0]
	v.order = append(v.order, v.today...)
	v.order = append(v.order, v.upcoming...)
	if v.showDone {
		for _, g := range v.done {
			v.order = append(v.order, g.Tasks...)
		}
	}
	v.cursor = clamp(v.cursor, 0, max(0, len(v.order)-1))
	v.confirmingDelete = v.snapshot.PendingDelete != ""
}

func (v *TasksView) current() (models.Task, bool) {
	if v.cursor < 0 || v.cursor >= len(v.order) {
		return models.Task{}, false
	}
	return v.order[v.cursor], true
}

// Update handles messages
func (v *TasksView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.input.Width = clamp(styles.ContentWidth(v.width)-10, 20, 60)
		return v, nil

	case Refresh:
		v.refresh()
		return v, nil

	case deleteStartedMsg:
		v.refresh()
		id := msg.id
		return v, tea.Tick(v.deleteDelay, func(time.Time) tea.Msg { return deleteDueMsg{id: id} })

	case deleteDueMsg:
		id := msg.id
		return v, run(func() error { return v.coord.FinalizeDelete(id) })

	case tea.KeyMsg:
		// Handle help popup first - any key closes it
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		if v.mode != inputNone {
			return v.updateInput(msg)
		}

		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *TasksView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Lists), key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return OpenLists{} }

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.order)-1 {
			v.cursor++
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		return v, v.startInput(inputAdd, "", "What needs doing?")

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil

	case key.Matches(msg, v.keys.ShowCompleted):
		v.showDone = !v.showDone
		v.refresh()
		return v, nil
	}

	task, ok := v.current()
	if !ok || v.snapshot.Deleting[task.ID] {
		return v, nil
	}
	id := task.ID

	switch {
	case key.Matches(msg, v.keys.Edit):
		v.editID = id
		return v, v.startInput(inputEdit, task.Text, "Task text")

	case key.Matches(msg, v.keys.Schedule):
		v.editID = id
		return v, v.startInput(inputSchedule, task.Date, "YYYY-MM-DD, empty flips today/upcoming")

	case key.Matches(msg, v.keys.Toggle):
		return v, run(func() error { return v.coord.ToggleDone(id) })

	case key.Matches(msg, v.keys.Delete):
		if err := v.coord.RequestDelete(id); err == nil {
			v.refresh()
		}
		return v, nil
	}

	return v, nil
}

func (v *TasksView) startInput(mode inputMode, value, placeholder string) tea.Cmd {
	v.mode = mode
	v.input.Reset()
	v.input.SetValue(value)
	v.input.Placeholder = placeholder
	v.input.Focus()
	return textinput.Blink
}

func (v *TasksView) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.mode = inputNone
		v.input.Blur()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		value := strings.TrimSpace(v.input.Value())
		mode, id := v.mode, v.editID
		v.mode = inputNone
		v.input.Blur()

		switch mode {
		case inputAdd:
			if value == "" {
				return v, nil
			}
			return v, run(func() error {
				_, err := v.coord.AddTask(v.ctx, value)
				return err
			})
		case inputEdit:
			return v, run(func() error { return v.coord.EditTask(v.ctx, id, value) })
		case inputSchedule:
			return v, run(func() error { return v.coord.SetSchedule(id, value) })
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *TasksView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Confirm):
		v.coord.SetDeleteConfirmed(!v.snapshot.DeleteConfirmed)
		v.refresh()
		return v, nil

	case key.Matches(msg, v.keys.Yes):
		return v, func() tea.Msg {
			id, err := v.coord.ConfirmDelete(v.ctx)
			if err != nil {
				return Refresh{}
			}
			return deleteStartedMsg{id: id}
		}

	case key.Matches(msg, v.keys.No):
		v.coord.CancelDelete()
		v.refresh()
		return v, nil
	}
	return v, nil
}

// View renders the view
func (v *TasksView) View() string {
	if v.showHelpPopup {
		return helpPopup(v.styles, v.width, v.height, v.shortcuts())
	}

	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	var b strings.Builder
	b.WriteString(v.renderHeader())
	b.WriteString("\n")
	b.WriteString(v.renderTaskList())
	b.WriteString("\n")
	if v.mode != inputNone {
		b.WriteString(v.renderInput())
		b.WriteString("\n")
	}
	b.WriteString(helpLine(v.styles, v.width, v.shortcuts()))

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *TasksView) listName() string {
	if v.snapshot.Selected == "" || v.snapshot.Selected == models.AllListID {
		return models.AllListName
	}
	for _, l := range v.snapshot.Lists {
		if l.ID == v.snapshot.Selected {
			return l.Name
		}
	}
	return models.AllListName
}

func (v *TasksView) renderHeader() string {
	s := v.styles

	who := "not signed in, tasks stay on this device"
	if u := v.snapshot.User; u != nil {
		who = "signed in as " + u.Email
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(v.listName()),
		s.TitleMuted.Render(who),
	)
}

// renderTaskList renders the sections, scrolled so the cursor is visible
func (v *TasksView) renderTaskList() string {
	s := v.styles

	var lines []string
	cursorLine := 0
	idx := 0
	addTasks := func(tasks []models.Task) {
		for _, t := range tasks {
			if idx == v.cursor {
				cursorLine = len(lines)
			}
			lines = append(lines, v.renderTaskItem(t, idx == v.cursor))
			idx++
		}
	}

	lines = append(lines, s.Section.Render(fmt.Sprintf("Today (%d)", len(v.today))))
	if len(v.today) == 0 {
		lines = append(lines, s.TitleMuted.Render("  Nothing for today. Press 'n' to add a task."))
	}
	addTasks(v.today)

	lines = append(lines, s.Section.Render(fmt.Sprintf("Upcoming (%d)", len(v.upcoming))))
	addTasks(v.upcoming)

	if v.showDone {
		lines = append(lines, s.Section.Render("Done"))
		for _, g := range v.done {
			lines = append(lines, s.SectionDate.Render(g.Date))
			addTasks(g.Tasks)
		}
	}

	visible := max(v.height-10, 3)
	start := 0
	if cursorLine >= visible {
		start = cursorLine - visible + 1
	}
	end := min(start+visible, len(lines))
	return lipgloss.JoinVertical(lipgloss.Left, lines[start:end]...)
}

func (v *TasksView) renderTaskItem(task models.Task, selected bool) string {
	s := v.styles
	width := max(styles.ContentWidth(v.width)-4, 20)

	box := "[ ]"
	if task.Done {
		box = "[x]"
	}

	text := task.Text
	switch {
	case v.snapshot.Deleting[task.ID]:
		text = s.TaskDeleting.Render(text + " (deleting)")
	case task.Done:
		text = s.TaskDone.Render(text)
	}

	parts := []string{s.Checkbox.Render(box), text}
	if task.Tag != "" {
		parts = append(parts, s.Tag.Render("#"+task.Tag))
	}
	if task.Date != "" {
		parts = append(parts, s.TitleMuted.Render(task.Date))
	}
	if task.Unsynced {
		parts = append(parts, s.Unsynced.Render("↻ not synced"))
	}
	line := strings.Join(parts, " ")

	if selected {
		return s.ListSelected.Width(width).Render(line)
	}
	return s.ListItem.Width(width).Render(line)
}

func (v *TasksView) renderInput() string {
	s := v.styles
	label := map[inputMode]string{
		inputAdd:      "New task",
		inputEdit:     "Edit task",
		inputSchedule: "Schedule",
	}[v.mode]

	inputWidth := clamp(styles.ContentWidth(v.width)-6, 20, 60)
	return lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(label),
		s.InputFocused.Width(inputWidth).Render(v.input.View()),
		s.TitleMuted.Render("Enter: save • Esc: cancel"),
	)
}

func (v *TasksView) shortcuts() []shortcut {
	done := "show done"
	if v.showDone {
		done = "hide done"
	}
	return []shortcut{
		{"n", "new"},
		{"e", "edit"},
		{"space", "done"},
		{"s", "schedule"},
		{"d", "delete"},
		{"c", done},
		{"l", "lists"},
		{"q", "quit"},
	}
}

func (v *TasksView) renderDeleteConfirm() string {
	s := v.styles
	name := ""
	for _, t := range v.snapshot.Tasks {
		if t.ID == v.snapshot.PendingDelete {
			name = t.Text
			break
		}
	}

	box := "[ ]"
	yes := s.Button.Render(" Y - Delete ")
	if v.snapshot.DeleteConfirmed {
		box = "[x]"
		yes = s.ButtonPrimary.Render(" Y - Delete ")
	}

	return centered(v.width, v.height, s.Popup.Render(lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Task?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("%q", name)),
		"",
		s.Checkbox.Render(box)+" I understand this cannot be undone (x)",
		"",
		lipgloss.JoinHorizontal(lipgloss.Center, yes, "  ", s.Button.Render(" N - Cancel ")),
	)))
}
