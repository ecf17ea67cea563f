package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ixann-ui/ukk-todolist/internal/models"
	"github.com/ixann-ui/ukk-todolist/internal/reconcile"
	"github.com/ixann-ui/ukk-todolist/internal/ui/keys"
	"github.com/ixann-ui/ukk-todolist/internal/ui/styles"
)

type listItem struct {
	list     models.List
	open     int
	selected bool
}

func (i listItem) Title() string { return i.list.Name }
func (i listItem) Description() string {
	if i.open == 1 {
		return "1 open task"
	}
	return fmt.Sprintf("%d open tasks", i.open)
}
func (i listItem) FilterValue() string { return i.list.Name }

type listDelegate struct {
	styles *styles.Styles
	width  int
}

func (d listDelegate) Height() int                               { return 2 }
func (d listDelegate) Spacing() int                              { return 1 }
func (d listDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d listDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	l, ok := item.(listItem)
	if !ok {
		return
	}

	width := max(d.width-4, 20)

	var titleStyle, descStyle lipgloss.Style
	if index == m.Index() {
		titleStyle = d.styles.ListSelected.Width(width)
		descStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	} else {
		titleStyle = d.styles.ListItem.Width(width)
		descStyle = d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	title := l.Title()
	if l.selected {
		title = "● " + title
	}
	fmt.Fprintf(w, "%s\n%s", titleStyle.Render(title), descStyle.Render(l.Description()))
}

// ListsView shows the lists and the all-tasks view
type ListsView struct {
	coord    Coordinator
	ctx      context.Context
	list     list.Model
	delegate *listDelegate
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int
	loaded   bool

	creating bool
	newName  textinput.Model

	confirmingDelete bool
	deleteTargetID   string
	deleteTargetName string

	// Help popup (shown with ? at narrow widths)
	showHelpPopup bool
}

// NewListsView creates the list view
func NewListsView(ctx context.Context, coord Coordinator) *ListsView {
	s := styles.NewStyles()

	newName := textinput.New()
	newName.Placeholder = "List name"
	newName.CharLimit = 100

	delegate := &listDelegate{styles: s, width: styles.MaxWidth}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Lists"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	return &ListsView{
		coord:    coord,
		ctx:      ctx,
		list:     l,
		delegate: delegate,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
		newName:  newName,
	}
}

// Init initializes the view
func (v *ListsView) Init() tea.Cmd {
	return func() tea.Msg { return Refresh{} }
}

func (v *ListsView) refresh() {
	s := v.coord.Snapshot()

	all := append([]models.List{{ID: models.AllListID, Name: models.AllListName}}, s.Lists...)
	items := make([]list.Item, len(all))
	cursor := 0
	for i, l := range all {
		open := 0
		for _, t := range s.Tasks {
			if !t.Done && reconcile.InList(t, l.ID) {
				open++
			}
		}
		items[i] = listItem{list: l, open: open, selected: l.ID == s.Selected}
		if l.ID == s.Selected {
			cursor = i
		}
	}
	v.list.SetItems(items)
	if !v.loaded {
		v.list.Select(cursor)
	}
	v.loaded = true
}

// Update handles messages
func (v *ListsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		// Use content width (capped at MaxWidth) for internal layout
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-6)
		return v, nil

	case Refresh:
		v.refresh()
		return v, nil

	case tea.KeyMsg:
		// Handle help popup first - any key closes it
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		if v.creating {
			return v.updateCreating(msg)
		}

		// While filtering, keys belong to the filter input
		if v.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Lists):
			return v, func() tea.Msg { return OpenTasks{} }
		case key.Matches(msg, v.keys.New):
			v.creating = true
			v.newName.Reset()
			v.newName.Focus()
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Help):
			v.showHelpPopup = true
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(listItem); ok {
				id := item.list.ID
				return v, func() tea.Msg {
					if err := v.coord.SelectList(id); err != nil {
						return nil
					}
					return OpenTasks{}
				}
			}
		case key.Matches(msg, v.keys.Delete):
			if item, ok := v.list.SelectedItem().(listItem); ok && item.list.ID != models.AllListID {
				v.confirmingDelete = true
				v.deleteTargetID = item.list.ID
				v.deleteTargetName = item.list.Name
				return v, nil
			}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *ListsView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Yes):
		v.confirmingDelete = false
		id := v.deleteTargetID
		return v, run(func() error { return v.coord.DeleteList(v.ctx, id, false) })
	case key.Matches(msg, v.keys.No):
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *ListsView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		name := strings.TrimSpace(v.newName.Value())
		if name == "" {
			return v, nil
		}
		v.creating = false
		return v, run(func() error {
			_, err := v.coord.AddList(v.ctx, name)
			return err
		})
	}

	var cmd tea.Cmd
	v.newName, cmd = v.newName.Update(msg)
	return v, cmd
}

// View renders the view
func (v *ListsView) View() string {
	if v.showHelpPopup {
		return helpPopup(v.styles, v.width, v.height, listShortcuts)
	}

	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	if v.creating {
		return v.renderCreateForm()
	}

	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}

	content := v.list.View() + "\n" + helpLine(v.styles, v.width, listShortcuts)
	return styles.CenterView(content, v.width, v.height)
}

var listShortcuts = []shortcut{
	{"↵", "open"},
	{"n", "new"},
	{"d", "delete"},
	{"/", "filter"},
	{"esc", "back to tasks"},
	{"q", "quit"},
}

func (v *ListsView) renderCreateForm() string {
	s := v.styles
	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("New List"),
		"",
		"Name:",
		s.InputFocused.Width(clamp(styles.ContentWidth(v.width)-6, 20, 50)).Render(v.newName.View()),
		"",
		s.TitleMuted.Render("Enter: create • Esc: cancel"),
	)
	return centered(v.width, v.height, form)
}

func (v *ListsView) renderDeleteConfirm() string {
	s := v.styles
	return centered(v.width, v.height, lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete List?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("%q will be removed. Its tasks are kept.", v.deleteTargetName)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	))
}
