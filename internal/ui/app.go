// Package ui is the interactive terminal front end.
package ui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/ixann-ui/ukk-todolist/internal/events"
	"github.com/ixann-ui/ukk-todolist/internal/todo"
	"github.com/ixann-ui/ukk-todolist/internal/ui/styles"
	"github.com/ixann-ui/ukk-todolist/internal/ui/views"
)

// ToastDuration is how long a notification stays on screen
const ToastDuration = 1500 * time.Millisecond

// View is the currently active screen
type View int

const (
	ViewTasks View = iota
	ViewLists
)

// Options configures the UI
type Options struct {
	DeleteDelay time.Duration
	Logger      *log.Logger
}

// busMsg carries an event from the coordinator's bus into the program
type busMsg struct {
	event events.Event
}

type toastExpiredMsg struct {
	seq int
}

type toast struct {
	seq          int
	notification events.Notification
}

// App is the root model; it switches between the task and list views and
// shows notifications as a toast line.
type App struct {
	coord       *todo.Coordinator
	ctx         context.Context
	styles      *styles.Styles
	currentView View
	tasks       *views.TasksView
	lists       *views.ListsView
	width       int
	height      int

	toast    *toast
	toastSeq int
}

// NewApp creates the application model
func NewApp(ctx context.Context, coord *todo.Coordinator, opts Options) *App {
	return &App{
		coord:       coord,
		ctx:         ctx,
		styles:      styles.NewStyles(),
		currentView: ViewTasks,
		tasks:       views.NewTasksView(ctx, coord, opts.DeleteDelay),
		lists:       views.NewListsView(ctx, coord),
	}
}

// Init loads the session's state
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.tasks.Init(),
		a.lists.Init(),
		func() tea.Msg {
			if err := a.coord.Load(a.ctx); err != nil {
				return nil
			}
			return views.Refresh{}
		},
	)
}

// resize re-sends the last window size to the newly active view
func (a *App) resize() tea.Cmd {
	return func() tea.Msg {
		return tea.WindowSizeMsg{Width: a.width, Height: a.height}
	}
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Both views keep their size; only one is visible at a time
		a.tasks.Update(msg)
		a.lists.Update(msg)
		return a, nil

	case busMsg:
		return a, a.handleEvent(msg.event)

	case toastExpiredMsg:
		if a.toast != nil && a.toast.seq == msg.seq {
			a.toast = nil
		}
		return a, nil

	case views.Refresh:
		a.tasks.Update(msg)
		a.lists.Update(msg)
		return a, nil

	case views.OpenLists:
		a.currentView = ViewLists
		a.lists.Update(views.Refresh{})
		return a, a.resize()

	case views.OpenTasks:
		a.currentView = ViewTasks
		a.tasks.Update(views.Refresh{})
		return a, a.resize()
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewLists:
		_, cmd = a.lists.Update(msg)
	default:
		_, cmd = a.tasks.Update(msg)
	}
	return a, cmd
}

func (a *App) handleEvent(e events.Event) tea.Cmd {
	switch e := e.(type) {
	case events.Notified:
		a.toastSeq++
		seq := a.toastSeq
		a.toast = &toast{seq: seq, notification: e.Notification}
		return tea.Tick(ToastDuration, func(time.Time) tea.Msg { return toastExpiredMsg{seq: seq} })
	default:
		a.tasks.Update(views.Refresh{})
		a.lists.Update(views.Refresh{})
		return nil
	}
}

// View renders the active screen and the toast
func (a *App) View() string {
	var body string
	switch a.currentView {
	case ViewLists:
		body = a.lists.View()
	default:
		body = a.tasks.View()
	}
	if a.toast == nil {
		return body
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, a.renderToast())
}

func (a *App) renderToast() string {
	n := a.toast.notification
	text := n.Title
	if n.Message != "" {
		text += ": " + n.Message
	}

	style := a.styles.ToastInfo
	switch n.Kind {
	case events.KindSuccess:
		style = a.styles.ToastSuccess
	case events.KindError:
		style = a.styles.ToastError
	}
	return style.MaxWidth(styles.ContentWidth(a.width)).Render(text)
}

// Run starts the UI and blocks until it quits or ctx is canceled
func Run(ctx context.Context, coord *todo.Coordinator, opts Options) error {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	p := tea.NewProgram(NewApp(ctx, coord, opts), tea.WithAltScreen(), tea.WithContext(ctx))

	// Events are queued so Publish never waits on the program loop
	queue := make(chan events.Event, 64)
	done := make(chan struct{})
	unsubscribe := coord.Bus().Subscribe(func(e events.Event) {
		select {
		case queue <- e:
		case <-done:
		}
	})
	defer func() {
		unsubscribe()
		close(done)
	}()

	go func() {
		for {
			select {
			case e := <-queue:
				p.Send(busMsg{event: e})
			case <-done:
				return
			}
		}
	}()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		opts.Logger.Debug("ui stopped", "reason", ctx.Err())
		return nil
	}
	return err
}
