// Package cli is the todo command line: scriptable subcommands over the
// same coordinator the terminal UI uses.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ixann-ui/ukk-todolist/internal/backend/rest"
	"github.com/ixann-ui/ukk-todolist/internal/config"
	"github.com/ixann-ui/ukk-todolist/internal/events"
	"github.com/ixann-ui/ukk-todolist/internal/exitcode"
	"github.com/ixann-ui/ukk-todolist/internal/localstore"
	"github.com/ixann-ui/ukk-todolist/internal/logging"
	"github.com/ixann-ui/ukk-todolist/internal/service"
	"github.com/ixann-ui/ukk-todolist/internal/todo"
	"github.com/ixann-ui/ukk-todolist/internal/ui"
)

// App carries the global flags and the lazily opened client state
type App struct {
	ConfigPath string
	APIURL     string
	DataDir    string
	LogLevel   string

	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Service replaces the REST client when set
	Service service.Service

	// Now defaults to time.Now
	Now func() time.Time

	cfg      *config.Config
	log      *log.Logger
	store    *localstore.Store
	coord    *todo.Coordinator
	closers  []io.Closer
	reported bool
}

// Execute runs the command line and returns the process exit code
func Execute(ctx context.Context, version string, args []string) int {
	app := &App{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
	cmd := NewRootCmd(app, version)
	cmd.SetArgs(args)
	defer app.Close()

	err := cmd.ExecuteContext(ctx)
	if err != nil && !app.reported {
		fmt.Fprintln(app.Err, "Error:", err)
	}
	return exitcode.For(err)
}

// NewRootCmd builds the command tree around app
func NewRootCmd(app *App, version string) *cobra.Command {
	if app.In == nil {
		app.In = os.Stdin
	}
	if app.Out == nil {
		app.Out = os.Stdout
	}
	if app.Err == nil {
		app.Err = os.Stderr
	}

	cmd := &cobra.Command{
		Use:           "todo",
		Short:         "Lists and tasks, offline first, synced when signed in",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  todo

  # Scriptable commands
  todo add Buy milk
  todo ls --done
  todo schedule 12 2024-06-01
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			return runTUI(cmd.Context(), app)
		},
	}
	cmd.SetOut(app.Out)
	cmd.SetErr(app.Err)

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("TODO_CONFIG", ""), "Path to config file")
	cmd.PersistentFlags().StringVar(&app.APIURL, "api-url", "", "Backend base URL (overrides TODO_API_URL)")
	cmd.PersistentFlags().StringVar(&app.DataDir, "data-dir", "", "Directory for local data (overrides TODO_DATA_DIR)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level: debug, info, warn, error")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newRegisterCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newLsCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newDoneCmd(app))
	cmd.AddCommand(newScheduleCmd(app))
	cmd.AddCommand(newRmCmd(app))
	cmd.AddCommand(newListsCmd(app))
	cmd.AddCommand(newAddListCmd(app))
	cmd.AddCommand(newRmListCmd(app))
	cmd.AddCommand(newSelectCmd(app))
	cmd.AddCommand(newVersionCmd(version))

	return cmd
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// open loads config, opens the local store and builds the coordinator.
// The TUI logs to a file; everything else logs to stderr.
func (a *App) open(tui bool) (*todo.Coordinator, error) {
	if a.coord != nil {
		return a.coord, nil
	}

	cfg, err := config.Load(a.ConfigPath, config.Overrides{
		APIURL:   a.APIURL,
		DataDir:  a.DataDir,
		LogLevel: a.LogLevel,
	})
	if err != nil {
		return nil, service.Validation(err.Error())
	}
	a.cfg = cfg

	logOpts := logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat}
	if tui {
		logger, closer, err := logging.NewFile(cfg.LogPath(), logOpts)
		if err != nil {
			return nil, err
		}
		a.log = logger
		a.closers = append(a.closers, closer)
	} else {
		a.log = logging.New(a.Err, logOpts)
	}

	store, err := localstore.Open(localstore.PathIn(cfg.DataDir), a.log)
	if err != nil {
		return nil, fmt.Errorf("opening local store: %w", err)
	}
	a.store = store
	a.closers = append(a.closers, store)

	svc := a.Service
	if svc == nil {
		svc = rest.New(rest.Options{
			BaseURL: cfg.APIURL,
			Timeout: cfg.Timeout.Duration,
			Logger:  a.log,
		})
	}

	bus := events.NewBus()
	if !tui {
		bus.Subscribe(a.printNotification)
	}

	a.coord = todo.New(todo.Options{
		Service: svc,
		Store:   store,
		Bus:     bus,
		Logger:  a.log,
		Now:     a.Now,
	})
	return a.coord, nil
}

// load opens the coordinator and reads the current session's state
func (a *App) load(ctx context.Context) (*todo.Coordinator, error) {
	c, err := a.open(false)
	if err != nil {
		return nil, err
	}
	if err := c.Load(ctx); err != nil && !errors.Is(err, todo.ErrStaleSession) {
		return nil, err
	}
	return c, nil
}

// Close releases everything open opened, in reverse order
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	a.coord = nil
	return errors.Join(errs...)
}

func (a *App) printNotification(e events.Event) {
	n, ok := e.(events.Notified)
	if !ok {
		return
	}
	if n.Kind == events.KindError {
		a.reported = true
	}
	line := n.Title
	if n.Message != "" {
		line += ": " + n.Message
	}
	fmt.Fprintf(a.Err, "%s %s\n", kindMark(n.Kind), line)
}

func kindMark(k events.Kind) string {
	switch k {
	case events.KindSuccess:
		return "✓"
	case events.KindError:
		return "✗"
	default:
		return "•"
	}
}

func runTUI(ctx context.Context, app *App) error {
	c, err := app.open(true)
	if err != nil {
		return err
	}
	return ui.Run(ctx, c, ui.Options{
		DeleteDelay: app.cfg.DeleteDelay.Duration,
		Logger:      app.log,
	})
}
