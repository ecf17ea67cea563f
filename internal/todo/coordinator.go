// Package todo holds the client's in-memory task state and applies user
// mutations to it, optimistically where possible, keeping the local store
// and the server in step.
package todo

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ixann-ui/ukk-todolist/internal/events"
	"github.com/ixann-ui/ukk-todolist/internal/localstore"
	"github.com/ixann-ui/ukk-todolist/internal/models"
	"github.com/ixann-ui/ukk-todolist/internal/reconcile"
	"github.com/ixann-ui/ukk-todolist/internal/service"
)

var (
	// ErrNotFound is returned for ids the coordinator does not hold.
	ErrNotFound = errors.New("not found")

	// ErrStaleSession is returned when the session changed while a
	// request was in flight; its result was dropped.
	ErrStaleSession = errors.New("session changed")
)

// Store is the persistence the coordinator needs
type Store interface {
	Load(ns localstore.Namespace) localstore.State
	Save(ns localstore.Namespace, st localstore.State) error
	Purge(ns localstore.Namespace) error
	SessionUser() (*models.User, bool)
	SetSessionUser(u models.User) error
	ClearSessionUser() error
}

// Options configures a Coordinator
type Options struct {
	Service service.Service
	Store   Store
	Bus     *events.Bus
	Logger  *log.Logger

	// Now defaults to time.Now
	Now func() time.Time
}

// Coordinator owns the task and list state of one client
type Coordinator struct {
	svc   service.Service
	store Store
	bus   *events.Bus
	log   *log.Logger
	now   func() time.Time

	mu        sync.Mutex
	session   uint64
	user      *models.User
	tasks     []models.Task
	lists     []models.List
	selected  string
	addTarget string

	deleting        map[string]bool
	pendingDelete   string
	deleteConfirmed bool
}

// New creates a coordinator and restores the persisted session user.
// Call Load to read tasks and lists.
func New(opts Options) *Coordinator {
	c := &Coordinator{
		svc:      opts.Service,
		store:    opts.Store,
		bus:      opts.Bus,
		log:      opts.Logger,
		now:      opts.Now,
		selected: models.AllListID,
		deleting: make(map[string]bool),
	}
	if c.bus == nil {
		c.bus = events.NewBus()
	}
	if c.log == nil {
		c.log = log.Default()
	}
	if c.now == nil {
		c.now = time.Now
	}
	if u, ok := c.store.SessionUser(); ok {
		c.user = u
	}
	return c
}

// Bus returns the bus the coordinator publishes on
func (c *Coordinator) Bus() *events.Bus {
	return c.bus
}

// Snapshot is a copy of the coordinator's state
type Snapshot struct {
	User            *models.User
	Tasks           []models.Task
	Lists           []models.List
	Selected        string
	AddTarget       string
	PendingDelete   string
	DeleteConfirmed bool
	Deleting        map[string]bool
}

// Snapshot returns a copy of the current state
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		Tasks:           slices.Clone(c.tasks),
		Lists:           slices.Clone(c.lists),
		Selected:        c.selected,
		AddTarget:       c.addTarget,
		PendingDelete:   c.pendingDelete,
		DeleteConfirmed: c.deleteConfirmed,
		Deleting:        make(map[string]bool, len(c.deleting)),
	}
	if c.user != nil {
		u := *c.user
		s.User = &u
	}
	for id := range c.deleting {
		s.Deleting[id] = true
	}
	return s
}

// User returns the signed-in user, or nil
func (c *Coordinator) User() *models.User {
	return c.Snapshot().User
}

// Today returns open tasks for today in the selected list
func (c *Coordinator) Today() []models.Task {
	s := c.Snapshot()
	return reconcile.Today(s.Tasks, s.Selected)
}

// Upcoming returns open tasks scheduled later in the selected list
func (c *Coordinator) Upcoming() []models.Task {
	s := c.Snapshot()
	return reconcile.Upcoming(s.Tasks, s.Selected)
}

// Done returns completed tasks in the selected list, grouped by day
func (c *Coordinator) Done() []reconcile.DoneGroup {
	s := c.Snapshot()
	return reconcile.GroupDoneByDate(reconcile.Done(s.Tasks, s.Selected), c.today())
}

// IsDeleting reports whether id is in its delete delay
func (c *Coordinator) IsDeleting(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deleting[id]
}

func (c *Coordinator) today() time.Time {
	return models.Midnight(c.now())
}

func (c *Coordinator) namespaceLocked() localstore.Namespace {
	if c.user == nil {
		return localstore.Anonymous
	}
	return localstore.NamespaceFor(c.user.ID)
}

func (c *Coordinator) persistLocked() {
	ns := c.namespaceLocked()
	err := c.store.Save(ns, localstore.State{
		Tasks:          c.tasks,
		Lists:          c.lists,
		SelectedListID: c.selected,
	})
	if err != nil {
		c.log.Warn("saving local state", "namespace", ns.Tasks, "err", err)
	}
}

// resetLocked clears all per-user state and starts a new session.
func (c *Coordinator) resetLocked() {
	c.session++
	c.tasks = nil
	c.lists = nil
	c.selected = models.AllListID
	c.addTarget = ""
	c.deleting = make(map[string]bool)
	c.pendingDelete = ""
	c.deleteConfirmed = false
}

func (c *Coordinator) taskIndexLocked(id string) int {
	return slices.IndexFunc(c.tasks, func(t models.Task) bool { return t.ID == id })
}

func (c *Coordinator) listIndexLocked(id string) int {
	return slices.IndexFunc(c.lists, func(l models.List) bool { return l.ID == id })
}

func (c *Coordinator) listNameLocked(id string) (string, bool) {
	if i := c.listIndexLocked(id); i >= 0 {
		return c.lists[i].Name, true
	}
	return "", false
}

// backfillLocked runs tag backfill after any change to the lists.
func (c *Coordinator) backfillLocked() {
	if tasks, changed := reconcile.BackfillTags(c.tasks, c.lists); changed {
		c.tasks = tasks
	}
}

func (c *Coordinator) notify(kind events.Kind, title, message string) {
	c.bus.Publish(events.Notified{Notification: events.Notification{Kind: kind, Title: title, Message: message}})
}

func (c *Coordinator) fail(title string, err error) error {
	c.notify(events.KindError, title, service.Message(err))
	return err
}

func (c *Coordinator) publishLists() {
	s := c.Snapshot()
	c.bus.Publish(events.ListsChanged{Lists: s.Lists, Selected: s.Selected})
}
