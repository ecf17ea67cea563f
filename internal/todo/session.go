package todo

import (
	"context"
	"fmt"

	"github.com/ixann-ui/ukk-todolist/internal/events"
	"github.com/ixann-ui/ukk-todolist/internal/localstore"
	"github.com/ixann-ui/ukk-todolist/internal/models"
	"github.com/ixann-ui/ukk-todolist/internal/reconcile"
	"github.com/ixann-ui/ukk-todolist/internal/service"
)

// Load reads the local state of the current session and, when signed in,
// reconciles it with the server. Server failures leave the local state in
// place and are reported as an info notification. Results that arrive after
// the session changed are dropped.
func (c *Coordinator) Load(ctx context.Context) error {
	c.mu.Lock()
	token := c.session
	var userID string
	if c.user != nil {
		userID = c.user.ID
	}
	st := c.store.Load(c.namespaceLocked())
	c.tasks = st.Tasks
	c.lists = st.Lists
	c.selected = st.SelectedListID
	c.fixSelectionLocked()
	c.backfillLocked()
	c.mu.Unlock()

	if len(st.Corrupt) > 0 {
		c.notify(events.KindInfo, "Local data reset",
			fmt.Sprintf("Unreadable saved data was discarded (%d item(s))", len(st.Corrupt)))
	}

	if userID == "" {
		c.publishLists()
		c.bus.Publish(events.TasksChanged{})
		return nil
	}

	remoteLists, listsErr := c.svc.ListLists(ctx, userID)
	remoteTasks, tasksErr := c.svc.ListTasks(ctx, userID)

	c.mu.Lock()
	if c.session != token {
		c.mu.Unlock()
		c.log.Debug("dropping stale load", "user", userID)
		return ErrStaleSession
	}
	if listsErr == nil && len(remoteLists) > 0 {
		c.lists = mergeLists(c.lists, remoteLists)
		c.fixSelectionLocked()
	}
	if tasksErr == nil {
		c.tasks = reconcile.Merge(c.tasks, remoteTasks, c.lists, c.today())
	} else {
		c.backfillLocked()
	}
	c.persistLocked()
	c.mu.Unlock()

	c.publishLists()
	c.bus.Publish(events.TasksChanged{})

	if err := firstErr(tasksErr, listsErr); err != nil {
		c.log.Warn("sync failed", "user", userID, "err", err)
		c.notify(events.KindInfo, "Offline", "Showing saved tasks: "+service.Message(err))
	}
	return nil
}

// Login signs in, drops any anonymous data and loads the user's tasks.
func (c *Coordinator) Login(ctx context.Context, email, password string) error {
	u, err := c.svc.Login(ctx, service.Credentials{Email: email, Password: password})
	if err != nil {
		return c.fail("Sign in failed", err)
	}

	c.mu.Lock()
	c.resetLocked()
	c.user = &u
	if err := c.store.SetSessionUser(u); err != nil {
		c.log.Warn("saving session user", "err", err)
	}
	if err := c.store.Purge(localstore.Anonymous); err != nil {
		c.log.Warn("purging anonymous data", "err", err)
	}
	c.mu.Unlock()

	c.log.Info("signed in", "user", u.ID)
	c.bus.Publish(events.AuthChanged{User: &u})
	c.notify(events.KindSuccess, "Signed in", "Welcome, "+displayName(u))

	return c.Load(ctx)
}

// Logout forgets the signed-in user and starts a clean anonymous session.
// The user's cached data stays in their own namespace.
func (c *Coordinator) Logout() error {
	c.mu.Lock()
	c.resetLocked()
	c.user = nil
	if err := c.store.ClearSessionUser(); err != nil {
		c.log.Warn("clearing session user", "err", err)
	}
	if err := c.store.Purge(localstore.Anonymous); err != nil {
		c.log.Warn("purging anonymous data", "err", err)
	}
	c.mu.Unlock()

	c.log.Info("signed out")
	c.bus.Publish(events.AuthChanged{})
	c.publishLists()
	c.bus.Publish(events.TasksChanged{})
	c.notify(events.KindSuccess, "Signed out", "See you soon")
	return nil
}

// Register creates an account. It leaves the client signed out; the new
// user signs in with Login.
func (c *Coordinator) Register(ctx context.Context, name, email, password string) (models.User, error) {
	u, err := c.svc.Register(ctx, service.Registration{Name: name, Email: email, Password: password})
	if err != nil {
		return models.User{}, c.fail("Registration failed", err)
	}

	c.mu.Lock()
	c.resetLocked()
	c.user = nil
	if err := c.store.ClearSessionUser(); err != nil {
		c.log.Warn("clearing session user", "err", err)
	}
	if err := c.store.Purge(localstore.Anonymous); err != nil {
		c.log.Warn("purging anonymous data", "err", err)
	}
	c.mu.Unlock()

	c.bus.Publish(events.AuthChanged{})
	c.publishLists()
	c.bus.Publish(events.TasksChanged{})
	c.notify(events.KindSuccess, "Account created", "Sign in as "+u.Email+" to continue")
	return u, nil
}

// fixSelectionLocked falls back to the pseudo-list when the selected or
// add-to list no longer exists.
func (c *Coordinator) fixSelectionLocked() {
	if c.selected == "" || (c.selected != models.AllListID && c.listIndexLocked(c.selected) < 0) {
		c.selected = models.AllListID
	}
	if c.addTarget != "" && c.listIndexLocked(c.addTarget) < 0 {
		c.addTarget = ""
	}
}

// mergeLists takes the server's lists and keeps local-only lists after them.
func mergeLists(local, remote []models.List) []models.List {
	out := make([]models.List, 0, len(remote)+len(local))
	seen := make(map[string]bool, len(remote))
	for _, l := range remote {
		if l.ID == models.AllListID || seen[l.ID] {
			continue
		}
		seen[l.ID] = true
		out = append(out, l)
	}
	for _, l := range local {
		if !models.IsServerID(l.ID) && !seen[l.ID] {
			out = append(out, l)
		}
	}
	return out
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func displayName(u models.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
