package todo

import (
	"context"
	"errors"
	"strings"

	"github.com/ixann-ui/ukk-todolist/internal/events"
	"github.com/ixann-ui/ukk-todolist/internal/models"
	"github.com/ixann-ui/ukk-todolist/internal/service"
)

// AddList creates a list. Signed in, the server is asked first; if it is
// unreachable the list is kept on this device only.
func (c *Coordinator) AddList(ctx context.Context, name string) (models.List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.List{}, c.fail("Cannot create list", service.Validation("list name is required"))
	}

	c.mu.Lock()
	token := c.session
	user := c.user
	c.mu.Unlock()

	list := models.List{ID: models.NewLocalID(), Name: name}
	offline := ""
	if user != nil {
		created, err := c.svc.CreateList(ctx, service.NewList{Name: name, UserID: user.ID})
		switch {
		case err == nil:
			list = created
		case errors.Is(err, service.ErrValidation):
			return models.List{}, c.fail("Cannot create list", err)
		default:
			c.log.Warn("create list failed, keeping it locally", "err", err)
			offline = service.Message(err)
		}
	}

	c.mu.Lock()
	if c.session != token {
		c.mu.Unlock()
		return models.List{}, c.fail("List not created", ErrStaleSession)
	}
	c.lists = append(c.lists, list)
	c.backfillLocked()
	c.persistLocked()
	c.mu.Unlock()

	c.publishLists()
	if offline != "" {
		c.notify(events.KindInfo, "List saved on this device", offline)
	} else {
		c.notify(events.KindSuccess, "List created", name)
	}
	return list, nil
}

// RenameList renames a list on this device and retags its tasks.
func (c *Coordinator) RenameList(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return c.fail("Cannot rename list", service.Validation("list name is required"))
	}

	c.mu.Lock()
	i := c.listIndexLocked(id)
	if i < 0 {
		c.mu.Unlock()
		return c.fail("Cannot rename list", ErrNotFound)
	}
	old := c.lists[i].Name
	c.lists[i].Name = name
	for j := range c.tasks {
		t := &c.tasks[j]
		if t.ListID != nil && *t.ListID == id && t.Tag == old {
			t.Tag = name
		}
	}
	c.backfillLocked()
	c.persistLocked()
	c.mu.Unlock()

	c.publishLists()
	c.bus.Publish(events.TasksChanged{})
	c.notify(events.KindSuccess, "List renamed", name)
	return nil
}

// DeleteList removes a list. Server lists are deleted remotely first unless
// localOnly is set; tasks in the list are kept.
func (c *Coordinator) DeleteList(ctx context.Context, id string, localOnly bool) error {
	if id == models.AllListID {
		return c.fail("Cannot delete list", service.Validation("the all-tasks view is not a list"))
	}

	c.mu.Lock()
	i := c.listIndexLocked(id)
	token := c.session
	c.mu.Unlock()
	if i < 0 {
		return c.fail("Cannot delete list", ErrNotFound)
	}

	if models.IsServerID(id) && !localOnly {
		if err := c.svc.DeleteList(ctx, id); err != nil {
			return c.fail("Could not delete list", err)
		}
	}

	c.mu.Lock()
	if c.session != token {
		c.mu.Unlock()
		return c.fail("List not deleted", ErrStaleSession)
	}
	if i := c.listIndexLocked(id); i >= 0 {
		c.lists = append(c.lists[:i:i], c.lists[i+1:]...)
	}
	c.fixSelectionLocked()
	c.persistLocked()
	c.mu.Unlock()

	c.publishLists()
	c.notify(events.KindSuccess, "List deleted", "")
	return nil
}

// SelectList sets the list whose tasks are shown
func (c *Coordinator) SelectList(id string) error {
	c.mu.Lock()
	if id != models.AllListID && c.listIndexLocked(id) < 0 {
		c.mu.Unlock()
		return ErrNotFound
	}
	c.selected = id
	c.persistLocked()
	c.mu.Unlock()

	c.publishLists()
	c.bus.Publish(events.TasksChanged{})
	return nil
}

// SetAddTarget sets the list new tasks go to. An empty id or the all-tasks
// pseudo-list means "the selected list".
func (c *Coordinator) SetAddTarget(id string) error {
	if id == models.AllListID {
		id = ""
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if id != "" && c.listIndexLocked(id) < 0 {
		return ErrNotFound
	}
	c.addTarget = id
	return nil
}
