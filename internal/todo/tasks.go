package todo

import (
	"context"
	"strings"

	"github.com/ixann-ui/ukk-todolist/internal/events"
	"github.com/ixann-ui/ukk-todolist/internal/models"
	"github.com/ixann-ui/ukk-todolist/internal/service"
)

// AddTask creates a task in the add-to list, or the selected list when no
// add-to list is set.
//
// Signed out, the task gets a local id and never reaches the server.
// Signed in, the server is asked first and nothing is inserted if it fails.
func (c *Coordinator) AddTask(ctx context.Context, text string) (models.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Task{}, c.fail("Cannot add task", service.Validation("task text is required"))
	}

	c.mu.Lock()
	token := c.session
	user := c.user
	listID := c.addTarget
	if listID == "" {
		listID = c.selected
	}
	if listID == models.AllListID {
		listID = ""
	}
	tag := models.DefaultTag
	if name, ok := c.listNameLocked(listID); ok {
		tag = name
	}
	c.mu.Unlock()

	task := models.Task{
		Text:   text,
		Tag:    tag,
		When:   models.WhenToday,
		ListID: models.StringPtr(listID),
	}

	if user == nil {
		task.ID = models.NewLocalID()
	} else {
		remoteList := ""
		if models.IsServerID(listID) {
			remoteList = listID
		}
		created, err := c.svc.CreateTask(ctx, service.NewTask{UserID: user.ID, Title: text, ListID: remoteList})
		if err != nil {
			return models.Task{}, c.fail("Could not add task", err)
		}
		task.ID = created.ID
	}

	c.mu.Lock()
	if c.session != token {
		c.mu.Unlock()
		return models.Task{}, c.fail("Task not added", ErrStaleSession)
	}
	c.tasks = append([]models.Task{task}, c.tasks...)
	c.persistLocked()
	c.mu.Unlock()

	c.bus.Publish(events.TasksChanged{})
	if user == nil {
		c.notify(events.KindSuccess, "Task added", "offline")
	} else {
		c.notify(events.KindSuccess, "Task added", text)
	}
	return task, nil
}

// EditTask changes a task's text. The change is applied locally first and
// kept even when the server rejects it; the task is then marked unsynced.
func (c *Coordinator) EditTask(ctx context.Context, id, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return c.fail("Cannot edit task", service.Validation("task text is required"))
	}

	c.mu.Lock()
	i := c.taskIndexLocked(id)
	if i < 0 {
		c.mu.Unlock()
		return c.fail("Cannot edit task", ErrNotFound)
	}
	if c.busyLocked(id) {
		c.mu.Unlock()
		return c.fail("Cannot edit task", errDeleting)
	}
	c.tasks[i].Text = text
	c.persistLocked()
	token := c.session
	user := c.user
	c.mu.Unlock()

	c.bus.Publish(events.TasksChanged{})

	if user == nil || !models.IsServerID(id) {
		c.notify(events.KindSuccess, "Task updated", text)
		return nil
	}

	err := c.svc.UpdateTask(ctx, id, service.TaskUpdate{Title: &text})
	c.setUnsynced(token, id, err != nil)
	if err != nil {
		c.log.Warn("update not synced", "task", id, "err", err)
		return c.fail("Saved on this device only", err)
	}
	c.notify(events.KindSuccess, "Task updated", text)
	return nil
}

var errDeleting = service.Validation("task is being deleted")

// busyLocked reports whether id is awaiting delete confirmation or deleting
func (c *Coordinator) busyLocked(id string) bool {
	return c.deleting[id] || c.pendingDelete == id
}

func (c *Coordinator) setUnsynced(token uint64, id string, unsynced bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != token {
		return
	}
	if i := c.taskIndexLocked(id); i >= 0 && c.tasks[i].Unsynced != unsynced {
		c.tasks[i].Unsynced = unsynced
		c.persistLocked()
	}
}

// ToggleDone flips a task's completion. Completion is kept on this device.
func (c *Coordinator) ToggleDone(id string) error {
	c.mu.Lock()
	i := c.taskIndexLocked(id)
	if i < 0 {
		c.mu.Unlock()
		return c.fail("Cannot update task", ErrNotFound)
	}
	if c.busyLocked(id) {
		c.mu.Unlock()
		return c.fail("Cannot update task", errDeleting)
	}
	c.tasks[i].Done = !c.tasks[i].Done
	done := c.tasks[i].Done
	c.persistLocked()
	c.mu.Unlock()

	c.bus.Publish(events.TasksChanged{})
	if done {
		c.notify(events.KindSuccess, "Task completed", "")
	} else {
		c.notify(events.KindSuccess, "Task reopened", "")
	}
	return nil
}

// SetSchedule dates a task. An empty date flips it between today and
// upcoming; otherwise date must be YYYY-MM-DD and decides the bucket.
func (c *Coordinator) SetSchedule(id, date string) error {
	date = strings.TrimSpace(date)
	if date != "" && !models.ValidDate(date) {
		return c.fail("Invalid date", service.Validation("use the YYYY-MM-DD format"))
	}

	c.mu.Lock()
	i := c.taskIndexLocked(id)
	if i < 0 {
		c.mu.Unlock()
		return c.fail("Cannot schedule task", ErrNotFound)
	}
	if c.busyLocked(id) {
		c.mu.Unlock()
		return c.fail("Cannot schedule task", errDeleting)
	}
	t := &c.tasks[i]
	if date == "" {
		if t.When == models.WhenUpcoming {
			t.When = models.WhenToday
		} else {
			t.When = models.WhenUpcoming
		}
	} else {
		t.Date = date
		t.When = models.WhenFromDate(date, c.today())
	}
	when := t.When
	c.persistLocked()
	c.mu.Unlock()

	c.bus.Publish(events.TasksChanged{})
	c.notify(events.KindSuccess, "Task scheduled", "Moved to "+string(when))
	return nil
}

// RequestDelete opens the delete confirmation for id
func (c *Coordinator) RequestDelete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.taskIndexLocked(id) < 0 {
		return ErrNotFound
	}
	if c.deleting[id] {
		return service.Validation("task is already being deleted")
	}
	c.pendingDelete = id
	c.deleteConfirmed = false
	return nil
}

// SetDeleteConfirmed sets the explicit confirmation of the pending delete
func (c *Coordinator) SetDeleteConfirmed(confirmed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pendingDelete != "" {
		c.deleteConfirmed = confirmed
	}
}

// CancelDelete closes the pending delete without changing anything
func (c *Coordinator) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingDelete = ""
	c.deleteConfirmed = false
}

// ConfirmDelete starts deleting the pending task and returns its id.
// Server tasks are deleted remotely first; on failure the task is kept and
// the confirmation stays open. On success the task is marked deleting and
// the caller removes it with FinalizeDelete once its delay has passed.
func (c *Coordinator) ConfirmDelete(ctx context.Context) (string, error) {
	c.mu.Lock()
	id := c.pendingDelete
	if id == "" {
		c.mu.Unlock()
		return "", c.fail("Nothing to delete", ErrNotFound)
	}
	if !c.deleteConfirmed {
		c.mu.Unlock()
		return "", c.fail("Please confirm", service.Validation("tick the confirmation before deleting"))
	}
	if c.taskIndexLocked(id) < 0 {
		c.pendingDelete = ""
		c.deleteConfirmed = false
		c.mu.Unlock()
		return "", c.fail("Cannot delete task", ErrNotFound)
	}
	if c.deleting[id] {
		c.mu.Unlock()
		return "", c.fail("Already deleting", service.Validation("task is already being deleted"))
	}
	token := c.session
	c.deleting[id] = true
	c.mu.Unlock()

	c.bus.Publish(events.TasksChanged{})

	if models.IsServerID(id) {
		if err := c.svc.DeleteTask(ctx, id); err != nil {
			c.mu.Lock()
			delete(c.deleting, id)
			c.mu.Unlock()
			c.log.Warn("remote delete failed", "task", id, "err", err)
			c.bus.Publish(events.TasksChanged{})
			return "", c.fail("Could not delete task", err)
		}
	}

	c.mu.Lock()
	stale := c.session != token
	if !stale && c.pendingDelete == id {
		c.pendingDelete = ""
		c.deleteConfirmed = false
	}
	c.mu.Unlock()
	if stale {
		return "", c.fail("Task not deleted", ErrStaleSession)
	}
	return id, nil
}

// FinalizeDelete removes a task previously returned by ConfirmDelete
func (c *Coordinator) FinalizeDelete(id string) error {
	c.mu.Lock()
	if !c.deleting[id] {
		c.mu.Unlock()
		return ErrNotFound
	}
	delete(c.deleting, id)
	if i := c.taskIndexLocked(id); i >= 0 {
		c.tasks = append(c.tasks[:i:i], c.tasks[i+1:]...)
	}
	c.persistLocked()
	c.mu.Unlock()

	c.bus.Publish(events.TasksChanged{})
	c.notify(events.KindSuccess, "Task deleted", "")
	return nil
}
