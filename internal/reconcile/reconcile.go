// Package reconcile merges the server's task rows with the locally held
// tasks and derives the views shown to the user.
package reconcile

import (
	"time"

	"github.com/ixann-ui/ukk-todolist/internal/models"
)

// Merge combines remote tasks with local ones.
//
// Each field is taken from the local copy when it has a value, then from
// the remote row, then derived: when from the date (today if undated), tag
// as the default tag. Done always comes from the local copy. Local tasks
// the server does not know about are kept and placed ahead of the
// remote-derived ones, in their local order. Tags are backfilled from
// lists as a final pass.
func Merge(local, remote []models.Task, lists []models.List, today time.Time) []models.Task {
	byID := make(map[string]models.Task, len(local))
	for _, t := range local {
		byID[t.ID] = t
	}

	seen := make(map[string]bool, len(remote))
	fromRemote := make([]models.Task, 0, len(remote))
	for _, r := range remote {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true

		l, ok := byID[r.ID]
		if !ok {
			fromRemote = append(fromRemote, fresh(r, today))
			continue
		}
		fromRemote = append(fromRemote, overlay(r, l, today))
	}

	out := make([]models.Task, 0, len(local)+len(fromRemote))
	for _, t := range local {
		if !seen[t.ID] {
			out = append(out, t)
		}
	}
	out = append(out, fromRemote...)

	out, _ = BackfillTags(out, lists)
	return out
}

// fresh builds a task the client has never seen before.
func fresh(r models.Task, today time.Time) models.Task {
	t := r
	t.Unsynced = false
	if t.Tag == "" {
		t.Tag = models.DefaultTag
	}
	if t.When == "" {
		t.When = whenFor(t.Date, today)
	}
	return t
}

// overlay applies the local copy's fields on top of the remote row.
func overlay(r, l models.Task, today time.Time) models.Task {
	t := models.Task{
		ID:       r.ID,
		Text:     r.Text,
		Done:     l.Done,
		Tag:      r.Tag,
		Date:     r.Date,
		ListID:   r.ListID,
		Unsynced: l.Unsynced,
	}
	if l.Text != "" {
		t.Text = l.Text
	}
	if l.Tag != "" {
		t.Tag = l.Tag
	}
	if t.Tag == "" {
		t.Tag = models.DefaultTag
	}
	if l.Date != "" {
		t.Date = l.Date
	}
	if l.ListID != nil {
		t.ListID = l.ListID
	}
	switch {
	case l.When != "":
		t.When = l.When
	case r.When != "":
		t.When = r.When
	default:
		t.When = whenFor(t.Date, today)
	}
	return t
}

func whenFor(date string, today time.Time) models.When {
	if date == "" {
		return models.WhenToday
	}
	return models.WhenFromDate(date, today)
}

// BackfillTags replaces generic tags with the name of the task's list.
// Tasks whose list is unknown keep their tag. Applying it twice changes
// nothing the second time. The returned slice is a copy when changed is true.
func BackfillTags(tasks []models.Task, lists []models.List) ([]models.Task, bool) {
	names := make(map[string]string, len(lists))
	for _, l := range lists {
		if l.ID != "" && l.Name != "" {
			names[l.ID] = l.Name
		}
	}

	var out []models.Task
	for i, t := range tasks {
		if t.ListID == nil || !models.IsGenericTag(t.Tag) {
			continue
		}
		name, ok := names[*t.ListID]
		if !ok || name == t.Tag {
			continue
		}
		if out == nil {
			out = append([]models.Task(nil), tasks...)
		}
		out[i].Tag = name
	}

	if out == nil {
		return tasks, false
	}
	return out, true
}
