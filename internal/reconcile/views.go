package reconcile

import (
	"sort"
	"time"

	"github.com/ixann-ui/ukk-todolist/internal/models"
)

// DoneGroup is one day of completed tasks
type DoneGroup struct {
	Date  string
	Tasks []models.Task
}

// InList reports whether t is shown while selected is the active list.
// Unfiled tasks show up under every list.
func InList(t models.Task, selected string) bool {
	if selected == "" || selected == models.AllListID {
		return true
	}
	return t.ListID == nil || *t.ListID == selected
}

func filter(tasks []models.Task, keep func(models.Task) bool) []models.Task {
	var out []models.Task
	for _, t := range tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// Today returns open tasks scheduled for today
func Today(tasks []models.Task, selected string) []models.Task {
	return filter(tasks, func(t models.Task) bool {
		return !t.Done && t.When != models.WhenUpcoming && InList(t, selected)
	})
}

// Upcoming returns open tasks scheduled later
func Upcoming(tasks []models.Task, selected string) []models.Task {
	return filter(tasks, func(t models.Task) bool {
		return !t.Done && t.When == models.WhenUpcoming && InList(t, selected)
	})
}

// Done returns completed tasks
func Done(tasks []models.Task, selected string) []models.Task {
	return filter(tasks, func(t models.Task) bool {
		return t.Done && InList(t, selected)
	})
}

// GroupDoneByDate groups completed tasks by date, newest day first.
// Undated tasks count as completed today.
func GroupDoneByDate(done []models.Task, today time.Time) []DoneGroup {
	todayKey := today.Format(models.DateLayout)
	idx := make(map[string]int)
	var groups []DoneGroup

	for _, t := range done {
		key := t.Date
		if key == "" {
			key = todayKey
		}
		i, ok := idx[key]
		if !ok {
			i = len(groups)
			idx[key] = i
			groups = append(groups, DoneGroup{Date: key})
		}
		groups[i].Tasks = append(groups[i].Tasks, t)
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Date > groups[b].Date
	})
	return groups
}
