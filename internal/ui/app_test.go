package ui

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/ixann-ui/ukk-todolist/internal/events"
	"github.com/ixann-ui/ukk-todolist/internal/localstore"
	"github.com/ixann-ui/ukk-todolist/internal/testutil"
	"github.com/ixann-ui/ukk-todolist/internal/todo"
	"github.com/ixann-ui/ukk-todolist/internal/ui/views"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	store, err := localstore.Open(filepath.Join(t.TempDir(), "todo.db"), log.New(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	c := todo.New(todo.Options{
		Service: testutil.NewFakeService(),
		Store:   store,
		Logger:  log.New(io.Discard),
	})
	return NewApp(context.Background(), c, Options{})
}

func notified(title string) busMsg {
	return busMsg{event: events.Notified{Notification: events.Notification{Kind: events.KindSuccess, Title: title}}}
}

func TestToastExpires(t *testing.T) {
	a := newTestApp(t)

	_, cmd := a.Update(notified("Task added"))
	if cmd == nil {
		t.Fatal("expected an expiry tick")
	}
	if !strings.Contains(a.View(), "Task added") {
		t.Error("toast not rendered")
	}

	// A newer toast is not cleared by the older one's timer
	a.Update(notified("Task completed"))
	a.Update(toastExpiredMsg{seq: 1})
	if a.toast == nil || a.toast.notification.Title != "Task completed" {
		t.Fatalf("toast = %+v", a.toast)
	}

	a.Update(toastExpiredMsg{seq: 2})
	if a.toast != nil {
		t.Error("toast not cleared")
	}
}

func TestSwitchViews(t *testing.T) {
	a := newTestApp(t)

	a.Update(views.OpenLists{})
	if a.currentView != ViewLists {
		t.Fatal("lists view not shown")
	}
	a.Update(views.OpenTasks{})
	if a.currentView != ViewTasks {
		t.Error("tasks view not shown")
	}
}
