package todo

import (
	"context"
	"errors"
	"testing"

	"github.com/ixann-ui/ukk-todolist/internal/events"
	"github.com/ixann-ui/ukk-todolist/internal/models"
	"github.com/ixann-ui/ukk-todolist/internal/service"
)

func TestAddListAnonymous(t *testing.T) {
	h := newHarness(t)

	l, err := h.c.AddList(context.Background(), "  Home ")
	if err != nil {
		t.Fatal(err)
	}
	if !models.IsLocalID(l.ID) || l.Name != "Home" {
		t.Errorf("unexpected list %+v", l)
	}
	if h.svc.Calls("CreateList") != 0 {
		t.Error("anonymous list reached the server")
	}
	h.expectOne(t, events.KindSuccess)
}

func TestAddListFallsBackWhenOffline(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	h.svc.CreateListErr = &service.RemoteError{Status: 500, Message: "down"}

	l, err := h.c.AddList(context.Background(), "Trips")
	if err != nil {
		t.Fatal(err)
	}
	if !models.IsLocalID(l.ID) {
		t.Errorf("expected local fallback id, got %q", l.ID)
	}
	h.expectOne(t, events.KindInfo)
	if s := h.c.Snapshot(); len(s.Lists) != 1 {
		t.Errorf("lists = %+v", s.Lists)
	}
}

func TestAddListRejectsEmptyName(t *testing.T) {
	h := newHarness(t)
	if _, err := h.c.AddList(context.Background(), "  "); !errors.Is(err, service.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	h.expectOne(t, events.KindError)
}

func TestAddListBackfillsTags(t *testing.T) {
	h := newHarness(t)
	h.c.mu.Lock()
	h.c.tasks = []models.Task{{ID: "local-t", Text: "x", Tag: models.LegacyTag, When: models.WhenToday, ListID: models.StringPtr("9")}}
	h.c.lists = []models.List{{ID: "9", Name: "Garden"}}
	h.c.backfillLocked()
	h.c.mu.Unlock()

	if got := h.c.Snapshot().Tasks[0].Tag; got != "Garden" {
		t.Errorf("tag = %q, want Garden", got)
	}
}

func TestRenameListRetagsTasks(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	l, _ := h.c.AddList(ctx, "Work")
	h.c.SelectList(l.ID)
	task, _ := h.c.AddTask(ctx, "report")
	h.take()

	if err := h.c.RenameList(l.ID, "Office"); err != nil {
		t.Fatal(err)
	}
	h.expectOne(t, events.KindSuccess)

	s := h.c.Snapshot()
	if s.Lists[0].Name != "Office" {
		t.Errorf("list not renamed: %+v", s.Lists)
	}
	if s.Tasks[0].ID != task.ID || s.Tasks[0].Tag != "Office" {
		t.Errorf("task not retagged: %+v", s.Tasks[0])
	}
}

func TestDeleteListResetsSelection(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	l, _ := h.c.AddList(ctx, "Temp")
	h.c.SelectList(l.ID)
	h.take()

	if err := h.c.DeleteList(ctx, l.ID, false); err != nil {
		t.Fatal(err)
	}
	h.expectOne(t, events.KindSuccess)

	s := h.c.Snapshot()
	if len(s.Lists) != 0 || s.Selected != models.AllListID {
		t.Errorf("unexpected state %+v", s)
	}
}

func TestDeleteServerListFailure(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	ctx := context.Background()

	l, err := h.c.AddList(ctx, "Work")
	if err != nil || !models.IsServerID(l.ID) {
		t.Fatalf("AddList = %+v, %v", l, err)
	}
	h.take()

	h.svc.DeleteListErr = &service.RemoteError{Status: 500}
	if err := h.c.DeleteList(ctx, l.ID, false); err == nil {
		t.Fatal("expected error")
	}
	h.expectOne(t, events.KindError)
	if len(h.c.Snapshot().Lists) != 1 {
		t.Error("list removed despite failure")
	}

	if err := h.c.DeleteList(ctx, l.ID, true); err != nil {
		t.Fatal(err)
	}
	h.expectOne(t, events.KindSuccess)
	if len(h.c.Snapshot().Lists) != 0 {
		t.Error("local removal failed")
	}
}

func TestPseudoListCannotBeDeleted(t *testing.T) {
	h := newHarness(t)
	if err := h.c.DeleteList(context.Background(), models.AllListID, true); !errors.Is(err, service.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	h.expectOne(t, events.KindError)
}

func TestSelectListUnknown(t *testing.T) {
	h := newHarness(t)
	if err := h.c.SelectList("404"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := h.c.SelectList(models.AllListID); err != nil {
		t.Errorf("selecting the pseudo-list: %v", err)
	}
}
