package db

import (
	"errors"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := New(filepath.Join(t.TempDir(), "server.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestUsers(t *testing.T) {
	d := openTestDB(t)

	u, err := d.CreateUser("Ana", "Ana@Example.com", "hash")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == 0 || u.Email != "ana@example.com" {
		t.Errorf("unexpected user %+v", u)
	}

	got, err := d.GetUserByEmail(" ANA@example.com ")
	if err != nil || got.ID != u.ID || got.PasswordHash != "hash" {
		t.Errorf("GetUserByEmail = %+v, %v", got, err)
	}

	if _, err := d.CreateUser("Other", "ana@example.com", "x"); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
	if _, err := d.GetUserByEmail("nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListsAndTasks(t *testing.T) {
	d := openTestDB(t)
	u, _ := d.CreateUser("Ana", "ana@example.com", "hash")
	other, _ := d.CreateUser("Bo", "bo@example.com", "hash")

	work, err := d.CreateList(u.ID, "Work")
	if err != nil {
		t.Fatalf("CreateList: %v", err)
	}
	home, _ := d.CreateList(u.ID, "Home")
	d.CreateList(other.ID, "Elsewhere")

	mine, err := d.ListListsByUser(u.ID)
	if err != nil || len(mine) != 2 || mine[0].ID != work.ID {
		t.Errorf("ListListsByUser = %+v, %v", mine, err)
	}
	all, _ := d.ListLists()
	if len(all) != 3 || all[0].Name != "Elsewhere" {
		t.Errorf("ListLists should be newest first, got %+v", all)
	}

	t1, err := d.CreateTask(u.ID, &work.ID, "Report", "")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	t2, _ := d.CreateTask(u.ID, nil, "Unfiled", "")
	d.CreateTask(other.ID, nil, "Not mine", "")

	tasks, err := d.ListTasksByUser(u.ID)
	if err != nil || len(tasks) != 2 || tasks[0].ID != t2.ID {
		t.Errorf("ListTasksByUser = %+v, %v", tasks, err)
	}
	if tasks[0].ListID != nil {
		t.Error("unfiled task has a list")
	}

	inWork, _ := d.ListTasksByList(u.ID, work.ID)
	if len(inWork) != 1 || inWork[0].ID != t1.ID {
		t.Errorf("ListTasksByList = %+v", inWork)
	}

	// COALESCE keeps fields that were not given.
	title := "Quarterly report"
	if err := d.UpdateTask(t1.ID, &title, nil, nil); err != nil {
		t.Fatal(err)
	}
	got, _ := d.GetTask(t1.ID)
	if got.Title != title || got.ListID == nil || *got.ListID != work.ID {
		t.Errorf("after title update: %+v", got)
	}
	if err := d.UpdateTask(t1.ID, nil, &home.ID, nil); err != nil {
		t.Fatal(err)
	}
	got, _ = d.GetTask(t1.ID)
	if got.Title != title || *got.ListID != home.ID {
		t.Errorf("after list update: %+v", got)
	}
	if err := d.UpdateTask(9999, &title, nil, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	// Deleting a list leaves its tasks unfiled.
	if err := d.DeleteList(home.ID); err != nil {
		t.Fatal(err)
	}
	got, _ = d.GetTask(t1.ID)
	if got.ListID != nil {
		t.Errorf("task still in deleted list: %+v", got)
	}

	if err := d.DeleteTask(t1.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := d.GetTask(t1.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
