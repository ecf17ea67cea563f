package localstore

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/ixann-ui/ukk-todolist/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "todo.db"), log.New(io.Discard))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNamespaceFor(t *testing.T) {
	anon := NamespaceFor("")
	if anon.Tasks != "todos_v1" || anon.Lists != "lists_v1" || anon.Selected != "selected_list_v1" {
		t.Errorf("anonymous namespace = %+v", anon)
	}

	u := NamespaceFor("7")
	if u.Tasks != "todos_v1_user_7" || u.Lists != "lists_v1_user_7" || u.Selected != "selected_list_v1_user_7" {
		t.Errorf("user namespace = %+v", u)
	}
}

func TestLoadMissingIsEmpty(t *testing.T) {
	s := openTestStore(t)

	st := s.Load(NamespaceFor("1"))
	if len(st.Tasks) != 0 || len(st.Lists) != 0 || st.SelectedListID != "" {
		t.Errorf("expected empty state, got %+v", st)
	}
	if len(st.Corrupt) != 0 {
		t.Errorf("expected no corrupt keys, got %v", st.Corrupt)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ns := NamespaceFor("3")

	listID := "12"
	in := State{
		Tasks: []models.Task{
			{ID: "5", Text: "buy milk", Tag: "Groceries", When: models.WhenToday, ListID: &listID},
			{ID: "local-x", Text: "call mom", Tag: models.DefaultTag, When: models.WhenUpcoming, Date: "2030-01-02"},
		},
		Lists:          []models.List{{ID: "12", Name: "Groceries"}, {ID: models.AllListID, Name: models.AllListName}},
		SelectedListID: models.AllListID,
	}
	if err := s.Save(ns, in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out := s.Load(ns)
	if len(out.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(out.Tasks))
	}
	if out.Tasks[0].ListID == nil || *out.Tasks[0].ListID != "12" {
		t.Errorf("listId lost: %+v", out.Tasks[0])
	}
	if out.Tasks[1].ListID != nil {
		t.Errorf("expected nil listId, got %v", *out.Tasks[1].ListID)
	}
	if len(out.Lists) != 1 || out.Lists[0].ID != "12" {
		t.Errorf("pseudo-list must not be persisted, got %+v", out.Lists)
	}
	if out.SelectedListID != models.AllListID {
		t.Errorf("selected = %q, want %q", out.SelectedListID, models.AllListID)
	}

	// Other namespaces stay untouched.
	if other := s.Load(Anonymous); len(other.Tasks) != 0 {
		t.Errorf("anonymous namespace leaked %d tasks", len(other.Tasks))
	}
}

func TestLoadCorruptTreatedAsEmpty(t *testing.T) {
	s := openTestStore(t)
	ns := Anonymous

	if err := s.Set(ns.Tasks, "{not json"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ns.Lists, `[{"id":"1","name":"Work"}]`); err != nil {
		t.Fatal(err)
	}

	st := s.Load(ns)
	if len(st.Tasks) != 0 {
		t.Errorf("expected no tasks, got %d", len(st.Tasks))
	}
	if len(st.Lists) != 1 {
		t.Errorf("valid lists should survive, got %+v", st.Lists)
	}
	if len(st.Corrupt) != 1 || st.Corrupt[0] != ns.Tasks {
		t.Errorf("Corrupt = %v, want [%s]", st.Corrupt, ns.Tasks)
	}
}

func TestLoadDefaultsWhen(t *testing.T) {
	s := openTestStore(t)
	if err := s.Set(Anonymous.Tasks, `[{"id":"local-1","text":"x","done":false,"tag":"general","listId":null}]`); err != nil {
		t.Fatal(err)
	}
	st := s.Load(Anonymous)
	if len(st.Tasks) != 1 || st.Tasks[0].When != models.WhenToday {
		t.Errorf("expected when=today, got %+v", st.Tasks)
	}
}

func TestPurge(t *testing.T) {
	s := openTestStore(t)
	anon := Anonymous
	user := NamespaceFor("9")

	st := State{Tasks: []models.Task{{ID: "local-1", Text: "a", When: models.WhenToday}}, SelectedListID: "4"}
	if err := s.Save(anon, st); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(user, st); err != nil {
		t.Fatal(err)
	}

	if err := s.Purge(anon); err != nil {
		t.Fatalf("Purge: %v", err)
	}

	for _, k := range []string{anon.Tasks, anon.Lists, anon.Selected} {
		if _, ok, _ := s.Get(k); ok {
			t.Errorf("key %q survived purge", k)
		}
	}
	if got := s.Load(user); len(got.Tasks) != 1 || got.SelectedListID != "4" {
		t.Errorf("purge touched another namespace: %+v", got)
	}
}

func TestSessionUser(t *testing.T) {
	s := openTestStore(t)

	if _, ok := s.SessionUser(); ok {
		t.Fatal("expected no session user")
	}

	want := models.User{ID: "2", Name: "Ana", Email: "ana@example.com"}
	if err := s.SetSessionUser(want); err != nil {
		t.Fatal(err)
	}
	got, ok := s.SessionUser()
	if !ok || *got != want {
		t.Errorf("SessionUser() = %+v, %v", got, ok)
	}

	if err := s.ClearSessionUser(); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.SessionUser(); ok {
		t.Error("session user survived clear")
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todo.db")

	s, err := Open(path, log.New(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set("lists_v1", `[{"id":"all","name":"All tasks"},{"id":"3","name":"Home"}]`); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(path, log.New(io.Discard))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	v, err := s.Version()
	if err != nil {
		t.Fatal(err)
	}
	if v != SchemaVersion {
		t.Errorf("Version() = %d, want %d", v, SchemaVersion)
	}
	// Data written after the last migration is untouched by a reopen.
	if raw, _, _ := s.Get("lists_v1"); raw == "" {
		t.Error("entries lost on reopen")
	}
}
