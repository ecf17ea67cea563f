package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ixann-ui/ukk-todolist/internal/models"
	"github.com/ixann-ui/ukk-todolist/internal/service"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	c := New(Options{BaseURL: srv.URL + "/api", Timeout: time.Second, Logger: log.New(io.Discard)})
	return c, &calls
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestListTasksNormalizesShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bare array", `[{"id":5,"title":"Buy milk","due_date":"2024-05-10T00:00:00.000Z","lists_id":3,"done":1}]`},
		{"wrapped", `{"tasks":[{"task_id":"5","text":"Buy milk","date":"2024-05-10","listId":"3","done":true}]}`},
		{"alt keys", `{"tasks":[{"taskId":5,"name":"Buy milk","due":"2024-05-10","list_id":3,"completed":"1"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/tasks" || r.URL.Query().Get("userId") != "7" {
					t.Errorf("unexpected request %s", r.URL)
				}
				if got := r.Header.Get("x-user-id"); got != "7" {
					t.Errorf("x-user-id = %q, want 7", got)
				}
				w.Write([]byte(tt.body))
			})

			tasks, err := c.ListTasks(context.Background(), "7")
			if err != nil {
				t.Fatalf("ListTasks: %v", err)
			}
			if len(tasks) != 1 {
				t.Fatalf("expected 1 task, got %d", len(tasks))
			}
			got := tasks[0]
			if got.ID != "5" || got.Text != "Buy milk" || got.Date != "2024-05-10" || !got.Done {
				t.Errorf("unexpected task %+v", got)
			}
			if models.Deref(got.ListID) != "3" {
				t.Errorf("listId = %v, want 3", models.Deref(got.ListID))
			}
		})
	}
}

func TestListTasksKeepsKnownWhen(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1,"title":"a","when":"upcoming"},{"id":2,"title":"b","when":"someday"},{"id":3,"title":"c"}]`))
	})

	tasks, err := c.ListTasks(context.Background(), "7")
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	want := []models.When{models.WhenUpcoming, "", ""}
	if len(tasks) != len(want) {
		t.Fatalf("expected %d tasks, got %d", len(want), len(tasks))
	}
	for i, w := range want {
		if tasks[i].When != w {
			t.Errorf("task %s: when = %q, want %q", tasks[i].ID, tasks[i].When, w)
		}
	}
}

func TestListTasksDropsRowsWithoutID(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"title":"orphan"},{"id":2,"title":"kept","lists_id":null}]`))
	})

	tasks, err := c.ListTasks(context.Background(), "1")
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 || tasks[0].ID != "2" || tasks[0].ListID != nil {
		t.Errorf("unexpected tasks %+v", tasks)
	}
}

func TestListTasksAnonymousMakesNoRequest(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, []any{})
	})

	_, err := c.ListTasks(context.Background(), "")
	if !errors.Is(err, service.ErrAuthRequired) {
		t.Errorf("expected ErrAuthRequired, got %v", err)
	}
	if *calls != 0 {
		t.Errorf("expected no request, got %d", *calls)
	}
}

func TestCreateTask(t *testing.T) {
	var got map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/tasks" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, 200, map[string]any{"success": true, "task": map[string]any{"id": 41}})
	})

	task, err := c.CreateTask(context.Background(), service.NewTask{UserID: "7", Title: "  Write report ", ListID: "3"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.ID != "41" || task.Text != "Write report" || models.Deref(task.ListID) != "3" {
		t.Errorf("unexpected task %+v", task)
	}
	if got["title"] != "Write report" || got["list_id"] != "3" || got["user_id"] != "7" {
		t.Errorf("unexpected payload %v", got)
	}
}

func TestCreateTaskFlatIDResponse(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"taskId": "12"})
	})

	task, err := c.CreateTask(context.Background(), service.NewTask{UserID: "1", Title: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if task.ID != "12" || task.ListID != nil {
		t.Errorf("unexpected task %+v", task)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	if _, err := c.CreateTask(context.Background(), service.NewTask{UserID: "1", Title: "   "}); !errors.Is(err, service.ErrValidation) {
		t.Errorf("empty title: expected ErrValidation, got %v", err)
	}
	if _, err := c.CreateTask(context.Background(), service.NewTask{Title: "x"}); !errors.Is(err, service.ErrValidation) {
		t.Errorf("missing user: expected ErrValidation, got %v", err)
	}
	if *calls != 0 {
		t.Errorf("validation failures must not hit the network, got %d calls", *calls)
	}
}

func TestRemoteFailureIsUnavailable(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 500, map[string]any{"error": map[string]any{"code": "ER_NO_SUCH_TABLE", "sqlMessage": "no such table"}})
	})

	err := c.DeleteTask(context.Background(), "5")
	if !errors.Is(err, service.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	var re *service.RemoteError
	if !errors.As(err, &re) || re.Status != 500 || re.Message != "no such table" {
		t.Errorf("unexpected remote error %#v", err)
	}
}

func TestDeleteTaskRejectsLocalID(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	if err := c.DeleteTask(context.Background(), "local-abc"); !errors.Is(err, service.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if *calls != 0 {
		t.Errorf("expected no request, got %d", *calls)
	}
}

func TestUpdateTaskSendsOnlySetFields(t *testing.T) {
	var got map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/tasks/9" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, 200, map[string]any{"success": true})
	})

	title := "Renamed"
	if err := c.UpdateTask(context.Background(), "9", service.TaskUpdate{Title: &title}); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got["title"] != "Renamed" {
		t.Errorf("unexpected payload %v", got)
	}

	if err := c.UpdateTask(context.Background(), "9", service.TaskUpdate{}); !errors.Is(err, service.ErrValidation) {
		t.Errorf("empty update: expected ErrValidation, got %v", err)
	}
}

func TestListLists(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/lists/7":
			w.Write([]byte(`{"lists":[{"id":3,"name":"Work","user_id":7},{"id":"all","name":"bogus"}]}`))
		case "/api/lists":
			w.Write([]byte(`[{"id":1,"title":"Global"}]`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	lists, err := c.ListLists(context.Background(), "7")
	if err != nil {
		t.Fatal(err)
	}
	if len(lists) != 1 || lists[0].ID != "3" || lists[0].Name != "Work" || lists[0].UserID != "7" {
		t.Errorf("unexpected lists %+v", lists)
	}

	global, err := c.ListLists(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(global) != 1 || global[0].Name != "Global" {
		t.Errorf("unexpected global lists %+v", global)
	}
}

func TestCreateList(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"success": true, "list": map[string]any{"id": 8, "name": "Home", "user_id": "7"}})
	})

	l, err := c.CreateList(context.Background(), service.NewList{Name: " Home ", UserID: "7"})
	if err != nil {
		t.Fatal(err)
	}
	if l.ID != "8" || l.Name != "Home" {
		t.Errorf("unexpected list %+v", l)
	}

	if _, err := c.CreateList(context.Background(), service.NewList{Name: "  ", UserID: "7"}); !errors.Is(err, service.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if _, err := c.CreateList(context.Background(), service.NewList{Name: "Home"}); !errors.Is(err, service.ErrValidation) {
		t.Errorf("missing user: expected ErrValidation, got %v", err)
	}
	if *calls != 1 {
		t.Errorf("expected 1 request, got %d", *calls)
	}
}

func TestLogin(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			writeJSON(w, 400, map[string]any{"error": "Wrong password"})
			return
		}
		writeJSON(w, 200, map[string]any{"success": true, "user": map[string]any{"id": 7, "username": "ana", "email": "ana@example.com"}})
	})

	u, err := c.Login(context.Background(), service.Credentials{Email: "ana@example.com", Password: "secret"})
	if err != nil {
		t.Fatal(err)
	}
	if u.ID != "7" || u.Name != "ana" {
		t.Errorf("unexpected user %+v", u)
	}

	_, err = c.Login(context.Background(), service.Credentials{Email: "ana@example.com", Password: "nope"})
	if service.Message(err) != "Wrong password" {
		t.Errorf("expected server message, got %v", err)
	}
}

func TestTimeoutIsUnavailable(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := New(Options{BaseURL: srv.URL, Timeout: 20 * time.Millisecond, Logger: log.New(io.Discard)})
	_, err := c.ListLists(context.Background(), "1")
	if !errors.Is(err, service.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
