package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/ixann-ui/ukk-todolist/internal/backend/rest"
	"github.com/ixann-ui/ukk-todolist/internal/db"
	"github.com/ixann-ui/ukk-todolist/internal/service"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	d, err := db.New(filepath.Join(t.TempDir(), "server.db"))
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	return New(d, Options{
		Logger:     log.New(io.Discard),
		BcryptCost: bcrypt.MinCost,
	})
}

func doJSON(t *testing.T, s *Server, method, path string, body any, header map[string]string) (int, map[string]any) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec.Code, out
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	code, body := doJSON(t, s, http.MethodPost, "/api/users/register", map[string]string{
		"name": "Ana", "email": "ana@example.com", "password": "secret",
	}, nil)
	if code != http.StatusOK || body["success"] != true {
		t.Fatalf("register = %d %v", code, body)
	}

	code, _ = doJSON(t, s, http.MethodPost, "/api/users/register", map[string]string{
		"name": "Ana", "email": "ana@example.com", "password": "secret",
	}, nil)
	if code != http.StatusConflict {
		t.Errorf("duplicate register = %d, want 409", code)
	}

	tests := []struct {
		name     string
		email    string
		password string
		code     int
		errMsg   string
	}{
		{"ok", "ana@example.com", "secret", http.StatusOK, ""},
		{"unknown email", "bo@example.com", "secret", http.StatusBadRequest, "Email not found"},
		{"wrong password", "ana@example.com", "nope", http.StatusBadRequest, "Wrong password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := doJSON(t, s, http.MethodPost, "/api/users/login", map[string]string{
				"email": tt.email, "password": tt.password,
			}, nil)
			if code != tt.code {
				t.Errorf("status = %d, want %d", code, tt.code)
			}
			if tt.errMsg != "" && body["error"] != tt.errMsg {
				t.Errorf("error = %v, want %q", body["error"], tt.errMsg)
			}
			if tt.errMsg == "" {
				user, _ := body["user"].(map[string]any)
				if user["username"] != "Ana" {
					t.Errorf("user = %v", user)
				}
			}
		})
	}
}

func TestTasksRequireUser(t *testing.T) {
	s := newTestServer(t)

	code, body := doJSON(t, s, http.MethodGet, "/api/tasks", nil, nil)
	if code != http.StatusUnauthorized || body["message"] != "Authentication required" {
		t.Errorf("GET /tasks = %d %v", code, body)
	}
}

func TestTaskValidation(t *testing.T) {
	s := newTestServer(t)

	code, body := doJSON(t, s, http.MethodPost, "/api/tasks", map[string]any{"user_id": 1}, nil)
	if code != http.StatusBadRequest || body["message"] != "Missing fields" {
		t.Errorf("create without title = %d %v", code, body)
	}

	code, body = doJSON(t, s, http.MethodPut, "/api/tasks/1", map[string]any{}, nil)
	if code != http.StatusBadRequest || body["message"] != "No fields to update" {
		t.Errorf("empty update = %d %v", code, body)
	}

	code, _ = doJSON(t, s, http.MethodPut, "/api/tasks/999", map[string]any{"title": "x"}, nil)
	if code != http.StatusNotFound {
		t.Errorf("update missing task = %d, want 404", code)
	}
}

func TestTaskLifecycle(t *testing.T) {
	s := newTestServer(t)

	_, reg := doJSON(t, s, http.MethodPost, "/api/users/register", map[string]string{
		"name": "Ana", "email": "ana@example.com", "password": "secret",
	}, nil)
	userID := reg["user"].(map[string]any)["id"]

	// user_id may arrive as a string
	code, created := doJSON(t, s, http.MethodPost, "/api/lists", map[string]any{
		"user_id": "1", "name": "Work",
	}, nil)
	if code != http.StatusOK {
		t.Fatalf("create list = %d %v", code, created)
	}
	listID := created["list"].(map[string]any)["id"]

	code, task := doJSON(t, s, http.MethodPost, "/api/tasks", map[string]any{
		"user_id": userID, "lists_id": listID, "title": "Report", "description": "",
	}, nil)
	if code != http.StatusOK || task["success"] != true {
		t.Fatalf("create task = %d %v", code, task)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("x-user-id", "1")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var rows []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decoding tasks: %v (%s)", err, rec.Body.String())
	}
	if len(rows) != 1 || rows[0]["title"] != "Report" || rows[0]["lists_id"] != listID {
		t.Errorf("tasks = %v", rows)
	}

	code, _ = doJSON(t, s, http.MethodDelete, "/api/lists/1", nil, nil)
	if code != http.StatusOK {
		t.Errorf("delete list = %d", code)
	}
	code, _ = doJSON(t, s, http.MethodDelete, "/api/tasks/1", nil, nil)
	if code != http.StatusOK {
		t.Errorf("delete task = %d", code)
	}
}

func TestClientAgainstServer(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	c := rest.New(rest.Options{BaseURL: ts.URL + "/api", Logger: log.New(io.Discard)})
	ctx := context.Background()

	if _, err := c.Register(ctx, service.Registration{Name: "Ana", Email: "ana@example.com", Password: "pw"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, err := c.Login(ctx, service.Credentials{Email: "ana@example.com", Password: "bad"})
	var re *service.RemoteError
	if !errors.As(err, &re) || re.Message != "Wrong password" {
		t.Errorf("Login with bad password: %v", err)
	}

	u, err := c.Login(ctx, service.Credentials{Email: "ana@example.com", Password: "pw"})
	if err != nil || u.ID != "1" || u.Name != "Ana" {
		t.Fatalf("Login = %+v, %v", u, err)
	}

	l, err := c.CreateList(ctx, service.NewList{Name: "Work", UserID: u.ID})
	if err != nil || l.ID != "1" {
		t.Fatalf("CreateList = %+v, %v", l, err)
	}

	task, err := c.CreateTask(ctx, service.NewTask{UserID: u.ID, Title: "Report", ListID: l.ID})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	title := "Quarterly report"
	if err := c.UpdateTask(ctx, task.ID, service.TaskUpdate{Title: &title}); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	tasks, err := c.ListTasks(ctx, u.ID)
	if err != nil || len(tasks) != 1 {
		t.Fatalf("ListTasks = %+v, %v", tasks, err)
	}
	if tasks[0].Text != title || tasks[0].ListID == nil || *tasks[0].ListID != l.ID {
		t.Errorf("task = %+v", tasks[0])
	}

	lists, err := c.ListLists(ctx, u.ID)
	if err != nil || len(lists) != 1 || lists[0].Name != "Work" {
		t.Errorf("ListLists = %+v, %v", lists, err)
	}

	if err := c.DeleteTask(ctx, task.ID); err != nil {
		t.Errorf("DeleteTask: %v", err)
	}
	if err := c.DeleteList(ctx, l.ID); err != nil {
		t.Errorf("DeleteList: %v", err)
	}
}
