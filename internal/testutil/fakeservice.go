// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/ixann-ui/ukk-todolist/internal/models"
	"github.com/ixann-ui/ukk-todolist/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu     sync.Mutex
	nextID int
	tasks  map[string][]models.Task // userID -> tasks
	lists  map[string][]models.List // userID -> lists
	users  map[string]fakeUser      // email -> user

	// Error injection for testing
	ListTasksErr  error
	CreateTaskErr error
	UpdateTaskErr error
	DeleteTaskErr error
	ListListsErr  error
	CreateListErr error
	DeleteListErr error
	RegisterErr   error
	LoginErr      error

	// Block, when set, is waited on by ListTasks and ListLists before they
	// answer. Tests use it to hold a response in flight.
	Block chan struct{}

	// DeleteBlock, when set, holds DeleteTask until it is closed.
	DeleteBlock chan struct{}

	calls map[string]int
}

type fakeUser struct {
	user     models.User
	password string
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		nextID: 100,
		tasks:  make(map[string][]models.Task),
		lists:  make(map[string][]models.List),
		users:  make(map[string]fakeUser),
		calls:  make(map[string]int),
	}
}

// Calls returns how many times method was invoked.
func (f *FakeService) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// AddUser registers an account that Login accepts.
func (f *FakeService) AddUser(id, name, email, password string) models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := models.User{ID: id, Name: name, Email: email}
	f.users[email] = fakeUser{user: u, password: password}
	return u
}

// AddTask seeds a server task for userID.
func (f *FakeService) AddTask(userID string, t models.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[userID] = append(f.tasks[userID], t)
}

// AddList seeds a server list for userID.
func (f *FakeService) AddList(userID string, l models.List) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists[userID] = append(f.lists[userID], l)
}

// Tasks returns a copy of the server tasks of userID.
func (f *FakeService) Tasks(userID string) []models.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Task(nil), f.tasks[userID]...)
}

func (f *FakeService) record(method string) {
	f.mu.Lock()
	f.calls[method]++
	f.mu.Unlock()
}

func (f *FakeService) wait(ctx context.Context) error {
	if f.Block == nil {
		return nil
	}
	select {
	case <-f.Block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *FakeService) newID() string {
	f.nextID++
	return strconv.Itoa(f.nextID)
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, userID string) ([]models.Task, error) {
	f.record("ListTasks")
	if userID == "" {
		return nil, service.ErrAuthRequired
	}
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	return f.Tasks(userID), nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, t service.NewTask) (models.Task, error) {
	f.record("CreateTask")
	if f.CreateTaskErr != nil {
		return models.Task{}, f.CreateTaskErr
	}
	if t.UserID == "" {
		return models.Task{}, service.Validation("user id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return models.Task{}, service.Validation("title is required")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	task := models.Task{ID: f.newID(), Text: strings.TrimSpace(t.Title), ListID: models.StringPtr(t.ListID)}
	f.tasks[t.UserID] = append(f.tasks[t.UserID], task)
	return task, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id string, u service.TaskUpdate) error {
	f.record("UpdateTask")
	if f.UpdateTaskErr != nil {
		return f.UpdateTaskErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for user, tasks := range f.tasks {
		for i := range tasks {
			if tasks[i].ID != id {
				continue
			}
			if u.Title != nil {
				f.tasks[user][i].Text = *u.Title
			}
			if u.ListID != nil {
				f.tasks[user][i].ListID = models.StringPtr(*u.ListID)
			}
			return nil
		}
	}
	return nil
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id string) error {
	f.record("DeleteTask")
	if f.DeleteBlock != nil {
		select {
		case <-f.DeleteBlock:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for user, tasks := range f.tasks {
		for i := range tasks {
			if tasks[i].ID == id {
				f.tasks[user] = append(tasks[:i:i], tasks[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

// ListLists implements service.Service.
func (f *FakeService) ListLists(ctx context.Context, userID string) ([]models.List, error) {
	f.record("ListLists")
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if f.ListListsErr != nil {
		return nil, f.ListListsErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if userID != "" {
		return append([]models.List(nil), f.lists[userID]...), nil
	}
	var all []models.List
	for _, ls := range f.lists {
		all = append(all, ls...)
	}
	return all, nil
}

// CreateList implements service.Service.
func (f *FakeService) CreateList(ctx context.Context, l service.NewList) (models.List, error) {
	f.record("CreateList")
	if f.CreateListErr != nil {
		return models.List{}, f.CreateListErr
	}
	name := strings.TrimSpace(l.Name)
	if name == "" {
		return models.List{}, service.Validation("list name is required")
	}
	if l.UserID == "" {
		return models.List{}, service.Validation("user id is required")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	list := models.List{ID: f.newID(), Name: name, UserID: l.UserID}
	f.lists[l.UserID] = append(f.lists[l.UserID], list)
	return list, nil
}

// DeleteList implements service.Service.
func (f *FakeService) DeleteList(ctx context.Context, id string) error {
	f.record("DeleteList")
	if f.DeleteListErr != nil {
		return f.DeleteListErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for user, lists := range f.lists {
		for i := range lists {
			if lists[i].ID == id {
				f.lists[user] = append(lists[:i:i], lists[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

// Register implements service.Service.
func (f *FakeService) Register(ctx context.Context, r service.Registration) (models.User, error) {
	f.record("Register")
	if f.RegisterErr != nil {
		return models.User{}, f.RegisterErr
	}
	if r.Name == "" || r.Email == "" || r.Password == "" {
		return models.User{}, service.Validation("name, email and password are required")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	u := models.User{ID: f.newID(), Name: r.Name, Email: r.Email}
	f.users[r.Email] = fakeUser{user: u, password: r.Password}
	return u, nil
}

// Login implements service.Service.
func (f *FakeService) Login(ctx context.Context, c service.Credentials) (models.User, error) {
	f.record("Login")
	if f.LoginErr != nil {
		return models.User{}, f.LoginErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	fu, ok := f.users[c.Email]
	if !ok {
		return models.User{}, &service.RemoteError{Status: 400, Message: "Email not found"}
	}
	if fu.password != c.Password {
		return models.User{}, &service.RemoteError{Status: 400, Message: "Wrong password"}
	}
	return fu.user, nil
}
