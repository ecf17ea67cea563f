// Package rest implements service.Service against the todo REST backend.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ixann-ui/ukk-todolist/internal/models"
	"github.com/ixann-ui/ukk-todolist/internal/service"
)

const (
	// DefaultBaseURL is where the backend listens out of the box.
	DefaultBaseURL = "http://localhost:5000/api"

	// APITimeout is the default timeout for API calls.
	APITimeout = 5 * time.Second

	// userHeader carries the caller's user id.
	userHeader = "x-user-id"

	// maxBody caps how much of a response is read.
	maxBody = 4 << 20
)

// Options configures a Client
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *log.Logger
}

// Client implements service.Service over HTTP.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	log     *log.Logger
}

var _ service.Service = (*Client)(nil)

// New creates a client. Zero options fall back to the defaults.
func New(opts Options) *Client {
	c := &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		timeout: opts.Timeout,
		http:    opts.HTTPClient,
		log:     opts.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.timeout <= 0 {
		c.timeout = APITimeout
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.log == nil {
		c.log = log.Default()
	}
	return c
}

// ListTasks returns every task owned by userID.
func (c *Client) ListTasks(ctx context.Context, userID string) ([]models.Task, error) {
	if userID == "" {
		return nil, service.ErrAuthRequired
	}

	body, err := c.do(ctx, http.MethodGet, "/tasks?userId="+url.QueryEscape(userID), userID, nil)
	if err != nil {
		return nil, err
	}
	return normalizeTasks(body)
}

// CreateTask creates a task and returns it with the server's id.
func (c *Client) CreateTask(ctx context.Context, t service.NewTask) (models.Task, error) {
	title := strings.TrimSpace(t.Title)
	if t.UserID == "" {
		return models.Task{}, service.Validation("user id is required")
	}
	if title == "" {
		return models.Task{}, service.Validation("title is required")
	}

	payload := map[string]any{
		"user_id":     t.UserID,
		"title":       title,
		"description": t.Description,
	}
	if t.ListID != "" {
		payload["list_id"] = t.ListID
	}

	body, err := c.do(ctx, http.MethodPost, "/tasks", t.UserID, payload)
	if err != nil {
		return models.Task{}, err
	}

	id, err := createdTaskID(body)
	if err != nil {
		return models.Task{}, err
	}
	return models.Task{ID: id, Text: title, ListID: models.StringPtr(t.ListID)}, nil
}

// UpdateTask changes the title and/or list of a server task.
func (c *Client) UpdateTask(ctx context.Context, id string, u service.TaskUpdate) error {
	if !models.IsServerID(id) {
		return service.Validation("task has no server id")
	}

	payload := map[string]any{}
	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		if title == "" {
			return service.Validation("title is required")
		}
		payload["title"] = title
	}
	if u.ListID != nil && *u.ListID != "" {
		payload["list_id"] = *u.ListID
	}
	if len(payload) == 0 {
		return service.Validation("no fields to update")
	}

	_, err := c.do(ctx, http.MethodPut, "/tasks/"+id, "", payload)
	return err
}

// DeleteTask deletes a task by server id.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if !models.IsServerID(id) {
		return service.Validation("task has no server id")
	}
	_, err := c.do(ctx, http.MethodDelete, "/tasks/"+id, "", nil)
	return err
}

// ListLists returns the lists of userID, or all lists when userID is empty.
func (c *Client) ListLists(ctx context.Context, userID string) ([]models.List, error) {
	path := "/lists"
	if userID != "" {
		path += "/" + url.PathEscape(userID)
	}

	body, err := c.do(ctx, http.MethodGet, path, userID, nil)
	if err != nil {
		return nil, err
	}
	return normalizeLists(body)
}

// CreateList creates a list owned by l.UserID.
func (c *Client) CreateList(ctx context.Context, l service.NewList) (models.List, error) {
	name := strings.TrimSpace(l.Name)
	if name == "" {
		return models.List{}, service.Validation("list name is required")
	}
	if l.UserID == "" {
		return models.List{}, service.Validation("user id is required")
	}

	body, err := c.do(ctx, http.MethodPost, "/lists", l.UserID, map[string]any{
		"user_id": l.UserID,
		"name":    name,
	})
	if err != nil {
		return models.List{}, err
	}

	list, err := createdList(body)
	if err != nil {
		return models.List{}, err
	}
	if list.Name == "" {
		list.Name = name
	}
	return list, nil
}

// DeleteList deletes a list by server id.
func (c *Client) DeleteList(ctx context.Context, id string) error {
	if !models.IsServerID(id) {
		return service.Validation("list has no server id")
	}
	_, err := c.do(ctx, http.MethodDelete, "/lists/"+id, "", nil)
	return err
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, r service.Registration) (models.User, error) {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	if r.Name == "" || r.Email == "" || r.Password == "" {
		return models.User{}, service.Validation("name, email and password are required")
	}

	body, err := c.do(ctx, http.MethodPost, "/users/register", "", map[string]any{
		"name":     r.Name,
		"email":    r.Email,
		"password": r.Password,
	})
	if err != nil {
		return models.User{}, err
	}

	u, err := normalizeUser(body)
	if err != nil {
		return models.User{}, err
	}
	if u.Name == "" {
		u.Name = r.Name
	}
	if u.Email == "" {
		u.Email = r.Email
	}
	return u, nil
}

// Login verifies credentials.
func (c *Client) Login(ctx context.Context, cr service.Credentials) (models.User, error) {
	cr.Email = strings.TrimSpace(cr.Email)
	if cr.Email == "" || cr.Password == "" {
		return models.User{}, service.Validation("email and password are required")
	}

	body, err := c.do(ctx, http.MethodPost, "/users/login", "", map[string]any{
		"email":    cr.Email,
		"password": cr.Password,
	})
	if err != nil {
		return models.User{}, err
	}

	u, err := normalizeUser(body)
	if err != nil {
		return models.User{}, err
	}
	if u.ID == "" {
		return models.User{}, fmt.Errorf("%w: login response has no user id", service.ErrUnavailable)
	}
	return u, nil
}

// do performs one request and returns the raw body of a successful response.
func (c *Client) do(ctx context.Context, method, path, userID string, payload any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set(userHeader, userID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", "method", method, "path", path, "err", err)
		return nil, wrapError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, wrapError(err)
	}
	c.log.Debug("request", "method", method, "path", path, "status", resp.StatusCode, "took", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &service.RemoteError{Status: resp.StatusCode, Message: errorMessage(body)}
	}
	return body, nil
}

// wrapError converts transport errors to service errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: request timed out", service.ErrUnavailable)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: request canceled", service.ErrUnavailable)
	}
	return fmt.Errorf("%w: %v", service.ErrUnavailable, err)
}
