package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ixann-ui/ukk-todolist/internal/models"
	"github.com/ixann-ui/ukk-todolist/internal/service"
)

// The backend has returned several shapes over time. Everything past this
// file sees only the canonical models:
//
//	task:  id|task_id|taskId, title|text|name, due_date|date|due (date part
//	       only), list_id|listId|lists_id, done|completed (bool or 0/1), tag
//	list:  id|list_id|listId, name|title, user_id|userId
//	user:  id|user_id|userId, name|username, email
//
// Collections may be a bare array or wrapped as {"tasks": [...]} /
// {"lists": [...]}. Single records may be wrapped as {"task": {...}},
// {"list": {...}} or {"user": {...}}.

type record map[string]any

func decodeAny(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", service.ErrUnavailable, err)
	}
	return v, nil
}

// collection unwraps a bare array or an object holding the array under key.
func collection(body []byte, key string) ([]record, error) {
	v, err := decodeAny(body)
	if err != nil {
		return nil, err
	}

	var items []any
	switch t := v.(type) {
	case []any:
		items = t
	case map[string]any:
		inner, ok := t[key].([]any)
		if !ok {
			return nil, fmt.Errorf("%w: response has no %q array", service.ErrUnavailable, key)
		}
		items = inner
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: unexpected response shape", service.ErrUnavailable)
	}

	out := make([]record, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// single returns the object under key, or the top-level object itself.
func single(body []byte, key string) (record, error) {
	v, err := decodeAny(body)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected response shape", service.ErrUnavailable)
	}
	if inner, ok := m[key].(map[string]any); ok {
		return inner, nil
	}
	return m, nil
}

func normalizeTasks(body []byte) ([]models.Task, error) {
	recs, err := collection(body, "tasks")
	if err != nil {
		return nil, err
	}
	tasks := make([]models.Task, 0, len(recs))
	for _, r := range recs {
		if t, ok := normalizeTask(r); ok {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

// normalizeTask maps one server row. Rows without an id are dropped.
// When is kept only if it is a known bucket; otherwise reconciliation
// derives it from the date.
func normalizeTask(r record) (models.Task, bool) {
	id := r.str("id", "task_id", "taskId")
	if id == "" {
		return models.Task{}, false
	}

	date := r.str("due_date", "date", "due")
	if i := strings.IndexByte(date, 'T'); i >= 0 {
		date = date[:i]
	}

	var when models.When
	switch w := models.When(strings.ToLower(r.str("when"))); w {
	case models.WhenToday, models.WhenUpcoming:
		when = w
	}

	return models.Task{
		ID:     id,
		Text:   r.str("title", "text", "name"),
		Done:   r.boolean("done", "completed", "is_done"),
		Tag:    r.str("tag"),
		When:   when,
		Date:   date,
		ListID: models.StringPtr(r.str("list_id", "listId", "lists_id")),
	}, true
}

func normalizeLists(body []byte) ([]models.List, error) {
	recs, err := collection(body, "lists")
	if err != nil {
		return nil, err
	}
	lists := make([]models.List, 0, len(recs))
	for _, r := range recs {
		l := normalizeList(r)
		if l.ID == "" || l.ID == models.AllListID {
			continue
		}
		lists = append(lists, l)
	}
	return lists, nil
}

func normalizeList(r record) models.List {
	return models.List{
		ID:     r.str("id", "list_id", "listId"),
		Name:   r.str("name", "title"),
		UserID: r.str("user_id", "userId"),
	}
}

func createdList(body []byte) (models.List, error) {
	r, err := single(body, "list")
	if err != nil {
		return models.List{}, err
	}
	l := normalizeList(r)
	if l.ID == "" {
		return models.List{}, fmt.Errorf("%w: create list response has no id", service.ErrUnavailable)
	}
	return l, nil
}

func createdTaskID(body []byte) (string, error) {
	v, err := decodeAny(body)
	if err != nil {
		return "", err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return "", fmt.Errorf("%w: unexpected response shape", service.ErrUnavailable)
	}
	if inner, ok := m["task"].(map[string]any); ok {
		if id := record(inner).str("id", "task_id", "taskId"); id != "" {
			return id, nil
		}
	}
	if id := record(m).str("task_id", "taskId", "id", "insertId"); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("%w: create task response has no id", service.ErrUnavailable)
}

func normalizeUser(body []byte) (models.User, error) {
	r, err := single(body, "user")
	if err != nil {
		return models.User{}, err
	}
	return models.User{
		ID:    r.str("id", "user_id", "userId"),
		Name:  r.str("name", "username"),
		Email: r.str("email"),
	}, nil
}

// errorMessage digs a readable message out of an error body.
func errorMessage(body []byte) string {
	var m map[string]any
	if err := json.Unmarshal(body, &m); err == nil {
		for _, k := range []string{"message", "error"} {
			switch v := m[k].(type) {
			case string:
				if v != "" {
					return v
				}
			case map[string]any:
				if s, ok := v["message"].(string); ok && s != "" {
					return s
				}
				if s, ok := v["sqlMessage"].(string); ok && s != "" {
					return s
				}
			}
		}
		return ""
	}
	return strings.TrimSpace(string(body))
}

// str returns the first non-empty value among keys, rendered as a string.
func (r record) str(keys ...string) string {
	for _, k := range keys {
		switch v := r[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case json.Number:
			return v.String()
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func (r record) boolean(keys ...string) bool {
	for _, k := range keys {
		switch v := r[k].(type) {
		case bool:
			return v
		case json.Number:
			return v.String() != "0"
		case string:
			switch strings.ToLower(v) {
			case "1", "true", "yes":
				return true
			case "0", "false", "no", "":
				return false
			}
		}
	}
	return false
}
