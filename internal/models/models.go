package models

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// When is the scheduling bucket of a task
type When string

const (
	WhenToday    When = "today"
	WhenUpcoming When = "upcoming"
)

const (
	// AllListID is the sentinel pseudo-list meaning "no filter".
	// It is never stored as a List and never sent to the server.
	AllListID   = "all"
	AllListName = "All tasks"

	// DefaultTag is assigned to tasks that belong to no list.
	DefaultTag = "general"
	// LegacyTag is an older generic tag treated the same as DefaultTag.
	LegacyTag = "Umum"

	// DateLayout is the wire and storage format of Task.Date
	DateLayout = "2006-01-02"

	localIDPrefix = "local-"
)

var serverIDPattern = regexp.MustCompile(`^\d+$`)

// Task represents a single to-do item
type Task struct {
	ID       string  `json:"id"`
	Text     string  `json:"text"`
	Done     bool    `json:"done"`
	Tag      string  `json:"tag"`
	When     When    `json:"when"`
	Date     string  `json:"date,omitempty"`
	ListID   *string `json:"listId"`
	Unsynced bool    `json:"unsynced,omitempty"`
}

// List represents a named grouping of tasks
type List struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	UserID string `json:"user_id,omitempty"`
}

// User is the signed-in account
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// IsServerID reports whether id was assigned by the server
func IsServerID(id string) bool {
	return serverIDPattern.MatchString(id)
}

// IsLocalID reports whether id was generated on this client
func IsLocalID(id string) bool {
	return len(id) > len(localIDPrefix) && id[:len(localIDPrefix)] == localIDPrefix
}

// NewLocalID returns a fresh client-side id. It never matches IsServerID.
func NewLocalID() string {
	return localIDPrefix + uuid.NewString()
}

// IsGenericTag reports whether tag carries no list information
func IsGenericTag(tag string) bool {
	return tag == "" || tag == DefaultTag || tag == LegacyTag
}

// StringPtr returns a pointer to s, or nil when s is empty
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the value of p or ""
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Midnight truncates t to the start of its day in t's location
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WhenFromDate classifies a YYYY-MM-DD date relative to today.
// Past dates are treated as today (overdue work shows up in today's view).
func WhenFromDate(date string, today time.Time) When {
	d, err := time.ParseInLocation(DateLayout, date, today.Location())
	if err != nil {
		return WhenToday
	}
	if d.After(Midnight(today)) {
		return WhenUpcoming
	}
	return WhenToday
}

// ValidDate reports whether date is a well-formed YYYY-MM-DD value
func ValidDate(date string) bool {
	_, err := time.Parse(DateLayout, date)
	return err == nil
}
