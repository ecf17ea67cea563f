package service

// NewTask is the payload of CreateTask
type NewTask struct {
	UserID      string
	Title       string
	Description string
	ListID      string // empty means unfiled
}

// TaskUpdate carries the fields to change; nil means unchanged
type TaskUpdate struct {
	Title  *string
	ListID *string
}

// NewList is the payload of CreateList
type NewList struct {
	Name   string
	UserID string
}

// Registration is the payload of Register
type Registration struct {
	Name     string
	Email    string
	Password string
}

// Credentials is the payload of Login
type Credentials struct {
	Email    string
	Password string
}
