package models

import "time"

// Account is a user row as stored by the server
type Account struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListRecord is a list row as stored by the server
type ListRecord struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskRecord is a task row as stored by the server
type TaskRecord struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	ListID      *int64    `json:"lists_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     *string   `json:"due_date"`
	CreatedAt   time.Time `json:"created_at"`
}
