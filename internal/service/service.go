// Package service defines the backend-agnostic interface for task and list
// operations. The coordinator and the CLI never talk HTTP directly.
package service

import (
	"context"

	"github.com/ixann-ui/ukk-todolist/internal/models"
)

// Service defines the interface for remote task operations.
// Implementations return tasks and lists already normalized to models.
type Service interface {
	// ListTasks returns every task owned by userID.
	// An empty userID fails with ErrAuthRequired without any request.
	ListTasks(ctx context.Context, userID string) ([]models.Task, error)

	// CreateTask creates a task and returns it with its server id.
	CreateTask(ctx context.Context, t NewTask) (models.Task, error)

	// UpdateTask changes the given fields; nil fields are left as they are.
	UpdateTask(ctx context.Context, id string, u TaskUpdate) error

	// DeleteTask deletes a task by server id.
	DeleteTask(ctx context.Context, id string) error

	// ListLists returns the lists of userID, or every list when userID is empty.
	ListLists(ctx context.Context, userID string) ([]models.List, error)

	// CreateList creates a list and returns it with its server id.
	CreateList(ctx context.Context, l NewList) (models.List, error)

	// DeleteList deletes a list by server id.
	DeleteList(ctx context.Context, id string) error

	// Register creates an account. It does not sign in.
	Register(ctx context.Context, r Registration) (models.User, error)

	// Login verifies credentials and returns the account.
	Login(ctx context.Context, c Credentials) (models.User, error)
}
