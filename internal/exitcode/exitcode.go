// Package exitcode defines exit codes for the CLI.
package exitcode

import (
	"errors"

	"github.com/ixann-ui/ukk-todolist/internal/service"
)

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, not found, invalid input).
	UserError = 1

	// AuthError indicates the command needs a signed-in user.
	AuthError = 2

	// BackendError indicates a backend/API/network error.
	BackendError = 3
)

// For maps an error to its exit code.
func For(err error) int {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, service.ErrAuthRequired):
		return AuthError
	case errors.Is(err, service.ErrUnavailable):
		return BackendError
	default:
		return UserError
	}
}
