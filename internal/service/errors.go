package service

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation means the input was rejected before or by the server.
	ErrValidation = errors.New("validation failed")

	// ErrAuthRequired means the operation needs a signed-in user.
	ErrAuthRequired = errors.New("authentication required")

	// ErrUnavailable means the server could not be reached or failed.
	ErrUnavailable = errors.New("remote unavailable")
)

// Validation returns an ErrValidation carrying msg
func Validation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// RemoteError is a non-success HTTP response from the server
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Is makes every RemoteError match ErrUnavailable, and 401s also match
// ErrAuthRequired.
func (e *RemoteError) Is(target error) bool {
	switch target {
	case ErrUnavailable:
		return true
	case ErrAuthRequired:
		return e.Status == 401
	}
	return false
}

// Message returns the human-readable part of err, preferring the server's
// own message when there is one.
func Message(err error) string {
	var re *RemoteError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
