package service

import (
	"errors"
	"fmt"
	"testing"
)

func TestRemoteErrorMatches(t *testing.T) {
	err := fmt.Errorf("creating task: %w", &RemoteError{Status: 500, Message: "boom"})

	if !errors.Is(err, ErrUnavailable) {
		t.Error("expected RemoteError to match ErrUnavailable")
	}
	if errors.Is(err, ErrAuthRequired) {
		t.Error("500 must not match ErrAuthRequired")
	}
	if got := Message(err); got != "boom" {
		t.Errorf("Message() = %q, want %q", got, "boom")
	}

	unauth := &RemoteError{Status: 401}
	if !errors.Is(unauth, ErrAuthRequired) {
		t.Error("401 should match ErrAuthRequired")
	}
}

func TestValidation(t *testing.T) {
	err := Validation("title is required")
	if !errors.Is(err, ErrValidation) {
		t.Fatal("expected ErrValidation")
	}
	if err.Error() != "validation failed: title is required" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
