package models

import (
	"testing"
	"time"
)

func TestIsServerID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"1", true},
		{"42", true},
		{"007", true},
		{"", false},
		{"local-abc", false},
		{"12a", false},
		{"-1", false},
		{" 1", false},
	}

	for _, tt := range tests {
		if got := IsServerID(tt.id); got != tt.want {
			t.Errorf("IsServerID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestNewLocalID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewLocalID()
		if IsServerID(id) {
			t.Fatalf("local id %q looks like a server id", id)
		}
		if !IsLocalID(id) {
			t.Fatalf("NewLocalID() = %q, missing local prefix", id)
		}
		if seen[id] {
			t.Fatalf("duplicate local id %q", id)
		}
		seen[id] = true
	}
}

func TestWhenFromDate(t *testing.T) {
	today := time.Date(2024, 5, 10, 15, 30, 0, 0, time.Local)

	tests := []struct {
		name string
		date string
		want When
	}{
		{"same day", "2024-05-10", WhenToday},
		{"tomorrow", "2024-05-11", WhenUpcoming},
		{"next year", "2025-01-01", WhenUpcoming},
		{"yesterday", "2024-05-09", WhenToday},
		{"garbage", "10/05/2024", WhenToday},
		{"empty", "", WhenToday},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WhenFromDate(tt.date, today); got != tt.want {
				t.Errorf("WhenFromDate(%q) = %q, want %q", tt.date, got, tt.want)
			}
		})
	}
}

func TestIsGenericTag(t *testing.T) {
	for _, tag := range []string{"", DefaultTag, LegacyTag} {
		if !IsGenericTag(tag) {
			t.Errorf("IsGenericTag(%q) = false, want true", tag)
		}
	}
	if IsGenericTag("Work") {
		t.Error("IsGenericTag(\"Work\") = true, want false")
	}
}
