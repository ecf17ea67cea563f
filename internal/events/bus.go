// Package events is the in-process publish/subscribe bus that tells the
// rest of the app about session, list and notification changes.
package events

import (
	"sync"

	"github.com/ixann-ui/ukk-todolist/internal/models"
)

// Event is anything published on a Bus
type Event interface {
	isEvent()
}

// AuthChanged is published after login, logout and registration.
// User is nil when nobody is signed in.
type AuthChanged struct {
	User *models.User
}

// ListsChanged is published whenever the set of lists or the selection
// changes.
type ListsChanged struct {
	Lists    []models.List
	Selected string
}

// TasksChanged is published after the task set changed.
type TasksChanged struct{}

// Kind classifies a Notification
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Notification is a user-facing message about the outcome of an operation
type Notification struct {
	Kind    Kind
	Title   string
	Message string
}

// Notified carries a Notification
type Notified struct {
	Notification
}

func (AuthChanged) isEvent()  {}
func (ListsChanged) isEvent() {}
func (TasksChanged) isEvent() {}
func (Notified) isEvent()     {}

// Handler receives published events
type Handler func(Event)

// Bus delivers events synchronously to every subscriber, in subscription
// order. Handlers must not block.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]Handler
	order  []int
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{subs: make(map[int]Handler)}
}

// Subscribe registers h and returns a function that removes it
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subs[id] = h
	b.order = append(b.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			for i, v := range b.order {
				if v == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish delivers e to all current subscribers
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.order))
	for _, id := range b.order {
		handlers = append(handlers, b.subs[id])
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}
