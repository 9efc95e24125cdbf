// Package events announces committed entity changes to other services.
package events

import (
	"context"
	"strings"
	"sync"
	"time"
)

const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionDeleted  = "deleted"
	ActionLinked   = "linked"
	ActionUnlinked = "unlinked"
)

type Event struct {
	Entity     string    `json:"entity"`
	Action     string    `json:"action"`
	ResourceID uint      `json:"resourceId"`
	Topic      string    `json:"topic"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data,omitempty"`
}

// Publisher is called after a unit of work commits. Implementations must not
// block the request for long; errors are logged by the caller.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Topic returns the canonical "<entity>.<action>" name, optionally prefixed.
func Topic(prefix, entity, action string) string {
	entity = strings.TrimSpace(entity)
	action = strings.TrimSpace(action)
	if entity == "" || action == "" {
		return ""
	}
	if p := strings.Trim(strings.TrimSpace(prefix), "."); p != "" {
		return p + "." + entity + "." + action
	}
	return entity + "." + action
}

type noop struct{}

func (noop) Publish(context.Context, Event) error { return nil }

// Noop discards every event.
func Noop() Publisher { return noop{} }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of what was published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
