// Package audit records who changed which translation artifact and when.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event captures a change applied through the translation console or catalog
// import path.
type Event struct {
	ID         string
	EntityType string
	EntityID   string
	Action     string
	Actor      string
	OccurredAt time.Time
	Metadata   map[string]any
}

// Recorder persists audit events.
type Recorder interface {
	Record(ctx context.Context, event Event) error
	List(ctx context.Context) ([]Event, error)
	Clear(ctx context.Context) error
}

// NewEvent stamps a fresh event with a generated identifier.
func NewEvent(entityType, entityID, action, actor string, at time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Actor:      actor,
		OccurredAt: at,
	}
}

// InMemoryRecorder accumulates audit events in-memory for tests.
type InMemoryRecorder struct {
	mu     sync.Mutex
	events []Event
	err    error
}

// NewInMemoryRecorder constructs an empty recorder.
func NewInMemoryRecorder() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Record stores the supplied event. Events without an identifier receive one.
func (r *InMemoryRecorder) Record(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	copied := event
	if copied.ID == "" {
		copied.ID = uuid.NewString()
	}
	if copied.Metadata != nil {
		metadata := make(map[string]any, len(copied.Metadata))
		for k, v := range copied.Metadata {
			metadata[k] = v
		}
		copied.Metadata = metadata
	}
	r.events = append(r.events, copied)
	return nil
}

// Events returns a snapshot of recorded audit entries.
func (r *InMemoryRecorder) Events() []Event {
	events, _ := r.List(context.Background())
	return events
}

// Fail configures the recorder to return the supplied error on subsequent Record calls.
func (r *InMemoryRecorder) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// List returns the audit events recorded so far.
func (r *InMemoryRecorder) List(context.Context) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out, nil
}

// Clear removes all recorded events.
func (r *InMemoryRecorder) Clear(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
	return nil
}
