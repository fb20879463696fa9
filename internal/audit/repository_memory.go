package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRecorder keeps events in memory. Used when no audit database
// is configured, and by tests.
type InMemoryRecorder struct {
	mu     sync.Mutex
	events []Event
}

func NewInMemoryRecorder() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

func (r *InMemoryRecorder) Record(_ context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of everything recorded so far.
func (r *InMemoryRecorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
