package overrides

import (
	"context"
	"sync"
	"time"

	"property_dashboard/pkg/models"
)

// =============================================================================
// IN-MEMORY STORE (for development/testing)
// Production should use the Redis store in redis.go
// =============================================================================

// MemoryStore implements Store with in-process storage and channel fan-out
// for change notification.
type MemoryStore struct {
	mu        sync.RWMutex
	overrides map[string]Override
	watchers  map[int]chan Event
	nextWatch int
}

// NewMemoryStore creates a new in-memory override store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		overrides: make(map[string]Override),
		watchers:  make(map[int]chan Event),
	}
}

// Get returns a copy of the property's override, or (nil, nil) when none.
func (s *MemoryStore) Get(_ context.Context, propertyID string) (*Override, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ov, ok := s.overrides[propertyID]
	if !ok {
		return nil, nil
	}
	out := ov
	out.Items = append([]models.ExpenseItem(nil), ov.Items...)
	return &out, nil
}

// Set stores the override, replacing any previous one (last writer wins).
func (s *MemoryStore) Set(_ context.Context, ov Override) error {
	if ov.UpdatedAt.IsZero() {
		ov.UpdatedAt = time.Now().UTC()
	}
	ov.Items = append([]models.ExpenseItem(nil), ov.Items...)

	s.mu.Lock()
	s.overrides[ov.PropertyID] = ov
	s.mu.Unlock()

	s.notify(Event{PropertyID: ov.PropertyID, Kind: EventSet})
	return nil
}

// Delete removes the property's override. Deleting an absent override is a
// no-op.
func (s *MemoryStore) Delete(_ context.Context, propertyID string) error {
	s.mu.Lock()
	_, existed := s.overrides[propertyID]
	delete(s.overrides, propertyID)
	s.mu.Unlock()

	if existed {
		s.notify(Event{PropertyID: propertyID, Kind: EventDeleted})
	}
	return nil
}

// Watch returns a channel of change events. The channel closes when ctx is
// cancelled.
func (s *MemoryStore) Watch(ctx context.Context) (<-chan Event, error) {
	ch := make(chan Event, 16)

	s.mu.Lock()
	id := s.nextWatch
	s.nextWatch++
	s.watchers[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}

// notify fans an event out to all watchers. Sends never block; a watcher
// whose buffer is full misses the event.
func (s *MemoryStore) notify(ev Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ch := range s.watchers {
		select {
		case ch <- ev:
		default:
		}
	}
}
