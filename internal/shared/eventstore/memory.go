package eventstore

import (
	"context"
	"sort"
	"sync"

	"wareflow/internal/shared/events"
)

type MemoryStore struct {
	mu        sync.RWMutex
	byID      map[string]events.Envelope
	processed map[string]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:      make(map[string]events.Envelope),
		processed: make(map[string]bool),
	}
}

func (s *MemoryStore) Append(_ context.Context, env events.Envelope) (bool, error) {
	if err := env.Validate(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[env.EventID]; exists {
		return false, nil
	}
	s.byID[env.EventID] = env
	return true, nil
}

func (s *MemoryStore) Get(_ context.Context, eventID string) (events.Envelope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	env, ok := s.byID[eventID]
	if !ok {
		return events.Envelope{}, ErrEventNotFound
	}
	return env, nil
}

func (s *MemoryStore) ListByCorrelation(_ context.Context, correlationID string) ([]events.Envelope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []events.Envelope
	for _, env := range s.byID {
		if env.CorrelationID == correlationID {
			out = append(out, env)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}

func (s *MemoryStore) Seen(_ context.Context, eventID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.processed[eventID], nil
}

func (s *MemoryStore) MarkProcessed(_ context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed[eventID] = true
	return nil
}

// All returns every stored envelope, oldest first. Test helper.
func (s *MemoryStore) All() []events.Envelope {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]events.Envelope, 0, len(s.byID))
	for _, env := range s.byID {
		out = append(out, env)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out
}
