package outbox

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore backs tests and in-process wiring. Claim ordering and leasing
// match the postgres adapter: due PENDING rows, oldest first, pushed past
// ClaimLease on claim. MaxRetries, when positive, overrides the per-row
// retry limit.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Entry

	MaxRetries int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (s *MemoryStore) Enqueue(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.ID] = entry
	return nil
}

func (s *MemoryStore) ClaimPending(_ context.Context, limit int, now time.Time) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	due := make([]Entry, 0, limit)
	for _, e := range s.entries {
		if e.Status == StatusPending && !e.ScheduledAt.After(now.UTC()) {
			due = append(due, e)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].CreatedAt.Equal(due[j].CreatedAt) {
			return due[i].CreatedAt.Before(due[j].CreatedAt)
		}
		return due[i].ID < due[j].ID
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	for _, e := range due {
		leased := s.entries[e.ID]
		leased.ScheduledAt = now.UTC().Add(ClaimLease)
		s.entries[e.ID] = leased
	}
	return due, nil
}

func (s *MemoryStore) MarkPublished(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return ErrEntryNotFound
	}
	s.entries[id] = ApplyPublished(e, at)
	return nil
}

func (s *MemoryStore) MarkFailed(_ context.Context, id string, cause string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return ErrEntryNotFound
	}
	if s.MaxRetries > 0 {
		e.MaxRetries = s.MaxRetries
	}
	s.entries[id] = ApplyFailure(e, cause, now)
	return nil
}

func (s *MemoryStore) Requeue(_ context.Context, id string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return ErrEntryNotFound
	}
	s.entries[id] = ApplyRequeue(e, now)
	return nil
}

func (s *MemoryStore) GC(_ context.Context, publishedBefore time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, e := range s.entries {
		if e.Status == StatusPublished && e.PublishedAt != nil && e.PublishedAt.Before(publishedBefore.UTC()) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) PendingCount(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, e := range s.entries {
		if e.Status == StatusPending {
			count++
		}
	}
	return count, nil
}

// Get supports assertions in tests and the operator requeue endpoint.
func (s *MemoryStore) Get(id string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	return e, ok
}
