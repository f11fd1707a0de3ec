package service

import (
	"context"
	"sync"
	"time"
)

// MemoryProcessedEventsStore implements ProcessedEventsStore with an
// in-memory map. Used for dev/test environments; production uses the Redis
// implementation.
type MemoryProcessedEventsStore struct {
	mu     sync.Mutex
	events map[string]time.Time // eventID -> expiresAt
}

// NewMemoryProcessedEventsStore creates an empty in-memory store.
func NewMemoryProcessedEventsStore() *MemoryProcessedEventsStore {
	return &MemoryProcessedEventsStore{
		events: make(map[string]time.Time),
	}
}

// MarkProcessed records eventID as handled until ttl passes.
func (s *MemoryProcessedEventsStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cleanupExpiredLocked()
	s.events[eventID] = time.Now().Add(ttl)
	return nil
}

// IsProcessed reports whether eventID was handled and its ttl has not expired.
func (s *MemoryProcessedEventsStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, exists := s.events[eventID]
	if !exists {
		return false, nil
	}
	if time.Now().After(expiresAt) {
		delete(s.events, eventID)
		return false, nil
	}
	return true, nil
}

func (s *MemoryProcessedEventsStore) cleanupExpiredLocked() {
	now := time.Now()
	for eventID, expiresAt := range s.events {
		if now.After(expiresAt) {
			delete(s.events, eventID)
		}
	}
}
