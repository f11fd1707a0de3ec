package memory

import (
	"context"
	"sync"
	"time"

	"github.com/PhiQuangHuy/order-service/internal/repository"
)

// OutboxRepository implements repository.OutboxRepository in memory. It keeps
// insertion order so the dispatcher drains events oldest first.
type OutboxRepository struct {
	mu     sync.Mutex
	events []repository.OutboxEvent
	index  map[string]int // eventID -> position in events
}

// NewOutboxRepository creates an empty in-memory outbox.
func NewOutboxRepository() *OutboxRepository {
	return &OutboxRepository{
		index: make(map[string]int),
	}
}

func (r *OutboxRepository) InsertEvent(ctx context.Context, event repository.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	r.index[event.EventID] = len(r.events)
	r.events = append(r.events, event)
	return nil
}

func (r *OutboxRepository) GetPendingEvents(ctx context.Context, limit int) ([]repository.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Everything still stored is pending; sent events were removed.
	pending := make([]repository.OutboxEvent, 0, limit)
	for _, event := range r.events {
		pending = append(pending, event)
		if limit > 0 && len(pending) >= limit {
			break
		}
	}
	return pending, nil
}

// MarkEventSent drops the event. Sent entries serve no further reads here, so
// removing them keeps the store bounded in long-running dev sessions.
func (r *OutboxRepository) MarkEventSent(ctx context.Context, eventID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos, exists := r.index[eventID]
	if !exists {
		return repository.ErrNotFound
	}
	r.events = append(r.events[:pos], r.events[pos+1:]...)
	delete(r.index, eventID)
	for i := pos; i < len(r.events); i++ {
		r.index[r.events[i].EventID] = i
	}
	return nil
}

func (r *OutboxRepository) MarkEventFailed(ctx context.Context, eventID, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos, exists := r.index[eventID]
	if !exists {
		return repository.ErrNotFound
	}
	r.events[pos].LastError = errMsg
	return nil
}
