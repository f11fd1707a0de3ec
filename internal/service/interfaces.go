package service

import (
	"context"
	"time"

	"github.com/PhiQuangHuy/order-service/internal/domain"
)

// EventPublisher delivers confirmed state changes as domain events. The
// orchestrator never swallows a publish error: when the broker rejects an
// event the caller is told, even though the state mutation already committed.
// Implementations: direct Kafka writer and the durable outbox.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event domain.OrderCreatedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event domain.OrderStatusChangedEvent) error
	PublishOrderDeleted(ctx context.Context, event domain.OrderDeletedEvent) error
}

// ProcessedEventsStore tracks handled inbound events so at-least-once
// redelivery does not repeat side effects. MarkProcessed must itself be
// idempotent; after ttl expires the event may be handled again.
type ProcessedEventsStore interface {
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) error
	IsProcessed(ctx context.Context, eventID string) (bool, error)
}
