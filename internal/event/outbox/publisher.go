// Package outbox implements the durable variant of the event publisher:
// events are written to an outbox table next to the state they describe and
// drained to Kafka by a background dispatcher. A crash or broker outage
// between write and publish then delays notifications instead of losing them.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/PhiQuangHuy/order-service/internal/domain"
	"github.com/PhiQuangHuy/order-service/internal/repository"
)

// Publisher implements service.EventPublisher by inserting events into the
// outbox. A failed insert surfaces to the caller the same way a failed direct
// publish would.
type Publisher struct {
	logger *zap.Logger
	outbox repository.OutboxRepository
}

// NewPublisher creates an outbox-backed publisher.
func NewPublisher(logger *zap.Logger, outbox repository.OutboxRepository) *Publisher {
	return &Publisher{
		logger: logger,
		outbox: outbox,
	}
}

func (p *Publisher) PublishOrderCreated(ctx context.Context, event domain.OrderCreatedEvent) error {
	return p.insert(ctx, domain.TopicOrderCreated, event.OrderID, event)
}

func (p *Publisher) PublishOrderStatusChanged(ctx context.Context, event domain.OrderStatusChangedEvent) error {
	return p.insert(ctx, domain.TopicOrderStatusChanged, event.OrderID, event)
}

func (p *Publisher) PublishOrderDeleted(ctx context.Context, event domain.OrderDeletedEvent) error {
	return p.insert(ctx, domain.TopicOrderDeleted, event.OrderID, event)
}

func (p *Publisher) insert(ctx context.Context, topic, orderID string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}

	record := repository.OutboxEvent{
		EventID:     uuid.NewString(),
		Topic:       topic,
		AggregateID: orderID,
		Payload:     payload,
	}

	if err := p.outbox.InsertEvent(ctx, record); err != nil {
		p.logger.Error("failed to enqueue outbox event",
			zap.Error(err),
			zap.String("topic", topic),
			zap.String("order_id", orderID),
		)
		return fmt.Errorf("enqueue %s: %w", topic, err)
	}

	p.logger.Debug("event enqueued to outbox",
		zap.String("event_id", record.EventID),
		zap.String("topic", topic),
		zap.String("order_id", orderID),
	)
	return nil
}
