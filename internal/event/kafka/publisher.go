package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/PhiQuangHuy/order-service/internal/domain"
	"github.com/PhiQuangHuy/order-service/internal/metrics"
)

// Publisher implements service.EventPublisher with a direct Kafka writer.
// Every message is keyed by order id and routed by the Hash balancer, so all
// events for one order land on the same partition and keep send order. The
// publisher performs no retry of its own; failed sends surface to the caller.
type Publisher struct {
	logger  *zap.Logger
	writer  *kafka.Writer
	metrics *metrics.EventMetrics
}

// NewPublisher creates a Kafka publisher for the order event topics.
func NewPublisher(logger *zap.Logger, brokers []string, m *metrics.EventMetrics) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}

	return &Publisher{
		logger:  logger,
		writer:  writer,
		metrics: m,
	}
}

func (p *Publisher) PublishOrderCreated(ctx context.Context, event domain.OrderCreatedEvent) error {
	return p.publish(ctx, domain.TopicOrderCreated, event.OrderID, event)
}

func (p *Publisher) PublishOrderStatusChanged(ctx context.Context, event domain.OrderStatusChangedEvent) error {
	return p.publish(ctx, domain.TopicOrderStatusChanged, event.OrderID, event)
}

func (p *Publisher) PublishOrderDeleted(ctx context.Context, event domain.OrderDeletedEvent) error {
	return p.publish(ctx, domain.TopicOrderDeleted, event.OrderID, event)
}

func (p *Publisher) publish(ctx context.Context, topic, orderID string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(orderID),
		Value: payload,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.PublishFailed(topic)
		p.logger.Error("failed to publish event",
			zap.Error(err),
			zap.String("topic", topic),
			zap.String("order_id", orderID),
		)
		return fmt.Errorf("write to %s: %w", topic, err)
	}

	p.metrics.Published(topic)
	p.logger.Debug("event published",
		zap.String("topic", topic),
		zap.String("order_id", orderID),
	)
	return nil
}

// Close closes the Kafka writer.
func (p *Publisher) Close() error {
	p.logger.Info("closing kafka publisher")
	return p.writer.Close()
}
